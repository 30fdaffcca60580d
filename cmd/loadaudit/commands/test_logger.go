package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/loadaudit/pkg/config"
	"github.com/wonny/loadaudit/pkg/logger"
)

// testLoggerCmd represents the test-logger command
var testLoggerCmd = &cobra.Command{
	Use:   "test-logger",
	Short: "로거 출력 테스트",
	RunE:  runTestLogger,
}

func init() {
	rootCmd.AddCommand(testLoggerCmd)
}

func runTestLogger(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message")

	log.WithField("contract", 7).Info("message with field")
	log.WithFields(map[string]interface{}{
		"contract": 7,
		"group":    3,
	}).Info("message with fields")

	fmt.Println("✅ Logger output OK (check format above)")

	return nil
}
