package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/loadaudit/pkg/config"
	"github.com/wonny/loadaudit/pkg/database"
	"github.com/wonny/loadaudit/pkg/logger"
)

// testDBCmd represents the test-db command
var testDBCmd = &cobra.Command{
	Use:   "test-db",
	Short: "데이터베이스 연결 테스트",
	RunE:  runTestDB,
}

func init() {
	rootCmd.AddCommand(testDBCmd)
}

func runTestDB(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Database Connection Test ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	status, err := db.HealthCheck(cmd.Context())
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"response_time": status.ResponseTime,
		"total_conns":   status.TotalConns,
		"max_conns":     status.MaxConns,
	}).Info("Database health check passed")

	fmt.Println("✅ Database connection OK")
	fmt.Printf("  Response Time: %s\n", status.ResponseTime)
	fmt.Printf("  Connections:   %d/%d (idle %d)\n", status.TotalConns, status.MaxConns, status.IdleConns)

	return nil
}
