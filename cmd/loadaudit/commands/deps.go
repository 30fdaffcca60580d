package commands

import (
	"fmt"

	"github.com/wonny/loadaudit/internal/ruleconfig"
	"github.com/wonny/loadaudit/pkg/config"
	"github.com/wonny/loadaudit/pkg/database"
	"github.com/wonny/loadaudit/pkg/logger"
)

// initDeps loads config, logger and the validated rules file.
// 규칙 파일 오류는 어떤 처리도 시작하기 전에 치명적으로 실패
func initDeps() (*config.Config, *logger.Logger, *ruleconfig.Rules, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	path := cfg.Audit.RulesPath
	if rulesFile != "" {
		path = rulesFile
	}

	rules, err := ruleconfig.Load(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load rules: %w", err)
	}

	return cfg, log, rules, nil
}

// initStoreDeps additionally opens the database pool.
func initStoreDeps() (*config.Config, *logger.Logger, *ruleconfig.Rules, *database.DB, error) {
	cfg, log, rules, err := initDeps()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	return cfg, log, rules, db, nil
}
