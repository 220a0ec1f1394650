// Command fintrack is the interactive terminal finance tracker.
package main

import (
	"fmt"
	"os"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "A critical error occurred. Please check the logs.")
		logger.Get().Errorf("Application error: %v", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Log to the file only so the menus stay readable.
	logger.Init(cfg.Env, cfg.LogFile)

	dbConfig, err := database.NewConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	app := cli.New(dbManager, cli.Options{
		In:             os.Stdin,
		Out:            os.Stdout,
		BackupDir:      cfg.BackupDir,
		CurrencySymbol: cfg.CurrencySymbol,
	})
	return app.Run()
}
