package main

import (
	"flag"
	"fmt"
	"os"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/logger"
	"fintrack/internal/seed"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Seed error: %v", err)
	}
}

func run() error {
	var opts seed.Options
	flag.IntVar(&opts.Users, "users", 3, "number of users to create")
	flag.IntVar(&opts.TransactionsPerUser, "transactions", 40, "expenses per user")
	flag.IntVar(&opts.Months, "months", 3, "months of history ending this month")
	flag.Int64Var(&opts.Seed, "seed", 0, "random seed (0 picks one)")
	flag.StringVar(&opts.Password, "password", seed.DefaultPassword, "password for every user")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
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

	result, err := seed.Run(dbManager.DB(), opts)
	if err != nil {
		return err
	}

	fmt.Printf("Created %d users, %d transactions and %d budgets.\n",
		len(result.Usernames), result.Transactions, result.Budgets)
	for _, username := range result.Usernames {
		fmt.Printf("  %s / %s\n", username, opts.Password)
	}
	return nil
}
