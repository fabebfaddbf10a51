package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/bldrfitness/bldr/internal/config"
	"github.com/bldrfitness/bldr/internal/logger"
	"github.com/bldrfitness/bldr/internal/postgres"
)

func main() {
	command := flag.String("command", "up", "migration command: up, down or status")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall timeout")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		logger.GetLogger().Fatalf("failed to load config: %v", err)
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		logger.GetLogger().Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := postgres.NewDB(cfg, log)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *command {
	case "up":
		err = postgres.Migrate(ctx, db, log)
	case "down":
		err = postgres.Rollback(ctx, db, log)
	case "status":
		err = postgres.Status(ctx, db, log)
	default:
		log.Errorw("unknown migration command", "command", *command)
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		log.Errorw("migration failed", "command", *command, "error", err)
		os.Exit(1)
	}
	log.Infow("migration finished", "command", *command)
}
