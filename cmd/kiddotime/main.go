package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/wangxr0701-sudo/kiddotime/internal/config"
	"github.com/wangxr0701-sudo/kiddotime/internal/gateway"
	"github.com/wangxr0701-sudo/kiddotime/internal/logging"
	"github.com/wangxr0701-sudo/kiddotime/internal/storage"
	"github.com/wangxr0701-sudo/kiddotime/internal/store"
	"github.com/wangxr0701-sudo/kiddotime/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "kiddotime failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("KIDDOTIME_CONFIG"))
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	logFile, err := logging.Setup(cfg.LogPath)
	if err != nil {
		return err
	}
	defer logFile.Close()

	db, err := sql.Open("sqlite3", cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := storage.MigrateUp(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	repo, err := storage.NewSQLiteRepository(db)
	if err != nil {
		return err
	}

	dayStore := store.New(repo)
	dayStore.Load(context.Background())

	client := gateway.NewClient(
		cfg.GatewayURL,
		cfg.GatewayAPIKey,
		gateway.WithTimeout(time.Duration(cfg.GatewayTimeoutSeconds)*time.Second),
	)

	log.WithFields(log.Fields{
		"db":  cfg.DatabasePath,
		"url": cfg.GatewayURL,
	}).Info("starting kiddotime")

	program := tea.NewProgram(update.NewModel(dayStore, client, cfg.AvailableTimeMinutes))
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}
