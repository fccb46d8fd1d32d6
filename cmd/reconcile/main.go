package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/dmflow/backend/internal/application/reconcile"
	"github.com/dmflow/backend/internal/infrastructure/config"
	"github.com/dmflow/backend/internal/infrastructure/legacy"
	"github.com/dmflow/backend/internal/infrastructure/logger"
	"github.com/dmflow/backend/internal/infrastructure/persistence"
)

func main() {
	var (
		logLevel string
		timeout  time.Duration
	)
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.DurationVar(&timeout, "timeout", 10*time.Minute, "Overall run timeout")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(logLevel))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	source, err := legacy.NewStore(ctx, &cfg.Legacy)
	if err != nil {
		log.Fatal("Failed to connect to legacy store", zap.Error(err))
	}
	defer func() {
		_ = source.Close(context.Background())
	}()

	reconciler := reconcile.NewReconciler(source, persistence.NewReconcileStore(db.DB), log)

	switch command {
	case "run":
		report, err := reconciler.Run(ctx)
		if err != nil {
			log.Fatal("Reconciliation failed", zap.Error(err))
		}
		log.Info("Reconciliation completed",
			zap.Int("tiers", report.Tiers),
			zap.Int("billing_accounts", report.BillingAccounts),
			zap.Int("users", report.Users),
			zap.Int("subscriptions", report.Subscriptions),
			zap.Int("workspaces", report.Workspaces),
			zap.Int("members", report.Members),
			zap.Int("usage_counters", report.UsageCounters),
			zap.Int("skipped", report.Skipped))
	case "factory-reset":
		keep := cfg.Reconcile.KeepAdminEmail
		if len(args) > 1 {
			keep = args[1]
		}
		if keep == "" {
			log.Fatal("No admin email to preserve. Set reconcile.keep_admin_email or pass it as an argument.")
		}
		if err := reconciler.FactoryReset(ctx, keep); err != nil {
			log.Fatal("Factory reset failed", zap.Error(err))
		}
		log.Info("Factory reset completed", zap.String("kept_user", keep))
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: reconcile [flags] <command>

Commands:
  run                      Project legacy document-store data into the relational schema
  factory-reset [email]    Wipe both stores, keeping only the given admin user

Flags:
  -log-level <lvl>   Log level (default: info)
  -timeout <dur>     Overall run timeout (default: 10m)`)
}
