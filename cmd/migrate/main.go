package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/dmflow/backend/internal/infrastructure/config"
	"github.com/dmflow/backend/internal/infrastructure/logger"
	"github.com/dmflow/backend/internal/infrastructure/migration"
)

const defaultMigrationsPath = "migrations"

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", defaultMigrationsPath, "Path to migrations directory")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
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

	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		log.Fatal("Failed to resolve migrations path", zap.Error(err))
	}
	migrationsPath = absPath

	// create and list work without a database connection
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name>")
		}
		mf, err := migration.CreateMigration(migrationsPath, args[1])
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath))
		return
	case "list":
		migrations, err := migration.ListMigrations(migrationsPath)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		for _, m := range migrations {
			fmt.Println(m)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	migrator, err := migration.NewFromURL(cfg.Database.DSN(), migrationsPath, log)
	if err != nil {
		log.Fatal("Failed to initialize migrator", zap.Error(err))
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			log.Error("Error closing migrator", zap.Error(err))
		}
	}()

	switch command {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "steps":
		if len(args) < 2 {
			log.Fatal("Step count required. Usage: migrate steps <n>")
		}
		n, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			log.Fatal("Invalid step count", zap.String("value", args[1]))
		}
		err = migrator.Steps(n)
	case "version":
		version, dirty, verErr := migrator.Version()
		if verErr != nil {
			log.Fatal("Failed to read version", zap.Error(verErr))
		}
		log.Info("Current migration version",
			zap.Uint("version", version),
			zap.Bool("dirty", dirty))
		return
	case "force":
		if len(args) < 2 {
			log.Fatal("Version required. Usage: migrate force <version>")
		}
		v, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			log.Fatal("Invalid version", zap.String("value", args[1]))
		}
		err = migrator.Force(v)
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatal("Migration failed", zap.String("command", command), zap.Error(err))
	}
	log.Info("Migration command completed", zap.String("command", command))
}

func printUsage() {
	fmt.Println(`Usage: migrate [flags] <command>

Commands:
  up                 Apply all pending migrations
  down               Roll back all migrations
  steps <n>          Apply n migrations (negative rolls back)
  version            Print the current migration version
  force <version>    Set the version without running migrations
  create <name>      Create a new up/down migration pair
  list               List available migrations

Flags:
  -path <dir>        Migrations directory (default: ./migrations)
  -log-level <lvl>   Log level (default: info)`)
}
