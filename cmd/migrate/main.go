package main

import (
	"fmt"
	"os"

	"github.com/tastebud/tastebud-api/config"
	"github.com/tastebud/tastebud-api/pkg/db"
	"github.com/tastebud/tastebud-api/pkg/logger"
	"go.uber.org/zap"
)

const migrationsPath = "file://migrations"

// Applies pending migrations by default. "migrate down" rolls back the most
// recent one.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		ServiceName: "tastebud-migrate",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	logger.Info("Starting database migration",
		zap.String("direction", direction),
		zap.String("database", maskDatabaseURL(cfg.Database.URL)))

	switch direction {
	case "up":
		err = db.RunMigrations(cfg.Database.URL, migrationsPath)
	case "down":
		err = db.RollbackLastMigration(cfg.Database.URL, migrationsPath)
	default:
		fmt.Fprintf(os.Stderr, "Unknown direction %q, expected \"up\" or \"down\"\n", direction)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("Migration failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Database migration completed successfully")
}

// maskDatabaseURL hides credentials in the connection URL for logging
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:20] + "***"
	}
	return "***"
}
