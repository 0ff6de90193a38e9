package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/appetiteclub/pos/cmd/utils/internal/commands"
	"github.com/aquamarinepk/aqm"
)

const (
	appName    = "pos-utils"
	appVersion = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Same namespace as the console so both read the same db.mongo.* keys.
	config, err := aqm.LoadConfig("POS", os.Args[2:])
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	logLevel := config.GetStringOrDef("log.level", "info")
	logger := aqm.NewLogger(logLevel)

	ctx := context.Background()
	command := os.Args[1]

	switch command {
	case "clear-drafts":
		olderThan := time.Duration(0)
		if raw, _ := config.GetString("drafts.older_than"); raw != "" {
			olderThan, err = time.ParseDuration(raw)
			if err != nil {
				log.Fatalf("Invalid drafts.older_than %q: %v", raw, err)
			}
		}
		if err := commands.ClearDrafts(ctx, config, logger, olderThan); err != nil {
			log.Fatalf("Clear drafts failed: %v", err)
		}
		logger.Info("Drafts cleared")

	case "reset-db":
		if err := commands.ResetDB(ctx, config, logger); err != nil {
			log.Fatalf("Database reset failed: %v", err)
		}
		logger.Info("Database reset completed")

	case "version":
		fmt.Printf("%s version %s\n", appName, appVersion)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - point-of-sale console utility commands

Usage:
  %s <command> [options]

Commands:
  clear-drafts  Delete terminal drafts (all, or older than POS_DRAFTS_OLDER_THAN)
  reset-db      Drop the console database (drafts, products, seed tracking)
  version       Print version information
  help          Show this help message

Environment Variables:
  POS_DB_MONGO_URL        MongoDB connection URL (default: mongodb://localhost:27017)
  POS_DB_MONGO_NAME       Console database (default: pos_console)
  POS_DRAFTS_OLDER_THAN   Age filter for clear-drafts, e.g. 12h
  POS_LOG_LEVEL           Log level: debug, info, warn, error (default: info)

Examples:
  POS_DRAFTS_OLDER_THAN=24h %s clear-drafts
  POS_DB_MONGO_URL=mongodb://localhost:27017 %s reset-db

`, appName, appName, appName, appName)
}
