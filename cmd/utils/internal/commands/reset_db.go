package commands

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/bson"
)

// ResetDB drops the console database: drafts, products and seed tracking.
// The demo catalog is seeded again on the next start with seeding.demo.
func ResetDB(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	client, db, err := consoleDatabase(ctx, config, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	logger.Info("Dropping database", "database", db.Name())
	if err := db.RunCommand(ctx, bson.D{{Key: "dropDatabase", Value: 1}}).Err(); err != nil {
		return fmt.Errorf("drop database %s: %w", db.Name(), err)
	}
	logger.Info("Database dropped", "database", db.Name())
	return nil
}
