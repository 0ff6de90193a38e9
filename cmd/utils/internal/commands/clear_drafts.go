package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/bson"
)

// ClearDrafts removes terminal drafts not touched for longer than olderThan.
// A zero duration removes every draft.
func ClearDrafts(ctx context.Context, config *aqm.Config, logger aqm.Logger, olderThan time.Duration) error {
	client, db, err := consoleDatabase(ctx, config, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	result, err := db.Collection("drafts").DeleteMany(ctx, draftFilter(time.Now(), olderThan))
	if err != nil {
		return fmt.Errorf("delete drafts: %w", err)
	}
	logger.Info("Deleted drafts", "count", result.DeletedCount)
	return nil
}

func draftFilter(now time.Time, olderThan time.Duration) bson.M {
	if olderThan <= 0 {
		return bson.M{}
	}
	return bson.M{"updated_at": bson.M{"$lt": now.Add(-olderThan)}}
}
