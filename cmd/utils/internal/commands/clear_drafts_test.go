package commands

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestDraftFilter(t *testing.T) {
	now := time.Date(2024, 12, 1, 12, 0, 0, 0, time.UTC)

	if got := draftFilter(now, 0); len(got) != 0 {
		t.Errorf("draftFilter(0) = %v, want match-all", got)
	}

	got := draftFilter(now, 2*time.Hour)
	cond, ok := got["updated_at"].(bson.M)
	if !ok {
		t.Fatalf("draftFilter() = %v, want updated_at condition", got)
	}
	if cutoff := cond["$lt"]; cutoff != now.Add(-2*time.Hour) {
		t.Errorf("cutoff = %v, want %v", cutoff, now.Add(-2*time.Hour))
	}
}
