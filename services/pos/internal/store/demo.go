package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/seed"
	"go.mongodb.org/mongo-driver/mongo"
)

const demoSeedApplication = "pos_demo"

// ApplyDemoSeeds loads the demo product catalog. With a database the applied
// seeds are tracked so restarts do not run them again; without one they run
// unconditionally against the memory store.
func ApplyDemoSeeds(ctx context.Context, s Store, db *mongo.Database, logger aqm.Logger) error {
	if s == nil {
		return errors.New("store is required for demo seeding")
	}
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}

	demoSeeds := buildDemoSeeds(s, logger)

	if db == nil {
		for _, sd := range demoSeeds {
			if err := sd.Run(ctx); err != nil {
				return fmt.Errorf("seed %s: %w", sd.ID, err)
			}
		}
		logger.Info("Demo seeds applied to memory store", "count", len(demoSeeds))
		return nil
	}

	tracker := seed.NewMongoTracker(db)

	logger.Info("Applying demo seeds")
	if err := seed.Apply(ctx, tracker, demoSeeds, demoSeedApplication); err != nil {
		return err
	}
	logger.Info("Demo seeds applied successfully")
	return nil
}

func buildDemoSeeds(s Store, logger aqm.Logger) []seed.Seed {
	return []seed.Seed{
		{
			ID:          "2024-12-01_demo_products_v1",
			Description: "Quick-add products for order entry",
			Run: func(ctx context.Context) error {
				return seedDemoProducts(ctx, s, logger)
			},
		},
	}
}

func demoProducts() []Product {
	return []Product{
		{ID: "espresso", Name: "Espresso", Category: "coffee", Price: 2.5, SortOrder: 1},
		{ID: "cappuccino", Name: "Cappuccino", Category: "coffee", Price: 4.5, SortOrder: 2},
		{ID: "flat-white", Name: "Flat White", Category: "coffee", Price: 4.8, SortOrder: 3},
		{ID: "iced-tea", Name: "House Iced Tea", Category: "beverage", Price: 5.0, SortOrder: 1},
		{ID: "sparkling-water", Name: "Sparkling Water", Category: "beverage", Price: 4.5, SortOrder: 2},
		{ID: "smash-burger", Name: "Smash Burger", Category: "kitchen", Price: 14.5, SortOrder: 1},
		{ID: "harvest-bowl", Name: "Harvest Bowl", Category: "kitchen", Price: 15.0, SortOrder: 2},
		{ID: "seared-salmon", Name: "Seared Salmon", Category: "kitchen", Price: 21.0, SortOrder: 3},
		{ID: "tiramisu", Name: "Tiramisu", Category: "dessert", Price: 9.5, SortOrder: 1},
		{ID: "lava-cake", Name: "Chocolate Lava Cake", Category: "dessert", Price: 10.0, SortOrder: 2},
	}
}

func seedDemoProducts(ctx context.Context, s Store, logger aqm.Logger) error {
	products := demoProducts()
	for _, p := range products {
		if err := s.SaveProduct(ctx, p); err != nil {
			return fmt.Errorf("create product %s: %w", p.Name, err)
		}
	}
	logger.Info("Created demo products", "count", len(products))
	return nil
}

// DemoSeedingFunc returns an aqm lifecycle OnStart-compatible function for demo seeding.
func DemoSeedingFunc(seedCtx context.Context, s Store, db func() *mongo.Database, logger aqm.Logger) func(ctx context.Context) error {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}

	return func(ctx context.Context) error {
		var database *mongo.Database
		if db != nil {
			database = db()
		}
		logger.Info("Starting demo seeding in background")
		go func() {
			if err := ApplyDemoSeeds(seedCtx, s, database, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("Demo seeds failed: %v", err)
			} else if err == nil {
				logger.Info("Demo seeding completed")
			}
		}()
		return nil
	}
}
