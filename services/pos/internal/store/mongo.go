package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appetiteclub/pos/pkg/order"
	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	draftsCollection   = "drafts"
	productsCollection = "products"
)

type draftDocument struct {
	Session   string      `bson:"_id"`
	Draft     order.Draft `bson:"draft"`
	UpdatedAt time.Time   `bson:"updated_at"`
}

// MongoStore persists terminal drafts and the product catalog in MongoDB so
// they survive console restarts.
type MongoStore struct {
	client   *mongo.Client
	db       *mongo.Database
	drafts   *mongo.Collection
	products *mongo.Collection
	logger   aqm.Logger
	config   *aqm.Config
}

func NewMongoStore(config *aqm.Config, logger aqm.Logger) *MongoStore {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &MongoStore{
		logger: logger,
		config: config,
	}
}

func (s *MongoStore) Start(ctx context.Context) error {
	mongoURL := s.config.GetStringOrDef("db.mongo.url", "mongodb://localhost:27017")
	dbName := s.config.GetStringOrDef("db.mongo.name", "pos_console")

	clientOptions := options.Client().ApplyURI(mongoURL).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("cannot connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("cannot ping MongoDB: %w", err)
	}

	s.client = client
	s.db = client.Database(dbName)
	s.drafts = s.db.Collection(draftsCollection)
	s.products = s.db.Collection(productsCollection)

	categoryIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "category", Value: 1}, {Key: "sort_order", Value: 1}},
	}
	if _, err := s.products.Indexes().CreateOne(ctx, categoryIndex); err != nil {
		return fmt.Errorf("cannot create category index: %w", err)
	}

	s.logger.Infof("Connected to MongoDB: %s, database: %s", mongoURL, dbName)
	return nil
}

// Database exposes the connected database for seed tracking.
func (s *MongoStore) Database() *mongo.Database {
	return s.db
}

func (s *MongoStore) Stop(ctx context.Context) error {
	if s.client != nil {
		if err := s.client.Disconnect(ctx); err != nil {
			return fmt.Errorf("cannot disconnect from MongoDB: %w", err)
		}
		s.logger.Info("Disconnected from MongoDB")
	}
	return nil
}

func (s *MongoStore) Draft(ctx context.Context, session string) (order.Draft, error) {
	var doc draftDocument
	err := s.drafts.FindOne(ctx, bson.M{"_id": session}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return order.Draft{}, ErrNotFound
		}
		return order.Draft{}, fmt.Errorf("cannot find draft: %w", err)
	}
	doc.Draft.EnsureKey()
	return doc.Draft, nil
}

func (s *MongoStore) SaveDraft(ctx context.Context, session string, d order.Draft) error {
	if session == "" {
		return errors.New("session is required")
	}
	d.EnsureKey()

	doc := draftDocument{Session: session, Draft: d, UpdatedAt: time.Now()}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.drafts.ReplaceOne(ctx, bson.M{"_id": session}, doc, opts); err != nil {
		return fmt.Errorf("cannot save draft: %w", err)
	}
	return nil
}

func (s *MongoStore) DeleteDraft(ctx context.Context, session string) error {
	if _, err := s.drafts.DeleteOne(ctx, bson.M{"_id": session}); err != nil {
		return fmt.Errorf("cannot delete draft: %w", err)
	}
	return nil
}

func (s *MongoStore) Products(ctx context.Context) ([]Product, error) {
	cursor, err := s.products.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("cannot list products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("cannot decode products: %w", err)
	}
	sortProducts(products)
	return products, nil
}

func (s *MongoStore) Product(ctx context.Context, id string) (Product, error) {
	var p Product
	err := s.products.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("cannot find product: %w", err)
	}
	return p, nil
}

func (s *MongoStore) SaveProduct(ctx context.Context, p Product) error {
	if p.ID == "" {
		return errors.New("product id is required")
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.products.ReplaceOne(ctx, bson.M{"_id": p.ID}, p, opts); err != nil {
		return fmt.Errorf("cannot save product: %w", err)
	}
	return nil
}
