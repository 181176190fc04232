package mongodb

import (
	"context"
	"fmt"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
	"github.com/mamadbah2/decentfoods/internal/repository"
)

const (
	purchasesCollection = "purchases"
	salesCollection     = "sales"
	paymentsCollection  = "payments"
	ordersCollection    = "orders"
	reportsCollection   = "period_reports"
)

// MongoDBRepository keeps every collection in MongoDB. Saves replace the
// whole collection; period reports are appended to their own collection.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

var (
	_ repository.Store         = (*MongoDBRepository)(nil)
	_ repository.ReportArchive = (*MongoDBRepository)(nil)
)

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri).SetRegistry(newRegistry())
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}, nil
}

// LoadPurchases reads the purchases collection.
func (r *MongoDBRepository) LoadPurchases(ctx context.Context) ([]models.PurchaseRecord, error) {
	purchases, err := loadAll[models.PurchaseRecord](ctx, r, purchasesCollection)
	for i := range purchases {
		purchases[i] = repository.NormalizePurchase(purchases[i])
	}
	return purchases, err
}

// SavePurchases replaces the purchases collection.
func (r *MongoDBRepository) SavePurchases(ctx context.Context, purchases []models.PurchaseRecord) error {
	return replaceAll(ctx, r, purchasesCollection, purchases)
}

// LoadSales reads the sales collection.
func (r *MongoDBRepository) LoadSales(ctx context.Context) ([]models.SaleRecord, error) {
	return loadAll[models.SaleRecord](ctx, r, salesCollection)
}

// SaveSales replaces the sales collection.
func (r *MongoDBRepository) SaveSales(ctx context.Context, sales []models.SaleRecord) error {
	return replaceAll(ctx, r, salesCollection, sales)
}

// LoadPayments reads the payments collection.
func (r *MongoDBRepository) LoadPayments(ctx context.Context) ([]models.PaymentRecord, error) {
	return loadAll[models.PaymentRecord](ctx, r, paymentsCollection)
}

// SavePayments replaces the payments collection.
func (r *MongoDBRepository) SavePayments(ctx context.Context, payments []models.PaymentRecord) error {
	return replaceAll(ctx, r, paymentsCollection, payments)
}

// LoadOrders reads the orders collection.
func (r *MongoDBRepository) LoadOrders(ctx context.Context) ([]models.OrderRecord, error) {
	return loadAll[models.OrderRecord](ctx, r, ordersCollection)
}

// SaveOrders replaces the orders collection.
func (r *MongoDBRepository) SaveOrders(ctx context.Context, orders []models.OrderRecord) error {
	return replaceAll(ctx, r, ordersCollection, orders)
}

// SaveReport appends a period report snapshot.
func (r *MongoDBRepository) SaveReport(ctx context.Context, report models.PeriodReport) error {
	collection := r.db.Collection(reportsCollection)
	_, err := collection.InsertOne(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to insert period report: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// loadAll decodes a collection in insertion order. A collection that does not
// exist yet is absent. A read that fails part way returns nothing, never a
// partial collection. Documents that fail to decode are skipped.
func loadAll[T any](ctx context.Context, r *MongoDBRepository, name string) ([]T, error) {
	out := []T{}

	exists, err := r.collectionExists(ctx, name)
	if err != nil {
		r.logger.Warn("mongodb unreachable", zap.String("collection", name), zap.Error(err))
		return out, repository.Unavailable(name, err)
	}
	if !exists {
		r.logger.Debug("collection absent", zap.String("collection", name))
		return out, repository.Absent(name, nil)
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.db.Collection(name).Find(ctx, bson.D{}, findOpts)
	if err != nil {
		r.logger.Warn("collection read failed", zap.String("collection", name), zap.Error(err))
		return out, repository.Unavailable(name, err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var record T
		if err := cursor.Decode(&record); err != nil {
			r.logger.Warn("skip undecodable record", zap.String("collection", name), zap.Error(err))
			continue
		}
		out = append(out, record)
	}
	if err := cursor.Err(); err != nil {
		r.logger.Warn("collection read interrupted", zap.String("collection", name), zap.Int("decoded", len(out)), zap.Error(err))
		return []T{}, repository.Unavailable(name, err)
	}
	return out, nil
}

// replaceAll swaps the collection contents for records. The delete and the
// insert are separate operations; a failed insert leaves the collection empty.
func replaceAll[T any](ctx context.Context, r *MongoDBRepository, name string, records []T) error {
	if err := r.ensureCollection(ctx, name); err != nil {
		return err
	}

	collection := r.db.Collection(name)
	if _, err := collection.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("clear %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(records))
	for _, record := range slices.Clone(records) {
		docs = append(docs, record)
	}
	if _, err := collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return fmt.Errorf("insert %s: %w", name, err)
	}

	r.logger.Debug("collection replaced", zap.String("collection", name), zap.Int("documents", len(docs)))
	return nil
}

func (r *MongoDBRepository) collectionExists(ctx context.Context, name string) (bool, error) {
	names, err := r.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return false, err
	}
	return slices.Contains(names, name), nil
}

func (r *MongoDBRepository) ensureCollection(ctx context.Context, name string) error {
	exists, err := r.collectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", name, err)
	}
	if exists {
		return nil
	}
	if err := r.db.CreateCollection(ctx, name); err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	return nil
}
