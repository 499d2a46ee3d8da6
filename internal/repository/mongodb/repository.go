package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/scgoddard/InventoryManagement/internal/domain/models"
)

const snapshotsCollection = "metrics_snapshots"

// MetricsArchive keeps one document per committed reconciliation pass.
type MetricsArchive struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMetricsArchive connects to MongoDB and verifies the connection.
func NewMetricsArchive(ctx context.Context, uri string, dbName string) (*MetricsArchive, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MetricsArchive{
		client:   client,
		dbName:   dbName,
		collName: snapshotsCollection,
	}, nil
}

// SaveSnapshot stores the dashboard values of one pass.
func (r *MetricsArchive) SaveSnapshot(ctx context.Context, snapshot models.MetricsSnapshot) error {
	collection := r.client.Database(r.dbName).Collection(r.collName)
	if _, err := collection.InsertOne(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to insert metrics snapshot %s: %w", snapshot.RunID, err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MetricsArchive) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
