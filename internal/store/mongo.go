package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wayfare/backend/internal/models"
)

const defaultAuditLimit = 50

// AuditStore keeps change events in the MongoDB "audit" collection.
type AuditStore struct {
	col *mongo.Collection
}

func NewAuditStore(db *mongo.Database) *AuditStore {
	return &AuditStore{col: db.Collection("audit")}
}

// EnsureIndexes creates the (entity, at) index used by List.
func (s *AuditStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "entity", Value: 1}, {Key: "at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("mongo audit index: %w", err)
	}
	return nil
}

func (s *AuditStore) Record(ctx context.Context, ev models.AuditEvent) error {
	if _, err := s.col.InsertOne(ctx, ev); err != nil {
		return fmt.Errorf("mongo insert audit: %w", err)
	}
	return nil
}

// List returns the newest events first, optionally for one entity.
func (s *AuditStore) List(ctx context.Context, entity string, limit int64) ([]models.AuditEvent, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	filter := bson.M{}
	if entity != "" {
		filter["entity"] = entity
	}
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}}).SetLimit(limit)
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo list audit: %w", err)
	}
	defer cur.Close(ctx)

	events := []models.AuditEvent{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
