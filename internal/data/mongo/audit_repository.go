// Package mongo provides the MongoDB implementation of the audit archive.
// Audit events are written by the archiver binary, never by the financial
// core's request path.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/association-ledger/internal/domain/audit"
)

const (
	// AuditCollectionName is the name of the audit event collection in MongoDB
	AuditCollectionName = "audit_events"
)

// AuditRepository implements the audit.ArchiveRepository interface for MongoDB
type AuditRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewAuditRepository creates a new MongoDB audit archive repository
func NewAuditRepository(logger *slog.Logger, db *mongo.Database) audit.ArchiveRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores an audit event. Re-delivered events (same event ID) are
// ignored so the Kafka consumer can safely reprocess.
func (r *AuditRepository) Create(ctx context.Context, event *audit.Event) error {
	collection := r.db.Collection(AuditCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{"id": event.ID})
	if err != nil {
		r.logger.Error("Failed to check for existing audit event", "event_id", event.ID.String(), "error", err)
		return fmt.Errorf("failed to check for existing audit event: %w", err)
	}
	if count > 0 {
		r.logger.Debug("Audit event already archived, skipping", "event_id", event.ID.String())
		return nil
	}

	if _, err := collection.InsertOne(ctx, event); err != nil {
		r.logger.Error("Failed to archive audit event", "event_id", event.ID.String(), "error", err)
		return fmt.Errorf("failed to archive audit event: %w", err)
	}

	return nil
}

// ListByEntity retrieves paginated audit events for an entity, newest first
func (r *AuditRepository) ListByEntity(ctx context.Context, entityType audit.EntityType, entityID string, limit, offset int) ([]*audit.Event, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"entity_type": entityType, "entity_id": entityID}
	opts := options.Find().
		SetSort(bson.D{{Key: "recorded_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list audit events", "entity_id", entityID, "error", err)
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*audit.Event
	if err := cursor.All(ctx, &events); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("Failed to decode audit events", "entity_id", entityID, "error", err)
		return nil, fmt.Errorf("failed to decode audit events: %w", err)
	}

	return events, nil
}

// CountByEntity returns the number of archived events for an entity
func (r *AuditRepository) CountByEntity(ctx context.Context, entityType audit.EntityType, entityID string) (int64, error) {
	collection := r.db.Collection(AuditCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{"entity_type": entityType, "entity_id": entityID})
	if err != nil {
		r.logger.Error("Failed to count audit events", "entity_id", entityID, "error", err)
		return 0, fmt.Errorf("failed to count audit events: %w", err)
	}

	return count, nil
}
