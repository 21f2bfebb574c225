// Package audit defines the fire-and-forget audit trail contract. Recording
// failures are logged and swallowed; they never fail a financial operation.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action is what the actor did to the entity
type Action string

const (
	ActionCreate     Action = "CREATE"
	ActionApprove    Action = "APPROVE"
	ActionReject     Action = "REJECT"
	ActionCancel     Action = "CANCEL"
	ActionOpen       Action = "OPEN"
	ActionClose      Action = "CLOSE"
	ActionDeactivate Action = "DEACTIVATE"
)

// EntityType names the kind of record acted on
type EntityType string

const (
	EntityContribution EntityType = "CONTRIBUTION"
	EntityExpense      EntityType = "EXPENSE"
	EntityFund         EntityType = "FUND"
	EntityYear         EntityType = "FINANCIAL_YEAR"
)

// Event is one audit trail record
type Event struct {
	ID         uuid.UUID         `json:"id" bson:"id"`
	Action     Action            `json:"action" bson:"action"`
	EntityType EntityType        `json:"entity_type" bson:"entity_type"`
	EntityID   string            `json:"entity_id" bson:"entity_id"`
	ActorID    uuid.UUID         `json:"actor_id" bson:"actor_id"`
	Metadata   map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
	RecordedAt time.Time         `json:"recorded_at" bson:"recorded_at"`
}

// NewEvent stamps a new audit event with identity and time
func NewEvent(action Action, entityType EntityType, entityID string, actorID uuid.UUID, metadata map[string]string) *Event {
	return &Event{
		ID:         uuid.New(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		Metadata:   metadata,
		RecordedAt: time.Now().UTC(),
	}
}

// Recorder is the audit collaborator consumed by the engines
type Recorder interface {
	Record(ctx context.Context, event *Event) error
}

// ArchiveRepository persists audit events on the archival side
type ArchiveRepository interface {
	Create(ctx context.Context, event *Event) error
	ListByEntity(ctx context.Context, entityType EntityType, entityID string, limit, offset int) ([]*Event, error)
	CountByEntity(ctx context.Context, entityType EntityType, entityID string) (int64, error)
}
