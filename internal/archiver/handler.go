// Package archiver consumes audit events off the queue and persists them to
// the archive store.
package archiver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/association-ledger/internal/domain/audit"
)

// AuditEventHandler handles incoming audit event messages from Kafka
type AuditEventHandler struct {
	archive audit.ArchiveRepository
	logger  *slog.Logger
}

// NewAuditEventHandler creates a new handler
func NewAuditEventHandler(logger *slog.Logger, archive audit.ArchiveRepository) *AuditEventHandler {
	return &AuditEventHandler{
		archive: archive,
		logger:  logger,
	}
}

// HandleMessage processes Kafka messages. A message that cannot be decoded is
// logged and skipped: it will never become valid, and holding the offset back
// would wedge the partition.
func (h *AuditEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event audit.Event
	if err := json.Unmarshal(value, &event); err != nil {
		h.logger.Error("Failed to unmarshal audit event from Kafka message",
			"error", err,
			"message_key", string(key),
		)
		return nil
	}

	h.logger.Info("Received audit event for archival",
		"event_id", event.ID.String(),
		"action", string(event.Action),
		"entity_type", string(event.EntityType),
		"entity_id", event.EntityID,
	)

	if err := h.archive.Create(ctx, &event); err != nil {
		h.logger.Error("Failed to archive audit event",
			"event_id", event.ID.String(),
			"error", err,
		)
		return fmt.Errorf("archiving audit event %s failed: %w", event.ID.String(), err)
	}

	return nil // Success, commit offset
}
