package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/association-ledger/internal/domain/audit"
)

// AuditDispatcher receives audit notifications after a financial transaction
// has committed. Implementations must never block the caller and must never
// surface failures to it.
type AuditDispatcher interface {
	Dispatch(action audit.Action, entityType audit.EntityType, entityID string, actorID uuid.UUID, metadata map[string]string)
}

// Dispatcher runs post-commit side effects on a bounded worker pool. The
// engines enqueue work only after their transaction has committed, so a slow
// or failing audit sink can never hold a fund lock or fail an approval.
type Dispatcher struct {
	pool     *ants.Pool
	recorder audit.Recorder
	timeout  time.Duration
	logger   *slog.Logger
}

var _ AuditDispatcher = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher backed by an ants pool of the given size
func NewDispatcher(recorder audit.Recorder, poolSize int, timeout time.Duration, logger *slog.Logger) (*Dispatcher, error) {
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	return &Dispatcher{
		pool:     pool,
		recorder: recorder,
		timeout:  timeout,
		logger:   logger,
	}, nil
}

// Dispatch enqueues an audit event. Submission and recording failures are
// logged and swallowed.
func (d *Dispatcher) Dispatch(action audit.Action, entityType audit.EntityType, entityID string, actorID uuid.UUID, metadata map[string]string) {
	event := audit.NewEvent(action, entityType, entityID, actorID, metadata)

	err := d.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.recorder.Record(ctx, event); err != nil {
			d.logger.Error("Failed to record audit event",
				"event_id", event.ID.String(),
				"action", event.Action,
				"entity_type", event.EntityType,
				"entity_id", event.EntityID,
				"error", err,
			)
		}
	})
	if err != nil {
		d.logger.Error("Failed to submit audit event to dispatcher pool",
			"event_id", event.ID.String(),
			"action", event.Action,
			"error", err,
		)
	}
}

// Shutdown releases the worker pool
func (d *Dispatcher) Shutdown() {
	d.logger.Info("Shutting down dispatcher pool", "running_workers", d.pool.Running())
	d.pool.Release()
}

// Running returns the number of in-flight side-effect workers
func (d *Dispatcher) Running() int {
	return d.pool.Running()
}
