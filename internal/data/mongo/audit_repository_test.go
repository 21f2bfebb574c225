package mongo

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

// Query behavior against the driver needs a live server; the read/write paths
// are covered by the archiver handler tests over the repository interface.
func TestNewAuditRepository(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := NewAuditRepository(logger, &mongo.Database{})

	assert.NotNil(t, repo)
	assert.IsType(t, &AuditRepository{}, repo)
}
