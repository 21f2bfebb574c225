package producers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/association-ledger/internal/domain/audit"
)

// MockKafkaWriter mocks KafkaWriter interface
type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestAuditEventProducer_Record(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("PublishesEventKeyedByEntity", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &AuditEventProducer{
			logger: logger,
			writer: mockWriter,
			topic:  "audit_events",
		}

		event := audit.NewEvent(audit.ActionApprove, audit.EntityContribution, uuid.New().String(), uuid.New(), nil)
		expectedValue, _ := json.Marshal(event)

		mockWriter.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			if len(msgs) != 1 {
				return false
			}
			return string(msgs[0].Key) == event.EntityID && string(msgs[0].Value) == string(expectedValue)
		})).Return(nil).Once()

		err := producer.Record(ctx, event)
		require.NoError(t, err)
		mockWriter.AssertExpectations(t)
	})

	t.Run("ReturnsErrorOnWriterError", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &AuditEventProducer{
			logger: logger,
			writer: mockWriter,
			topic:  "audit_events",
		}

		mockWriter.On("WriteMessages", ctx, mock.AnythingOfType("[]kafka.Message")).
			Return(errors.New("kafka write error")).Once()

		event := audit.NewEvent(audit.ActionClose, audit.EntityYear, "2025", uuid.New(), nil)
		err := producer.Record(ctx, event)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "audit_events")
	})
}

func TestAuditEventProducer_Close(t *testing.T) {
	t.Run("ClosesWriter", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		mockWriter.On("Close").Return(nil).Once()

		producer := &AuditEventProducer{
			logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
			writer: mockWriter,
			topic:  "audit_events",
		}
		require.NoError(t, producer.Close())
		mockWriter.AssertExpectations(t)
	})

	t.Run("PropagatesCloseError", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		mockWriter.On("Close").Return(errors.New("close failed")).Once()

		producer := &AuditEventProducer{
			logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
			writer: mockWriter,
			topic:  "audit_events",
		}
		require.Error(t, producer.Close())
	})
}
