package expense

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/association-ledger/internal/domain/shared"
)

func newPendingExpense(t *testing.T) *Expense {
	t.Helper()
	e, err := NewExpense(uuid.New(), "hall cleaning", decimal.NewFromInt(250), time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC), uuid.New())
	require.NoError(t, err)
	return e
}

func TestNewExpense(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		e := newPendingExpense(t)
		assert.Equal(t, StatusPending, e.Status)
		assert.Nil(t, e.ApprovedBy)
		assert.Nil(t, e.ApprovedAt)
	})

	t.Run("EmptyPurpose", func(t *testing.T) {
		_, err := NewExpense(uuid.New(), "", decimal.NewFromInt(250), time.Now(), uuid.New())
		assert.ErrorIs(t, err, ErrEmptyPurpose)
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		_, err := NewExpense(uuid.New(), "hall cleaning", decimal.Zero, time.Now(), uuid.New())
		assert.ErrorIs(t, err, ErrNonPositiveAmount)
	})
}

func TestExpense_Approve(t *testing.T) {
	approver := uuid.New()
	at := time.Now()

	t.Run("PendingToApproved", func(t *testing.T) {
		e := newPendingExpense(t)
		require.NoError(t, e.Approve(approver, at))

		assert.Equal(t, StatusApproved, e.Status)
		require.NotNil(t, e.ApprovedBy)
		assert.Equal(t, approver, *e.ApprovedBy)
	})

	t.Run("SecondApproveFails", func(t *testing.T) {
		e := newPendingExpense(t)
		require.NoError(t, e.Approve(approver, at))

		err := e.Approve(approver, at)
		assert.True(t, errors.Is(err, shared.ErrInvalidStateTransition{}))
	})

	t.Run("ApproveCancelledFails", func(t *testing.T) {
		e := newPendingExpense(t)
		require.NoError(t, e.Cancel("not needed", uuid.New(), at))

		err := e.Approve(approver, at)
		assert.True(t, errors.Is(err, shared.ErrInvalidStateTransition{}))
	})
}

func TestExpense_Cancel(t *testing.T) {
	actor := uuid.New()
	at := time.Now()

	t.Run("FromPending", func(t *testing.T) {
		e := newPendingExpense(t)
		require.NoError(t, e.Cancel("duplicate request", actor, at))

		assert.Equal(t, StatusCancelled, e.Status)
		assert.Equal(t, "duplicate request", e.CancelReason)
	})

	t.Run("FromApproved", func(t *testing.T) {
		e := newPendingExpense(t)
		require.NoError(t, e.Approve(uuid.New(), at))
		require.NoError(t, e.Cancel("vendor refunded", actor, at))

		assert.Equal(t, StatusCancelled, e.Status)
		// Approval trail survives the cancellation
		assert.NotNil(t, e.ApprovedBy)
	})

	t.Run("AlreadyCancelled", func(t *testing.T) {
		e := newPendingExpense(t)
		require.NoError(t, e.Cancel("duplicate request", actor, at))

		err := e.Cancel("again", actor, at)
		assert.True(t, errors.Is(err, shared.ErrInvalidStateTransition{}))
	})

	t.Run("EmptyReason", func(t *testing.T) {
		e := newPendingExpense(t)
		err := e.Cancel("", actor, at)
		assert.ErrorIs(t, err, ErrEmptyReason)
		assert.Equal(t, StatusPending, e.Status)
	})
}

func TestExpense_FiscalYear(t *testing.T) {
	e, err := NewExpense(uuid.New(), "generator fuel", decimal.NewFromInt(100), time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 2024, e.FiscalYear())
}
