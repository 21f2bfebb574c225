package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestErrorMatching(t *testing.T) {
	t.Run("ZeroValueMatchesAnyInstance", func(t *testing.T) {
		id := uuid.New()

		assert.True(t, errors.Is(ErrInvalidStateTransition{Entity: "expense", ID: id, From: "APPROVED", To: "APPROVED"}, ErrInvalidStateTransition{}))
		assert.True(t, errors.Is(ErrYearClosed{Year: 2024}, ErrYearClosed{}))
		assert.True(t, errors.Is(ErrInsufficientFunds{FundID: id, Balance: "50", Requested: "100"}, ErrInsufficientFunds{}))
		assert.True(t, errors.Is(ErrConcurrencyConflict{Resource: "fund"}, ErrConcurrencyConflict{}))
		assert.True(t, errors.Is(ErrValidation{Field: "amount", Reason: "not a decimal"}, ErrValidation{}))
	})

	t.Run("PopulatedTargetMatchesSameInstance", func(t *testing.T) {
		assert.True(t, errors.Is(ErrYearClosed{Year: 2024}, ErrYearClosed{Year: 2024}))
		assert.False(t, errors.Is(ErrYearClosed{Year: 2024}, ErrYearClosed{Year: 2025}))
	})

	t.Run("KindsDoNotCrossMatch", func(t *testing.T) {
		assert.False(t, errors.Is(ErrYearClosed{Year: 2024}, ErrYearAlreadyClosed{}))
		assert.False(t, errors.Is(ErrYearAlreadyClosed{Year: 2024}, ErrYearClosed{}))
	})

	t.Run("MatchThroughWrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("approve contribution: %w", ErrConcurrencyConflict{Resource: "fund"})
		assert.True(t, errors.Is(wrapped, ErrConcurrencyConflict{}))
	})

	t.Run("PersistenceUnwraps", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := ErrPersistence{Op: "fund.Create", Err: cause}
		assert.True(t, errors.Is(err, cause))
		assert.True(t, errors.Is(err, ErrPersistence{}))
	})
}
