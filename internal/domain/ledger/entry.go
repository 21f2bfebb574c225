package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrNonPositiveAmount = errors.New("ledger amount must be positive")
	ErrNegativeBalance   = errors.New("ledger entry would drive balance negative")
	ErrInvalidEntryType  = errors.New("ledger entry type is not recognized")
	ErrInvalidSource     = errors.New("ledger entry source is not recognized")
)

// EntryType is the sign of a ledger entry: CREDIT adds to the fund balance,
// DEBIT subtracts from it.
type EntryType string

const (
	EntryCredit EntryType = "CREDIT"
	EntryDebit  EntryType = "DEBIT"
)

// Source identifies the financial record a ledger entry was committed for
type Source string

const (
	SourceContribution         Source = "CONTRIBUTION"
	SourceExpense              Source = "EXPENSE"
	SourceExpenseReversal      Source = "EXPENSE_REVERSAL"
	SourceContributionReversal Source = "CONTRIBUTION_REVERSAL"
)

// Entry is one immutable signed monetary event in a fund's ledger. Entries are
// append-only: corrections are new reversal entries, never updates or deletes.
// For consecutive entries of a fund, BalanceAfter[n] = BalanceAfter[n-1] plus
// the amount for credits and minus the amount for debits, starting from zero.
type Entry struct {
	ID           uuid.UUID       `json:"id"`
	FundID       uuid.UUID       `json:"fund_id"`
	EntryType    EntryType       `json:"entry_type"`
	Source       Source          `json:"source"`
	SourceID     uuid.UUID       `json:"source_id"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreatedBy    uuid.UUID       `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewEntry builds the next ledger entry for a fund from the balance observed
// under the fund lock. Debits below zero are rejected here as a last line of
// defense; the expense engine checks solvency before calling.
func NewEntry(fundID uuid.UUID, entryType EntryType, source Source, sourceID uuid.UUID, amount, currentBalance decimal.Decimal, createdBy uuid.UUID) (*Entry, error) {
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	switch source {
	case SourceContribution, SourceExpense, SourceExpenseReversal, SourceContributionReversal:
	default:
		return nil, ErrInvalidSource
	}

	var balanceAfter decimal.Decimal
	switch entryType {
	case EntryCredit:
		balanceAfter = currentBalance.Add(amount)
	case EntryDebit:
		balanceAfter = currentBalance.Sub(amount)
		if balanceAfter.IsNegative() {
			return nil, ErrNegativeBalance
		}
	default:
		return nil, ErrInvalidEntryType
	}

	return &Entry{
		ID:           uuid.New(),
		FundID:       fundID,
		EntryType:    entryType,
		Source:       source,
		SourceID:     sourceID,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		CreatedBy:    createdBy,
		CreatedAt:    time.Now(),
	}, nil
}

// Signed returns the entry amount with its ledger sign applied
func (e *Entry) Signed() decimal.Decimal {
	if e.EntryType == EntryDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}
