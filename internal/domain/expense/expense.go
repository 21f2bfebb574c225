// Package expense models outgoing payments that require approval and a
// solvency check before they affect a fund balance.
package expense

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/association-ledger/internal/domain/shared"
)

// Common errors
var (
	ErrNonPositiveAmount = errors.New("expense amount must be positive")
	ErrEmptyPurpose      = errors.New("expense purpose cannot be empty")
	ErrEmptyReason       = errors.New("a non-empty reason is required")
)

// Status of an expense: PENDING -> APPROVED | CANCELLED, APPROVED -> CANCELLED
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusCancelled Status = "CANCELLED"
)

// Expense is an outgoing payment request against a fund
type Expense struct {
	ID           uuid.UUID       `json:"id"`
	FundID       uuid.UUID       `json:"fund_id"`
	Purpose      string          `json:"purpose"`
	Amount       decimal.Decimal `json:"amount"`
	ExpenseDate  time.Time       `json:"expense_date"`
	Status       Status          `json:"status"`
	RequestedBy  uuid.UUID       `json:"requested_by"`
	ApprovedBy   *uuid.UUID      `json:"approved_by,omitempty"`
	ApprovedAt   *time.Time      `json:"approved_at,omitempty"`
	CancelledBy  *uuid.UUID      `json:"cancelled_by,omitempty"`
	CancelledAt  *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason string          `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewExpense creates a PENDING expense dated expenseDate
func NewExpense(fundID uuid.UUID, purpose string, amount decimal.Decimal, expenseDate time.Time, requestedBy uuid.UUID) (*Expense, error) {
	if purpose == "" {
		return nil, ErrEmptyPurpose
	}
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	now := time.Now()
	return &Expense{
		ID:          uuid.New(),
		FundID:      fundID,
		Purpose:     purpose,
		Amount:      amount,
		ExpenseDate: expenseDate,
		Status:      StatusPending,
		RequestedBy: requestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Approve moves PENDING -> APPROVED. Solvency is the engine's concern; the
// record only enforces the state machine.
func (e *Expense) Approve(approverID uuid.UUID, at time.Time) error {
	if e.Status != StatusPending {
		return shared.ErrInvalidStateTransition{Entity: "expense", ID: e.ID, From: string(e.Status), To: string(StatusApproved)}
	}

	e.Status = StatusApproved
	e.ApprovedBy = &approverID
	e.ApprovedAt = &at
	e.UpdatedAt = time.Now()
	return nil
}

// Cancel moves PENDING or APPROVED -> CANCELLED. Cancelling a pending expense
// is a plain rejection; cancelling an approved one requires the engine to
// reverse the committed debit.
func (e *Expense) Cancel(reason string, actorID uuid.UUID, at time.Time) error {
	if reason == "" {
		return ErrEmptyReason
	}
	if e.Status == StatusCancelled {
		return shared.ErrInvalidStateTransition{Entity: "expense", ID: e.ID, From: string(e.Status), To: string(StatusCancelled)}
	}

	e.Status = StatusCancelled
	e.CancelReason = reason
	e.CancelledBy = &actorID
	e.CancelledAt = &at
	e.UpdatedAt = time.Now()
	return nil
}

// FiscalYear is the year of the expense date, which governs year closing
func (e *Expense) FiscalYear() int {
	return e.ExpenseDate.Year()
}
