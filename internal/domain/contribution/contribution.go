// Package contribution models incoming payments that require treasurer
// approval before they affect a fund balance.
package contribution

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/association-ledger/internal/domain/shared"
)

// Common errors
var (
	ErrNonPositiveAmount  = errors.New("contribution amount must be positive")
	ErrEmptyPayerRef      = errors.New("payer reference cannot be empty")
	ErrInvalidPaymentMode = errors.New("payment mode is not recognized")
	ErrEmptyReason        = errors.New("a non-empty reason is required")
)

// Status of a contribution. Every transition is terminal for its edge:
// PENDING -> APPROVED | REJECTED, APPROVED -> CANCELLED.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

// PaymentMode is how the payer handed over the money
type PaymentMode string

const (
	ModeCash   PaymentMode = "CASH"
	ModeUPI    PaymentMode = "UPI"
	ModeCheque PaymentMode = "CHEQUE"
	ModeBank   PaymentMode = "BANK_TRANSFER"
)

// Contribution is an incoming payment request. It is a financial record and is
// never physically deleted; only the approval engine mutates it.
type Contribution struct {
	ID           uuid.UUID       `json:"id"`
	FundID       uuid.UUID       `json:"fund_id"`
	PayerRef     string          `json:"payer_ref"` // member id or donor reference
	Amount       decimal.Decimal `json:"amount"`
	PaymentMode  PaymentMode     `json:"payment_mode"`
	ReferenceNo  string          `json:"reference_no,omitempty"`
	Status       Status          `json:"status"`
	ReceiptNo    *string         `json:"receipt_no,omitempty"`
	ReceiptDate  *time.Time      `json:"receipt_date,omitempty"`
	ApprovedBy   *uuid.UUID      `json:"approved_by,omitempty"`
	RejectReason string          `json:"reject_reason,omitempty"`
	CancelReason string          `json:"cancel_reason,omitempty"`
	CancelledBy  *uuid.UUID      `json:"cancelled_by,omitempty"`
	CancelledAt  *time.Time      `json:"cancelled_at,omitempty"`
	CreatedBy    uuid.UUID       `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewContribution creates a PENDING contribution. No ledger effect until approval.
func NewContribution(fundID uuid.UUID, payerRef string, amount decimal.Decimal, mode PaymentMode, referenceNo string, createdBy uuid.UUID) (*Contribution, error) {
	if payerRef == "" {
		return nil, ErrEmptyPayerRef
	}
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	switch mode {
	case ModeCash, ModeUPI, ModeCheque, ModeBank:
	default:
		return nil, ErrInvalidPaymentMode
	}

	now := time.Now()
	return &Contribution{
		ID:          uuid.New(),
		FundID:      fundID,
		PayerRef:    payerRef,
		Amount:      amount,
		PaymentMode: mode,
		ReferenceNo: referenceNo,
		Status:      StatusPending,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Approve moves PENDING -> APPROVED, stamping the issued receipt
func (c *Contribution) Approve(receiptNo string, receiptDate time.Time, approverID uuid.UUID) error {
	if c.Status != StatusPending {
		return shared.ErrInvalidStateTransition{Entity: "contribution", ID: c.ID, From: string(c.Status), To: string(StatusApproved)}
	}

	c.Status = StatusApproved
	c.ReceiptNo = &receiptNo
	c.ReceiptDate = &receiptDate
	c.ApprovedBy = &approverID
	c.UpdatedAt = time.Now()
	return nil
}

// Reject moves PENDING -> REJECTED. Rejections never touch the ledger.
func (c *Contribution) Reject(reason string, _ uuid.UUID) error {
	if reason == "" {
		return ErrEmptyReason
	}
	if c.Status != StatusPending {
		return shared.ErrInvalidStateTransition{Entity: "contribution", ID: c.ID, From: string(c.Status), To: string(StatusRejected)}
	}

	c.Status = StatusRejected
	c.RejectReason = reason
	c.UpdatedAt = time.Now()
	return nil
}

// Cancel moves APPROVED -> CANCELLED. The original receipt number stays with
// the record; it is never recycled.
func (c *Contribution) Cancel(reason string, actorID uuid.UUID, at time.Time) error {
	if reason == "" {
		return ErrEmptyReason
	}
	if c.Status != StatusApproved {
		return shared.ErrInvalidStateTransition{Entity: "contribution", ID: c.ID, From: string(c.Status), To: string(StatusCancelled)}
	}

	c.Status = StatusCancelled
	c.CancelReason = reason
	c.CancelledBy = &actorID
	c.CancelledAt = &at
	c.UpdatedAt = time.Now()
	return nil
}

// FiscalYear returns the year the contribution belongs to once a receipt has
// been issued, or zero before approval.
func (c *Contribution) FiscalYear() int {
	if c.ReceiptDate == nil {
		return 0
	}
	return c.ReceiptDate.Year()
}
