package handler

import (
	"time"

	"github.com/association-ledger/internal/domain/contribution"
	"github.com/association-ledger/internal/domain/expense"
	"github.com/association-ledger/internal/domain/fiscalyear"
	"github.com/association-ledger/internal/domain/fund"
	"github.com/association-ledger/internal/domain/ledger"
)

// Monetary amounts travel as decimal strings on the wire so no client is
// tempted to do float arithmetic on them.

// CreateFundRequest represents a request to register a new fund
type CreateFundRequest struct {
	Name string `json:"name" binding:"required"`
	Kind string `json:"kind" binding:"required,oneof=GENERAL BUILDING FESTIVAL EMERGENCY MAINTENANCE"`
}

// FundResponse represents a fund in API responses
type FundResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CreateContributionRequest represents a request to record an incoming payment
type CreateContributionRequest struct {
	FundID      string `json:"fund_id" binding:"required,uuid"`
	PayerRef    string `json:"payer_ref" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	PaymentMode string `json:"payment_mode" binding:"required,oneof=CASH UPI CHEQUE BANK_TRANSFER"`
	ReferenceNo string `json:"reference_no,omitempty"`
}

// ReasonRequest carries the mandatory reason for a rejection or cancellation
type ReasonRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ContributionResponse represents a contribution in API responses
type ContributionResponse struct {
	ID           string `json:"id"`
	FundID       string `json:"fund_id"`
	PayerRef     string `json:"payer_ref"`
	Amount       string `json:"amount"`
	PaymentMode  string `json:"payment_mode"`
	ReferenceNo  string `json:"reference_no,omitempty"`
	Status       string `json:"status"`
	ReceiptNo    string `json:"receipt_no,omitempty"`
	ReceiptDate  string `json:"receipt_date,omitempty"`
	ApprovedBy   string `json:"approved_by,omitempty"`
	RejectReason string `json:"reject_reason,omitempty"`
	CancelReason string `json:"cancel_reason,omitempty"`
	NewBalance   string `json:"new_balance,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// CreateExpenseRequest represents a request to record an outgoing payment
type CreateExpenseRequest struct {
	FundID      string `json:"fund_id" binding:"required,uuid"`
	Purpose     string `json:"purpose" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	ExpenseDate string `json:"expense_date" binding:"required"` // YYYY-MM-DD
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID           string `json:"id"`
	FundID       string `json:"fund_id"`
	Purpose      string `json:"purpose"`
	Amount       string `json:"amount"`
	ExpenseDate  string `json:"expense_date"`
	Status       string `json:"status"`
	RequestedBy  string `json:"requested_by"`
	ApprovedBy   string `json:"approved_by,omitempty"`
	CancelReason string `json:"cancel_reason,omitempty"`
	NewBalance   string `json:"new_balance,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// CloseYearRequest carries optional remarks for a year closing
type CloseYearRequest struct {
	Remarks string `json:"remarks,omitempty"`
}

// YearResponse represents a financial year in API responses
type YearResponse struct {
	Year     int    `json:"year"`
	Status   string `json:"status"`
	OpenedBy string `json:"opened_by,omitempty"`
	OpenedAt string `json:"opened_at,omitempty"`
	ClosedBy string `json:"closed_by,omitempty"`
	ClosedAt string `json:"closed_at,omitempty"`
	Remarks  string `json:"remarks,omitempty"`
}

// BalanceResponse represents a fund's resolved balance
type BalanceResponse struct {
	FundID  string `json:"fund_id"`
	Balance string `json:"balance"`
	AsOf    string `json:"as_of"`
}

// LedgerEntryResponse represents one ledger entry in API responses
type LedgerEntryResponse struct {
	ID           string `json:"id"`
	FundID       string `json:"fund_id"`
	EntryType    string `json:"entry_type"`
	Source       string `json:"source"`
	SourceID     string `json:"source_id"`
	Amount       string `json:"amount"`
	BalanceAfter string `json:"balance_after"`
	CreatedBy    string `json:"created_by"`
	CreatedAt    string `json:"created_at"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func mapFundToResponse(f *fund.Fund) FundResponse {
	return FundResponse{
		ID:        f.ID.String(),
		Name:      f.Name,
		Kind:      string(f.Kind),
		Status:    string(f.Status),
		CreatedAt: f.CreatedAt.Format(time.RFC3339),
		UpdatedAt: f.UpdatedAt.Format(time.RFC3339),
	}
}

func mapContributionToResponse(c *contribution.Contribution) ContributionResponse {
	response := ContributionResponse{
		ID:           c.ID.String(),
		FundID:       c.FundID.String(),
		PayerRef:     c.PayerRef,
		Amount:       c.Amount.String(),
		PaymentMode:  string(c.PaymentMode),
		ReferenceNo:  c.ReferenceNo,
		Status:       string(c.Status),
		RejectReason: c.RejectReason,
		CancelReason: c.CancelReason,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    c.UpdatedAt.Format(time.RFC3339),
	}
	if c.ReceiptNo != nil {
		response.ReceiptNo = *c.ReceiptNo
	}
	if c.ReceiptDate != nil {
		response.ReceiptDate = c.ReceiptDate.Format(time.RFC3339)
	}
	if c.ApprovedBy != nil {
		response.ApprovedBy = c.ApprovedBy.String()
	}
	return response
}

func mapExpenseToResponse(e *expense.Expense) ExpenseResponse {
	response := ExpenseResponse{
		ID:           e.ID.String(),
		FundID:       e.FundID.String(),
		Purpose:      e.Purpose,
		Amount:       e.Amount.String(),
		ExpenseDate:  e.ExpenseDate.Format("2006-01-02"),
		Status:       string(e.Status),
		RequestedBy:  e.RequestedBy.String(),
		CancelReason: e.CancelReason,
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    e.UpdatedAt.Format(time.RFC3339),
	}
	if e.ApprovedBy != nil {
		response.ApprovedBy = e.ApprovedBy.String()
	}
	return response
}

func mapYearToResponse(y *fiscalyear.Year) YearResponse {
	response := YearResponse{
		Year:    y.Year,
		Status:  string(y.Status),
		Remarks: y.Remarks,
	}
	if !y.OpenedAt.IsZero() {
		response.OpenedBy = y.OpenedBy.String()
		response.OpenedAt = y.OpenedAt.Format(time.RFC3339)
	}
	if y.ClosedBy != nil {
		response.ClosedBy = y.ClosedBy.String()
	}
	if y.ClosedAt != nil {
		response.ClosedAt = y.ClosedAt.Format(time.RFC3339)
	}
	return response
}

func mapLedgerEntryToResponse(entry *ledger.Entry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:           entry.ID.String(),
		FundID:       entry.FundID.String(),
		EntryType:    string(entry.EntryType),
		Source:       string(entry.Source),
		SourceID:     entry.SourceID.String(),
		Amount:       entry.Amount.String(),
		BalanceAfter: entry.BalanceAfter.String(),
		CreatedBy:    entry.CreatedBy.String(),
		CreatedAt:    entry.CreatedAt.Format(time.RFC3339),
	}
}
