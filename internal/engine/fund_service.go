package engine

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/association-ledger/internal/domain/audit"
	"github.com/association-ledger/internal/domain/fund"
	"github.com/association-ledger/internal/domain/shared"
)

// FundService manages the fund catalogue
type FundService struct {
	funds      fund.Repository
	dispatcher AuditDispatcher
	logger     *slog.Logger
}

// NewFundService creates a fund service
func NewFundService(funds fund.Repository, dispatcher AuditDispatcher, logger *slog.Logger) *FundService {
	return &FundService{
		funds:      funds,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Create registers a new active fund
func (s *FundService) Create(ctx context.Context, name string, kind fund.Kind, actorID uuid.UUID) (*fund.Fund, error) {
	f, err := fund.NewFund(name, kind)
	if err != nil {
		return nil, shared.ErrValidation{Field: "fund", Reason: err.Error()}
	}

	if err := s.funds.Create(ctx, f); err != nil {
		return nil, classifyStorageErr(err, "funds")
	}

	s.logger.Info("Fund created", "fund_id", f.ID.String(), "name", f.Name, "kind", string(f.Kind))
	s.dispatcher.Dispatch(audit.ActionCreate, audit.EntityFund, f.ID.String(), actorID, map[string]string{
		"name": f.Name,
		"kind": string(f.Kind),
	})
	return f, nil
}

// Deactivate retires a fund. Its ledger history stays readable; new
// contributions and expenses against it are refused.
func (s *FundService) Deactivate(ctx context.Context, id, actorID uuid.UUID) (*fund.Fund, error) {
	f, err := s.funds.GetByID(ctx, id)
	if err != nil {
		return nil, classifyStorageErr(err, "funds")
	}
	if !f.IsActive() {
		return nil, fund.ErrFundInactive{FundID: id}
	}

	f.Deactivate()
	if err := s.funds.Update(ctx, f); err != nil {
		return nil, classifyStorageErr(err, "funds")
	}

	s.logger.Info("Fund deactivated", "fund_id", id.String())
	s.dispatcher.Dispatch(audit.ActionDeactivate, audit.EntityFund, id.String(), actorID, nil)
	return f, nil
}

// GetByID retrieves a fund
func (s *FundService) GetByID(ctx context.Context, id uuid.UUID) (*fund.Fund, error) {
	f, err := s.funds.GetByID(ctx, id)
	if err != nil {
		return nil, classifyStorageErr(err, "funds")
	}
	return f, nil
}

// List retrieves a page of funds with the total count
func (s *FundService) List(ctx context.Context, limit, offset int) ([]*fund.Fund, int64, error) {
	items, err := s.funds.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, classifyStorageErr(err, "funds")
	}
	total, err := s.funds.Count(ctx)
	if err != nil {
		return nil, 0, classifyStorageErr(err, "funds")
	}
	return items, total, nil
}
