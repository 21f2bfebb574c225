package fund

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrEmptyName   = errors.New("fund name cannot be empty")
	ErrInvalidKind = errors.New("fund kind is not recognized")
)

// Status of a fund. Funds are never deleted, only deactivated.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Kind classifies what the fund collects money for
type Kind string

const (
	KindGeneral     Kind = "GENERAL"
	KindBuilding    Kind = "BUILDING"
	KindFestival    Kind = "FESTIVAL"
	KindEmergency   Kind = "EMERGENCY"
	KindMaintenance Kind = "MAINTENANCE"
)

// Fund is a named pool of money owned by the association. Its balance is not
// stored here; it is derived from the ledger, which is the sole source of truth.
type Fund struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Kind      Kind      `json:"kind"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFund creates an active fund with the given name and kind
func NewFund(name string, kind Kind) (*Fund, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	switch kind {
	case KindGeneral, KindBuilding, KindFestival, KindEmergency, KindMaintenance:
	default:
		return nil, ErrInvalidKind
	}

	now := time.Now()
	return &Fund{
		ID:        uuid.New(),
		Name:      name,
		Kind:      kind,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsActive reports whether the fund accepts new financial records
func (f *Fund) IsActive() bool {
	return f.Status == StatusActive
}

// Deactivate marks the fund inactive. Existing ledger history is untouched.
func (f *Fund) Deactivate() {
	f.Status = StatusInactive
	f.UpdatedAt = time.Now()
}
