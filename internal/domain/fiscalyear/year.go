// Package fiscalyear models the one-way switch that freezes financial records
// of a calendar year. A year with no record is treated as closed: no year is
// implicitly open, and every open year is the result of an explicit decision.
package fiscalyear

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidYear = errors.New("year must be a plausible four-digit year")
)

// Status of a financial year
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// Year is the closure record for one calendar year
type Year struct {
	Year     int        `json:"year"`
	Status   Status     `json:"status"`
	OpenedBy uuid.UUID  `json:"opened_by"`
	OpenedAt time.Time  `json:"opened_at"`
	ClosedBy *uuid.UUID `json:"closed_by,omitempty"`
	ClosedAt *time.Time `json:"closed_at,omitempty"`
	Remarks  string     `json:"remarks,omitempty"`
}

// NewOpenYear records the explicit opening of a year for financial activity
func NewOpenYear(year int, actorID uuid.UUID) (*Year, error) {
	if year < 1900 || year > 9999 {
		return nil, ErrInvalidYear
	}
	return &Year{
		Year:     year,
		Status:   StatusOpen,
		OpenedBy: actorID,
		OpenedAt: time.Now(),
	}, nil
}

// IsOpen reports whether the year still accepts balance-affecting writes
func (y *Year) IsOpen() bool {
	return y.Status == StatusOpen
}

// Close flips the year to CLOSED. The switch is one-way.
func (y *Year) Close(actorID uuid.UUID, remarks string, at time.Time) {
	y.Status = StatusClosed
	y.ClosedBy = &actorID
	y.ClosedAt = &at
	y.Remarks = remarks
}
