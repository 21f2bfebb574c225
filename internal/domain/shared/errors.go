// Package shared contains cross-cutting domain types used by every engine:
// the error taxonomy for approval operations and the closed role enumeration
// consumed by the HTTP authorization middleware.
package shared

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrValidation indicates invalid input detected before any lock is taken.
// Operations failing validation have no side effects.
type ErrValidation struct {
	Field  string
	Reason string
}

func (e ErrValidation) Error() string {
	return "validation failed on " + e.Field + ": " + e.Reason
}

// Is matches any ErrValidation when the target carries no field
func (e ErrValidation) Is(target error) bool {
	t, ok := target.(ErrValidation)
	if !ok {
		return false
	}
	return t.Field == "" || t.Field == e.Field
}

// ErrInvalidStateTransition indicates an operation attempted on a record that
// is not in the required source state
type ErrInvalidStateTransition struct {
	Entity string
	ID     uuid.UUID
	From   string
	To     string
}

func (e ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid %s state transition %s -> %s for %s", e.Entity, e.From, e.To, e.ID.String())
}

func (e ErrInvalidStateTransition) Is(target error) bool {
	t, ok := target.(ErrInvalidStateTransition)
	if !ok {
		return false
	}
	return t.ID == uuid.Nil || t.ID == e.ID
}

// ErrYearClosed indicates the record's fiscal year no longer accepts
// balance-affecting mutations
type ErrYearClosed struct {
	Year int
}

func (e ErrYearClosed) Error() string {
	return fmt.Sprintf("financial year %d is closed", e.Year)
}

func (e ErrYearClosed) Is(target error) bool {
	t, ok := target.(ErrYearClosed)
	if !ok {
		return false
	}
	return t.Year == 0 || t.Year == e.Year
}

// ErrYearAlreadyClosed indicates a close attempt on a year that was closed before
type ErrYearAlreadyClosed struct {
	Year int
}

func (e ErrYearAlreadyClosed) Error() string {
	return fmt.Sprintf("financial year %d is already closed", e.Year)
}

func (e ErrYearAlreadyClosed) Is(target error) bool {
	t, ok := target.(ErrYearAlreadyClosed)
	if !ok {
		return false
	}
	return t.Year == 0 || t.Year == e.Year
}

// ErrInsufficientFunds indicates an expense approval that would drive the fund
// balance negative. Balance and Requested are decimal strings.
type ErrInsufficientFunds struct {
	FundID    uuid.UUID
	Balance   string
	Requested string
}

func (e ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("insufficient funds in %s: balance %s, requested %s", e.FundID.String(), e.Balance, e.Requested)
}

func (e ErrInsufficientFunds) Is(target error) bool {
	t, ok := target.(ErrInsufficientFunds)
	if !ok {
		return false
	}
	return t.FundID == uuid.Nil || t.FundID == e.FundID
}

// ErrConcurrencyConflict indicates a lock or allocator timeout, or a detected
// write conflict. The enclosing transaction was rolled back completely and the
// operation is safe to retry unchanged.
type ErrConcurrencyConflict struct {
	Resource string
}

func (e ErrConcurrencyConflict) Error() string {
	return "concurrency conflict on " + e.Resource + ", retry the operation"
}

func (e ErrConcurrencyConflict) Is(target error) bool {
	t, ok := target.(ErrConcurrencyConflict)
	if !ok {
		return false
	}
	return t.Resource == "" || t.Resource == e.Resource
}

// ErrPersistence wraps an underlying storage failure that is not one of the
// business error kinds
type ErrPersistence struct {
	Op  string
	Err error
}

func (e ErrPersistence) Error() string {
	return "persistence failure during " + e.Op + ": " + e.Err.Error()
}

func (e ErrPersistence) Unwrap() error {
	return e.Err
}

func (e ErrPersistence) Is(target error) bool {
	t, ok := target.(ErrPersistence)
	if !ok {
		return false
	}
	return t.Op == "" || t.Op == e.Op
}
