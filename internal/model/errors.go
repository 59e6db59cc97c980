package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for record interpretation.
var (
	ErrInvalidCampaignType = errors.New("invalid campaign type")
	ErrDivisionUndefined   = errors.New("completion ratio undefined for non-positive objective")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidObjective    = errors.New("objective must be at least 1")
	ErrMissingName         = errors.New("name is required")
	ErrMissingReward       = errors.New("reward is required")
	ErrEndBeforeStart      = errors.New("end date is before start date")
	ErrNegativeProgress    = errors.New("progress must not be negative")
	ErrNegativeVisits      = errors.New("visit count must not be negative")
	ErrFutureVisit         = errors.New("last visit is in the future")
)

// StoreError wraps any failure returned by the data store during a list, get,
// insert or update. It is never retried.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError wraps err as a StoreError for op. A nil err stays nil.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// IsStoreError reports whether err came from the data store.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
