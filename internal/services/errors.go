package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/baharkarakas/adledger/internal/models"
	repo "github.com/baharkarakas/adledger/internal/repository"
)

var (
	ErrInvalidAmount       = errors.New("amount must be > 0")
	ErrInvalidEvent        = errors.New("invalid ledger event")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidProvider     = errors.New("unknown payment provider")
	ErrUnknownPlace        = errors.New("unknown banner place")
	ErrInvalidScreen       = errors.New("please select correct screen")
	ErrObjectNotFound      = errors.New("object does not exist")
	ErrAlreadyModerated    = errors.New("distribution already moderated")
	ErrEventConflict       = errors.New("event id already used for a different change")
)

// RetryableError marks a failed unit of work that left no trace and can be
// run again as is.
type RetryableError struct {
	Op  string
	Err error
}

func (e *RetryableError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *RetryableError) Unwrap() error { return e.Err }

func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

var domainErrs = []error{
	repo.ErrNotFound,
	ErrInvalidAmount,
	ErrInvalidEvent,
	ErrInsufficientBalance,
	ErrAlreadyModerated,
	ErrEventConflict,
	models.ErrInconsistentPricing,
	models.ErrInvalidTier,
	context.Canceled,
	context.DeadlineExceeded,
}

// classify passes domain errors through and wraps everything else coming out
// of a unit of work as retryable.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, d := range domainErrs {
		if errors.Is(err, d) {
			return err
		}
	}
	return &RetryableError{Op: op, Err: err}
}
