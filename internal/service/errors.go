package service

import (
	"errors"
	"fmt"
)

// Validation failures are detected before any store access.
var (
	ErrValidation       = errors.New("validation failed")
	ErrInvalidMetric    = fmt.Errorf("%w: invalid metric", ErrValidation)
	ErrInvalidEventType = fmt.Errorf("%w: invalid event type", ErrValidation)
	ErrInvalidWindow    = fmt.Errorf("%w: invalid history window", ErrValidation)
)

var (
	// ErrNotFound covers unknown devices, devices outside the caller's scope and empty exports.
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable wraps every storage failure; details are for logs only.
	ErrStoreUnavailable = errors.New("store unavailable")
)

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
