package xerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Common reusable application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict: resource already exists")
	ErrInternal     = errors.New("internal server error")
	ErrRateLimited  = errors.New("too many requests")
	ErrBadRequest   = errors.New("bad request")
)

// Promotion engine errors
var (
	// ErrUnknownUpgrade is returned when a purchase names an upgrade code
	// that does not exist in the catalog or is no longer purchasable.
	ErrUnknownUpgrade = errors.New("unknown or inactive upgrade")

	// ErrUpgradeAlreadyActive is returned when a reject-policy upgrade is
	// purchased while an entitlement for the same code is still active.
	ErrUpgradeAlreadyActive = errors.New("upgrade already active")

	// ErrConcurrencyConflict is returned when the ledger could not be
	// mutated because of lock or version contention. Callers may retry.
	ErrConcurrencyConflict = errors.New("concurrent ledger modification")

	// ErrPersistenceFailure is returned when storage is unavailable.
	// Transient; callers may retry.
	ErrPersistenceFailure = errors.New("persistence failure")
)

// RequirementNotMetError reports the prerequisite upgrade codes that were
// not active when a gated purchase was attempted.
type RequirementNotMetError struct {
	UpgradeCode string
	Missing     []string
}

func (e *RequirementNotMetError) Error() string {
	return fmt.Sprintf("upgrade %s requires active upgrades: %s", e.UpgradeCode, strings.Join(e.Missing, ", "))
}

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap extracts the underlying wrapped error.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
