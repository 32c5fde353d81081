package db

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState means a fetched entity is missing a required relation.
	ErrInvalidState = errors.New("invalid state")
	// ErrConstraintViolation means a write broke a foreign-key, unique, not-null or check rule.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrStoreUnavailable means the database could not be reached or timed out.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInvalidInput marks a request rejected by service validation.
	ErrInvalidInput = errors.New("invalid input")
)

// Classify maps driver errors onto the store error taxonomy. The original
// error stays in the chain so callers can still inspect it. Errors that fit
// no category are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrConstraintViolation) || errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrInvalidInput) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "23"):
			return fmt.Errorf("%w: %s", ErrConstraintViolation, pgErr.Message)
		case strings.HasPrefix(pgErr.Code, "08"), pgErr.Code == "57P01", pgErr.Code == "53300":
			return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return err
}
