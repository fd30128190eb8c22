package account

import (
	"context"
	"errors"
)

var (
	ErrAccountNotFound = errors.New("account not found")
)

type Store interface {
	// Count returns the total count of accounts.
	Count(ctx context.Context) (uint64, error)

	// Get finds the account record for a given address.
	//
	// Returns ErrAccountNotFound if the account doesn't exist.
	Get(ctx context.Context, address string) (*Record, error)

	// GetMultiple finds the account records for a set of addresses. The
	// result is aligned with the input, with nil entries for accounts that
	// don't exist.
	GetMultiple(ctx context.Context, addresses ...string) ([]*Record, error)

	// GetAllByOwner returns all accounts owned by a program, ordered by
	// address.
	//
	// Returns ErrAccountNotFound if no records are found.
	GetAllByOwner(ctx context.Context, owner string) ([]*Record, error)

	// SaveAll creates or updates every record within a single atomic write.
	// Either all records are saved, or none are.
	SaveAll(ctx context.Context, records ...*Record) error
}
