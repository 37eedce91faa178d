// Package storage defines the persistence ports the engine depends on.
// The backing store is an external collaborator assumed last-write-wins;
// implementations must surface duplicate (customer, date) inserts as
// ErrDuplicateKey so callers can treat them as benign.
package storage

import (
	"context"
	"errors"

	"github.com/branchnm/cutplan/core/model"
)

// ErrDuplicateKey is returned by AddJob when a job already exists for the
// same (customer id, date) pair.
var ErrDuplicateKey = errors.New("duplicate (customer, date) key")

// ErrNotFound is returned when a record cannot be located.
var ErrNotFound = errors.New("record not found")

// IsDuplicateKey reports whether err stems from the uniqueness constraint.
func IsDuplicateKey(err error) bool { return errors.Is(err, ErrDuplicateKey) }

// JobStore is the persistence port for jobs.
type JobStore interface {
	FetchJobs(ctx context.Context) ([]model.Job, error)
	// AddJob persists a new job and returns it with its assigned ID.
	AddJob(ctx context.Context, job model.Job) (model.Job, error)
	UpdateJob(ctx context.Context, job model.Job) (model.Job, error)
}

// CustomerStore is the persistence port for customers.
type CustomerStore interface {
	FetchCustomers(ctx context.Context) ([]model.Customer, error)
	UpdateCustomer(ctx context.Context, c model.Customer) (model.Customer, error)
}
