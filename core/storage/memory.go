package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/branchnm/cutplan/core/model"
)

// MemoryJobStore is an in-memory JobStore safe for concurrent use.
// It enforces the (customer, date) uniqueness constraint the way the
// production store does.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]model.Job
	keys map[string]string // "customerID|date" -> job ID
}

// NewMemoryJobStore creates an empty MemoryJobStore.
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{
		jobs: make(map[string]model.Job),
		keys: make(map[string]string),
	}
}

func jobKey(customerID, date string) string { return customerID + "|" + date }

// FetchJobs returns every stored job.
func (s *MemoryJobStore) FetchJobs(ctx context.Context) ([]model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j)
	}
	return out, nil
}

// AddJob stores a new job, assigning an ID when absent.
func (s *MemoryJobStore) AddJob(ctx context.Context, job model.Job) (model.Job, error) {
	if err := job.Validate(); err != nil {
		return model.Job{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := jobKey(job.CustomerID, job.Date)
	if _, exists := s.keys[key]; exists {
		return model.Job{}, fmt.Errorf("add job for %s on %s: %w", job.CustomerID, job.Date, ErrDuplicateKey)
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	s.jobs[job.ID] = job
	s.keys[key] = job.ID
	return job, nil
}

// UpdateJob replaces the stored job, last write wins.
func (s *MemoryJobStore) UpdateJob(ctx context.Context, job model.Job) (model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.jobs[job.ID]
	if !ok {
		return model.Job{}, fmt.Errorf("update job %s: %w", job.ID, ErrNotFound)
	}
	if prev.Date != job.Date {
		delete(s.keys, jobKey(prev.CustomerID, prev.Date))
		s.keys[jobKey(job.CustomerID, job.Date)] = job.ID
	}
	s.jobs[job.ID] = job
	return job, nil
}

// MemoryCustomerStore is an in-memory CustomerStore safe for concurrent use.
type MemoryCustomerStore struct {
	mu        sync.RWMutex
	customers map[string]model.Customer
}

// NewMemoryCustomerStore creates a store seeded with the given customers.
func NewMemoryCustomerStore(customers ...model.Customer) *MemoryCustomerStore {
	s := &MemoryCustomerStore{customers: make(map[string]model.Customer, len(customers))}
	for _, c := range customers {
		s.customers[c.ID] = c
	}
	return s
}

// FetchCustomers returns every stored customer.
func (s *MemoryCustomerStore) FetchCustomers(ctx context.Context) ([]model.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c)
	}
	return out, nil
}

// UpdateCustomer replaces the stored customer, last write wins.
func (s *MemoryCustomerStore) UpdateCustomer(ctx context.Context, c model.Customer) (model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[c.ID]; !ok {
		return model.Customer{}, fmt.Errorf("update customer %s: %w", c.ID, ErrNotFound)
	}
	s.customers[c.ID] = c
	return c, nil
}
