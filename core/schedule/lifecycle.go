// Package schedule manages the job lifecycle: idempotent auto-creation
// as customers enter the visible horizon, start/complete transitions, and
// the frequency-based cycle advance on completion.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/branchnm/cutplan/core/logger"
	"github.com/branchnm/cutplan/core/model"
	"github.com/branchnm/cutplan/core/storage"
)

// Config carries the lifecycle parameters.
type Config struct {
	// HorizonDays is the visible window for auto-creation.
	HorizonDays int `json:"horizon_days"`
}

// DefaultConfig returns the defaults.
func DefaultConfig() Config { return Config{HorizonDays: 30} }

// Service applies lifecycle transitions against the stores.
type Service struct {
	cfg       Config
	jobs      storage.JobStore
	customers storage.CustomerStore
	log       logger.Logger
	now       func() time.Time

	// inflight prevents duplicate submissions while the store's
	// uniqueness constraint is not yet observable.
	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewService creates a Service.
func NewService(cfg Config, jobs storage.JobStore, customers storage.CustomerStore, log logger.Logger) *Service {
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = DefaultConfig().HorizonDays
	}
	return &Service{
		cfg:       cfg,
		jobs:      jobs,
		customers: customers,
		log:       log,
		now:       time.Now,
		inflight:  make(map[string]struct{}),
	}
}

// SetClock overrides the time source, for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// EnsureJobs creates a scheduled job for every customer whose nextCutDate
// falls inside the visible horizon and has no job yet. It is idempotent
// and safe under concurrent invocation: the in-flight set suppresses
// duplicate submissions and duplicate-key responses from the store are
// treated as benign. It returns the number of jobs created.
func (s *Service) EnsureJobs(ctx context.Context) (int, error) {
	customers, err := s.customers.FetchCustomers(ctx)
	if err != nil {
		return 0, fmt.Errorf("ensure jobs: fetch customers: %w", err)
	}
	jobs, err := s.jobs.FetchJobs(ctx)
	if err != nil {
		return 0, fmt.Errorf("ensure jobs: fetch jobs: %w", err)
	}
	existing := make(map[string]struct{}, len(jobs))
	for _, j := range jobs {
		existing[j.CustomerID+"|"+j.Date] = struct{}{}
	}

	today := model.FormatDay(s.now())
	horizon := model.FormatDay(s.now().AddDate(0, 0, s.cfg.HorizonDays))

	created := 0
	for _, c := range customers {
		date := c.NextCutDate
		if date == "" || date < today || date >= horizon {
			continue
		}
		key := c.ID + "|" + date
		if _, ok := existing[key]; ok {
			continue
		}
		if !s.claim(key) {
			continue
		}
		_, err := s.jobs.AddJob(ctx, model.Job{
			CustomerID: c.ID,
			Date:       date,
			Status:     model.StatusScheduled,
		})
		s.release(key)
		if err != nil {
			if storage.IsDuplicateKey(err) {
				continue
			}
			s.log.Errorf("ensure jobs: customer %s on %s: %v", c.ID, date, err)
			continue
		}
		created++
	}
	return created, nil
}

func (s *Service) claim(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return false
	}
	s.inflight[key] = struct{}{}
	return true
}

func (s *Service) release(key string) {
	s.mu.Lock()
	delete(s.inflight, key)
	s.mu.Unlock()
}

// Start marks the job in progress, stamping the absolute start time that
// elapsed displays derive from.
func (s *Service) Start(ctx context.Context, jobID string) (model.Job, error) {
	j, err := s.find(ctx, jobID)
	if err != nil {
		return model.Job{}, err
	}
	now := s.now()
	j.Status = model.StatusInProgress
	j.StartTime = &now
	return s.jobs.UpdateJob(ctx, j)
}

// Complete finishes the job, advances the customer's cycle dates and
// creates the follow-on job for the next cut if absent.
func (s *Service) Complete(ctx context.Context, jobID string) (model.Job, error) {
	j, err := s.find(ctx, jobID)
	if err != nil {
		return model.Job{}, err
	}
	now := s.now()
	j.Status = model.StatusCompleted
	j.EndTime = &now
	if j.StartTime != nil {
		j.TotalTime = int(now.Sub(*j.StartTime).Minutes())
	}
	j, err = s.jobs.UpdateJob(ctx, j)
	if err != nil {
		return model.Job{}, err
	}

	if err := s.advanceCycle(ctx, j); err != nil {
		// The completion itself persisted; the cycle advance is
		// surfaced for retry.
		return j, err
	}
	return j, nil
}

// advanceCycle sets lastCutDate to the completed job's date, computes the
// next cut per the customer's frequency and schedules it.
func (s *Service) advanceCycle(ctx context.Context, j model.Job) error {
	customers, err := s.customers.FetchCustomers(ctx)
	if err != nil {
		return fmt.Errorf("advance cycle: %w", err)
	}
	for _, c := range customers {
		if c.ID != j.CustomerID {
			continue
		}
		last, err := model.ParseDay(j.Date)
		if err != nil {
			return err
		}
		next, err := c.Frequency.NextDate(last)
		if err != nil {
			return err
		}
		c.LastCutDate = j.Date
		c.NextCutDate = model.FormatDay(next)
		if _, err := s.customers.UpdateCustomer(ctx, c); err != nil {
			return fmt.Errorf("advance cycle: %w", err)
		}
		_, err = s.jobs.AddJob(ctx, model.Job{
			CustomerID: c.ID,
			Date:       c.NextCutDate,
			Status:     model.StatusScheduled,
		})
		if err != nil && !storage.IsDuplicateKey(err) {
			return fmt.Errorf("advance cycle: follow-on job: %w", err)
		}
		return nil
	}
	return fmt.Errorf("advance cycle: customer %s: %w", j.CustomerID, storage.ErrNotFound)
}

// Reschedule moves a job to another calendar day, clearing its route
// position so it appends at the end of the target day.
func (s *Service) Reschedule(ctx context.Context, jobID, date string) (model.Job, error) {
	if _, err := model.ParseDay(date); err != nil {
		return model.Job{}, err
	}
	j, err := s.find(ctx, jobID)
	if err != nil {
		return model.Job{}, err
	}
	j.Date = date
	j.Order = nil
	j.ScheduledTime = nil
	return s.jobs.UpdateJob(ctx, j)
}

func (s *Service) find(ctx context.Context, jobID string) (model.Job, error) {
	jobs, err := s.jobs.FetchJobs(ctx)
	if err != nil {
		return model.Job{}, fmt.Errorf("fetch jobs: %w", err)
	}
	for _, j := range jobs {
		if j.ID == jobID {
			return j, nil
		}
	}
	return model.Job{}, fmt.Errorf("job %s: %w", jobID, storage.ErrNotFound)
}
