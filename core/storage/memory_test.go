package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchnm/cutplan/core/model"
)

func validJob(customerID, date string) model.Job {
	return model.Job{CustomerID: customerID, Date: date, Status: model.StatusScheduled}
}

func TestAddJobAssignsID(t *testing.T) {
	s := NewMemoryJobStore()
	j, err := s.AddJob(context.Background(), validJob("c1", "2026-06-01"))
	require.NoError(t, err)
	assert.NotEmpty(t, j.ID)
}

func TestAddJobDuplicateKey(t *testing.T) {
	s := NewMemoryJobStore()
	_, err := s.AddJob(context.Background(), validJob("c1", "2026-06-01"))
	require.NoError(t, err)

	_, err = s.AddJob(context.Background(), validJob("c1", "2026-06-01"))
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))

	// Same customer on another day is fine.
	_, err = s.AddJob(context.Background(), validJob("c1", "2026-06-02"))
	require.NoError(t, err)
}

func TestAddJobValidates(t *testing.T) {
	s := NewMemoryJobStore()
	_, err := s.AddJob(context.Background(), model.Job{Date: "2026-06-01", Status: model.StatusScheduled})
	require.Error(t, err)
	_, err = s.AddJob(context.Background(), model.Job{CustomerID: "c1", Date: "bad", Status: model.StatusScheduled})
	require.Error(t, err)
}

func TestUpdateJobMovesUniquenessKey(t *testing.T) {
	s := NewMemoryJobStore()
	j, err := s.AddJob(context.Background(), validJob("c1", "2026-06-01"))
	require.NoError(t, err)

	j.Date = "2026-06-05"
	_, err = s.UpdateJob(context.Background(), j)
	require.NoError(t, err)

	// The old (customer, date) slot is free again.
	_, err = s.AddJob(context.Background(), validJob("c1", "2026-06-01"))
	require.NoError(t, err)
}

func TestUpdateJobNotFound(t *testing.T) {
	s := NewMemoryJobStore()
	_, err := s.UpdateJob(context.Background(), model.Job{ID: "ghost"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentAddsSameKey(t *testing.T) {
	s := NewMemoryJobStore()
	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.AddJob(context.Background(), validJob("c1", "2026-06-01"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, IsDuplicateKey(err))
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestCustomerStoreUpdate(t *testing.T) {
	s := NewMemoryCustomerStore(model.Customer{ID: "c1", Name: "One", Address: "120 Oak Lane", Frequency: model.FrequencyWeekly})
	c, err := s.FetchCustomers(context.Background())
	require.NoError(t, err)
	require.Len(t, c, 1)

	c[0].NextCutDate = "2026-06-10"
	_, err = s.UpdateCustomer(context.Background(), c[0])
	require.NoError(t, err)

	c, err = s.FetchCustomers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-06-10", c[0].NextCutDate)

	_, err = s.UpdateCustomer(context.Background(), model.Customer{ID: "ghost"})
	require.ErrorIs(t, err, ErrNotFound)
}
