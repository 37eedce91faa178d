package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/branchnm/cutplan/config"
	"github.com/branchnm/cutplan/core/model"
)

func TestDriftReachesTypedStream(t *testing.T) {
	svc, err := New(&config.Config{HomeBase: "1 Depot Way"})
	require.NoError(t, err)
	defer func() { require.NoError(t, svc.Close()) }()

	drift := svc.DriftEvents()
	ctx := context.Background()

	_, err = svc.Route.OptimizeAll(ctx, "1 Depot Way")
	require.NoError(t, err)

	// A manually ordered job the snapshot never saw is drift.
	job, err := svc.Jobs.AddJob(ctx, model.Job{
		CustomerID: "c1",
		Date:       "2026-06-01",
		Status:     model.StatusScheduled,
		Order:      model.IntPtr(1),
	})
	require.NoError(t, err)

	jobs, err := svc.Jobs.FetchJobs(ctx)
	require.NoError(t, err)
	require.True(t, svc.Route.CheckDrift(jobs))

	select {
	case ev := <-drift:
		require.Equal(t, job.ID, ev.JobID)
	case <-time.After(2 * time.Second):
		t.Fatal("drift event never reached the typed stream")
	}
}
