package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Optimize routes over the rolling horizon",
	RunE:  runOptimize,
}

var ensureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Create jobs for customers entering the horizon",
	RunE:  runEnsure,
}

func runOptimize(cmd *cobra.Command, args []string) error {
	svc, ctx, stop, err := newService()
	if err != nil {
		return err
	}
	defer stop()
	defer closeService(svc)

	sum, err := svc.Optimize(ctx)
	if err != nil {
		return err
	}
	if sum.Stale {
		fmt.Println("superseded by a newer optimization pass")
		return nil
	}
	fmt.Printf("optimized %d day(s), skipped %d; persisted %d job(s), %d failed\n",
		sum.DaysOptimized, sum.DaysSkipped, sum.JobsPersisted, sum.JobsFailed)
	return nil
}

func runEnsure(cmd *cobra.Command, args []string) error {
	svc, ctx, stop, err := newService()
	if err != nil {
		return err
	}
	defer stop()
	defer closeService(svc)

	created, err := svc.Lifecycle.EnsureJobs(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("created %d job(s)\n", created)
	return nil
}
