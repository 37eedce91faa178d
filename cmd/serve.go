package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var serveInterval time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the engine continuously with periodic optimization",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().DurationVar(&serveInterval, "interval", time.Hour, "time between optimization passes")
}

func runServe(cmd *cobra.Command, args []string) error {
	svc, ctx, stop, err := newService()
	if err != nil {
		return err
	}
	defer stop()
	defer closeService(svc)

	go func() {
		ticker := time.NewTicker(serveInterval)
		defer ticker.Stop()
		drift := svc.DriftEvents()
		for {
			if _, err := svc.Suggestions(ctx); err != nil {
				fmt.Println("suggestions:", err)
			}
			if _, err := svc.Optimize(ctx); err != nil {
				fmt.Println("optimize:", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			case <-drift:
				// A manual reorder invalidated the snapshot;
				// re-optimize without waiting for the tick.
			}
		}
	}()
	return svc.Run(ctx)
}
