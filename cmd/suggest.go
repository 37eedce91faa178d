package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/branchnm/cutplan/app"
	"github.com/branchnm/cutplan/config"
	"github.com/branchnm/cutplan/infra/logger"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Print weather suggestions for the coming days",
	RunE:  runSuggest,
}

func newService() (*app.Service, context.Context, context.CancelFunc, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		stop()
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		stop()
		return nil, nil, nil, err
	}
	return svc, ctx, stop, nil
}

func runSuggest(cmd *cobra.Command, args []string) error {
	svc, ctx, stop, err := newService()
	if err != nil {
		return err
	}
	defer stop()
	defer closeService(svc)

	set, err := svc.Suggestions(ctx)
	if err != nil {
		return err
	}
	if set.Empty() {
		fmt.Println("no suggestions, the schedule looks fine")
		return nil
	}
	for _, m := range set.Moves {
		fmt.Printf("move %d job(s) from %s to %s: %s\n", len(m.JobIDs), m.CurrentDate, m.SuggestedDate, m.Reason)
	}
	for _, s := range set.StartTimes {
		if s.SuggestedEnd > 0 {
			fmt.Printf("on %s work %d:00-%d:00: %s\n", s.Date, s.SuggestedStart, s.SuggestedEnd, s.Reason)
			continue
		}
		fmt.Printf("on %s start at %d:00: %s\n", s.Date, s.SuggestedStart, s.Reason)
	}
	return nil
}

func closeService(svc *app.Service) {
	if err := svc.Close(); err != nil {
		logger.New("main").Errorf("service close: %v", err)
	}
}
