package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:   "move <job-id> <date> <index>",
	Short: "Move a job to a new position, optionally onto another day",
	Long: `Move a job to the zero-based position <index> on <date>. Pass an
empty date ("") to reorder within the job's current day.`,
	Args: cobra.ExactArgs(3),
	RunE: runMove,
}

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo the most recent move",
	Args:  cobra.NoArgs,
	RunE:  runUndo,
}

func runMove(cmd *cobra.Command, args []string) error {
	idx, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("index %q is not a number", args[2])
	}
	svc, ctx, stop, err := newService()
	if err != nil {
		return err
	}
	defer stop()
	defer closeService(svc)

	if err := svc.MoveJob(ctx, args[0], args[1], idx); err != nil {
		return err
	}
	fmt.Println("moved")
	return nil
}

func runUndo(cmd *cobra.Command, args []string) error {
	svc, ctx, stop, err := newService()
	if err != nil {
		return err
	}
	defer stop()
	defer closeService(svc)

	if err := svc.Undo.Undo(ctx); err != nil {
		return err
	}
	fmt.Println("restored")
	return nil
}
