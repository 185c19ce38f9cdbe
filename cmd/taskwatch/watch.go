package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fentz26/taskwatch/internal/sink"
	"github.com/fentz26/taskwatch/internal/tui"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the configured tasks in a live terminal view",
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	labels := make([]string, len(cfg.Tasks))
	for i, tc := range cfg.Tasks {
		labels[i] = tc.Label
	}

	view := tui.Start(cmd.OutOrStdout(), labels)
	console := sink.New(view)

	result := make(chan error, 1)
	go func() {
		result <- runPlan(ctx, cfg, console, view)
	}()

	select {
	case err = <-result:
		view.Finish(err)
	case <-view.Done():
		// The view closed early; keep monitoring headless so the process
		// does not exit while a worker is still live.
		fmt.Fprintln(cmd.ErrOrStderr(), "View closed; waiting for tasks to finish...")
		err = <-result
		fmt.Fprintln(cmd.OutOrStdout(), "App Finished")
	}
	if viewErr := view.Wait(); viewErr != nil {
		return fmt.Errorf("TUI error: %w", viewErr)
	}

	if err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	return nil
}
