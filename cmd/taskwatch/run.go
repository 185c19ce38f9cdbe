package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fentz26/taskwatch/internal/config"
	"github.com/fentz26/taskwatch/internal/monitor"
	"github.com/fentz26/taskwatch/internal/sink"
	"github.com/fentz26/taskwatch/internal/status"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the configured tasks and print milestones to stdout",
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	console := sink.New(cmd.OutOrStdout())
	if err := console.Println("loop running"); err != nil {
		return err
	}
	if err := runPlan(ctx, cfg, console); err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	return console.Println("App Finished")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromHome()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.PollMode = pollMode
	}
	if flags.Changed("hardened") {
		cfg.Hardened = hardened
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// runPlan spawns every configured task and monitors them until all finish.
func runPlan(ctx context.Context, cfg *config.Config, console *sink.Console, observers ...monitor.Observer) error {
	mon := monitor.New(monitor.Options{
		Sink:      console,
		Mode:      cfg.Mode(),
		Interval:  cfg.Interval(),
		Hardened:  cfg.Hardened,
		Observers: observers,
		Logger:    log.New(os.Stderr, "", log.LstdFlags),
	})

	for _, task := range cfg.WorkerTasks() {
		rec := status.New()
		if err := mon.Register(task.Label, rec); err != nil {
			return err
		}
		task.Spawn(rec)
	}
	return mon.Run(ctx)
}
