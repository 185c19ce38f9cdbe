package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "taskwatch",
	Short: "taskwatch - asynchronous task monitor",
	Long: `taskwatch starts detached worker tasks and polls their shared status records,
reacting exactly once to every lifecycle transition until all tasks finish.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRun,
}

var (
	configPath string
	pollMode   string
	hardened   bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.taskwatch/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&pollMode, "mode", "", "Poll mode override: yield or notify")
	rootCmd.PersistentFlags().BoolVar(&hardened, "hardened", false, "Stop counting tasks whose reactions fault and exit non-zero")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
