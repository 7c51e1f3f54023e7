package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/theapemachine/qtensor/internal/log"
)

// Version is the build version, set at build time with -ldflags
var Version = "dev"

var cfg *Config

var rootCmd = &cobra.Command{
	Use:     "qtensor",
	Short:   "Apply a 2x2 operator to every qubit of a 2^N state vector",
	Version: Version,
	Long: `qtensor computes (M ⊗ M ⊗ ... ⊗ M)·state for a 2x2 operator M without
building the Kronecker product, in O(N·2^N) time and O(2^N) memory.

Flags can also be set through environment variables prefixed with QTENSOR_,
with dots replaced by underscores, e.g. QTENSOR_EXEC_BACKEND=pool.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		if cfg, err = loadConfig(cmd); err != nil {
			return err
		}
		return log.Init(cfg.Log.Level, cfg.Log.Output)
	},
}

func init() {
	addGlobalFlags(rootCmd)
	rootCmd.AddCommand(applyCmd, benchCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
