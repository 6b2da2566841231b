// Package main provides the tensoralg CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/born-ml/tensoralg/internal/config"
	"github.com/born-ml/tensoralg/internal/serialization"
	"github.com/spf13/cobra"
)

// app carries state shared by all commands.
type app struct {
	log    config.LogConfig
	logger *slog.Logger
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{log: config.Default().Log}
	a.log.Format = "auto"

	root := &cobra.Command{
		Use:   "tensoralg",
		Short: "Indexed tensor algebra over symmetry-reduced storage",
		Long: `tensoralg evaluates indexed tensor expressions over compactly stored
symmetric, antisymmetric and diagonal tensors.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setLogger(cmd, a.log)
		},
	}
	root.PersistentFlags().StringVar(&a.log.Level, "log-level", a.log.Level, "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.log.Format, "log-format", a.log.Format, "log format (text, json, auto)")

	root.AddCommand(
		newVersionCmd(),
		newRunCmd(a),
		newInspectCmd(),
		newStorageCmd(),
		newSelftestCmd(a),
	)
	return root
}

// setLogger installs a logger writing to the command's stderr.
func (a *app) setLogger(cmd *cobra.Command, cfg config.LogConfig) error {
	h, err := cfg.Handler(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.logger = slog.New(h)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tensoralg %s (file format %d)\n",
				serialization.Version, serialization.FormatVersion)
		},
	}
}
