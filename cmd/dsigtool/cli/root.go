// Package cli implements the dsigtool commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/philiph/xmldsig"
)

// DefaultTimeout bounds a command, including external reference fetches.
const DefaultTimeout = time.Minute

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	metrics    bool
	timeout    time.Duration
}

// app carries what PersistentPreRunE prepares for the subcommands.
type app struct {
	opts     rootOptions
	config   *Config
	logger   *zap.Logger
	registry *prometheus.Registry
	recorder xmldsig.MetricsRecorder
}

// New returns the dsigtool root command.
func New() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:          "dsigtool",
		Short:        "Create and verify XML digital signatures.",
		Version:      xmldsig.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			_ = a.logger.Sync()
			if a.registry == nil {
				return nil
			}
			return writeMetrics(cmd.ErrOrStderr(), a.registry)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.opts.configPath, "config", "c", "", "configuration file (.json, .yaml or .yml)")
	flags.StringVar(&a.opts.logLevel, "log-level", "warn", "minimum log level (debug, info, warn, error)")
	flags.StringVar(&a.opts.logFormat, "log-format", "console", "log output format (console, json)")
	flags.BoolVar(&a.opts.metrics, "metrics", false, "print signature metrics to stderr on completion")
	flags.DurationVarP(&a.opts.timeout, "timeout", "t", DefaultTimeout, "timeout for the command")
	_ = cmd.MarkPersistentFlagFilename("config", "json", "yaml", "yml")

	cmd.AddCommand(newSignCommand(a))
	cmd.AddCommand(newVerifyCommand(a))
	cmd.AddCommand(newDigestCommand(a))
	cmd.AddCommand(newC14NCommand(a))
	cmd.AddCommand(newAlgorithmsCommand())
	return cmd
}

func (a *app) setup(stderr io.Writer) error {
	logger, err := newLogger(stderr, a.opts.logLevel, a.opts.logFormat)
	if err != nil {
		return err
	}
	a.logger = logger

	a.config = &Config{}
	if a.opts.configPath != "" {
		cfg, err := LoadConfig(a.opts.configPath)
		if err != nil {
			return err
		}
		a.config = cfg
		logger.Debug("configuration loaded", zap.String("path", a.opts.configPath))
	}

	if a.opts.metrics {
		a.registry = prometheus.NewRegistry()
		a.recorder = xmldsig.NewPrometheusMetricsRecorderWithRegistry(a.registry)
	} else {
		a.recorder = xmldsig.NewNoopMetricsRecorder()
	}
	return nil
}

// context returns the command context bounded by --timeout.
func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a.opts.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.opts.timeout)
}

// readInput reads the named file, or stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// writeOutput writes data to the named file, or stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// stringFlag returns the flag value when it was set, else fallback.
func stringFlag(cmd *cobra.Command, name, value, fallback string) string {
	if cmd.Flags().Changed(name) || fallback == "" {
		return value
	}
	return fallback
}
