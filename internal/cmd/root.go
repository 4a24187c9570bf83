// Package cmd wires the marple command tree: listing the sections of a data
// file and dispatching them to visualizers.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	rootCmd = &cobra.Command{
		Use:           "marple",
		Short:         "Unified interface to Linux performance tracing tools",
		Long:          "Marple separates collection and display of performance data: collection backends write standardized sections to a data file, and display renders selected sections with the right visualizer.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	logLevel string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level, one of `debug`, `info`, `warn`, `error`")
}

func newLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("bad log level %q: %w", logLevel, err)
	}
	conf := zap.NewProductionConfig()
	conf.Level = zap.NewAtomicLevelAt(level)
	conf.OutputPaths = []string{"stderr"}
	conf.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	return conf.Build()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}
