package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/danmuck/coherencegate/internal/coherence"
	"github.com/danmuck/coherencegate/internal/config"
	"github.com/danmuck/coherencegate/internal/logging"
	"github.com/spf13/cobra"
)

const (
	exitOK    = 0
	exitError = 1
	exitVeto  = 2
)

type app struct {
	configPath  string
	output      string
	logLevel    string
	threshold   float64
	metricsFile string

	cfg config.GateConfig
}

func main() {
	logging.ConfigureRuntime()
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "gatectl: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, coherence.ErrVeto):
		return exitVeto
	default:
		return exitError
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "gatectl <command>",
		Short:         "Evaluate coherence payloads against the manifestation gate",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "gate config file (TOML)")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", "", "output format: json, yaml or table")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override")
	root.PersistentFlags().Float64Var(&a.threshold, "threshold", 0, "coherence threshold override")
	root.PersistentFlags().StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")

	root.AddCommand(
		newEvaluateCmd(a),
		newFingerprintCmd(a),
		newVerifyCmd(a),
		newConfigCmd(),
	)
	return root
}

// setup resolves config file, flag overrides, and logging before any
// subcommand runs.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.DefaultGateConfig()
	if a.configPath != "" {
		loaded, err := config.LoadGateConfig(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("output") {
		out, err := config.ParseOutput(a.output)
		if err != nil {
			return err
		}
		cfg.Output = out
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("threshold") {
		cfg.Threshold = a.threshold
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = a.metricsFile
	}
	if err := config.ValidateGateConfig(cfg); err != nil {
		return err
	}
	a.cfg = cfg

	lc := cfg.LoggingConfig()
	lc.Out = cmd.ErrOrStderr()
	logging.ConfigureWith(lc)
	return nil
}
