package main

import (
	"fmt"

	"github.com/danmuck/coherencegate/internal/coherence"
	"github.com/danmuck/coherencegate/internal/logging"
	"github.com/danmuck/coherencegate/internal/observability"
	"github.com/danmuck/coherencegate/internal/payload"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newEvaluateCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "evaluate [payload-file|-]",
		Short: "Run a payload through the gate and print the manifest",
		Long: `Decode a payload, build its record, and run the gate.

Exit status is 0 when the record passes, 2 on a coherence veto, and 1 for
malformed payloads or other failures.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.evaluate(cmd, sourceArg(args), format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "payload format: json, yaml, toml or tlv (default from extension)")
	return cmd
}

func (a *app) evaluate(cmd *cobra.Command, source, format string) error {
	metrics := observability.NewMetrics()
	decision := observability.Decision{
		EvalID:    uuid.NewString(),
		Source:    source,
		Threshold: a.cfg.Threshold,
	}
	logger := logging.Logger("gate")

	finish := func(err error) error {
		decision.Err = err
		observability.LogDecision(logger, decision)
		metrics.RecordDecision(observability.Classify(err), decision.Record)
		if a.cfg.MetricsFile != "" {
			if werr := metrics.WriteTextfile(a.cfg.MetricsFile); werr != nil {
				logger.Warn().Err(werr).Msg("metrics textfile")
			}
		}
		return err
	}

	rec, err := a.loadRecord(cmd, source, format)
	if err != nil {
		return finish(err)
	}
	decision.Record = &rec

	manifest, err := coherence.NewGate(rec).Evaluate()
	if err != nil {
		return finish(err)
	}
	decision.Manifest = &manifest
	finish(nil)
	return renderManifest(cmd.OutOrStdout(), a.cfg.Output, manifest)
}

func (a *app) loadRecord(cmd *cobra.Command, source, format string) (coherence.Record, error) {
	f := payload.FormatFromPath(source)
	if format != "" {
		parsed, err := payload.ParseFormat(format)
		if err != nil {
			return coherence.Record{}, err
		}
		f = parsed
	}

	var (
		doc map[string]any
		err error
	)
	if source == payload.Stdin {
		doc, err = payload.Decode(cmd.InOrStdin(), f)
	} else {
		doc, err = payload.ReadFile(source, f)
	}
	if err != nil {
		return coherence.Record{}, err
	}

	rec, err := a.cfg.Builder().FromPayload(doc)
	if err != nil {
		return coherence.Record{}, fmt.Errorf("payload %s: %w", source, err)
	}
	return rec, nil
}

func sourceArg(args []string) string {
	if len(args) == 0 {
		return payload.Stdin
	}
	return args[0]
}
