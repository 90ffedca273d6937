package main

import (
	"fmt"
	"strings"

	"github.com/danmuck/coherencegate/internal/coherence"
	"github.com/danmuck/coherencegate/internal/logging"
	"github.com/spf13/cobra"
)

func newFingerprintCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "fingerprint [payload-file|-]",
		Short: "Print the fingerprint of a payload's record",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.loadRecord(cmd, sourceArg(args), format)
			if err != nil {
				return err
			}
			return renderFingerprint(cmd.OutOrStdout(), a.cfg.Output, rec, coherence.Fingerprint(rec))
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "payload format: json, yaml, toml or tlv (default from extension)")
	return cmd
}

func newVerifyCmd(a *app) *cobra.Command {
	var (
		format      string
		fingerprint string
	)
	cmd := &cobra.Command{
		Use:   "verify [payload-file|-] --fingerprint <hex>",
		Short: "Check a fingerprint against a payload's record",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := sourceArg(args)
			rec, err := a.loadRecord(cmd, source, format)
			if err != nil {
				return err
			}
			fp := strings.ToLower(strings.TrimSpace(fingerprint))
			if err := coherence.VerifyFingerprint(rec, fp); err != nil {
				return fmt.Errorf("payload %s: %w", source, err)
			}
			vl := logging.Logger("verify")
			vl.Info().
				Str("session_id", rec.SessionID()).
				Str("fingerprint", fp).
				Msg("fingerprint verified")
			return renderFingerprint(cmd.OutOrStdout(), a.cfg.Output, rec, fp)
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "payload format: json, yaml, toml or tlv (default from extension)")
	cmd.Flags().StringVar(&fingerprint, "fingerprint", "", "expected fingerprint (hex)")
	_ = cmd.MarkFlagRequired("fingerprint")
	return cmd
}
