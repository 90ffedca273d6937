package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/danmuck/coherencegate/internal/coherence"
	"github.com/danmuck/coherencegate/internal/config"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

type fingerprintView struct {
	SessionID   string `json:"session_id" yaml:"session_id"`
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
}

func renderManifest(w io.Writer, out config.Output, m coherence.Manifest) error {
	if out == config.OutputTable {
		table := tablewriter.NewWriter(w)
		table.Header("Fingerprint", "Phase", "Created At", "Coherence")
		if err := table.Append(
			m.Fingerprint(),
			strconv.Itoa(int(m.Phase())),
			m.CreatedAt().Format(time.RFC3339),
			strconv.FormatFloat(m.CoherenceValue(), 'f', -1, 64),
		); err != nil {
			return err
		}
		return table.Render()
	}
	return encode(w, out, m)
}

func renderFingerprint(w io.Writer, out config.Output, rec coherence.Record, fp string) error {
	if out == config.OutputTable {
		table := tablewriter.NewWriter(w)
		table.Header("Session", "Fingerprint")
		if err := table.Append(rec.SessionID(), fp); err != nil {
			return err
		}
		return table.Render()
	}
	return encode(w, out, fingerprintView{SessionID: rec.SessionID(), Fingerprint: fp})
}

func encode(w io.Writer, out config.Output, v any) error {
	switch out {
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
}
