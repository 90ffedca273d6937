package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/coherencegate/internal/coherence"
	"github.com/danmuck/coherencegate/internal/payload"
	"github.com/danmuck/coherencegate/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const (
	passPayload = `{"session_id":"test_session","blockhash":"0xabc123","theta_power":0.85}`
	vetoPayload = `{"session_id":"test_session","blockhash":"0xabc123","theta_power":0.65}`
)

func TestEvaluatePassJSON(t *testing.T) {
	testlog.Start(t)
	res := runCLI(t, passPayload, "evaluate", "--log-level", "off")
	require.Equal(t, exitOK, res.code, res.stderr)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
	assert.Equal(t, 0.85, got["coherence_value"])
	assert.Equal(t, float64(18000), got["phase"])
	assert.Equal(t, coherence.Fingerprint(coherence.NewRecord("test_session", "0xabc123", 0.85)), got["fingerprint"])
}

func TestEvaluateVetoExitCode(t *testing.T) {
	testlog.Start(t)
	res := runCLI(t, vetoPayload, "evaluate", "--log-level", "off")
	assert.Equal(t, exitVeto, res.code)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "0.650")
	assert.Contains(t, res.stderr, "0.7")
}

func TestEvaluateMissingFieldIsNotVeto(t *testing.T) {
	testlog.Start(t)
	res := runCLI(t, `{"session_id":"s","blockhash":"h"}`, "evaluate", "--log-level", "off")
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.stderr, "theta_power")
}

func TestEvaluateEmptyCoherenceIsMalformed(t *testing.T) {
	testlog.Start(t)
	for _, v := range []string{`""`, `"   "`, `true`} {
		doc := `{"session_id":"s","blockhash":"h","theta_power":` + v + `}`
		res := runCLI(t, doc, "evaluate", "--log-level", "off")
		assert.Equal(t, exitError, res.code, v)
		assert.NotContains(t, res.stderr, "veto", v)
		assert.Contains(t, res.stderr, "theta_power", v)
	}
}

func TestEvaluateYAMLFileTableOutput(t *testing.T) {
	testlog.Start(t)
	path := writeFile(t, "payload.yaml", "session_id: s\nblockhash: \"0x1\"\ntheta_power: 0.7\n")
	res := runCLI(t, "", "evaluate", path, "-o", "table", "--log-level", "off")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, strings.ToUpper(res.stdout), "FINGERPRINT")
	assert.Contains(t, res.stdout, "18000")
}

func TestEvaluateTOMLYAMLOutput(t *testing.T) {
	testlog.Start(t)
	path := writeFile(t, "payload.toml", "session_id = \"s\"\nblockhash = \"h\"\ntheta_power = 0.9\n")
	res := runCLI(t, "", "evaluate", path, "--output", "yaml", "--log-level", "off")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "phase: 18000")
	assert.Contains(t, res.stdout, "coherence_value: 0.9")
}

func TestEvaluateFormatFlagOverridesExtension(t *testing.T) {
	testlog.Start(t)
	path := writeFile(t, "payload.txt", "session_id = \"s\"\nblockhash = \"h\"\ntheta_power = 0.9\n")
	res := runCLI(t, "", "evaluate", path, "--format", "toml", "--log-level", "off")
	require.Equal(t, exitOK, res.code, res.stderr)
}

func TestEvaluateTLVFile(t *testing.T) {
	testlog.Start(t)
	path := writeFile(t, "payload.tlv", string(payload.EncodeTLV("s", "0x1", 0.75)))
	res := runCLI(t, "", "evaluate", path, "--log-level", "off")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, `"coherence_value": 0.75`)
}

func TestEvaluateThresholdFromConfig(t *testing.T) {
	testlog.Start(t)
	cfg := writeFile(t, "gate.toml", "threshold = 0.9\n[log]\nlevel = \"off\"\n")
	res := runCLI(t, passPayload, "evaluate", "--config", cfg)
	assert.Equal(t, exitVeto, res.code)
	assert.Contains(t, res.stderr, "(0.9)")
}

func TestEvaluateRejectsBadThreshold(t *testing.T) {
	testlog.Start(t)
	res := runCLI(t, passPayload, "evaluate", "--threshold", "2", "--log-level", "off")
	assert.Equal(t, exitError, res.code)
}

func TestEvaluateWritesMetrics(t *testing.T) {
	testlog.Start(t)
	metrics := filepath.Join(t.TempDir(), "gatectl.prom")
	res := runCLI(t, vetoPayload, "evaluate", "--metrics-file", metrics, "--log-level", "off")
	require.Equal(t, exitVeto, res.code)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), `gatectl_gate_decisions_total{outcome="veto"} 1`)

	// each run replaces the file with its own decision
	res = runCLI(t, passPayload, "evaluate", "--metrics-file", metrics, "--log-level", "off")
	require.Equal(t, exitOK, res.code, res.stderr)
	data, err = os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), `gatectl_gate_decisions_total{outcome="pass"} 1`)
	assert.NotContains(t, string(data), `outcome="veto"`)
}

func TestEvaluateLogsDecision(t *testing.T) {
	testlog.Start(t)
	t.Setenv("COHERENCE_LOG_FORMAT", "json")
	res := runCLI(t, vetoPayload, "evaluate")
	require.Equal(t, exitVeto, res.code)

	line := strings.SplitN(res.stderr, "\n", 2)[0]
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry), res.stderr)
	assert.Equal(t, "gate_decision", entry["message"])
	assert.Equal(t, "veto", entry["outcome"])
	assert.NotEmpty(t, entry["eval_id"])
}

func TestFingerprintAndVerify(t *testing.T) {
	testlog.Start(t)
	res := runCLI(t, passPayload, "fingerprint", "--log-level", "off")
	require.Equal(t, exitOK, res.code, res.stderr)

	var view fingerprintView
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &view))
	assert.Equal(t, "test_session", view.SessionID)

	ok := runCLI(t, passPayload, "verify", "--fingerprint", strings.ToUpper(view.Fingerprint), "--log-level", "off")
	assert.Equal(t, exitOK, ok.code, ok.stderr)

	bad := runCLI(t, vetoPayload, "verify", "--fingerprint", view.Fingerprint, "--log-level", "off")
	assert.Equal(t, exitError, bad.code)
	assert.Contains(t, bad.stderr, "fingerprint mismatch")
}

func TestVerifyRequiresFingerprint(t *testing.T) {
	testlog.Start(t)
	res := runCLI(t, passPayload, "verify", "--log-level", "off")
	assert.Equal(t, exitError, res.code)
}

func TestConfigTemplateAndValidate(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "gate.toml")
	res := runCLI(t, "", "config", "template", "--path", path, "--log-level", "off")
	require.Equal(t, exitOK, res.code, res.stderr)

	again := runCLI(t, "", "config", "template", "--path", path, "--log-level", "off")
	assert.Equal(t, exitError, again.code)

	val := runCLI(t, "", "config", "validate", path, "--log-level", "off")
	require.Equal(t, exitOK, val.code, val.stderr)
	assert.Contains(t, val.stdout, "threshold 0.7")

	stdout := runCLI(t, "", "config", "template", "--log-level", "off")
	assert.Contains(t, stdout.stdout, "threshold = 0.7")
}

func TestExitCode(t *testing.T) {
	testlog.Start(t)
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitVeto, exitCode(&coherence.VetoError{Coherence: 0.1, Threshold: 0.7}))
	assert.Equal(t, exitError, exitCode(coherence.ErrMissingField))
}
