// Package payload decodes upstream payload documents into the untyped mapping
// consumed by coherence.FromPayload.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatTLV  Format = "tlv"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

var (
	ErrNotMapping    = errors.New("payload: top level is not a mapping")
	ErrUnknownFormat = errors.New("payload: unknown format")
)

func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "tlv", "bin":
		return FormatTLV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// FormatFromPath infers the format from the file extension, defaulting to
// JSON for stdin and unknown extensions.
func FormatFromPath(path string) Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if f, err := ParseFormat(ext); err == nil {
		return f
	}
	return FormatJSON
}

// Decode reads one payload document from r.
func Decode(r io.Reader, f Format) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("payload read: %w", err)
	}
	switch f {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	case FormatTOML:
		return decodeTOML(data)
	case FormatTLV:
		return decodeTLV(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// ReadFile decodes the payload at path, or stdin when path is Stdin.
func ReadFile(path string, f Format) (map[string]any, error) {
	if path == Stdin {
		return Decode(os.Stdin, f)
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("payload open (%s): %w", path, err)
	}
	defer fh.Close()
	out, err := Decode(fh, f)
	if err != nil {
		return nil, fmt.Errorf("payload decode (%s): %w", path, err)
	}
	return out, nil
}

// JSON numbers stay json.Number so coercion sees the original text.
func decodeJSON(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("payload json: %w", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotMapping
	}
	return m, nil
}

func decodeYAML(data []byte) (map[string]any, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("payload yaml: %w", err)
	}
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}
	m := make(map[string]any)
	if err := node.Content[0].Decode(&m); err != nil {
		return nil, fmt.Errorf("payload yaml: %w", err)
	}
	return m, nil
}

func decodeTOML(data []byte) (map[string]any, error) {
	m := make(map[string]any)
	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, fmt.Errorf("payload toml: %w", err)
	}
	return m, nil
}
