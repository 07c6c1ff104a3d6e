package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatYAML, FormatJSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported format: %s (use yaml or json)", s)
}

// Print serializes v to stdout in the current output format.
func Print(v interface{}) error {
	return Encode(os.Stdout, v, OutputFormat, PrettyOutput)
}

// Encode serializes v to w. pretty only affects JSON.
func Encode(w io.Writer, v interface{}, format Format, pretty bool) error {
	switch format {
	case FormatJSON:
		return EncodeJSON(w, v, pretty)
	case FormatYAML:
		return EncodeYAML(w, v)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// EncodeJSON writes v as compact single-line JSON, or indented when pretty.
func EncodeJSON(w io.Writer, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

// EncodeYAML writes v as YAML.
func EncodeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
