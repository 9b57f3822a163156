package compiler

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/roach88/wgrid/internal/grid"
)

// OptionFormat is the encoding of an option file.
type OptionFormat string

const (
	FormatYAML OptionFormat = "yaml"
	FormatJSON OptionFormat = "json"
)

// FormatFor picks the option format from a file extension.
// .json and .jsonc are JSON (comments and trailing commas allowed), .yaml
// and .yml are YAML.
func FormatFor(path string) (OptionFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json", ".jsonc":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported option file extension %q", filepath.Ext(path))
	}
}

// LoadOptions reads a partial options file.
func LoadOptions(path string) (grid.PartialOptions, error) {
	format, err := FormatFor(path)
	if err != nil {
		return grid.PartialOptions{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return grid.PartialOptions{}, fmt.Errorf("read options: %w", err)
	}
	opts, err := ParseOptions(data, format)
	if err != nil {
		return grid.PartialOptions{}, fmt.Errorf("%s: %w", path, err)
	}
	return opts, nil
}

// ParseOptions decodes partial options. Unknown members are rejected in
// both formats.
func ParseOptions(data []byte, format OptionFormat) (grid.PartialOptions, error) {
	var opts grid.PartialOptions

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&opts); err != nil {
			return grid.PartialOptions{}, fmt.Errorf("parse yaml options: %w", err)
		}
	case FormatJSON:
		if err := decodeStrictJSON(jsonc.ToJSON(data), &opts); err != nil {
			return grid.PartialOptions{}, fmt.Errorf("parse json options: %w", err)
		}
	default:
		return grid.PartialOptions{}, fmt.Errorf("unknown option format %q", format)
	}
	return opts, nil
}
