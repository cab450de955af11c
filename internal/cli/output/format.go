// Package output renders smbmctl and smbm results as tables, JSON or YAML.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Format selects how command results are rendered.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat maps the --output flag value to a Format. Empty means table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("invalid output format: %q (valid: table, json, yaml)", s)
}

func (f Format) String() string {
	return string(f)
}

// Write renders data in format f. Table output uses table and falls back
// to JSON when table is nil.
func Write(w io.Writer, f Format, data any, table TableRenderer) error {
	switch f {
	case FormatJSON:
		return PrintJSON(w, data)
	case FormatYAML:
		return PrintYAML(w, data)
	case FormatTable:
		if table == nil {
			return PrintJSON(w, data)
		}
		return PrintTable(w, table)
	}
	return fmt.Errorf("unknown format: %s", f)
}

const (
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

func paint(color bool, code, s string) string {
	if !color {
		return s
	}
	return code + s + colorReset
}

// Success writes msg on its own line, green when color is set.
func Success(w io.Writer, msg string, color bool) {
	_, _ = fmt.Fprintln(w, paint(color, colorGreen, msg))
}

// Warning writes msg prefixed with "warning: ", yellow when color is set.
func Warning(w io.Writer, msg string, color bool) {
	_, _ = fmt.Fprintln(w, paint(color, colorYellow, "warning: "+msg))
}
