package reconcile

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/marmos91/smbmanager/pkg/smbconf"
	"github.com/marmos91/smbmanager/pkg/smbconf/binding"
)

// MalformedLineError describes an advanced-text line that is not a
// "key = value" pair.
type MalformedLineError struct {
	Line int // 1-based
	Text string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("advanced line %d is not a key = value pair: %q", e.Line, e.Text)
}

// ParseAdvanced reads the advanced text block. Blank lines are ignored;
// lines without '=', with an empty key or with a key starting with '[' are
// returned as malformed. Keys are normalized and values trimmed; a repeated
// key keeps the last value.
func ParseAdvanced(text string) (map[string]string, []*MalformedLineError) {
	entries := make(map[string]string)
	var malformed []*MalformedLineError

	for i, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		key = smbconf.NormalizeKey(key)
		if !ok || key == "" || key[0] == '[' {
			malformed = append(malformed, &MalformedLineError{Line: i + 1, Text: raw})
			continue
		}
		entries[key] = strings.TrimSpace(value)
	}
	return entries, malformed
}

// RenderAdvanced renders the parameters of values that have no bound field
// in scope, one "display key = value" line each, sorted by key.
func RenderAdvanced(scope binding.Scope, values map[string]string) string {
	var b strings.Builder
	for _, key := range slices.Sorted(maps.Keys(values)) {
		if binding.IsBound(scope, key) {
			continue
		}
		b.WriteString(smbconf.FormatLine(key, values[key]))
		b.WriteByte('\n')
	}
	return b.String()
}
