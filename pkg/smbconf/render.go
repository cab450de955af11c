package smbconf

import (
	"maps"
	"slices"
	"strings"
)

// Render formats a snapshot the way `net conf list` prints it: the global
// section first, then shares in order of first appearance, keys sorted
// within each section. Parse(Render(s)) is equal to s.
func Render(s *Snapshot) string {
	var b strings.Builder

	if len(s.global) > 0 {
		writeSection(&b, GlobalSection, s.global)
	}
	for _, name := range s.order {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		writeSection(&b, name, s.sections[name])
	}
	return b.String()
}

func writeSection(b *strings.Builder, name string, params map[string]string) {
	b.WriteString("[" + name + "]\n")
	for _, key := range slices.Sorted(maps.Keys(params)) {
		b.WriteString("\t" + FormatLine(key, params[key]) + "\n")
	}
}

// FormatLine renders one parameter as "display key = value".
func FormatLine(key, value string) string {
	return DisplayKey(key) + " = " + value
}
