// Package smbconf models the Samba registry configuration as reported by
// `net conf list`: a global parameter map plus named share sections, with
// parameter keys in a normalized, hyphenated, lower-case form.
package smbconf

import (
	"maps"
	"slices"
	"strings"
)

// GlobalSection is the canonical name of the global section.
const GlobalSection = "global"

// IsGlobal reports whether a section name designates the global section.
// The comparison ignores case and surrounding whitespace.
func IsGlobal(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), GlobalSection)
}

// NormalizeKey converts a raw parameter name to its canonical form: trimmed,
// lower-cased, with each run of internal whitespace collapsed to a single '-'.
//
//	"Valid   Users" -> "valid-users"
func NormalizeKey(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), "-"))
}

// DisplayKey converts a normalized key back to the spaced form Samba prints
// and accepts ("valid-users" -> "valid users").
func DisplayKey(key string) string {
	return strings.ReplaceAll(key, "-", " ")
}

// Snapshot is an immutable view of the configuration at one point in time.
// All accessors return copies.
type Snapshot struct {
	global   map[string]string
	sections map[string]map[string]string
	order    []string
	skipped  int
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		global:   make(map[string]string),
		sections: make(map[string]map[string]string),
	}
}

// NewSnapshot builds a snapshot from already-normalized maps. Sections are
// ordered by name. A section named like the global section is merged into
// the global map.
func NewSnapshot(global map[string]string, sections map[string]map[string]string) *Snapshot {
	s := newSnapshot()
	for k, v := range global {
		s.global[NormalizeKey(k)] = strings.TrimSpace(v)
	}
	for _, name := range slices.Sorted(maps.Keys(sections)) {
		target := s.open(name)
		for k, v := range sections[name] {
			target[NormalizeKey(k)] = strings.TrimSpace(v)
		}
	}
	return s
}

// open returns the parameter map for a section, creating it if needed.
func (s *Snapshot) open(name string) map[string]string {
	if IsGlobal(name) {
		return s.global
	}
	m, ok := s.sections[name]
	if !ok {
		m = make(map[string]string)
		s.sections[name] = m
		s.order = append(s.order, name)
	}
	return m
}

// Global returns a copy of the global parameters.
func (s *Snapshot) Global() map[string]string {
	return maps.Clone(s.global)
}

// Section returns a copy of a section's parameters. The global section is
// addressable by any casing of its name. Share names are case-sensitive.
func (s *Snapshot) Section(name string) (map[string]string, bool) {
	if IsGlobal(name) {
		return s.Global(), true
	}
	m, ok := s.sections[name]
	if !ok {
		return nil, false
	}
	return maps.Clone(m), true
}

// HasSection reports whether a share section exists.
func (s *Snapshot) HasSection(name string) bool {
	_, ok := s.sections[name]
	return ok
}

// Sections returns share section names in order of first appearance.
func (s *Snapshot) Sections() []string {
	return slices.Clone(s.order)
}

// Skipped returns how many input lines the parser ignored.
func (s *Snapshot) Skipped() int {
	return s.skipped
}

// Equal reports whether two snapshots hold the same parameters and
// section order. Parser diagnostics are not compared.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	if !maps.Equal(s.global, other.global) || !slices.Equal(s.order, other.order) {
		return false
	}
	return maps.EqualFunc(s.sections, other.sections, func(a, b map[string]string) bool {
		return maps.Equal(a, b)
	})
}
