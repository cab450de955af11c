// Package binding is the registry of Samba parameters that have dedicated,
// typed form fields, per section scope. Parameters without a binding are
// edited through the free-form advanced text.
package binding

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Scope selects which set of bindings applies to a section.
type Scope string

const (
	ScopeShare  Scope = "share"
	ScopeGlobal Scope = "global"
)

// ParseScope converts a scope name to a Scope.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeShare:
		return ScopeShare, nil
	case ScopeGlobal:
		return ScopeGlobal, nil
	}
	return "", fmt.Errorf("unknown scope %q", s)
}

// Kind is the value domain of a bound field.
type Kind string

const (
	KindBool         Kind = "bool"
	KindText         Kind = "text"
	KindNumeric      Kind = "numeric" // numeric-or-text
	KindIdentityList Kind = "identity-list"
)

// Binding associates a normalized parameter key with a typed field.
type Binding struct {
	Key         string `json:"key"`
	Kind        Kind   `json:"kind"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
}

var shareBindings = []Binding{
	{Key: "path", Kind: KindText, Description: "Directory exported by the share"},
	{Key: "comment", Kind: KindText, Description: "Description shown to clients"},
	{Key: "read-only", Kind: KindBool, Default: "yes", Description: "Deny writes to the share"},
	{Key: "guest-ok", Kind: KindBool, Default: "no", Description: "Allow guest connections"},
	{Key: "browseable", Kind: KindBool, Default: "yes", Description: "List the share in browse lists"},
	{Key: "valid-users", Kind: KindIdentityList, Description: "Users and @groups allowed to connect"},
	{Key: "create-mask", Kind: KindNumeric, Description: "Permission mask for new files"},
	{Key: "directory-mask", Kind: KindNumeric, Description: "Permission mask for new directories"},
}

var globalBindings = []Binding{
	{Key: "workgroup", Kind: KindText, Description: "NT domain or workgroup name"},
	{Key: "server-string", Kind: KindText, Description: "Server description"},
	{Key: "netbios-name", Kind: KindText, Description: "NetBIOS name of the server"},
	{Key: "security", Kind: KindText, Description: "Authentication mode"},
	{Key: "map-to-guest", Kind: KindText, Description: "When to map logins to the guest account"},
	{Key: "log-level", Kind: KindNumeric, Description: "Debug level"},
	{Key: "max-log-size", Kind: KindNumeric, Description: "Maximum log file size in KiB"},
	{Key: "load-printers", Kind: KindBool, Description: "Load printers from printcap"},
}

// For returns the bindings of a scope in display order.
func For(scope Scope) []Binding {
	switch scope {
	case ScopeShare:
		return slices.Clone(shareBindings)
	case ScopeGlobal:
		return slices.Clone(globalBindings)
	}
	return nil
}

// Lookup finds the binding for a normalized key in a scope.
func Lookup(scope Scope, key string) (Binding, bool) {
	for _, b := range For(scope) {
		if b.Key == key {
			return b, true
		}
	}
	return Binding{}, false
}

// IsBound reports whether a normalized key has a dedicated field in scope.
func IsBound(scope Scope, key string) bool {
	_, ok := Lookup(scope, key)
	return ok
}

// ValidationError reports a field value outside its kind's domain.
type ValidationError struct {
	Key   string
	Kind  Kind
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s value %q for %s", e.Kind, e.Value, e.Key)
}

// Serialize converts a raw form value into the string written to the
// configuration for this binding.
func (b Binding) Serialize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	switch b.Kind {
	case KindBool:
		v, err := ParseBool(raw)
		if err != nil {
			return "", &ValidationError{Key: b.Key, Kind: b.Kind, Value: raw}
		}
		return FormatBool(v), nil
	case KindIdentityList:
		return ParseIdentityList(raw).String(), nil
	default:
		// Text and numeric-or-text values are written verbatim; integers
		// are not reformatted so octal masks such as 0644 survive.
		if strings.ContainsAny(raw, "\r\n") {
			return "", &ValidationError{Key: b.Key, Kind: b.Kind, Value: raw}
		}
		return raw, nil
	}
}

// Equal reports whether two values denote the same setting for this
// binding ("Yes" and "yes", or "bob, alice" and "alice, bob").
func (b Binding) Equal(x, y string) bool {
	cx, errX := b.Serialize(x)
	cy, errY := b.Serialize(y)
	if errX != nil || errY != nil {
		return strings.TrimSpace(x) == strings.TrimSpace(y)
	}
	return cx == cy
}

// IsNumeric reports whether a numeric-or-text value holds an integer.
func IsNumeric(v string) bool {
	_, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	return err == nil
}
