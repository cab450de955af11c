// Package reconcile computes the minimal set of Samba parameter changes
// between a section's configuration and an edited form, and applies them
// through a delete-then-set sequence.
package reconcile

import (
	"maps"
	"slices"

	"github.com/marmos91/smbmanager/pkg/smbconf/binding"
)

// AdvancedPolicy controls how advanced-text entries enter a delta.
type AdvancedPolicy string

const (
	// AdvancedResend includes every advanced entry in ToSet, changed or not.
	AdvancedResend AdvancedPolicy = "resend"
	// AdvancedStrict includes only advanced entries whose value changed.
	AdvancedStrict AdvancedPolicy = "strict"
)

// ParseAdvancedPolicy converts a policy name, defaulting to AdvancedResend.
func ParseAdvancedPolicy(s string) AdvancedPolicy {
	if AdvancedPolicy(s) == AdvancedStrict {
		return AdvancedStrict
	}
	return AdvancedResend
}

// Form holds the edited state of one section: raw values for bound fields
// keyed by normalized parameter name, plus the advanced text block.
type Form struct {
	Bound    map[string]string `json:"bound"`
	Advanced string            `json:"advanced"`
}

// Delta is the change set for one section. ToSet and ToDelete are disjoint.
type Delta struct {
	ToSet    map[string]string `json:"to_set"`
	ToDelete []string          `json:"to_delete"`
}

// IsEmpty reports whether the delta changes nothing.
func (d Delta) IsEmpty() bool {
	return len(d.ToSet) == 0 && len(d.ToDelete) == 0
}

// SetKeys returns the keys of ToSet in sorted order.
func (d Delta) SetKeys() []string {
	return slices.Sorted(maps.Keys(d.ToSet))
}

// PendingEdit is an open edit of one section. It carries the baseline the
// form is compared against; Diff advances that baseline, so a PendingEdit
// must not be shared between goroutines without external locking.
type PendingEdit struct {
	scope    binding.Scope
	section  string
	policy   AdvancedPolicy
	baseline map[string]string
	unbound  map[string]struct{}
}

// Open starts an edit of section against its current parameters.
func Open(scope binding.Scope, section string, previous map[string]string, policy AdvancedPolicy) *PendingEdit {
	e := &PendingEdit{
		scope:    scope,
		section:  section,
		policy:   policy,
		baseline: maps.Clone(previous),
		unbound:  make(map[string]struct{}),
	}
	if e.baseline == nil {
		e.baseline = make(map[string]string)
	}
	for k := range e.baseline {
		if !binding.IsBound(scope, k) {
			e.unbound[k] = struct{}{}
		}
	}
	return e
}

func (e *PendingEdit) Scope() binding.Scope   { return e.scope }
func (e *PendingEdit) Section() string        { return e.section }
func (e *PendingEdit) Policy() AdvancedPolicy { return e.policy }

// Baseline returns a copy of the values the next Diff compares against.
func (e *PendingEdit) Baseline() map[string]string {
	return maps.Clone(e.baseline)
}

// Form returns the form for the current baseline: every bound field
// populated from the baseline or its default, and the unbound keys rendered
// as advanced text.
func (e *PendingEdit) Form() Form {
	bound := make(map[string]string)
	for _, b := range binding.For(e.scope) {
		if v, ok := e.baseline[b.Key]; ok {
			bound[b.Key] = v
		} else {
			bound[b.Key] = b.Default
		}
	}
	return Form{
		Bound:    bound,
		Advanced: RenderAdvanced(e.scope, e.baseline),
	}
}

// Diff compares form against the baseline and returns the delta. Bound
// fields absent from form.Bound are left untouched. Field values outside
// their kind's domain and malformed advanced lines are skipped and returned
// as errors; they never abort the diff.
//
// After Diff the baseline reflects the form, so calling Diff again with the
// same form yields no bound changes and no deletions.
func (e *PendingEdit) Diff(form Form) (Delta, []error) {
	delta := Delta{ToSet: make(map[string]string)}
	var errs []error

	for _, b := range binding.For(e.scope) {
		raw, ok := form.Bound[b.Key]
		if !ok {
			continue
		}
		value, err := b.Serialize(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if prev, had := e.baseline[b.Key]; !had || !b.Equal(prev, value) {
			delta.ToSet[b.Key] = value
			e.baseline[b.Key] = value
		}
	}

	advanced, malformed := ParseAdvanced(form.Advanced)
	for _, m := range malformed {
		errs = append(errs, m)
	}
	for key, value := range advanced {
		prev, had := e.baseline[key]
		if e.policy != AdvancedStrict || !had || prev != value {
			delta.ToSet[key] = value
		}
		e.baseline[key] = value
		if !binding.IsBound(e.scope, key) {
			e.unbound[key] = struct{}{}
		}
	}

	for key := range e.unbound {
		if _, keep := advanced[key]; keep {
			continue
		}
		delta.ToDelete = append(delta.ToDelete, key)
		delete(e.unbound, key)
		delete(e.baseline, key)
	}
	slices.Sort(delta.ToDelete)

	for _, key := range delta.ToDelete {
		delete(delta.ToSet, key)
	}
	return delta, errs
}

// Diff is a one-shot comparison of a section's previous values against a
// form's bound values and advanced text.
func Diff(scope binding.Scope, previous map[string]string, bound map[string]string, advancedText string, policy AdvancedPolicy) (Delta, []error) {
	return Open(scope, "", previous, policy).Diff(Form{Bound: bound, Advanced: advancedText})
}
