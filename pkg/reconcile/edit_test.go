package reconcile

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/smbmanager/pkg/smbconf/binding"
)

func shareParams() map[string]string {
	return map[string]string{
		"path":       "/srv/public",
		"read-only":  "yes",
		"comment":    "a",
		"foo":        "1",
		"bar":        "2",
		"browseable": "yes",
	}
}

func TestDiff(t *testing.T) {
	e := Open(binding.ScopeShare, "Public", shareParams(), AdvancedResend)

	delta, errs := e.Diff(Form{
		Bound:    map[string]string{"read-only": "yes", "comment": "b", "path": "/srv/public"},
		Advanced: "foo = 3\n",
	})

	require.Empty(t, errs)
	assert.Equal(t, map[string]string{"comment": "b", "foo": "3"}, delta.ToSet)
	assert.Equal(t, []string{"bar"}, delta.ToDelete)
}

func TestDiffAbsentKeyIsSet(t *testing.T) {
	delta, errs := Diff(binding.ScopeShare, map[string]string{"path": "/x"},
		map[string]string{"guest-ok": "no", "comment": ""}, "", AdvancedResend)

	require.Empty(t, errs)
	assert.Equal(t, map[string]string{"guest-ok": "no", "comment": ""}, delta.ToSet)
	assert.Empty(t, delta.ToDelete)
}

func TestDiffUnlistedBoundFieldsUntouched(t *testing.T) {
	delta, _ := Diff(binding.ScopeShare, map[string]string{"path": "/x", "read-only": "no"},
		map[string]string{"path": "/y"}, "", AdvancedResend)

	assert.Equal(t, map[string]string{"path": "/y"}, delta.ToSet)
	assert.Empty(t, delta.ToDelete)
}

func TestDiffComparesCanonicalValues(t *testing.T) {
	previous := map[string]string{
		"read-only":   "Yes",
		"valid-users": "bob, @ops, alice",
	}
	delta, errs := Diff(binding.ScopeShare, previous, map[string]string{
		"read-only":   "true",
		"valid-users": "alice,bob, @ops",
	}, "", AdvancedResend)

	require.Empty(t, errs)
	assert.True(t, delta.IsEmpty())
}

func TestDiffKeepsSpacedGroupNames(t *testing.T) {
	previous := map[string]string{"valid-users": "@Domain Users, alice"}
	delta, errs := Diff(binding.ScopeShare, previous, map[string]string{
		"valid-users": "@Domain Users, alice, bob",
	}, "", AdvancedResend)

	require.Empty(t, errs)
	assert.Equal(t, map[string]string{"valid-users": "@Domain Users, alice, bob"}, delta.ToSet)
}

func TestDiffSerializesBoundValues(t *testing.T) {
	delta, errs := Diff(binding.ScopeShare, map[string]string{}, map[string]string{
		"read-only":   "false",
		"guest-ok":    "1",
		"valid-users": "bob, alice, @ops",
	}, "", AdvancedResend)

	require.Empty(t, errs)
	assert.Equal(t, map[string]string{
		"read-only":   "no",
		"guest-ok":    "yes",
		"valid-users": "@ops, alice, bob",
	}, delta.ToSet)
}

func TestDiffSkipsInvalidValues(t *testing.T) {
	e := Open(binding.ScopeShare, "s", map[string]string{"read-only": "yes"}, AdvancedResend)

	delta, errs := e.Diff(Form{
		Bound:    map[string]string{"read-only": "perhaps", "comment": "ok"},
		Advanced: "this is not a pair\nvfs objects = fruit\n  \n= no key\n",
	})

	require.Len(t, errs, 3)
	var verr *binding.ValidationError
	require.ErrorAs(t, errs[0], &verr)
	assert.Equal(t, "read-only", verr.Key)

	var merr *MalformedLineError
	require.ErrorAs(t, errs[1], &merr)
	assert.Equal(t, 1, merr.Line)
	require.ErrorAs(t, errs[2], &merr)
	assert.Equal(t, 4, merr.Line)

	assert.Equal(t, map[string]string{"comment": "ok", "vfs-objects": "fruit"}, delta.ToSet)
	assert.Equal(t, "yes", e.Baseline()["read-only"])
}

func TestDiffIdempotent(t *testing.T) {
	form := Form{
		Bound:    map[string]string{"read-only": "no", "comment": "changed"},
		Advanced: "foo = 3\nnew key = v\n",
	}

	t.Run("Strict", func(t *testing.T) {
		e := Open(binding.ScopeShare, "Public", shareParams(), AdvancedStrict)

		first, _ := e.Diff(form)
		require.False(t, first.IsEmpty())

		second, errs := e.Diff(form)
		require.Empty(t, errs)
		assert.Empty(t, second.ToSet)
		assert.Empty(t, second.ToDelete)
	})

	t.Run("Resend", func(t *testing.T) {
		e := Open(binding.ScopeShare, "Public", shareParams(), AdvancedResend)

		_, _ = e.Diff(form)
		second, _ := e.Diff(form)

		assert.Equal(t, map[string]string{"foo": "3", "new-key": "v"}, second.ToSet)
		assert.Empty(t, second.ToDelete)
		for key := range second.ToSet {
			assert.False(t, binding.IsBound(binding.ScopeShare, key), key)
		}
	})
}

func TestDiffStrictOnlySendsChangedAdvanced(t *testing.T) {
	delta, _ := Diff(binding.ScopeShare, shareParams(), nil, "foo = 1\nbar = 5\n", AdvancedStrict)

	assert.Equal(t, map[string]string{"bar": "5"}, delta.ToSet)
	assert.Empty(t, delta.ToDelete)
}

func TestDiffRemovingAllAdvanced(t *testing.T) {
	delta, _ := Diff(binding.ScopeShare, shareParams(), nil, "", AdvancedResend)

	assert.Equal(t, []string{"bar", "foo"}, delta.ToDelete)
	assert.Empty(t, delta.ToSet)
}

func TestDiffGlobalScope(t *testing.T) {
	previous := map[string]string{"workgroup": "OLD", "vfs-objects": "acl_xattr", "log-level": "1"}
	delta, errs := Diff(binding.ScopeGlobal, previous,
		map[string]string{"workgroup": "NEW", "log-level": "1"}, "", AdvancedResend)

	require.Empty(t, errs)
	assert.Equal(t, map[string]string{"workgroup": "NEW"}, delta.ToSet)
	assert.Equal(t, []string{"vfs-objects"}, delta.ToDelete)
}

func TestDiffDisjoint(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	keys := []string{"path", "comment", "read-only", "guest-ok", "foo", "bar", "baz", "vfs-objects"}
	values := []string{"yes", "no", "x", "", "1"}

	for i := 0; i < 200; i++ {
		previous := make(map[string]string)
		bound := make(map[string]string)
		advanced := ""
		for _, k := range keys {
			if rng.IntN(2) == 0 {
				previous[k] = values[rng.IntN(len(values))]
			}
			if binding.IsBound(binding.ScopeShare, k) && rng.IntN(2) == 0 {
				bound[k] = values[rng.IntN(len(values))]
			}
			if rng.IntN(3) == 0 {
				advanced += fmt.Sprintf("%s = %s\n", k, values[rng.IntN(len(values))])
			}
		}

		policy := AdvancedResend
		if i%2 == 0 {
			policy = AdvancedStrict
		}
		delta, _ := Diff(binding.ScopeShare, previous, bound, advanced, policy)
		for _, k := range delta.ToDelete {
			_, clash := delta.ToSet[k]
			assert.False(t, clash, "iteration %d: %q in both halves", i, k)
			assert.False(t, binding.IsBound(binding.ScopeShare, k), "iteration %d: bound key %q deleted", i, k)
		}
	}
}

func TestPendingEditForm(t *testing.T) {
	e := Open(binding.ScopeShare, "Public", map[string]string{
		"path":        "/srv/public",
		"valid-users": "@ops, alice",
		"vfs-objects": "fruit streams_xattr",
		"foo":         "1",
	}, AdvancedResend)

	form := e.Form()
	assert.Equal(t, "/srv/public", form.Bound["path"])
	assert.Equal(t, "@ops, alice", form.Bound["valid-users"])
	assert.Equal(t, "yes", form.Bound["read-only"])
	assert.Equal(t, "no", form.Bound["guest-ok"])
	assert.Equal(t, "yes", form.Bound["browseable"])
	assert.Equal(t, "", form.Bound["comment"])
	assert.Equal(t, "foo = 1\nvfs objects = fruit streams_xattr\n", form.Advanced)
	assert.NotContains(t, form.Advanced, "path")
	assert.NotContains(t, form.Advanced, "valid users")

	assert.Equal(t, binding.ScopeShare, e.Scope())
	assert.Equal(t, "Public", e.Section())
	assert.Equal(t, AdvancedResend, e.Policy())
}

func TestUnchangedFormProducesNoBoundChanges(t *testing.T) {
	e := Open(binding.ScopeShare, "Public", map[string]string{
		"path": "/srv", "read-only": "no", "guest-ok": "yes", "browseable": "yes",
		"comment": "c", "valid-users": "@ops", "create-mask": "0644", "directory-mask": "0755",
		"extra": "1",
	}, AdvancedStrict)

	delta, errs := e.Diff(e.Form())
	require.Empty(t, errs)
	assert.True(t, delta.IsEmpty(), "%+v", delta)
}

func TestParseAdvancedRejectsHeaderKeys(t *testing.T) {
	entries, malformed := ParseAdvanced("[x = y]\nvfs objects = fruit\n  [homes] = no\n")

	assert.Equal(t, map[string]string{"vfs-objects": "fruit"}, entries)
	require.Len(t, malformed, 2)
	assert.Equal(t, 1, malformed[0].Line)
	assert.Equal(t, 3, malformed[1].Line)
}

func TestParseAdvancedPolicy(t *testing.T) {
	assert.Equal(t, AdvancedStrict, ParseAdvancedPolicy("strict"))
	assert.Equal(t, AdvancedResend, ParseAdvancedPolicy("resend"))
	assert.Equal(t, AdvancedResend, ParseAdvancedPolicy(""))
}

func TestDeltaSetKeys(t *testing.T) {
	d := Delta{ToSet: map[string]string{"b": "1", "a": "2"}}
	assert.Equal(t, []string{"a", "b"}, d.SetKeys())
	assert.False(t, d.IsEmpty())
	assert.True(t, Delta{}.IsEmpty())
}
