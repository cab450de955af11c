package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Run("ShareScopeHasRequiredFields", func(t *testing.T) {
		for key, kind := range map[string]Kind{
			"read-only":   KindBool,
			"guest-ok":    KindBool,
			"browseable":  KindBool,
			"comment":     KindText,
			"path":        KindText,
			"valid-users": KindIdentityList,
		} {
			b, ok := Lookup(ScopeShare, key)
			require.True(t, ok, key)
			assert.Equal(t, kind, b.Kind, key)
		}
	})

	t.Run("ScopesAreIndependent", func(t *testing.T) {
		assert.True(t, IsBound(ScopeGlobal, "workgroup"))
		assert.False(t, IsBound(ScopeShare, "workgroup"))
		assert.False(t, IsBound(ScopeGlobal, "path"))
		assert.False(t, IsBound(ScopeShare, "vfs-objects"))
	})

	t.Run("ForReturnsCopy", func(t *testing.T) {
		bs := For(ScopeShare)
		bs[0].Key = "mutated"
		assert.NotEqual(t, "mutated", For(ScopeShare)[0].Key)
		assert.Nil(t, For(Scope("printer")))
	})

	t.Run("KeysAreNormalized", func(t *testing.T) {
		for _, scope := range []Scope{ScopeShare, ScopeGlobal} {
			for _, b := range For(scope) {
				assert.NotContains(t, b.Key, " ")
				assert.Regexp(t, `^[a-z0-9-]+$`, b.Key)
			}
		}
	})
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope("Share")
	require.NoError(t, err)
	assert.Equal(t, ScopeShare, s)

	s, err = ParseScope("global")
	require.NoError(t, err)
	assert.Equal(t, ScopeGlobal, s)

	_, err = ParseScope("printers")
	assert.Error(t, err)
}

func TestBooleanRoundTrip(t *testing.T) {
	for _, v := range []bool{true, false} {
		parsed, err := ParseBool(FormatBool(v))
		require.NoError(t, err)
		assert.Equal(t, v, parsed)
	}
	assert.Equal(t, "yes", FormatBool(true))
	assert.Equal(t, "no", FormatBool(false))
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"yes", "Yes", "TRUE", "1", "on", " yes "} {
		v, err := ParseBool(s)
		require.NoError(t, err, s)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "0", "OFF"} {
		v, err := ParseBool(s)
		require.NoError(t, err, s)
		assert.False(t, v, s)
	}
	_, err := ParseBool("maybe")
	assert.Error(t, err)
}

func TestSerialize(t *testing.T) {
	readOnly, _ := Lookup(ScopeShare, "read-only")
	comment, _ := Lookup(ScopeShare, "comment")
	mask, _ := Lookup(ScopeShare, "create-mask")
	users, _ := Lookup(ScopeShare, "valid-users")

	tests := []struct {
		name    string
		b       Binding
		raw     string
		want    string
		wantErr bool
	}{
		{"BoolTrue", readOnly, "true", "yes", false},
		{"BoolNo", readOnly, "No", "no", false},
		{"BoolInvalid", readOnly, "sometimes", "", true},
		{"TextTrimmed", comment, "  Team files ", "Team files", false},
		{"TextMultiline", comment, "a\nb", "", true},
		{"NumericOctalKept", mask, "0644", "0644", false},
		{"NumericText", mask, "auto", "auto", false},
		{"IdentityList", users, "bob, alice,@ops", "@ops, alice, bob", false},
		{"IdentityListSpacedGroup", users, "alice, @Domain Users", "@Domain Users, alice", false},
		{"IdentityListEmpty", users, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.b.Serialize(tt.raw)
			if tt.wantErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.b.Key, verr.Key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentityList(t *testing.T) {
	t.Run("OrderingAndGroupPrefix", func(t *testing.T) {
		l := IdentityList{Users: []string{"bob", "alice"}, Groups: []string{"ops"}}
		assert.Equal(t, "@ops, alice, bob", l.String())
	})

	t.Run("Deduplicates", func(t *testing.T) {
		l := IdentityList{Users: []string{"bob", "bob", " "}, Groups: []string{"@ops", "ops"}}
		assert.Equal(t, "@ops, bob", l.String())
	})

	t.Run("NamesWithSpaces", func(t *testing.T) {
		l := ParseIdentityList("@Domain Users, alice")
		assert.Equal(t, []string{"alice"}, l.Users)
		assert.Equal(t, []string{"Domain Users"}, l.Groups)
		assert.Equal(t, "@Domain Users, alice", l.String())
	})

	t.Run("OtherPrefixesKeptVerbatim", func(t *testing.T) {
		l := ParseIdentityList("+unixgrp, &nisgrp,bob")
		assert.ElementsMatch(t, []string{"+unixgrp", "&nisgrp", "bob"}, l.Users)
		assert.Empty(t, l.Groups)
		assert.Equal(t, "&nisgrp, +unixgrp, bob", l.String())
	})

	t.Run("Empty", func(t *testing.T) {
		assert.True(t, ParseIdentityList(" , ").IsEmpty())
		assert.Equal(t, "", IdentityList{}.String())
	})
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric("10"))
	assert.True(t, IsNumeric(" 0644 "))
	assert.False(t, IsNumeric("auto"))
}
