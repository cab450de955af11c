package binding

import (
	"fmt"
	"slices"
	"strings"
)

// ParseBool accepts the spellings Samba understands for booleans.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "on":
		return true, nil
	case "no", "false", "0", "off":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

// FormatBool serializes a boolean as "yes" or "no".
func FormatBool(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// IdentityList is a set of user and group names, as used by "valid users".
type IdentityList struct {
	Users  []string `json:"users,omitempty"`
	Groups []string `json:"groups,omitempty"`
}

// ParseIdentityList splits a Samba identity list on commas. Names may
// contain spaces ("@Domain Users"). Only a leading '@' marks a group; other
// entries, including '+unix' and '&nis' lookups, are kept verbatim in Users.
func ParseIdentityList(s string) IdentityList {
	var list IdentityList
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		switch {
		case f == "":
		case strings.HasPrefix(f, "@"):
			if name := strings.TrimSpace(f[1:]); name != "" {
				list.Groups = append(list.Groups, name)
			}
		default:
			list.Users = append(list.Users, f)
		}
	}
	return list
}

// String renders the list as Samba expects it: groups prefixed with '@',
// duplicates removed, entries sorted and joined by ", ".
//
//	IdentityList{Users: {"bob", "alice"}, Groups: {"ops"}} -> "@ops, alice, bob"
func (l IdentityList) String() string {
	entries := make([]string, 0, len(l.Users)+len(l.Groups))
	for _, u := range l.Users {
		if u = strings.TrimSpace(u); u != "" {
			entries = append(entries, u)
		}
	}
	for _, g := range l.Groups {
		if g = strings.TrimLeft(strings.TrimSpace(g), "@"); g != "" {
			entries = append(entries, "@"+g)
		}
	}
	slices.Sort(entries)
	return strings.Join(slices.Compact(entries), ", ")
}

// IsEmpty reports whether the list holds no identities.
func (l IdentityList) IsEmpty() bool {
	return len(l.Users) == 0 && len(l.Groups) == 0
}
