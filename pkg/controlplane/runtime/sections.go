package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/marmos91/smbmanager/pkg/controlplane/models"
	"github.com/marmos91/smbmanager/pkg/reconcile"
	"github.com/marmos91/smbmanager/pkg/smbconf"
	"github.com/marmos91/smbmanager/pkg/smbconf/binding"
)

// Section is the current state of one configuration section together with
// the form an editor would start from.
type Section struct {
	Name   string            `json:"name"`
	Scope  binding.Scope     `json:"scope"`
	Params map[string]string `json:"params"`
	Form   reconcile.Form    `json:"form"`
}

func (r *Runtime) section(scope binding.Scope, name string, params map[string]string) *Section {
	return &Section{
		Name:   name,
		Scope:  scope,
		Params: params,
		Form:   reconcile.Open(scope, name, params, r.policy).Form(),
	}
}

// ValidateShareName checks that name can be used as a share section.
func ValidateShareName(name string) error {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return fmt.Errorf("%w: name is empty", models.ErrInvalidShareName)
	case trimmed != name:
		return fmt.Errorf("%w: leading or trailing whitespace", models.ErrInvalidShareName)
	case smbconf.IsGlobal(name):
		return fmt.Errorf("%w: %q is reserved", models.ErrInvalidShareName, name)
	case strings.ContainsAny(name, "[]=\r\n"):
		return fmt.Errorf("%w: must not contain '[', ']', '=' or line breaks", models.ErrInvalidShareName)
	}
	return nil
}

// ListShares returns every share section in listing order.
func (r *Runtime) ListShares(ctx context.Context) ([]*Section, error) {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	names := snap.Sections()
	out := make([]*Section, 0, len(names))
	for _, name := range names {
		params, _ := snap.Section(name)
		out = append(out, r.section(binding.ScopeShare, name, params))
	}
	return out, nil
}

// GetShare returns one share section.
// Returns models.ErrShareNotFound if it doesn't exist.
func (r *Runtime) GetShare(ctx context.Context, name string) (*Section, error) {
	if smbconf.IsGlobal(name) {
		return nil, fmt.Errorf("%w: %q is reserved", models.ErrInvalidShareName, name)
	}
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	name, params, ok := lookupSection(snap, name)
	if !ok {
		return nil, models.ErrShareNotFound
	}
	return r.section(binding.ScopeShare, name, params), nil
}

// lookupSection finds name in snap the way Samba resolves share names: an
// exact match first, then any spelling that differs only in case. It returns
// the name as spelled in the listing.
func lookupSection(snap *smbconf.Snapshot, name string) (string, map[string]string, bool) {
	if smbconf.IsGlobal(name) {
		return smbconf.GlobalSection, snap.Global(), true
	}
	if params, ok := snap.Section(name); ok {
		return name, params, true
	}
	key := sessionKey(name)
	for _, existing := range snap.Sections() {
		if sessionKey(existing) == key {
			params, _ := snap.Section(existing)
			return existing, params, true
		}
	}
	return "", nil, false
}

// GetGlobal returns the global section.
func (r *Runtime) GetGlobal(ctx context.Context) (*Section, error) {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return r.section(binding.ScopeGlobal, smbconf.GlobalSection, snap.Global()), nil
}

// RawConfig returns the current configuration rendered as smb.conf text.
func (r *Runtime) RawConfig(ctx context.Context) (string, error) {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	return smbconf.Render(snap), nil
}
