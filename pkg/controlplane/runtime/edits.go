package runtime

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/marmos91/smbmanager/internal/logger"
	"github.com/marmos91/smbmanager/pkg/controlplane/models"
	"github.com/marmos91/smbmanager/pkg/controlplane/store"
	"github.com/marmos91/smbmanager/pkg/reconcile"
	"github.com/marmos91/smbmanager/pkg/smbconf"
	"github.com/marmos91/smbmanager/pkg/smbconf/binding"
)

// Audit operations recorded with each apply.
const (
	OperationEdit   = "edit"
	OperationCreate = "create"
	OperationDelete = "delete"
)

// ApplyResult reports what an apply changed.
type ApplyResult struct {
	Section  string          `json:"section"`
	State    string          `json:"state"`
	Delta    reconcile.Delta `json:"delta"`
	Warnings []string        `json:"warnings,omitempty"`
	// Params is the section as re-read after the apply. Nil when the
	// re-read failed or the section no longer exists.
	Params     map[string]string `json:"params,omitempty"`
	DurationMs float64           `json:"duration_ms"`
	RecordID   string            `json:"record_id,omitempty"`
}

// OpenEdit starts an edit session on section against its current
// parameters. An open session on the same section is replaced.
func (r *Runtime) OpenEdit(ctx context.Context, section, actor string) (*Session, error) {
	scope, name, err := r.resolve(section)
	if err != nil {
		return nil, err
	}

	snap, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	name, params, ok := lookupSection(snap, name)
	if !ok {
		return nil, models.ErrShareNotFound
	}

	s, replaced := r.sessions.open(reconcile.Open(scope, name, params, r.policy), actor, r.sessionTTL)
	if replaced != "" {
		logger.InfoCtx(ctx, "Edit session replaced", logger.Section(name), logger.Session(replaced))
	}
	logger.InfoCtx(ctx, "Edit session opened",
		logger.Section(name), logger.Scope(string(scope)), logger.Session(s.ID), logger.Actor(actor))
	r.reportSessions()
	return r.sessions.view(s.ID)
}

// GetSession returns an open session.
func (r *Runtime) GetSession(id string) (*Session, error) {
	return r.sessions.view(id)
}

// CancelEdit discards a session without touching the configuration.
func (r *Runtime) CancelEdit(id string) error {
	s, err := r.sessions.take(id)
	r.reportSessions()
	if err != nil {
		return err
	}
	logger.Info("Edit session cancelled", logger.Section(s.Section), logger.Session(id))
	return nil
}

// ApplyEdit diffs form against the session baseline, applies the delta,
// records it and closes the session. The session is closed whatever the
// outcome; after a failure the caller re-opens to see the resulting state.
//
// When the apply fails the result is still returned together with the
// *reconcile.ApplyError.
func (r *Runtime) ApplyEdit(ctx context.Context, id string, form reconcile.Form, actor string) (*ApplyResult, error) {
	s, err := r.sessions.take(id)
	r.reportSessions()
	if err != nil {
		return nil, err
	}
	if actor == "" {
		actor = s.Actor
	}
	return r.apply(ctx, s.edit, form, actor, OperationEdit)
}

// UpdateSection opens an edit on section and applies form in one call.
func (r *Runtime) UpdateSection(ctx context.Context, section string, form reconcile.Form, actor string) (*ApplyResult, error) {
	scope, name, err := r.resolve(section)
	if err != nil {
		return nil, err
	}
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	name, params, ok := lookupSection(snap, name)
	if !ok {
		return nil, models.ErrShareNotFound
	}
	if r.sessions.dropSection(name) {
		logger.InfoCtx(ctx, "Open edit session superseded by direct update", logger.Section(name))
		r.reportSessions()
	}
	return r.apply(ctx, reconcile.Open(scope, name, params, r.policy), form, actor, OperationEdit)
}

// CreateShare adds a share section with path, then applies form against an
// empty baseline. A form without a path field gets path filled in.
func (r *Runtime) CreateShare(ctx context.Context, name, path string, form reconcile.Form, actor string) (*ApplyResult, error) {
	if err := ValidateShareName(name); err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("%w: path is required", models.ErrInvalidSharePath)
	}

	snap, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if _, _, exists := lookupSection(snap, name); exists {
		return nil, models.ErrDuplicateShare
	}

	r.applyMu.Lock()
	err = r.backend.AddShare(ctx, name, path)
	r.applyMu.Unlock()
	if err != nil {
		logger.WarnCtx(ctx, "Failed to add share", logger.Section(name), logger.Err(err))
		r.record(ctx, &models.ApplyRecord{
			Section: name, Scope: string(binding.ScopeShare), Operation: OperationCreate,
			Actor: actor, State: reconcile.StateFailed.String(), Error: err.Error(),
		}, reconcile.Delta{ToSet: map[string]string{"path": path}})
		return nil, err
	}
	logger.InfoCtx(ctx, "Share added", logger.Section(name), logger.Actor(actor))

	bound := make(map[string]string, len(form.Bound)+1)
	for k, v := range form.Bound {
		bound[k] = v
	}
	if _, ok := bound["path"]; !ok {
		bound["path"] = path
	}
	form.Bound = bound

	return r.apply(ctx, reconcile.Open(binding.ScopeShare, name, nil, r.policy), form, actor, OperationCreate)
}

// DeleteShare removes a share section and every parameter in it.
func (r *Runtime) DeleteShare(ctx context.Context, name, actor string) error {
	if err := ValidateShareName(name); err != nil {
		return err
	}
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return err
	}
	name, params, ok := lookupSection(snap, name)
	if !ok {
		return models.ErrShareNotFound
	}

	start := time.Now()
	r.applyMu.Lock()
	err = r.backend.DeleteShare(ctx, name)
	r.applyMu.Unlock()

	rec := &models.ApplyRecord{
		Section:    name,
		Scope:      string(binding.ScopeShare),
		Operation:  OperationDelete,
		Actor:      actor,
		State:      reconcile.StateDone.String(),
		DurationMs: logger.Duration(start),
	}
	keys := slices.Sorted(maps.Keys(params))
	if err != nil {
		rec.State = reconcile.StateFailed.String()
		rec.Error = err.Error()
	}
	r.record(ctx, rec, reconcile.Delta{ToDelete: keys})

	if err != nil {
		logger.WarnCtx(ctx, "Failed to delete share", logger.Section(name), logger.Err(err))
		return err
	}
	if r.sessions.dropSection(name) {
		r.reportSessions()
	}
	logger.InfoCtx(ctx, "Share deleted", logger.Section(name), logger.Actor(actor))
	return nil
}

// History returns recorded applies, newest first. An empty section matches
// every section.
func (r *Runtime) History(ctx context.Context, section string, limit int) ([]*models.ApplyRecord, error) {
	if r.store == nil {
		return []*models.ApplyRecord{}, nil
	}
	if smbconf.IsGlobal(section) {
		section = smbconf.GlobalSection
	}
	return r.store.ListApplies(ctx, store.ApplyFilter{Section: section, Limit: limit})
}

// apply runs diff and orchestration for one edit, records the outcome and
// re-reads the section.
func (r *Runtime) apply(ctx context.Context, edit *reconcile.PendingEdit, form reconcile.Form, actor, operation string) (*ApplyResult, error) {
	section := edit.Section()
	ctx = logger.Annotate(ctx, func(lc *logger.LogContext) {
		lc.Section = section
		lc.Actor = actor
	})

	delta, problems := edit.Diff(form)
	res := &ApplyResult{Section: section, Delta: delta}
	for _, p := range problems {
		res.Warnings = append(res.Warnings, p.Error())
	}
	if len(problems) > 0 {
		logger.WarnCtx(ctx, "Form entries skipped", logger.Count(len(problems)))
	}

	r.applyMu.Lock()
	outcome, applyErr := r.orchestrator.Apply(ctx, section, delta)
	r.applyMu.Unlock()

	res.State = outcome.State.String()
	res.DurationMs = float64(outcome.Duration.Microseconds()) / 1000

	if !delta.IsEmpty() || applyErr != nil {
		rec := &models.ApplyRecord{
			Section:    section,
			Scope:      string(edit.Scope()),
			Operation:  operation,
			Actor:      actor,
			State:      res.State,
			DurationMs: res.DurationMs,
		}
		if applyErr != nil {
			rec.Error = applyErr.Error()
		}
		res.RecordID = r.record(ctx, rec, delta)
	}

	// Re-read so callers see what actually landed, including after a
	// partial failure.
	if snap, err := r.Snapshot(ctx); err == nil {
		if params, ok := snap.Section(section); ok {
			res.Params = params
		}
	}

	if applyErr != nil {
		return res, applyErr
	}
	return res, nil
}

// record persists an audit entry and returns its id. Failures are logged,
// never returned: the configuration change already happened.
func (r *Runtime) record(ctx context.Context, rec *models.ApplyRecord, delta reconcile.Delta) string {
	if r.store == nil {
		return ""
	}
	rec.SetDelta(delta.ToSet, delta.ToDelete)
	if err := r.store.RecordApply(ctx, rec); err != nil {
		logger.ErrorCtx(ctx, "Failed to record apply", logger.Section(rec.Section), logger.Err(err))
		return ""
	}
	return rec.ID
}

// resolve maps a section name to its scope and canonical name.
func (r *Runtime) resolve(section string) (binding.Scope, string, error) {
	if smbconf.IsGlobal(section) {
		return binding.ScopeGlobal, smbconf.GlobalSection, nil
	}
	if err := ValidateShareName(section); err != nil {
		return "", "", err
	}
	return binding.ScopeShare, section, nil
}

func (r *Runtime) reportSessions() {
	if r.metrics != nil {
		r.metrics.SetOpenSessions(r.sessions.len())
	}
}

// IsApplyError reports whether err came from a failed apply step.
func IsApplyError(err error) bool {
	var ae *reconcile.ApplyError
	return errors.As(err, &ae)
}
