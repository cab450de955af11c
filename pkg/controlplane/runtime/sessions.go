package runtime

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/smbmanager/pkg/controlplane/models"
	"github.com/marmos91/smbmanager/pkg/reconcile"
	"github.com/marmos91/smbmanager/pkg/smbconf"
	"github.com/marmos91/smbmanager/pkg/smbconf/binding"
)

// Session is an open edit of one section.
type Session struct {
	ID        string                   `json:"id"`
	Section   string                   `json:"section"`
	Scope     binding.Scope            `json:"scope"`
	Policy    reconcile.AdvancedPolicy `json:"policy"`
	Actor     string                   `json:"actor,omitempty"`
	Form      reconcile.Form           `json:"form"`
	Baseline  map[string]string        `json:"baseline"`
	CreatedAt time.Time                `json:"created_at"`
	ExpiresAt time.Time                `json:"expires_at"`

	edit *reconcile.PendingEdit
}

// view returns a copy safe to hand to callers.
func (s *Session) view() *Session {
	return &Session{
		ID:        s.ID,
		Section:   s.Section,
		Scope:     s.Scope,
		Policy:    s.Policy,
		Actor:     s.Actor,
		Form:      s.edit.Form(),
		Baseline:  s.edit.Baseline(),
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}

// sessionKey identifies the section a session edits. Samba treats share
// names case-insensitively, so at most one session exists per folded name.
func sessionKey(section string) string {
	if smbconf.IsGlobal(section) {
		return smbconf.GlobalSection
	}
	return strings.ToLower(section)
}

// sessionTable holds open sessions by id, with at most one per section.
type sessionTable struct {
	mu        sync.Mutex
	byID      map[string]*Session
	bySection map[string]string
	now       func() time.Time
}

func newSessionTable(now func() time.Time) *sessionTable {
	return &sessionTable{
		byID:      make(map[string]*Session),
		bySection: make(map[string]string),
		now:       now,
	}
}

// open registers a new session, replacing any open session on the same
// section. It returns the id of the replaced session, if any.
func (t *sessionTable) open(edit *reconcile.PendingEdit, actor string, ttl time.Duration) (*Session, string) {
	now := t.now()
	s := &Session{
		ID:        uuid.New().String(),
		Section:   edit.Section(),
		Scope:     edit.Scope(),
		Policy:    edit.Policy(),
		Actor:     actor,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		edit:      edit,
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key := sessionKey(s.Section)
	replaced := t.bySection[key]
	if replaced != "" {
		delete(t.byID, replaced)
	}
	t.byID[s.ID] = s
	t.bySection[key] = s.ID
	return s, replaced
}

// get returns a live session. Expired sessions are removed and reported as
// models.ErrSessionExpired.
func (t *sessionTable) get(id string) (*Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lookupLocked(id)
}

// view returns a caller-safe copy of a live session.
func (t *sessionTable) view(id string) (*Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.lookupLocked(id)
	if err != nil {
		return nil, err
	}
	return s.view(), nil
}

// take removes and returns a live session.
func (t *sessionTable) take(id string) (*Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.lookupLocked(id)
	if err != nil {
		return nil, err
	}
	t.removeLocked(s)
	return s, nil
}

func (t *sessionTable) lookupLocked(id string) (*Session, error) {
	s, ok := t.byID[id]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	if !t.now().Before(s.ExpiresAt) {
		t.removeLocked(s)
		return nil, models.ErrSessionExpired
	}
	return s, nil
}

// dropSection removes any session editing section.
func (t *sessionTable) dropSection(section string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.bySection[sessionKey(section)]
	if !ok {
		return false
	}
	t.removeLocked(t.byID[id])
	return true
}

// expire removes every session whose deadline has passed.
func (t *sessionTable) expire() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	n := 0
	for _, s := range t.byID {
		if !now.Before(s.ExpiresAt) {
			t.removeLocked(s)
			n++
		}
	}
	return n
}

func (t *sessionTable) clear() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(t.byID)
	t.byID = make(map[string]*Session)
	t.bySection = make(map[string]string)
	return n
}

func (t *sessionTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byID)
}

func (t *sessionTable) removeLocked(s *Session) {
	if s == nil {
		return
	}
	delete(t.byID, s.ID)
	key := sessionKey(s.Section)
	if t.bySection[key] == s.ID {
		delete(t.bySection, key)
	}
}
