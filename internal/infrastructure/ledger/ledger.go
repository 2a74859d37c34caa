// Package ledger implements the append-only session record over a StateStore
// that holds the full {pages, sessions} document.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kirillkom/legal-intake/internal/core/domain"
	"github.com/kirillkom/legal-intake/internal/core/ports"
)

// Ledger serializes every read-modify-persist cycle behind one mutex; callers
// may use it from concurrent requests.
type Ledger struct {
	store ports.StateStore

	mu     sync.Mutex
	state  domain.LedgerState
	loaded bool
}

func New(store ports.StateStore) *Ledger {
	return &Ledger{store: store}
}

// Load reads the durable state. A store that was never written is
// initialized with an empty state carrying seed as its pages; a malformed
// document is served as empty and left in place. Any other read failure is
// returned and nothing is written.
func (l *Ledger) Load(ctx context.Context, seed []domain.Template) (domain.LedgerState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.loadLocked(ctx, seed)
	return cloneState(l.state), err
}

func (l *Ledger) loadLocked(ctx context.Context, seed []domain.Template) error {
	state, readErr := l.read(ctx)
	persist := false
	switch {
	case readErr == nil:
	case domain.IsKind(readErr, domain.ErrStateNotFound):
		slog.Info("ledger_initialized", "reason", readErr.Error())
		state = domain.LedgerState{}
		persist = true
	case domain.IsKind(readErr, domain.ErrStoreUnavailable):
		return fmt.Errorf("load ledger: %w", readErr)
	default:
		// Malformed content is left on disk until the next append rewrites it.
		slog.Warn("ledger_state_malformed", "error", readErr)
		state = domain.LedgerState{}
	}

	if len(state.Pages) == 0 && len(seed) > 0 {
		state.Pages = cloneTemplates(seed)
		if readErr == nil {
			persist = true
		}
	}
	if state.Sessions == nil {
		state.Sessions = []domain.Session{}
	}
	if state.Pages == nil {
		state.Pages = []domain.Template{}
	}

	l.state = state
	l.loaded = true

	if persist {
		if err := l.persistLocked(ctx); err != nil {
			return fmt.Errorf("initialize ledger: %w", err)
		}
	}
	return nil
}

// ensureLoadedLocked loads the state on first use. Writes are refused until a
// load succeeds so an unreadable store is never overwritten.
func (l *Ledger) ensureLoadedLocked(ctx context.Context) error {
	if l.loaded {
		return nil
	}
	return l.loadLocked(ctx, nil)
}

// Append records one session and persists the full document before
// returning. On a failed write the in-memory state is left untouched.
func (l *Ledger) Append(ctx context.Context, session domain.Session) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensureLoadedLocked(ctx); err != nil {
		return fmt.Errorf("append session: %w", err)
	}

	prev := l.state.Sessions
	l.state.Sessions = append(prev[:len(prev):len(prev)], cloneSession(session))
	if err := l.persistLocked(ctx); err != nil {
		l.state.Sessions = prev
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// List reads the sessions back from durable storage in creation order.
func (l *Ledger) List(ctx context.Context) ([]domain.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, err := l.read(ctx)
	if err != nil {
		if domain.IsKind(err, domain.ErrStoreUnavailable) {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		return nil, domain.WrapError(domain.ErrStoreUnavailable, "list sessions", err)
	}
	if state.Sessions == nil {
		return []domain.Session{}, nil
	}
	return state.Sessions, nil
}

// Pages returns the catalog copy carried by the ledger document.
func (l *Ledger) Pages() []domain.Template {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneTemplates(l.state.Pages)
}

// SyncPages replaces the persisted catalog copy, e.g. after the external
// catalog file changed.
func (l *Ledger) SyncPages(ctx context.Context, pages []domain.Template) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensureLoadedLocked(ctx); err != nil {
		return fmt.Errorf("sync pages: %w", err)
	}

	prev := l.state.Pages
	l.state.Pages = cloneTemplates(pages)
	if err := l.persistLocked(ctx); err != nil {
		l.state.Pages = prev
		return fmt.Errorf("persist pages: %w", err)
	}
	return nil
}

func (l *Ledger) read(ctx context.Context) (domain.LedgerState, error) {
	raw, err := l.store.Read(ctx)
	if err != nil {
		return domain.LedgerState{}, err
	}
	var state domain.LedgerState
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.LedgerState{}, fmt.Errorf("decode ledger state: %w", err)
	}
	return state, nil
}

func (l *Ledger) persistLocked(ctx context.Context) error {
	data, err := Encode(l.state)
	if err != nil {
		return err
	}
	if err := l.store.Write(ctx, data); err != nil {
		return fmt.Errorf("write ledger state: %w", err)
	}
	return nil
}

// Encode renders the ledger document pretty-printed with non-ASCII text and
// markup kept verbatim.
func Encode(state domain.LedgerState) ([]byte, error) {
	if state.Pages == nil {
		state.Pages = []domain.Template{}
	}
	sessions := make([]domain.Session, len(state.Sessions))
	for i, s := range state.Sessions {
		sessions[i] = normalizeSession(s)
	}
	state.Sessions = sessions

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(state); err != nil {
		return nil, fmt.Errorf("encode ledger state: %w", err)
	}
	return buf.Bytes(), nil
}

func normalizeSession(s domain.Session) domain.Session {
	if s.Tags == nil {
		s.Tags = []string{}
	}
	if s.MatchedTemplateIDs == nil {
		s.MatchedTemplateIDs = []string{}
	}
	return s
}

func cloneSession(s domain.Session) domain.Session {
	s.Tags = append([]string(nil), s.Tags...)
	s.MatchedTemplateIDs = append([]string(nil), s.MatchedTemplateIDs...)
	if s.File != nil {
		file := *s.File
		s.File = &file
	}
	if s.Extracted != nil {
		extracted := *s.Extracted
		s.Extracted = &extracted
	}
	return normalizeSession(s)
}

func cloneTemplates(in []domain.Template) []domain.Template {
	out := make([]domain.Template, len(in))
	for i, tpl := range in {
		tpl.Tags = append([]string{}, tpl.Tags...)
		out[i] = tpl
	}
	return out
}

func cloneState(state domain.LedgerState) domain.LedgerState {
	sessions := make([]domain.Session, len(state.Sessions))
	for i, s := range state.Sessions {
		sessions[i] = cloneSession(s)
	}
	return domain.LedgerState{
		Pages:    cloneTemplates(state.Pages),
		Sessions: sessions,
	}
}
