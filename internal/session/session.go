package session

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNoToken is returned when no session token is stored in any scope.
	ErrNoToken = errors.New("not authenticated")
	// ErrTokenExpired is returned when the stored token is past its expiry.
	ErrTokenExpired = errors.New("session token expired")
)

// Scope selects where a token is kept.
type Scope int

const (
	// ScopeSession keeps the token in memory only; it dies with the process.
	ScopeSession Scope = iota
	// ScopePersistent keeps the token on disk, sealed at rest ("remember me").
	ScopePersistent
)

// Store holds at most one session token.
type Store interface {
	Save(token string) error
	Token() (string, error)
	Clear() error
}

// Holder resolves the active session token across both scopes.
// Feature code reads through it; only login/logout write.
type Holder struct {
	persistent Store
	session    Store
}

// NewHolder builds a holder over the given stores. Either store may be nil.
func NewHolder(persistent, session Store) *Holder {
	if session == nil {
		session = NewMemoryStore()
	}
	return &Holder{persistent: persistent, session: session}
}

// Save stores the token in the requested scope and clears the other,
// so exactly one scope holds a token after login.
func (h *Holder) Save(token string, scope Scope) error {
	if token == "" {
		return errors.New("empty token")
	}
	switch scope {
	case ScopePersistent:
		if h.persistent == nil {
			return errors.New("persistent store unavailable")
		}
		if err := h.persistent.Save(token); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
		return h.session.Clear()
	case ScopeSession:
		if err := h.session.Save(token); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
		if h.persistent != nil {
			return h.persistent.Clear()
		}
		return nil
	default:
		return fmt.Errorf("unknown scope %d", scope)
	}
}

// Token returns the active token, persistent scope first.
func (h *Holder) Token() (string, error) {
	if h.persistent != nil {
		if tok, err := h.persistent.Token(); err != nil {
			return "", fmt.Errorf("read persistent token: %w", err)
		} else if tok != "" {
			return tok, nil
		}
	}
	tok, err := h.session.Token()
	if err != nil {
		return "", fmt.Errorf("read session token: %w", err)
	}
	if tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

// Clear removes the token from every scope (logout).
func (h *Holder) Clear() error {
	var firstErr error
	if h.persistent != nil {
		if err := h.persistent.Clear(); err != nil {
			firstErr = err
		}
	}
	if err := h.session.Clear(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// MemoryStore is the session-scoped store.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore creates an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
