// Package session holds the branch code detected for a user's conversion
// session. The code is assigned once and stays fixed until Reset.
package session

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/accurate-xml-converter/internal/branchcode"
)

var (
	// ErrBranchCodeMissing means the sample XML had no BranchCode, or no
	// code has been detected for the session yet.
	ErrBranchCodeMissing = errors.New("BranchCode not found in XML")

	// ErrBranchCodeAlreadySet is returned when a session already holds a
	// different branch code.
	ErrBranchCodeAlreadySet = errors.New("branch code already set for this session")

	// ErrNotFound is returned by Store lookups for unknown ids.
	ErrNotFound = errors.New("session not found")
)

// Session caches the branch code for one user.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.RWMutex
	branchCode string
}

// New returns an empty session with a random id.
func New() *Session {
	return &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
	}
}

// BranchCode returns the cached code and whether one is set.
func (s *Session) BranchCode() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.branchCode, s.branchCode != ""
}

// SetBranchCode stores code. Setting the value already held is a no-op;
// a different value fails with ErrBranchCodeAlreadySet.
func (s *Session) SetBranchCode(code string) error {
	if code == "" {
		return ErrBranchCodeMissing
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.branchCode {
	case "":
		s.branchCode = code
		return nil
	case code:
		return nil
	default:
		return fmt.Errorf("%w: have %q, got %q", ErrBranchCodeAlreadySet, s.branchCode, code)
	}
}

// DetectBranchCode extracts the code from a sample XML document and stores
// it in the session.
func (s *Session) DetectBranchCode(r io.Reader) (string, error) {
	code, err := branchcode.Extract(r)
	if err != nil {
		return "", err
	}
	if code == "" {
		return "", ErrBranchCodeMissing
	}
	if err := s.SetBranchCode(code); err != nil {
		return "", err
	}
	return code, nil
}

// Reset clears the branch code so a new sample can be detected.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.branchCode = ""
}

// DefaultIdleTimeout is the idle time after which a Store drops a session.
const DefaultIdleTimeout = 12 * time.Hour

// Store keeps the sessions served by the HTTP API. A session unused for
// longer than the idle timeout is dropped; expired sessions are swept on
// every Create.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	lastUsed    map[string]time.Time
	idleTimeout time.Duration
	now         func() time.Time
}

// NewStore returns an empty store. A non-positive idleTimeout means
// DefaultIdleTimeout.
func NewStore(idleTimeout time.Duration) *Store {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Store{
		sessions:    make(map[string]*Session),
		lastUsed:    make(map[string]time.Time),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// Create sweeps expired sessions, then registers and returns a new one.
func (st *Store) Create() *Session {
	s := New()

	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	st.sweepLocked(now)
	s.CreatedAt = now
	st.sessions[s.ID] = s
	st.lastUsed[s.ID] = now
	return s
}

// Get returns the session with id and marks it used.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	now := st.now()
	if st.expired(id, now) {
		st.removeLocked(id)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	st.lastUsed[id] = now
	return s, nil
}

// Delete resets and removes the session with id.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	s, ok := st.sessions[id]
	st.removeLocked(id)
	st.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.Reset()
	return nil
}

// Len returns the number of stored sessions, expired ones included until
// the next sweep.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) expired(id string, now time.Time) bool {
	return now.Sub(st.lastUsed[id]) > st.idleTimeout
}

func (st *Store) sweepLocked(now time.Time) {
	for id, s := range st.sessions {
		if st.expired(id, now) {
			st.removeLocked(id)
			s.Reset()
		}
	}
}

func (st *Store) removeLocked(id string) {
	delete(st.sessions, id)
	delete(st.lastUsed, id)
}
