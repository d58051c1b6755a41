package session

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Plan enumerates the subscription tiers known to the service.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanStarter Plan = "starter"
	PlanPro     Plan = "pro"
	PlanAgency  Plan = "agency"
)

// User is the profile record returned by the auth service.
type User struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Credits int    `json:"credits"`
	Plan    Plan   `json:"plan"`
}

// Session is an immutable snapshot of authentication state.
type Session struct {
	User         *User
	AccessToken  string
	RefreshToken string
}

// IsAuthenticated reports whether a user profile is present. It is derived,
// never stored: a session with tokens but no profile is not authenticated.
func (s Session) IsAuthenticated() bool {
	return s.User != nil
}

// Store is the single authoritative holder of session state. All reads and
// writes go through its mutex; persistence happens before the in-memory state
// changes so observers never see memory ahead of disk.
type Store struct {
	persist StateStore

	mu       sync.RWMutex
	state    Session
	clientID string
	subs     []func(Session)
}

// NewStore hydrates a store from durable state. A missing or malformed state
// file yields a logged-out store. The persistent client identifier is minted
// on first use and kept for the lifetime of the installation.
func NewStore(persist StateStore) (*Store, error) {
	state, err := persist.Load()
	if err != nil {
		return nil, err
	}

	s := &Store{persist: persist}
	s.state = Session{
		AccessToken:  state.AccessToken,
		RefreshToken: state.RefreshToken,
	}
	if state.Profile != nil && state.Profile.User != nil {
		user := *state.Profile.User
		s.state.User = &user
	}

	s.clientID = strings.TrimSpace(state.ClientID)
	if s.clientID == "" {
		s.clientID = uuid.NewString()
		if err := persist.Save(s.durableState()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// AccessToken returns the current access token, or "" when absent.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// RefreshToken returns the current refresh token, or "" when absent.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.RefreshToken
}

// ClientID returns the persistent client identifier for this installation.
func (s *Store) ClientID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientID
}

// Subscribe registers a callback invoked synchronously after every mutation
// with a snapshot of the new state.
func (s *Store) Subscribe(fn func(Session)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// SetUser replaces the profile and marks the session authenticated.
func (s *Store) SetUser(user User) error {
	s.mu.Lock()

	next := s.durableState()
	profile := user
	next.Profile = &Snapshot{User: &profile, Authenticated: true}
	if err := s.persist.Save(next); err != nil {
		s.mu.Unlock()
		return err
	}

	inMemory := user
	s.state.User = &inMemory
	s.finishMutation()
	return nil
}

// SetTokens stores both tokens, durable state first so readers of the
// in-memory store always see values that have already been persisted.
func (s *Store) SetTokens(access, refresh string) error {
	s.mu.Lock()

	next := s.durableState()
	next.AccessToken = access
	next.RefreshToken = refresh
	if err := s.persist.Save(next); err != nil {
		s.mu.Unlock()
		return err
	}

	s.state.AccessToken = access
	s.state.RefreshToken = refresh
	s.finishMutation()
	return nil
}

// Logout clears tokens and profile, durable copies first. It is idempotent and
// is the only path that transitions the store from authenticated to anonymous.
// The client identifier survives logout.
func (s *Store) Logout() error {
	s.mu.Lock()

	next := State{ClientID: s.clientID}
	if err := s.persist.Save(next); err != nil {
		s.mu.Unlock()
		return err
	}

	s.state = Session{}
	s.finishMutation()
	return nil
}

// finishMutation snapshots state and subscribers, releases the lock, and
// notifies. Callbacks run outside the lock so they may read the store freely.
func (s *Store) finishMutation() {
	snapshot := s.copyLocked()
	subs := append([]func(Session){}, s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func (s *Store) copyLocked() Session {
	out := Session{
		AccessToken:  s.state.AccessToken,
		RefreshToken: s.state.RefreshToken,
	}
	if s.state.User != nil {
		user := *s.state.User
		out.User = &user
	}
	return out
}

func (s *Store) durableState() State {
	state := State{
		ClientID:     s.clientID,
		AccessToken:  s.state.AccessToken,
		RefreshToken: s.state.RefreshToken,
	}
	if s.state.User != nil {
		user := *s.state.User
		state.Profile = &Snapshot{User: &user, Authenticated: true}
	}
	return state
}
