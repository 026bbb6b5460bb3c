// Package identity holds the client-side session: who is signed in, the
// tokens they hold, and the observers that re-render when that changes.
package identity

import (
	"context"
	"errors"
	"sync"
	"time"
)

type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Grant is what a provider returns for a successful sign-in or sign-up.
type Grant struct {
	User         User
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Authenticator is the identity provider as seen by the client.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (Grant, error)
	SignUp(ctx context.Context, email, password string) (Grant, error)
	SignOut(ctx context.Context, accessToken, refreshToken string) error
	ResetPassword(ctx context.Context, email string) error
}

// ErrStale is returned when a provider reply arrived after the session had
// moved on (sign-out, reset or a newer sign-in). The reply is discarded.
var ErrStale = errors.New("identity: stale provider response discarded")

// Snapshot is an immutable view of a Session.
type Snapshot struct {
	State State
	User  *User
	// Err is the last provider rejection, cleared on the next attempt.
	Err string
}

// Session is the single source of truth for the signed-in identity. All
// methods are safe for concurrent use. Observers run synchronously, in
// subscription order, on the goroutine that caused the change.
type Session struct {
	mu        sync.Mutex
	state     State
	user      *User
	grant     Grant
	lastErr   string
	gen       uint64
	observers []observer
	nextID    int
}

type observer struct {
	id int
	fn func(Snapshot)
}

func NewSession() *Session {
	return &Session{}
}

// Subscribe registers fn and returns a func that removes it. fn is not
// called for the current state.
func (s *Session) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers = append(s.observers, observer{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, o := range s.observers {
				if o.id == id {
					s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AccessToken returns the bearer token, or "" unless authenticated.
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Authenticated {
		return ""
	}
	return s.grant.AccessToken
}

// Grant returns the held tokens and whether the session is authenticated.
func (s *Session) Grant() (Grant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grant, s.state == Authenticated
}

func (s *Session) SignIn(ctx context.Context, a Authenticator, email, password string) error {
	return s.authenticate(ctx, func(ctx context.Context) (Grant, error) {
		return a.SignIn(ctx, email, password)
	})
}

func (s *Session) SignUp(ctx context.Context, a Authenticator, email, password string) error {
	return s.authenticate(ctx, func(ctx context.Context) (Grant, error) {
		return a.SignUp(ctx, email, password)
	})
}

func (s *Session) authenticate(ctx context.Context, call func(context.Context) (Grant, error)) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.state = Authenticating
	s.user = nil
	s.grant = Grant{}
	s.lastErr = ""
	s.notifyLocked()

	g, err := call(ctx)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return ErrStale
	}
	if err != nil {
		s.state = Anonymous
		s.lastErr = err.Error()
		s.notifyLocked()
		return err
	}
	u := g.User
	s.state = Authenticated
	s.user = &u
	s.grant = g
	s.notifyLocked()
	return nil
}

// SignOut drops to anonymous immediately, then tells the provider. The
// provider error, if any, is returned but does not change the outcome.
func (s *Session) SignOut(ctx context.Context, a Authenticator) error {
	s.mu.Lock()
	g, wasAuthenticated := s.grant, s.state == Authenticated
	s.resetLocked()
	s.notifyLocked()

	if !wasAuthenticated || a == nil {
		return nil
	}
	return a.SignOut(ctx, g.AccessToken, g.RefreshToken)
}

// Reset drops to anonymous without contacting the provider, for example
// after the server rejected the stored tokens.
func (s *Session) Reset() {
	s.mu.Lock()
	s.resetLocked()
	s.notifyLocked()
}

// Restore installs a previously persisted grant.
func (s *Session) Restore(g Grant) {
	s.mu.Lock()
	s.gen++
	u := g.User
	s.state = Authenticated
	s.user = &u
	s.grant = g
	s.lastErr = ""
	s.notifyLocked()
}

// ResetPassword asks the provider to mail a recovery link. The session state
// is not touched.
func (s *Session) ResetPassword(ctx context.Context, a Authenticator, email string) error {
	return a.ResetPassword(ctx, email)
}

func (s *Session) resetLocked() {
	s.gen++
	s.state = Anonymous
	s.user = nil
	s.grant = Grant{}
	s.lastErr = ""
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{State: s.state, Err: s.lastErr}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// notifyLocked must be called with mu held; it releases mu before calling
// observers so they may read the session.
func (s *Session) notifyLocked() {
	snap := s.snapshotLocked()
	obs := make([]observer, len(s.observers))
	copy(obs, s.observers)
	s.mu.Unlock()

	for _, o := range obs {
		o.fn(snap)
	}
}
