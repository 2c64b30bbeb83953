// Package identity holds the process-wide view of who is signed in. One
// Provider is built at startup and handed to everything that needs it.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
)

type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseAuthenticated
	PhaseAnonymous
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseAnonymous:
		return "anonymous"
	default:
		return "uninitialized"
	}
}

// State is a snapshot of the current identity. User is nil unless Phase is
// PhaseAuthenticated.
type State struct {
	Phase Phase
	User  *domain.User
	Token string
}

// Loading reports whether the stored session is still being restored.
func (s State) Loading() bool {
	return s.Phase == PhaseUninitialized || s.Phase == PhaseLoading
}

// Authenticated reports whether a user is signed in.
func (s State) Authenticated() bool {
	return s.Phase == PhaseAuthenticated && s.User != nil
}

type Provider struct {
	verifier ports.CredentialVerifier
	sessions ports.SessionStore
	log      zerolog.Logger

	mu       sync.RWMutex
	state    State
	watchers map[int]chan State
	nextID   int
}

func NewProvider(verifier ports.CredentialVerifier, sessions ports.SessionStore, log zerolog.Logger) *Provider {
	return &Provider{
		verifier: verifier,
		sessions: sessions,
		log:      log,
		watchers: make(map[int]chan State),
	}
}

// Init restores the stored session. The stored user is never trusted as is:
// a token is checked with the verifier, and a tokenless session is re-read
// through a ports.SessionRefresher. Verifiers that issue tokens reject
// tokenless sessions. A rejected session is cleared. Only a failure to read
// the session store is returned.
func (p *Provider) Init(ctx context.Context) error {
	p.set(State{Phase: PhaseLoading})

	stored, err := p.sessions.Load(ctx)
	if err != nil {
		p.set(State{Phase: PhaseAnonymous})
		return fmt.Errorf("restore session: %w", err)
	}
	if stored == nil {
		p.set(State{Phase: PhaseAnonymous})
		return nil
	}

	user, err := p.restore(ctx, *stored)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionInvalid) {
			p.log.Warn().Err(err).Msg("session verification failed")
		}
		if clearErr := p.sessions.Clear(ctx); clearErr != nil {
			p.log.Error().Err(clearErr).Msg("failed to clear stored session")
		}
		p.set(State{Phase: PhaseAnonymous})
		return nil
	}

	refreshed := *stored
	refreshed.User = *user
	if err := p.sessions.Save(ctx, refreshed); err != nil {
		p.log.Warn().Err(err).Msg("failed to refresh stored session")
	}
	p.set(State{Phase: PhaseAuthenticated, User: user, Token: stored.Token})
	return nil
}

func (p *Provider) restore(ctx context.Context, stored domain.Session) (*domain.User, error) {
	if stored.Token != "" {
		return p.verifier.VerifySession(ctx, stored.Token)
	}
	refresher, ok := p.verifier.(ports.SessionRefresher)
	if !ok {
		return nil, domain.ErrSessionInvalid
	}
	return refresher.RefreshSession(ctx, stored)
}

// Login verifies the credentials and, on success, persists and publishes the
// session. The state is unchanged on failure.
func (p *Provider) Login(ctx context.Context, identifier, secret string) (*domain.User, error) {
	session, err := p.verifier.Login(ctx, identifier, secret)
	if err != nil {
		return nil, err
	}
	return p.adopt(ctx, session)
}

func (p *Provider) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	session, err := p.verifier.Signup(ctx, in)
	if err != nil {
		return nil, err
	}
	return p.adopt(ctx, session)
}

// Logout forgets the session locally even when the backend call fails.
func (p *Provider) Logout(ctx context.Context) error {
	token := p.Current().Token
	if err := p.verifier.Logout(ctx, token); err != nil {
		p.log.Warn().Err(err).Msg("backend logout failed")
	}
	p.set(State{Phase: PhaseAnonymous})
	if err := p.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// CreateAdmin provisions an admin on behalf of the current user.
func (p *Provider) CreateAdmin(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	current := p.Current()
	if !current.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if !domain.Can(current.User, domain.ActionCreateAdmin) {
		return nil, domain.ErrForbidden
	}
	return p.verifier.CreateAdmin(ctx, current.User, in)
}

func (p *Provider) Current() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Watch returns a channel that receives the current state immediately and
// every later change. Slow readers only see the latest state. cancel closes
// the channel.
func (p *Provider) Watch() (<-chan State, func()) {
	ch := make(chan State, 1)

	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.watchers[id] = ch
	ch <- p.state
	p.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.watchers, id)
			close(ch)
			p.mu.Unlock()
		})
	}
	return ch, cancel
}

func (p *Provider) adopt(ctx context.Context, session *domain.Session) (*domain.User, error) {
	if err := p.sessions.Save(ctx, *session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	user := session.User
	p.set(State{Phase: PhaseAuthenticated, User: &user, Token: session.Token})
	return &user, nil
}

func (p *Provider) set(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = s
	for _, ch := range p.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}
