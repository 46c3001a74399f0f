// Package session gates the admin console behind sign-in. The guard's
// state follows the identity pushes of the auth provider and nothing else.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_shop/internal/auth"
	"github.com/GTDGit/gtd_shop/internal/view"
)

// ErrMissingCredentials is returned when email or password is blank.
var ErrMissingCredentials = errors.New("email and password are required")

// CheckCredentials rejects a sign-in attempt with a blank email or password
// before it reaches the provider.
func CheckCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return ErrMissingCredentials
	}
	return nil
}

// State is the guard state.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// MarshalText renders the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Status is what the admin surface shows for the guard.
type Status struct {
	State    State          `json:"state"`
	Page     string         `json:"page"`
	Identity *auth.Identity `json:"identity,omitempty"`
}

// Guard shows the login page until the provider reports a signed-in
// operator, then the dashboard. Sign-in and sign-out happen against the
// provider; the guard only follows its pushes. OnAuthenticated runs on each
// transition into the dashboard.
type Guard struct {
	provider        auth.Provider
	pages           *view.PageGroup
	onAuthenticated func(ctx context.Context, id *auth.Identity)
	onChange        func(Status)

	mu       sync.Mutex
	ctx      context.Context
	state    State
	identity *auth.Identity
	token    string
	stop     func()
}

// Option configures a Guard.
type Option func(*Guard)

// OnAuthenticated sets the dashboard load hook.
func OnAuthenticated(fn func(ctx context.Context, id *auth.Identity)) Option {
	return func(g *Guard) { g.onAuthenticated = fn }
}

// OnChange sets a callback run after every state change.
func OnChange(fn func(Status)) Option {
	return func(g *Guard) { g.onChange = fn }
}

// NewGuard creates a guard on the login page. It lives until ctx is done.
func NewGuard(ctx context.Context, provider auth.Provider, opts ...Option) *Guard {
	g := &Guard{
		provider: provider,
		pages:    view.NewAdminPages(),
		ctx:      ctx,
	}
	for _, opt := range opts {
		opt(g)
	}
	_ = g.pages.Show(view.PageLogin)
	return g
}

// Resume watches an existing session token, as after a page reload.
func (g *Guard) Resume(token string) error {
	return g.watch(token)
}

// Status returns the current state.
func (g *Guard) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.statusLocked()
}

// Token returns the watched session token.
func (g *Guard) Token() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.token
}

// Close stops watching.
func (g *Guard) Close() {
	g.mu.Lock()
	stop := g.stop
	g.stop = nil
	g.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (g *Guard) statusLocked() Status {
	return Status{State: g.state, Page: g.pages.Active(), Identity: g.identity}
}

func (g *Guard) watch(token string) error {
	g.Close()

	g.mu.Lock()
	g.token = token
	g.mu.Unlock()

	stop, err := g.provider.Watch(g.ctx, token, func(id *auth.Identity) {
		g.apply(token, id)
	})
	if err != nil {
		return err
	}

	g.mu.Lock()
	g.stop = stop
	g.mu.Unlock()
	return nil
}

// apply moves the guard to match an identity push for token.
func (g *Guard) apply(token string, id *auth.Identity) {
	g.mu.Lock()
	if token != g.token {
		g.mu.Unlock()
		return
	}
	entered := false
	if id != nil {
		entered = g.state != Authenticated
		g.state = Authenticated
		g.identity = id
		_ = g.pages.Show(view.PageDashboard)
	} else {
		g.state = Unauthenticated
		g.identity = nil
		_ = g.pages.Show(view.PageLogin)
	}
	st := g.statusLocked()
	g.mu.Unlock()

	log.Debug().Str("state", st.State.String()).Str("page", st.Page).Msg("Admin guard state applied")
	if g.onChange != nil {
		g.onChange(st)
	}
	if entered && g.onAuthenticated != nil {
		g.onAuthenticated(g.ctx, id)
	}
}
