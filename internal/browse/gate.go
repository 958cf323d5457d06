package browse

import (
	"context"
	"errors"
	"sync"
)

// ErrChallengeRequired is returned by Run when the session has not presented
// a valid secret yet; the action is deferred until Authenticate succeeds.
var ErrChallengeRequired = errors.New("password challenge required")

// Verifier checks a candidate secret. *Client implements it.
type Verifier interface {
	VerifyPassword(ctx context.Context, password string) error
}

// TokenStore persists the verified secret for the session lifetime, the
// equivalent of session-scoped browser storage. May be left nil.
type TokenStore interface {
	Save(secret string)
	Load() (string, bool)
	Clear()
}

// Action is a mutation executed with the session secret once the gate is
// open.
type Action func(ctx context.Context, secret string) error

// Gate remembers whether the session presented a valid secret and defers
// mutation actions behind the password challenge until it has.
type Gate struct {
	verifier Verifier
	store    TokenStore

	mu      sync.Mutex
	secret  string
	authed  bool
	pending Action
}

// NewGate creates a gate. The token store is optional.
func NewGate(verifier Verifier, store TokenStore) *Gate {
	return &Gate{verifier: verifier, store: store}
}

// Resume re-verifies a secret persisted by an earlier challenge, as after a
// page reload. A stale secret is dropped from the store.
func (g *Gate) Resume(ctx context.Context) bool {
	if g.store == nil {
		return false
	}
	secret, ok := g.store.Load()
	if !ok {
		return false
	}
	if err := g.verifier.VerifyPassword(ctx, secret); err != nil {
		g.store.Clear()
		return false
	}
	g.mu.Lock()
	g.secret = secret
	g.authed = true
	g.mu.Unlock()
	return true
}

// IsAuthenticated reports whether the session holds a verified secret.
func (g *Gate) IsAuthenticated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authed
}

// Run executes the action immediately when authenticated. Otherwise the
// action is captured and ErrChallengeRequired tells the caller to prompt;
// the captured action runs as part of the next successful Authenticate.
func (g *Gate) Run(ctx context.Context, action Action) error {
	g.mu.Lock()
	if !g.authed {
		g.pending = action
		g.mu.Unlock()
		return ErrChallengeRequired
	}
	secret := g.secret
	g.mu.Unlock()
	return action(ctx, secret)
}

// Authenticate verifies the candidate secret and, on success, stores it for
// the session and executes the deferred action, if any. On failure the
// deferred action stays captured for a retry.
func (g *Gate) Authenticate(ctx context.Context, candidate string) error {
	if err := g.verifier.VerifyPassword(ctx, candidate); err != nil {
		return err
	}

	g.mu.Lock()
	g.secret = candidate
	g.authed = true
	action := g.pending
	g.pending = nil
	g.mu.Unlock()

	if g.store != nil {
		g.store.Save(candidate)
	}
	if action != nil {
		return action(ctx, candidate)
	}
	return nil
}

// HasPending reports whether a deferred action is waiting on the challenge.
func (g *Gate) HasPending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending != nil
}

// Clear ends the authenticated session and drops any deferred action.
func (g *Gate) Clear() {
	g.mu.Lock()
	g.secret = ""
	g.authed = false
	g.pending = nil
	g.mu.Unlock()
	if g.store != nil {
		g.store.Clear()
	}
}
