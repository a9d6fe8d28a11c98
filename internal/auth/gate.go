package auth

import (
	"context"
	"sync"
)

// Gate holds the current identity for the presentation layer. It owns a
// single subscription to the identity service and answers "who is signed
// in" without blocking.
type Gate struct {
	svc IdentityService

	mu             sync.Mutex
	user           *User
	authenticating bool
	events         uint64
	unsubscribe    func()
	watchers       map[int]func(*User)
	nextWatch      int
}

// NewGate creates a Gate that reports IsAuthenticating until Start resolves
// the initial session.
func NewGate(svc IdentityService) *Gate {
	return &Gate{
		svc:            svc,
		authenticating: true,
		watchers:       make(map[int]func(*User)),
	}
}

// Start subscribes to identity events and takes the initial snapshot.
// Calling Start again replaces the previous subscription and reports
// IsAuthenticating until the new snapshot arrives. An event delivered while
// the snapshot is in flight wins over the snapshot. A snapshot error leaves
// the gate signed out and is returned wrapped in *Error.
func (g *Gate) Start(ctx context.Context) error {
	g.mu.Lock()
	prev := g.unsubscribe
	g.unsubscribe = nil
	g.authenticating = true
	seen := g.events
	g.mu.Unlock()
	if prev != nil {
		prev()
	}

	unsub := g.svc.Subscribe(func(_ Event, sess *Session) {
		g.apply(sess)
	})
	g.mu.Lock()
	g.unsubscribe = unsub
	g.mu.Unlock()

	sess, err := g.svc.CurrentSession(ctx)
	if err != nil {
		sess = nil
	}
	g.applySnapshot(sess, seen)
	if err != nil {
		return &Error{Op: "session", Err: err}
	}
	return nil
}

// apply records an identity event and notifies watchers.
func (g *Gate) apply(sess *Session) {
	g.mu.Lock()
	g.events++
	g.setLocked(sess)
	u, fns := g.user, g.watchersLocked()
	g.mu.Unlock()

	notify(fns, u)
}

// applySnapshot installs a CurrentSession result unless an event arrived
// after seen was taken.
func (g *Gate) applySnapshot(sess *Session, seen uint64) {
	g.mu.Lock()
	if g.events != seen {
		g.authenticating = false
		g.mu.Unlock()
		return
	}
	g.setLocked(sess)
	u, fns := g.user, g.watchersLocked()
	g.mu.Unlock()

	notify(fns, u)
}

func (g *Gate) setLocked(sess *Session) {
	g.user = nil
	if sess != nil {
		g.user = sess.User
	}
	g.authenticating = false
}

func notify(fns []func(*User), u *User) {
	for _, fn := range fns {
		fn(u)
	}
}

func (g *Gate) watchersLocked() []func(*User) {
	fns := make([]func(*User), 0, len(g.watchers))
	for _, fn := range g.watchers {
		fns = append(fns, fn)
	}
	return fns
}

// CurrentUser returns the signed-in user, or nil.
func (g *Gate) CurrentUser() *User {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.user
}

// IsAuthenticating reports whether the initial session check is pending.
func (g *Gate) IsAuthenticating() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authenticating
}

// Require returns the signed-in user or ErrNotAuthenticated.
func (g *Gate) Require() (*User, error) {
	if u := g.CurrentUser(); u != nil {
		return u, nil
	}
	return nil, ErrNotAuthenticated
}

// SignUp creates an account through the identity service.
func (g *Gate) SignUp(ctx context.Context, email, password string) (*User, error) {
	u, err := g.svc.SignUp(ctx, email, password)
	if err != nil {
		return nil, &Error{Op: "sign_up", Err: err}
	}
	return u, nil
}

// SignIn signs in through the identity service. The identity itself is
// updated by the service's event.
func (g *Gate) SignIn(ctx context.Context, email, password string) (*Session, error) {
	sess, err := g.svc.SignIn(ctx, email, password)
	if err != nil {
		return nil, &Error{Op: "sign_in", Err: err}
	}
	return sess, nil
}

// SignOut signs out through the identity service and clears the local
// identity on success. On failure the identity is left as it was.
func (g *Gate) SignOut(ctx context.Context) error {
	if err := g.svc.SignOut(ctx); err != nil {
		return &Error{Op: "sign_out", Err: err}
	}

	g.mu.Lock()
	g.events++
	if g.user == nil {
		g.mu.Unlock()
		return nil
	}
	g.user = nil
	fns := g.watchersLocked()
	g.mu.Unlock()

	notify(fns, nil)
	return nil
}

// Watch registers fn to be called with the new identity after every change.
func (g *Gate) Watch(fn func(*User)) func() {
	g.mu.Lock()
	id := g.nextWatch
	g.nextWatch++
	g.watchers[id] = fn
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.watchers, id)
		g.mu.Unlock()
	}
}

// Close tears down the service subscription and drops watchers.
func (g *Gate) Close() {
	g.mu.Lock()
	unsub := g.unsubscribe
	g.unsubscribe = nil
	g.watchers = make(map[int]func(*User))
	g.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}
