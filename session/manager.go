package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/model"
	"golang.org/x/sync/singleflight"
)

// State is the authentication state of one client
type State int

const (
	// StateUnknown means the persisted session has not been restored yet
	StateUnknown State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "checking"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	}
	return "invalid"
}

// Options configure the mock credential check and token minting
type Options struct {
	ClientID    string
	Password    string // the single accepted credential
	EmailDomain string
	LoginDelay  time.Duration
	Secret      []byte
	TokenTTL    time.Duration
}

// Manager owns the session of one client. The zero state is StateUnknown
// until Restore completes.
type Manager struct {
	opts    Options
	storage Storage
	log     *slog.Logger
	now     func() time.Time

	mu    sync.RWMutex
	state State
	user  *model.User
	token string

	restoreOnce sync.Once
	ready       chan struct{}

	flight   singleflight.Group
	flightMu sync.Mutex
	flights  map[string]*loginFlight
	pending  atomic.Int32
}

func NewManager(storage Storage, opts Options) *Manager {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	return &Manager{
		opts:    opts,
		storage: storage,
		log:     slog.With("client_id", opts.ClientID),
		now:     time.Now,
		ready:   make(chan struct{}),
		flights: make(map[string]*loginFlight),
	}
}

// NewUser derives the user record from a username
func NewUser(username, emailDomain string) model.User {
	name := username
	if r, size := utf8.DecodeRuneInString(username); r != utf8.RuneError {
		name = string(unicode.ToUpper(r)) + username[size:]
	}
	return model.User{
		Username: username,
		Name:     name,
		Email:    username + "@" + emailDomain,
	}
}

// Restore loads the persisted session. It runs once; later calls wait for
// the first one and return. Any missing or malformed entry leaves the
// client unauthenticated with both entries removed.
func (m *Manager) Restore(ctx context.Context) {
	m.restoreOnce.Do(func() {
		defer close(m.ready)

		// Restore runs once for every caller, so it must not die with the
		// request that happened to trigger it.
		user, token, ok := m.readPersisted(context.WithoutCancel(ctx))

		m.mu.Lock()
		defer m.mu.Unlock()
		if ok {
			m.state = StateAuthenticated
			m.user = user
			m.token = token
			m.log.Debug("session restored", "username", user.Username)
			return
		}
		m.state = StateUnauthenticated
	})
}

func (m *Manager) readPersisted(ctx context.Context) (*model.User, string, bool) {
	// A failed read says nothing about the stored entries, so they are kept
	// for the next restore after a restart.
	token, hasToken, err := m.storage.Get(ctx, TokenKey)
	if err != nil {
		m.log.Error("session storage read failed", "key", TokenKey, "error", err)
		return nil, "", false
	}
	raw, hasUser, err := m.storage.Get(ctx, UserKey)
	if err != nil {
		m.log.Error("session storage read failed", "key", UserKey, "error", err)
		return nil, "", false
	}

	if !hasToken || !hasUser || token == "" || raw == "" {
		if hasToken || hasUser {
			m.log.Debug("discarding incomplete persisted session", "has_token", hasToken, "has_user", hasUser)
			m.clearPersisted(ctx)
		}
		return nil, "", false
	}

	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.Username == "" {
		m.log.Warn("discarding corrupted persisted session", "error", err)
		m.clearPersisted(ctx)
		return nil, "", false
	}
	return &user, token, true
}

func (m *Manager) clearPersisted(ctx context.Context) {
	for _, key := range []string{TokenKey, UserKey} {
		if err := m.storage.Remove(ctx, key); err != nil {
			m.log.Error("failed to clear session storage", "key", key, "error", err)
		}
	}
}

// Ready is closed once Restore has completed
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// Login checks the credential and, on success, starts an authenticated
// session. It reports failure as false and never returns an error.
// Concurrent identical submissions share one attempt and one token.
func (m *Manager) Login(ctx context.Context, username, password string) bool {
	if username == "" || password != m.opts.Password {
		m.log.Info("login rejected", "username", username)
		return false
	}

	m.Restore(ctx)

	m.pending.Add(1)
	defer m.pending.Add(-1)

	key := username + "\x00" + password
	for {
		f := m.joinFlight(ctx, key)
		ch := m.flight.DoChan(key, func() (any, error) {
			return m.login(f.ctx, username)
		})

		select {
		case res := <-ch:
			m.leaveFlight(key, f)
			// The shared attempt was abandoned by everyone who started it
			// while this caller is still waiting, so start a new one.
			if res.Err != nil && ctx.Err() == nil {
				continue
			}
			return res.Err == nil && res.Val.(bool)
		case <-ctx.Done():
			m.leaveFlight(key, f)
			m.log.Info("login abandoned", "username", username, "error", ctx.Err())
			return false
		}
	}
}

// loginFlight is the context of one shared login attempt. It is cancelled
// once every caller waiting on the attempt has gone away.
type loginFlight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

func (m *Manager) joinFlight(ctx context.Context, key string) *loginFlight {
	m.flightMu.Lock()
	defer m.flightMu.Unlock()

	f, ok := m.flights[key]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &loginFlight{ctx: fctx, cancel: cancel}
		m.flights[key] = f
	}
	f.waiters++
	return f
}

func (m *Manager) leaveFlight(key string, f *loginFlight) {
	m.flightMu.Lock()
	defer m.flightMu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if m.flights[key] == f {
		delete(m.flights, key)
	}
}

// login returns an error only when the attempt was abandoned before the
// credential check finished
func (m *Manager) login(ctx context.Context, username string) (bool, error) {
	if d := m.opts.LoginDelay; d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer.C:
		}
	}

	// Past this point the attempt commits even if its callers leave
	ctx = context.WithoutCancel(ctx)

	user := NewUser(username, m.opts.EmailDomain)
	token, _, err := GenerateToken(username, m.opts.ClientID, m.opts.Secret, m.opts.TokenTTL, m.now())
	if err != nil {
		m.log.Error("failed to generate session token", "error", err)
		return false, nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		m.log.Error("failed to encode user record", "error", err)
		return false, nil
	}
	if err := m.storage.Set(ctx, TokenKey, token); err != nil {
		m.log.Error("failed to persist session token", "error", err)
		return false, nil
	}
	if err := m.storage.Set(ctx, UserKey, string(data)); err != nil {
		m.log.Error("failed to persist user record", "error", err)
		m.clearPersisted(ctx)
		return false, nil
	}

	m.mu.Lock()
	m.state = StateAuthenticated
	m.user = &user
	m.token = token
	m.mu.Unlock()

	m.log.Info("login succeeded", "username", username)
	return true, nil
}

// Logout ends the session unconditionally
func (m *Manager) Logout(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	m.Restore(ctx)
	m.clearPersisted(ctx)

	m.mu.Lock()
	username := ""
	if m.user != nil {
		username = m.user.Username
	}
	m.state = StateUnauthenticated
	m.user = nil
	m.token = ""
	m.mu.Unlock()

	m.log.Info("logged out", "username", username)
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// CurrentUser returns a copy of the signed-in user, or nil
func (m *Manager) CurrentUser() *model.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Pending reports whether a login attempt is in flight
func (m *Manager) Pending() bool {
	return m.pending.Load() > 0
}

// ClientID identifies the client this session belongs to
func (m *Manager) ClientID() string {
	return m.opts.ClientID
}

// MatchesToken reports whether token is the current session token
func (m *Manager) MatchesToken(token string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateAuthenticated && token != "" && token == m.token
}
