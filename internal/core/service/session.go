package service

import (
	"context"
	"errors"
	"sync"

	"github.com/yndnr/delivtrack-go/internal/core/domain"
	"github.com/yndnr/delivtrack-go/internal/telemetry/logger"
	"github.com/yndnr/delivtrack-go/internal/telemetry/metric"
)

// SessionStore defines the durable mirror of the session.
type SessionStore interface {
	// Save replaces the stored session. Both entries are written or neither.
	Save(ctx context.Context, token, username string) error

	// Load returns the stored session; ok is false if it is absent or partial.
	Load(ctx context.Context) (session domain.Session, ok bool, err error)

	// Clear removes the stored session. Clearing an empty store succeeds.
	Clear(ctx context.Context) error
}

// Authenticator exchanges credentials for a login envelope.
//
// A transport or HTTP failure is returned as *domain.RequestError. A 2xx
// body that cannot be decoded is returned as domain.ErrMalformedResponse.
type Authenticator interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.Envelope[*domain.LoginData], error)
}

// StateListener receives every published AuthState. Listeners run while
// publication is serialized and must not call SessionManager methods that
// mutate state (Init, Login, Logout, HandleUnauthorized).
type StateListener func(domain.AuthState)

// SessionManager owns the session and publishes AuthState.
//
// State machine: Loading -> {Anonymous, Authenticated}. Network calls run
// without holding any lock, so concurrent operations complete in any order
// and the last one to finish determines the published state.
type SessionManager struct {
	store   SessionStore
	auth    Authenticator
	log     logger.Logger
	metrics *metric.Registry

	// writeMu serializes store writes together with the state change and
	// publication that follow them, so the store, the state and the order
	// of notifications always agree.
	writeMu sync.Mutex

	mu          sync.RWMutex
	initialized bool
	session     domain.Session
	state       domain.AuthState

	subsMu    sync.Mutex
	nextSubID int
	subs      []subscription
}

type subscription struct {
	id int
	fn StateListener
}

// SessionManagerOption configures a SessionManager.
type SessionManagerOption func(*SessionManager)

// WithLogger sets the manager logger.
func WithLogger(l logger.Logger) SessionManagerOption {
	return func(m *SessionManager) {
		m.log = l
	}
}

// WithMetrics records state transitions in reg.
func WithMetrics(reg *metric.Registry) SessionManagerOption {
	return func(m *SessionManager) {
		m.metrics = reg
	}
}

// NewSessionManager creates a manager in the Loading state.
func NewSessionManager(store SessionStore, auth Authenticator, opts ...SessionManagerOption) *SessionManager {
	m := &SessionManager{
		store: store,
		auth:  auth,
		log:   logger.Default(),
		state: domain.LoadingState(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With("component", "session")
	return m
}

// ============================================================================
// Restore
// ============================================================================

// Init restores the session from the store. A present session yields
// Authenticated; absence or a store failure yields Anonymous. Init may run
// once; later calls return domain.ErrAlreadyInitialized and change nothing.
func (m *SessionManager) Init(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.RLock()
	done := m.initialized
	m.mu.RUnlock()
	if done {
		return domain.ErrAlreadyInitialized
	}

	sess, ok, err := m.store.Load(ctx)
	if err != nil {
		m.log.Warn("session restore failed, starting anonymous", "error", err)
		ok = false
	}

	if ok && sess.Valid() {
		m.apply(sess)
		m.log.Debug("session restored", "username", sess.Username)
	} else {
		m.apply(domain.Session{})
	}
	return nil
}

// ============================================================================
// Login / Logout
// ============================================================================

// Login exchanges credentials for a session. Every outcome is reported in
// the returned LoginResult; Login never returns an error or panics.
func (m *SessionManager) Login(ctx context.Context, creds domain.Credentials) domain.LoginResult {
	// 1. Refuse until the store has been read
	m.mu.RLock()
	ready := m.initialized
	m.mu.RUnlock()
	if !ready {
		return failed(domain.MsgNotInitialized)
	}

	// 2. Call the API without holding any lock
	env, err := m.auth.Login(ctx, creds)
	if err != nil {
		var reqErr *domain.RequestError
		if errors.As(err, &reqErr) {
			m.log.Debug("login request failed", "kind", reqErr.Kind, "username", creds.Username)
			return failed(reqErr.Message)
		}
		m.log.Debug("login response unreadable", "error", err)
		return failed(domain.MsgInvalidServerResponse)
	}

	// 3. Validate the envelope
	if !env.Success || env.Data == nil {
		return failed(domain.MsgInvalidServerResponse)
	}
	sess := domain.Session{Token: env.Data.Token, Username: env.Data.Username}
	if !sess.Valid() {
		return failed(domain.MsgInvalidLoginResponse)
	}

	// 4. Persist, then publish
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if err := m.store.Save(ctx, sess.Token, sess.Username); err != nil {
		m.log.Error("persist session failed", "error", err)
		return failed(domain.MsgPersistFailed)
	}
	m.apply(sess)

	m.log.Info("logged in", "username", sess.Username)
	return domain.LoginResult{Success: true}
}

// Logout discards the session in any state. The transition to Anonymous
// happens even if clearing the store fails; that error is returned.
func (m *SessionManager) Logout(ctx context.Context) error {
	return m.discard(ctx, "logout")
}

// HandleUnauthorized discards the session after the server rejected the
// token. It is registered as a pipeline listener.
func (m *SessionManager) HandleUnauthorized(ctx context.Context) {
	_ = m.discard(ctx, "unauthorized")
}

func (m *SessionManager) discard(ctx context.Context, reason string) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	err := m.store.Clear(ctx)
	if err != nil {
		m.log.Warn("clear session store failed", "reason", reason, "error", err)
	}

	m.mu.RLock()
	prev := m.session.Username
	m.mu.RUnlock()

	m.apply(domain.Session{})
	if prev != "" {
		m.log.Info("session ended", "reason", reason, "username", prev)
	}
	return err
}

// ============================================================================
// Accessors
// ============================================================================

// Token returns the current bearer token, or "" without a session.
func (m *SessionManager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Token
}

// Session returns the current session and whether one exists.
func (m *SessionManager) Session() (domain.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session, m.session.Valid()
}

// State returns the published AuthState.
func (m *SessionManager) State() domain.AuthState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Subscribe registers fn for future state changes and returns a function
// that removes it.
func (m *SessionManager) Subscribe(fn StateListener) func() {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	id := m.nextSubID
	m.nextSubID++
	m.subs = append(m.subs, subscription{id: id, fn: fn})

	return func() {
		m.subsMu.Lock()
		defer m.subsMu.Unlock()
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

// ============================================================================
// Internal
// ============================================================================

// apply replaces the session, derives the state and publishes it.
// Callers must hold writeMu.
func (m *SessionManager) apply(sess domain.Session) {
	state := domain.AnonymousState()
	if sess.Valid() {
		state = domain.AuthenticatedState(sess)
	} else {
		sess = domain.Session{}
	}

	m.mu.Lock()
	m.initialized = true
	m.session = sess
	m.state = state
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.SessionTransitions.WithLabelValues(state.Phase().String()).Inc()
	}
	m.publish(state)
}

func (m *SessionManager) publish(state domain.AuthState) {
	m.subsMu.Lock()
	subs := append([]subscription(nil), m.subs...)
	m.subsMu.Unlock()

	for _, s := range subs {
		s.fn(state)
	}
}

func failed(msg string) domain.LoginResult {
	return domain.LoginResult{Success: false, Error: msg}
}
