package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/myfintrack/fintrack-go/api"
	"github.com/myfintrack/fintrack-go/tokenstore"
)

// Backend auth endpoints (Djoser-style JWT).
const (
	loginPath    = "auth/jwt/create/"
	refreshPath  = "auth/jwt/refresh/"
	verifyPath   = "auth/jwt/verify/"
	registerPath = "auth/users/"
	profilePath  = "auth/users/me/"
	logoutPath   = "auth/token/logout/"
)

const defaultRefreshLead = 60 * time.Second

// Manager owns the auth session: the login/logout/registration/refresh
// workflows, the persisted token pair, and the pre-expiry refresh scheduler.
// It is the only writer of session state. It implements api.TokenSource and
// api.SessionRefresher, so it plugs into the client and the recovery
// middleware directly.
type Manager struct {
	client api.Doer
	store  *tokenstore.Store

	mu           sync.Mutex
	state        State
	accessToken  string
	refreshToken string
	user         *User
	timer        *time.Timer

	refreshGroup singleflight.Group
	refreshLead  time.Duration
	nowTime      func() time.Time
	httpClient   *http.Client
}

// Option configures a Manager.
type Option func(*Manager)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithRefreshLead sets how long before access-token expiry the scheduled
// refresh fires.
func WithRefreshLead(lead time.Duration) Option {
	return func(m *Manager) {
		m.refreshLead = lead
	}
}

// WithHTTPClient passes a custom http.Client to the underlying API client.
func WithHTTPClient(hc *http.Client) Option {
	return func(m *Manager) {
		m.httpClient = hc
	}
}

// NewManager creates a Manager talking to the backend at baseURL. The
// Manager builds its own raw API client with itself as the token source;
// wrap Client() with api.NewRecovery for the retry-on-401 behavior.
func NewManager(baseURL string, store *tokenstore.Store, options ...Option) *Manager {
	m := &Manager{
		store:       store,
		state:       Anonymous,
		refreshLead: defaultRefreshLead,
		nowTime:     time.Now,
	}
	for _, opt := range options {
		opt(m)
	}

	clientOpts := []api.Option{api.WithTokenSource(m)}
	if m.httpClient != nil {
		clientOpts = append(clientOpts, api.WithHTTPClient(m.httpClient))
	}
	m.client = api.NewClient(baseURL, clientOpts...)
	return m
}

var (
	_ api.TokenSource      = (*Manager)(nil)
	_ api.SessionRefresher = (*Manager)(nil)
)

// Client returns the raw API client bound to this session.
func (m *Manager) Client() api.Doer {
	return m.client
}

// AccessToken implements api.TokenSource.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accessToken
}

// State returns the current state-machine position.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsAuthenticated reports whether an access token is present.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accessToken != ""
}

// CurrentUser returns the profile of the authenticated user, or nil.
func (m *Manager) CurrentUser() *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// Snapshot returns a copy of the session state.
func (m *Manager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Session{AccessToken: m.accessToken, RefreshToken: m.refreshToken, User: m.user}
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Login exchanges credentials for a token pair. Credentials are validated
// locally first; a *ValidationError means no request was sent. The token
// pair is persisted before the profile fetch so that the profile request
// itself can authenticate, and a failed profile fetch does not fail the
// login.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if err := ValidateCredentials(email, password); err != nil {
		return err
	}

	m.setState(Authenticating)

	// The backend accepts either username or email; send both for
	// compatibility.
	raw, err := m.client.Do(ctx, http.MethodPost, loginPath, credentials{Username: email, Email: email, Password: password}, nil)
	if err != nil {
		m.clear()
		return errors.Wrap(err, "[Manager.Login] credential exchange")
	}

	var pair tokenPair
	if err := api.Decode(raw, &pair); err != nil {
		m.clear()
		return errors.Wrap(err, "[Manager.Login] decode token pair")
	}

	m.mu.Lock()
	m.accessToken = pair.Access
	m.refreshToken = pair.Refresh
	m.state = Authenticated
	m.mu.Unlock()
	m.store.Save(pair.Access, pair.Refresh)

	user, err := m.fetchProfile(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("profile fetch failed, continuing with minimal profile")
		user = &User{Email: email}
	}

	m.mu.Lock()
	m.user = user
	m.armTimerLocked()
	m.mu.Unlock()
	m.store.SaveUser(user)

	log.Info().Str("email", email).Msg("logged in")
	return nil
}

// Register creates an account and, on success, logs in with the same
// credentials. A rejected registration (e.g. duplicate email) surfaces
// without attempting login.
func (m *Manager) Register(ctx context.Context, email, password, name string) error {
	if err := ValidateCredentials(email, password); err != nil {
		return err
	}

	payload := map[string]string{"email": email, "password": password}
	if name != "" {
		payload["name"] = name
	}
	if _, err := m.client.Do(ctx, http.MethodPost, registerPath, payload, nil); err != nil {
		return errors.Wrap(err, "[Manager.Register] registration")
	}

	return m.Login(ctx, email, password)
}

// Refresh renews the access token using the refresh token. Concurrent calls
// coalesce into a single in-flight request. A rejected refresh token clears
// the session and the token store and returns api.ErrAuthenticationFailed;
// a network failure leaves the session intact for a later attempt.
func (m *Manager) Refresh(ctx context.Context) error {
	_, err, _ := m.refreshGroup.Do("refresh", func() (any, error) {
		return nil, m.refresh(ctx)
	})
	return err
}

func (m *Manager) refresh(ctx context.Context) error {
	m.mu.Lock()
	refresh := m.refreshToken
	if refresh == "" {
		m.clearLocked()
		m.mu.Unlock()
		return errors.Wrap(api.ErrAuthenticationFailed, ErrNoRefreshToken.Error())
	}
	m.state = Refreshing
	m.mu.Unlock()

	raw, err := m.client.Do(ctx, http.MethodPost, refreshPath, map[string]string{"refresh": refresh}, nil)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
			// The refresh token itself was rejected: terminal.
			m.clear()
			log.Info().Int("status", apiErr.Status).Msg("refresh token rejected, session cleared")
			return errors.Wrap(api.ErrAuthenticationFailed, "refresh token rejected")
		}
		// Transient failure (network, server error): the session survives
		// for a later attempt.
		m.restoreAuthenticated()
		return errors.Wrap(err, "[Manager.refresh] refresh request")
	}

	var pair tokenPair
	if err := api.Decode(raw, &pair); err != nil {
		m.restoreAuthenticated()
		return errors.Wrap(err, "[Manager.refresh] decode token pair")
	}

	m.mu.Lock()
	if m.state == Anonymous {
		// Logged out while the refresh was in flight; do not resurrect the
		// cleared session.
		m.mu.Unlock()
		return errors.Wrap(api.ErrAuthenticationFailed, "session cleared during refresh")
	}
	m.accessToken = pair.Access
	if pair.Refresh != "" {
		m.refreshToken = pair.Refresh
	}
	m.state = Authenticated
	// Persisted under the lock so a concurrent logout cannot interleave
	// between the in-memory commit and the durable write.
	m.store.Save(pair.Access, m.refreshToken)
	m.armTimerLocked()
	m.mu.Unlock()

	log.Debug().Msg("access token refreshed")
	return nil
}

// Verify asks the backend whether the current access token is still valid.
func (m *Manager) Verify(ctx context.Context) error {
	m.mu.Lock()
	token := m.accessToken
	m.mu.Unlock()
	if token == "" {
		return ErrNotAuthenticated
	}
	_, err := m.client.Do(ctx, http.MethodPost, verifyPath, map[string]string{"token": token}, nil)
	return errors.Wrap(err, "[Manager.Verify] verify request")
}

// Logout clears the session and the token store regardless of prior state.
// The server-side invalidation call is best effort; its failure never blocks
// the local clearing. Idempotent.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	hadToken := m.accessToken != ""
	m.mu.Unlock()

	if hadToken {
		if _, err := m.client.Do(ctx, http.MethodPost, logoutPath, nil, nil); err != nil {
			log.Debug().Err(err).Msg("server-side logout failed, clearing locally anyway")
		}
	}

	m.clear()
	log.Info().Msg("logged out")
	return nil
}

// CheckAuth restores a persisted session at startup. If a token pair is
// present it optimistically authenticates, verifies the access token by
// fetching the profile, and falls back to a single refresh when that fails
// with a 401. Returns whether the session ended up authenticated.
func (m *Manager) CheckAuth(ctx context.Context) (bool, error) {
	access, refresh, ok := m.store.Load()
	if !ok {
		m.clear()
		return false, nil
	}

	var cached User
	hasCached := m.store.LoadUser(&cached)

	m.mu.Lock()
	m.accessToken = access
	m.refreshToken = refresh
	m.state = Authenticated
	if hasCached {
		m.user = &cached
	}
	m.mu.Unlock()

	user, err := m.fetchProfile(ctx)
	if err != nil && api.IsStatus(err, http.StatusUnauthorized) {
		if refreshErr := m.Refresh(ctx); refreshErr != nil {
			m.clear()
			return false, errors.Wrap(refreshErr, "[Manager.CheckAuth] restore")
		}
		user, err = m.fetchProfile(ctx)
	}
	if err != nil {
		if api.IsStatus(err, http.StatusUnauthorized) {
			m.clear()
			return false, errors.Wrap(api.ErrAuthenticationFailed, "persisted tokens rejected")
		}
		// Backend unreachable: stay optimistic with the cached profile.
		log.Warn().Err(err).Msg("profile verification unavailable, keeping restored session")
		m.mu.Lock()
		m.armTimerLocked()
		m.mu.Unlock()
		return true, nil
	}

	m.mu.Lock()
	m.user = user
	m.armTimerLocked()
	m.mu.Unlock()
	m.store.SaveUser(user)
	return true, nil
}

// Close cancels the refresh scheduler. The session itself is left intact.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelTimerLocked()
}

func (m *Manager) fetchProfile(ctx context.Context) (*User, error) {
	raw, err := m.client.Do(ctx, http.MethodGet, profilePath, nil, nil)
	if err != nil {
		return nil, err
	}
	var user User
	if err := api.Decode(raw, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

// restoreAuthenticated returns the state label to Authenticated after a
// transient refresh failure. A session cleared by logout while the request
// was in flight stays Anonymous.
func (m *Manager) restoreAuthenticated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Anonymous {
		m.state = Authenticated
	}
}

// clear resets to Anonymous: session wiped, store wiped, scheduler off. The
// store is cleared under the same lock so memory and durable state cannot be
// observed diverging by another manager method.
func (m *Manager) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked()
	m.store.Clear()
}

func (m *Manager) clearLocked() {
	m.accessToken = ""
	m.refreshToken = ""
	m.user = nil
	m.state = Anonymous
	m.cancelTimerLocked()
}
