package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
)

const (
	CookieName = "____rp"
	tokenKey   = "token"
	userKey    = "user"
)

type User struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	Location string `json:"location,omitempty"`
}

// LocationScope is the city an admin is restricted to, "all" when unscoped.
func (u User) LocationScope() string {
	if u.Location == "" {
		return "all"
	}
	return u.Location
}

func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

type Session struct {
	Token string
	User  User
}

func (s Session) Valid() bool {
	return s.Token != ""
}

// Expired inspects the exp claim when the backend token is a JWT. Opaque
// tokens never expire on our side, the backend signals that with a 401.
func (s Session) Expired(now time.Time) bool {
	claims := &jwt.StandardClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(s.Token, claims); err != nil {
		return false
	}
	return claims.ExpiresAt != 0 && now.Unix() > claims.ExpiresAt
}

type ctxKey struct{}

func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session the admin middleware attached.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}

// Manager owns the persisted admin session. Clearing or revoking a token
// notifies every subscriber so caches and pending writes can be dropped.
type Manager struct {
	store   sessions.Store
	revoked *bigcache.BigCache

	mu        sync.RWMutex
	listeners map[int]func(token string)
	nextID    int
}

func NewManager(store sessions.Store, revoked *bigcache.BigCache) *Manager {
	return &Manager{
		store:     store,
		revoked:   revoked,
		listeners: make(map[int]func(token string)),
	}
}

func tokenHash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "revoked:" + hex.EncodeToString(sum[:])
}

func (m *Manager) isRevoked(token string) bool {
	_, err := m.revoked.Get(tokenHash(token))
	return err == nil
}

// Load returns the current session, or an empty one when there is none or
// its token has been revoked.
func (m *Manager) Load(r *http.Request) (Session, error) {
	sess, err := m.store.Get(r, CookieName)
	if err != nil {
		return Session{}, errors.Wrap(err, "unable to decode session cookie")
	}
	token, _ := sess.Values[tokenKey].(string)
	if token == "" || m.isRevoked(token) {
		return Session{}, nil
	}
	s := Session{Token: token}
	if raw, ok := sess.Values[userKey].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &s.User); err != nil {
			return Session{}, errors.Wrap(err, "unable to decode session user")
		}
	}
	return s, nil
}

func (m *Manager) Save(w http.ResponseWriter, r *http.Request, s Session) error {
	sess, _ := m.store.Get(r, CookieName)
	user, err := json.Marshal(s.User)
	if err != nil {
		return errors.Wrap(err, "unable to encode session user")
	}
	sess.Values[tokenKey] = s.Token
	sess.Values[userKey] = string(user)
	sess.Options.MaxAge = 86400 * 7
	return sess.Save(r, w)
}

// Clear removes token and user together and notifies subscribers.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, CookieName)
	if token, _ := sess.Values[tokenKey].(string); token != "" {
		m.Revoke(token)
	}
	delete(sess.Values, tokenKey)
	delete(sess.Values, userKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// Revoke invalidates a token without access to the request, used when a
// background call sees a 401.
func (m *Manager) Revoke(token string) {
	if token == "" {
		return
	}
	if m.isRevoked(token) {
		return
	}
	m.revoked.Set(tokenHash(token), []byte{1})
	m.mu.RLock()
	listeners := make([]func(string), 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.RUnlock()
	for _, fn := range listeners {
		fn(token)
	}
}

// Subscribe registers fn to be called with the token of every cleared
// session. The returned func unsubscribes.
func (m *Manager) Subscribe(fn func(token string)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, msg string) error {
	sess, _ := m.store.Get(r, CookieName)
	sess.AddFlash(msg)
	return sess.Save(r, w)
}

func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []string {
	sess, err := m.store.Get(r, CookieName)
	if err != nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	sess.Save(r, w)
	return out
}

// Handle binds the session of one request. It satisfies the API client's
// token source: clearing it drops the cookie on the response.
type Handle struct {
	m     *Manager
	w     http.ResponseWriter
	r     *http.Request
	token string
}

func (m *Manager) Bind(w http.ResponseWriter, r *http.Request) *Handle {
	s, _ := m.Load(r)
	return &Handle{m: m, w: w, r: r, token: s.Token}
}

func (h *Handle) Token() string {
	if h.token == "" || h.m.isRevoked(h.token) {
		return ""
	}
	return h.token
}

func (h *Handle) Clear() {
	h.m.Clear(h.w, h.r)
	h.token = ""
}

// Detached is a token source for work that outlives the request, such as
// debounced writes. Clearing it revokes the token.
type Detached struct {
	m     *Manager
	token string
}

func (m *Manager) Detached(token string) *Detached {
	return &Detached{m: m, token: token}
}

func (d *Detached) Token() string {
	if d.m.isRevoked(d.token) {
		return ""
	}
	return d.token
}

func (d *Detached) Clear() {
	d.m.Revoke(d.token)
}
