// Package session keeps per-browser UI state in memory: the current article
// list, the current summary list and pending flash messages.
//
// A slot is either absent or holds a list; an empty list is still present.
// Nothing here survives a restart. Saving and loading go through the JSON
// files explicitly.
package session

import (
	"net/http"
	"sync"
	"time"

	"astro-news/internal/domain/entity"

	"github.com/google/uuid"
)

// CookieName identifies the session cookie.
const CookieName = "astro_session"

// DefaultIdleTimeout evicts sessions nobody has touched for this long.
const DefaultIdleTimeout = 24 * time.Hour

// Flash kinds, used as CSS classes by the templates.
const (
	FlashSuccess = "success"
	FlashWarning = "warning"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-shot message shown after a redirect.
type Flash struct {
	Kind    string
	Message string
}

// Session is one browser's state. All methods are safe for concurrent use;
// lists are copied on the way in and out.
type Session struct {
	id string

	mu        sync.Mutex
	articles  []entity.Article
	summaries []entity.Article
	flashes   []Flash
	lastSeen  time.Time
}

// ID returns the session identifier stored in the cookie.
func (s *Session) ID() string { return s.id }

// SetArticles replaces the articles slot.
func (s *Session) SetArticles(articles []entity.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles = present(articles)
}

// Articles returns the articles slot and whether it is set.
func (s *Session) Articles() ([]entity.Article, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return entity.CloneArticles(s.articles), s.articles != nil
}

// ClearArticles empties the articles slot.
func (s *Session) ClearArticles() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles = nil
}

// SetSummaries replaces the summaries slot.
func (s *Session) SetSummaries(summaries []entity.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = present(summaries)
}

// Summaries returns the summaries slot and whether it is set.
func (s *Session) Summaries() ([]entity.Article, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return entity.CloneArticles(s.summaries), s.summaries != nil
}

// ClearSummaries empties the summaries slot.
func (s *Session) ClearSummaries() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = nil
}

// AddFlash queues a message for the next page render. A message identical to
// one already queued is dropped, so collapsed duplicate submissions show once.
func (s *Session) AddFlash(kind, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := Flash{Kind: kind, Message: message}
	for _, queued := range s.flashes {
		if queued == f {
			return
		}
	}
	s.flashes = append(s.flashes, f)
}

// TakeFlashes returns and clears the queued messages.
func (s *Session) TakeFlashes() []Flash {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.flashes
	s.flashes = nil
	return out
}

// present turns nil into an empty, non-nil slice so a set slot never reads
// as absent.
func present(articles []entity.Article) []entity.Article {
	out := entity.CloneArticles(articles)
	if out == nil {
		out = []entity.Article{}
	}
	return out
}

// Store maps cookie values to sessions.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	idleTimeout time.Duration
	secure      bool
	now         func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithIdleTimeout overrides DefaultIdleTimeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Store) { s.idleTimeout = d }
}

// WithSecureCookie marks the cookie Secure, for deployments behind HTTPS.
func WithSecureCookie(secure bool) Option {
	return func(s *Store) { s.secure = secure }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions:    make(map[string]*Session),
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the request's session, creating one and setting the cookie
// when the request has none or its session has expired.
func (s *Store) Get(w http.ResponseWriter, r *http.Request) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	if c, err := r.Cookie(CookieName); err == nil {
		if sess, ok := s.sessions[c.Value]; ok {
			sess.mu.Lock()
			sess.lastSeen = now
			sess.mu.Unlock()
			return sess
		}
	}

	sess := &Session{id: uuid.NewString(), lastSeen: now}
	s.sessions[sess.id] = sess
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) sweepLocked(now time.Time) {
	if s.idleTimeout <= 0 {
		return
	}
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := now.Sub(sess.lastSeen)
		sess.mu.Unlock()
		if idle > s.idleTimeout {
			delete(s.sessions, id)
		}
	}
}
