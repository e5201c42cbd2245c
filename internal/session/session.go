// Package session issues the tokens that scope a visitor's records. Each
// login gets its own freshly seeded dataset which is purged when the session
// is logged out or expires.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"campus-laundry-backend/internal/laundry"
	"campus-laundry-backend/internal/metrics"
	"campus-laundry-backend/internal/seed"
)

// ErrUnknownSession is returned for a missing, logged out or expired token.
var ErrUnknownSession = errors.New("unknown or expired session")

// Session is one logged-in visitor.
type Session struct {
	Token     string       `json:"token"`
	Username  string       `json:"username"`
	Role      laundry.Role `json:"role"`
	CreatedAt time.Time    `json:"createdAt"`
}

// DataStore seeds and purges the records owned by a session.
type DataStore interface {
	Seed(ctx context.Context, sessionID string, ds seed.Dataset) error
	Purge(ctx context.Context, sessionID string) error
	SessionIDs(ctx context.Context) ([]string, error)
}

// Manager keeps live sessions in memory with an idle timeout.
type Manager struct {
	cache   *cache.Cache
	store   DataStore
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewManager creates a manager whose sessions expire after ttl without use.
// Expired sessions are swept every cleanup interval.
func NewManager(store DataStore, ttl, cleanup time.Duration, log zerolog.Logger, m *metrics.Metrics) *Manager {
	mgr := &Manager{
		cache:   cache.New(ttl, cleanup),
		store:   store,
		log:     log.With().Str("component", "session").Logger(),
		metrics: m,
	}
	mgr.cache.OnEvicted(mgr.evicted)
	return mgr
}

// Login validates the form fields, creates a session for role and seeds its
// records. Any non-empty username and password are accepted.
func (m *Manager) Login(ctx context.Context, username, password, role string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" || strings.TrimSpace(role) == "" {
		return Session{}, fmt.Errorf("%w: %s", laundry.ErrInvalidInput, laundry.MissingFieldsMessage)
	}
	r, err := laundry.ParseRole(role)
	if err != nil {
		return Session{}, err
	}

	s := Session{
		Token:     uuid.NewString(),
		Username:  username,
		Role:      r,
		CreatedAt: time.Now().UTC(),
	}
	// The session is live before its rows exist so Reap never sees them as
	// orphans. Deleting it on failure purges whatever was written.
	m.cache.SetDefault(s.Token, s)
	if m.metrics != nil {
		m.metrics.ActiveSessions.Inc()
	}
	if err := m.store.Seed(ctx, s.Token, seed.For(r, username)); err != nil {
		m.cache.Delete(s.Token)
		return Session{}, fmt.Errorf("failed to seed session: %w", err)
	}

	m.log.Info().Str("session", s.Token).Str("role", string(r)).Str("username", username).Msg("session started")
	return s, nil
}

// Get returns the session for token and extends its idle timeout.
func (m *Manager) Get(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrUnknownSession
	}
	v, ok := m.cache.Get(token)
	if !ok {
		return Session{}, ErrUnknownSession
	}
	s := v.(Session)
	// Replace fails if the entry was removed in the meantime, so a concurrent
	// logout is never undone.
	_ = m.cache.Replace(token, s, cache.DefaultExpiration)
	return s, nil
}

// Logout ends the session and purges its records. Unknown tokens are ignored.
func (m *Manager) Logout(token string) {
	m.cache.Delete(token)
}

// Count returns the number of live sessions, including expired ones not yet
// swept.
func (m *Manager) Count() int {
	return m.cache.ItemCount()
}

// Reap purges records owned by sessions that are no longer live, such as
// those left behind when a purge on expiry failed. It returns how many
// sessions were purged.
func (m *Manager) Reap(ctx context.Context) (int, error) {
	ids, err := m.store.SessionIDs(ctx)
	if err != nil {
		return 0, err
	}
	reaped := 0
	for _, id := range ids {
		if _, live := m.cache.Get(id); live {
			continue
		}
		if err := m.store.Purge(ctx, id); err != nil {
			return reaped, err
		}
		reaped++
	}
	return reaped, nil
}

// RunReaper calls Reap every interval until ctx is cancelled.
func (m *Manager) RunReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.Reap(ctx)
			if err != nil {
				m.log.Error().Err(err).Msg("failed to reap orphaned session records")
				continue
			}
			if n > 0 {
				m.log.Info().Int("sessions", n).Msg("reaped orphaned session records")
			}
		}
	}
}

func (m *Manager) evicted(token string, _ any) {
	if m.metrics != nil {
		m.metrics.ActiveSessions.Dec()
	}
	if err := m.store.Purge(context.Background(), token); err != nil {
		m.log.Error().Err(err).Str("session", token).Msg("failed to purge session records")
		return
	}
	m.log.Info().Str("session", token).Msg("session ended")
}
