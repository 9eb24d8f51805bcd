package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/billbatista/acasinha-quotes/metrics"
	"github.com/billbatista/acasinha-quotes/quote"
	"github.com/google/uuid"
)

// repository keeps sessions in memory only; a sheet does not outlive the
// browser session that edits it.
type repository struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	newSheet func() *quote.Sheet
	duration time.Duration
	now      func() time.Time
}

func NewRepository(newSheet func() *quote.Sheet, duration time.Duration) *repository {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &repository{
		sessions: make(map[string]*Session),
		newSheet: newSheet,
		duration: duration,
		now:      time.Now,
	}
}

func (r *repository) Create(ctx context.Context) (*Session, error) {
	token, err := generateSecureToken()
	if err != nil {
		return nil, err
	}

	now := r.now()
	session := &Session{
		ID:        uuid.New(),
		Token:     token,
		ExpiresAt: now.Add(r.duration),
		CreatedAt: now,
		sheet:     r.newSheet(),
	}

	r.mu.Lock()
	r.sessions[token] = session
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	return session, nil
}

// GetByToken retrieves a session by token and validates it's not expired
func (r *repository) GetByToken(ctx context.Context, token string) (*Session, error) {
	r.mu.RLock()
	session, ok := r.sessions[token]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidSession
	}

	if r.now().After(session.ExpiresAt) {
		return nil, ErrExpiredSession
	}

	return session, nil
}

// Delete removes a session
func (r *repository) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	delete(r.sessions, token)
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()
	return nil
}

// Sweep drops every session expired at now and reports how many went.
func (r *repository) Sweep(ctx context.Context, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for token, s := range r.sessions {
		if now.After(s.ExpiresAt) {
			delete(r.sessions, token)
			removed++
		}
	}
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	return removed
}

func generateSecureToken() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
