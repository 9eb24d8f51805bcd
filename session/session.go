package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/billbatista/acasinha-quotes/quote"
	"github.com/google/uuid"
)

var (
	ErrInvalidSession = errors.New("invalid session")
	ErrExpiredSession = errors.New("session expired")
)

const (
	DefaultDuration = 24 * time.Hour
	CookieName      = "quote_session"
)

// Session owns the sheet one browser is editing. All access to the sheet
// goes through Do so edits are applied one at a time.
type Session struct {
	ID        uuid.UUID
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time

	mu    sync.Mutex
	sheet *quote.Sheet
}

// Do runs fn with exclusive access to the session's sheet.
func (s *Session) Do(fn func(sheet *quote.Sheet) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.sheet)
}

type Repository interface {
	Create(ctx context.Context) (*Session, error)
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	Sweep(ctx context.Context, now time.Time) int
}
