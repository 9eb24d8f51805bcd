package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/billbatista/acasinha-quotes/quote"
)

func newTestRepository() *repository {
	return NewRepository(func() *quote.Sheet {
		return quote.NewSheet(quote.DefaultNormalizer())
	}, time.Hour)
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	sess, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("Token should be set")
	}
	if got := sess.ExpiresAt.Sub(sess.CreatedAt); got != time.Hour {
		t.Errorf("lifetime = %v, want 1h", got)
	}

	got, err := repo.GetByToken(ctx, sess.Token)
	if err != nil {
		t.Fatalf("GetByToken() error: %v", err)
	}
	if got != sess {
		t.Error("GetByToken returned a different session")
	}

	if _, err := repo.GetByToken(ctx, "missing"); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("error = %v, want ErrInvalidSession", err)
	}
}

func TestExpiredSession(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()
	sess, _ := repo.Create(ctx)

	repo.now = func() time.Time { return sess.ExpiresAt.Add(time.Second) }
	if _, err := repo.GetByToken(ctx, sess.Token); !errors.Is(err, ErrExpiredSession) {
		t.Errorf("error = %v, want ErrExpiredSession", err)
	}

	if n := repo.Sweep(ctx, sess.ExpiresAt.Add(time.Second)); n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}
	if _, err := repo.GetByToken(ctx, sess.Token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("error = %v, want ErrInvalidSession after sweep", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()
	sess, _ := repo.Create(ctx)

	repo.Delete(ctx, sess.Token)
	if _, err := repo.GetByToken(ctx, sess.Token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("error = %v, want ErrInvalidSession", err)
	}
}

func TestSessionDoSerializesEdits(t *testing.T) {
	repo := newTestRepository()
	sess, _ := repo.Create(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Go(func() {
			sess.Do(func(sheet *quote.Sheet) error {
				sheet.Add()
				return nil
			})
		})
	}
	wg.Wait()

	sess.Do(func(sheet *quote.Sheet) error {
		if sheet.Len() != 51 {
			t.Errorf("Len() = %d, want 51", sheet.Len())
		}
		return nil
	})
}
