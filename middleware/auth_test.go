package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/billbatista/acasinha-quotes/quote"
	"github.com/billbatista/acasinha-quotes/session"
	"golang.org/x/crypto/bcrypt"
)

func newTestRepository() session.Repository {
	return session.NewRepository(func() *quote.Sheet {
		return quote.NewSheet(quote.DefaultNormalizer())
	}, time.Hour)
}

func TestSheetSession_CreatesAndReuses(t *testing.T) {
	repo := newTestRepository()
	created := 0
	var seen *session.Session

	h := SheetSession(repo, func(*session.Session) { created++ })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := GetSession(r.Context())
		if !ok {
			t.Fatal("no session in context")
		}
		seen = sess
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != session.CookieName {
		t.Fatalf("cookies = %v, want one %s cookie", cookies, session.CookieName)
	}
	first := seen

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != first {
		t.Error("second request should reuse the session")
	}
	if created != 1 {
		t.Errorf("created = %d, want 1", created)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("no new cookie expected for an existing session")
	}
}

func TestSheetSession_UnknownCookie(t *testing.T) {
	repo := newTestRepository()
	h := SheetSession(repo, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "stale"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value == "stale" {
		t.Errorf("cookies = %v, want a fresh session cookie", cookies)
	}
}

func TestRequireAdmin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name     string
		hash     string
		user     string
		password string
		auth     bool
		want     int
	}{
		{"valid", string(hash), "admin", "s3cret", true, http.StatusNoContent},
		{"wrong password", string(hash), "admin", "nope", true, http.StatusUnauthorized},
		{"wrong user", string(hash), "root", "s3cret", true, http.StatusUnauthorized},
		{"no credentials", string(hash), "", "", false, http.StatusUnauthorized},
		{"disabled", "", "admin", "s3cret", true, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/events", nil)
			if tt.auth {
				req.SetBasicAuth(tt.user, tt.password)
			}
			rec := httptest.NewRecorder()
			RequireAdmin("admin", tt.hash)(ok).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
