package middleware

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/billbatista/acasinha-quotes/session"
	"golang.org/x/crypto/bcrypt"
)

type contextKey string

const SessionKey contextKey = "quote_session"

// SheetSession attaches the caller's sheet session to the request context,
// starting a new one when the cookie is missing, unknown or expired.
func SheetSession(sessionRepo session.Repository, onCreate func(*session.Session)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(session.CookieName); err == nil {
				sess, err := sessionRepo.GetByToken(r.Context(), cookie.Value)
				if err == nil {
					ctx := context.WithValue(r.Context(), SessionKey, sess)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				slog.Info("invalid/expired session, starting a new one", "error", err)
			}

			sess, err := sessionRepo.Create(r.Context())
			if err != nil {
				slog.Error("failed to create session", "error", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			if onCreate != nil {
				onCreate(sess)
			}

			http.SetCookie(w, &http.Cookie{
				Name:     session.CookieName,
				Value:    sess.Token,
				Path:     "/",
				Expires:  sess.ExpiresAt,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := context.WithValue(r.Context(), SessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession extracts the sheet session from context
func GetSession(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(SessionKey).(*session.Session)
	return sess, ok
}

// RequireAdmin guards diagnostic routes with HTTP basic auth. An empty
// password hash disables the routes entirely.
func RequireAdmin(username, passwordHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if passwordHash == "" {
				http.NotFound(w, r)
				return
			}

			user, password, ok := r.BasicAuth()
			if !ok || !VerifyAdmin(username, passwordHash, user, password) {
				w.Header().Set("WWW-Authenticate", `Basic realm="admin", charset="UTF-8"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func VerifyAdmin(username, passwordHash, user, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(user)) == 1
	passOK := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) == nil
	return userOK && passOK
}
