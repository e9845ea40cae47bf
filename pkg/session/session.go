// Package session identifies visitors. A visitor carries an HS256-signed
// cookie whose subject is a random id; that id selects the visitor space
// in the kv store. There are no accounts: a missing, expired or tampered
// cookie simply starts a new visitor.
//
//	r.Use(session.Middleware(session.DefaultOptions()))
//
//	id := session.VisitorID(r.Context())
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shashiranjanraj/bloomthread/config"
	"github.com/shashiranjanraj/bloomthread/pkg/logger"
)

// CookieName is the visitor cookie.
const CookieName = "bt_visitor"

const issuer = "bloomthread"

// Options configures the visitor cookie.
type Options struct {
	CookieName string
	Secret     []byte
	TTL        time.Duration
	Secure     bool
	Path       string
}

// DefaultOptions reads APP_KEY and SESSION_TTL_DAYS. The cookie is Secure
// in production.
func DefaultOptions() Options {
	return Options{
		CookieName: CookieName,
		Secret:     []byte(config.AppKey()),
		TTL:        config.SessionTTL(),
		Secure:     config.IsProduction(),
		Path:       "/",
	}
}

// Claims is the token payload. The visitor id is the subject.
type Claims struct {
	jwt.RegisteredClaims
}

// NewID returns 16 random bytes, hex encoded.
func NewID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: random id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Issue signs a token for visitor id valid for opts.TTL.
func Issue(opts Options, id string, now time.Time) (string, error) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   id,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(opts.TTL)),
	}}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(opts.Secret)
}

// Parse validates token and returns its claims.
func Parse(opts Options, token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return opts.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("session: token has no subject")
	}
	return claims, nil
}

// ─── Context ──────────────────────────────────────────────────────────────────

type ctxKey struct{}

// WithVisitor stores the visitor id in ctx.
func WithVisitor(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// VisitorID returns the visitor id set by Middleware, or "".
func VisitorID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// ─── Middleware ───────────────────────────────────────────────────────────────

// Middleware resolves the visitor for every request. New visitors get a
// fresh cookie; a cookie past half its lifetime is re-issued so active
// visitors keep their space. The request logger is tagged with the id.
func Middleware(opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			id, refresh := "", true

			if c, err := r.Cookie(opts.CookieName); err == nil {
				if claims, err := Parse(opts, c.Value); err == nil {
					id = claims.Subject
					refresh = claims.ExpiresAt.Sub(now) < opts.TTL/2
				}
			}

			if id == "" {
				newID, err := NewID()
				if err != nil {
					logger.WithCtx(r.Context()).Error("session: cannot create visitor", "error", err)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}
				id = newID
			}

			if refresh {
				if err := setCookie(w, opts, id, now); err != nil {
					logger.WithCtx(r.Context()).Error("session: sign cookie", "error", err)
				}
			}

			ctx := WithVisitor(r.Context(), id)
			ctx = logger.InjectLogger(ctx, logger.WithCtx(ctx).With("visitor", id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func setCookie(w http.ResponseWriter, opts Options, id string, now time.Time) error {
	token, err := Issue(opts, id, now)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     opts.CookieName,
		Value:    token,
		Path:     opts.Path,
		MaxAge:   int(opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
