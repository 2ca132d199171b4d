// internal/auth/session.go
//
// Signed session cookie.
//
// Context
// -------
// The cookie carries an HS256 JWT whose subject is the user id.  Login
// flows (outside this service) call Issue; every request passes through
// Sessions.Middleware, which verifies the token and attaches the user id
// to the request context.  Invalid or expired tokens are treated as
// anonymous rather than rejected, so public pages keep working.

package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const issuer = "mana"

// Sessions signs and verifies session cookies.
type Sessions struct {
	secret []byte
	cookie string
	ttl    time.Duration
}

// NewSessions returns a Sessions for cookie name with the HMAC secret.
func NewSessions(secret, cookie string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), cookie: cookie, ttl: ttl}
}

// Issue sets a fresh session cookie for userID.
func (s *Sessions) Issue(w http.ResponseWriter, r *http.Request, userID string) error {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  now.Add(s.ttl),
	})
	return nil
}

// Parse verifies a token and returns its subject.
func (s *Sessions) Parse(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("session: empty subject")
	}
	return claims.Subject, nil
}

// Middleware attaches the session's user id, if any, to the request.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(s.cookie)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		uid, err := s.Parse(c.Value)
		if err != nil {
			zap.L().Debug("session rejected", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), uid)))
	})
}
