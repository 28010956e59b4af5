package validators

import (
	"errors"
	"net/http"
	"strings"
)

var ErrInvalidToken = errors.New("invalid auth token")

// AccessTokenCookie carries the JWT for browser sessions.
const AccessTokenCookie = "access_token"

// ParseBearer strips the scheme from an Authorization header value.
func ParseBearer(raw string) (string, error) {
	token := strings.TrimSpace(raw)
	if token == "" {
		return "", ErrInvalidToken
	}
	if len(token) < 7 || !strings.EqualFold(token[:7], "bearer ") {
		return "", ErrInvalidToken
	}
	token = strings.TrimSpace(token[7:])
	if token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}

// AccessToken finds the caller's token, preferring the Authorization header
// over the session cookie.
func AccessToken(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		return ParseBearer(header)
	}
	c, err := r.Cookie(AccessTokenCookie)
	if err != nil || strings.TrimSpace(c.Value) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(c.Value), nil
}
