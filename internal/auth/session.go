// Package auth carries the console session: the upstream credential, who it belongs to, and the cookies that
// persist it between requests.
package auth

import (
	"context"
	"sync/atomic"

	"github.com/UnknownOlympus/athena/internal/models"
)

// Session is the credential of the signed-in user for one request.
type Session struct {
	Token    string
	UserID   string
	UserName string

	invalidated atomic.Bool
}

// NewSession builds a session from a login result. The user id falls back to the token.
func NewSession(res models.LoginResult) *Session {
	s := &Session{Token: res.Token, UserID: res.UserID, UserName: res.UserName}
	if s.UserID == "" {
		s.UserID = s.Token
	}
	return s
}

// Invalidate marks the session as rejected by the upstream API.
func (s *Session) Invalidate() {
	s.invalidated.Store(true)
}

// Invalidated reports whether the upstream API rejected the session during this request.
func (s *Session) Invalidated() bool {
	return s.invalidated.Load()
}

// Identity is the credential sent upstream in the x-user-id header: the token issued at login.
// The user id only labels the viewer inside the console and is never trusted by the API.
func (s *Session) Identity() string {
	return s.Token
}

type sessionKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session stored in ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
