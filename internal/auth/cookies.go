package auth

import (
	"net/http"
	"net/url"
	"time"

	"github.com/UnknownOlympus/athena/internal/models"
)

const (
	CookieToken    = "auth_token"
	CookieUserID   = "auth_user_id"
	CookieUserName = "auth_user_name"

	cookieMaxAge = 7 * 24 * time.Hour
)

// Persist writes the session cookies for a successful login.
func Persist(w http.ResponseWriter, res models.LoginResult) {
	s := NewSession(res)
	maxAge := int(cookieMaxAge.Seconds())

	http.SetCookie(w, newCookie(CookieToken, s.Token, maxAge, true))
	http.SetCookie(w, newCookie(CookieUserID, s.UserID, maxAge, false))
	http.SetCookie(w, newCookie(CookieUserName, url.QueryEscape(s.UserName), maxAge, false))
}

// Clear expires the session cookies.
func Clear(w http.ResponseWriter) {
	for _, name := range []string{CookieToken, CookieUserID, CookieUserName} {
		c := newCookie(name, "", -1, name == CookieToken)
		c.Expires = time.Unix(0, 0)
		http.SetCookie(w, c)
	}
}

// FromRequest rebuilds the session from request cookies. It returns nil when there is no token.
func FromRequest(r *http.Request) *Session {
	token, err := r.Cookie(CookieToken)
	if err != nil || token.Value == "" {
		return nil
	}

	s := &Session{Token: token.Value}
	if c, err := r.Cookie(CookieUserID); err == nil {
		s.UserID = c.Value
	}
	if c, err := r.Cookie(CookieUserName); err == nil {
		if name, err := url.QueryUnescape(c.Value); err == nil {
			s.UserName = name
		}
	}
	if s.UserID == "" {
		s.UserID = s.Token
	}
	return s
}

func newCookie(name, value string, maxAge int, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		SameSite: http.SameSiteLaxMode,
	}
}
