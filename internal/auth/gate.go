package auth

import (
	"net/http"
	"strings"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

var assetPrefixes = []string{"/static/", "/favicon"}

func isAsset(path string) bool {
	for _, prefix := range assetPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Gate redirects anonymous requests to the login page and signed-in users away from it.
// For every other request the session from the cookies is placed into the request context.
func Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAsset(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		session := FromRequest(r)
		switch {
		case session == nil && r.URL.Path != LoginPath:
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		case session != nil && r.URL.Path == LoginPath:
			http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
			return
		case session != nil:
			r = r.WithContext(WithSession(r.Context(), session))
		}

		next.ServeHTTP(w, r)
	})
}
