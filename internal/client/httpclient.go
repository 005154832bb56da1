package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/athena/internal/auth"
	"github.com/UnknownOlympus/athena/internal/models"
)

const headerUserID = "x-user-id"

// CreateHTTPClient builds the HTTP client used against the task API. Every request carries the login token of
// the session found in its context in the x-user-id header.
func CreateHTTPClient(log *slog.Logger, timeout time.Duration, base http.RoundTripper) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}

	return &http.Client{
		Transport: &sessionTransport{next: base},
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, _ []*http.Request) error {
			log.Debug("Redirected to URL", "URL", req.URL)

			return nil
		},
	}
}

type sessionTransport struct {
	next http.RoundTripper
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", models.UserAgent)
	req.Header.Set("Accept", "application/json")
	if s, ok := auth.FromContext(req.Context()); ok && s.Identity() != "" {
		req.Header.Set(headerUserID, s.Identity())
	}

	return t.next.RoundTrip(req)
}
