package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/UnknownOlympus/athena/internal/auth"
	"github.com/UnknownOlympus/athena/internal/client"
	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
)

type loginView struct {
	base
	Email   string
	Error   string
	Expired bool
}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	view := loginView{
		base:    s.base(r, "Sign in", ""),
		Expired: r.URL.Query().Get("expired") != "",
	}
	s.render(w, r, http.StatusOK, "login", view)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	view := loginView{base: s.base(r, "Sign in", ""), Email: email}

	res, err := auth.Login(r.Context(), s.api, email, r.PostForm.Get("password"))
	if s.gone(r) {
		return
	}
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		view.Error = "Enter your email and password."
		s.render(w, r, http.StatusUnprocessableEntity, "login", view, SectionError)
		return
	case client.IsUnauthorized(err):
		view.Error = "Invalid email or password."
		s.render(w, r, http.StatusUnauthorized, "login", view, SectionError)
		return
	case err != nil:
		s.log.WarnContext(r.Context(), "Login failed", "email", email, sl.Err(err))
		view.Error = "Unable to sign in right now. Please try again."
		s.render(w, r, http.StatusBadGateway, "login", view, SectionError)
		return
	}

	auth.Persist(w, res)
	s.log.InfoContext(r.Context(), "User signed in", "user_id", res.UserID)
	redirect(w, r, auth.DashboardPath)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if session, ok := auth.FromContext(r.Context()); ok {
		s.forget(session.UserID)
	}
	auth.Clear(w)
	redirect(w, r, auth.LoginPath)
}
