package web

import (
	"net/http"

	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/gorilla/mux"
)

const settingsPath = "/settings"

var roles = []string{"admin", "executive", "assistant"}

type settingsView struct {
	base
	Users Section[[]models.User]
	Form  UserForm
	// EditID is the user whose row failed validation.
	EditID string
	Roles  []string
	Error  string
}

func (s *Server) settings(w http.ResponseWriter, r *http.Request) {
	s.renderSettings(w, r, http.StatusOK, settingsView{Form: UserForm{Role: "executive", Errors: FieldErrors{}}})
}

func (s *Server) renderSettings(w http.ResponseWriter, r *http.Request, status int, view settingsView) {
	users, err := s.api.ListUsers(r.Context())
	if s.gone(r) || s.expired(w, r) {
		return
	}

	view.base = s.base(r, "Settings", "settings")
	view.Roles = roles
	if view.Error == "" && r.URL.Query().Get("error") == "delete" {
		view.Error = "Failed to deactivate the user. Please try again."
	}
	if err != nil {
		view.Users = Failed(err, r.URL.Path, []models.User(nil))
	} else {
		view.Users = Loaded(users, len(users) == 0)
	}
	s.render(w, r, status, "settings", view, view.Users.State)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad form", http.StatusBadRequest)
		return
	}
	form := ParseUserForm(r.PostForm, true)
	if form.Errors.Err() != nil {
		s.renderSettings(w, r, http.StatusUnprocessableEntity, settingsView{Form: form})
		return
	}

	if _, err := s.api.CreateUser(r.Context(), form.Input()); err != nil {
		if s.failWrite(w, r, err) {
			return
		}
		s.renderSettings(w, r, http.StatusBadGateway, settingsView{Form: form, Error: errorMessage(err)})
		return
	}
	redirect(w, r, settingsPath+"?notice=created")
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad form", http.StatusBadRequest)
		return
	}
	id := mux.Vars(r)["id"]
	form := ParseUserForm(r.PostForm, false)
	fresh := UserForm{Role: "executive", Errors: FieldErrors{}}
	if form.Errors.Err() != nil {
		s.renderSettings(w, r, http.StatusUnprocessableEntity, settingsView{Form: fresh, EditID: id, Error: form.Errors.summary()})
		return
	}

	if _, err := s.api.UpdateUser(r.Context(), id, form.Input()); err != nil {
		if s.failWrite(w, r, err) {
			return
		}
		s.renderSettings(w, r, http.StatusBadGateway, settingsView{Form: fresh, EditID: id, Error: errorMessage(err)})
		return
	}
	redirect(w, r, settingsPath+"?notice=updated")
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.api.DeleteUser(r.Context(), mux.Vars(r)["id"]); err != nil {
		if s.failWrite(w, r, err) {
			return
		}
		redirect(w, r, settingsPath+"?error=delete")
		return
	}
	redirect(w, r, settingsPath+"?notice=deleted")
}
