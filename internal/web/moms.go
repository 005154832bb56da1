package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"

	"github.com/UnknownOlympus/athena/internal/client"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/gorilla/mux"
)

const (
	momsPath       = "/moms"
	maxUploadBytes = 10 << 20
)

func momPath(id string) string {
	return momsPath + "/" + url.PathEscape(id)
}

type momListView struct {
	base
	Moms Section[[]models.Mom]
}

func (s *Server) momList(w http.ResponseWriter, r *http.Request) {
	moms, err := s.api.ListMoms(r.Context())
	if s.gone(r) || s.expired(w, r) {
		return
	}

	view := momListView{base: s.base(r, "Minutes of meeting", "moms")}
	if err != nil {
		view.Moms = Failed(err, r.URL.Path, []models.Mom(nil))
	} else {
		view.Moms = Loaded(moms, len(moms) == 0)
	}
	s.render(w, r, http.StatusOK, "moms", view, view.Moms.State)
}

type momDetailView struct {
	base
	Mom Section[models.Mom]
}

func (s *Server) momDetail(w http.ResponseWriter, r *http.Request) {
	mom, err := s.api.GetMom(r.Context(), mux.Vars(r)["id"])
	if s.gone(r) || s.expired(w, r) {
		return
	}
	if errors.Is(err, client.ErrNotFound) {
		s.notFound(w, r)
		return
	}

	view := momDetailView{base: s.base(r, "Minutes of meeting", "moms")}
	if err != nil {
		view.Mom = Failed(err, r.URL.Path, models.Mom{})
	} else {
		view.Title = mom.Title
		view.Mom = Loaded(mom, false)
	}
	s.render(w, r, http.StatusOK, "mom_detail", view, view.Mom.State)
}

type momFormView struct {
	base
	ID     string
	Form   MomForm
	Action string
	Error  string
}

func (s *Server) newMom(w http.ResponseWriter, r *http.Request) {
	view := momFormView{
		base:   s.base(r, "New minutes", "moms"),
		Form:   MomForm{Errors: FieldErrors{}},
		Action: momsPath,
	}
	s.render(w, r, http.StatusOK, "mom_form", view)
}

// parseMomRequest reads the multipart MOM form and uploads an attached file, adding its URL to the form.
// The upload only happens once the required fields are present.
func (s *Server) parseMomRequest(r *http.Request) (MomForm, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return MomForm{}, fmt.Errorf("failed to parse form: %w", err)
	}
	if r.PostForm == nil {
		if err := r.ParseForm(); err != nil {
			return MomForm{}, fmt.Errorf("failed to parse form: %w", err)
		}
	}

	form := ParseMomForm(r.PostForm)
	if form.Errors.Err() != nil {
		return form, nil
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return form, nil
	}
	if err != nil {
		return form, fmt.Errorf("failed to read upload: %w", err)
	}
	defer file.Close()

	fileURL, err := s.api.UploadMomFile(r.Context(), header.Filename, file)
	if err != nil {
		return form, fmt.Errorf("failed to upload %q: %w", header.Filename, err)
	}
	if !slices.ContainsFunc(form.Attachments, func(a models.MomAttachment) bool { return a.FileURL == fileURL }) {
		form.Attachments = append(form.Attachments, models.MomAttachment{FileURL: fileURL})
	}
	return form, nil
}

func (s *Server) createMom(w http.ResponseWriter, r *http.Request) {
	view := momFormView{base: s.base(r, "New minutes", "moms"), Action: momsPath}
	s.saveMom(w, r, view, func(form MomForm) (string, error) {
		created, err := s.api.CreateMom(r.Context(), form.Input())
		return created.ID, err
	}, "created")
}

func (s *Server) editMom(w http.ResponseWriter, r *http.Request) {
	mom, err := s.api.GetMom(r.Context(), mux.Vars(r)["id"])
	if s.gone(r) || s.expired(w, r) {
		return
	}
	if errors.Is(err, client.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		view := momDetailView{base: s.base(r, "Minutes of meeting", "moms"), Mom: Failed(err, r.URL.Path, models.Mom{})}
		s.render(w, r, http.StatusOK, "mom_detail", view, SectionError)
		return
	}

	view := momFormView{
		base:   s.base(r, "Edit "+mom.Title, "moms"),
		ID:     mom.ID,
		Form:   MomFormFrom(mom),
		Action: momPath(mom.ID),
	}
	s.render(w, r, http.StatusOK, "mom_form", view)
}

func (s *Server) updateMom(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	view := momFormView{base: s.base(r, "Edit minutes", "moms"), ID: id, Action: momPath(id)}
	s.saveMom(w, r, view, func(form MomForm) (string, error) {
		_, err := s.api.UpdateMom(r.Context(), id, form.Input())
		return id, err
	}, "updated")
}

func (s *Server) saveMom(w http.ResponseWriter, r *http.Request, view momFormView, save func(MomForm) (string, error), notice string) {
	form, err := s.parseMomRequest(r)
	view.Form = form
	if view.Form.Errors == nil {
		view.Form.Errors = FieldErrors{}
	}
	if err != nil {
		if s.failWrite(w, r, err) {
			return
		}
		view.Error = "Failed to upload the file. Please try again."
		s.render(w, r, http.StatusBadGateway, "mom_form", view, SectionError)
		return
	}
	if err = form.Errors.Err(); err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, "mom_form", view, SectionError)
		return
	}

	id, err := save(form)
	if err != nil {
		if s.failWrite(w, r, err) {
			return
		}
		view.Error = "Failed to save the minutes. Please try again."
		s.render(w, r, http.StatusBadGateway, "mom_form", view, SectionError)
		return
	}
	if id == "" {
		redirect(w, r, momsPath+"?notice="+notice)
		return
	}
	redirect(w, r, momPath(id)+"?notice="+notice)
}

func (s *Server) deleteMom(w http.ResponseWriter, r *http.Request) {
	if err := s.api.DeleteMom(r.Context(), mux.Vars(r)["id"]); err != nil {
		if s.failWrite(w, r, err) {
			return
		}
		redirect(w, r, momsPath)
		return
	}
	redirect(w, r, momsPath+"?notice=deleted")
}
