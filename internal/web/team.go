package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/UnknownOlympus/athena/internal/client"
	"github.com/UnknownOlympus/athena/internal/insights"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/query"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"
)

const teamPath = "/team"

func memberPath(id string) string {
	return teamPath + "/" + url.PathEscape(id)
}

type teamView struct {
	base
	Members Section[[]models.TeamMember]
}

// teamList shows each member's open and overdue counts. Counts the API omits are computed from the tasks.
func (s *Server) teamList(w http.ResponseWriter, r *http.Request) {
	tasks, members, err := s.loadBoard(r.Context())
	if s.gone(r) || s.expired(w, r) {
		return
	}

	view := teamView{base: s.base(r, "Team", "team")}
	if err != nil {
		view.Members = Failed(err, r.URL.Path, []models.TeamMember(nil))
	} else {
		members = insights.TeamCounts(members, tasks)
		view.Members = Loaded(members, len(members) == 0)
	}
	s.render(w, r, http.StatusOK, "team", view, view.Members.State)
}

type profileView struct {
	base
	Member Section[models.TeamMember]
	Stats  Section[insights.MemberStats]
	Tasks  Section[taskTable]
	Error  string
}

// memberCounts runs the count-only queries of a profile concurrently.
func (s *Server) memberCounts(ctx context.Context, memberID string) (insights.MemberStats, error) {
	statuses := []models.TaskStatus{"", models.StatusOpen, models.StatusOverdue, models.StatusInProgress, models.StatusCompleted}
	counts := make([]int, len(statuses))

	grp, gctx := errgroup.WithContext(ctx)
	for i, status := range statuses {
		grp.Go(func() error {
			params := url.Values{"assignedTo": {memberID}}
			if status != "" {
				params.Set("status", string(status))
			}
			n, err := s.api.CountTasks(gctx, params)
			if err != nil {
				return fmt.Errorf("failed to count %q tasks: %w", status, err)
			}
			counts[i] = n
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return insights.MemberStats{}, err
	}
	return insights.NewMemberStats(counts[0], counts[1], counts[2], counts[3], counts[4]), nil
}

func (s *Server) memberProfile(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	view := profileView{base: s.base(r, "Team member", "team")}
	if r.URL.Query().Get("error") == "delete" {
		view.Error = "Failed to remove the team member. Please try again."
	}

	var (
		member    models.TeamMember
		memberErr error
		stats     insights.MemberStats
		statsErr  error
	)
	grp, gctx := errgroup.WithContext(r.Context())
	grp.Go(func() error {
		member, memberErr = s.api.GetTeamMember(gctx, id)
		return nil
	})
	grp.Go(func() error {
		stats, statsErr = s.memberCounts(gctx, id)
		return nil
	})
	_ = grp.Wait()

	if s.gone(r) || s.expired(w, r) {
		return
	}
	if errors.Is(memberErr, client.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if memberErr != nil {
		view.Member = Failed(memberErr, r.URL.Path, models.TeamMember{})
		s.render(w, r, http.StatusOK, "profile", view, SectionError)
		return
	}

	view.Title = member.Name
	view.Member = Loaded(member, false)
	if statsErr != nil {
		view.Stats = Failed(statsErr, r.URL.Path, insights.MemberStats{})
	} else {
		view.Stats = Loaded(stats, stats.Total == 0)
	}
	view.Tasks = s.loadTable(r, "member:"+id, memberPath(id), query.Options{LockedAssignee: id})
	if s.gone(r) || s.expired(w, r) {
		return
	}

	s.render(w, r, http.StatusOK, "profile", view, view.Member.State, view.Stats.State, view.Tasks.State)
}

type memberFormView struct {
	base
	ID     string
	Form   MemberForm
	Action string
	Error  string
}

func (s *Server) newMember(w http.ResponseWriter, r *http.Request) {
	view := memberFormView{
		base:   s.base(r, "New team member", "team"),
		Form:   MemberForm{Active: true, Errors: FieldErrors{}},
		Action: teamPath,
	}
	s.render(w, r, http.StatusOK, "member_form", view)
}

func (s *Server) createMember(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	view := memberFormView{
		base:   s.base(r, "New team member", "team"),
		Form:   ParseMemberForm(r.PostForm),
		Action: teamPath,
	}
	if err := view.Form.Errors.Err(); err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, "member_form", view, SectionError)
		return
	}

	created, err := s.api.CreateTeamMember(r.Context(), view.Form.Input())
	if err != nil {
		if s.failWrite(w, r, err) {
			return
		}
		view.Error = "Failed to create team member. Please try again."
		s.render(w, r, http.StatusBadGateway, "member_form", view, SectionError)
		return
	}
	s.lists.reset()
	if created.ID == "" {
		redirect(w, r, teamPath+"?notice=created")
		return
	}
	redirect(w, r, memberPath(created.ID)+"?notice=created")
}

func (s *Server) editMember(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	member, err := s.api.GetTeamMember(r.Context(), id)
	if s.gone(r) || s.expired(w, r) {
		return
	}
	if errors.Is(err, client.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		view := profileView{base: s.base(r, "Team member", "team")}
		view.Member = Failed(err, r.URL.Path, models.TeamMember{})
		s.render(w, r, http.StatusOK, "profile", view, SectionError)
		return
	}

	view := memberFormView{
		base:   s.base(r, "Edit "+member.Name, "team"),
		ID:     member.ID,
		Form:   MemberFormFrom(member),
		Action: memberPath(member.ID),
	}
	s.render(w, r, http.StatusOK, "member_form", view)
}

func (s *Server) updateMember(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	view := memberFormView{
		base:   s.base(r, "Edit team member", "team"),
		ID:     id,
		Form:   ParseMemberForm(r.PostForm),
		Action: memberPath(id),
	}
	if err := view.Form.Errors.Err(); err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, "member_form", view, SectionError)
		return
	}

	if _, err := s.api.UpdateTeamMember(r.Context(), id, view.Form.Input()); err != nil {
		if s.failWrite(w, r, err) {
			return
		}
		view.Error = "Failed to save changes. Please try again."
		s.render(w, r, http.StatusBadGateway, "member_form", view, SectionError)
		return
	}
	s.lists.reset()
	redirect(w, r, memberPath(id)+"?notice=updated")
}

func (s *Server) deleteMember(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.api.DeleteTeamMember(r.Context(), id); err != nil {
		if s.failWrite(w, r, err) {
			return
		}
		redirect(w, r, memberPath(id)+"?error=delete")
		return
	}
	s.lists.reset()
	redirect(w, r, teamPath+"?notice=deleted")
}
