package web

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/UnknownOlympus/athena/internal/insights"
	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/normalize"
	"golang.org/x/sync/errgroup"
)

type dashboardView struct {
	base
	Summary Section[insights.Summary]
	// MaxStatus and MaxPriority scale the histogram bars.
	MaxStatus   int
	MaxPriority int
}

// loadBoard fetches every task and the team concurrently and joins assignee names.
func (s *Server) loadBoard(ctx context.Context) ([]models.Task, []models.TeamMember, error) {
	var (
		tasks   []models.Task
		members []models.TeamMember
	)
	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		var err error
		tasks, err = s.api.ListAllTasks(gctx)
		if err != nil {
			return fmt.Errorf("failed to load tasks: %w", err)
		}
		return nil
	})
	grp.Go(func() error {
		var err error
		members, err = s.api.ListTeamMembers(gctx)
		if err != nil {
			return fmt.Errorf("failed to load team members: %w", err)
		}
		return nil
	})
	if err := grp.Wait(); err != nil {
		return nil, nil, err
	}
	return normalize.AttachAssigneeNames(tasks, members), members, nil
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	tasks, members, err := s.loadBoard(r.Context())
	if s.gone(r) || s.expired(w, r) {
		return
	}

	view := dashboardView{base: s.base(r, "Dashboard", "dashboard")}
	if err != nil {
		s.log.WarnContext(r.Context(), "Dashboard data unavailable", sl.Err(err))
		view.Summary = Failed(err, r.URL.Path, insights.Summary{})
	} else {
		summary := insights.Dashboard(tasks, members, s.now())
		view.Summary = Loaded(summary, len(tasks) == 0)
		view.MaxStatus = maxBucket(summary.ByStatus)
		view.MaxPriority = maxBucket(summary.ByPriority)
	}
	s.render(w, r, http.StatusOK, "dashboard", view, view.Summary.State)
}

func maxBucket(h insights.Histogram) int {
	top := 1
	for _, b := range h.Buckets {
		top = max(top, b.Count)
	}
	return top
}

type searchView struct {
	base
	Query   string
	Results Section[SearchResults]
}

type SearchResults struct {
	Tasks   []models.Task
	Members []models.TeamMember
}

// search matches the query case-insensitively against tasks and team members, fetched once per request.
func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	view := searchView{base: s.base(r, "Search", ""), Query: q}
	if q == "" {
		view.Results = Loaded(SearchResults{}, true)
		s.render(w, r, http.StatusOK, "search", view, view.Results.State)
		return
	}

	tasks, members, err := s.loadBoard(r.Context())
	if s.gone(r) || s.expired(w, r) {
		return
	}
	if err != nil {
		view.Results = Failed(err, r.URL.RequestURI(), SearchResults{})
	} else {
		res := Search(tasks, members, q)
		view.Results = Loaded(res, len(res.Tasks) == 0 && len(res.Members) == 0)
	}
	s.render(w, r, http.StatusOK, "search", view, view.Results.State)
}

// Search filters tasks by title, description and assignee name, and members by name, designation and
// department.
func Search(tasks []models.Task, members []models.TeamMember, q string) SearchResults {
	needle := strings.ToLower(strings.TrimSpace(q))
	matches := func(fields ...string) bool {
		return slices.ContainsFunc(fields, func(f string) bool {
			return strings.Contains(strings.ToLower(f), needle)
		})
	}

	res := SearchResults{Tasks: []models.Task{}, Members: []models.TeamMember{}}
	if needle == "" {
		return res
	}
	for _, t := range tasks {
		if matches(t.Title, t.Description, t.AssigneeName) {
			res.Tasks = append(res.Tasks, t)
		}
	}
	for _, m := range members {
		if matches(m.Name, m.Designation, m.Department) {
			res.Members = append(res.Members, m)
		}
	}
	return res
}
