package query

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/normalize"
	"golang.org/x/sync/errgroup"
)

// TaskSource is the part of the API client the controller needs.
type TaskSource interface {
	ListTasks(ctx context.Context, params url.Values) (models.TaskPage, error)
	ListTeamMembers(ctx context.Context) ([]models.TeamMember, error)
}

// Result is what a list view renders.
type Result struct {
	Tasks   []models.Task
	Meta    models.ListMeta
	State   State
	Members []models.TeamMember
	// Stale is set when the result is the last good one, returned alongside a fetch error.
	Stale bool
}

// Controller loads task pages for one list view. The team member reference list is fetched at most once per
// controller and reused for name joins and filter options.
type Controller struct {
	src  TaskSource
	opts Options

	mu            sync.Mutex
	members       []models.TeamMember
	membersLoaded bool
	last          *Result
}

func NewController(src TaskSource, opts Options) *Controller {
	return &Controller{src: src, opts: opts}
}

// Options returns the options the controller was created with.
func (c *Controller) Options() Options {
	return c.opts
}

// Members returns the memoized team member list, fetching it on first use. A failed fetch is not memoized.
func (c *Controller) Members(ctx context.Context) ([]models.TeamMember, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.membersLoaded {
		return c.members, nil
	}
	members, err := c.src.ListTeamMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load team members: %w", err)
	}
	c.members = members
	c.membersLoaded = true
	return members, nil
}

// Load fetches the page described by state. When the requested page lies beyond the last page the state is
// clamped and the clamped page is fetched instead. On failure the previous result, if any, is returned marked
// Stale together with the error.
func (c *Controller) Load(ctx context.Context, state State) (Result, error) {
	if c.opts.LockedAssignee != "" {
		state.Assignee = []string{c.opts.LockedAssignee}
	}

	page, members, err := c.fetch(ctx, state)
	if err == nil && page.Meta.Page != 0 && page.Meta.Page != state.Page {
		state.Page = page.Meta.Page
	}
	if err == nil {
		if clamped := state.Clamp(page.Meta.Total); clamped.Page != state.Page {
			state = clamped
			page, members, err = c.fetch(ctx, state)
		}
	}
	if err != nil {
		return c.fallback(state), err
	}

	res := Result{
		Tasks:   normalize.AttachAssigneeNames(page.Tasks, members),
		Meta:    page.Meta,
		State:   state,
		Members: members,
	}

	c.mu.Lock()
	c.last = &res
	c.mu.Unlock()

	return res, nil
}

func (c *Controller) fetch(ctx context.Context, state State) (models.TaskPage, []models.TeamMember, error) {
	var (
		page    models.TaskPage
		members []models.TeamMember
	)

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		var err error
		page, err = c.src.ListTasks(gctx, state.APIValues())
		if err != nil {
			return fmt.Errorf("failed to load tasks: %w", err)
		}
		return nil
	})
	grp.Go(func() error {
		var err error
		members, err = c.Members(gctx)
		return err
	})
	if err := grp.Wait(); err != nil {
		return models.TaskPage{}, nil, err
	}

	if !page.Paged {
		page, _ = Apply(page.Tasks, state)
	}
	page.Meta = completeMeta(page.Meta, state)

	return page, members, nil
}

// completeMeta fills fields an upstream page may leave out.
func completeMeta(meta models.ListMeta, state State) models.ListMeta {
	if meta.Page == 0 {
		meta.Page = state.Page
	}
	if meta.PageSize == 0 {
		meta.PageSize = state.PageSize
	}
	if meta.TotalPages == 0 {
		meta.TotalPages = TotalPages(meta.Total, meta.PageSize)
	}
	if meta.SortBy == "" {
		meta.SortBy = string(state.SortBy)
	}
	if meta.SortDir == "" {
		meta.SortDir = string(state.SortDir)
	}
	return meta
}

func (c *Controller) fallback(state State) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last == nil {
		return Result{State: state, Members: c.members}
	}
	res := *c.last
	res.Stale = true
	return res
}
