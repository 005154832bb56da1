package web

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/query"
)

// multiParams are sent by filter forms as repeated values and kept in the URL comma-joined.
var multiParams = []string{query.ParamStatus, query.ParamPriority, query.ParamMember}

// collapseMulti joins repeated multi-value parameters into the comma form the list state reads.
func collapseMulti(values url.Values) url.Values {
	out := url.Values{}
	for k, v := range values {
		out[k] = v
	}
	for _, p := range multiParams {
		if vs := out[p]; len(vs) > 1 {
			out.Set(p, strings.Join(vs, ","))
		}
	}
	return out
}

type sortColumn struct {
	Label string
	URL   string
	Dir   query.SortDir
}

type pageLink struct {
	Number  int
	URL     string
	Current bool
}

type sizeOption struct {
	Size     int
	URL      string
	Selected bool
}

type statusToggle struct {
	Status models.TaskStatus
	URL    string
	Active bool
}

// taskTable is the rendered form of a task list result.
type taskTable struct {
	Tasks     []models.Task
	Meta      models.ListMeta
	State     query.State
	Members   []models.TeamMember
	Locked    bool
	Filtered  bool
	Canonical string
	Columns   []sortColumn
	Pages     []pageLink
	Prev      string
	Next      string
	Sizes     []sizeOption
	Toggles   []statusToggle
	Stale     bool
}

func (t taskTable) StatusSelected(v models.TaskStatus) bool {
	return slices.Contains(t.State.Status, string(v))
}

func (t taskTable) PrioritySelected(v models.TaskPriority) bool {
	return slices.Contains(t.State.Priority, string(v))
}

func (t taskTable) MemberSelected(id string) bool {
	return slices.Contains(t.State.Assignee, id)
}

// buildTable derives every link of a list view from the applied state. Links are relative to basePath and
// keep unrelated parameters of base.
func buildTable(basePath string, base url.Values, res query.Result, opts query.Options) taskTable {
	link := func(s query.State) string {
		if qs := s.QueryString(base, opts); qs != "" {
			return basePath + "?" + qs
		}
		return basePath
	}

	st := res.State
	t := taskTable{
		Tasks:     res.Tasks,
		Meta:      res.Meta,
		State:     st,
		Members:   res.Members,
		Locked:    opts.LockedAssignee != "",
		Filtered:  st.HasFilters(opts),
		Canonical: link(st),
		Stale:     res.Stale,
	}

	for _, c := range []struct {
		label string
		field query.SortField
	}{{"Task", query.SortTitle}, {"Due", query.SortDueDate}, {"Updated", query.SortUpdatedAt}} {
		t.Columns = append(t.Columns, sortColumn{Label: c.label, URL: link(st.ToggleSort(c.field)), Dir: st.SortDirFor(c.field)})
	}

	totalPages := max(1, res.Meta.TotalPages)
	for n := 1; n <= totalPages; n++ {
		t.Pages = append(t.Pages, pageLink{Number: n, URL: link(st.SetPage(n)), Current: n == st.Page})
	}
	if st.Page > 1 {
		t.Prev = link(st.SetPage(st.Page - 1))
	}
	if st.Page < totalPages {
		t.Next = link(st.SetPage(st.Page + 1))
	}
	for _, size := range query.PageSizes {
		t.Sizes = append(t.Sizes, sizeOption{Size: size, URL: link(st.SetPageSize(size)), Selected: size == st.PageSize})
	}
	for _, status := range models.KnownStatuses {
		t.Toggles = append(t.Toggles, statusToggle{
			Status: status,
			URL:    link(st.ToggleStatus(string(status))),
			Active: len(st.Status) == 1 && st.Status[0] == string(status),
		})
	}
	return t
}

// PageLabel is "page of pages" for the pager.
func (t taskTable) PageLabel() string {
	return "Page " + strconv.Itoa(t.State.Page) + " of " + strconv.Itoa(max(1, t.Meta.TotalPages))
}

// listCache keeps one list controller per viewer and view, so the team reference list is fetched once and
// the last good page survives a failed reload.
type listCache struct {
	mu    sync.Mutex
	src   query.TaskSource
	lists map[listKey]*query.Controller
}

type listKey struct {
	viewer string
	view   string
}

func newListCache(src query.TaskSource) *listCache {
	return &listCache{src: src, lists: make(map[listKey]*query.Controller)}
}

func (c *listCache) controller(viewer, view string, opts query.Options) *query.Controller {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := listKey{viewer: viewer, view: view}
	ctrl, ok := c.lists[key]
	if !ok {
		ctrl = query.NewController(c.src, opts)
		c.lists[key] = ctrl
	}
	return ctrl
}

// forget drops a viewer's controllers.
func (c *listCache) forget(viewer string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.lists {
		if key.viewer == viewer {
			delete(c.lists, key)
		}
	}
}

// reset drops every controller, as after the team list changed.
func (c *listCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lists = make(map[listKey]*query.Controller)
}
