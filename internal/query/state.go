// Package query keeps task list view state (filters, sort, page) in sync with URL query parameters and maps it
// onto the upstream list API.
package query

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

type SortField string

const (
	SortTitle     SortField = "title"
	SortDueDate   SortField = "dueDate"
	SortUpdatedAt SortField = "updatedAt"
)

func (f SortField) valid() bool {
	return f == SortTitle || f == SortDueDate || f == SortUpdatedAt
}

type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

const (
	DefaultPageSize = 10
	DefaultSortBy   = SortUpdatedAt
	DefaultSortDir  = Desc
	isoDate         = "2006-01-02"
	unconstrained   = "all"
)

// PageSizes are the only accepted page sizes.
var PageSizes = []int{10, 20, 50, 100}

// URL parameter names.
const (
	ParamQuery    = "q"
	ParamStatus   = "status"
	ParamPriority = "priority"
	ParamMember   = "member"
	ParamDueFrom  = "dueFrom"
	ParamDueTo    = "dueTo"
	ParamSortBy   = "sortBy"
	ParamSortDir  = "sortDir"
	ParamPage     = "page"
	ParamPageSize = "pageSize"
)

// Options configure how a view embeds the list.
type Options struct {
	// LockedAssignee pins the assignee filter to one member, as on a person's profile page.
	// The member URL parameter is then ignored and not written.
	LockedAssignee string
}

// State is the complete, serializable view state of a task list.
type State struct {
	Q        string
	Status   []string
	Priority []string
	Assignee []string
	DueFrom  string
	DueTo    string
	SortBy   SortField
	SortDir  SortDir
	Page     int
	PageSize int
}

// Default is the state of a list with no parameters.
func Default(opts Options) State {
	s := State{SortBy: DefaultSortBy, SortDir: DefaultSortDir, Page: 1, PageSize: DefaultPageSize}
	if opts.LockedAssignee != "" {
		s.Assignee = []string{opts.LockedAssignee}
	}
	return s
}

// Parse reads a state from URL values. Invalid values fall back to defaults.
func Parse(values url.Values, opts Options) State {
	s := Default(opts)

	s.Q = strings.TrimSpace(values.Get(ParamQuery))
	s.Status = ParseList(values.Get(ParamStatus))
	s.Priority = ParseList(values.Get(ParamPriority))
	if opts.LockedAssignee == "" {
		s.Assignee = ParseList(values.Get(ParamMember))
	}
	s.DueFrom = parseDate(values.Get(ParamDueFrom))
	s.DueTo = parseDate(values.Get(ParamDueTo))

	if by := SortField(values.Get(ParamSortBy)); by.valid() {
		s.SortBy = by
	}
	if dir := SortDir(values.Get(ParamSortDir)); dir == Asc || dir == Desc {
		s.SortDir = dir
	}
	if page, err := strconv.Atoi(values.Get(ParamPage)); err == nil && page > 0 {
		s.Page = page
	}
	if size, err := strconv.Atoi(values.Get(ParamPageSize)); err == nil && slices.Contains(PageSizes, size) {
		s.PageSize = size
	}
	return s
}

// ParseList splits a comma-joined multi-value parameter, trimming and sorting entries.
// The literal "all" means unconstrained.
func ParseList(raw string) []string {
	if raw == "" {
		return nil
	}
	return NormalizeList(strings.Split(raw, ","))
}

// NormalizeList trims, drops empties and "all", deduplicates and sorts.
func NormalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || v == unconstrained {
			continue
		}
		out = append(out, v)
	}
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if _, err := time.Parse(isoDate, raw); err != nil {
		return ""
	}
	return raw
}

// Encode writes the state onto a copy of base. Parameters at their default are removed so that equal states
// produce equal URLs; unrelated parameters in base are preserved.
func (s State) Encode(base url.Values, opts Options) url.Values {
	out := url.Values{}
	for k, v := range base {
		out[k] = slices.Clone(v)
	}

	setParam := func(key, value, fallback string) {
		if value == "" || value == fallback {
			out.Del(key)
			return
		}
		out.Set(key, value)
	}
	setList := func(key string, values []string) {
		normalized := NormalizeList(values)
		if len(normalized) == 0 {
			out.Del(key)
			return
		}
		out.Set(key, strings.Join(normalized, ","))
	}

	setParam(ParamQuery, strings.TrimSpace(s.Q), "")
	setList(ParamStatus, s.Status)
	setList(ParamPriority, s.Priority)
	if opts.LockedAssignee == "" {
		setList(ParamMember, s.Assignee)
	} else {
		out.Del(ParamMember)
	}
	setParam(ParamDueFrom, s.DueFrom, "")
	setParam(ParamDueTo, s.DueTo, "")
	setParam(ParamSortBy, string(s.SortBy), string(DefaultSortBy))
	setParam(ParamSortDir, string(s.SortDir), string(DefaultSortDir))
	setParam(ParamPage, strconv.Itoa(s.Page), "1")
	setParam(ParamPageSize, strconv.Itoa(s.PageSize), strconv.Itoa(DefaultPageSize))

	return out
}

// QueryString is Encode rendered as a raw query, without the leading "?".
func (s State) QueryString(base url.Values, opts Options) string {
	return s.Encode(base, opts).Encode()
}

// Equal compares states with multi-value filters treated as sets and the search text trimmed.
func (s State) Equal(o State) bool {
	return strings.TrimSpace(s.Q) == strings.TrimSpace(o.Q) &&
		slices.Equal(NormalizeList(s.Status), NormalizeList(o.Status)) &&
		slices.Equal(NormalizeList(s.Priority), NormalizeList(o.Priority)) &&
		slices.Equal(NormalizeList(s.Assignee), NormalizeList(o.Assignee)) &&
		s.DueFrom == o.DueFrom && s.DueTo == o.DueTo &&
		s.SortBy == o.SortBy && s.SortDir == o.SortDir &&
		s.Page == o.Page && s.PageSize == o.PageSize
}

// HasFilters reports whether any filter narrows the result set. Sort and paging are not filters,
// and neither is a locked assignee.
func (s State) HasFilters(opts Options) bool {
	return s.Q != "" || len(s.Status) > 0 || len(s.Priority) > 0 ||
		(opts.LockedAssignee == "" && len(s.Assignee) > 0) ||
		s.DueFrom != "" || s.DueTo != ""
}

// APIValues maps the state onto the upstream GET /tasks parameters.
func (s State) APIValues() url.Values {
	v := url.Values{}
	if q := strings.TrimSpace(s.Q); q != "" {
		v.Set("q", q)
	}
	if list := NormalizeList(s.Status); len(list) > 0 {
		v.Set("status", strings.Join(list, ","))
	}
	if list := NormalizeList(s.Priority); len(list) > 0 {
		v.Set("priority", strings.Join(list, ","))
	}
	if list := NormalizeList(s.Assignee); len(list) > 0 {
		v.Set("assignedTo", strings.Join(list, ","))
	}
	if s.DueFrom != "" {
		v.Set("dueFrom", s.DueFrom)
	}
	if s.DueTo != "" {
		v.Set("dueTo", s.DueTo)
	}
	v.Set("sortBy", string(s.SortBy))
	v.Set("sortDir", string(s.SortDir))
	v.Set("page", strconv.Itoa(s.Page))
	v.Set("pageSize", strconv.Itoa(s.PageSize))
	return v
}

// TotalPages is ceil(total/pageSize), never less than one.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := (total + pageSize - 1) / pageSize
	return max(1, pages)
}

// Clamp moves the page back to the last valid one for the given total.
func (s State) Clamp(total int) State {
	last := TotalPages(total, s.PageSize)
	if s.Page > last {
		s.Page = last
	}
	if s.Page < 1 {
		s.Page = 1
	}
	return s
}
