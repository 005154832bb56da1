package query

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/UnknownOlympus/athena/internal/models"
)

// Filter returns the tasks matching the state's filters, in input order.
func Filter(tasks []models.Task, s State) []models.Task {
	q := strings.ToLower(strings.TrimSpace(s.Q))
	from, hasFrom := dateBound(s.DueFrom)
	to, hasTo := dateBound(s.DueTo)

	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if q != "" && !strings.Contains(strings.ToLower(t.Title), q) {
			continue
		}
		if len(s.Status) > 0 && !slices.Contains(s.Status, string(t.Status)) {
			continue
		}
		if len(s.Priority) > 0 && !slices.Contains(s.Priority, string(t.Priority)) {
			continue
		}
		if len(s.Assignee) > 0 && !slices.Contains(s.Assignee, t.AssignedTo) {
			continue
		}
		if hasFrom || hasTo {
			if t.DueDate == nil {
				continue
			}
			day := truncateDay(*t.DueDate)
			if hasFrom && day.Before(from) {
				continue
			}
			if hasTo && day.After(to) {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// Sort orders tasks by the state's sort column. Tasks missing the sort value go last in either direction.
func Sort(tasks []models.Task, s State) []models.Task {
	sorted := slices.Clone(tasks)
	slices.SortStableFunc(sorted, func(a, b models.Task) int {
		var res int
		switch s.SortBy {
		case SortTitle:
			res = cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		case SortDueDate:
			if c, ok := compareMissing(a.DueDate, b.DueDate); ok {
				return c
			}
			res = a.DueDate.Compare(*b.DueDate)
		default:
			if c, ok := compareMissing(a.UpdatedAt, b.UpdatedAt); ok {
				return c
			}
			res = a.UpdatedAt.Compare(*b.UpdatedAt)
		}
		if s.SortDir == Desc {
			return -res
		}
		return res
	})
	return sorted
}

func compareMissing(a, b *time.Time) (int, bool) {
	switch {
	case a == nil && b == nil:
		return 0, true
	case a == nil:
		return 1, true
	case b == nil:
		return -1, true
	default:
		return 0, false
	}
}

// Apply filters, sorts and paginates an in-memory collection, clamping the page to the result.
// It returns the page and the state actually applied.
func Apply(tasks []models.Task, s State) (models.TaskPage, State) {
	matched := Sort(Filter(tasks, s), s)
	s = s.Clamp(len(matched))

	start := (s.Page - 1) * s.PageSize
	end := min(start+s.PageSize, len(matched))
	pageTasks := []models.Task{}
	if start < len(matched) {
		pageTasks = slices.Clone(matched[start:end])
	}

	return models.TaskPage{
		Tasks: pageTasks,
		Meta: models.ListMeta{
			Page:       s.Page,
			PageSize:   s.PageSize,
			Total:      len(matched),
			TotalPages: TotalPages(len(matched), s.PageSize),
			SortBy:     string(s.SortBy),
			SortDir:    string(s.SortDir),
		},
		Paged: true,
	}, s
}

func dateBound(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(isoDate, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
