// Package insights computes dashboard and per-person statistics from in-memory task collections.
// Nothing here performs I/O; every time-dependent rule takes an explicit now.
package insights

import (
	"math"
	"slices"
	"time"

	"github.com/UnknownOlympus/athena/internal/lib/format"
	"github.com/UnknownOlympus/athena/internal/models"
)

const (
	staleAfterDays   = 3
	completedWindow  = 7
	defaultUrgentCap = 5
)

// StatusBuckets and PriorityBuckets fix the histogram order.
var (
	StatusBuckets = []models.TaskStatus{
		models.StatusOpen, models.StatusInProgress, models.StatusOverdue, models.StatusCompleted, models.StatusCritical,
	}
	PriorityBuckets = []models.TaskPriority{
		models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityCritical,
	}
	pendingStatuses = []models.TaskStatus{models.StatusOpen, models.StatusInProgress, models.StatusOverdue}
)

// IsOverdue reports whether the task is flagged overdue or its due date has passed without completion.
// The two conditions may disagree; either one is enough.
func IsOverdue(t models.Task, now time.Time) bool {
	if t.Status == models.StatusOverdue {
		return true
	}
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != models.StatusCompleted
}

// IsStale reports whether the task has not been updated for at least three whole days.
func IsStale(t models.Task, now time.Time) bool {
	if t.UpdatedAt == nil {
		return false
	}
	return format.DaysBetween(*t.UpdatedAt, now) >= staleAfterDays
}

// CompletedThisWeek reports completed tasks updated within the past seven whole days.
func CompletedThisWeek(t models.Task, now time.Time) bool {
	if t.Status != models.StatusCompleted || t.UpdatedAt == nil {
		return false
	}
	return format.DaysBetween(*t.UpdatedAt, now) <= completedWindow
}

// Bucket is one histogram bar.
type Bucket struct {
	Key   string
	Label string
	Count int
}

// Histogram holds fixed buckets plus the number of tasks whose value fell outside them.
type Histogram struct {
	Buckets []Bucket
	Other   int
}

// Get returns the count of the named bucket.
func (h Histogram) Get(key string) int {
	for _, b := range h.Buckets {
		if b.Key == key {
			return b.Count
		}
	}
	return 0
}

// Map returns bucket counts by key. A non-zero Other count is stored under "other".
func (h Histogram) Map() map[string]int {
	out := make(map[string]int, len(h.Buckets)+1)
	for _, b := range h.Buckets {
		out[b.Key] = b.Count
	}
	if h.Other > 0 {
		out["other"] = h.Other
	}
	return out
}

// Total sums the fixed buckets.
func (h Histogram) Total() int {
	total := 0
	for _, b := range h.Buckets {
		total += b.Count
	}
	return total
}

func StatusHistogram(tasks []models.Task) Histogram {
	hist := Histogram{Buckets: make([]Bucket, len(StatusBuckets))}
	index := make(map[models.TaskStatus]int, len(StatusBuckets))
	for i, s := range StatusBuckets {
		hist.Buckets[i] = Bucket{Key: string(s), Label: s.Label()}
		index[s] = i
	}
	for _, t := range tasks {
		if i, ok := index[t.Status]; ok {
			hist.Buckets[i].Count++
			continue
		}
		hist.Other++
	}
	return hist
}

func PriorityHistogram(tasks []models.Task) Histogram {
	hist := Histogram{Buckets: make([]Bucket, len(PriorityBuckets))}
	index := make(map[models.TaskPriority]int, len(PriorityBuckets))
	for i, p := range PriorityBuckets {
		hist.Buckets[i] = Bucket{Key: string(p), Label: p.Label()}
		index[p] = i
	}
	for _, t := range tasks {
		if i, ok := index[t.Priority]; ok {
			hist.Buckets[i].Count++
			continue
		}
		hist.Other++
	}
	return hist
}

// Urgent returns up to limit tasks: overdue first, then by ascending due date, tasks without a due date last.
func Urgent(tasks []models.Task, now time.Time, limit int) []models.Task {
	sorted := slices.Clone(tasks)
	slices.SortStableFunc(sorted, func(a, b models.Task) int {
		aOver, bOver := IsOverdue(a, now), IsOverdue(b, now)
		if aOver != bOver {
			if aOver {
				return -1
			}
			return 1
		}
		return compareDue(a.DueDate, b.DueDate)
	})
	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func compareDue(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}

// MemberLoad pairs a member with the number of tasks still pending on them.
type MemberLoad struct {
	Member  models.TeamMember
	Pending int
}

// PendingLoad counts open, in-progress and overdue tasks per member, busiest first.
func PendingLoad(members []models.TeamMember, tasks []models.Task) []MemberLoad {
	counts := make(map[string]int, len(members))
	for _, t := range tasks {
		if t.AssignedTo != "" && slices.Contains(pendingStatuses, t.Status) {
			counts[t.AssignedTo]++
		}
	}

	loads := make([]MemberLoad, 0, len(members))
	for _, m := range members {
		pending := 0
		if m.ID != "" {
			pending = counts[m.ID]
		}
		loads = append(loads, MemberLoad{Member: m, Pending: pending})
	}
	slices.SortStableFunc(loads, func(a, b MemberLoad) int {
		return b.Pending - a.Pending
	})
	return loads
}

// CompletionRate is completed/total as a rounded whole percent. Zero total yields zero.
func CompletionRate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// TeamCounts fills OpenTasks and OverdueTasks from the task list only where the API left them out.
func TeamCounts(members []models.TeamMember, tasks []models.Task) []models.TeamMember {
	open := make(map[string]int)
	overdue := make(map[string]int)
	for _, t := range tasks {
		switch t.Status {
		case models.StatusOpen, models.StatusInProgress:
			open[t.AssignedTo]++
		case models.StatusOverdue:
			overdue[t.AssignedTo]++
		}
	}

	out := make([]models.TeamMember, len(members))
	for i, m := range members {
		if m.OpenTasks == nil {
			n := open[m.ID]
			if m.ID == "" {
				n = 0
			}
			m.OpenTasks = &n
		}
		if m.OverdueTasks == nil {
			n := overdue[m.ID]
			if m.ID == "" {
				n = 0
			}
			m.OverdueTasks = &n
		}
		out[i] = m
	}
	return out
}

// KPIs are the dashboard tiles.
type KPIs struct {
	TotalOpen         int
	Overdue           int
	Critical          int
	CompletedThisWeek int
	Stale             int
}

// Summary is everything the dashboard renders.
type Summary struct {
	KPIs       KPIs
	ByStatus   Histogram
	ByPriority Histogram
	Urgent     []models.Task
	Load       []MemberLoad
}

func Dashboard(tasks []models.Task, members []models.TeamMember, now time.Time) Summary {
	var kpis KPIs
	for _, t := range tasks {
		if t.Status == models.StatusOpen {
			kpis.TotalOpen++
		}
		if IsOverdue(t, now) {
			kpis.Overdue++
		}
		if t.Priority == models.PriorityCritical {
			kpis.Critical++
		}
		if CompletedThisWeek(t, now) {
			kpis.CompletedThisWeek++
		}
		if IsStale(t, now) {
			kpis.Stale++
		}
	}

	return Summary{
		KPIs:       kpis,
		ByStatus:   StatusHistogram(tasks),
		ByPriority: PriorityHistogram(tasks),
		Urgent:     Urgent(tasks, now, defaultUrgentCap),
		Load:       PendingLoad(members, tasks),
	}
}

// MemberStats summarizes one person's assignments.
type MemberStats struct {
	Total          int
	Open           int
	Overdue        int
	InProgress     int
	Completed      int
	CompletionRate int
}

// NewMemberStats builds stats from already known counts and derives the completion rate.
func NewMemberStats(total, open, overdue, inProgress, completed int) MemberStats {
	return MemberStats{
		Total:          total,
		Open:           open,
		Overdue:        overdue,
		InProgress:     inProgress,
		Completed:      completed,
		CompletionRate: CompletionRate(completed, total),
	}
}

// StatsFromTasks counts a person's tasks by status.
func StatsFromTasks(tasks []models.Task) MemberStats {
	var open, overdue, inProgress, completed int
	for _, t := range tasks {
		switch t.Status {
		case models.StatusOpen:
			open++
		case models.StatusOverdue:
			overdue++
		case models.StatusInProgress:
			inProgress++
		case models.StatusCompleted:
			completed++
		}
	}
	return NewMemberStats(len(tasks), open, overdue, inProgress, completed)
}
