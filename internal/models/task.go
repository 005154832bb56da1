package models

import "time"

// UserAgent is sent with every upstream request.
const UserAgent = "athena-console/1.0"

// TaskStatus is an open set: values outside the known constants are kept and rendered generically.
type TaskStatus string

const (
	StatusOpen       TaskStatus = "open"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusOverdue    TaskStatus = "overdue"
	StatusBlocked    TaskStatus = "blocked"
	StatusCritical   TaskStatus = "critical"
)

// KnownStatuses lists statuses offered by filter dropdowns, in display order.
var KnownStatuses = []TaskStatus{
	StatusOpen, StatusInProgress, StatusOverdue, StatusBlocked, StatusCritical, StatusCompleted,
}

func (s TaskStatus) IsKnown() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusCompleted, StatusOverdue, StatusBlocked, StatusCritical:
		return true
	default:
		return false
	}
}

// Label returns a human-readable label, e.g. "in_progress" -> "In Progress".
func (s TaskStatus) Label() string {
	return humanize(string(s))
}

type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

var KnownPriorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

func (p TaskPriority) IsKnown() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

func (p TaskPriority) Label() string {
	return humanize(string(p))
}

// Task is the canonical task record. ID is always the resolved canonical identifier.
type Task struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	AssignedTo   string       `json:"assignedTo,omitempty"`
	AssigneeName string       `json:"assignedToName,omitempty"`
	Status       TaskStatus   `json:"status"`
	Priority     TaskPriority `json:"priority"`
	StartDate    *time.Time   `json:"startDate,omitempty"`
	DueDate      *time.Time   `json:"dueDate,omitempty"`
	CreatedAt    *time.Time   `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time   `json:"updatedAt,omitempty"`
	LastRemark   string       `json:"lastRemark,omitempty"`
	LastRemarkAt *time.Time   `json:"lastRemarkAt,omitempty"`
	Attachments  []string     `json:"attachments,omitempty"`
}

// TaskInput is the body of POST /tasks.
type TaskInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	AssignedTo  string       `json:"assignedTo"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	StartDate   string       `json:"startDate,omitempty"`
	DueDate     string       `json:"dueDate"`
}

// TaskPatch is the body of PATCH /tasks/{id}. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	AssignedTo  *string       `json:"assignedTo,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	StartDate   *string       `json:"startDate,omitempty"`
	DueDate     *string       `json:"dueDate,omitempty"`
}

// ListMeta is the pagination metadata returned with a task page.
type ListMeta struct {
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	Total      int    `json:"total"`
	TotalPages int    `json:"totalPages"`
	SortBy     string `json:"sortBy,omitempty"`
	SortDir    string `json:"sortDir,omitempty"`
}

// TaskPage is one page of tasks plus its metadata. Paged is false when the API answered with a bare array,
// in which case Tasks is the whole unfiltered collection and Meta is empty.
type TaskPage struct {
	Tasks []Task
	Meta  ListMeta
	Paged bool
}
