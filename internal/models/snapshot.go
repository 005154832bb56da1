package models

import "time"

// Snapshot is the stored KPI picture of one calendar day (UTC).
type Snapshot struct {
	Date              time.Time      `json:"date"`
	TotalTasks        int            `json:"totalTasks"`
	TotalOpen         int            `json:"totalOpen"`
	Overdue           int            `json:"overdue"`
	Critical          int            `json:"critical"`
	CompletedThisWeek int            `json:"completedThisWeek"`
	Stale             int            `json:"stale"`
	CompletionRate    int            `json:"completionRate"`
	ByStatus          map[string]int `json:"byStatus"`
	ByPriority        map[string]int `json:"byPriority"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}
