// Package normalize is the boundary between upstream JSON records and the canonical models.
package normalize

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/athena/internal/lib/format"
	"github.com/UnknownOlympus/athena/internal/models"
)

// ErrNoCanonicalID is returned when a record carries neither id field and an API call needs one.
var ErrNoCanonicalID = errors.New("record has no canonical id")

// ResolveID prefers the primary id and falls back to the alternate one.
func ResolveID(primary, alternate string) (string, bool) {
	if id := strings.TrimSpace(primary); id != "" {
		return id, true
	}
	if id := strings.TrimSpace(alternate); id != "" {
		return id, true
	}
	return "", false
}

// RequireID returns the canonical id or ErrNoCanonicalID. Write paths must use it.
func RequireID(id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", ErrNoCanonicalID
	}
	return id, nil
}

// Key returns a stable list-rendering key: id, else the first non-empty fallback, else the index.
// The result is for rendering only and must never be sent to the API.
func Key(id string, index int, fallbacks ...string) string {
	if id != "" {
		return id
	}
	for _, f := range fallbacks {
		if f != "" {
			return f
		}
	}
	return strconv.Itoa(index)
}

func parseTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, ok := format.Parse(value)
	if !ok {
		return nil
	}
	return &t
}

func Task(w WireTask) models.Task {
	id, _ := ResolveID(w.ID, w.AltID)
	return models.Task{
		ID:           id,
		Title:        w.Title,
		Description:  w.Description,
		AssignedTo:   w.AssignedTo,
		AssigneeName: w.AssignedToName,
		Status:       models.TaskStatus(w.Status),
		Priority:     models.TaskPriority(w.Priority),
		StartDate:    parseTime(w.StartDate),
		DueDate:      parseTime(w.DueDate),
		CreatedAt:    parseTime(w.CreatedAt),
		UpdatedAt:    parseTime(w.UpdatedAt),
		LastRemark:   w.LastRemark,
		LastRemarkAt: parseTime(w.LastRemarkAt),
		Attachments:  w.Attachments,
	}
}

func Tasks(ws []WireTask) []models.Task {
	out := make([]models.Task, 0, len(ws))
	for _, w := range ws {
		out = append(out, Task(w))
	}
	return out
}

func TeamMember(w WireTeamMember) models.TeamMember {
	id, _ := ResolveID(w.ID, w.AltID)
	return models.TeamMember{
		ID:           id,
		Name:         w.Name,
		Designation:  w.Designation,
		Department:   w.Department,
		Email:        w.Email,
		IsActive:     w.IsActive,
		OpenTasks:    w.OpenTasks,
		OverdueTasks: w.OverdueTasks,
	}
}

func TeamMembers(ws []WireTeamMember) []models.TeamMember {
	out := make([]models.TeamMember, 0, len(ws))
	for _, w := range ws {
		out = append(out, TeamMember(w))
	}
	return out
}

func Remark(w WireRemark) models.Remark {
	id, _ := ResolveID(w.ID, w.AltID)
	author := w.Author
	if author == "" {
		author = w.CreatedBy
	}
	kind := models.RemarkType(w.Type)
	if kind == "" {
		kind = models.RemarkText
	}
	return models.Remark{
		ID:         id,
		Text:       w.Text,
		CreatedAt:  parseTime(w.CreatedAt),
		Author:     author,
		AuthorName: w.AuthorName,
		Type:       kind,
	}
}

func Remarks(ws []WireRemark) []models.Remark {
	out := make([]models.Remark, 0, len(ws))
	for _, w := range ws {
		out = append(out, Remark(w))
	}
	return out
}

func Mom(w WireMom) models.Mom {
	id, _ := ResolveID(w.ID, w.AltID)
	attachments := make([]models.MomAttachment, 0, len(w.Attachments))
	for _, a := range w.Attachments {
		if a.FileURL == "" {
			continue
		}
		attachments = append(attachments, models.MomAttachment{FileURL: a.FileURL, UploadedAt: parseTime(a.UploadedAt)})
	}
	attendees := w.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	return models.Mom{
		ID:            id,
		Title:         w.Title,
		MeetingDate:   parseTime(w.MeetingDate),
		Attendees:     attendees,
		RawNotes:      w.RawNotes,
		Attachments:   attachments,
		AISummary:     w.AISummary,
		AIExtractedAt: parseTime(w.AIExtractedAt),
		CreatedBy:     w.CreatedBy,
		CreatedAt:     parseTime(w.CreatedAt),
	}
}

func Moms(ws []WireMom) []models.Mom {
	out := make([]models.Mom, 0, len(ws))
	for _, w := range ws {
		out = append(out, Mom(w))
	}
	return out
}

func AuditLog(w WireAuditLog) models.AuditLog {
	id, _ := ResolveID(w.ID, w.AltID)
	return models.AuditLog{
		ID:          id,
		Action:      w.Action,
		EntityType:  w.EntityType,
		EntityID:    w.EntityID,
		PerformedBy: w.PerformedBy,
		CreatedAt:   parseTime(w.CreatedAt),
		Details:     w.Details,
	}
}

func AuditLogs(ws []WireAuditLog) []models.AuditLog {
	out := make([]models.AuditLog, 0, len(ws))
	for _, w := range ws {
		out = append(out, AuditLog(w))
	}
	return out
}

func User(w WireUser) models.User {
	id, _ := ResolveID(w.ID, w.AltID)
	return models.User{
		ID:        id,
		Name:      w.Name,
		Email:     w.Email,
		Role:      w.Role,
		IsActive:  w.IsActive,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func Users(ws []WireUser) []models.User {
	out := make([]models.User, 0, len(ws))
	for _, w := range ws {
		out = append(out, User(w))
	}
	return out
}

// Login normalizes a login response. The user id falls back to the token, as the console stores it.
func Login(w WireLoginResponse) models.LoginResult {
	res := models.LoginResult{Token: w.Token, ExpiresIn: w.ExpiresIn}
	if w.User != nil {
		res.UserID, _ = ResolveID(w.User.ID, w.User.AltID)
		res.UserName = w.User.Name
		res.UserEmail = w.User.Email
		res.UserRole = w.User.Role
	}
	if res.UserID == "" {
		res.UserID = w.Token
	}
	return res
}

// AttachAssigneeNames fills AssigneeName from the member list wherever the task did not carry one.
// References that match no member are left empty and render as unassigned.
func AttachAssigneeNames(tasks []models.Task, members []models.TeamMember) []models.Task {
	names := make(map[string]string, len(members))
	for _, m := range members {
		if m.ID == "" {
			continue
		}
		names[m.ID] = m.Name
	}

	out := make([]models.Task, len(tasks))
	for i, task := range tasks {
		if task.AssigneeName == "" && task.AssignedTo != "" {
			task.AssigneeName = names[task.AssignedTo]
		}
		out[i] = task
	}
	return out
}

// AssigneeLabel is the display name for a task's assignee.
func AssigneeLabel(t models.Task) string {
	if t.AssigneeName != "" {
		return t.AssigneeName
	}
	return "Unassigned"
}
