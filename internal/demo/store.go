// Package demo is an in-memory rendition of the task API the console talks to. It backs local development and
// the end-to-end tests of the API client.
package demo

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/UnknownOlympus/athena/internal/lib/format"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/query"
	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrBadLogin     = errors.New("invalid email or password")
)

// Upload is a stored file.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Store holds every demo collection behind one lock.
type Store struct {
	mu      sync.RWMutex
	now     func() time.Time
	tasks   []models.Task
	members []models.TeamMember
	users   []models.User
	moms    []models.Mom
	remarks map[string][]models.Remark
	audit   []models.AuditLog
	uploads map[string]Upload
}

// NewStore returns a store seeded with the demo fixtures, dated relative to now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	s := &Store{
		now:     now,
		remarks: make(map[string][]models.Remark),
		uploads: make(map[string]Upload),
	}
	seed(s, now().UTC())
	return s
}

func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

func (s *Store) stamp() *time.Time {
	t := s.now().UTC()
	return &t
}

// Authenticate checks credentials against the seeded operators.
func (s *Store) Authenticate(email, password string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) && password == DemoPassword {
			if u.IsActive != nil && !*u.IsActive {
				return models.User{}, ErrBadLogin
			}
			return u, nil
		}
	}
	return models.User{}, ErrBadLogin
}

// User resolves an operator by id.
func (s *Store) User(id string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := slices.IndexFunc(s.users, func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return models.User{}, false
	}
	return s.users[i], true
}

// ListTasks applies the list parameters of GET /tasks server side.
func (s *Store) ListTasks(state query.State) (models.TaskPage, query.State) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return query.Apply(s.withNames(s.tasks), state)
}

// CountTasks counts the tasks matching the filters of state.
func (s *Store) CountTasks(state query.State) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(query.Filter(s.tasks, state))
}

func (s *Store) TasksByMember(memberID string) []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Task{}
	for _, t := range s.withNames(s.tasks) {
		if t.AssignedTo == memberID {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) Task(id string) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.taskIndex(id)
	if i < 0 {
		return models.Task{}, fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	return s.withNames(s.tasks[i : i+1])[0], nil
}

func (s *Store) CreateTask(in models.TaskInput, actor string) (models.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.Task{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	due, ok := format.Parse(in.DueDate)
	if !ok {
		return models.Task{}, fmt.Errorf("%w: due date %q", ErrInvalidInput, in.DueDate)
	}
	if in.Status == "" {
		in.Status = models.StatusOpen
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Status.IsKnown() || !in.Priority.IsKnown() {
		return models.Task{}, fmt.Errorf("%w: unknown status or priority", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.stamp()
	t := models.Task{
		ID:          newID("task"),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		AssignedTo:  in.AssignedTo,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     &due,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if start, ok := format.Parse(in.StartDate); ok {
		t.StartDate = &start
	}
	s.tasks = append(s.tasks, t)
	s.record("created", t.ID, actor, map[string]any{"title": t.Title})
	return s.withNames([]models.Task{t})[0], nil
}

// UpdateTask applies the non-nil fields of patch and records the changed fields in the audit log.
func (s *Store) UpdateTask(id string, patch models.TaskPatch, actor string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return models.Task{}, fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	t := s.tasks[i]
	changed := map[string]any{}

	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return models.Task{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		t.Title = strings.TrimSpace(*patch.Title)
		changed["title"] = t.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
		changed["description"] = t.Description
	}
	if patch.AssignedTo != nil {
		t.AssignedTo = *patch.AssignedTo
		changed["assignedTo"] = t.AssignedTo
	}
	if patch.Status != nil {
		if !patch.Status.IsKnown() {
			return models.Task{}, fmt.Errorf("%w: status %q", ErrInvalidInput, *patch.Status)
		}
		changed["status"] = map[string]any{"from": t.Status, "to": *patch.Status}
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		if !patch.Priority.IsKnown() {
			return models.Task{}, fmt.Errorf("%w: priority %q", ErrInvalidInput, *patch.Priority)
		}
		changed["priority"] = map[string]any{"from": t.Priority, "to": *patch.Priority}
		t.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		due, ok := format.Parse(*patch.DueDate)
		if !ok {
			return models.Task{}, fmt.Errorf("%w: due date %q", ErrInvalidInput, *patch.DueDate)
		}
		t.DueDate = &due
		changed["dueDate"] = *patch.DueDate
	}
	if patch.StartDate != nil {
		t.StartDate = nil
		if start, ok := format.Parse(*patch.StartDate); ok {
			t.StartDate = &start
		}
		changed["startDate"] = *patch.StartDate
	}

	t.UpdatedAt = s.stamp()
	s.tasks[i] = t
	s.record("updated", t.ID, actor, changed)
	return s.withNames([]models.Task{t})[0], nil
}

func (s *Store) AddAttachments(taskID string, urls []string, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(taskID)
	if i < 0 {
		return fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" && !slices.Contains(s.tasks[i].Attachments, u) {
			s.tasks[i].Attachments = append(s.tasks[i].Attachments, u)
		}
	}
	s.tasks[i].UpdatedAt = s.stamp()
	s.record("attachments_added", taskID, actor, map[string]any{"count": len(urls)})
	return nil
}

// AddRemark stores a remark and mirrors it onto the task's last remark fields.
func (s *Store) AddRemark(taskID string, remark models.Remark, actor models.User) (models.Remark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(taskID)
	if i < 0 {
		return models.Remark{}, fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	if remark.Type == "" {
		remark.Type = models.RemarkText
	}
	remark.ID = newID("r")
	remark.CreatedAt = s.stamp()
	remark.Author = actor.ID
	remark.AuthorName = actor.Name

	s.remarks[taskID] = append([]models.Remark{remark}, s.remarks[taskID]...)
	s.tasks[i].LastRemark = remark.Text
	s.tasks[i].LastRemarkAt = remark.CreatedAt
	s.tasks[i].UpdatedAt = remark.CreatedAt
	return remark, nil
}

func (s *Store) Remarks(taskID string) ([]models.Remark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.taskIndex(taskID) < 0 {
		return nil, fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	return slices.Clone(s.remarks[taskID]), nil
}

func (s *Store) AuditLogs(entityType, entityID string) []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.AuditLog{}
	for i := len(s.audit) - 1; i >= 0; i-- {
		a := s.audit[i]
		if (entityType == "" || a.EntityType == entityType) && (entityID == "" || a.EntityID == entityID) {
			out = append(out, a)
		}
	}
	return out
}

// record appends an audit entry. Callers hold the write lock.
func (s *Store) record(action, taskID, actor string, details map[string]any) {
	s.audit = append(s.audit, models.AuditLog{
		ID:          newID("audit"),
		Action:      action,
		EntityType:  "task",
		EntityID:    taskID,
		PerformedBy: actor,
		CreatedAt:   s.stamp(),
		Details:     details,
	})
}

func (s *Store) taskIndex(id string) int {
	return slices.IndexFunc(s.tasks, func(t models.Task) bool { return t.ID == id })
}

// withNames copies tasks with assignee names attached. Callers hold a lock.
func (s *Store) withNames(tasks []models.Task) []models.Task {
	out := slices.Clone(tasks)
	for i := range out {
		for _, m := range s.members {
			if m.ID == out[i].AssignedTo {
				out[i].AssigneeName = m.Name
				break
			}
		}
	}
	return out
}

// Members lists team members with their open and overdue task counts.
func (s *Store) Members() []models.TeamMember {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.TeamMember, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, s.withCounts(m))
	}
	return out
}

func (s *Store) Member(id string) (models.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.memberIndex(id)
	if i < 0 {
		return models.TeamMember{}, fmt.Errorf("team member %q: %w", id, ErrNotFound)
	}
	return s.withCounts(s.members[i]), nil
}

func (s *Store) CreateMember(in models.TeamMemberInput) (models.TeamMember, error) {
	if strings.TrimSpace(in.Name) == "" {
		return models.TeamMember{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	m := models.TeamMember{
		ID:          newID("tm"),
		Name:        strings.TrimSpace(in.Name),
		Designation: in.Designation,
		Department:  in.Department,
		Email:       in.Email,
		IsActive:    &active,
	}
	if m.Email == "" {
		m.Email = memberEmail(m.Name)
	}
	s.members = append(s.members, m)
	return s.withCounts(m), nil
}

func (s *Store) UpdateMember(id string, in models.TeamMemberInput) (models.TeamMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.memberIndex(id)
	if i < 0 {
		return models.TeamMember{}, fmt.Errorf("team member %q: %w", id, ErrNotFound)
	}
	m := s.members[i]
	if name := strings.TrimSpace(in.Name); name != "" {
		m.Name = name
	}
	if in.Designation != "" {
		m.Designation = in.Designation
	}
	if in.Department != "" {
		m.Department = in.Department
	}
	if in.Email != "" {
		m.Email = in.Email
	}
	if in.IsActive != nil {
		active := *in.IsActive
		m.IsActive = &active
	}
	s.members[i] = m
	return s.withCounts(m), nil
}

// DeleteMember removes a member. Tasks assigned to them keep the dangling reference.
func (s *Store) DeleteMember(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.memberIndex(id)
	if i < 0 {
		return fmt.Errorf("team member %q: %w", id, ErrNotFound)
	}
	s.members = slices.Delete(s.members, i, i+1)
	return nil
}

func (s *Store) memberIndex(id string) int {
	return slices.IndexFunc(s.members, func(m models.TeamMember) bool { return m.ID == id })
}

func (s *Store) withCounts(m models.TeamMember) models.TeamMember {
	var open, overdue int
	today := s.now().UTC().Truncate(24 * time.Hour)
	for _, t := range s.tasks {
		if t.AssignedTo != m.ID || t.Status == models.StatusCompleted {
			continue
		}
		open++
		if t.Status == models.StatusOverdue || (t.DueDate != nil && t.DueDate.Before(today)) {
			overdue++
		}
	}
	m.OpenTasks = &open
	m.OverdueTasks = &overdue
	return m
}

func (s *Store) Moms() []models.Mom {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Clone(s.moms)
	slices.SortStableFunc(out, func(a, b models.Mom) int {
		switch {
		case a.MeetingDate == nil && b.MeetingDate == nil:
			return 0
		case a.MeetingDate == nil:
			return 1
		case b.MeetingDate == nil:
			return -1
		default:
			return b.MeetingDate.Compare(*a.MeetingDate)
		}
	})
	return out
}

func (s *Store) Mom(id string) (models.Mom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.momIndex(id)
	if i < 0 {
		return models.Mom{}, fmt.Errorf("mom %q: %w", id, ErrNotFound)
	}
	return s.moms[i], nil
}

func (s *Store) CreateMom(in models.MomInput, actor string) (models.Mom, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.Mom{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := models.Mom{
		ID:        newID("mom"),
		CreatedBy: actor,
		CreatedAt: s.stamp(),
	}
	applyMom(&m, in, s.stamp())
	s.moms = append(s.moms, m)
	return m, nil
}

func (s *Store) UpdateMom(id string, in models.MomInput) (models.Mom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.momIndex(id)
	if i < 0 {
		return models.Mom{}, fmt.Errorf("mom %q: %w", id, ErrNotFound)
	}
	applyMom(&s.moms[i], in, s.stamp())
	return s.moms[i], nil
}

func (s *Store) DeleteMom(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.momIndex(id)
	if i < 0 {
		return fmt.Errorf("mom %q: %w", id, ErrNotFound)
	}
	s.moms = slices.Delete(s.moms, i, i+1)
	return nil
}

func (s *Store) momIndex(id string) int {
	return slices.IndexFunc(s.moms, func(m models.Mom) bool { return m.ID == id })
}

func applyMom(m *models.Mom, in models.MomInput, now *time.Time) {
	if title := strings.TrimSpace(in.Title); title != "" {
		m.Title = title
	}
	m.MeetingDate = nil
	if d, ok := format.Parse(in.MeetingDate); ok {
		m.MeetingDate = &d
	}
	m.Attendees = query.NormalizeList(in.Attendees)
	if m.Attendees == nil {
		m.Attendees = []string{}
	}
	m.RawNotes = in.RawNotes
	m.AISummary = in.AISummary
	m.Attachments = make([]models.MomAttachment, 0, len(in.Attachments))
	for _, a := range in.Attachments {
		if a.UploadedAt == nil {
			a.UploadedAt = now
		}
		m.Attachments = append(m.Attachments, a)
	}
}

func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.users)
}

func (s *Store) CreateUser(in models.UserInput) (models.User, error) {
	if strings.TrimSpace(in.Email) == "" || strings.TrimSpace(in.Name) == "" {
		return models.User{}, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, in.Email) {
			return models.User{}, fmt.Errorf("%w: email %q already registered", ErrInvalidInput, in.Email)
		}
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	role := in.Role
	if role == "" {
		role = "executive"
	}
	u := models.User{
		ID:        newID("u"),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Role:      role,
		IsActive:  &active,
		CreatedAt: s.stamp().Format(time.RFC3339),
	}
	s.users = append(s.users, u)
	return u, nil
}

func (s *Store) UpdateUser(id string, in models.UserInput) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.users, func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return models.User{}, fmt.Errorf("user %q: %w", id, ErrNotFound)
	}
	u := s.users[i]
	if in.Name != "" {
		u.Name = in.Name
	}
	if in.Email != "" {
		u.Email = in.Email
	}
	if in.Role != "" {
		u.Role = in.Role
	}
	if in.IsActive != nil {
		active := *in.IsActive
		u.IsActive = &active
	}
	u.UpdatedAt = s.stamp().Format(time.RFC3339)
	s.users[i] = u
	return u, nil
}

// DeleteUser deactivates the account; operators are never removed.
func (s *Store) DeleteUser(id string) error {
	inactive := false
	_, err := s.UpdateUser(id, models.UserInput{IsActive: &inactive})
	return err
}

// SaveUpload stores a file and returns its id.
func (s *Store) SaveUpload(u Upload) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.uploads[id] = u
	return id
}

func (s *Store) Upload(id string) (Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.uploads[id]
	if !ok {
		return Upload{}, fmt.Errorf("upload %q: %w", id, ErrNotFound)
	}
	return u, nil
}
