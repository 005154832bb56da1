package web

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/UnknownOlympus/athena/internal/lib/format"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/query"
)

// ErrValidation marks a form that failed a required-field check. Such forms are never sent upstream.
var ErrValidation = errors.New("validation failed")

const defaultDueInDays = 7

// FieldErrors maps a form field to its message.
type FieldErrors map[string]string

func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	fields := make([]string, 0, len(f))
	for k := range f {
		fields = append(fields, k)
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(query.NormalizeList(fields), ", "))
}

// summary joins the messages in field order, for forms that show one error line.
func (f FieldErrors) summary() string {
	fields := make([]string, 0, len(f))
	for k := range f {
		fields = append(fields, k)
	}
	slices.Sort(fields)
	msgs := make([]string, len(fields))
	for i, k := range fields {
		msgs[i] = f[k]
	}
	return strings.Join(msgs, ". ")
}

func (f FieldErrors) require(field, value, message string) {
	if strings.TrimSpace(value) == "" {
		f[field] = message
	}
}

// TaskForm is the create and edit form of a task.
type TaskForm struct {
	Title       string
	Description string
	AssignedTo  string
	Status      string
	Priority    string
	StartDate   string
	DueDate     string
	Errors      FieldErrors
}

// NewTaskForm returns the defaults of the create form: open, low priority, due in a week.
func NewTaskForm(now time.Time) TaskForm {
	due := now.AddDate(0, 0, defaultDueInDays)
	return TaskForm{
		Status:   string(models.StatusOpen),
		Priority: string(models.PriorityLow),
		DueDate:  format.ISODate(&due),
		Errors:   FieldErrors{},
	}
}

// TaskFormFrom prefills the edit form from a task.
func TaskFormFrom(t models.Task) TaskForm {
	return TaskForm{
		Title:       t.Title,
		Description: t.Description,
		AssignedTo:  t.AssignedTo,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		StartDate:   format.ISODate(t.StartDate),
		DueDate:     format.ISODate(t.DueDate),
		Errors:      FieldErrors{},
	}
}

func ParseTaskForm(values url.Values) TaskForm {
	f := TaskForm{
		Title:       strings.TrimSpace(values.Get("title")),
		Description: strings.TrimSpace(values.Get("description")),
		AssignedTo:  strings.TrimSpace(values.Get("assignedTo")),
		Status:      strings.TrimSpace(values.Get("status")),
		Priority:    strings.TrimSpace(values.Get("priority")),
		StartDate:   strings.TrimSpace(values.Get("startDate")),
		DueDate:     strings.TrimSpace(values.Get("dueDate")),
		Errors:      FieldErrors{},
	}

	f.Errors.require("title", f.Title, "Task name is required")
	f.Errors.require("assignedTo", f.AssignedTo, "Select an assignee")
	f.Errors.require("status", f.Status, "Select a status")
	f.Errors.require("dueDate", f.DueDate, "Due date is required")
	if f.Status != "" && !models.TaskStatus(f.Status).IsKnown() {
		f.Errors["status"] = "Unknown status"
	}
	if f.Priority == "" {
		f.Priority = string(models.PriorityLow)
	} else if !models.TaskPriority(f.Priority).IsKnown() {
		f.Errors["priority"] = "Unknown priority"
	}
	if _, ok := format.Parse(f.DueDate); f.DueDate != "" && !ok {
		f.Errors["dueDate"] = "Due date must be a date"
	}
	return f
}

// CanSubmit reports whether every required field is present.
func (f TaskForm) CanSubmit() bool {
	return f.Title != "" && f.AssignedTo != "" && f.Status != "" && f.DueDate != ""
}

func (f TaskForm) Input() models.TaskInput {
	return models.TaskInput{
		Title:       f.Title,
		Description: f.Description,
		AssignedTo:  f.AssignedTo,
		Status:      models.TaskStatus(f.Status),
		Priority:    models.TaskPriority(f.Priority),
		StartDate:   f.StartDate,
		DueDate:     f.DueDate,
	}
}

// Patch sends every editable field; the API applies last write wins.
func (f TaskForm) Patch() models.TaskPatch {
	status := models.TaskStatus(f.Status)
	priority := models.TaskPriority(f.Priority)
	return models.TaskPatch{
		Title:       &f.Title,
		Description: &f.Description,
		AssignedTo:  &f.AssignedTo,
		Status:      &status,
		Priority:    &priority,
		StartDate:   &f.StartDate,
		DueDate:     &f.DueDate,
	}
}

// MemberForm is the create and edit form of a team member.
type MemberForm struct {
	Name        string
	Designation string
	Department  string
	Email       string
	Active      bool
	Errors      FieldErrors
}

func MemberFormFrom(m models.TeamMember) MemberForm {
	return MemberForm{
		Name:        m.Name,
		Designation: m.Designation,
		Department:  m.Department,
		Email:       m.Email,
		Active:      m.IsActive == nil || *m.IsActive,
		Errors:      FieldErrors{},
	}
}

func ParseMemberForm(values url.Values) MemberForm {
	f := MemberForm{
		Name:        strings.TrimSpace(values.Get("name")),
		Designation: strings.TrimSpace(values.Get("designation")),
		Department:  strings.TrimSpace(values.Get("department")),
		Email:       strings.TrimSpace(values.Get("email")),
		Active:      values.Get("isActive") != "false",
		Errors:      FieldErrors{},
	}

	f.Errors.require("name", f.Name, "Name is required")
	f.Errors.require("designation", f.Designation, "Designation is required")
	f.Errors.require("email", f.Email, "Email is required")
	if f.Email != "" && !isValidEmail(f.Email) {
		f.Errors["email"] = "Enter a valid email address"
	}
	return f
}

func (f MemberForm) CanSubmit() bool {
	return f.Name != "" && f.Designation != "" && isValidEmail(f.Email)
}

func (f MemberForm) Input() models.TeamMemberInput {
	active := f.Active
	return models.TeamMemberInput{
		Name:        f.Name,
		Designation: f.Designation,
		Department:  f.Department,
		Email:       f.Email,
		IsActive:    &active,
	}
}

// isValidEmail accepts a bare address only, not a display-name form.
func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// MomForm is the create and edit form of a minutes of meeting record.
type MomForm struct {
	Title       string
	MeetingDate string
	Attendees   string
	RawNotes    string
	AISummary   string
	Attachments []models.MomAttachment
	Errors      FieldErrors
}

func MomFormFrom(m models.Mom) MomForm {
	return MomForm{
		Title:       m.Title,
		MeetingDate: format.ISODate(m.MeetingDate),
		Attendees:   strings.Join(m.Attendees, ", "),
		RawNotes:    m.RawNotes,
		AISummary:   m.AISummary,
		Attachments: m.Attachments,
		Errors:      FieldErrors{},
	}
}

func ParseMomForm(values url.Values) MomForm {
	f := MomForm{
		Title:       strings.TrimSpace(values.Get("title")),
		MeetingDate: strings.TrimSpace(values.Get("meetingDate")),
		Attendees:   strings.TrimSpace(values.Get("attendees")),
		RawNotes:    strings.TrimSpace(values.Get("rawNotes")),
		AISummary:   strings.TrimSpace(values.Get("aiSummary")),
		Errors:      FieldErrors{},
	}
	for _, u := range values["attachment"] {
		if u = strings.TrimSpace(u); u != "" {
			f.Attachments = append(f.Attachments, models.MomAttachment{FileURL: u})
		}
	}

	f.Errors.require("title", f.Title, "Title is required")
	f.Errors.require("meetingDate", f.MeetingDate, "Meeting date is required")
	f.Errors.require("rawNotes", f.RawNotes, "Notes are required")
	if _, ok := format.Parse(f.MeetingDate); f.MeetingDate != "" && !ok {
		f.Errors["meetingDate"] = "Meeting date must be a date"
	}
	return f
}

func (f MomForm) CanSubmit() bool {
	return f.Title != "" && f.MeetingDate != "" && f.RawNotes != ""
}

// AttendeeList splits the comma or newline separated attendees field.
func (f MomForm) AttendeeList() []string {
	fields := strings.FieldsFunc(f.Attendees, func(r rune) bool { return r == ',' || r == '\n' })
	out := make([]string, 0, len(fields))
	for _, a := range fields {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

func (f MomForm) Input() models.MomInput {
	attachments := f.Attachments
	if attachments == nil {
		attachments = []models.MomAttachment{}
	}
	return models.MomInput{
		Title:       f.Title,
		MeetingDate: f.MeetingDate,
		Attendees:   f.AttendeeList(),
		RawNotes:    f.RawNotes,
		Attachments: attachments,
		AISummary:   f.AISummary,
	}
}

// UserForm creates or updates an operator account. The password is only required on create.
type UserForm struct {
	Name     string
	Email    string
	Role     string
	Password string
	Errors   FieldErrors
}

func ParseUserForm(values url.Values, creating bool) UserForm {
	f := UserForm{
		Name:     strings.TrimSpace(values.Get("name")),
		Email:    strings.TrimSpace(values.Get("email")),
		Role:     strings.TrimSpace(values.Get("role")),
		Password: values.Get("password"),
		Errors:   FieldErrors{},
	}

	f.Errors.require("name", f.Name, "Name is required")
	f.Errors.require("email", f.Email, "Email is required")
	if f.Email != "" && !isValidEmail(f.Email) {
		f.Errors["email"] = "Enter a valid email address"
	}
	if creating {
		f.Errors.require("password", f.Password, "Password is required")
	}
	return f
}

func (f UserForm) Input() models.UserInput {
	return models.UserInput{Name: f.Name, Email: f.Email, Role: f.Role, Password: f.Password}
}
