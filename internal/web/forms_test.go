package web_test

import (
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/UnknownOlympus/athena/internal/client"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaskForm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values url.Values
		errs   []string
	}{
		{
			name:   "complete",
			values: url.Values{"title": {"Deck"}, "assignedTo": {"tm-1"}, "status": {"open"}, "dueDate": {"2026-03-20"}},
		},
		{
			name:   "missing required",
			values: url.Values{"title": {"  "}},
			errs:   []string{"title", "assignedTo", "status", "dueDate"},
		},
		{
			name: "unknown enums and bad date",
			values: url.Values{
				"title": {"Deck"}, "assignedTo": {"tm-1"}, "status": {"later"}, "priority": {"urgent"}, "dueDate": {"soon"},
			},
			errs: []string{"status", "priority", "dueDate"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			form := web.ParseTaskForm(tt.values)
			if len(tt.errs) == 0 {
				require.NoError(t, form.Errors.Err())
				assert.True(t, form.CanSubmit())
				return
			}
			err := form.Errors.Err()
			require.ErrorIs(t, err, web.ErrValidation)
			for _, field := range tt.errs {
				assert.Contains(t, form.Errors, field)
			}
		})
	}
}

func TestTaskFormDefaults(t *testing.T) {
	t.Parallel()

	form := web.NewTaskForm(fixedNow)
	assert.Equal(t, "open", form.Status)
	assert.Equal(t, "low", form.Priority)
	assert.Equal(t, "2026-03-17", form.DueDate)
	assert.False(t, form.CanSubmit())

	parsed := web.ParseTaskForm(url.Values{"title": {"X"}, "assignedTo": {"tm-1"}, "status": {"open"}, "dueDate": {"2026-03-20"}})
	assert.Equal(t, models.PriorityLow, parsed.Input().Priority)
}

func TestTaskFormPatch(t *testing.T) {
	t.Parallel()

	form := web.ParseTaskForm(url.Values{
		"title": {"Deck"}, "assignedTo": {"tm-2"}, "status": {"in_progress"}, "priority": {"high"}, "dueDate": {"2026-03-20"},
	})
	patch := form.Patch()
	require.NotNil(t, patch.Title)
	assert.Equal(t, "Deck", *patch.Title)
	require.NotNil(t, patch.Status)
	assert.Equal(t, models.StatusInProgress, *patch.Status)
	require.NotNil(t, patch.AssignedTo)
	assert.Equal(t, "tm-2", *patch.AssignedTo)
}

func TestParseMemberForm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		valid bool
	}{
		{"kabir@athena.local", true},
		{"Kabir <kabir@athena.local>", false},
		{"kabir", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			t.Parallel()

			form := web.ParseMemberForm(url.Values{"name": {"Kabir"}, "designation": {"PM"}, "email": {tt.email}})
			if tt.valid {
				assert.NoError(t, form.Errors.Err())
			} else {
				assert.Contains(t, form.Errors, "email")
			}
		})
	}
}

func TestMemberFormActive(t *testing.T) {
	t.Parallel()

	form := web.ParseMemberForm(url.Values{"name": {"A"}, "designation": {"B"}, "email": {"a@b.co"}, "isActive": {"false"}})
	in := form.Input()
	require.NotNil(t, in.IsActive)
	assert.False(t, *in.IsActive)

	form = web.ParseMemberForm(url.Values{"name": {"A"}, "designation": {"B"}, "email": {"a@b.co"}})
	assert.True(t, form.Active)
}

func TestParseMomForm(t *testing.T) {
	t.Parallel()

	form := web.ParseMomForm(url.Values{
		"title":       {"Sync"},
		"meetingDate": {"2026-03-09"},
		"attendees":   {"Kabir, Elena,\n Andre ,,"},
		"rawNotes":    {"Notes"},
		"attachment":  {"https://files/a.pdf", "", "https://files/b.pdf"},
	})
	require.NoError(t, form.Errors.Err())
	assert.Equal(t, []string{"Kabir", "Elena", "Andre"}, form.AttendeeList())

	in := form.Input()
	require.Len(t, in.Attachments, 2)
	assert.Equal(t, "https://files/b.pdf", in.Attachments[1].FileURL)

	empty := web.ParseMomForm(url.Values{"title": {"Sync"}})
	assert.False(t, empty.CanSubmit())
	assert.Contains(t, empty.Errors, "meetingDate")
	assert.Contains(t, empty.Errors, "rawNotes")
	assert.NotNil(t, empty.Input().Attachments)
}

func TestParseUserForm(t *testing.T) {
	t.Parallel()

	values := url.Values{"name": {"Analyst"}, "email": {"analyst@athena.local"}}
	assert.Contains(t, web.ParseUserForm(values, true).Errors, "password")
	assert.NoError(t, web.ParseUserForm(values, false).Errors.Err())
}

func TestSearchMatches(t *testing.T) {
	t.Parallel()

	tasks := []models.Task{
		{ID: "1", Title: "Board deck", AssigneeName: "Kabir"},
		{ID: "2", Title: "Memo", Description: "legal REVIEW"},
		{ID: "3", Title: "Calendar", AssigneeName: "Elena Graves"},
	}
	members := []models.TeamMember{
		{ID: "tm-1", Name: "Kabir", Designation: "PM"},
		{ID: "tm-2", Name: "Elena Graves", Department: "Review Board"},
	}

	res := web.Search(tasks, members, " review ")
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, "2", res.Tasks[0].ID)
	require.Len(t, res.Members, 1)
	assert.Equal(t, "tm-2", res.Members[0].ID)

	res = web.Search(tasks, members, "kabir")
	assert.Len(t, res.Tasks, 1)
	assert.Len(t, res.Members, 1)
}

func TestSectionStates(t *testing.T) {
	t.Parallel()

	assert.Equal(t, web.SectionEmpty, web.Loaded([]int{}, true).State)
	assert.Equal(t, web.SectionContent, web.Loaded([]int{1}, false).State)

	deferred := web.Deferred[[]int]("/tasks/1/audit")
	assert.True(t, deferred.Is("loading"))
	assert.Equal(t, "/tasks/1/audit", deferred.LoadURL)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"malformed", fmt.Errorf("decode: %w", client.ErrMalformedResponse), "could not be read"},
		{"api body", &client.APIError{StatusCode: 500, Body: "database offline"}, "database offline"},
		{"api bare", &client.APIError{StatusCode: 500}, "answered with an error"},
		{"transport", errors.New("dial tcp: refused"), "could not be reached"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := web.Failed(tt.err, "/retry", []int{7})
			assert.True(t, s.Is("error"))
			assert.Contains(t, s.Error, tt.want)
			assert.Equal(t, "/retry", s.RetryURL)
			assert.Equal(t, []int{7}, s.Data)
		})
	}
}

func TestMarkdownSanitizes(t *testing.T) {
	t.Parallel()

	md := web.NewMarkdown()
	out := string(md.Render("# Title\n\n[x](javascript:alert(1)) <img src=x onerror=alert(1)>\n\n| a | b |\n|---|---|\n| 1 | 2 |"))
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<table>")
	assert.NotContains(t, out, "javascript:")
	assert.NotContains(t, out, "onerror")
}
