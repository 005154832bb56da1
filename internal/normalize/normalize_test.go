package normalize_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveID(t *testing.T) {
	t.Parallel()

	id, ok := normalize.ResolveID("task-1", "abc123")
	assert.True(t, ok)
	assert.Equal(t, "task-1", id, "primary id must win")

	id, ok = normalize.ResolveID("", "abc123")
	assert.True(t, ok)
	assert.Equal(t, "abc123", id)

	id, ok = normalize.ResolveID("  ", "")
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestRequireID(t *testing.T) {
	t.Parallel()

	_, err := normalize.RequireID("")
	require.ErrorIs(t, err, normalize.ErrNoCanonicalID)

	id, err := normalize.RequireID("tm-1")
	require.NoError(t, err)
	assert.Equal(t, "tm-1", id)
}

func TestKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "tm-1", normalize.Key("tm-1", 0, "a@b.c"))
	assert.Equal(t, "a@b.c", normalize.Key("", 0, "", "a@b.c", "Kabir"))
	assert.Equal(t, "7", normalize.Key("", 7))
}

func TestTaskFromWire(t *testing.T) {
	t.Parallel()

	raw := `{"_id":"65f0","title":"Board Update Draft","status":"open","priority":"high",
		"dueDate":"2026-01-30T00:00:00.000Z","updatedAt":"2026-01-24T12:00:00.000Z","attachments":["https://x/y.pdf"]}`

	var wire normalize.WireTask
	require.NoError(t, json.Unmarshal([]byte(raw), &wire))

	task := normalize.Task(wire)

	assert.Equal(t, "65f0", task.ID)
	assert.Equal(t, models.StatusOpen, task.Status)
	assert.Equal(t, models.PriorityHigh, task.Priority)
	require.NotNil(t, task.DueDate)
	assert.True(t, task.DueDate.Equal(time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, task.StartDate)
	assert.Equal(t, []string{"https://x/y.pdf"}, task.Attachments)
}

func TestRemarkFromWire(t *testing.T) {
	t.Parallel()

	remark := normalize.Remark(normalize.WireRemark{AltID: "r1", Text: "hi", CreatedBy: "u1"})

	assert.Equal(t, "r1", remark.ID)
	assert.Equal(t, "u1", remark.Author)
	assert.Equal(t, models.RemarkText, remark.Type)
}

func TestMomFromWire(t *testing.T) {
	t.Parallel()

	mom := normalize.Mom(normalize.WireMom{
		ID:          "m1",
		Title:       "Weekly sync",
		MeetingDate: "2026-01-20",
		Attachments: []normalize.WireMomAttachment{{FileURL: ""}, {FileURL: "https://files/a.pdf"}},
	})

	assert.Equal(t, "m1", mom.ID)
	assert.Equal(t, []string{}, mom.Attendees)
	require.Len(t, mom.Attachments, 1)
	assert.Equal(t, "https://files/a.pdf", mom.Attachments[0].FileURL)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	res := normalize.Login(normalize.WireLoginResponse{
		Token: "tok",
		User:  &normalize.WireLoginUser{AltID: "u-9", Name: "Ops"},
	})
	assert.Equal(t, "u-9", res.UserID)
	assert.Equal(t, "Ops", res.UserName)

	res = normalize.Login(normalize.WireLoginResponse{Token: "tok"})
	assert.Equal(t, "tok", res.UserID)
}

func TestAttachAssigneeNames(t *testing.T) {
	t.Parallel()

	members := normalize.TeamMembers([]normalize.WireTeamMember{
		{ID: "tm-1", Name: "Kabir Malhotra"},
		{AltID: "tm-2", Name: "Elena Graves"},
	})
	tasks := []models.Task{
		{ID: "t1", AssignedTo: "tm-1"},
		{ID: "t2", AssignedTo: "tm-2"},
		{ID: "t3", AssignedTo: "tm-2", AssigneeName: "Explicit"},
		{ID: "t4", AssignedTo: "ghost"},
		{ID: "t5"},
	}

	joined := normalize.AttachAssigneeNames(tasks, members)

	assert.Equal(t, "Kabir Malhotra", joined[0].AssigneeName)
	assert.Equal(t, "Elena Graves", joined[1].AssigneeName)
	assert.Equal(t, "Explicit", joined[2].AssigneeName)
	assert.Empty(t, joined[3].AssigneeName)
	assert.Equal(t, "Unassigned", normalize.AssigneeLabel(joined[3]))
	assert.Equal(t, "Unassigned", normalize.AssigneeLabel(joined[4]))
	assert.Empty(t, tasks[0].AssigneeName, "input must not be mutated")
}
