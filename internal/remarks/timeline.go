// Package remarks keeps the remark timeline of a task, including remarks that are still being sent or that
// failed to send.
package remarks

import (
	"slices"
	"sync"
	"time"

	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/google/uuid"
)

type State string

const (
	StateConfirmed State = "confirmed"
	StatePending   State = "pending"
	StateFailed    State = "failed"
)

const (
	selfName    = "You"
	staffName   = "Executive Staff"
	unknownName = "Unknown"
)

// Entry is one timeline row. LocalID identifies entries created in this timeline before the server
// acknowledged them.
type Entry struct {
	LocalID string
	Remark  models.Remark
	State   State
	Error   string
}

// Key is the rendering key of the entry.
func (e Entry) Key() string {
	if e.Remark.ID != "" {
		return e.Remark.ID
	}
	return e.LocalID
}

// Timeline is a newest-first list of remarks. It is safe for concurrent use.
type Timeline struct {
	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

// NewTimeline seeds a timeline with remarks already on the server, newest first.
func NewTimeline(existing []models.Remark) *Timeline {
	t := &Timeline{now: time.Now}
	t.Replace(existing)
	return t
}

// Replace drops confirmed entries and loads the server list, keeping pending and failed local entries on top.
func (t *Timeline) Replace(existing []models.Remark) {
	sorted := slices.Clone(existing)
	slices.SortStableFunc(sorted, func(a, b models.Remark) int {
		return compareNewestFirst(a.CreatedAt, b.CreatedAt)
	})

	t.mu.Lock()
	defer t.mu.Unlock()

	local := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		if e.State != StateConfirmed {
			local = append(local, e)
		}
	}
	t.entries = local
	for _, r := range sorted {
		t.entries = append(t.entries, Entry{Remark: r, State: StateConfirmed})
	}
}

func compareNewestFirst(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return b.Compare(*a)
	}
}

// AddPending inserts a remark at the head of the timeline and returns its local id.
func (t *Timeline) AddPending(text, authorID, authorName string) string {
	localID := uuid.NewString()
	created := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	entry := Entry{
		LocalID: localID,
		State:   StatePending,
		Remark: models.Remark{
			Text:       text,
			Author:     authorID,
			AuthorName: authorName,
			CreatedAt:  &created,
			Type:       models.RemarkText,
		},
	}
	t.entries = slices.Insert(t.entries, 0, entry)
	return localID
}

// Confirm merges the server's copy into a pending entry. Fields the server left empty keep their local value.
func (t *Timeline) Confirm(localID string, server models.Remark) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexOf(localID)
	if i < 0 {
		return false
	}

	e := &t.entries[i]
	if server.ID != "" {
		e.Remark.ID = server.ID
	}
	if server.CreatedAt != nil {
		e.Remark.CreatedAt = server.CreatedAt
	}
	if server.Text != "" {
		e.Remark.Text = server.Text
	}
	if server.Author != "" {
		e.Remark.Author = server.Author
	}
	if server.AuthorName != "" {
		e.Remark.AuthorName = server.AuthorName
	}
	if server.Type != "" {
		e.Remark.Type = server.Type
	}
	e.State = StateConfirmed
	e.Error = ""
	return true
}

// Fail marks a pending entry as failed. The entry stays in the timeline with the error shown.
func (t *Timeline) Fail(localID string, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexOf(localID)
	if i < 0 {
		return false
	}
	t.entries[i].State = StateFailed
	if err != nil {
		t.entries[i].Error = err.Error()
	}
	return true
}

// Dismiss removes a failed entry.
func (t *Timeline) Dismiss(localID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexOf(localID)
	if i < 0 || t.entries[i].State != StateFailed {
		return false
	}
	t.entries = slices.Delete(t.entries, i, i+1)
	return true
}

func (t *Timeline) indexOf(localID string) int {
	if localID == "" {
		return -1
	}
	return slices.IndexFunc(t.entries, func(e Entry) bool { return e.LocalID == localID })
}

// Entries returns a snapshot of the timeline, newest first.
func (t *Timeline) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	return slices.Clone(t.entries)
}

// Get returns an entry by local id.
func (t *Timeline) Get(localID string) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexOf(localID)
	if i < 0 {
		return Entry{}, false
	}
	return t.entries[i], true
}

// AuthorName is the display name of a remark's author, relative to the signed-in user.
func AuthorName(r models.Remark, currentUserID, currentUserName string) string {
	switch {
	case r.AuthorName != "":
		return r.AuthorName
	case r.Author != "" && r.Author == currentUserID:
		if currentUserName != "" {
			return currentUserName
		}
		return selfName
	case r.Author != "":
		return staffName
	default:
		return unknownName
	}
}
