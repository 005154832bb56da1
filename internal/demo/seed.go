package demo

import (
	"strings"
	"time"

	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/tamathecxder/randomail"
)

// DemoPassword is the password of every seeded operator account.
const DemoPassword = "demo"

type seedTask struct {
	id, title, description, assignee string
	status                           models.TaskStatus
	priority                         models.TaskPriority
	dueIn, updatedAgo                int
	lastRemark                       string
}

var seedMembers = []models.TeamMember{
	{ID: "tm-1", Name: "Kabir Malhotra", Designation: "Project Manager", Department: "PMO"},
	{ID: "tm-2", Name: "Elena Graves", Designation: "Executive Assistant", Department: "Chairman Office"},
	{ID: "tm-3", Name: "Andre Collins", Designation: "Operations Lead", Department: "Operations"},
}

// Due dates and update times are offsets in days from the seeding time, so the board always looks current.
var seedTasks = []seedTask{
	{"task-1", "Board Update Draft", "Compile key metrics for board update.", "tm-1",
		models.StatusOpen, models.PriorityHigh, 2, 4, "Waiting on finance metrics."},
	{"task-2", "Investor Briefing Deck", "Refine deck visuals and narrative.", "tm-2",
		models.StatusInProgress, models.PriorityCritical, 1, 1, "Draft v3 under review."},
	{"task-3", "Operations Risk Memo", "Summarize Q1 operational risks.", "tm-3",
		models.StatusOverdue, models.PriorityHigh, -8, 10, "Awaiting legal input."},
	{"task-4", "Executive Calendar Sync", "Finalize February calendar.", "tm-2",
		models.StatusCompleted, models.PriorityMedium, -4, 2, "Calendar confirmed."},
	{"task-5", "Supplier Renewal Review", "Review renewal terms with procurement.", "tm-3",
		models.StatusOpen, models.PriorityMedium, 8, 9, "Collecting updated pricing."},
	{"task-6", "Quarterly Town Hall Agenda", "Draft agenda and speaker list.", "tm-1",
		models.StatusBlocked, models.PriorityLow, -1, 6, "Venue not confirmed."},
}

var seedUsers = []models.User{
	{ID: "u-1", Name: "Chairman Office", Email: "chairman@athena.local", Role: "admin"},
	{ID: "u-2", Name: "Chief of Staff", Email: "cos@athena.local", Role: "executive"},
}

func seed(s *Store, now time.Time) {
	active := true
	for _, m := range seedMembers {
		m.Email = memberEmail(m.Name)
		m.IsActive = &active
		s.members = append(s.members, m)
	}

	for i, st := range seedTasks {
		due := now.AddDate(0, 0, st.dueIn)
		updated := now.AddDate(0, 0, -st.updatedAgo)
		created := updated.AddDate(0, 0, -3)
		s.tasks = append(s.tasks, models.Task{
			ID:           st.id,
			Title:        st.title,
			Description:  st.description,
			AssignedTo:   st.assignee,
			Status:       st.status,
			Priority:     st.priority,
			DueDate:      &due,
			CreatedAt:    &created,
			UpdatedAt:    &updated,
			LastRemark:   st.lastRemark,
			LastRemarkAt: &updated,
		})
		s.remarks[st.id] = []models.Remark{{
			ID:        "r-" + st.id,
			Text:      st.lastRemark,
			CreatedAt: &updated,
			Author:    seedUsers[i%len(seedUsers)].ID,
			Type:      models.RemarkText,
		}}
	}

	for _, u := range seedUsers {
		u.IsActive = &active
		u.CreatedAt = now.AddDate(0, -2, 0).Format(time.RFC3339)
		s.users = append(s.users, u)
	}

	meeting := now.AddDate(0, 0, -3)
	s.moms = append(s.moms, models.Mom{
		ID:          "mom-1",
		Title:       "Weekly Leadership Sync",
		MeetingDate: &meeting,
		Attendees:   []string{"Kabir Malhotra", "Elena Graves", "Andre Collins"},
		RawNotes: "## Decisions\n\n- Board pack freezes on **Friday**\n- Risk memo escalated to legal\n\n" +
			"## Actions\n\n1. Kabir: finance metrics\n2. Andre: supplier pricing",
		AISummary:   "Board pack freeze agreed; risk memo escalated.",
		Attachments: []models.MomAttachment{},
		CreatedBy:   seedUsers[0].ID,
		CreatedAt:   &meeting,
	})
}

// memberEmail derives an address from the member's name and falls back to a generated one for names that do
// not produce a usable local part.
func memberEmail(name string) string {
	local := strings.ToLower(strings.Join(strings.Fields(name), "."))
	if local == "" {
		return randomail.GenerateRandomEmail()
	}
	return local + "@athena.local"
}
