package web

import (
	"net/http"

	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/services/snapshots"
)

const historyDays = 30

type reportsView struct {
	base
	// Enabled is false when no snapshot store is configured; Preview is then computed live.
	Enabled bool
	History Section[[]models.Snapshot]
	Preview *models.Snapshot
	Error   string
}

func (s *Server) reports(w http.ResponseWriter, r *http.Request) {
	view := reportsView{base: s.base(r, "Reports", "reports"), Enabled: s.snapshots != nil}
	if r.URL.Query().Get("error") == "generate" {
		view.Error = "Failed to generate the daily summary. Please try again."
	}

	if s.snapshots == nil {
		view.History = Loaded([]models.Snapshot(nil), true)
		s.render(w, r, http.StatusOK, "reports", view, view.History.State)
		return
	}

	history, err := s.snapshots.History(r.Context(), historyDays)
	if s.gone(r) {
		return
	}
	if err != nil {
		s.log.WarnContext(r.Context(), "Snapshot history unavailable", sl.Err(err))
		view.History = Failed(err, r.URL.Path, []models.Snapshot(nil))
		view.History.Error = "Report history could not be loaded."
	} else {
		view.History = Loaded(history, len(history) == 0)
	}
	s.render(w, r, http.StatusOK, "reports", view, view.History.State)
}

// generateReport stores today's snapshot with the viewer's session. Without a snapshot store the summary is
// computed and shown without being kept.
func (s *Server) generateReport(w http.ResponseWriter, r *http.Request) {
	if s.snapshots != nil {
		_, err := s.snapshots.TakeSnapshot(r.Context())
		if s.expired(w, r) {
			return
		}
		if err != nil {
			s.log.ErrorContext(r.Context(), "Failed to generate snapshot", sl.Err(err))
			redirect(w, r, "/reports?error=generate")
			return
		}
		redirect(w, r, "/reports?notice=report")
		return
	}

	tasks, members, err := s.loadBoard(r.Context())
	if s.gone(r) || s.expired(w, r) {
		return
	}
	view := reportsView{
		base:    s.base(r, "Reports", "reports"),
		History: Loaded([]models.Snapshot(nil), true),
	}
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to compute summary", sl.Err(err))
		view.Error = errorMessage(err)
		s.render(w, r, http.StatusBadGateway, "reports", view, SectionError)
		return
	}
	preview := snapshots.Build(tasks, members, s.now())
	view.Preview = &preview
	view.Notice = noticeText("report")
	s.render(w, r, http.StatusOK, "reports", view)
}
