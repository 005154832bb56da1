package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/UnknownOlympus/athena/internal/auth"
	"github.com/UnknownOlympus/athena/internal/insights"
	"github.com/UnknownOlympus/athena/internal/lib/format"
	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/normalize"
	"github.com/UnknownOlympus/athena/internal/remarks"
)

const (
	layoutFile   = "templates/layout.html"
	partialsFile = "templates/partials.html"
)

// pages holds one template set per page: the layout, the shared partials and the page itself.
type pages struct {
	sets map[string]*template.Template
}

func parsePages(fsys fs.FS, funcs template.FuncMap) (*pages, error) {
	files, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, err
	}

	p := &pages{sets: make(map[string]*template.Template)}
	for _, file := range files {
		if file == layoutFile || file == partialsFile {
			continue
		}
		set, err := template.New(path.Base(layoutFile)).Funcs(funcs).ParseFS(fsys, layoutFile, partialsFile, file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}
		p.sets[strings.TrimSuffix(path.Base(file), ".html")] = set
	}
	return p, nil
}

func (p *pages) execute(buf *bytes.Buffer, page, name string, data any) error {
	set, ok := p.sets[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	return set.ExecuteTemplate(buf, name, data)
}

// base is embedded by every page view.
type base struct {
	Title    string
	Nav      string
	UserName string
	UserID   string
	Notice   string
	Path     string
}

func (s *Server) base(r *http.Request, title, nav string) base {
	b := base{Title: title, Nav: nav, Path: r.URL.Path, Notice: noticeText(r.URL.Query().Get("notice"))}
	if session, ok := auth.FromContext(r.Context()); ok {
		b.UserName = session.UserName
		b.UserID = session.UserID
	}
	return b
}

var notices = map[string]string{
	"created": "Saved.",
	"updated": "Changes saved.",
	"deleted": "Deleted.",
	"report":  "Daily summary generated.",
}

func noticeText(key string) string {
	return notices[key]
}

// render executes a page into a buffer and writes it only when it executed completely. states are the
// states of the page's data sections, counted in the page render metric.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data any, states ...SectionState) {
	var buf bytes.Buffer
	if err := s.pages.execute(&buf, page, "layout", data); err != nil {
		s.log.ErrorContext(r.Context(), "Failed to render page", "page", page, sl.Err(err))
		s.renderFailure(w, r)
		return
	}

	if len(states) == 0 {
		states = []SectionState{SectionContent}
	}
	for _, state := range states {
		s.metrics.PageRenders.WithLabelValues(page, string(state)).Inc()
	}

	writeHTML(w, status, buf.Bytes())
}

// fragment renders one named template of a page without the layout.
func (s *Server) fragment(w http.ResponseWriter, r *http.Request, page, name string, data any, state SectionState) {
	var buf bytes.Buffer
	if err := s.pages.execute(&buf, page, name, data); err != nil {
		s.log.ErrorContext(r.Context(), "Failed to render fragment", "page", page, "fragment", name, sl.Err(err))
		http.Error(w, "Failed to render", http.StatusInternalServerError)
		return
	}
	s.metrics.PageRenders.WithLabelValues(page+"#"+name, string(state)).Inc()
	writeHTML(w, http.StatusOK, buf.Bytes())
}

// renderFailure is the catch-all failure page with a reset link.
func (s *Server) renderFailure(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	data := struct{ base }{s.base(r, "Something went wrong", "")}
	if err := s.pages.execute(&buf, "failure", "layout", data); err != nil {
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}
	s.metrics.PageRenders.WithLabelValues("failure", string(SectionError)).Inc()
	writeHTML(w, http.StatusInternalServerError, buf.Bytes())
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	data := struct{ base }{s.base(r, "Page not found", "")}
	s.render(w, r, http.StatusNotFound, "not_found", data, SectionEmpty)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) funcs() template.FuncMap {
	return template.FuncMap{
		"date":     format.DatePtr,
		"datetime": format.DateTimePtr,
		"isodate":  format.ISODate,
		"relative": func(t *time.Time) string { return format.RelativePtr(t, s.now()) },
		"dateStr":  format.Date,
		"assignee": normalize.AssigneeLabel,
		"overdue":  func(t models.Task) bool { return insights.IsOverdue(t, s.now()) },
		"stale":    func(t models.Task) bool { return insights.IsStale(t, s.now()) },
		"markdown": func(src string) template.HTML { return s.md.Render(src) },
		"label":    humanLabel,
		"author": func(r models.Remark, userID, userName string) string {
			return remarks.AuthorName(r, userID, userName)
		},
		"key": func(id string, i int, fallbacks ...string) string { return normalize.Key(id, i, fallbacks...) },
		"join": strings.Join,
		"percent": func(part, total int) int {
			if total <= 0 {
				return 0
			}
			return part * 100 / total
		},
		"statuses":   func() []models.TaskStatus { return models.KnownStatuses },
		"priorities": func() []models.TaskPriority { return models.KnownPriorities },
		"deref": func(n *int) int {
			if n == nil {
				return 0
			}
			return *n
		},
		"active": func(b *bool) bool { return b == nil || *b },
		"dict":   dict,
	}
}

// dict pairs up keys and values for passing several values to a partial.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict needs key and value pairs, got %d arguments", len(pairs))
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

// humanLabel renders an enum value such as in_progress as "In Progress".
func humanLabel(value string) string {
	return models.TaskStatus(value).Label()
}
