// Package web renders the executive console: server-side HTML pages over the task API.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/UnknownOlympus/athena/internal/auth"
	"github.com/UnknownOlympus/athena/internal/client"
	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/metrics"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/remarks"
	"github.com/gorilla/mux"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// TaskAPI is the upstream API as the console uses it. *client.Client implements it.
type TaskAPI interface {
	Login(ctx context.Context, email, password string) (models.LoginResult, error)

	ListTasks(ctx context.Context, params url.Values) (models.TaskPage, error)
	ListAllTasks(ctx context.Context) ([]models.Task, error)
	CountTasks(ctx context.Context, params url.Values) (int, error)
	GetTask(ctx context.Context, id string) (models.Task, error)
	CreateTask(ctx context.Context, in models.TaskInput) (models.Task, error)
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error)
	AddAttachments(ctx context.Context, taskID string, urls []string) error
	AddRemark(ctx context.Context, taskID, text string) (models.Remark, bool, error)
	ListRemarks(ctx context.Context, taskID string) ([]models.Remark, error)
	ListAuditLogs(ctx context.Context, taskID string) ([]models.AuditLog, error)

	ListTeamMembers(ctx context.Context) ([]models.TeamMember, error)
	GetTeamMember(ctx context.Context, id string) (models.TeamMember, error)
	CreateTeamMember(ctx context.Context, in models.TeamMemberInput) (models.TeamMember, error)
	UpdateTeamMember(ctx context.Context, id string, in models.TeamMemberInput) (models.TeamMember, error)
	DeleteTeamMember(ctx context.Context, id string) error

	ListMoms(ctx context.Context) ([]models.Mom, error)
	GetMom(ctx context.Context, id string) (models.Mom, error)
	CreateMom(ctx context.Context, in models.MomInput) (models.Mom, error)
	UpdateMom(ctx context.Context, id string, in models.MomInput) (models.Mom, error)
	DeleteMom(ctx context.Context, id string) error
	UploadMomFile(ctx context.Context, name string, r io.Reader) (string, error)

	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, in models.UserInput) (models.User, error)
	UpdateUser(ctx context.Context, id string, in models.UserInput) (models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Snapshotter takes and lists the daily KPI snapshots.
type Snapshotter interface {
	TakeSnapshot(ctx context.Context) (models.Snapshot, error)
	History(ctx context.Context, limit int) ([]models.Snapshot, error)
}

// Deps are the collaborators of the console. Snapshots may be nil when the snapshot store is disabled.
type Deps struct {
	Log       *slog.Logger
	API       TaskAPI
	Snapshots Snapshotter
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

type Server struct {
	log       *slog.Logger
	api       TaskAPI
	snapshots Snapshotter
	metrics   *metrics.Metrics
	remarks   *remarks.Store
	lists     *listCache
	md        *Markdown
	pages     *pages
	now       func() time.Time
}

func New(d Deps) (*Server, error) {
	if d.API == nil {
		return nil, errors.New("task api is required")
	}
	if d.Metrics == nil {
		return nil, errors.New("metrics are required")
	}
	if d.Log == nil {
		d.Log = sl.Discard()
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	s := &Server{
		log:       d.Log,
		api:       d.API,
		snapshots: d.Snapshots,
		metrics:   d.Metrics,
		remarks:   remarks.NewStore(),
		lists:     newListCache(d.API),
		md:        NewMarkdown(),
		now:       d.Now,
	}
	p, err := parsePages(templateFS, s.funcs())
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	s.pages = p
	return s, nil
}

// Handler is the console with its middleware chain: request log, panic recovery, login gate.
func (s *Server) Handler() http.Handler {
	return s.requestLogger(s.recoverer(auth.Gate(s.router())))
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.StrictSlash(true)

	static, _ := fs.Sub(staticFS, "static")
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	r.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, auth.DashboardPath, http.StatusSeeOther)
	}).Methods(http.MethodGet)
	r.HandleFunc(auth.LoginPath, s.loginPage).Methods(http.MethodGet)
	r.HandleFunc(auth.LoginPath, s.login).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.logout).Methods(http.MethodPost)

	r.HandleFunc(auth.DashboardPath, s.dashboard).Methods(http.MethodGet)
	r.HandleFunc("/search", s.search).Methods(http.MethodGet)

	r.HandleFunc("/tasks", s.taskList).Methods(http.MethodGet)
	r.HandleFunc("/tasks", s.createTask).Methods(http.MethodPost)
	r.HandleFunc("/tasks/new", s.newTask).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id}", s.taskDetail).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id}", s.updateTask).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id}/edit", s.editTask).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id}/quick", s.quickEditTask).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id}/audit", s.taskAudit).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id}/attachments", s.addAttachment).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id}/remarks", s.addRemark).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id}/remarks/{local}/dismiss", s.dismissRemark).Methods(http.MethodPost)

	r.HandleFunc("/team", s.teamList).Methods(http.MethodGet)
	r.HandleFunc("/team", s.createMember).Methods(http.MethodPost)
	r.HandleFunc("/team/new", s.newMember).Methods(http.MethodGet)
	r.HandleFunc("/team/{id}", s.memberProfile).Methods(http.MethodGet)
	r.HandleFunc("/team/{id}", s.updateMember).Methods(http.MethodPost)
	r.HandleFunc("/team/{id}/edit", s.editMember).Methods(http.MethodGet)
	r.HandleFunc("/team/{id}/delete", s.deleteMember).Methods(http.MethodPost)

	r.HandleFunc("/moms", s.momList).Methods(http.MethodGet)
	r.HandleFunc("/moms", s.createMom).Methods(http.MethodPost)
	r.HandleFunc("/moms/new", s.newMom).Methods(http.MethodGet)
	r.HandleFunc("/moms/{id}", s.momDetail).Methods(http.MethodGet)
	r.HandleFunc("/moms/{id}", s.updateMom).Methods(http.MethodPost)
	r.HandleFunc("/moms/{id}/edit", s.editMom).Methods(http.MethodGet)
	r.HandleFunc("/moms/{id}/delete", s.deleteMom).Methods(http.MethodPost)

	r.HandleFunc("/reports", s.reports).Methods(http.MethodGet)
	r.HandleFunc("/reports/generate", s.generateReport).Methods(http.MethodPost)

	r.HandleFunc("/settings", s.settings).Methods(http.MethodGet)
	r.HandleFunc("/settings/users", s.createUser).Methods(http.MethodPost)
	r.HandleFunc("/settings/users/{id}", s.updateUser).Methods(http.MethodPost)
	r.HandleFunc("/settings/users/{id}/delete", s.deleteUser).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(s.notFound)
	return r
}

// expired handles a session the API rejected during this request: the cookies are cleared and the browser
// is sent to the login page. It reports whether it wrote the response. Per-viewer state is left alone, since
// the user id of a rejected session is only what the cookie claims.
func (s *Server) expired(w http.ResponseWriter, r *http.Request) bool {
	session, ok := auth.FromContext(r.Context())
	if !ok || !session.Invalidated() {
		return false
	}
	auth.Clear(w)
	http.Redirect(w, r, auth.LoginPath+"?expired=1", http.StatusSeeOther)
	return true
}

// gone reports whether the browser went away while the handler was waiting on the API. The result is dropped.
func (s *Server) gone(r *http.Request) bool {
	if err := r.Context().Err(); err != nil {
		s.log.DebugContext(r.Context(), "Dropping result of abandoned request", "path", r.URL.Path, sl.Err(err))
		return true
	}
	return false
}

// failWrite answers a failed write. Validation and not-found errors are expected; anything else is logged.
func (s *Server) failWrite(w http.ResponseWriter, r *http.Request, err error) bool {
	if s.expired(w, r) {
		return true
	}
	if errors.Is(err, client.ErrNotFound) {
		s.notFound(w, r)
		return true
	}
	s.log.ErrorContext(r.Context(), "Upstream write failed", "path", r.URL.Path, sl.Err(err))
	return false
}

// forget drops the per-viewer state kept between requests.
func (s *Server) forget(viewer string) {
	s.remarks.Forget(viewer)
	s.lists.forget(viewer)
}

func currentUser(r *http.Request) *auth.Session {
	session, ok := auth.FromContext(r.Context())
	if !ok {
		return &auth.Session{}
	}
	return session
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}
