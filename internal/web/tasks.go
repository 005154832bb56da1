package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/UnknownOlympus/athena/internal/client"
	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/normalize"
	"github.com/UnknownOlympus/athena/internal/query"
	"github.com/UnknownOlympus/athena/internal/remarks"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"
)

const tasksPath = "/tasks"

type taskListView struct {
	base
	List Section[taskTable]
}

// loadTable loads one list page through the viewer's controller for view.
func (s *Server) loadTable(r *http.Request, view, basePath string, opts query.Options) Section[taskTable] {
	params := collapseMulti(r.URL.Query())
	state := query.Parse(params, opts)
	ctrl := s.lists.controller(currentUser(r).UserID, view, opts)

	res, err := ctrl.Load(r.Context(), state)
	table := buildTable(basePath, params, res, opts)
	if err != nil {
		s.log.WarnContext(r.Context(), "Task list unavailable", "view", view, sl.Err(err))
		return Failed(err, table.Canonical, table)
	}
	return Loaded(table, len(res.Tasks) == 0)
}

func (s *Server) taskList(w http.ResponseWriter, r *http.Request) {
	list := s.loadTable(r, "tasks", tasksPath, query.Options{})
	if s.gone(r) || s.expired(w, r) {
		return
	}
	view := taskListView{base: s.base(r, "Tasks", "tasks"), List: list}
	s.render(w, r, http.StatusOK, "tasks", view, list.State)
}

type taskFormView struct {
	base
	Task    models.Task
	Form    TaskForm
	Members Section[[]models.TeamMember]
	Action  string
	Error   string
}

func (s *Server) taskFormView(r *http.Request, title string, form TaskForm, action string) taskFormView {
	view := taskFormView{base: s.base(r, title, "tasks"), Form: form, Action: action}
	members, err := s.api.ListTeamMembers(r.Context())
	if err != nil {
		view.Members = Failed(err, r.URL.RequestURI(), []models.TeamMember(nil))
	} else {
		view.Members = Loaded(members, len(members) == 0)
	}
	return view
}

func (s *Server) newTask(w http.ResponseWriter, r *http.Request) {
	view := s.taskFormView(r, "New task", NewTaskForm(s.now()), tasksPath)
	if s.gone(r) || s.expired(w, r) {
		return
	}
	s.render(w, r, http.StatusOK, "task_form", view, view.Members.State)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	form := ParseTaskForm(r.PostForm)
	if err := form.Errors.Err(); err != nil {
		view := s.taskFormView(r, "New task", form, tasksPath)
		s.render(w, r, http.StatusUnprocessableEntity, "task_form", view, view.Members.State)
		return
	}

	created, err := s.api.CreateTask(r.Context(), form.Input())
	if err != nil {
		if s.failWrite(w, r, err) {
			return
		}
		view := s.taskFormView(r, "New task", form, tasksPath)
		view.Error = "Failed to create task. Please try again."
		s.render(w, r, http.StatusBadGateway, "task_form", view, SectionError)
		return
	}
	if created.ID == "" {
		redirect(w, r, tasksPath+"?notice=created")
		return
	}
	redirect(w, r, taskPath(created.ID)+"?notice=created")
}

func taskPath(id string) string {
	return tasksPath + "/" + url.PathEscape(id)
}

func (s *Server) editTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	task, err := s.api.GetTask(r.Context(), id)
	if s.gone(r) || s.expired(w, r) {
		return
	}
	if errors.Is(err, client.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		view := taskDetailView{base: s.base(r, "Task", "tasks")}
		view.Task = Failed(err, r.URL.Path, models.Task{})
		s.render(w, r, http.StatusOK, "task_detail", view, SectionError)
		return
	}

	view := s.taskFormView(r, "Edit task", TaskFormFrom(task), taskPath(task.ID))
	view.Task = task
	s.render(w, r, http.StatusOK, "task_form", view, view.Members.State)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	form := ParseTaskForm(r.PostForm)
	if err := form.Errors.Err(); err != nil {
		view := s.taskFormView(r, "Edit task", form, taskPath(id))
		view.Task = models.Task{ID: id}
		s.render(w, r, http.StatusUnprocessableEntity, "task_form", view, view.Members.State)
		return
	}

	if _, err := s.api.UpdateTask(r.Context(), id, form.Patch()); err != nil {
		if s.failWrite(w, r, err) {
			return
		}
		view := s.taskFormView(r, "Edit task", form, taskPath(id))
		view.Task = models.Task{ID: id}
		view.Error = "Failed to save changes. Please try again."
		s.render(w, r, http.StatusBadGateway, "task_form", view, SectionError)
		return
	}
	redirect(w, r, taskPath(id)+"?notice=updated")
}

// quickEditTask changes status and/or priority from the detail page.
func (s *Server) quickEditTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	var patch models.TaskPatch
	if v := models.TaskStatus(r.PostForm.Get("status")); v.IsKnown() {
		patch.Status = &v
	}
	if v := models.TaskPriority(r.PostForm.Get("priority")); v.IsKnown() {
		patch.Priority = &v
	}
	if patch.Status == nil && patch.Priority == nil {
		redirect(w, r, taskPath(id))
		return
	}

	if _, err := s.api.UpdateTask(r.Context(), id, patch); err != nil {
		if s.failWrite(w, r, err) {
			return
		}
		redirect(w, r, taskPath(id)+"?error=update")
		return
	}
	redirect(w, r, taskPath(id)+"?notice=updated")
}

type taskDetailView struct {
	base
	Task     Section[models.Task]
	Remarks  Section[[]remarks.Entry]
	Audit    Section[[]models.AuditLog]
	Error    string
	Draft    string
	Statuses []models.TaskStatus
}

var detailErrors = map[string]string{
	"update":     "Failed to update the task. Please try again.",
	"attachment": "Failed to add the attachment. Please try again.",
	"remark":     "Remark text is required.",
}

func (s *Server) taskDetail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	viewer := currentUser(r)
	view := taskDetailView{
		base:     s.base(r, "Task", "tasks"),
		Error:    detailErrors[r.URL.Query().Get("error")],
		Statuses: models.KnownStatuses,
	}

	var (
		task       models.Task
		members    []models.TeamMember
		remarkList []models.Remark
		taskErr    error
		remarkErr  error
	)
	grp, gctx := errgroup.WithContext(r.Context())
	grp.Go(func() error {
		task, taskErr = s.api.GetTask(gctx, id)
		return nil
	})
	grp.Go(func() error {
		members, _ = s.api.ListTeamMembers(gctx)
		return nil
	})
	grp.Go(func() error {
		remarkList, remarkErr = s.api.ListRemarks(gctx, id)
		return nil
	})
	_ = grp.Wait()

	if s.gone(r) || s.expired(w, r) {
		return
	}
	if errors.Is(taskErr, client.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if taskErr != nil {
		view.Task = Failed(taskErr, r.URL.Path, models.Task{})
		s.render(w, r, http.StatusOK, "task_detail", view, SectionError)
		return
	}

	task = normalize.AttachAssigneeNames([]models.Task{task}, members)[0]
	view.Title = task.Title
	view.Task = Loaded(task, false)

	timeline := s.remarks.Timeline(viewer.UserID, id)
	if remarkErr != nil {
		view.Remarks = Failed(remarkErr, r.URL.Path, timeline.Entries())
	} else {
		timeline.Replace(remarkList)
		entries := timeline.Entries()
		view.Remarks = Loaded(entries, len(entries) == 0)
	}
	view.Audit = Deferred[[]models.AuditLog](taskPath(id) + "/audit")

	s.render(w, r, http.StatusOK, "task_detail", view, view.Task.State, view.Remarks.State, view.Audit.State)
}

// taskAudit is the audit log section, fetched by the detail page after it loaded.
func (s *Server) taskAudit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	logs, err := s.api.ListAuditLogs(r.Context(), id)
	if s.gone(r) || s.expired(w, r) {
		return
	}

	var section Section[[]models.AuditLog]
	if err != nil {
		section = Failed(err, r.URL.Path, []models.AuditLog(nil))
	} else {
		section = Loaded(logs, len(logs) == 0)
	}
	s.fragment(w, r, "task_detail", "audit-section", section, section.State)
}

func (s *Server) addAttachment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	link := strings.TrimSpace(r.PostForm.Get("url"))
	if u, err := url.ParseRequestURI(link); err != nil || u.Host == "" {
		redirect(w, r, taskPath(id)+"?error=attachment")
		return
	}

	if err := s.api.AddAttachments(r.Context(), id, []string{link}); err != nil {
		if s.failWrite(w, r, err) {
			return
		}
		redirect(w, r, taskPath(id)+"?error=attachment")
		return
	}
	redirect(w, r, taskPath(id)+"?notice=updated")
}

// addRemark records the remark as pending before sending it, then confirms or fails the entry. A failed
// entry stays on the timeline with its error until dismissed.
func (s *Server) addRemark(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	text := strings.TrimSpace(r.PostForm.Get("text"))
	if text == "" {
		redirect(w, r, taskPath(id)+"?error=remark")
		return
	}

	viewer := currentUser(r)
	timeline := s.remarks.Timeline(viewer.UserID, id)
	localID := timeline.AddPending(text, viewer.UserID, viewer.UserName)

	remark, echoed, err := s.api.AddRemark(context.WithoutCancel(r.Context()), id, text)
	switch {
	case err != nil:
		timeline.Fail(localID, errors.New(errorMessage(err)))
		if s.expired(w, r) {
			return
		}
		s.log.WarnContext(r.Context(), "Failed to add remark", "task_id", id, sl.Err(err))
	case echoed:
		timeline.Confirm(localID, remark)
	default:
		timeline.Confirm(localID, models.Remark{})
	}
	redirect(w, r, taskPath(id)+"#remarks")
}

func (s *Server) dismissRemark(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.remarks.Timeline(currentUser(r).UserID, vars["id"]).Dismiss(vars["local"])
	redirect(w, r, taskPath(vars["id"])+"#remarks")
}
