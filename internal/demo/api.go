package demo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/query"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

const (
	headerUserID   = "x-user-id"
	tokenTTL       = 7 * 24 * time.Hour
	maxUploadBytes = 10 << 20
)

type ctxKey string

const userKey ctxKey = "demoUser"

// API serves the task API over a Store.
type API struct {
	store  *Store
	log    *slog.Logger
	secret []byte
}

func NewAPI(store *Store, log *slog.Logger, secret string) *API {
	if secret == "" {
		secret = "athena-demo"
	}
	return &API{store: store, log: log, secret: []byte(secret)}
}

// Handler builds the router. Everything except login requires a known caller.
func (a *API) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(jsonResponses)
	router.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/auth/login", a.login).Methods(http.MethodPost)
	router.HandleFunc("/files/{id}", a.file).Methods(http.MethodGet)

	private := router.NewRoute().Subrouter()
	private.Use(a.authenticate)

	private.HandleFunc("/tasks", a.listTasks).Methods(http.MethodGet)
	private.HandleFunc("/tasks", a.createTask).Methods(http.MethodPost)
	private.HandleFunc("/tasks/by-team-member/{id}", a.tasksByMember).Methods(http.MethodGet)
	private.HandleFunc("/tasks/{id}", a.getTask).Methods(http.MethodGet)
	private.HandleFunc("/tasks/{id}", a.updateTask).Methods(http.MethodPatch)
	private.HandleFunc("/tasks/{id}/attachments", a.addAttachments).Methods(http.MethodPost)
	private.HandleFunc("/tasks/{id}/remarks", a.listRemarks).Methods(http.MethodGet)
	private.HandleFunc("/tasks/{id}/remarks", a.addRemark).Methods(http.MethodPost)
	private.HandleFunc("/tasks/{id}/remarks/audio", a.addAudioRemark).Methods(http.MethodPost)
	private.HandleFunc("/audit-logs", a.auditLogs).Methods(http.MethodGet)

	private.HandleFunc("/team-members", a.listMembers).Methods(http.MethodGet)
	private.HandleFunc("/team-members", a.createMember).Methods(http.MethodPost)
	private.HandleFunc("/team-members/{id}", a.getMember).Methods(http.MethodGet)
	private.HandleFunc("/team-members/{id}", a.updateMember).Methods(http.MethodPatch, http.MethodPut)
	private.HandleFunc("/team-members/{id}", a.deleteMember).Methods(http.MethodDelete)

	private.HandleFunc("/moms", a.listMoms).Methods(http.MethodGet)
	private.HandleFunc("/moms", a.createMom).Methods(http.MethodPost)
	private.HandleFunc("/moms/{id}", a.getMom).Methods(http.MethodGet)
	private.HandleFunc("/moms/{id}", a.updateMom).Methods(http.MethodPatch, http.MethodPut)
	private.HandleFunc("/moms/{id}", a.deleteMom).Methods(http.MethodDelete)
	private.HandleFunc("/uploads/moms", a.upload).Methods(http.MethodPost)

	private.HandleFunc("/users", a.listUsers).Methods(http.MethodGet)
	private.HandleFunc("/users", a.createUser).Methods(http.MethodPost)
	private.HandleFunc("/users/{id}", a.updateUser).Methods(http.MethodPatch, http.MethodPut)
	private.HandleFunc("/users/{id}", a.deleteUser).Methods(http.MethodDelete)

	return router
}

func jsonResponses(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// authenticate resolves the caller from the token issued by login, sent either in x-user-id or as a bearer
// token. A token that does not verify is rejected; a raw user id is never accepted.
func (a *API) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get(headerUserID))
		if token == "" {
			token, _ = strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		}

		id := a.subject(strings.TrimSpace(token))
		user, ok := a.store.User(id)
		if id == "" || !ok || (user.IsActive != nil && !*user.IsActive) {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

func (a *API) subject(token string) string {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return ""
	}
	return claims.Subject
}

func (a *API) issueToken(userID string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func caller(r *http.Request) models.User {
	user, _ := r.Context().Value(userKey).(models.User)
	return user
}

type loginUser struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginRequest
	if !a.decode(w, r, &in) {
		return
	}

	user, err := a.store.Authenticate(in.Email, in.Password)
	if err != nil {
		a.log.Info("Rejected demo login", "email", in.Email)
		respondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}
	token, err := a.issueToken(user.ID, time.Now())
	if err != nil {
		a.log.Error("Failed to sign token", sl.Err(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to sign token")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"token":     token,
		"expiresIn": tokenTTL.String(),
		"user":      loginUser{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role},
	})
}

// listTasks answers with the paged envelope, or {"count": n} when countOnly is set.
func (a *API) listTasks(w http.ResponseWriter, r *http.Request) {
	state := apiState(r.URL.Query())
	if r.URL.Query().Get("countOnly") == "true" {
		respondWithJSON(w, http.StatusOK, map[string]int{"count": a.store.CountTasks(state)})
		return
	}

	page, _ := a.store.ListTasks(state)
	respondWithJSON(w, http.StatusOK, map[string]any{"data": page.Tasks, "meta": page.Meta})
}

// apiState reads the upstream list parameters, which name the assignee filter assignedTo.
func apiState(values url.Values) query.State {
	params := url.Values{}
	for k, v := range values {
		params[k] = v
	}
	params.Del(query.ParamMember)
	if assigned := values.Get("assignedTo"); assigned != "" {
		params.Set(query.ParamMember, assigned)
	}
	return query.Parse(params, query.Options{})
}

func (a *API) tasksByMember(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, a.store.TasksByMember(mux.Vars(r)["id"]))
}

func (a *API) getTask(w http.ResponseWriter, r *http.Request) {
	task, err := a.store.Task(mux.Vars(r)["id"])
	a.respond(w, http.StatusOK, task, err)
}

func (a *API) createTask(w http.ResponseWriter, r *http.Request) {
	var in models.TaskInput
	if !a.decode(w, r, &in) {
		return
	}
	task, err := a.store.CreateTask(in, caller(r).ID)
	a.respond(w, http.StatusCreated, task, err)
}

func (a *API) updateTask(w http.ResponseWriter, r *http.Request) {
	var patch models.TaskPatch
	if !a.decode(w, r, &patch) {
		return
	}
	task, err := a.store.UpdateTask(mux.Vars(r)["id"], patch, caller(r).ID)
	a.respond(w, http.StatusOK, task, err)
}

func (a *API) addAttachments(w http.ResponseWriter, r *http.Request) {
	var in struct {
		URLs []string `json:"urls"`
	}
	if !a.decode(w, r, &in) {
		return
	}
	err := a.store.AddAttachments(mux.Vars(r)["id"], in.URLs, caller(r).ID)
	a.respond(w, http.StatusOK, map[string]bool{"ok": true}, err)
}

func (a *API) listRemarks(w http.ResponseWriter, r *http.Request) {
	remarks, err := a.store.Remarks(mux.Vars(r)["id"])
	a.respond(w, http.StatusOK, remarks, err)
}

func (a *API) addRemark(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Text string `json:"text"`
	}
	if !a.decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Text) == "" {
		respondWithError(w, http.StatusBadRequest, "Remark text is required")
		return
	}
	remark, err := a.store.AddRemark(mux.Vars(r)["id"], models.Remark{Text: strings.TrimSpace(in.Text)}, caller(r))
	a.respond(w, http.StatusCreated, remark, err)
}

func (a *API) addAudioRemark(w http.ResponseWriter, r *http.Request) {
	var in models.AudioRemarkInput
	if !a.decode(w, r, &in) {
		return
	}
	if in.AudioURL == "" {
		respondWithError(w, http.StatusBadRequest, "Audio url is required")
		return
	}
	text := fmt.Sprintf("Voice note (%ds): %s", in.AudioDurationSec, in.AudioURL)
	remark, err := a.store.AddRemark(mux.Vars(r)["id"], models.Remark{Text: text, Type: models.RemarkAudio}, caller(r))
	a.respond(w, http.StatusCreated, remark, err)
}

func (a *API) auditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	respondWithJSON(w, http.StatusOK, a.store.AuditLogs(q.Get("entityType"), q.Get("entityId")))
}

func (a *API) listMembers(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, a.store.Members())
}

func (a *API) getMember(w http.ResponseWriter, r *http.Request) {
	member, err := a.store.Member(mux.Vars(r)["id"])
	a.respond(w, http.StatusOK, member, err)
}

func (a *API) createMember(w http.ResponseWriter, r *http.Request) {
	var in models.TeamMemberInput
	if !a.decode(w, r, &in) {
		return
	}
	member, err := a.store.CreateMember(in)
	a.respond(w, http.StatusCreated, member, err)
}

func (a *API) updateMember(w http.ResponseWriter, r *http.Request) {
	var in models.TeamMemberInput
	if !a.decode(w, r, &in) {
		return
	}
	member, err := a.store.UpdateMember(mux.Vars(r)["id"], in)
	a.respond(w, http.StatusOK, member, err)
}

func (a *API) deleteMember(w http.ResponseWriter, r *http.Request) {
	err := a.store.DeleteMember(mux.Vars(r)["id"])
	a.respond(w, http.StatusOK, map[string]bool{"ok": true}, err)
}

func (a *API) listMoms(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, a.store.Moms())
}

func (a *API) getMom(w http.ResponseWriter, r *http.Request) {
	mom, err := a.store.Mom(mux.Vars(r)["id"])
	a.respond(w, http.StatusOK, mom, err)
}

func (a *API) createMom(w http.ResponseWriter, r *http.Request) {
	var in models.MomInput
	if !a.decode(w, r, &in) {
		return
	}
	mom, err := a.store.CreateMom(in, caller(r).ID)
	a.respond(w, http.StatusCreated, mom, err)
}

func (a *API) updateMom(w http.ResponseWriter, r *http.Request) {
	var in models.MomInput
	if !a.decode(w, r, &in) {
		return
	}
	mom, err := a.store.UpdateMom(mux.Vars(r)["id"], in)
	a.respond(w, http.StatusOK, mom, err)
}

func (a *API) deleteMom(w http.ResponseWriter, r *http.Request) {
	err := a.store.DeleteMom(mux.Vars(r)["id"])
	a.respond(w, http.StatusOK, map[string]bool{"ok": true}, err)
}

// upload stores the multipart field "file" and answers with the URL it is served from.
func (a *API) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to read file")
		return
	}
	id := a.store.SaveUpload(Upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})

	respondWithJSON(w, http.StatusCreated, map[string]string{"url": baseURL(r) + "/files/" + id})
}

func (a *API) file(w http.ResponseWriter, r *http.Request) {
	u, err := a.store.Upload(mux.Vars(r)["id"])
	if err != nil {
		a.respond(w, http.StatusOK, nil, err)
		return
	}
	contentType := u.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(u.Data)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", u.Name))
	_, _ = w.Write(u.Data)
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (a *API) listUsers(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, a.store.Users())
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	var in models.UserInput
	if !a.decode(w, r, &in) {
		return
	}
	user, err := a.store.CreateUser(in)
	a.respond(w, http.StatusCreated, user, err)
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request) {
	var in models.UserInput
	if !a.decode(w, r, &in) {
		return
	}
	user, err := a.store.UpdateUser(mux.Vars(r)["id"], in)
	a.respond(w, http.StatusOK, user, err)
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request) {
	err := a.store.DeleteUser(mux.Vars(r)["id"])
	a.respond(w, http.StatusOK, map[string]bool{"ok": true}, err)
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// respond maps store errors onto status codes.
func (a *API) respond(w http.ResponseWriter, code int, payload any, err error) {
	switch {
	case err == nil:
		respondWithJSON(w, code, payload)
	case errors.Is(err, ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		a.log.Error("Demo API failure", sl.Err(err))
		respondWithError(w, http.StatusInternalServerError, "Internal error")
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"message": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
