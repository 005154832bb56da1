package web_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/UnknownOlympus/athena/internal/auth"
	"github.com/UnknownOlympus/athena/internal/client"
	"github.com/UnknownOlympus/athena/internal/demo"
	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/metrics"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/query"
	"github.com/UnknownOlympus/athena/internal/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type console struct {
	t       *testing.T
	url     string
	store   *demo.Store
	http    *http.Client
	cookies []*http.Cookie
}

type consoleOption func(*web.Deps)

func withSnapshots(s web.Snapshotter) consoleOption {
	return func(d *web.Deps) { d.Snapshots = s }
}

// newConsole runs the console against a seeded demo API through the real client.
func newConsole(t *testing.T, opts ...consoleOption) *console {
	t.Helper()

	store := demo.NewStore(func() time.Time { return fixedNow })
	upstream := httptest.NewServer(demo.NewAPI(store, sl.Discard(), "test-secret").Handler())
	t.Cleanup(upstream.Close)

	c := startConsole(t, store, upstream.URL, opts...)
	c.signIn("chairman@athena.local")
	return c
}

func startConsole(t *testing.T, store *demo.Store, apiURL string, opts ...consoleOption) *console {
	t.Helper()

	log := sl.Discard()
	m := metrics.NewMetrics(prometheus.NewRegistry())
	c, err := client.New(apiURL, client.CreateHTTPClient(log, 2*time.Second, nil), log, m)
	require.NoError(t, err)

	deps := web.Deps{Log: log, API: c, Metrics: m, Now: func() time.Time { return fixedNow }}
	for _, opt := range opts {
		opt(&deps)
	}
	srv, err := web.New(deps)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &console{
		t:     t,
		url:   ts.URL,
		store: store,
		http: &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}},
	}
}

// signIn logs in through the console form and keeps the cookies it sets.
func (c *console) signIn(email string) {
	c.t.Helper()

	c.signOut()
	resp := c.post(auth.LoginPath, url.Values{"email": {email}, "password": {demo.DemoPassword}})
	require.Equal(c.t, http.StatusSeeOther, resp.StatusCode)
	c.cookies = resp.Cookies()
	require.NotEmpty(c.t, c.cookies)
}

func (c *console) signOut() {
	c.cookies = nil
}

// useCookies replaces the session cookies with hand-written ones the console never issued.
func (c *console) useCookies(token, userID string) {
	c.cookies = []*http.Cookie{
		{Name: auth.CookieToken, Value: token},
		{Name: auth.CookieUserID, Value: userID},
	}
}

func (c *console) signedIn(req *http.Request) *http.Request {
	for _, ck := range c.cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	return req
}

func (c *console) do(req *http.Request) *http.Response {
	c.t.Helper()

	resp, err := c.http.Do(c.signedIn(req))
	require.NoError(c.t, err)
	c.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (c *console) get(path string) *http.Response {
	c.t.Helper()

	req, err := http.NewRequest(http.MethodGet, c.url+path, nil)
	require.NoError(c.t, err)
	return c.do(req)
}

func (c *console) post(path string, form url.Values) *http.Response {
	c.t.Helper()

	req, err := http.NewRequest(http.MethodPost, c.url+path, strings.NewReader(form.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *console) page(path string) *goquery.Document {
	c.t.Helper()

	resp := c.get(path)
	require.Equal(c.t, http.StatusOK, resp.StatusCode, "GET %s", path)
	return document(c.t, resp)
}

func document(t *testing.T, resp *http.Response) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	return doc
}

func TestAnonymousIsSentToLogin(t *testing.T) {
	t.Parallel()

	c := newConsole(t)
	c.signOut()

	resp := c.get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp = c.get("/static/app.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	c := newConsole(t)
	c.signOut()

	resp := c.post("/login", url.Values{"email": {"chairman@athena.local"}, "password": {demo.DemoPassword}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	cookies := map[string]*http.Cookie{}
	for _, ck := range resp.Cookies() {
		cookies[ck.Name] = ck
	}
	require.Contains(t, cookies, auth.CookieToken)
	assert.NotEmpty(t, cookies[auth.CookieToken].Value)
	assert.True(t, cookies[auth.CookieToken].HttpOnly)
	assert.Equal(t, "u-1", cookies[auth.CookieUserID].Value)
}

func TestLoginFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		form   url.Values
		status int
	}{
		{"wrong password", url.Values{"email": {"chairman@athena.local"}, "password": {"nope"}}, http.StatusUnauthorized},
		{"missing password", url.Values{"email": {"chairman@athena.local"}}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newConsole(t)
			c.signOut()
			resp := c.post("/login", tt.form)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, document(t, resp).Find(".login .panel-error").Text())
		})
	}
}

func TestDashboardTiles(t *testing.T) {
	t.Parallel()

	doc := newConsole(t).page("/dashboard")

	tile := func(href string) string {
		return strings.TrimSpace(doc.Find(`a.kpi[href="` + href + `"] .kpi-value`).Text())
	}
	assert.Equal(t, "2", tile("/tasks?status=open"))
	assert.Equal(t, "2", tile("/tasks?status=overdue"))
	assert.Equal(t, "1", tile("/tasks?priority=critical"))
	assert.Equal(t, 5, doc.Find("#urgent li").Length())
	assert.Equal(t, "Operations Risk Memo", doc.Find("#urgent li a").First().Text())
	assert.Equal(t, 3, doc.Find("#load li").Length())
}

func TestDashboardShowsErrorWhenAPIUnreachable(t *testing.T) {
	t.Parallel()

	c := startConsole(t, nil, "http://127.0.0.1:1")
	c.useCookies("unverified", "u-1")
	doc := c.page("/dashboard")

	panel := doc.Find(".panel-error")
	require.Equal(t, 1, panel.Length())
	assert.Contains(t, panel.Text(), "could not be reached")
	href, _ := panel.Find("a").Attr("href")
	assert.Equal(t, "/dashboard", href)
}

func TestExpiredSessionClearsCookies(t *testing.T) {
	t.Parallel()

	c := newConsole(t)
	c.useCookies("token-u-2", "u-2")

	resp := c.get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?expired=1", resp.Header.Get("Location"))

	var cleared bool
	for _, ck := range resp.Cookies() {
		if ck.Name == auth.CookieToken {
			cleared = ck.MaxAge < 0
		}
	}
	assert.True(t, cleared)
}

func TestForgedCookiesCannotActAsAnotherUser(t *testing.T) {
	t.Parallel()

	paths := []string{"/settings", "/tasks", "/moms", "/team"}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			t.Parallel()

			c := newConsole(t)
			c.useCookies("token-u-2", "u-2")

			resp := c.get(path)
			assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
			assert.Equal(t, "/login?expired=1", resp.Header.Get("Location"))
		})
	}
}

func TestUserIDCookieDoesNotChangeUpstreamIdentity(t *testing.T) {
	t.Parallel()

	c := newConsole(t)
	for _, ck := range c.cookies {
		if ck.Name == auth.CookieUserID {
			ck.Value = "u-2"
		}
	}

	resp := c.post("/tasks/task-1/remarks", url.Values{"text": {"Signed by the token holder."}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	remarks, err := c.store.Remarks("task-1")
	require.NoError(t, err)
	require.NotEmpty(t, remarks)
	assert.Equal(t, "u-1", remarks[0].Author)
}

func TestTaskListFilters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		rows int
	}{
		{"all", "/tasks", 6},
		{"one status", "/tasks?status=open", 2},
		{"repeated status", "/tasks?status=open&status=overdue", 3},
		{"search", "/tasks?q=memo", 1},
		{"member", "/tasks?member=tm-2", 2},
		{"page size", "/tasks?pageSize=10&page=9", 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := newConsole(t).page(tt.path)
			assert.Equal(t, tt.rows, doc.Find("table.tasks tbody tr").Length())
		})
	}
}

func TestTaskListCanonicalURL(t *testing.T) {
	t.Parallel()

	doc := newConsole(t).page("/tasks?status=overdue&status=open&sortBy=updatedAt&page=1")
	canonical, ok := doc.Find("form.filters").Attr("data-canonical")
	require.True(t, ok)
	assert.Equal(t, "/tasks?status=open%2Coverdue", canonical)

	checked := doc.Find(`input[name="status"][checked]`)
	assert.Equal(t, 2, checked.Length())
}

func TestTaskListEmptyFilterState(t *testing.T) {
	t.Parallel()

	doc := newConsole(t).page("/tasks?q=nothing-matches-this")
	assert.Contains(t, doc.Find(".panel-empty").Text(), "No tasks match these filters.")
}

func TestTaskNotFound(t *testing.T) {
	t.Parallel()

	resp := newConsole(t).get("/tasks/missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, document(t, resp).Find("h1").Text(), "Not found")
}

func TestCreateTaskValidationStaysLocal(t *testing.T) {
	t.Parallel()

	c := newConsole(t)
	resp := c.post("/tasks", url.Values{"title": {"Only a title"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	doc := document(t, resp)
	assert.Positive(t, doc.Find(".field-error").Length())
	_, disabled := doc.Find(`form.form button[type="submit"]`).Attr("disabled")
	assert.True(t, disabled)
	assert.Equal(t, 6, c.store.CountTasks(query.Default(query.Options{})))
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	c := newConsole(t)
	resp := c.post("/tasks", url.Values{
		"title":      {"Press Release"},
		"assignedTo": {"tm-1"},
		"status":     {"open"},
		"priority":   {"high"},
		"dueDate":    {"2026-03-20"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	location := resp.Header.Get("Location")
	assert.True(t, strings.HasPrefix(location, "/tasks/task-"), location)
	assert.True(t, strings.HasSuffix(location, "?notice=created"), location)

	doc := c.page(location)
	assert.Equal(t, "Press Release", doc.Find(".page-head h1").Text())
	assert.Equal(t, "Saved.", doc.Find(".notice").Text())
	assert.Contains(t, doc.Find(".task-meta").Text(), "Kabir Malhotra")
}

func TestQuickEditAndAudit(t *testing.T) {
	t.Parallel()

	c := newConsole(t)
	resp := c.post("/tasks/task-1/quick", url.Values{"status": {"completed"}, "priority": {"bogus"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	task, err := c.store.Task("task-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, task.Status)
	assert.Equal(t, models.PriorityHigh, task.Priority)

	doc := c.page("/tasks/task-1")
	load, ok := doc.Find("#audit [data-load]").Attr("data-load")
	require.True(t, ok)
	assert.Equal(t, "/tasks/task-1/audit", load)

	audit := c.page(load)
	assert.Equal(t, 1, audit.Find("#audit li").Length())
	assert.Contains(t, audit.Find("#audit li strong").Text(), "Updated")
}

func TestAuditSectionEmpty(t *testing.T) {
	t.Parallel()

	doc := newConsole(t).page("/tasks/task-2/audit")
	assert.Contains(t, doc.Find("#audit .panel-empty").Text(), "No recorded activity.")
}

func TestAddAttachment(t *testing.T) {
	t.Parallel()

	c := newConsole(t)
	resp := c.post("/tasks/task-2/attachments", url.Values{"url": {"not a url"}})
	assert.Equal(t, "/tasks/task-2?error=attachment", resp.Header.Get("Location"))

	resp = c.post("/tasks/task-2/attachments", url.Values{"url": {"https://files.example.com/deck.pdf"}})
	assert.Equal(t, "/tasks/task-2?notice=updated", resp.Header.Get("Location"))

	doc := c.page("/tasks/task-2")
	href, _ := doc.Find("#attachments li a").Attr("href")
	assert.Equal(t, "https://files.example.com/deck.pdf", href)
}

func TestAddRemark(t *testing.T) {
	t.Parallel()

	c := newConsole(t)
	resp := c.post("/tasks/task-1/remarks", url.Values{"text": {"Finance numbers are in."}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/tasks/task-1#remarks", resp.Header.Get("Location"))

	doc := c.page("/tasks/task-1")
	entries := doc.Find(".timeline .entry")
	require.Equal(t, 2, entries.Length())
	first := entries.First()
	assert.Equal(t, "Finance numbers are in.", first.Find(".remark-text").Text())
	assert.True(t, first.HasClass("entry-confirmed"))
	assert.Contains(t, first.Find(".muted").Text(), "Chairman Office")
}

// remarkOutage passes everything to the real client except remark writes, which fail.
type remarkOutage struct {
	web.TaskAPI
}

func (remarkOutage) AddRemark(context.Context, string, string) (models.Remark, bool, error) {
	return models.Remark{}, false, &client.APIError{StatusCode: http.StatusServiceUnavailable, Body: "remarks are read-only"}
}

func TestFailedRemarkStaysVisibleUntilDismissed(t *testing.T) {
	t.Parallel()

	c := newConsole(t, func(d *web.Deps) { d.API = remarkOutage{TaskAPI: d.API} })
	resp := c.post("/tasks/task-1/remarks", url.Values{"text": {"Lost remark"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	doc := c.page("/tasks/task-1")
	failed := doc.Find(".timeline .entry-failed")
	require.Equal(t, 1, failed.Length())
	assert.Equal(t, "Lost remark", failed.Find(".remark-text").Text())
	assert.Contains(t, failed.Find(".panel-error").Text(), "remarks are read-only")
	assert.Equal(t, 2, doc.Find(".timeline .entry").Length())

	action, ok := failed.Find("form").Attr("action")
	require.True(t, ok)
	resp = c.post(action, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	doc = c.page("/tasks/task-1")
	assert.Equal(t, 0, doc.Find(".timeline .entry-failed").Length())
	assert.Equal(t, 1, doc.Find(".timeline .entry").Length())
}

func TestEmptyRemarkIsRejected(t *testing.T) {
	t.Parallel()

	c := newConsole(t)
	resp := c.post("/tasks/task-1/remarks", url.Values{"text": {"   "}})
	assert.Equal(t, "/tasks/task-1?error=remark", resp.Header.Get("Location"))

	remarks, err := c.store.Remarks("task-1")
	require.NoError(t, err)
	assert.Len(t, remarks, 1)
}

func TestMemberProfileLocksAssignee(t *testing.T) {
	t.Parallel()

	doc := newConsole(t).page("/team/tm-3?member=tm-1")

	assert.Equal(t, "Andre Collins", doc.Find(".page-head h1").Text())
	assert.Equal(t, 2, doc.Find("#assigned table.tasks tbody tr").Length())
	assert.Equal(t, 0, doc.Find(`#assigned input[name="member"]`).Length())

	stat := func(label string) string {
		var v string
		doc.Find("#stats .kpi").Each(func(_ int, s *goquery.Selection) {
			if s.Find(".kpi-label").Text() == label {
				v = s.Find(".kpi-value").Text()
			}
		})
		return v
	}
	assert.Equal(t, "2", stat("Total"))
	assert.Equal(t, "1", stat("Open"))
	assert.Equal(t, "1", stat("Overdue"))
	assert.Equal(t, "0%", stat("Completion rate"))
	assert.Equal(t, len(models.KnownStatuses), doc.Find(".toggles a").Length())
}

func TestTeamListAndMemberForms(t *testing.T) {
	t.Parallel()

	c := newConsole(t)
	doc := c.page("/team")
	assert.Equal(t, 3, doc.Find("table.team tbody tr").Length())

	resp := c.post("/team", url.Values{"name": {"Mira Sol"}, "designation": {"Analyst"}, "email": {"not-an-email"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, document(t, resp).Find(".field-error").Text(), "valid email")

	resp = c.post("/team", url.Values{"name": {"Mira Sol"}, "designation": {"Analyst"}, "email": {"mira@athena.local"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Len(t, c.store.Members(), 4)

	resp = c.post("/team/tm-1/delete", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, err := c.store.Member("tm-1")
	require.ErrorIs(t, err, demo.ErrNotFound)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	c := newConsole(t)
	doc := c.page("/search?q=OPERATIONS")
	assert.Equal(t, 1, doc.Find("#task-results li").Length())
	assert.Equal(t, 1, doc.Find("#member-results li").Length())

	doc = c.page("/search?q=zzz")
	assert.Contains(t, doc.Find(".panel-empty").Text(), "Nothing matched")
}

func TestMomDetailRendersSanitizedMarkdown(t *testing.T) {
	t.Parallel()

	c := newConsole(t)
	doc := c.page("/moms/mom-1")
	assert.Equal(t, "Friday", doc.Find("#notes .markdown strong").Text())
	assert.Equal(t, 2, doc.Find("#notes .markdown h2").Length())

	resp := c.post("/moms", url.Values{
		"title":       {"Unsafe"},
		"meetingDate": {"2026-03-09"},
		"rawNotes":    {"<script>alert(1)</script>\n\n*fine*"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	doc = c.page(resp.Header.Get("Location"))
	assert.Equal(t, 0, doc.Find("#notes script").Length())
	assert.Equal(t, "fine", doc.Find("#notes .markdown em").Text())
}

func TestCreateMomWithUpload(t *testing.T) {
	t.Parallel()

	c := newConsole(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range map[string]string{
		"title":       "Budget Review",
		"meetingDate": "2026-03-08",
		"attendees":   "Kabir Malhotra, Elena Graves",
		"rawNotes":    "Budget approved.",
	} {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", "budget.txt")
	require.NoError(t, err)
	_, err = io.WriteString(fw, "numbers")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, c.url+"/moms", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := c.do(req)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	doc := c.page(resp.Header.Get("Location"))
	href, ok := doc.Find("#attachments li a").Attr("href")
	require.True(t, ok)
	assert.Contains(t, href, "/files/")
	attendees := doc.Find(".muted").First().Text()
	assert.Contains(t, attendees, "Kabir Malhotra")
	assert.Contains(t, attendees, "Elena Graves")

	list := c.page("/moms")
	assert.Equal(t, 2, list.Find("table.moms tbody tr").Length())
}

func TestMomFormRequiresNotes(t *testing.T) {
	t.Parallel()

	c := newConsole(t)
	resp := c.post("/moms", url.Values{"title": {"No notes"}, "meetingDate": {"2026-03-09"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Len(t, c.store.Moms(), 1)
}

func TestSettingsUsers(t *testing.T) {
	t.Parallel()

	c := newConsole(t)
	doc := c.page("/settings")
	assert.Equal(t, 2, doc.Find("table.users tbody tr").Length())

	resp := c.post("/settings/users", url.Values{"name": {"Analyst"}, "email": {"analyst@athena.local"}, "role": {"assistant"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = c.post("/settings/users", url.Values{
		"name": {"Analyst"}, "email": {"analyst@athena.local"}, "role": {"assistant"}, "password": {"secret"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Len(t, c.store.Users(), 3)

	resp = c.post("/settings/users/u-2", url.Values{"name": {"Chief of Staff"}, "email": {"chief@athena.local"}, "role": {"admin"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	user, ok := c.store.User("u-2")
	require.True(t, ok)
	assert.Equal(t, "chief@athena.local", user.Email)
}

type snapshotsMock struct {
	mock.Mock
}

func (m *snapshotsMock) TakeSnapshot(ctx context.Context) (models.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Snapshot), args.Error(1)
}

func (m *snapshotsMock) History(ctx context.Context, limit int) ([]models.Snapshot, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.Snapshot), args.Error(1)
}

func TestReportsHistory(t *testing.T) {
	t.Parallel()

	snaps := new(snapshotsMock)
	snaps.On("History", mock.Anything, 30).Return([]models.Snapshot{
		{Date: fixedNow.Truncate(24 * time.Hour), TotalTasks: 6, Overdue: 2, CompletionRate: 17},
	}, nil)
	snaps.On("TakeSnapshot", mock.Anything).Return(models.Snapshot{}, nil)

	c := newConsole(t, withSnapshots(snaps))
	doc := c.page("/reports")
	rows := doc.Find("#history tbody tr")
	require.Equal(t, 1, rows.Length())
	assert.Contains(t, rows.Text(), "Mar 10, 2026")
	assert.Contains(t, rows.Text(), "17%")

	resp := c.post("/reports/generate", nil)
	assert.Equal(t, "/reports?notice=report", resp.Header.Get("Location"))
	snaps.AssertExpectations(t)
}

func TestReportsPreviewWithoutStore(t *testing.T) {
	t.Parallel()

	c := newConsole(t)
	resp := c.post("/reports/generate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc := document(t, resp)
	cells := doc.Find("#preview tbody td")
	require.Positive(t, cells.Length())
	assert.Equal(t, "6", cells.Eq(1).Text())
	assert.Contains(t, doc.Find("#history").Text(), "not stored")
}

// brokenAPI signs in through the real client and panics on any other call.
type brokenAPI struct {
	web.TaskAPI

	login auth.Authenticator
}

func (b brokenAPI) Login(ctx context.Context, email, password string) (models.LoginResult, error) {
	return b.login.Login(ctx, email, password)
}

func TestPanicRendersFailurePage(t *testing.T) {
	t.Parallel()

	c := newConsole(t, func(d *web.Deps) { d.API = brokenAPI{login: d.API} })
	resp := c.get("/moms")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	doc := document(t, resp)
	assert.Contains(t, doc.Find(".failure h1").Text(), "Something went wrong")
	href, _ := doc.Find(".failure a").Attr("href")
	assert.Equal(t, "/moms", href)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	t.Parallel()

	resp := newConsole(t).get("/nowhere")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
