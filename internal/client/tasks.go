package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/normalize"
)

// listAllPageSize is the page size used when walking every page of /tasks.
const listAllPageSize = 100

type taskEnvelope struct {
	Data []normalize.WireTask `json:"data"`
	Meta *models.ListMeta     `json:"meta"`
}

// decodeTaskPage accepts both the paged envelope and a bare array.
func decodeTaskPage(raw json.RawMessage) (models.TaskPage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var wire []normalize.WireTask
		if err := json.Unmarshal(raw, &wire); err != nil {
			return models.TaskPage{}, fmt.Errorf("%w: task list: %w", ErrMalformedResponse, err)
		}
		return models.TaskPage{Tasks: normalize.Tasks(wire)}, nil
	}

	var env taskEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return models.TaskPage{}, fmt.Errorf("%w: task page: %w", ErrMalformedResponse, err)
	}
	page := models.TaskPage{Tasks: normalize.Tasks(env.Data)}
	if env.Meta != nil {
		page.Meta = *env.Meta
		page.Paged = true
	}
	return page, nil
}

// ListTasks fetches one page of tasks. When the API ignores paging and answers with a bare array, the result
// has Paged unset and holds the full collection.
func (c *Client) ListTasks(ctx context.Context, params url.Values) (models.TaskPage, error) {
	var raw json.RawMessage
	err := c.do(ctx, request{method: http.MethodGet, endpoint: "GET /tasks", path: "/tasks", query: params}, &raw)
	if err != nil {
		return models.TaskPage{}, err
	}
	return decodeTaskPage(raw)
}

// ListAllTasks returns every task, walking pages when the API pages its answer.
func (c *Client) ListAllTasks(ctx context.Context) ([]models.Task, error) {
	var all []models.Task
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("pageSize", strconv.Itoa(listAllPageSize))

		res, err := c.ListTasks(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to list tasks page %d: %w", page, err)
		}
		if !res.Paged {
			return res.Tasks, nil
		}
		all = append(all, res.Tasks...)
		if len(res.Tasks) == 0 || page >= res.Meta.TotalPages || len(all) >= res.Meta.Total {
			return all, nil
		}
	}
}

// CountTasks asks the API for the number of tasks matching params only.
func (c *Client) CountTasks(ctx context.Context, params url.Values) (int, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("countOnly", "true")

	var raw json.RawMessage
	if err := c.do(ctx, request{method: http.MethodGet, endpoint: "GET /tasks?countOnly", path: "/tasks", query: query}, &raw); err != nil {
		return 0, err
	}
	return decodeCount(raw)
}

// decodeCount accepts {"count": n}, {"total": n} or a bare number.
func decodeCount(raw json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var payload struct {
		Count *int `json:"count"`
		Total *int `json:"total"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return 0, fmt.Errorf("%w: count: %w", ErrMalformedResponse, err)
	}
	switch {
	case payload.Count != nil:
		return *payload.Count, nil
	case payload.Total != nil:
		return *payload.Total, nil
	default:
		return 0, fmt.Errorf("%w: count response carries neither count nor total", ErrMalformedResponse)
	}
}

func (c *Client) GetTask(ctx context.Context, id string) (models.Task, error) {
	id, err := normalize.RequireID(id)
	if err != nil {
		return models.Task{}, err
	}

	var wire normalize.WireTask
	err = c.do(ctx, request{method: http.MethodGet, endpoint: "GET /tasks/{id}", path: "/tasks/" + url.PathEscape(id)}, &wire)
	if err != nil {
		return models.Task{}, err
	}
	return normalize.Task(wire), nil
}

func (c *Client) CreateTask(ctx context.Context, in models.TaskInput) (models.Task, error) {
	var wire normalize.WireTask
	err := c.do(ctx, request{method: http.MethodPost, endpoint: "POST /tasks", path: "/tasks", body: in}, &wire)
	if err != nil {
		return models.Task{}, err
	}
	return normalize.Task(wire), nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	id, err := normalize.RequireID(id)
	if err != nil {
		return models.Task{}, err
	}

	var wire normalize.WireTask
	err = c.do(ctx, request{
		method: http.MethodPatch, endpoint: "PATCH /tasks/{id}", path: "/tasks/" + url.PathEscape(id), body: patch,
	}, &wire)
	if err != nil {
		return models.Task{}, err
	}
	return normalize.Task(wire), nil
}

// ListTasksByTeamMember returns every task assigned to one member.
func (c *Client) ListTasksByTeamMember(ctx context.Context, memberID string) ([]models.Task, error) {
	memberID, err := normalize.RequireID(memberID)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	err = c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: "GET /tasks/by-team-member/{id}",
		path:     "/tasks/by-team-member/" + url.PathEscape(memberID),
	}, &raw)
	if err != nil {
		return nil, err
	}
	page, err := decodeTaskPage(raw)
	if err != nil {
		return nil, err
	}
	return page.Tasks, nil
}

func (c *Client) AddAttachments(ctx context.Context, taskID string, urls []string) error {
	taskID, err := normalize.RequireID(taskID)
	if err != nil {
		return err
	}

	return c.do(ctx, request{
		method:   http.MethodPost,
		endpoint: "POST /tasks/{id}/attachments",
		path:     "/tasks/" + url.PathEscape(taskID) + "/attachments",
		body:     map[string][]string{"urls": urls},
	}, nil)
}

// AddRemark posts a text remark. The API may or may not echo the created remark; ok reports whether it did.
func (c *Client) AddRemark(ctx context.Context, taskID, text string) (models.Remark, bool, error) {
	taskID, err := normalize.RequireID(taskID)
	if err != nil {
		return models.Remark{}, false, err
	}

	var wire normalize.WireRemark
	err = c.do(ctx, request{
		method:   http.MethodPost,
		endpoint: "POST /tasks/{id}/remarks",
		path:     "/tasks/" + url.PathEscape(taskID) + "/remarks",
		body:     map[string]string{"text": text},
	}, &wire)
	if err != nil {
		return models.Remark{}, false, err
	}
	remark := normalize.Remark(wire)
	return remark, remark.ID != "", nil
}

func (c *Client) AddAudioRemark(ctx context.Context, taskID string, in models.AudioRemarkInput) error {
	taskID, err := normalize.RequireID(taskID)
	if err != nil {
		return err
	}

	return c.do(ctx, request{
		method:   http.MethodPost,
		endpoint: "POST /tasks/{id}/remarks/audio",
		path:     "/tasks/" + url.PathEscape(taskID) + "/remarks/audio",
		body:     in,
	}, nil)
}

func (c *Client) ListRemarks(ctx context.Context, taskID string) ([]models.Remark, error) {
	taskID, err := normalize.RequireID(taskID)
	if err != nil {
		return nil, err
	}

	var wire []normalize.WireRemark
	err = c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: "GET /tasks/{id}/remarks",
		path:     "/tasks/" + url.PathEscape(taskID) + "/remarks",
	}, &wire)
	if err != nil {
		return nil, err
	}
	return normalize.Remarks(wire), nil
}

func (c *Client) ListAuditLogs(ctx context.Context, taskID string) ([]models.AuditLog, error) {
	taskID, err := normalize.RequireID(taskID)
	if err != nil {
		return nil, err
	}

	var wire []normalize.WireAuditLog
	err = c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: "GET /audit-logs",
		path:     "/audit-logs",
		query:    url.Values{"entityType": {"task"}, "entityId": {taskID}},
	}, &wire)
	if err != nil {
		return nil, err
	}
	return normalize.AuditLogs(wire), nil
}
