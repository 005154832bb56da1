package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/normalize"
)

func (c *Client) ListTeamMembers(ctx context.Context) ([]models.TeamMember, error) {
	var wire []normalize.WireTeamMember
	err := c.do(ctx, request{method: http.MethodGet, endpoint: "GET /team-members", path: "/team-members"}, &wire)
	if err != nil {
		return nil, err
	}
	return normalize.TeamMembers(wire), nil
}

func (c *Client) GetTeamMember(ctx context.Context, id string) (models.TeamMember, error) {
	id, err := normalize.RequireID(id)
	if err != nil {
		return models.TeamMember{}, err
	}

	var wire normalize.WireTeamMember
	err = c.do(ctx, request{
		method: http.MethodGet, endpoint: "GET /team-members/{id}", path: "/team-members/" + url.PathEscape(id),
	}, &wire)
	if err != nil {
		return models.TeamMember{}, err
	}
	return normalize.TeamMember(wire), nil
}

func (c *Client) CreateTeamMember(ctx context.Context, in models.TeamMemberInput) (models.TeamMember, error) {
	var wire normalize.WireTeamMember
	err := c.do(ctx, request{
		method: http.MethodPost, endpoint: "POST /team-members", path: "/team-members", body: in,
	}, &wire)
	if err != nil {
		return models.TeamMember{}, err
	}
	return normalize.TeamMember(wire), nil
}

func (c *Client) UpdateTeamMember(ctx context.Context, id string, in models.TeamMemberInput) (models.TeamMember, error) {
	id, err := normalize.RequireID(id)
	if err != nil {
		return models.TeamMember{}, err
	}

	var wire normalize.WireTeamMember
	err = c.do(ctx, request{
		method:   http.MethodPatch,
		endpoint: "PATCH /team-members/{id}",
		path:     "/team-members/" + url.PathEscape(id),
		body:     in,
	}, &wire)
	if err != nil {
		return models.TeamMember{}, err
	}
	return normalize.TeamMember(wire), nil
}

// DeleteTeamMember soft-deletes a member; the API keeps the record inactive.
func (c *Client) DeleteTeamMember(ctx context.Context, id string) error {
	id, err := normalize.RequireID(id)
	if err != nil {
		return err
	}

	return c.do(ctx, request{
		method: http.MethodDelete, endpoint: "DELETE /team-members/{id}", path: "/team-members/" + url.PathEscape(id),
	}, nil)
}
