package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/normalize"
)

// Login exchanges credentials for a token. It satisfies auth.Authenticator.
func (c *Client) Login(ctx context.Context, email, password string) (models.LoginResult, error) {
	var wire normalize.WireLoginResponse
	err := c.do(ctx, request{
		method:   http.MethodPost,
		endpoint: "POST /auth/login",
		path:     "/auth/login",
		body:     models.LoginRequest{Email: email, Password: password},
	}, &wire)
	if err != nil {
		return models.LoginResult{}, err
	}
	return normalize.Login(wire), nil
}

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var wire []normalize.WireUser
	if err := c.do(ctx, request{method: http.MethodGet, endpoint: "GET /users", path: "/users"}, &wire); err != nil {
		return nil, err
	}
	return normalize.Users(wire), nil
}

func (c *Client) CreateUser(ctx context.Context, in models.UserInput) (models.User, error) {
	var wire normalize.WireUser
	err := c.do(ctx, request{method: http.MethodPost, endpoint: "POST /users", path: "/users", body: in}, &wire)
	if err != nil {
		return models.User{}, err
	}
	return normalize.User(wire), nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, in models.UserInput) (models.User, error) {
	id, err := normalize.RequireID(id)
	if err != nil {
		return models.User{}, err
	}

	var wire normalize.WireUser
	err = c.do(ctx, request{
		method: http.MethodPatch, endpoint: "PATCH /users/{id}", path: "/users/" + url.PathEscape(id), body: in,
	}, &wire)
	if err != nil {
		return models.User{}, err
	}
	return normalize.User(wire), nil
}

// DeleteUser soft-deletes an operator account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	id, err := normalize.RequireID(id)
	if err != nil {
		return err
	}

	return c.do(ctx, request{method: http.MethodDelete, endpoint: "DELETE /users/{id}", path: "/users/" + url.PathEscape(id)}, nil)
}
