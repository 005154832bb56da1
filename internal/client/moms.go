package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/normalize"
)

func (c *Client) ListMoms(ctx context.Context) ([]models.Mom, error) {
	var wire []normalize.WireMom
	if err := c.do(ctx, request{method: http.MethodGet, endpoint: "GET /moms", path: "/moms"}, &wire); err != nil {
		return nil, err
	}
	return normalize.Moms(wire), nil
}

func (c *Client) GetMom(ctx context.Context, id string) (models.Mom, error) {
	id, err := normalize.RequireID(id)
	if err != nil {
		return models.Mom{}, err
	}

	var wire normalize.WireMom
	err = c.do(ctx, request{method: http.MethodGet, endpoint: "GET /moms/{id}", path: "/moms/" + url.PathEscape(id)}, &wire)
	if err != nil {
		return models.Mom{}, err
	}
	return normalize.Mom(wire), nil
}

func (c *Client) CreateMom(ctx context.Context, in models.MomInput) (models.Mom, error) {
	var wire normalize.WireMom
	err := c.do(ctx, request{method: http.MethodPost, endpoint: "POST /moms", path: "/moms", body: in}, &wire)
	if err != nil {
		return models.Mom{}, err
	}
	return normalize.Mom(wire), nil
}

func (c *Client) UpdateMom(ctx context.Context, id string, in models.MomInput) (models.Mom, error) {
	id, err := normalize.RequireID(id)
	if err != nil {
		return models.Mom{}, err
	}

	var wire normalize.WireMom
	err = c.do(ctx, request{
		method: http.MethodPatch, endpoint: "PATCH /moms/{id}", path: "/moms/" + url.PathEscape(id), body: in,
	}, &wire)
	if err != nil {
		return models.Mom{}, err
	}
	return normalize.Mom(wire), nil
}

func (c *Client) DeleteMom(ctx context.Context, id string) error {
	id, err := normalize.RequireID(id)
	if err != nil {
		return err
	}

	return c.do(ctx, request{method: http.MethodDelete, endpoint: "DELETE /moms/{id}", path: "/moms/" + url.PathEscape(id)}, nil)
}

// UploadMomFile sends a file as multipart form field "file" and returns the stored file URL.
func (c *Client) UploadMomFile(ctx context.Context, name string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err = io.Copy(part, r); err != nil {
		return "", fmt.Errorf("failed to copy upload %q: %w", name, err)
	}
	if err = form.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart form: %w", err)
	}

	var out struct {
		URL     string `json:"url"`
		FileURL string `json:"fileUrl"`
	}
	err = c.do(ctx, request{
		method:      http.MethodPost,
		endpoint:    "POST /uploads/moms",
		path:        "/uploads/moms",
		rawBody:     &buf,
		contentType: form.FormDataContentType(),
	}, &out)
	if err != nil {
		return "", err
	}

	switch {
	case out.URL != "":
		return out.URL, nil
	case out.FileURL != "":
		return out.FileURL, nil
	default:
		return "", fmt.Errorf("%w: upload response carries no url", ErrMalformedResponse)
	}
}
