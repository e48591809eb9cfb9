// Package client talks to the drawing REST API. Client satisfies
// editor.Persistence, so an editing session can load and save drawings on
// a remote server.
package client

import (
	"building-planner/core"
	"building-planner/shapes"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL, e.g. http://localhost:3001.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

type (
	saveRequest struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Shapes      *[]shapes.Shape `json:"shapes,omitempty"`
	}

	createRequest struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	errorResponse struct {
		Error string `json:"error"`
	}
)

func (c *Client) drawingURL(id string) string {
	return c.baseURL + "/api/drawings/" + url.PathEscape(id)
}

// do sends body as JSON and decodes a 2xx response into out.
func (c *Client) do(ctx context.Context, method, target, id string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := logrus.WithFields(logrus.Fields{"method": method, "url": target})
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("Request failed")
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(resp, id)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response, id string) error {
	var e errorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e)
	if e.Error == "" {
		e.Error = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return core.NotFoundError(id)
	case http.StatusBadRequest:
		return fmt.Errorf("%s: %w", e.Error, core.ErrValidation)
	default:
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
	}
}

// List returns every drawing without shapes.
func (c *Client) List(ctx context.Context) ([]*core.Drawing, error) {
	var list []*core.Drawing
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/api/drawings", "", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) Get(ctx context.Context, id string) (*core.Drawing, error) {
	var d core.Drawing
	if err := c.do(ctx, http.MethodGet, c.drawingURL(id), id, nil, &d); err != nil {
		return nil, err
	}
	if d.Shapes == nil {
		d.Shapes = []shapes.Shape{}
	}
	return &d, nil
}

func (c *Client) Create(ctx context.Context, name, description string) (*core.Drawing, error) {
	var d core.Drawing
	err := c.do(ctx, http.MethodPost, c.baseURL+"/api/drawings", "",
		createRequest{Name: name, Description: description}, &d)
	if err != nil {
		return nil, err
	}
	if d.Shapes == nil {
		d.Shapes = []shapes.Shape{}
	}
	return &d, nil
}

// Save sends the full shape list. A nil list leaves the stored shapes alone;
// an empty one clears them.
func (c *Client) Save(ctx context.Context, id string, name, description string, list []shapes.Shape) error {
	body := saveRequest{Name: name, Description: description}
	if list != nil {
		body.Shapes = &list
	}
	return c.do(ctx, http.MethodPut, c.drawingURL(id), id, body, nil)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.drawingURL(id), id, nil, nil)
}

// RenderPNG fetches the server-side rendering of a drawing.
func (c *Client) RenderPNG(ctx context.Context, id string, annotations bool) ([]byte, error) {
	target := fmt.Sprintf("%s/render.png?annotations=%t", c.drawingURL(id), annotations)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, statusError(resp, id)
	}
	return io.ReadAll(resp.Body)
}
