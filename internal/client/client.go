// Package client is a typed client for the task JSON API. Failures are mapped
// back onto the tasks error taxonomy so callers handle remote and in-process
// services the same way.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskapp/internal/models"
	"taskapp/internal/tasks"
)

// Client talks to a taskapp server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the server at baseURL. A nil httpClient selects a
// client with a 10 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type taskEnvelope struct {
	Task models.Task `json:"task"`
}

type listEnvelope struct {
	Tasks []models.Task `json:"tasks"`
}

func (c *Client) ListActiveTasks(ctx context.Context) ([]models.Task, error) {
	var out listEnvelope
	if err := c.do(ctx, "list tasks", 0, http.MethodGet, "/api/tasks", nil, &out); err != nil {
		return nil, err
	}
	if out.Tasks == nil {
		out.Tasks = []models.Task{}
	}
	return out.Tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, title, description string) (models.Task, error) {
	body := map[string]string{"title": title, "description": description}

	var out taskEnvelope
	if err := c.do(ctx, "create task", 0, http.MethodPost, "/api/tasks", body, &out); err != nil {
		return models.Task{}, err
	}
	return out.Task, nil
}

func (c *Client) GetTask(ctx context.Context, id int64) (models.Task, error) {
	var out taskEnvelope
	if err := c.do(ctx, "get task", id, http.MethodGet, taskPath(id), nil, &out); err != nil {
		return models.Task{}, err
	}
	return out.Task, nil
}

func (c *Client) SetCompletion(ctx context.Context, id int64, completed bool) (models.Task, error) {
	body := map[string]bool{"completed": completed}

	var out taskEnvelope
	if err := c.do(ctx, "set completion", id, http.MethodPut, taskPath(id)+"/completion", body, &out); err != nil {
		return models.Task{}, err
	}
	return out.Task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, "delete task", id, http.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id int64) string {
	return "/api/tasks/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, op string, id int64, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &tasks.StoreError{Op: op, Err: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &tasks.StoreError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &tasks.StoreError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode >= 300 {
		return decodeError(op, id, resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &tasks.StoreError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// decodeError rebuilds the typed error the server reported.
func decodeError(op string, id int64, status int, data []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(data, &payload)
	msg := payload.Error
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch status {
	case http.StatusBadRequest:
		field, reason, ok := strings.Cut(msg, " ")
		if !ok {
			field, reason = "request", msg
		}
		return &tasks.ValidationError{Field: field, Reason: reason}
	case http.StatusNotFound:
		return &tasks.NotFoundError{ID: id}
	default:
		return &tasks.StoreError{Op: op, Err: errors.New(msg)}
	}
}
