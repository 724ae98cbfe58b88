// Package googletasks mirrors Review tasks into one Google Tasks list.
package googletasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/felixgeelhaar/kanban/pkg/domain/remote"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	DefaultBaseURL    = "https://tasks.googleapis.com/tasks/v1"
	DefaultTaskListID = "@default"
	DefaultTimeout    = 30 * time.Second

	tasksScope = "https://www.googleapis.com/auth/tasks"
)

// Config locates the list and the local credential files.
type Config struct {
	TaskListID      string
	TokenFile       string
	CredentialsFile string
	Timeout         time.Duration
	BaseURL         string
}

// Client implements remote.TaskList against the Google Tasks REST API.
type Client struct {
	cfg        Config
	logger     *slog.Logger
	clock      func() time.Time
	httpClient func(ctx context.Context) (*http.Client, error)
}

// Option customises a Client.
type Option func(*Client)

// WithLogger sets the logger failures are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient bypasses the credential files and uses hc for every call.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = func(context.Context) (*http.Client, error) { return hc, nil }
	}
}

// WithClock overrides the time stamped on completed tasks.
func WithClock(clock func() time.Time) Option {
	return func(c *Client) {
		c.clock = clock
	}
}

func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.TaskListID == "" {
		cfg.TaskListID = DefaultTaskListID
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	c := &Client{
		cfg:    cfg,
		logger: slog.Default(),
		clock:  time.Now,
	}
	c.httpClient = c.oauthClient
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ remote.TaskList = (*Client)(nil)

type apiTask struct {
	ID        string `json:"id,omitempty"`
	Title     string `json:"title,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Status    string `json:"status,omitempty"`
	Completed string `json:"completed,omitempty"`
}

// CreateTask inserts a task into the list and returns its remote id.
func (c *Client) CreateTask(ctx context.Context, title, notes string) remote.Outcome[string] {
	body, err := c.doRequest(ctx, "insert", http.MethodPost, c.tasksPath(""), apiTask{Title: title, Notes: notes})
	if err != nil {
		return fail[string](c, "failed to create remote task", err, "title", title)
	}

	var created apiTask
	if err := json.Unmarshal(body, &created); err != nil {
		return fail[string](c, "failed to decode created remote task", err, "title", title)
	}
	if created.ID == "" {
		return fail[string](c, "remote task created without id", remote.ErrEmptyResponse, "title", title)
	}
	return remote.Succeeded(created.ID)
}

// CompleteTask marks the remote task completed now.
func (c *Client) CompleteTask(ctx context.Context, remoteID string) remote.Outcome[bool] {
	patch := apiTask{
		Status:    string(remote.StatusCompleted),
		Completed: c.clock().UTC().Format(time.RFC3339),
	}
	if _, err := c.doRequest(ctx, "complete", http.MethodPatch, c.tasksPath(remoteID), patch); err != nil {
		return fail[bool](c, "failed to complete remote task", err, "remote_id", remoteID)
	}
	return remote.Succeeded(true)
}

// DeleteTask removes the remote task.
func (c *Client) DeleteTask(ctx context.Context, remoteID string) remote.Outcome[bool] {
	if _, err := c.doRequest(ctx, "delete", http.MethodDelete, c.tasksPath(remoteID), nil); err != nil {
		return fail[bool](c, "failed to delete remote task", err, "remote_id", remoteID)
	}
	return remote.Succeeded(true)
}

// TaskStatus polls the remote task's status.
func (c *Client) TaskStatus(ctx context.Context, remoteID string) remote.Outcome[remote.Status] {
	body, err := c.doRequest(ctx, "get", http.MethodGet, c.tasksPath(remoteID), nil)
	if err != nil {
		return fail[remote.Status](c, "failed to get remote task status", err, "remote_id", remoteID)
	}

	var task apiTask
	if err := json.Unmarshal(body, &task); err != nil {
		return fail[remote.Status](c, "failed to decode remote task", err, "remote_id", remoteID)
	}
	status := remote.Status(task.Status)
	if !status.IsValid() {
		return fail[remote.Status](c, "remote task has no usable status", remote.ErrEmptyResponse, "remote_id", remoteID, "status", task.Status)
	}
	return remote.Succeeded(status)
}

func fail[T any](c *Client, msg string, err error, args ...any) remote.Outcome[T] {
	c.logger.Error(msg, append(args, "error", err)...)
	return remote.Failed[T](err)
}

func (c *Client) tasksPath(remoteID string) string {
	path := "/lists/" + url.PathEscape(c.cfg.TaskListID) + "/tasks"
	if remoteID != "" {
		path += "/" + url.PathEscape(remoteID)
	}
	return path
}

func (c *Client) doRequest(ctx context.Context, op, method, endpoint string, body any) ([]byte, error) {
	hc, err := c.httpClient(ctx)
	if err != nil {
		return nil, err
	}

	t := timeout.New[[]byte](timeout.Config{DefaultTimeout: c.cfg.Timeout})
	return t.Execute(ctx, c.cfg.Timeout, func(ctx context.Context) ([]byte, error) {
		var reqBody io.Reader
		if body != nil {
			data, err := json.Marshal(body)
			if err != nil {
				return nil, err
			}
			reqBody = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+endpoint, reqBody)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := hc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close() //nolint:errcheck // best-effort close on read body

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= 400 {
			return nil, &remote.APIError{Operation: op, StatusCode: resp.StatusCode, Body: string(respBody)}
		}
		return respBody, nil
	})
}

// oauthClient builds an authorised client from the credential files, read on every call.
func (c *Client) oauthClient(ctx context.Context) (*http.Client, error) {
	if c.cfg.TokenFile == "" || c.cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("%w: token and credentials files must be configured", remote.ErrMissingCredentials)
	}

	// #nosec G304 -- Path comes from local configuration
	credentials, err := os.ReadFile(c.cfg.CredentialsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: credentials file not found: %s", remote.ErrMissingCredentials, c.cfg.CredentialsFile)
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	token, err := LoadToken(c.cfg.TokenFile)
	if err != nil {
		return nil, err
	}

	oauthCfg, err := google.ConfigFromJSON(credentials, tasksScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return oauthCfg.Client(ctx, token), nil
}

type tokenFile struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	Expiry       string `json:"expiry,omitempty"`
	ExpiryDate   int64  `json:"expiry_date,omitempty"`
}

// LoadToken reads an OAuth token file. Both the Go (expiry, RFC3339) and the
// Node client (expiry_date, epoch millis) layouts are accepted.
func LoadToken(path string) (*oauth2.Token, error) {
	// #nosec G304 -- Path comes from local configuration
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: token file not found: %s", remote.ErrMissingCredentials, path)
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var raw tokenFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token file: %w", err)
	}

	token := &oauth2.Token{
		AccessToken:  raw.AccessToken,
		RefreshToken: raw.RefreshToken,
		TokenType:    raw.TokenType,
	}
	switch {
	case raw.Expiry != "":
		expiry, err := time.Parse(time.RFC3339, raw.Expiry)
		if err != nil {
			return nil, fmt.Errorf("invalid token expiry: %w", err)
		}
		token.Expiry = expiry
	case raw.ExpiryDate > 0:
		token.Expiry = time.UnixMilli(raw.ExpiryDate)
	}
	return token, nil
}
