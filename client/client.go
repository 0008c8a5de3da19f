// Package client is the typed data layer for the taskflow API: a
// request wrapper that attaches the bearer token, a server-state cache
// keyed by resource and filter parameters, and explicit session state
// backed by a SessionStore.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// APIError is a non-2xx response, carrying the server-provided message
// when one was present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

type Client struct {
	baseURL string
	http    *http.Client
	store   SessionStore

	mu      sync.Mutex
	session Session
	cache   map[string]any
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithSessionStore sets the persistence backend for the session.
// Defaults to an in-memory store.
func WithSessionStore(s SessionStore) Option {
	return func(c *Client) { c.store = s }
}

// New builds a Client for baseURL (e.g. "http://localhost:5001/api")
// and restores any persisted session from the store.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		store:   NewMemoryStore(),
		cache:   make(map[string]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	s, err := c.store.Load()
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	c.session = s
	return c, nil
}

// Session returns a copy of the current session state.
func (c *Client) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) setSession(s Session) error {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
	return c.store.Save(s)
}

func (c *Client) clearSession() error {
	c.mu.Lock()
	c.session = Session{}
	for k := range c.cache {
		delete(c.cache, k)
	}
	c.mu.Unlock()
	return c.store.Clear()
}

// do performs one request/response round trip. Writes go through here
// directly and are never retried, to avoid duplicate side effects.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s := c.Session(); s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Message string `json:"message"`
		}
		msg := ""
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil {
			msg = e.Message
		}
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// get performs a read, retrying once on failure.
func (c *Client) get(ctx context.Context, path string, out any) error {
	err := c.do(ctx, http.MethodGet, path, nil, out)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) cached(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.cache[key]
	return v, ok
}

func (c *Client) setCached(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = v
}

// invalidate drops the task list and stats entries; every successful
// mutation calls this so subsequent reads refetch.
func (c *Client) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.cache {
		if k == "stats" || strings.HasPrefix(k, "tasks") {
			delete(c.cache, k)
		}
	}
}

// Register creates an account and stores the issued session.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	var res AuthResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &res); err != nil {
		return nil, err
	}
	if err := c.setSession(Session{Token: res.Token, User: &res.User}); err != nil {
		return nil, err
	}
	return &res, nil
}

// Login authenticates and stores the issued session.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var res AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &res); err != nil {
		return nil, err
	}
	if err := c.setSession(Session{Token: res.Token, User: &res.User}); err != nil {
		return nil, err
	}
	return &res, nil
}

// Logout discards the local session. The token itself stays valid until
// expiry; the server keeps no revocation list. The session is cleared
// even when the confirmation request fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if cerr := c.clearSession(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func listKey(opts ListOptions) string {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.Priority != "" {
		q.Set("priority", opts.Priority)
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if enc := q.Encode(); enc != "" {
		return "tasks?" + enc
	}
	return "tasks"
}

// Tasks lists the caller's tasks, newest first. Results are cached per
// filter combination until the next mutation.
func (c *Client) Tasks(ctx context.Context, opts ListOptions) ([]Task, error) {
	key := listKey(opts)
	if v, ok := c.cached(key); ok {
		return v.([]Task), nil
	}
	var tasks []Task
	path := "/" + key
	if err := c.get(ctx, path, &tasks); err != nil {
		return nil, err
	}
	c.setCached(key, tasks)
	return tasks, nil
}

// Task fetches a single task by id.
func (c *Client) Task(ctx context.Context, id string) (*Task, error) {
	var t Task
	if err := c.get(ctx, "/tasks/"+id, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTask creates a task and invalidates the list and stats caches.
func (c *Client) CreateTask(ctx context.Context, data CreateTaskData) (*Task, error) {
	var t Task
	if err := c.do(ctx, http.MethodPost, "/tasks", data, &t); err != nil {
		return nil, err
	}
	c.invalidate()
	return &t, nil
}

// UpdateTask applies a partial patch and invalidates the caches.
func (c *Client) UpdateTask(ctx context.Context, id string, data UpdateTaskData) (*Task, error) {
	var t Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+id, data, &t); err != nil {
		return nil, err
	}
	c.invalidate()
	return &t, nil
}

// DeleteTask removes a task and invalidates the caches.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/tasks/"+id, nil, nil); err != nil {
		return err
	}
	c.invalidate()
	return nil
}

// Stats fetches the dashboard aggregate, cached until the next mutation.
func (c *Client) Stats(ctx context.Context) (*TaskStats, error) {
	if v, ok := c.cached("stats"); ok {
		s := v.(TaskStats)
		return &s, nil
	}
	var s TaskStats
	if err := c.get(ctx, "/tasks/stats", &s); err != nil {
		return nil, err
	}
	c.setCached("stats", s)
	return &s, nil
}

// ExportTasks writes the (filtered) task list to w as indented JSON,
// matching the Tasks view's export action.
func (c *Client) ExportTasks(ctx context.Context, w io.Writer, opts ListOptions) error {
	tasks, err := c.Tasks(ctx, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tasks)
}
