package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/api", opts...)
	require.NoError(t, err)
	return c, srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, AuthResponse{Token: "tok-123", User: User{ID: "u1", Email: "a@x.com"}})
	})
	mux.HandleFunc("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, []Task{})
	})

	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	// Before login no Authorization header is sent.
	_, err := c.Tasks(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, "", gotAuth.Load())

	res, err := c.Login(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", res.Token)
	assert.True(t, c.Session().Authenticated())

	c.invalidate() // bypass the cached pre-login result
	_, err = c.Tasks(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth.Load())
}

func TestClient_ErrorMessageExtraction(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": `"title" is required`})
	})
	mux.HandleFunc("/api/tasks/stats", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway) // no body
	})

	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	_, err := c.CreateTask(ctx, CreateTaskData{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, `"title" is required`, apiErr.Message)

	_, err = c.Stats(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "request failed with status 502", apiErr.Message)
}

func TestClient_ReadsRetryOnce(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
			return
		}
		writeJSON(w, http.StatusOK, []Task{{ID: "t1", Title: "x"}})
	})

	c, _ := newTestClient(t, mux)
	tasks, err := c.Tasks(context.Background(), ListOptions{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestClient_ReadsRetryOnlyOnce(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
	})

	c, _ := newTestClient(t, mux)
	_, err := c.Tasks(context.Background(), ListOptions{})
	require.Error(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestClient_WritesNeverRetried(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
	})

	c, _ := newTestClient(t, mux)
	_, err := c.CreateTask(context.Background(), CreateTaskData{Title: "x"})
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "writes must not be auto-retried")
}

func TestClient_CacheAndInvalidation(t *testing.T) {
	var listCalls, statsCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeJSON(w, http.StatusCreated, Task{ID: "t2", Title: "new"})
			return
		}
		atomic.AddInt32(&listCalls, 1)
		writeJSON(w, http.StatusOK, []Task{{ID: "t1", Title: "x"}})
	})
	mux.HandleFunc("/api/tasks/stats", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&statsCalls, 1)
		writeJSON(w, http.StatusOK, TaskStats{Total: 1, Pending: 1, ByPriority: map[string]int{"Medium": 1}})
	})

	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	// Repeated reads with the same key hit the cache.
	_, err := c.Tasks(ctx, ListOptions{Status: "Todo"})
	require.NoError(t, err)
	_, err = c.Tasks(ctx, ListOptions{Status: "Todo"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&listCalls))

	// A different filter combination is a different key.
	_, err = c.Tasks(ctx, ListOptions{Status: "Completed"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&listCalls))

	_, err = c.Stats(ctx)
	require.NoError(t, err)
	_, err = c.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&statsCalls))

	// A mutation invalidates both the lists and the stats.
	_, err = c.CreateTask(ctx, CreateTaskData{Title: "new"})
	require.NoError(t, err)

	_, err = c.Tasks(ctx, ListOptions{Status: "Todo"})
	require.NoError(t, err)
	_, err = c.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&listCalls))
	assert.EqualValues(t, 2, atomic.LoadInt32(&statsCalls))
}

func TestClient_SessionRestoreAndLogout(t *testing.T) {
	var gotAuth atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, []Task{})
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
	})

	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)
	require.NoError(t, store.Save(Session{Token: "persisted-token", User: &User{ID: "u1"}}))

	c, _ := newTestClient(t, mux, WithSessionStore(store))

	// Session restored at construction.
	require.True(t, c.Session().Authenticated())
	_, err := c.Tasks(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer persisted-token", gotAuth.Load())

	// Logout clears the in-memory session and the store.
	require.NoError(t, c.Logout(context.Background()))
	assert.False(t, c.Session().Authenticated())
	s, err := store.Load()
	require.NoError(t, err)
	assert.False(t, s.Authenticated())
}

func TestClient_ExportTasks(t *testing.T) {
	due := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []Task{
			{ID: "t1", Title: "Buy milk", Status: "Todo", Priority: "Medium", DueDate: &due},
		})
	})

	c, _ := newTestClient(t, mux)
	var sb strings.Builder
	require.NoError(t, c.ExportTasks(context.Background(), &sb, ListOptions{}))

	var exported []Task
	require.NoError(t, json.Unmarshal([]byte(sb.String()), &exported))
	require.Len(t, exported, 1)
	assert.Equal(t, "Buy milk", exported[0].Title)
	assert.Contains(t, sb.String(), "\n  ", "export is indented for humans")
}

func TestListKey(t *testing.T) {
	assert.Equal(t, "tasks", listKey(ListOptions{}))
	assert.Equal(t, "tasks?status=Todo", listKey(ListOptions{Status: "Todo"}))
	assert.Equal(t, "tasks?priority=High&status=Todo", listKey(ListOptions{Status: "Todo", Priority: "High"}))
	assert.Equal(t, "tasks?search=milk", listKey(ListOptions{Search: "milk"}))
}
