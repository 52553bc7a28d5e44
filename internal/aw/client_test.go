package aw

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"awmcp/internal/slogutil"
)

// newTestClient builds a client pointed at a test server, with retry delays
// shrunk so failure cases don't slow the suite down.
func newTestClient(baseURL string) *Client {
	c := NewClient(baseURL, 5*time.Second, slogutil.NewDiscardLogger())
	c.retry = retryConfig{
		maxRetries: 1,
		baseDelay:  time.Millisecond,
		maxDelay:   5 * time.Millisecond,
	}
	return c
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("", 0, nil)
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), DefaultBaseURL)
	}

	c = NewClient("http://localhost:5666/", 0, nil)
	if c.BaseURL() != "http://localhost:5666" {
		t.Errorf("BaseURL() = %q, want trailing slash stripped", c.BaseURL())
	}
}

func TestListBuckets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/0/buckets/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"aw-watcher-window_devbox": {
				"id": "aw-watcher-window_devbox",
				"type": "currentwindow",
				"client": "aw-watcher-window",
				"hostname": "devbox"
			},
			"aw-watcher-afk_devbox": {
				"type": "afkstatus",
				"client": "aw-watcher-afk",
				"hostname": "devbox"
			}
		}`))
	}))
	defer server.Close()

	buckets, err := newTestClient(server.URL).ListBuckets(context.Background())
	if err != nil {
		t.Fatalf("ListBuckets() error = %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("got %d buckets, want 2", len(buckets))
	}
	// Sorted by ID, and the afk bucket inherits its map key as ID.
	if buckets[0].ID != "aw-watcher-afk_devbox" {
		t.Errorf("buckets[0].ID = %q, want aw-watcher-afk_devbox", buckets[0].ID)
	}
	if buckets[1].ID != "aw-watcher-window_devbox" {
		t.Errorf("buckets[1].ID = %q, want aw-watcher-window_devbox", buckets[1].ID)
	}
	if buckets[0].Type != BucketTypeAFK {
		t.Errorf("buckets[0].Type = %q, want %q", buckets[0].Type, BucketTypeAFK)
	}

	windows := WindowBuckets(buckets)
	if len(windows) != 1 || windows[0].ID != "aw-watcher-window_devbox" {
		t.Errorf("WindowBuckets() = %+v, want the currentwindow bucket", windows)
	}
	afk := AFKBuckets(buckets)
	if len(afk) != 1 || afk[0].ID != "aw-watcher-afk_devbox" {
		t.Errorf("AFKBuckets() = %+v, want the afkstatus bucket", afk)
	}
}

func TestGetEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/0/buckets/aw-watcher-window_devbox/events" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("limit") != "50" {
			t.Errorf("limit = %q, want 50", q.Get("limit"))
		}
		if q.Get("start") != "2024-03-14T00:00:00Z" {
			t.Errorf("start = %q", q.Get("start"))
		}
		if q.Get("end") != "2024-03-14T23:59:59Z" {
			t.Errorf("end = %q", q.Get("end"))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{
				"id": 101,
				"timestamp": "2024-03-14T10:30:00Z",
				"duration": 120.5,
				"data": {"app": "Cursor", "title": "main.go — myproject"}
			},
			{
				"id": 100,
				"timestamp": "2024-03-14T10:28:00Z",
				"duration": 45,
				"data": {"app": "Warp", "title": "~/code/myproject"}
			}
		]`))
	}))
	defer server.Close()

	events, err := newTestClient(server.URL).GetEvents(context.Background(), "aw-watcher-window_devbox", EventOptions{
		Limit: 50,
		Start: "2024-03-14T00:00:00Z",
		End:   "2024-03-14T23:59:59Z",
	})
	if err != nil {
		t.Fatalf("GetEvents() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].ID != 101 {
		t.Errorf("events[0].ID = %d, want 101", events[0].ID)
	}
	if events[0].Duration != 120.5 {
		t.Errorf("events[0].Duration = %v, want 120.5", events[0].Duration)
	}
	if events[0].App() != "Cursor" {
		t.Errorf("App() = %q, want Cursor", events[0].App())
	}
	if events[1].Title() != "~/code/myproject" {
		t.Errorf("Title() = %q", events[1].Title())
	}
	want := time.Date(2024, 3, 14, 10, 30, 0, 0, time.UTC)
	if !events[0].Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", events[0].Timestamp, want)
	}
}

func TestGetEventsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "There's no bucket named \"nope\""}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetEvents(context.Background(), "nope", EventOptions{})
	if err == nil {
		t.Fatal("expected error for missing bucket")
	}

	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteError, got %T: %v", err, err)
	}
	if !remoteErr.IsNotFound() {
		t.Errorf("IsNotFound() = false, StatusCode = %d", remoteErr.StatusCode)
	}
	if remoteErr.Message != `There's no bucket named "nope"` {
		t.Errorf("Message = %q", remoteErr.Message)
	}
}

func TestQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/0/query/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}

		var payload struct {
			Timeperiods []string `json:"timeperiods"`
			Query       []string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decoding request body: %v", err)
		}
		if len(payload.Timeperiods) != 2 {
			t.Errorf("got %d timeperiods, want 2", len(payload.Timeperiods))
		}
		if len(payload.Query) != 2 || payload.Query[1] != "RETURN = events;" {
			t.Errorf("query statements = %v", payload.Query)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[{"duration": 12.0}], [{"duration": 30.0}]]`))
	}))
	defer server.Close()

	results, err := newTestClient(server.URL).Query(context.Background(),
		[]string{
			"2024-03-13T00:00:00Z/2024-03-13T23:59:59Z",
			"2024-03-14T00:00:00Z/2024-03-14T23:59:59Z",
		},
		[]string{
			`events = query_bucket("aw-watcher-window_devbox");`,
			"RETURN = events;",
		})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want one per timeperiod", len(results))
	}

	var first []map[string]float64
	if err := json.Unmarshal(results[0], &first); err != nil {
		t.Fatalf("parsing first result: %v", err)
	}
	if first[0]["duration"] != 12.0 {
		t.Errorf("first result duration = %v", first[0]["duration"])
	}
}

func TestQueryBadRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "invalid query: unexpected token"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Query(context.Background(),
		[]string{"2024-03-14T00:00:00Z/2024-03-14T23:59:59Z"},
		[]string{"RETURN = ;"})
	if err == nil {
		t.Fatal("expected error for rejected query")
	}

	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteError, got %T", err)
	}
	if !remoteErr.IsBadRequest() {
		t.Errorf("IsBadRequest() = false, StatusCode = %d", remoteErr.StatusCode)
	}
}

func TestGetSettings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/0/settings":
			_, _ = w.Write([]byte(`{"theme": "dark", "landingpage": "/timeline"}`))
		case "/api/0/settings/theme":
			_, _ = w.Write([]byte(`"dark"`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	t.Run("all settings", func(t *testing.T) {
		raw, err := client.GetSettings(context.Background(), "")
		if err != nil {
			t.Fatalf("GetSettings() error = %v", err)
		}
		var settings map[string]string
		if err := json.Unmarshal(raw, &settings); err != nil {
			t.Fatalf("parsing settings: %v", err)
		}
		if settings["theme"] != "dark" {
			t.Errorf("theme = %q", settings["theme"])
		}
	})

	t.Run("single key", func(t *testing.T) {
		raw, err := client.GetSettings(context.Background(), "theme")
		if err != nil {
			t.Fatalf("GetSettings() error = %v", err)
		}
		if string(raw) != `"dark"` {
			t.Errorf("raw = %s", raw)
		}
	})
}

func TestGetInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/0/info" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hostname": "devbox", "version": "v0.13.2", "testing": false}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	info, err := client.GetInfo(context.Background())
	if err != nil {
		t.Fatalf("GetInfo() error = %v", err)
	}
	if info.Hostname != "devbox" || info.Version != "v0.13.2" {
		t.Errorf("GetInfo() = %+v", info)
	}

	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hostname": "devbox", "version": "v0.13.2"}`))
	}))
	defer server.Close()

	info, err := newTestClient(server.URL).GetInfo(context.Background())
	if err != nil {
		t.Fatalf("GetInfo() error = %v, want retry to recover", err)
	}
	if info.Hostname != "devbox" {
		t.Errorf("Hostname = %q", info.Hostname)
	}
	if attempts != 2 {
		t.Errorf("server saw %d attempts, want 2", attempts)
	}
}

func TestNoRetryOnClientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "bad request"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetInfo(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("server saw %d attempts, want 1 (no retry on 4xx)", attempts)
	}
}

func TestUnreachableServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // immediately, so the address refuses connections

	_, err := newTestClient(server.URL).GetInfo(context.Background())
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}

	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteError, got %T: %v", err, err)
	}
	if !remoteErr.IsUnreachable() {
		t.Errorf("IsUnreachable() = false for connection failure")
	}
}

func TestEventAccessorsMissingData(t *testing.T) {
	e := Event{Data: map[string]interface{}{"app": 42}}
	if e.App() != "" {
		t.Errorf("App() = %q for non-string field, want empty", e.App())
	}
	if e.Title() != "" {
		t.Errorf("Title() = %q for missing field, want empty", e.Title())
	}

	var empty Event
	if empty.Status() != "" {
		t.Errorf("Status() on zero event = %q", empty.Status())
	}
}
