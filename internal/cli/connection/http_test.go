package connection

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yndnr/delivtrack-go/internal/core/domain"
	"github.com/yndnr/delivtrack-go/internal/telemetry/metric"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(url string) *HTTPClient {
	return NewHTTPClient(Options{BaseURL: url, Timeout: 2 * time.Second})
}

func TestNewHTTPClient(t *testing.T) {
	tests := []struct {
		name       string
		server     string
		wantPrefix string
	}{
		{"with http prefix", "http://localhost:8080/api/v1", "http://localhost:8080/api/v1"},
		{"with https prefix", "https://localhost:8080", "https://localhost:8080"},
		{"without prefix", "localhost:8080", "http://localhost:8080"},
		{"trailing slash", "http://api.example.com/api/v1/", "http://api.example.com/api/v1"},
		{"default", "", DefaultBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewHTTPClient(Options{BaseURL: tt.server})
			if client.BaseURL() != tt.wantPrefix {
				t.Errorf("BaseURL() = %q, want %q", client.BaseURL(), tt.wantPrefix)
			}
		})
	}
}

func TestHTTPClient_BearerAttached(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer t1" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer t1")
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("X-Request-ID should be set")
		}
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "delivtrack/") {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		if r.URL.Path != "/clients" {
			t.Errorf("path = %q, want /clients", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.UseTokenSource(staticToken("t1"))

	resp, err := client.Get(context.Background(), "/clients")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	resp.Body.Close()
}

func TestHTTPClient_NoTokenNoHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization should be empty, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	for _, ts := range []TokenSource{nil, staticToken("")} {
		client := newTestClient(server.URL)
		if ts != nil {
			client.UseTokenSource(ts)
		}
		resp, err := client.Get(context.Background(), "/clients")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		resp.Body.Close()
	}
}

func TestHTTPClient_NoAuthOption(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization should be empty with NoAuth, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.UseTokenSource(staticToken("t1"))

	resp, err := client.Post(context.Background(), "/auth/login", map[string]string{"username": "u"}, NoAuth())
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	resp.Body.Close()
}

func TestHTTPClient_TokenReadPerCall(t *testing.T) {
	var seen []string
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var current atomic.Value
	current.Store("t1")
	client := newTestClient(server.URL)
	client.UseTokenSource(tokenFunc(func() string { return current.Load().(string) }))

	for _, tok := range []string{"t1", "t2"} {
		current.Store(tok)
		resp, err := client.Get(context.Background(), "/drivers")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}

	if len(seen) != 2 || seen[0] != "Bearer t1" || seen[1] != "Bearer t2" {
		t.Errorf("headers = %v, want [Bearer t1 Bearer t2]", seen)
	}
}

type tokenFunc func() string

func (f tokenFunc) Token() string { return f() }

func TestHTTPClient_PostBody(t *testing.T) {
	type requestBody struct {
		Name       string `json:"name"`
		IdentityID string `json:"identityId"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q, want %q", r.Header.Get("Content-Type"), "application/json")
		}

		var body requestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		if body.Name != "Acme" || body.IdentityID != "ID-1" {
			t.Errorf("body = %+v", body)
		}

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"data":{"id":7}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	var out struct {
		Success bool `json:"success"`
		Data    struct {
			ID int `json:"id"`
		} `json:"data"`
	}
	err := client.DoJSON(context.Background(), http.MethodPost, "/clients", requestBody{Name: "Acme", IdentityID: "ID-1"}, &out)
	if err != nil {
		t.Fatalf("DoJSON failed: %v", err)
	}
	if !out.Success || out.Data.ID != 7 {
		t.Errorf("decoded = %+v", out)
	}
}

func TestHTTPClient_Classification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    domain.ErrorKind
		wantMessage string
	}{
		{"unauthorized", 401, `{"message":"jwt expired"}`, domain.KindUnauthorized, "Session expired. Please log in again."},
		{"forbidden", 403, `{"message":"nope"}`, domain.KindForbidden, "Access forbidden."},
		{"server error", 500, `{"message":"NPE"}`, domain.KindServerError, "Server error. Please try again later."},
		{"bad gateway", 502, ``, domain.KindServerError, "Server error. Please try again later."},
		{"application error", 404, `{"status":404,"error":"Not Found","message":"Client not found","path":"/clients/9","timestamp":"2024-05-01T10:00:00"}`, domain.KindApplicationError, "Client not found"},
		{"application error 400", 400, `{"message":"Identity ID already exists"}`, domain.KindApplicationError, "Identity ID already exists"},
		{"no message", 409, `not json`, domain.KindUnknown, "An unexpected error occurred."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Get(context.Background(), "/clients")

			var reqErr *domain.RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("error = %v, want *domain.RequestError", err)
			}
			if reqErr.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", reqErr.Kind, tt.wantKind)
			}
			if reqErr.Error() != tt.wantMessage {
				t.Errorf("message = %q, want %q", reqErr.Error(), tt.wantMessage)
			}
			if reqErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", reqErr.Status, tt.status)
			}
		})
	}
}

func TestHTTPClient_UnauthorizedEventOncePerResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	var order []string
	var mu sync.Mutex
	record := func(name string) UnauthorizedListener {
		return func(ev UnauthorizedEvent) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			if ev.Path != "/trans_logs" || ev.Method != http.MethodGet || ev.RequestID == "" {
				t.Errorf("event = %+v", ev)
			}
		}
	}
	client.OnUnauthorized(record("session"))
	client.OnUnauthorized(record("navigator"))

	_, err := client.Get(context.Background(), "/trans_logs")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("error = %v, want unauthorized", err)
	}

	// Listeners run before the error is returned.
	if len(order) != 2 || order[0] != "session" || order[1] != "navigator" {
		t.Errorf("listener calls = %v, want [session navigator]", order)
	}
}

func TestHTTPClient_ConcurrentUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	var events atomic.Int32
	client.OnUnauthorized(func(UnauthorizedEvent) { events.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client.Get(context.Background(), "/clients")
		}()
	}
	wg.Wait()

	if events.Load() != 3 {
		t.Errorf("events = %d, want one per 401 response", events.Load())
	}
}

func TestHTTPClient_RemoveListener(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	calls := 0
	remove := client.OnUnauthorized(func(UnauthorizedEvent) { calls++ })
	remove()

	client.Get(context.Background(), "/clients")
	if calls != 0 {
		t.Errorf("removed listener called %d times", calls)
	}
}

func TestHTTPClient_NoEventForOtherFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	calls := 0
	client.OnUnauthorized(func(UnauthorizedEvent) { calls++ })

	client.Get(context.Background(), "/clients")
	if calls != 0 {
		t.Errorf("403 emitted %d unauthorized events", calls)
	}
}

func TestHTTPClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewHTTPClient(Options{BaseURL: server.URL, Timeout: 50 * time.Millisecond})

	_, err := client.Get(context.Background(), "/clients")
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("error = %v, want timeout", err)
	}
	if err.Error() != domain.MsgTimeout {
		t.Errorf("message = %q", err.Error())
	}
}

func TestHTTPClient_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(server.URL).Get(ctx, "/clients")
	if domain.KindOf(err) != domain.KindTimeout {
		t.Errorf("KindOf() = %q, want timeout", domain.KindOf(err))
	}
}

func TestHTTPClient_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient("http://127.0.0.1:1").Get(ctx, "/clients")
	if domain.KindOf(err) != domain.KindUnknown {
		t.Errorf("KindOf() = %q, want unknown", domain.KindOf(err))
	}
}

func TestHTTPClient_NetworkUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	_, err = newTestClient("http://" + addr).Get(context.Background(), "/clients")
	if !errors.Is(err, domain.ErrNetworkUnreachable) {
		t.Fatalf("error = %v, want network unreachable", err)
	}
	if err.Error() != domain.MsgNetwork {
		t.Errorf("message = %q", err.Error())
	}
}

func TestHTTPClient_Metrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/denied" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	reg := metric.NewRegistry()
	client := NewHTTPClient(Options{BaseURL: server.URL, Metrics: reg})

	resp, err := client.Get(context.Background(), "/ok")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	client.Get(context.Background(), "/denied")

	samples, err := reg.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]float64{"ok": 1, "unauthorized": 1}
	got := map[string]float64{}
	unauthorizedEvents := 0.0
	for _, s := range samples {
		switch s.Name {
		case "delivtrack_api_requests_total":
			got[s.Labels["kind"]] = s.Value
		case "delivtrack_session_unauthorized_events_total":
			unauthorizedEvents = s.Value
		}
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("requests_total{kind=%q} = %v, want %v", k, got[k], v)
		}
	}
	if unauthorizedEvents != 1 {
		t.Errorf("unauthorized events = %v, want 1", unauthorizedEvents)
	}
}

func TestHTTPClient_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHTTPClient(Options{BaseURL: server.URL, RateLimit: 20})

	start := time.Now()
	for i := 0; i < 3; i++ {
		resp, err := client.Get(context.Background(), "/clients")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("3 calls at 20 req/s took %v, want >= 100ms", elapsed)
	}
}

func TestHTTPClient_RateLimitPastDeadline(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHTTPClient(Options{BaseURL: server.URL, RateLimit: 1})

	resp, err := client.Get(context.Background(), "/clients")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Get(ctx, "/clients")
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("error = %v, want timeout", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}

	canceled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	if _, err := client.Get(canceled, "/clients"); domain.KindOf(err) != domain.KindUnknown {
		t.Errorf("KindOf() = %q, want unknown", domain.KindOf(err))
	}
}

func TestParseResponse_NilTarget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ignored":true}`))
	}))
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if err := ParseResponse(resp, nil); err != nil {
		t.Errorf("ParseResponse(nil) error = %v", err)
	}
}
