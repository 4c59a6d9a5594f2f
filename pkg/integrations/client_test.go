package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pderrors "github.com/matzehuels/pydepgraph/pkg/errors"
	"github.com/matzehuels/pydepgraph/pkg/observability"
)

func TestNewClient(t *testing.T) {
	headers := map[string]string{"User-Agent": "pydepgraph/test"}
	client := NewClient(time.Second, headers)

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.http == nil {
		t.Fatal("NewClient() http client is nil")
	}
	if client.http.Timeout != time.Second {
		t.Errorf("Timeout = %v, want 1s", client.http.Timeout)
	}
	if client.headers["User-Agent"] != "pydepgraph/test" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestNewHTTPClientDefaultTimeout(t *testing.T) {
	if got := NewHTTPClient(0).Timeout; got != httpTimeout {
		t.Errorf("Timeout = %v, want %v", got, httpTimeout)
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}

	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		gotAgent = r.Header.Get("User-Agent")
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client := NewClient(0, map[string]string{"User-Agent": "pydepgraph/test"})

	var resp response
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
	if gotAgent != "pydepgraph/test" {
		t.Errorf("User-Agent = %q, want %q", gotAgent, "pydepgraph/test")
	}
}

func TestClientGetStatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{"not found", http.StatusNotFound, ErrNotFound},
		{"server error", http.StatusInternalServerError, ErrNetwork},
		{"bad gateway", http.StatusBadGateway, ErrNetwork},
		{"forbidden", http.StatusForbidden, ErrNetwork},
		{"no content", http.StatusNoContent, ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			var v map[string]any
			err := NewClient(0, nil).Get(context.Background(), server.URL, &v)
			if !pderrors.Is(err, pderrors.ErrCodeRegistryUnavailable) {
				t.Fatalf("Get() error = %v, want %s", err, pderrors.ErrCodeRegistryUnavailable)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("Get() error = %v, want %v in chain", err, tt.sentinel)
			}
			if calls != 1 {
				t.Errorf("server called %d times, want exactly 1 (no retry)", calls)
			}
		})
	}
}

func TestClientGetNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	var v map[string]any
	err := NewClient(time.Second, nil).Get(context.Background(), url, &v)
	if !pderrors.Is(err, pderrors.ErrCodeRegistryUnavailable) {
		t.Fatalf("Get() error = %v, want %s", err, pderrors.ErrCodeRegistryUnavailable)
	}
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Get() error = %v, want ErrNetwork in chain", err)
	}
}

func TestClientGetMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	var v map[string]any
	err := NewClient(0, nil).Get(context.Background(), server.URL, &v)
	if !pderrors.Is(err, pderrors.ErrCodeMalformedResponse) {
		t.Fatalf("Get() error = %v, want %s", err, pderrors.ErrCodeMalformedResponse)
	}
}

func TestClientGetCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var v map[string]any
	err := NewClient(0, nil).Get(ctx, server.URL, &v)
	if err == nil {
		t.Fatal("Get() with cancelled context should fail")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Get() error = %v, want ErrNetwork in chain", err)
	}
}

func TestClientReportsHooks(t *testing.T) {
	t.Cleanup(observability.Reset)
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	var v map[string]any
	if err := NewClient(0, nil).Get(context.Background(), server.URL+"/pypi/pandas/json", &v); err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	if hooks.requests != 1 || hooks.responses != 1 {
		t.Errorf("requests=%d responses=%d, want 1 and 1", hooks.requests, hooks.responses)
	}
	if hooks.lastPath != "/pypi/pandas/json" {
		t.Errorf("path = %q, want /pypi/pandas/json", hooks.lastPath)
	}
	if hooks.lastStatus != http.StatusOK {
		t.Errorf("status = %d, want 200", hooks.lastStatus)
	}
}

func TestNormalizePkgName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Django", "django"},
		{"Flask_App", "flask-app"},
		{"zope.interface", "zope-interface"},
		{"  pandas ", "pandas"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizePkgName(tt.input); got != tt.expected {
				t.Errorf("NormalizePkgName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

type recordingHooks struct {
	observability.NoopHTTPHooks
	requests   int
	responses  int
	lastPath   string
	lastStatus int
}

func (h *recordingHooks) OnRequest(_ context.Context, _, _, path string) {
	h.requests++
	h.lastPath = path
}

func (h *recordingHooks) OnResponse(_ context.Context, _, _, _ string, status int, _ time.Duration) {
	h.responses++
	h.lastStatus = status
}
