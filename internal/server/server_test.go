package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leofalp/substack-tools/internal/logging"
	"github.com/leofalp/substack-tools/providers/tool"
)

type greetInput struct {
	Name string `json:"name" jsonschema:"description=Who to greet,required"`
}

var errMissing = errors.New("unexpected status code: 404 Not Found")

func newTestServer(t *testing.T, logs io.Writer) *httptest.Server {
	t.Helper()

	greet := tool.NewTool("greet", func(_ context.Context, in greetInput) (string, error) {
		switch in.Name {
		case "":
			return "", errMissing
		case "panic":
			panic("kaboom")
		}
		return "Hello, " + in.Name, nil
	}, tool.WithDescription("Greets someone."))

	srv := New(tool.NewCatalogWithTools(greet), Options{
		Logger: logging.New(logs, "info", "json"),
		Classify: func(err error) string {
			if errors.Is(err, errMissing) {
				return "not_found"
			}
			return "unknown"
		},
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	res, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func readBody(t *testing.T, res *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, io.Discard)

	res, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Errorf("status = %d", res.StatusCode)
	}
	if id := res.Header.Get(RequestIDHeader); id == "" {
		t.Error("missing generated request id")
	}
}

func TestListTools(t *testing.T) {
	ts := newTestServer(t, io.Discard)

	res, err := http.Get(ts.URL + "/tools")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	var infos []tool.Info
	if err := json.NewDecoder(res.Body).Decode(&infos); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(infos) != 1 || infos[0].Name != "greet" || infos[0].Description != "Greets someone." {
		t.Fatalf("unexpected tools: %+v", infos)
	}
	if infos[0].Parameters == nil || infos[0].Parameters.Properties["name"] == nil {
		t.Errorf("schema missing name property: %+v", infos[0].Parameters)
	}
}

func TestCallTool(t *testing.T) {
	var logs bytes.Buffer
	ts := newTestServer(t, &logs)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantBody   string
		wantError  string
	}{
		{name: "success", path: "/tools/greet", body: `{"name":"Ada"}`, wantStatus: http.StatusOK, wantBody: "Hello, Ada"},
		{name: "case-insensitive name", path: "/tools/GREET", body: `{"name":"Ada"}`, wantStatus: http.StatusOK, wantBody: "Hello, Ada"},
		{name: "tool failure is 200 with header", path: "/tools/greet", body: `{"name":""}`, wantStatus: http.StatusOK, wantBody: "Error: " + errMissing.Error(), wantError: "not_found"},
		{name: "malformed input", path: "/tools/greet", body: `{"nope":1}`, wantStatus: http.StatusOK, wantError: "unknown"},
		{name: "panic is rendered", path: "/tools/greet", body: `{"name":"panic"}`, wantStatus: http.StatusOK, wantError: "unknown"},
		{name: "unknown tool", path: "/tools/missing", body: `{}`, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := post(t, ts.URL+tt.path, tt.body)
			body := readBody(t, res)

			if res.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %q)", res.StatusCode, tt.wantStatus, body)
			}
			if tt.wantBody != "" && body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
			if got := res.Header.Get(ToolErrorHeader); got != tt.wantError {
				t.Errorf("%s = %q, want %q", ToolErrorHeader, got, tt.wantError)
			}
			if tt.wantError != "" && !strings.HasPrefix(body, "Error: ") {
				t.Errorf("failure body should start with Error: %q", body)
			}
		})
	}
}

func TestRequestIDPropagatesToLogs(t *testing.T) {
	var logs bytes.Buffer
	ts := newTestServer(t, &logs)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/tools/greet", strings.NewReader(`{"name":"Ada"}`))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set(RequestIDHeader, "req-42")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()

	if got := res.Header.Get(RequestIDHeader); got != "req-42" {
		t.Errorf("response request id = %q", got)
	}

	var sawToolLog, sawAccessLog bool
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		if record["request_id"] != "req-42" {
			continue
		}
		switch record["msg"] {
		case "tool call completed":
			sawToolLog = record["tool"] == "greet"
		case "http":
			sawAccessLog = record["status"] == float64(http.StatusOK)
		}
	}
	if !sawToolLog || !sawAccessLog {
		t.Errorf("request id missing from logs (tool=%v access=%v):\n%s", sawToolLog, sawAccessLog, logs.String())
	}
}

func TestMetrics(t *testing.T) {
	ts := newTestServer(t, io.Discard)

	post(t, ts.URL+"/tools/greet", `{"name":"Ada"}`)
	post(t, ts.URL+"/tools/greet", `{"name":""}`)

	res, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	body := readBody(t, res)

	for _, want := range []string{
		`substack_tool_calls_total{outcome="ok",tool="greet"} 1`,
		`substack_tool_calls_total{outcome="not_found",tool="greet"} 1`,
		`substack_tool_call_duration_seconds_count{tool="greet"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, io.Discard)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/tools/greet", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Origin", "https://app.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	if got := res.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
