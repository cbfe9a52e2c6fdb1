package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func newAPIStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /render", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"job_id":"abc123","status":"processing","video_url":"/result/abc123.mp4"}`))
	})
	mux.HandleFunc("GET /status/abc123", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"job_id":"abc123","status":"done","progress":100,"video_url":"/result/abc123.mp4"}`))
	})
	mux.HandleFunc("GET /status/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"job_id":"nope","status":"not_found"}`))
	})
	mux.HandleFunc("GET /jobs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jobs":[{"job_id":"abc123","status":"done","progress":100,"video_url":"/result/abc123.mp4"},{"job_id":"def456","status":"failed","progress":15,"error":"no images"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSubmitCommand(t *testing.T) {
	srv := newAPIStub(t)

	payload := filepath.Join(t.TempDir(), "composition.json")
	if err := os.WriteFile(payload, []byte(`{"scenes":[]}`), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}

	out, err := runCLI(t, "--server", srv.URL, "submit", payload)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !strings.Contains(out, "abc123") {
		t.Errorf("output missing job id: %q", out)
	}
	if !strings.Contains(out, "/result/abc123.mp4") {
		t.Errorf("output missing result path: %q", out)
	}
}

func TestSubmitCommandMissingFile(t *testing.T) {
	srv := newAPIStub(t)

	_, err := runCLI(t, "--server", srv.URL, "submit", filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("expected error for missing composition file")
	}
}

func TestStatusCommand(t *testing.T) {
	srv := newAPIStub(t)

	out, err := runCLI(t, "--server", srv.URL, "status", "abc123")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{"abc123", "done", "100%", "/result/abc123.mp4"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestStatusCommandUnknownJob(t *testing.T) {
	srv := newAPIStub(t)

	_, err := runCLI(t, "--server", srv.URL, "status", "nope")
	if err == nil {
		t.Fatal("expected error for unknown job")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v", err)
	}
}

func TestStatusCommandJSON(t *testing.T) {
	srv := newAPIStub(t)

	out, err := runCLI(t, "--server", srv.URL, "status", "abc123", "--json")
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}
	if !strings.Contains(out, `"job_id": "abc123"`) {
		t.Errorf("output = %q", out)
	}
}

func TestJobsCommand(t *testing.T) {
	srv := newAPIStub(t)

	out, err := runCLI(t, "--server", srv.URL, "jobs")
	if err != nil {
		t.Fatalf("jobs: %v", err)
	}
	for _, want := range []string{"abc123", "def456", "no images"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestConfigInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Errorf("output = %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}

	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error without --overwrite")
	}
	if _, err := runCLI(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestResolveServer(t *testing.T) {
	if got := resolveServer(" http://host:1234/ "); got != "http://host:1234" {
		t.Errorf("flag value = %q", got)
	}
	t.Setenv("FRAMECAST_SERVER", "http://env-host:9999")
	if got := resolveServer(""); got != "http://env-host:9999" {
		t.Errorf("env value = %q", got)
	}
	t.Setenv("FRAMECAST_SERVER", "")
	if got := resolveServer(""); got != defaultServer {
		t.Errorf("default = %q", got)
	}
}
