package daemonctl

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storyreel/internal/api"
)

func newStubDaemon(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL)
}

func TestSubmitSendsMultipartForm(t *testing.T) {
	var gotText, gotDocument string
	client := newStubDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/jobs" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotText = r.FormValue("text")
		if file, header, err := r.FormFile("document"); err == nil {
			gotDocument = header.Filename
			file.Close()
		}
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(api.SubmitResponse{JobID: "tok-1"})
	})

	docPath := filepath.Join(t.TempDir(), "outline.txt")
	if err := os.WriteFile(docPath, []byte("supporting notes"), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}

	resp, err := client.Submit(context.Background(), "explain raft", docPath)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.JobID != "tok-1" {
		t.Fatalf("job id = %q", resp.JobID)
	}
	if gotText != "explain raft" {
		t.Fatalf("text = %q", gotText)
	}
	if gotDocument != "outline.txt" {
		t.Fatalf("document = %q", gotDocument)
	}
}

func TestJobByTokenNotFound(t *testing.T) {
	client := newStubDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(api.ErrorResponse{Error: "job not found"})
	})

	job, err := client.JobByToken(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unknown token should not error, got %v", err)
	}
	if job != nil {
		t.Fatalf("job = %+v", job)
	}
}

func TestQueueListForwardsStatusFilters(t *testing.T) {
	client := newStubDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		filters := r.URL.Query()["status"]
		if len(filters) != 2 || filters[0] != "pending" || filters[1] != "failed" {
			t.Errorf("status filters = %v", filters)
		}
		json.NewEncoder(w).Encode(api.QueueListResponse{Jobs: []api.Job{{ID: 4, JobID: "tok"}}})
	})

	jobs, err := client.QueueList(context.Background(), []string{"pending", "", "failed"})
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != 4 {
		t.Fatalf("jobs = %+v", jobs)
	}
}

func TestLogsPassesLineCount(t *testing.T) {
	client := newStubDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/logs" || r.URL.Query().Get("lines") != "25" {
			t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(api.LogTailResponse{Lines: []string{"a", "b"}})
	})

	lines, err := client.Logs(context.Background(), 25)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %v", lines)
	}
}

func TestErrorResponseSurfacesMessage(t *testing.T) {
	client := newStubDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(api.ErrorResponse{Error: "queue store unavailable"})
	})

	_, err := client.Status(context.Background())
	if err == nil || !strings.Contains(err.Error(), "queue store unavailable") {
		t.Fatalf("err = %v", err)
	}
}

func TestUnreachableDaemon(t *testing.T) {
	client := New("127.0.0.1:1")
	err := client.Ping(context.Background())
	if !errors.Is(err, ErrDaemonNotRunning) {
		t.Fatalf("err = %v", err)
	}
	if client.Healthy(context.Background()) {
		t.Fatal("unreachable daemon should not be healthy")
	}
}

func TestNewNormalizesBind(t *testing.T) {
	if got := New("127.0.0.1:7487").BaseURL(); got != "http://127.0.0.1:7487" {
		t.Fatalf("base url = %q", got)
	}
	if got := New("http://localhost:9000/").BaseURL(); got != "http://localhost:9000" {
		t.Fatalf("base url = %q", got)
	}
	if got := New("  ").BaseURL(); got != "http://127.0.0.1:7487" {
		t.Fatalf("default base url = %q", got)
	}
}
