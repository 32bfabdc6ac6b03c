package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amishk599/jobseeker/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", DefaultCustomizerPrefix, srv.Client())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestFetchJobs_Success(t *testing.T) {
	payload := `{
		"success": true,
		"jobs": [
			{
				"id": 12,
				"title": "Backend Engineer",
				"company": "Acme",
				"location": "Paris",
				"job_link": "https://example.com/jobs/12",
				"score": 4,
				"evaluation_grid": [{"criteria": "Go", "score": 3}],
				"status": null
			},
			{
				"id": 13,
				"title": "Data Engineer",
				"company": "Globex",
				"location": "Remote",
				"job_link": "https://example.com/jobs/13",
				"score": null,
				"status": {"id": 13, "applied": false, "date": "2026-03-01"}
			}
		]
	}`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/refresh-jobs" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(payload))
	})

	jobs, err := c.FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Link != "https://example.com/jobs/12" {
		t.Errorf("Link = %q", jobs[0].Link)
	}
	if v, ok := jobs[0].ScoreValue(); !ok || v != 4 {
		t.Errorf("score = %v, %v", v, ok)
	}
	if jobs[0].Processed() {
		t.Error("job 12 should be unprocessed")
	}
	if _, ok := jobs[1].ScoreValue(); ok {
		t.Error("job 13 should have no score")
	}
	if !jobs[1].Processed() || jobs[1].Status.Applied {
		t.Errorf("job 13 status = %+v", jobs[1].Status)
	}
}

func TestFetchJobs_BackendFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": false, "error": "database locked"})
	})

	_, err := c.FetchJobs(context.Background())
	var be *model.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if be.Message != "database locked" {
		t.Errorf("message = %q", be.Message)
	}
}

func TestHTTPErrorCarriesRetryAfterAndMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		writeJSON(w, map[string]string{"error": "slow down"})
	})

	err := c.GetJSON(context.Background(), "/refresh-jobs", nil)
	var he *model.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d", he.StatusCode)
	}
	if he.RetryAfter != 30*time.Second {
		t.Errorf("RetryAfter = %v", he.RetryAfter)
	}
	if got := he.Err.Error(); got != "GET /refresh-jobs: slow down" {
		t.Errorf("message = %q", got)
	}
}

func TestSetJobStatus(t *testing.T) {
	var gotBody map[string]bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/status/42" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, map[string]any{
			"success": true,
			"status":  map[string]any{"id": 42, "applied": true, "date": "2026-03-02"},
		})
	})

	status, err := c.SetJobStatus(context.Background(), 42, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !gotBody["applied"] {
		t.Errorf("request body = %v", gotBody)
	}
	if !status.Applied || status.Date != "2026-03-02" {
		t.Errorf("status = %+v", status)
	}
}

func TestFetchJobDetail_ErrorField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"error": "Job not found"})
	})

	_, err := c.FetchJobDetail(context.Background(), 7)
	var be *model.BackendError
	if !errors.As(err, &be) || be.Message != "Job not found" {
		t.Fatalf("expected BackendError(Job not found), got %v", err)
	}
}

func TestCustomizerPrefix(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		writeJSON(w, map[string]any{"success": true, "content": "\\documentclass{article}"})
	})

	if _, err := c.Tex(context.Background()); err != nil {
		t.Fatalf("Tex: %v", err)
	}
	if err := c.SaveTex(context.Background(), "x"); err != nil {
		t.Fatalf("SaveTex: %v", err)
	}
	if len(paths) != 2 || paths[0] != "/customizer/tex" || paths[1] != "/customizer/save-tex" {
		t.Errorf("paths = %v", paths)
	}

	root := NewClient("http://localhost:5000", "/", nil)
	if root.CustomizerPrefix() != "" {
		t.Errorf("root prefix = %q, want empty", root.CustomizerPrefix())
	}
}

func TestSaveTex_CompilationFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": false, "error": "Undefined control sequence"})
	})

	err := c.SaveTex(context.Background(), "\\bad")
	var be *model.BackendError
	if !errors.As(err, &be) || be.Message != "Undefined control sequence" {
		t.Fatalf("expected compilation BackendError, got %v", err)
	}
}

func TestReinitializeTexReturnsTemplate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": true, "content": "template"})
	})

	content, err := c.ReinitializeTex(context.Background())
	if err != nil {
		t.Fatalf("ReinitializeTex: %v", err)
	}
	if content != "template" {
		t.Errorf("content = %q", content)
	}
}

func TestSaveValidatedKeywords_Empty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty keyword groups")
	})

	if err := c.SaveValidatedKeywords(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty groups")
	}
}

func TestRunExecutorReportForms(t *testing.T) {
	tests := []struct {
		name   string
		report any
		want   []string
	}{
		{"list", []string{"added Go", "added Kafka"}, []string{"added Go", "added Kafka"}},
		{"single", "all keywords inserted", []string{"all keywords inserted"}},
		{"missing", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, map[string]any{"success": true, "report": tt.report})
			})
			lines, err := c.RunExecutor(context.Background())
			if err != nil {
				t.Fatalf("RunExecutor: %v", err)
			}
			if len(lines) != len(tt.want) {
				t.Fatalf("lines = %v, want %v", lines, tt.want)
			}
			for i := range lines {
				if lines[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, lines[i], tt.want[i])
				}
			}
		})
	}
}

func TestScrapeConfigRoundTrip(t *testing.T) {
	var saved scrapeConfig
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewDecoder(r.Body).Decode(&saved)
			writeJSON(w, map[string]bool{"success": true})
			return
		}
		writeJSON(w, map[string]any{"destinations": []map[string]any{
			{"id": 1, "location": "Paris", "remote_type": "any", "enabled": true},
		}})
	})

	dests, err := c.ScrapeConfig(context.Background())
	if err != nil {
		t.Fatalf("ScrapeConfig: %v", err)
	}
	if len(dests) != 1 || dests[0].Location != "Paris" || !dests[0].Enabled {
		t.Fatalf("destinations = %+v", dests)
	}

	dests[0].Enabled = false
	if err := c.SaveScrapeConfig(context.Background(), dests); err != nil {
		t.Fatalf("SaveScrapeConfig: %v", err)
	}
	if len(saved.Destinations) != 1 || saved.Destinations[0].Enabled {
		t.Errorf("saved = %+v", saved)
	}
}

func TestSelectJob_DiscardsHTMLReply(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>dashboard</html>"))
	})

	if err := c.SelectJob(context.Background(), 17); err != nil {
		t.Fatalf("SelectJob: %v", err)
	}
	if gotPath != "/customizer/apply/17" {
		t.Errorf("path = %q", gotPath)
	}
}
