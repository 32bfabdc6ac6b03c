package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseTaskState(t *testing.T) {
	tests := []struct {
		in   string
		want TaskState
	}{
		{"pending", TaskPending},
		{"running", TaskPending},
		{"already_running", TaskPending},
		{"complete", TaskComplete},
		{"completed", TaskComplete},
		{"failed", TaskFailed},
		{"error", TaskFailed},
		{"idle", TaskIdle},
		{"", TaskIdle},
		{"something-new", TaskIdle},
	}
	for _, tt := range tests {
		if got := ParseTaskState(tt.in); got != tt.want {
			t.Errorf("ParseTaskState(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestTaskStatusUnmarshal(t *testing.T) {
	data := `{"status":"error","error":"Scraper blocked (HTTP 429)","current":3,"total":10,"new_jobs_count":2}`

	var s TaskStatus
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if s.State != TaskFailed {
		t.Errorf("State = %s, want failed", s.State)
	}
	if s.Error != "Scraper blocked (HTTP 429)" {
		t.Errorf("Error = %q", s.Error)
	}
	if s.Current != 3 || s.Total != 10 || s.NewJobsCount != 2 {
		t.Errorf("counters = %d/%d new=%d", s.Current, s.Total, s.NewJobsCount)
	}
	if string(s.Raw) != data {
		t.Errorf("Raw not kept verbatim: %s", s.Raw)
	}
}

func TestTaskStatusUnmarshal_NullError(t *testing.T) {
	var s TaskStatus
	if err := json.Unmarshal([]byte(`{"status":"complete","error":null,"content":"Dear team"}`), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if s.Error != "" {
		t.Errorf("Error = %q, want empty", s.Error)
	}
	if s.Content != "Dear team" {
		t.Errorf("Content = %q", s.Content)
	}
	if !s.State.Terminal() {
		t.Error("complete should be terminal")
	}
}

func TestTaskStatusProgress(t *testing.T) {
	if p := (TaskStatus{Current: 5, Total: 0}).Progress(); p != 0 {
		t.Errorf("unknown total: got %v, want 0", p)
	}
	if p := (TaskStatus{Current: 1, Total: 4}).Progress(); p != 0.25 {
		t.Errorf("got %v, want 0.25", p)
	}
	if p := (TaskStatus{Current: 7, Total: 4}).Progress(); p != 1 {
		t.Errorf("overshoot: got %v, want 1", p)
	}
}

func TestTaskRunDuration(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	run := TaskRun{StartedAt: start, FinishedAt: start.Add(90 * time.Second)}
	if run.Duration() != 90*time.Second {
		t.Errorf("Duration = %v", run.Duration())
	}
}

func TestBackendErrorMessage(t *testing.T) {
	tests := []struct {
		err  *BackendError
		want string
	}{
		{&BackendError{Op: "save tex", Message: "Compilation failed"}, "save tex: Compilation failed"},
		{&BackendError{Op: "save tex"}, "save tex: unknown error"},
		{&BackendError{Message: "boom"}, "boom"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestHTTPErrorUnwrap(t *testing.T) {
	inner := errors.New("rate limited")
	err := error(&HTTPError{StatusCode: 429, Err: inner})
	if !errors.Is(err, inner) {
		t.Error("HTTPError should unwrap to its cause")
	}
	if err.Error() != "HTTP 429: rate limited" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestJobProcessedAndScore(t *testing.T) {
	var j Job
	if j.Processed() {
		t.Error("job without status should be unprocessed")
	}
	if _, ok := j.ScoreValue(); ok {
		t.Error("nil score should report ok=false")
	}

	score := 4.5
	j.Score = &score
	j.Status = &ApplicationStatus{Applied: true}
	if !j.Processed() {
		t.Error("job with status should be processed")
	}
	if v, ok := j.ScoreValue(); !ok || v != 4.5 {
		t.Errorf("ScoreValue = %v, %v", v, ok)
	}
}
