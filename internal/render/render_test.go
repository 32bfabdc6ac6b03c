package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/amishk599/jobseeker/internal/model"
	"github.com/amishk599/jobseeker/internal/task"
)

func TestScoreClass(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`2`, "positive-2"},
		{`2.5`, "positive-3"},
		{`7`, "positive-3"},
		{`-1`, "negative-1"},
		{`-2.5`, "negative-2"},
		{`-9`, "negative-3"},
		{`0`, ""},
		{`0.4`, ""},
		{`"1.6 / 3"`, "positive-2"},
		{`"strong"`, ""},
		{`null`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		if got := ScoreClass(json.RawMessage(tt.raw)); got != tt.want {
			t.Errorf("ScoreClass(%s) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestEvaluationGrid_Shapes(t *testing.T) {
	if got := EvaluationGrid(nil); got != NotAvailable {
		t.Errorf("nil grid = %q", got)
	}
	if got := EvaluationGrid(json.RawMessage(`null`)); got != NotAvailable {
		t.Errorf("null grid = %q", got)
	}
	if got := EvaluationGrid(json.RawMessage(`"Great fit overall"`)); got != "Great fit overall" {
		t.Errorf("string grid = %q", got)
	}

	got := EvaluationGrid(json.RawMessage(`{"fit": "good"}`))
	if !strings.Contains(got, `"fit": "good"`) {
		t.Errorf("object grid should be pretty JSON, got %q", got)
	}
}

func TestEvaluationGrid_Items(t *testing.T) {
	raw := json.RawMessage(`[
		{"criteria": "Go experience", "score": 3, "comment": "ignored"},
		{"criteria": "Relocation", "score": -2}
	]`)

	got := EvaluationGrid(raw)
	for _, want := range []string{"criteria: Go experience", "score: 3", "criteria: Relocation", "score: -2"} {
		if !strings.Contains(got, want) {
			t.Errorf("grid missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "ignored") {
		t.Errorf("only criteria and score should be shown:\n%s", got)
	}

	items, ok := ParseGrid(raw)
	if !ok || len(items) != 2 {
		t.Fatalf("ParseGrid = %v, %v", items, ok)
	}
	if items[0].Class != "positive-3" || items[1].Class != "negative-2" {
		t.Errorf("classes = %q, %q", items[0].Class, items[1].Class)
	}
}

func TestPlainText(t *testing.T) {
	in := `<h2>Decision</h2><p>Strong <b>Go</b> match.</p><ul><li>Remote</li><li>Senior</li></ul><script>x()</script>`
	got := PlainText(in)

	want := "Decision\n\nStrong Go match.\n\n• Remote\n• Senior"
	if got != want {
		t.Errorf("PlainText:\n got %q\nwant %q", got, want)
	}

	if got := PlainText("  no markup here "); got != "no markup here" {
		t.Errorf("plain input = %q", got)
	}
}

func TestWordWrap(t *testing.T) {
	got := WordWrap("one two three four\nfive", 9)
	want := "one two\nthree\nfour\nfive"
	if got != want {
		t.Errorf("WordWrap = %q, want %q", got, want)
	}
}

func TestJobDetail(t *testing.T) {
	score := 4.0
	j := model.Job{
		ID:        5,
		Title:     "Platform Engineer",
		Company:   "Acme",
		Link:      "https://example.com/5",
		Score:     &score,
		Synthesis: "<p>Apply.</p>",
	}

	got := JobDetail(j, &model.JobDetail{}, 80)
	for _, want := range []string{"Platform Engineer", "Acme", "to review", "Apply.", NotAvailable, "Stored link: https://example.com/5"} {
		if !strings.Contains(got, want) {
			t.Errorf("detail missing %q:\n%s", want, got)
		}
	}
}

func TestStatusLine(t *testing.T) {
	got := StatusLine("review", model.TaskStatus{State: model.TaskPending, Current: 2, Total: 5})
	if !strings.Contains(got, "2 / 5") {
		t.Errorf("pending line = %q", got)
	}
	got = StatusLine("ranking", model.TaskStatus{State: model.TaskFailed, Error: "LLM timeout"})
	if !strings.Contains(got, "ranking failed: LLM timeout") {
		t.Errorf("failed line = %q", got)
	}
}

func TestTaskResult_Extraction(t *testing.T) {
	r := task.Result{
		Kind: task.Extraction,
		Payloads: []json.RawMessage{
			json.RawMessage(`{"Backend": {"hard_skills": ["Go", "Kafka\n"], "empty": []}}`),
			json.RawMessage(`["Senior Go Engineer", 42]`),
		},
	}

	got, err := TaskResult(r, 80)
	if err != nil {
		t.Fatalf("TaskResult: %v", err)
	}
	for _, want := range []string{"Senior Go Engineer", "Backend", "hard skills:", "Go, Kafka"} {
		if !strings.Contains(got, want) {
			t.Errorf("result missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "empty") {
		t.Errorf("empty subgroups should be skipped:\n%s", got)
	}
}

func TestTaskResult_ValidatedKeywords(t *testing.T) {
	r := task.Result{
		Kind: task.Extraction,
		Payloads: []json.RawMessage{
			json.RawMessage(`{"validated": true, "keywords": {"Cloud": {"keywords": ["AWS"], "instructions": "mention EKS"}}}`),
			json.RawMessage(`[]`),
		},
	}

	ex, err := DecodeExtraction(r)
	if err != nil {
		t.Fatalf("DecodeExtraction: %v", err)
	}
	if !ex.Validated || ex.ValidatedGroups["Cloud"].Instructions != "mention EKS" {
		t.Errorf("extraction = %+v", ex)
	}
}

func TestTaskResult_Counters(t *testing.T) {
	tests := []struct {
		kind   string
		status model.TaskStatus
		want   string
	}{
		{task.Scraping, model.TaskStatus{NewJobsCount: 7}, "7 new jobs added"},
		{task.Review, model.TaskStatus{Total: 3}, "3 jobs reviewed"},
		{task.StatusUpdate, model.TaskStatus{JobsUpdatedCount: 2}, "2 jobs updated to 'Closed'"},
	}
	for _, tt := range tests {
		got, err := TaskResult(task.Result{Kind: tt.kind, Status: tt.status}, 80)
		if err != nil {
			t.Fatalf("%s: %v", tt.kind, err)
		}
		if !strings.Contains(got, tt.want) {
			t.Errorf("%s result = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestTaskResult_NoOpeningLines(t *testing.T) {
	r := task.Result{Kind: task.Introduction, Payloads: []json.RawMessage{json.RawMessage(`{"opening_lines": []}`)}}
	got, err := TaskResult(r, 80)
	if err != nil {
		t.Fatalf("TaskResult: %v", err)
	}
	if got != "No suggestions were generated." {
		t.Errorf("got %q", got)
	}
}
