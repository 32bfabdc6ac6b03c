package main

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/jobseeker/internal/config"
	"github.com/amishk599/jobseeker/internal/model"
	"github.com/amishk599/jobseeker/internal/task"
)

func TestParseKeywordGroups(t *testing.T) {
	input := `
Backend:
  keywords: [Go, " gRPC ", ""]
  instructions: " put Go first "
Empty:
  keywords: []
`
	groups, err := parseKeywordGroups(input)
	if err != nil {
		t.Fatalf("parseKeywordGroups: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("groups = %+v, want only Backend", groups)
	}
	g := groups["Backend"]
	if strings.Join(g.Keywords, ",") != "Go,gRPC" || g.Instructions != "put Go first" {
		t.Errorf("Backend = %+v", g)
	}
}

func TestParseKeywordGroups_JSON(t *testing.T) {
	groups, err := parseKeywordGroups(`{"Cloud": {"keywords": ["AWS"], "instructions": ""}}`)
	if err != nil {
		t.Fatalf("parseKeywordGroups: %v", err)
	}
	if got := groups["Cloud"].Keywords; len(got) != 1 || got[0] != "AWS" {
		t.Errorf("Cloud = %+v", groups["Cloud"])
	}
}

func TestParseKeywordGroups_NoGroups(t *testing.T) {
	if _, err := parseKeywordGroups("Empty:\n  keywords: []\n"); err == nil {
		t.Error("expected an error when no group has keywords")
	}
}

func TestAddAndToggleDestination(t *testing.T) {
	dests := []model.Destination{{ID: 3, Location: "Paris", RemoteType: "any", Enabled: true}}

	dests = addDestination(dests, "Lyon", "hybrid")
	if len(dests) != 2 || dests[1].ID != 4 || !dests[1].Enabled || dests[1].RemoteType != "hybrid" {
		t.Fatalf("after add = %+v", dests)
	}

	if !toggleDestination(dests, 3) || dests[0].Enabled {
		t.Errorf("toggle 3 should disable Paris: %+v", dests[0])
	}
	if toggleDestination(dests, 99) {
		t.Error("toggling an unknown id should report false")
	}
}

func TestValidRemoteType(t *testing.T) {
	for _, ok := range []string{"any", "remote", "hybrid", "on-site"} {
		if !validRemoteType(ok) {
			t.Errorf("%q should be valid", ok)
		}
	}
	if validRemoteType("onsite") {
		t.Error(`"onsite" should be invalid`)
	}
}

func TestWithRunBody(t *testing.T) {
	cfg := config.Default()
	cfg.Watch.ScrapeDays = 3
	cfg.Watch.Destinations = []model.Destination{
		{ID: 1, Location: "Paris", RemoteType: "any", Enabled: true},
		{ID: 2, Location: "Berlin", RemoteType: "remote", Enabled: false},
	}
	kinds := task.Kinds("/customizer")

	runDays, runCount = 0, 5
	t.Cleanup(func() { runDays, runCount = 0, 10 })

	scrape, err := withRunBody(kinds[task.Scraping], cfg)
	if err != nil {
		t.Fatalf("scraping: %v", err)
	}
	body, _ := json.Marshal(scrape.Body)
	want := `{"days":3,"destinations":[{"id":1,"location":"Paris","remote_type":"any","enabled":true}]}`
	if string(body) != want {
		t.Errorf("scrape body = %s, want %s", body, want)
	}

	review, err := withRunBody(kinds[task.ReviewLatest], cfg)
	if err != nil {
		t.Fatalf("review-latest: %v", err)
	}
	if body, _ := json.Marshal(review.Body); string(body) != `{"count":5}` {
		t.Errorf("review body = %s", body)
	}

	extraction, err := withRunBody(kinds[task.Extraction], cfg)
	if err != nil || extraction.Body != nil {
		t.Errorf("extraction body = %v, err = %v", extraction.Body, err)
	}

	runCount = 0
	if _, err := withRunBody(kinds[task.Review], cfg); err == nil {
		t.Error("expected an error for --count 0")
	}
}

func TestHistoryTable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []model.TaskRun{{
		ID:         "r1",
		Kind:       "review",
		State:      model.TaskFailed,
		Error:      "LLM quota exceeded",
		StartedAt:  now.Add(-2 * time.Hour),
		FinishedAt: now.Add(-2*time.Hour + 90*time.Second),
	}}

	out := historyTable(runs, now)
	for _, want := range []string{"2 hours ago", "review", "failed", "1m30s", "LLM quota exceeded"} {
		if !strings.Contains(out, want) {
			t.Errorf("history table missing %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("  ab  ", 4); got != "ab" {
		t.Errorf("truncate = %q", got)
	}
}

func TestBuildExperienceOrder(t *testing.T) {
	order, err := buildExperienceOrder([]string{"IBM France", " Thales DMS "}, []string{"Thales DMS"})
	if err != nil {
		t.Fatalf("buildExperienceOrder: %v", err)
	}
	if strings.Join(order.Order, ",") != "IBM France,Thales DMS" || !order.IsHidden("Thales DMS") {
		t.Errorf("order = %+v", order)
	}

	if _, err := buildExperienceOrder([]string{"IBM France"}, []string{"Thales DMS"}); err == nil {
		t.Error("expected an error for a hidden experience missing from the order")
	}
	if _, err := buildExperienceOrder([]string{"IBM France", "IBM France"}, nil); err == nil {
		t.Error("expected an error for a duplicate experience")
	}
}

func TestParseHighlights(t *testing.T) {
	got := parseHighlights("  5 years of Go\n\n on-call rotation \n")
	if strings.Join(got, "|") != "5 years of Go|on-call rotation" {
		t.Errorf("parseHighlights = %q", got)
	}
}
