package task

import (
	"fmt"
	"sort"
	"strings"
)

// Style selects how a kind's start reply and status loop behave.
type Style int

const (
	// StyleCustomizer kinds answer start with {"status": ...} and are
	// polled once immediately after starting.
	StyleCustomizer Style = iota
	// StyleReviewer kinds answer start with {"success": ...}; the first
	// status fetch happens one interval after starting and a failed status
	// fetch is logged without ending the loop.
	StyleReviewer
)

// Kind describes one backend task: where to start it, where to poll it,
// and which endpoints hold its result.
type Kind struct {
	Name        string
	Slot        string // tracker slot; defaults to Name
	StartPath   string
	StatusPath  string
	ResultPaths []string
	Body        any // JSON body of the start request, nil for none
	Style       Style
}

// SlotName returns the key under which at most one poll may be active.
func (k Kind) SlotName() string {
	if k.Slot != "" {
		return k.Slot
	}
	return k.Name
}

// WithBody returns a copy of k that sends body on start.
func (k Kind) WithBody(body any) Kind {
	k.Body = body
	return k
}

// Kind names.
const (
	InitialLoad  = "initial-load"
	Extraction   = "extraction"
	Ranking      = "ranking"
	Introduction = "introduction"
	CoverLetter  = "cover-letter"
	Scraping     = "scraping"
	Review       = "review"
	ReviewLatest = "review-latest"
	StatusUpdate = "status-update"
)

// Kinds builds the registry of backend task kinds. Customizer endpoints are
// resolved under prefix (e.g. "/customizer", or "" for the root).
func Kinds(prefix string) map[string]Kind {
	prefix = strings.TrimRight(prefix, "/")
	c := func(path string) string { return prefix + path }

	kinds := []Kind{
		{
			Name:       InitialLoad,
			StartPath:  c("/start-initial-load"),
			StatusPath: c("/initial-load-status"),
		},
		{
			Name:        Extraction,
			StartPath:   c("/start-extraction"),
			StatusPath:  c("/extraction-status"),
			ResultPaths: []string{c("/keywords"), c("/titles")},
		},
		{
			Name:        Ranking,
			StartPath:   c("/start-ranking"),
			StatusPath:  c("/ranking-status"),
			ResultPaths: []string{c("/ranking-report")},
		},
		{
			Name:        Introduction,
			StartPath:   c("/start-introduction"),
			StatusPath:  c("/introduction-status"),
			ResultPaths: []string{c("/introduction-report")},
		},
		{
			Name:       CoverLetter,
			StartPath:  c("/start-cover-letter"),
			StatusPath: c("/cover-letter-status"),
		},
		{
			Name:       Scraping,
			StartPath:  "/scrape",
			StatusPath: "/scrape/status",
			Style:      StyleReviewer,
		},
		{
			Name:       Review,
			StartPath:  "/review",
			StatusPath: "/review/status",
			Style:      StyleReviewer,
		},
		{
			Name:       ReviewLatest,
			Slot:       Review,
			StartPath:  "/review/latest",
			StatusPath: "/review/status",
			Style:      StyleReviewer,
		},
		{
			Name:       StatusUpdate,
			StartPath:  "/update-status",
			StatusPath: "/update-status/status",
			Style:      StyleReviewer,
		},
	}

	m := make(map[string]Kind, len(kinds))
	for _, k := range kinds {
		m[k.Name] = k
	}
	return m
}

// Lookup returns the kind with the given name.
func Lookup(kinds map[string]Kind, name string) (Kind, error) {
	k, ok := kinds[name]
	if !ok {
		return Kind{}, fmt.Errorf("unknown task kind %q (known: %s)", name, strings.Join(Names(kinds), ", "))
	}
	return k, nil
}

// Names returns the sorted kind names.
func Names(kinds map[string]Kind) []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
