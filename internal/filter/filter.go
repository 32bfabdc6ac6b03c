package filter

import (
	"strings"

	"github.com/amishk599/jobseeker/internal/config"
	"github.com/amishk599/jobseeker/internal/model"
)

// JobFilter selects reviewed jobs worth a notification: the title must
// contain a title keyword and none of the excluded ones, the location must
// contain a location keyword and none of the excluded ones, and the score
// must reach the minimum. Matching is case-insensitive. Empty keyword lists
// are treated as "match all"; a zero MinScore disables the score check.
type JobFilter struct {
	titleKeywords    []string
	titleExcludes    []string
	locations        []string
	excludeLocations []string
	minScore         float64
}

// NewJobFilter builds a filter from the configured criteria.
func NewJobFilter(cfg config.FilterConfig) *JobFilter {
	return &JobFilter{
		titleKeywords:    lower(cfg.TitleKeywords),
		titleExcludes:    lower(cfg.TitleExcludeKeywords),
		locations:        lower(cfg.Locations),
		excludeLocations: lower(cfg.ExcludeLocations),
		minScore:         cfg.MinScore,
	}
}

// Match reports whether the job passes every criterion.
func (f *JobFilter) Match(job model.Job) bool {
	title := strings.ToLower(job.Title)
	location := strings.ToLower(job.Location)

	if len(f.titleKeywords) > 0 && !containsAny(title, f.titleKeywords) {
		return false
	}
	if containsAny(title, f.titleExcludes) {
		return false
	}
	if len(f.locations) > 0 && !containsAny(location, f.locations) {
		return false
	}
	if containsAny(location, f.excludeLocations) {
		return false
	}

	if f.minScore != 0 {
		score, ok := job.ScoreValue()
		if !ok || score < f.minScore {
			return false
		}
	}
	return true
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func lower(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}
