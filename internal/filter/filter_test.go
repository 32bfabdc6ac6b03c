package filter

import (
	"testing"

	"github.com/amishk599/jobseeker/internal/config"
	"github.com/amishk599/jobseeker/internal/model"
)

func job(title, location string, score *float64) model.Job {
	return model.Job{Title: title, Location: location, Score: score}
}

func score(v float64) *float64 { return &v }

func TestJobFilter_Match(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.FilterConfig
		job       model.Job
		wantMatch bool
	}{
		{
			name: "matches both title and location",
			cfg: config.FilterConfig{
				TitleKeywords: []string{"software engineer", "backend"},
				Locations:     []string{"France", "Remote"},
			},
			job:       job("Software Engineer", "Remote - EU", nil),
			wantMatch: true,
		},
		{
			name: "title match but location miss",
			cfg: config.FilterConfig{
				TitleKeywords: []string{"software engineer"},
				Locations:     []string{"France", "Remote"},
			},
			job:       job("Software Engineer", "London, UK", nil),
			wantMatch: false,
		},
		{
			name:      "case insensitive matching",
			cfg:       config.FilterConfig{TitleKeywords: []string{"FULLSTACK"}, Locations: []string{"paris"}},
			job:       job("Fullstack Developer", "Paris, France", nil),
			wantMatch: true,
		},
		{
			name:      "excluded title keyword",
			cfg:       config.FilterConfig{TitleKeywords: []string{"engineer"}, TitleExcludeKeywords: []string{"intern"}},
			job:       job("Engineer Intern", "Paris", nil),
			wantMatch: false,
		},
		{
			name:      "excluded location",
			cfg:       config.FilterConfig{ExcludeLocations: []string{"on-site only"}},
			job:       job("Engineer", "Lyon (on-site only)", nil),
			wantMatch: false,
		},
		{
			name:      "score below minimum",
			cfg:       config.FilterConfig{MinScore: 3},
			job:       job("Engineer", "Paris", score(2.5)),
			wantMatch: false,
		},
		{
			name:      "missing score with minimum set",
			cfg:       config.FilterConfig{MinScore: 3},
			job:       job("Engineer", "Paris", nil),
			wantMatch: false,
		},
		{
			name:      "score at minimum",
			cfg:       config.FilterConfig{MinScore: 3},
			job:       job("Engineer", "Paris", score(3)),
			wantMatch: true,
		},
		{
			name:      "empty criteria pass all",
			cfg:       config.FilterConfig{},
			job:       job("Any Role", "Anywhere", nil),
			wantMatch: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewJobFilter(tt.cfg)
			if got := f.Match(tt.job); got != tt.wantMatch {
				t.Errorf("Match() = %v, want %v", got, tt.wantMatch)
			}
		})
	}
}
