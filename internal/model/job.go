package model

import (
	"context"
	"encoding/json"
)

// Job is a reviewed job listing as served by the backend's reviewer.
type Job struct {
	ID             int                `json:"id"`
	Title          string             `json:"title"`
	Company        string             `json:"company"`
	Location       string             `json:"location"`
	Link           string             `json:"job_link"`
	Score          *float64           `json:"score"`                  // nil when the reviewer produced no score
	EvaluationGrid json.RawMessage    `json:"evaluation_grid"`        // string, list of criteria, or arbitrary JSON
	Synthesis      string             `json:"synthesis_and_decision"` // rendered HTML/markdown from the reviewer
	PreferredPitch string             `json:"preferred_pitch"`
	Status         *ApplicationStatus `json:"status"` // nil = not processed yet
}

// ApplicationStatus records the user's decision on a job.
type ApplicationStatus struct {
	ID      int    `json:"id"`
	Applied bool   `json:"applied"` // true = interested, false = not interested
	Date    string `json:"date"`    // ISO date set by the backend
}

// Processed reports whether the user already marked the job.
func (j Job) Processed() bool {
	return j.Status != nil
}

// ScoreValue returns the score, or ok=false when absent.
func (j Job) ScoreValue() (float64, bool) {
	if j.Score == nil {
		return 0, false
	}
	return *j.Score, true
}

// JobDetail is the live description fetched on demand for one job.
type JobDetail struct {
	Description string `json:"description"`
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	Location    string `json:"location,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Destination is one scraping target (location + remote filter).
type Destination struct {
	ID         int    `json:"id" yaml:"id"`
	Location   string `json:"location" yaml:"location"`
	RemoteType string `json:"remote_type" yaml:"remote_type"` // "any", "remote", "hybrid", "on-site"
	Enabled    bool   `json:"enabled" yaml:"enabled"`
}

// JobFetcher fetches the full list of reviewed jobs.
type JobFetcher interface {
	FetchJobs(ctx context.Context) ([]Job, error)
}

// JobDetailFetcher fetches the live description of a single job.
type JobDetailFetcher interface {
	FetchJobDetail(ctx context.Context, jobID int) (JobDetail, error)
}

// StatusSetter records an interested / not interested decision.
type StatusSetter interface {
	SetJobStatus(ctx context.Context, jobID int, applied bool) (ApplicationStatus, error)
}

// SeenStore tracks which job IDs have already been notified.
type SeenStore interface {
	HasSeen(jobID int) (bool, error)
	MarkSeen(jobID int) error
	// Seeded reports whether the backlog present on the first watch cycle
	// has been recorded. It stays true once MarkSeeded succeeds.
	Seeded() (bool, error)
	MarkSeeded() error
	// Prune forgets every seen ID not in keep and returns how many it removed.
	Prune(keep []int) (int64, error)
}

// Notifier sends notifications for new job matches.
type Notifier interface {
	Notify(jobs []Job) error
}

// JobFilter decides whether a job matches the user's criteria.
type JobFilter interface {
	Match(job Job) bool
}
