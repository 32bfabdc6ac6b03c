package model

import (
	"encoding/json"
	"time"
)

// TaskState is the normalised state of a backend task.
type TaskState string

const (
	TaskIdle     TaskState = "idle"
	TaskPending  TaskState = "pending"
	TaskComplete TaskState = "complete"
	TaskFailed   TaskState = "failed"
)

// ParseTaskState maps both backend vocabularies onto TaskState.
// The customizer reports pending/complete/failed, the reviewer
// running/completed/error.
func ParseTaskState(s string) TaskState {
	switch s {
	case "pending", "running", "started", "already_running":
		return TaskPending
	case "complete", "completed":
		return TaskComplete
	case "failed", "error":
		return TaskFailed
	default:
		return TaskIdle
	}
}

// Terminal reports whether the state ends a poll loop.
func (s TaskState) Terminal() bool {
	return s == TaskComplete || s == TaskFailed
}

// TaskStatus is one status-endpoint reply.
type TaskStatus struct {
	State            TaskState
	Error            string
	Message          string // progress message (cover letter)
	Current          int
	Total            int
	NewJobsCount     int
	JobsUpdatedCount int
	Content          string          // generated content (cover letter)
	Raw              json.RawMessage // full reply, for kinds carrying their result inline
}

// Progress returns completion in [0,1], zero when the total is unknown.
func (s TaskStatus) Progress() float64 {
	if s.Total <= 0 {
		return 0
	}
	p := float64(s.Current) / float64(s.Total)
	if p > 1 {
		return 1
	}
	return p
}

type rawTaskStatus struct {
	Status           string  `json:"status"`
	Error            *string `json:"error"`
	Message          string  `json:"message"`
	Current          int     `json:"current"`
	Total            int     `json:"total"`
	NewJobsCount     int     `json:"new_jobs_count"`
	JobsUpdatedCount int     `json:"jobs_updated_count"`
	Content          string  `json:"content"`
}

// UnmarshalJSON decodes a status reply and normalises its state.
func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var raw rawTaskStatus
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = TaskStatus{
		State:            ParseTaskState(raw.Status),
		Message:          raw.Message,
		Current:          raw.Current,
		Total:            raw.Total,
		NewJobsCount:     raw.NewJobsCount,
		JobsUpdatedCount: raw.JobsUpdatedCount,
		Content:          raw.Content,
		Raw:              append(json.RawMessage(nil), data...),
	}
	if raw.Error != nil {
		s.Error = *raw.Error
	}
	return nil
}

// TaskRun is one finished poller run, kept for history.
type TaskRun struct {
	ID         string
	Kind       string
	State      TaskState
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration is the wall time of the run.
func (r TaskRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunRecorder persists finished task runs.
type RunRecorder interface {
	RecordRun(run TaskRun) error
}
