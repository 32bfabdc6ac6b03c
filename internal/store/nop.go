package store

import "github.com/amishk599/jobseeker/internal/model"

// NopStore is a no-op store used in dry-run mode. It never marks jobs as
// seen, so every matching job is notified on each cycle, and it drops task
// run history.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) HasSeen(jobID int) (bool, error)   { return false, nil }
func (s *NopStore) MarkSeen(jobID int) error          { return nil }
func (s *NopStore) Seeded() (bool, error)             { return true, nil }
func (s *NopStore) MarkSeeded() error                 { return nil }
func (s *NopStore) Prune(keep []int) (int64, error)   { return 0, nil }
func (s *NopStore) RecordRun(run model.TaskRun) error { return nil }
