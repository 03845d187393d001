// Package jobs keeps the in-memory status of jobs seen by this process.
package jobs

import (
	"sort"
	"sync"
	"time"

	"fjacquet/portfolio-parser/internal/models"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// JobRecord is the status snapshot of one job.
type JobRecord struct {
	JobID       string              `json:"jobId"`
	Status      Status              `json:"status"`
	Directory   string              `json:"directory,omitempty"`
	Files       []string            `json:"files"`
	Counts      map[models.Kind]int `json:"counts,omitempty"`
	ErrorCount  int                 `json:"errorCount"`
	StartedAt   time.Time           `json:"startedAt"`
	CompletedAt *time.Time          `json:"completedAt,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// DefaultMaxFinished is the number of finished records kept when NewStore
// is given no positive limit.
const DefaultMaxFinished = 1000

// Store holds job records. It is safe for concurrent use. Only the
// maxFinished most recently finished records are kept; pending and running
// jobs are never evicted.
type Store struct {
	mu          sync.RWMutex
	records     map[string]*JobRecord
	maxFinished int
	now         func() time.Time
}

// NewStore returns an empty Store keeping at most maxFinished completed or
// failed records.
func NewStore(maxFinished int) *Store {
	if maxFinished <= 0 {
		maxFinished = DefaultMaxFinished
	}
	return &Store{
		records:     make(map[string]*JobRecord),
		maxFinished: maxFinished,
		now:         time.Now,
	}
}

// Register records a job as pending.
func (s *Store) Register(req models.JobRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[req.JobID] = &JobRecord{
		JobID:     req.JobID,
		Status:    StatusPending,
		Directory: req.Directory,
		Files:     append([]string(nil), req.Files...),
		StartedAt: s.now(),
	}
}

// Start marks a job as running, registering it if needed.
func (s *Store) Start(req models.JobRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[req.JobID]
	if !ok {
		rec = &JobRecord{JobID: req.JobID}
		s.records[req.JobID] = rec
	}
	rec.Status = StatusRunning
	rec.Directory = req.Directory
	rec.Files = append([]string(nil), req.Files...)
	rec.StartedAt = s.now()
	rec.CompletedAt = nil
	rec.Error = ""
}

// Complete marks a job as completed with the counts of its result.
func (s *Store) Complete(result *models.JobResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.recordLocked(result.JobID)
	now := s.now()
	rec.Status = StatusCompleted
	rec.Counts = result.Counts()
	rec.ErrorCount = len(result.Errors)
	rec.CompletedAt = &now
	s.evictLocked()
}

// Fail marks a job as failed with reason.
func (s *Store) Fail(jobID, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.recordLocked(jobID)
	now := s.now()
	rec.Status = StatusFailed
	rec.Error = reason
	rec.CompletedAt = &now
	s.evictLocked()
}

func (s *Store) recordLocked(jobID string) *JobRecord {
	rec, ok := s.records[jobID]
	if !ok {
		rec = &JobRecord{JobID: jobID, StartedAt: s.now()}
		s.records[jobID] = rec
	}
	return rec
}

// evictLocked drops the oldest finished records beyond maxFinished.
func (s *Store) evictLocked() {
	var finished []*JobRecord
	for _, rec := range s.records {
		if rec.CompletedAt != nil {
			finished = append(finished, rec)
		}
	}
	excess := len(finished) - s.maxFinished
	if excess <= 0 {
		return
	}
	sort.Slice(finished, func(i, j int) bool {
		return finished[i].CompletedAt.Before(*finished[j].CompletedAt)
	})
	for _, rec := range finished[:excess] {
		delete(s.records, rec.JobID)
	}
}

// Get returns a copy of the record for jobID.
func (s *Store) Get(jobID string) (JobRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[jobID]
	if !ok {
		return JobRecord{}, false
	}
	return rec.clone(), true
}

// List returns copies of all records, most recently started first.
func (s *Store) List() []JobRecord {
	s.mu.RLock()
	out := make([]JobRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.clone())
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].JobID < out[j].JobID
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

func (r *JobRecord) clone() JobRecord {
	c := *r
	c.Files = append([]string(nil), r.Files...)
	if r.Counts != nil {
		c.Counts = make(map[models.Kind]int, len(r.Counts))
		for k, v := range r.Counts {
			c.Counts[k] = v
		}
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		c.CompletedAt = &t
	}
	return c
}
