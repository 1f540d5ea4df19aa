package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fyrsmithlabs/repoflat/internal/flatten"
)

// JobStatus is the lifecycle state of a render job.
type JobStatus string

const (
	StatusPending  JobStatus = "pending"
	StatusRunning  JobStatus = "running"
	StatusComplete JobStatus = "complete"
	StatusError    JobStatus = "error"
)

// Job is one asynchronous render. Output holds the rendered document once the
// job completes; Error holds the failure detail once it fails.
type Job struct {
	ID         string
	Ref        flatten.RepoRef
	Mode       RenderMode
	Status     JobStatus
	Error      string
	Output     string
	Stats      flatten.Stats
	CreatedAt  time.Time
	FinishedAt time.Time
}

// done reports whether the job reached a terminal state.
func (j *Job) done() bool {
	return j.Status == StatusComplete || j.Status == StatusError
}

// JobStore keeps render jobs in memory. Finished jobs are pruned once they
// outlive the TTL; in-flight jobs are never pruned.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
	now  func() time.Time
}

// NewJobStore creates a store pruning finished jobs after ttl.
func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Create registers a new pending job and returns it.
func (s *JobStore) Create(ref flatten.RepoRef, mode RenderMode) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()

	job := &Job{
		ID:        uuid.NewString(),
		Ref:       ref,
		Mode:      mode,
		Status:    StatusPending,
		CreatedAt: s.now(),
	}
	s.jobs[job.ID] = job
	return job
}

// Get returns a snapshot of the job, or false if unknown or pruned.
func (s *JobStore) Get(id string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// SetRunning marks the job as in flight.
func (s *JobStore) SetRunning(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = StatusRunning
	}
}

// Complete records the rendered output and marks the job done.
func (s *JobStore) Complete(id, output string, stats flatten.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = StatusComplete
		job.Output = output
		job.Stats = stats
		job.FinishedAt = s.now()
	}
}

// Fail records the failure detail and marks the job done.
func (s *JobStore) Fail(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = StatusError
		job.Error = err.Error()
		job.FinishedAt = s.now()
	}
}

// Len returns the number of stored jobs after pruning.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	return len(s.jobs)
}

func (s *JobStore) pruneLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)
	for id, job := range s.jobs {
		if job.done() && job.FinishedAt.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
}
