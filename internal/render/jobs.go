package render

import (
	"sync"
	"time"

	"github.com/dgallion1/folio/internal/reflow"
)

// JobStatus represents the state of a prerender job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRendering JobStatus = "rendering"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusPartial   JobStatus = "partial"
)

// Job tracks the prerendering of every page of one book.
type Job struct {
	mu sync.Mutex

	ID   string `json:"job_id"`
	Book string `json:"book"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	errors []string
}

// Progress tracks prerender progress.
type Progress struct {
	TotalPages    int      `json:"total_pages"`
	PagesRendered int      `json:"pages_rendered"`
	Blocks        int      `json:"blocks"`
	Removed       int      `json:"removed"`
	Errors        []string `json:"errors"`
}

// NewJob creates a queued job for pages 0..lastPage of book.
func NewJob(book string, lastPage int) *Job {
	now := time.Now()
	return &Job{
		ID:        NewID(),
		Book:      book,
		Status:    StatusQueued,
		Phase:     "queued",
		Progress:  Progress{TotalPages: lastPage + 1},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// AddPage records a rendered page.
func (j *Job) AddPage(stats reflow.Stats) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.PagesRendered++
	j.Progress.Blocks += stats.Blocks
	j.Progress.Removed += stats.Removed
	j.UpdatedAt = time.Now()
}

// TotalPages returns the number of pages the job covers.
func (j *Job) TotalPages() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.Progress.TotalPages
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Book      string    `json:"book"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.errors))
	copy(errs, j.errors)
	p := j.Progress
	p.Errors = errs
	return JobSnapshot{
		ID:        j.ID,
		Book:      j.Book,
		Status:    j.Status,
		Phase:     j.Phase,
		Progress:  p,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
