package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/embeval/facedim/internal/subset"
)

// JobStatus represents the status of an async job.
type JobStatus string

// JobStatus constants define the lifecycle states of an async job.
const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// SweepJobView is the JSON representation of a sweep job. The report holds
// the full delimited output once the job completes.
type SweepJobView struct {
	ID          string     `json:"id"`
	Action      string     `json:"action"`
	Status      JobStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	Report      string     `json:"report,omitempty"`
}

// SweepJob represents an async evaluation sweep.
type SweepJob struct {
	mu   sync.RWMutex
	view SweepJobView
}

// View returns a snapshot of the job state.
func (j *SweepJob) View() SweepJobView {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.view
}

// run executes the sweep and records its report. The writer passed to fn
// collects the delimited report lines.
func (j *SweepJob) run(fn func(out io.Writer) error) {
	j.mu.Lock()
	j.view.Status = JobStatusRunning
	j.mu.Unlock()

	var buf bytes.Buffer
	err := fn(&buf)

	now := time.Now()
	j.mu.Lock()
	defer j.mu.Unlock()
	j.view.CompletedAt = &now
	if err != nil {
		j.view.Status = JobStatusFailed
		j.view.Error = err.Error()
		return
	}
	j.view.Status = JobStatusCompleted
	j.view.Report = buf.String()
}

// JobManager manages async jobs.
type JobManager struct {
	jobs map[string]*SweepJob
	mu   sync.RWMutex
}

// NewJobManager creates a new job manager.
func NewJobManager() *JobManager {
	return &JobManager{
		jobs: make(map[string]*SweepJob),
	}
}

// CreateJob creates a new pending sweep job.
func (m *JobManager) CreateJob(action string) *SweepJob {
	job := &SweepJob{
		view: SweepJobView{
			ID:        uuid.New().String(),
			Action:    action,
			Status:    JobStatusPending,
			StartedAt: time.Now(),
		},
	}

	m.mu.Lock()
	m.jobs[job.view.ID] = job
	m.mu.Unlock()

	return job
}

// GetJob retrieves a job by ID.
func (m *JobManager) GetJob(id string) *SweepJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

// ListJobs returns a snapshot of all jobs, newest first.
func (m *JobManager) ListJobs() []SweepJobView {
	m.mu.RLock()
	defer m.mu.RUnlock()

	views := make([]SweepJobView, 0, len(m.jobs))
	for _, job := range m.jobs {
		views = append(views, job.View())
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].StartedAt.After(views[j].StartedAt)
	})
	return views
}

// JobsHandler starts and reports async evaluation sweeps.
type JobsHandler struct {
	manager *JobManager
	samples []subset.PairSample
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(manager *JobManager, samples []subset.PairSample) *JobsHandler {
	return &JobsHandler{
		manager: manager,
		samples: samples,
	}
}

// TruncateRequest selects the truncate sweep variant.
type TruncateRequest struct {
	Relative bool `json:"relative"`
}

// StartTruncate starts a truncate sweep job and returns it immediately.
func (h *JobsHandler) StartTruncate(w http.ResponseWriter, r *http.Request) {
	if len(h.samples) == 0 {
		respondError(w, http.StatusConflict, errNoPairs)
		return
	}

	// An empty body selects the absolute variant.
	var req TruncateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	job := h.manager.CreateJob("truncate")
	samples := h.samples
	fullDim := len(samples[0].A)
	go job.run(func(out io.Writer) error {
		subset.Truncate(out, samples, fullDim, req.Relative)
		return nil
	})

	respondJSON(w, http.StatusAccepted, job.View())
}

// Status reports a single job.
func (h *JobsHandler) Status(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	job := h.manager.GetJob(jobID)
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}
	respondJSON(w, http.StatusOK, job.View())
}

// List reports all jobs.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.manager.ListJobs())
}
