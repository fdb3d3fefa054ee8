package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clusterkit/spectral-clustering-service/pkg/graphio"
	"github.com/clusterkit/spectral-clustering-service/pkg/models"
	"github.com/clusterkit/spectral-clustering-service/pkg/spectral"
)

// JobService runs spectral clustering jobs in the background
type JobService struct {
	jobs            map[string]*models.Job
	results         map[string]*spectral.Result
	workers         chan struct{}
	datasetService  *DatasetService
	mutex           sync.RWMutex
	jobTimeout      time.Duration
	resultTTL       time.Duration
	cleanupInterval time.Duration
}

// JobServiceOptions bundles the tunables of a job service
type JobServiceOptions struct {
	MaxWorkers      int
	JobTimeout      time.Duration
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// NewJobService creates a new job service
func NewJobService(datasetService *DatasetService, opts JobServiceOptions) *JobService {
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 4
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = 10 * time.Minute
	}
	if opts.ResultTTL <= 0 {
		opts.ResultTTL = time.Hour
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = 5 * time.Minute
	}

	service := &JobService{
		jobs:            make(map[string]*models.Job),
		results:         make(map[string]*spectral.Result),
		workers:         make(chan struct{}, opts.MaxWorkers),
		datasetService:  datasetService,
		jobTimeout:      opts.JobTimeout,
		resultTTL:       opts.ResultTTL,
		cleanupInterval: opts.CleanupInterval,
	}

	go service.cleanupLoop()

	return service
}

// Submit creates and queues a new clustering job
func (s *JobService) Submit(datasetID string, params models.JobParameters) (*models.Job, error) {
	if _, err := s.datasetService.Get(datasetID); err != nil {
		return nil, err
	}
	if params.Tolerance != nil && *params.Tolerance < 0 {
		return nil, fmt.Errorf("invalid parameters: tolerance must be non-negative")
	}
	if params.MaxClusters != nil && *params.MaxClusters < 0 {
		return nil, fmt.Errorf("invalid parameters: maxClusters must be non-negative")
	}

	now := time.Now()
	job := &models.Job{
		ID:         uuid.New().String(),
		DatasetID:  datasetID,
		Parameters: params,
		Status:     models.JobStatusQueued,
		Progress: models.JobProgress{
			Percentage: 0,
			Message:    "Queued",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mutex.Lock()
	s.jobs[job.ID] = job
	s.mutex.Unlock()

	log.Info().
		Str("job_id", job.ID).
		Str("dataset_id", datasetID).
		Msg("Job submitted")

	go s.processJob(job.ID)

	return job, nil
}

// Get retrieves a job by ID
func (s *JobService) Get(jobID string) (*models.Job, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	return job, nil
}

// GetResult retrieves the clustering result for a completed job
func (s *JobService) GetResult(jobID string) (*spectral.Result, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result, exists := s.results[jobID]
	if !exists {
		return nil, fmt.Errorf("result not found for job: %s", jobID)
	}

	return result, nil
}

// processJob runs one job under a worker slot
func (s *JobService) processJob(jobID string) {
	s.workers <- struct{}{}
	defer func() { <-s.workers }()

	job, err := s.Get(jobID)
	if err != nil {
		return
	}

	s.updateJob(jobID, models.JobStatusRunning, 10, "Loading graph")

	dataset, err := s.datasetService.Get(job.DatasetID)
	if err != nil {
		s.failJob(jobID, err)
		return
	}

	root, err := graphio.ReadGraph(dataset.GraphFile)
	if err != nil {
		s.failJob(jobID, err)
		return
	}

	cfg := spectral.NewConfig()
	if job.Parameters.Tolerance != nil {
		cfg.Set("algorithm.tolerance", *job.Parameters.Tolerance)
	}
	if job.Parameters.RandomSeed != nil {
		cfg.Set("algorithm.random_seed", *job.Parameters.RandomSeed)
	}
	if job.Parameters.MaxClusters != nil {
		cfg.Set("algorithm.max_clusters", *job.Parameters.MaxClusters)
	}
	cfg.Set("logging.enable_progress", false)

	s.updateJob(jobID, models.JobStatusRunning, 30, "Dividing graph")

	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	result, err := spectral.Divide(ctx, root, cfg)
	if err != nil {
		s.failJob(jobID, err)
		return
	}

	now := time.Now()
	s.mutex.Lock()
	s.results[jobID] = result
	if job, exists := s.jobs[jobID]; exists {
		job.Status = models.JobStatusCompleted
		job.Progress = models.JobProgress{Percentage: 100, Message: "Completed"}
		job.UpdatedAt = now
		job.CompletedAt = &now
	}
	s.mutex.Unlock()

	log.Info().
		Str("job_id", jobID).
		Int("clusters", result.NumClusters).
		Int64("runtime_ms", result.Statistics.RuntimeMS).
		Msg("Job completed")
}

func (s *JobService) updateJob(jobID string, status models.JobStatus, percentage int, message string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if job, exists := s.jobs[jobID]; exists {
		job.Status = status
		job.Progress = models.JobProgress{Percentage: percentage, Message: message}
		job.UpdatedAt = time.Now()
	}
}

func (s *JobService) failJob(jobID string, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if job, exists := s.jobs[jobID]; exists {
		job.Status = models.JobStatusFailed
		job.Error = err.Error()
		job.Progress = models.JobProgress{Percentage: 100, Message: "Failed"}
		job.UpdatedAt = time.Now()
	}

	log.Error().Str("job_id", jobID).Err(err).Msg("Job failed")
}

// cleanupLoop evicts finished jobs once their results expire
func (s *JobService) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-s.resultTTL)

		s.mutex.Lock()
		for id, job := range s.jobs {
			done := job.Status == models.JobStatusCompleted || job.Status == models.JobStatusFailed
			if done && job.UpdatedAt.Before(cutoff) {
				delete(s.jobs, id)
				delete(s.results, id)
			}
		}
		s.mutex.Unlock()
	}
}
