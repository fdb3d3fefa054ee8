package models

import (
	"time"

	"github.com/clusterkit/spectral-clustering-service/pkg/spectral"
)

// Dataset represents an uploaded binary graph file
type Dataset struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	GraphFile string          `json:"graphFile"`
	Metadata  DatasetMetadata `json:"metadata"`
	CreatedAt time.Time       `json:"createdAt"`
}

type DatasetMetadata struct {
	VertexCount int   `json:"vertexCount"`
	EdgeCount   int   `json:"edgeCount"`
	FileSize    int64 `json:"fileSize"`
}

// Job represents a spectral clustering job
type Job struct {
	ID          string        `json:"id"`
	DatasetID   string        `json:"datasetId"`
	Parameters  JobParameters `json:"parameters"`
	Status      JobStatus     `json:"status"`
	Progress    JobProgress   `json:"progress"`
	Error       string        `json:"error,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
}

type JobParameters struct {
	Tolerance   *float64 `json:"tolerance,omitempty"`
	RandomSeed  *int64   `json:"randomSeed,omitempty"`
	MaxClusters *int     `json:"maxClusters,omitempty"`
}

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

type JobProgress struct {
	Percentage int    `json:"percentage"`
	Message    string `json:"message"`
}

// API Response types
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type UploadResponse struct {
	DatasetID string  `json:"datasetId"`
	Dataset   Dataset `json:"dataset"`
}

type ClusteringResponse struct {
	JobID string `json:"jobId"`
	Job   Job    `json:"job"`
}

type JobResultResponse struct {
	Job    Job              `json:"job"`
	Result *spectral.Result `json:"result,omitempty"`
}
