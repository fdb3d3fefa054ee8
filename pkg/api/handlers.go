package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/clusterkit/spectral-clustering-service/pkg/models"
	"github.com/clusterkit/spectral-clustering-service/pkg/service"
)

// Handlers contains HTTP request handlers
type Handlers struct {
	datasetService *service.DatasetService
	jobService     *service.JobService
	maxUploadSize  int64
}

// NewHandlers creates new API handlers
func NewHandlers(datasetService *service.DatasetService, jobService *service.JobService, maxUploadSize int64) *Handlers {
	if maxUploadSize <= 0 {
		maxUploadSize = 100 << 20
	}

	return &Handlers{
		datasetService: datasetService,
		jobService:     jobService,
		maxUploadSize:  maxUploadSize,
	}
}

// UploadDataset handles binary graph upload
func (h *Handlers) UploadDataset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		log.Error().Err(err).Msg("Failed to parse multipart form")
		writeErrorResponse(w, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = "Unnamed Dataset"
	}

	file, _, err := r.FormFile("graphFile")
	if err != nil {
		log.Error().Err(err).Msg("Missing graph file")
		writeErrorResponse(w, http.StatusBadRequest, "Missing required file: graphFile", err)
		return
	}
	defer file.Close()

	dataset, err := h.datasetService.Upload(name, file)
	if err != nil {
		log.Error().Err(err).Msg("Dataset upload failed")
		writeErrorResponse(w, http.StatusBadRequest, "Dataset upload failed", err)
		return
	}

	response := models.UploadResponse{
		DatasetID: dataset.ID,
		Dataset:   *dataset,
	}
	writeSuccessResponse(w, "Dataset uploaded successfully", response)
}

// ListDatasets lists all datasets
func (h *Handlers) ListDatasets(w http.ResponseWriter, r *http.Request) {
	datasets := h.datasetService.List()
	writeSuccessResponse(w, "Datasets retrieved successfully", datasets)
}

// GetDataset retrieves a specific dataset
func (h *Handlers) GetDataset(w http.ResponseWriter, r *http.Request) {
	datasetID := mux.Vars(r)["datasetId"]

	dataset, err := h.datasetService.Get(datasetID)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "Dataset not found", err)
		return
	}

	writeSuccessResponse(w, "Dataset retrieved successfully", dataset)
}

// DeleteDataset deletes a dataset
func (h *Handlers) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	datasetID := mux.Vars(r)["datasetId"]

	if err := h.datasetService.Delete(datasetID); err != nil {
		writeErrorResponse(w, http.StatusNotFound, "Dataset deletion failed", err)
		return
	}

	writeSuccessResponse(w, "Dataset deleted successfully", nil)
}

// StartClustering submits a clustering job for a dataset
func (h *Handlers) StartClustering(w http.ResponseWriter, r *http.Request) {
	datasetID := mux.Vars(r)["datasetId"]

	var params models.JobParameters
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Invalid job parameters", err)
			return
		}
	}

	job, err := h.jobService.Submit(datasetID, params)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Job submission failed", err)
		return
	}

	response := models.ClusteringResponse{
		JobID: job.ID,
		Job:   *job,
	}
	writeSuccessResponse(w, "Clustering job submitted", response)
}

// GetJob retrieves a job, including its result once completed
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]

	job, err := h.jobService.Get(jobID)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "Job not found", err)
		return
	}

	response := models.JobResultResponse{Job: *job}
	if job.Status == models.JobStatusCompleted {
		if result, err := h.jobService.GetResult(jobID); err == nil {
			response.Result = result
		}
	}

	writeSuccessResponse(w, "Job retrieved successfully", response)
}

// HealthCheck reports service liveness
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeSuccessResponse(w, "OK", map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
