package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/clusterkit/spectral-clustering-service/pkg/graphio"
	"github.com/clusterkit/spectral-clustering-service/pkg/models"
)

// twoCliqueGraph encodes two disconnected triangles in the binary format.
func twoCliqueGraph(t *testing.T) *bytes.Buffer {
	t.Helper()

	rows := [][]int{
		{1, 2}, {0, 2}, {0, 1},
		{4, 5}, {3, 5}, {3, 4},
	}

	var buf bytes.Buffer
	if err := graphio.WriteGraphTo(&buf, rows); err != nil {
		t.Fatalf("encoding graph: %v", err)
	}

	return &buf
}

func newTestServices(t *testing.T) (*DatasetService, *JobService) {
	t.Helper()

	datasets, err := NewDatasetService(t.TempDir())
	if err != nil {
		t.Fatalf("creating dataset service: %v", err)
	}
	jobs := NewJobService(datasets, JobServiceOptions{
		MaxWorkers: 2,
		JobTimeout: time.Minute,
	})

	return datasets, jobs
}

func waitForJob(t *testing.T, jobs *JobService, jobID string) *models.Job {
	t.Helper()

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		job, err := jobs.Get(jobID)
		if err != nil {
			t.Fatalf("getting job: %v", err)
		}
		if job.Status == models.JobStatusCompleted || job.Status == models.JobStatusFailed {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal("job did not finish in time")
	return nil
}

func TestDatasetUploadAndDelete(t *testing.T) {
	datasets, _ := newTestServices(t)

	dataset, err := datasets.Upload("triangles", twoCliqueGraph(t))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if dataset.Metadata.VertexCount != 6 || dataset.Metadata.EdgeCount != 6 {
		t.Errorf("metadata: got %d vertices %d edges, want 6 and 6", dataset.Metadata.VertexCount, dataset.Metadata.EdgeCount)
	}

	if _, err := datasets.Get(dataset.ID); err != nil {
		t.Errorf("get after upload: %v", err)
	}
	if err := datasets.Delete(dataset.ID); err != nil {
		t.Errorf("delete: %v", err)
	}
	if _, err := datasets.Get(dataset.ID); err == nil {
		t.Error("expected error getting deleted dataset")
	}
}

func TestDatasetUploadRejectsInvalidGraph(t *testing.T) {
	datasets, _ := newTestServices(t)

	if _, err := datasets.Upload("broken", bytes.NewReader([]byte{1, 2, 3})); err == nil {
		t.Error("expected error for malformed graph file")
	}
}

func TestJobLifecycle(t *testing.T) {
	datasets, jobs := newTestServices(t)

	dataset, err := datasets.Upload("triangles", twoCliqueGraph(t))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	seed := int64(42)
	job, err := jobs.Submit(dataset.ID, models.JobParameters{RandomSeed: &seed})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	job = waitForJob(t, jobs, job.ID)
	if job.Status != models.JobStatusCompleted {
		t.Fatalf("job status %s (error %q), want completed", job.Status, job.Error)
	}

	result, err := jobs.GetResult(job.ID)
	if err != nil {
		t.Fatalf("getting result: %v", err)
	}
	if result.NumClusters != 2 {
		t.Errorf("clusters: got %d, want 2", result.NumClusters)
	}
}

func TestJobSubmitValidation(t *testing.T) {
	datasets, jobs := newTestServices(t)

	if _, err := jobs.Submit("no-such-dataset", models.JobParameters{}); err == nil {
		t.Error("expected error for unknown dataset")
	}

	dataset, err := datasets.Upload("triangles", twoCliqueGraph(t))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	bad := -1.0
	if _, err := jobs.Submit(dataset.ID, models.JobParameters{Tolerance: &bad}); err == nil {
		t.Error("expected error for negative tolerance")
	}
}
