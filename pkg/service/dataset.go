package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clusterkit/spectral-clustering-service/pkg/graphio"
	"github.com/clusterkit/spectral-clustering-service/pkg/models"
)

// DatasetService stores uploaded graph files and their metadata
type DatasetService struct {
	datasets  map[string]*models.Dataset
	uploadDir string
	mutex     sync.RWMutex
}

// NewDatasetService creates a dataset service writing uploads into uploadDir
func NewDatasetService(uploadDir string) (*DatasetService, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	return &DatasetService{
		datasets:  make(map[string]*models.Dataset),
		uploadDir: uploadDir,
	}, nil
}

// Upload stores a binary graph file and validates it by building its root
// modularity matrix once.
func (s *DatasetService) Upload(name string, file io.Reader) (*models.Dataset, error) {
	id := uuid.New().String()
	path := filepath.Join(s.uploadDir, id+".graph")

	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("storing graph file: %w", err)
	}
	size, err := io.Copy(out, file)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("storing graph file: %w", err)
	}

	root, err := graphio.ReadGraph(path)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("invalid graph file: %w", err)
	}

	dataset := &models.Dataset{
		ID:        id,
		Name:      name,
		GraphFile: path,
		Metadata: models.DatasetMetadata{
			VertexCount: root.Size(),
			EdgeCount:   root.TotalDegree() / 2,
			FileSize:    size,
		},
		CreatedAt: time.Now(),
	}

	s.mutex.Lock()
	s.datasets[id] = dataset
	s.mutex.Unlock()

	log.Info().
		Str("dataset_id", id).
		Str("name", name).
		Int("vertices", dataset.Metadata.VertexCount).
		Int("edges", dataset.Metadata.EdgeCount).
		Msg("Dataset uploaded")

	return dataset, nil
}

// Get retrieves a dataset by ID
func (s *DatasetService) Get(id string) (*models.Dataset, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	dataset, exists := s.datasets[id]
	if !exists {
		return nil, fmt.Errorf("dataset not found: %s", id)
	}

	return dataset, nil
}

// List returns all datasets
func (s *DatasetService) List() []*models.Dataset {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]*models.Dataset, 0, len(s.datasets))
	for _, d := range s.datasets {
		out = append(out, d)
	}

	return out
}

// Delete removes a dataset and its stored file
func (s *DatasetService) Delete(id string) error {
	s.mutex.Lock()
	dataset, exists := s.datasets[id]
	if exists {
		delete(s.datasets, id)
	}
	s.mutex.Unlock()

	if !exists {
		return fmt.Errorf("dataset not found: %s", id)
	}

	if err := os.Remove(dataset.GraphFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing graph file: %w", err)
	}

	log.Info().Str("dataset_id", id).Msg("Dataset deleted")

	return nil
}
