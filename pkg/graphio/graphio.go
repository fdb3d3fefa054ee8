// Package graphio reads and writes the binary graph formats the clustering
// pipeline consumes and produces. Both formats are streams of little-endian
// 32-bit integers: the input graph is a vertex count followed per vertex by a
// neighbor count and the neighbor indices; the cluster output is a cluster
// count followed per cluster by its size and sorted member indices.
package graphio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/clusterkit/spectral-clustering-service/pkg/sparse"
	"github.com/clusterkit/spectral-clustering-service/pkg/spectral"
)

// ReadGraph reads a binary graph file and builds the root modularity matrix
// for the whole graph.
func ReadGraph(path string) (*spectral.ModularityMatrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("graphio: opening graph file: %w", err)
	}
	defer f.Close()

	m, err := ReadGraphFrom(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("graphio: reading %s: %w", path, err)
	}

	return m, nil
}

// ReadGraphFrom decodes a binary graph stream. Per-vertex neighbor counts are
// the original-graph degrees; their sum is the total degree M.
func ReadGraphFrom(r io.Reader) (*spectral.ModularityMatrix, error) {
	n, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("reading vertex count: %w", err)
	}
	if n <= 0 {
		return nil, fmt.Errorf("vertex count must be positive, got %d", n)
	}

	rows := make([][]int, n)
	degrees := make([]int, n)
	totalDegree := 0

	for i := 0; i < n; i++ {
		k, err := readInt32(r)
		if err != nil {
			return nil, fmt.Errorf("reading neighbor count of vertex %d: %w", i, err)
		}
		if k < 0 {
			return nil, fmt.Errorf("vertex %d has negative neighbor count %d", i, k)
		}

		row := make([]int, k)
		for p := 0; p < k; p++ {
			j, err := readInt32(r)
			if err != nil {
				return nil, fmt.Errorf("reading neighbor %d of vertex %d: %w", p, i, err)
			}
			if j < 0 || j >= n {
				return nil, fmt.Errorf("vertex %d has neighbor %d out of range [0,%d)", i, j, n)
			}
			if j == i {
				return nil, fmt.Errorf("vertex %d has a self loop, not supported", i)
			}
			row[p] = j
		}

		rows[i] = row
		degrees[i] = k
		totalDegree += k
	}

	if totalDegree == 0 {
		return nil, fmt.Errorf("graph has no edges")
	}

	adj, err := sparse.New(rows)
	if err != nil {
		return nil, err
	}

	return spectral.NewModularityMatrix(adj, degrees, totalDegree)
}

// WriteGraph writes per-vertex neighbor lists as a binary graph file.
func WriteGraph(path string, rows [][]int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("graphio: creating graph file: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := WriteGraphTo(w, rows); err != nil {
		f.Close()
		return fmt.Errorf("graphio: writing %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("graphio: flushing %s: %w", path, err)
	}

	return f.Close()
}

// WriteGraphTo encodes per-vertex neighbor lists as a binary graph stream.
func WriteGraphTo(w io.Writer, rows [][]int) error {
	if err := writeInt32(w, len(rows)); err != nil {
		return fmt.Errorf("writing vertex count: %w", err)
	}
	for i, row := range rows {
		if err := writeInt32(w, len(row)); err != nil {
			return fmt.Errorf("writing neighbor count of vertex %d: %w", i, err)
		}
		for _, j := range row {
			if err := writeInt32(w, j); err != nil {
				return fmt.Errorf("writing neighbors of vertex %d: %w", i, err)
			}
		}
	}

	return nil
}

// WriteClusters writes a clustering result to a binary file.
func WriteClusters(path string, clusters [][]int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("graphio: creating cluster file: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := WriteClustersTo(w, clusters); err != nil {
		f.Close()
		return fmt.Errorf("graphio: writing %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("graphio: flushing %s: %w", path, err)
	}

	return f.Close()
}

// WriteClustersTo encodes a clustering as a binary stream.
func WriteClustersTo(w io.Writer, clusters [][]int) error {
	if err := writeInt32(w, len(clusters)); err != nil {
		return fmt.Errorf("writing cluster count: %w", err)
	}
	for c, members := range clusters {
		if err := writeInt32(w, len(members)); err != nil {
			return fmt.Errorf("writing size of cluster %d: %w", c, err)
		}
		for _, v := range members {
			if err := writeInt32(w, v); err != nil {
				return fmt.Errorf("writing members of cluster %d: %w", c, err)
			}
		}
	}

	return nil
}

// ReadClustersFrom decodes a binary cluster stream, the inverse of
// WriteClustersTo.
func ReadClustersFrom(r io.Reader) ([][]int, error) {
	count, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("reading cluster count: %w", err)
	}
	if count < 0 {
		return nil, fmt.Errorf("cluster count must be non-negative, got %d", count)
	}

	clusters := make([][]int, count)
	for c := 0; c < count; c++ {
		size, err := readInt32(r)
		if err != nil {
			return nil, fmt.Errorf("reading size of cluster %d: %w", c, err)
		}
		if size < 0 {
			return nil, fmt.Errorf("cluster %d has negative size %d", c, size)
		}

		members := make([]int, size)
		for p := 0; p < size; p++ {
			v, err := readInt32(r)
			if err != nil {
				return nil, fmt.Errorf("reading members of cluster %d: %w", c, err)
			}
			members[p] = v
		}
		clusters[c] = members
	}

	return clusters, nil
}

func readInt32(r io.Reader) (int, error) {
	var v int32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, err
	}

	return int(v), nil
}

func writeInt32(w io.Writer, v int) error {
	return binary.Write(w, binary.LittleEndian, int32(v))
}
