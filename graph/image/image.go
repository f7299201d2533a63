// Package image builds, loads, and saves the memory images of a graph.
//
// A graph is stored as two images. The vertex image holds one work-list item
// per vertex, in vertex order. The edge image holds the edges grouped by
// their source vertex, so that the edges of a vertex start at its edge index
// and run for its degree.
package image

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sarchlab/sega/graph"
)

// The file names used by Load and Save.
const (
	VertexFile = "vertices"
	EdgeFile   = "edgelist"
)

// ErrMalformedImage is returned when an image is not a whole number of
// records or when its records point outside the images.
var ErrMalformedImage = errors.New("malformed graph image")

// An Image is the content of the vertex memory and of the edge memory.
type Image struct {
	NumVertices uint64
	Vertices    []byte
	Edges       []byte
}

// NumEdges returns the number of edge records in the edge image.
func (img *Image) NumEdges() uint64 {
	return uint64(len(img.Edges)) / graph.EdgeSize
}

// Vertex returns the record of a vertex.
func (img *Image) Vertex(id uint64) graph.WorkListItem {
	addr := graph.VertexAddr(id)
	return graph.DecodeWorkListItem(img.Vertices[addr : addr+graph.WorkListItemSize])
}

// Validate checks that both images hold whole records and that every vertex
// points to edges inside the edge image and every edge to a vertex inside the
// vertex image.
func (img *Image) Validate() error {
	if uint64(len(img.Vertices)) != graph.VertexAddr(img.NumVertices) {
		return fmt.Errorf("%w: %d bytes for %d vertices",
			ErrMalformedImage, len(img.Vertices), img.NumVertices)
	}

	if len(img.Edges)%graph.EdgeSize != 0 {
		return fmt.Errorf("%w: edge image of %d bytes",
			ErrMalformedImage, len(img.Edges))
	}

	numEdges := img.NumEdges()
	for i := uint64(0); i < img.NumVertices; i++ {
		item := img.Vertex(i)
		if uint64(item.EdgeIndex)+uint64(item.Degree) > numEdges {
			return fmt.Errorf("%w: edges of vertex %d end past edge %d",
				ErrMalformedImage, i, numEdges)
		}
	}

	end := graph.VertexAddr(img.NumVertices)
	for i, e := range graph.DecodeEdges(img.Edges) {
		if e.Neighbor >= end || e.Neighbor%graph.WorkListItemSize != 0 {
			return fmt.Errorf("%w: edge %d points to 0x%x",
				ErrMalformedImage, i, e.Neighbor)
		}
	}

	return nil
}

// Build lays out the vertices and the edges of a graph for a workload. Every
// vertex starts from the workload's initial record.
func Build(
	numVertices uint64,
	edges []InputEdge,
	workload graph.Workload,
) (*Image, error) {
	sorted := make([]InputEdge, len(edges))
	copy(sorted, edges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Src < sorted[j].Src
	})

	degrees := make([]uint32, numVertices)
	for _, e := range sorted {
		if e.Src >= numVertices || e.Dst >= numVertices {
			return nil, fmt.Errorf("edge %d -> %d: vertex out of range [0, %d)",
				e.Src, e.Dst, numVertices)
		}

		degrees[e.Src]++
	}

	img := &Image{
		NumVertices: numVertices,
		Vertices:    make([]byte, 0, graph.VertexAddr(numVertices)),
		Edges:       make([]byte, 0, len(sorted)*graph.EdgeSize),
	}

	edgeIndex := uint32(0)
	for _, degree := range degrees {
		item := workload.InitialItem(degree, edgeIndex)
		img.Vertices = append(img.Vertices, item.Bytes()...)
		edgeIndex += degree
	}

	for _, e := range sorted {
		rec := graph.Edge{Weight: e.Weight, Neighbor: graph.VertexAddr(e.Dst)}
		img.Edges = append(img.Edges, rec.Bytes()...)
	}

	return img, nil
}

// Load reads the images saved in a directory.
func Load(dir string) (*Image, error) {
	vertices, err := os.ReadFile(filepath.Join(dir, VertexFile))
	if err != nil {
		return nil, fmt.Errorf("loading vertex image: %w", err)
	}

	edges, err := os.ReadFile(filepath.Join(dir, EdgeFile))
	if err != nil {
		return nil, fmt.Errorf("loading edge image: %w", err)
	}

	if len(vertices)%graph.WorkListItemSize != 0 {
		return nil, fmt.Errorf("%w: vertex image of %d bytes",
			ErrMalformedImage, len(vertices))
	}

	img := &Image{
		NumVertices: uint64(len(vertices)) / graph.WorkListItemSize,
		Vertices:    vertices,
		Edges:       edges,
	}

	if err := img.Validate(); err != nil {
		return nil, err
	}

	return img, nil
}

// Save writes the images into a directory, creating it if needed.
func (img *Image) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	err := os.WriteFile(filepath.Join(dir, VertexFile), img.Vertices, 0o644)
	if err != nil {
		return fmt.Errorf("saving vertex image: %w", err)
	}

	err = os.WriteFile(filepath.Join(dir, EdgeFile), img.Edges, 0o644)
	if err != nil {
		return fmt.Errorf("saving edge image: %w", err)
	}

	return nil
}
