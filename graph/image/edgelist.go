package image

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
)

// An InputEdge is an edge as written in an edge list.
type InputEdge struct {
	Src, Dst uint64
	Weight   uint64
}

// ParseEdgeList reads one edge per line as "src dst [weight]". The weight is
// 1 if omitted. Empty lines and lines starting with # are skipped.
func ParseEdgeList(r io.Reader) ([]InputEdge, error) {
	var edges []InputEdge

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		e, err := parseEdge(strings.Fields(line))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		edges = append(edges, e)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return edges, nil
}

func parseEdge(fields []string) (InputEdge, error) {
	if len(fields) < 2 || len(fields) > 3 {
		return InputEdge{}, fmt.Errorf("want \"src dst [weight]\", got %d fields",
			len(fields))
	}

	nums := []uint64{0, 0, 1}
	for i, f := range fields {
		n, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return InputEdge{}, err
		}

		nums[i] = n
	}

	return InputEdge{Src: nums[0], Dst: nums[1], Weight: nums[2]}, nil
}

// NumVerticesOf returns one more than the largest vertex ID in the edges.
func NumVerticesOf(edges []InputEdge) uint64 {
	n := uint64(0)
	for _, e := range edges {
		n = max(n, e.Src+1, e.Dst+1)
	}

	return n
}

// RandomEdges generates a graph with uniformly chosen endpoints and weights
// in [1, maxWeight]. The same seed always gives the same graph.
func RandomEdges(
	numVertices, numEdges, maxWeight uint64,
	seed int64,
) []InputEdge {
	if numVertices == 0 {
		return nil
	}

	maxWeight = max(maxWeight, 1)

	rng := rand.New(rand.NewSource(seed))
	edges := make([]InputEdge, 0, numEdges)
	for i := uint64(0); i < numEdges; i++ {
		edges = append(edges, InputEdge{
			Src:    rng.Uint64() % numVertices,
			Dst:    rng.Uint64() % numVertices,
			Weight: rng.Uint64()%maxWeight + 1,
		})
	}

	return edges
}
