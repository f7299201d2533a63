package graph

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Algorithm selects the operators of a workload.
type Algorithm int

// The supported algorithms.
const (
	AlgorithmUnspecified Algorithm = iota
	BFS
	SSSP
	PageRank
)

func (a Algorithm) String() string {
	switch a {
	case BFS:
		return "bfs"
	case SSSP:
		return "sssp"
	case PageRank:
		return "pr"
	default:
		return "unspecified"
	}
}

// ParseAlgorithm converts the name of an algorithm to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(name) {
	case "bfs":
		return BFS, nil
	case "sssp":
		return SSSP, nil
	case "pr", "pagerank":
		return PageRank, nil
	}

	return AlgorithmUnspecified, fmt.Errorf("unknown algorithm %q", name)
}

// ErrNoReduceOperator is returned when a workload does not select any of the
// known algorithms.
var ErrNoReduceOperator = errors.New("reduce operator unspecified")

// A Workload bundles the operators that the engines apply to updates.
//
// BFS and SSSP keep the smallest distance seen by a vertex. PageRank
// accumulates residuals in TempProp and folds them into Prop once they reach
// Threshold. PageRank values are float32 bit patterns.
type Workload struct {
	Algorithm Algorithm
	Alpha     float32
	Threshold float32
}

// NewBFS creates a breadth-first search workload.
func NewBFS() Workload {
	return Workload{Algorithm: BFS}
}

// NewSSSP creates a single-source shortest path workload.
func NewSSSP() Workload {
	return Workload{Algorithm: SSSP}
}

// NewPageRank creates an asynchronous PageRank workload.
func NewPageRank(alpha, threshold float32) Workload {
	return Workload{Algorithm: PageRank, Alpha: alpha, Threshold: threshold}
}

// Validate checks if the workload can be used.
func (w Workload) Validate() error {
	switch w.Algorithm {
	case BFS, SSSP:
		return nil
	case PageRank:
		if !(w.Alpha > 0 && w.Alpha <= 1) {
			return fmt.Errorf("pagerank alpha %v is not in (0, 1]", w.Alpha)
		}

		if !(w.Threshold >= 0) {
			return fmt.Errorf("pagerank threshold %v is negative", w.Threshold)
		}

		return nil
	}

	return fmt.Errorf("algorithm %d: %w", int(w.Algorithm), ErrNoReduceOperator)
}

// Reduce combines an update with the value already collected for the same
// vertex.
func (w Workload) Reduce(update, value uint32) uint32 {
	if w.Algorithm == PageRank {
		return math.Float32bits(
			math.Float32frombits(update) + math.Float32frombits(value))
	}

	return min(update, value)
}

// Apply merges an update into a vertex record. It returns true together with
// the value to propagate if the vertex is activated.
func (w Workload) Apply(item *WorkListItem, update uint32) (bool, uint32) {
	if w.Algorithm == PageRank {
		return w.applyPageRank(item, update)
	}

	if update >= item.Prop {
		return false, 0
	}

	item.Prop = update
	item.TempProp = update

	return true, update
}

func (w Workload) applyPageRank(item *WorkListItem, update uint32) (bool, uint32) {
	residual := math.Float32frombits(item.TempProp) +
		math.Float32frombits(update)

	if residual <= 0 || residual < w.Threshold {
		item.TempProp = math.Float32bits(residual)
		return false, 0
	}

	item.Prop = math.Float32bits(math.Float32frombits(item.Prop) + residual)
	item.TempProp = 0

	return true, math.Float32bits(residual)
}

// Propagate calculates the value that an activated vertex sends along one of
// its edges.
func (w Workload) Propagate(value uint32, weight uint64, degree uint32) uint32 {
	switch w.Algorithm {
	case BFS:
		return saturatingAdd(value, 1)
	case SSSP:
		return saturatingAdd(value, weight)
	case PageRank:
		if degree == 0 {
			return 0
		}

		return math.Float32bits(
			w.Alpha * math.Float32frombits(value) / float32(degree))
	}

	return value
}

func saturatingAdd(value uint32, delta uint64) uint32 {
	sum := uint64(value) + delta
	if value == math.MaxUint32 || sum > math.MaxUint32 {
		return math.MaxUint32
	}

	return uint32(sum)
}

// ShouldForward returns false for values that are too small to be worth
// propagating.
func (w Workload) ShouldForward(value uint32) bool {
	if w.Algorithm != PageRank {
		return true
	}

	f := math.Float32frombits(value)

	return f > 0 && f >= w.Threshold
}

// InitialItem returns the record of a vertex that has not been reached yet.
func (w Workload) InitialItem(degree, edgeIndex uint32) WorkListItem {
	item := WorkListItem{Degree: degree, EdgeIndex: edgeIndex}

	if w.Algorithm != PageRank {
		item.TempProp = math.MaxUint32
		item.Prop = math.MaxUint32
	}

	return item
}

// SeedValue returns the value that the run starts from at a seed vertex.
func (w Workload) SeedValue() uint32 {
	if w.Algorithm == PageRank {
		return math.Float32bits(1 - w.Alpha)
	}

	return 0
}

// FormatValue prints a vertex value in the unit of the algorithm.
func (w Workload) FormatValue(value uint32) string {
	if w.Algorithm == PageRank {
		return strconv.FormatFloat(
			float64(math.Float32frombits(value)), 'g', -1, 32)
	}

	if value == math.MaxUint32 {
		return "inf"
	}

	return strconv.FormatUint(uint64(value), 10)
}
