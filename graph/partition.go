package graph

import (
	"errors"
	"fmt"
	"sort"
)

// ErrAddrNotMapped is returned when an address is not covered by any
// partition range.
var ErrAddrNotMapped = errors.New("address is not in any partition")

// A PartitionRange assigns the vertex addresses [Start, End) to a tile.
type PartitionRange struct {
	Start, End uint64
	Tile       int
}

// PartitionMap maps vertex address ranges to the tiles that own them. It is
// filled during setup and only read afterwards.
type PartitionMap struct {
	ranges []PartitionRange
	sorted bool
}

// NewPartitionMap creates an empty partition map.
func NewPartitionMap() *PartitionMap {
	return &PartitionMap{}
}

// NewUniformPartition splits numVertices vertices into numTiles contiguous
// ranges whose sizes differ by at most one vertex.
func NewUniformPartition(numVertices uint64, numTiles int) *PartitionMap {
	p := NewPartitionMap()
	if numTiles <= 0 {
		return p
	}

	base := numVertices / uint64(numTiles)
	extra := numVertices % uint64(numTiles)
	start := uint64(0)

	for tile := 0; tile < numTiles; tile++ {
		count := base
		if uint64(tile) < extra {
			count++
		}

		if count > 0 {
			p.AddRange(VertexAddr(start), VertexAddr(start+count), tile)
		}

		start += count
	}

	return p
}

// AddRange assigns [start, end) to the tile.
func (p *PartitionMap) AddRange(start, end uint64, tile int) {
	p.ranges = append(p.ranges, PartitionRange{Start: start, End: end, Tile: tile})
	p.sorted = false
}

// Ranges returns the ranges ordered by start address.
func (p *PartitionMap) Ranges() []PartitionRange {
	p.sort()

	ranges := make([]PartitionRange, len(p.ranges))
	copy(ranges, p.ranges)

	return ranges
}

func (p *PartitionMap) sort() {
	if p.sorted {
		return
	}

	sort.SliceStable(p.ranges, func(i, j int) bool {
		return p.ranges[i].Start < p.ranges[j].Start
	})
	p.sorted = true
}

// Validate checks that the ranges cover [0, vertexSpaceEnd) exactly once, are
// aligned to vertex records and that each of the numTiles tiles owns at least
// one range.
func (p *PartitionMap) Validate(vertexSpaceEnd uint64, numTiles int) error {
	p.sort()

	if len(p.ranges) == 0 {
		return errors.New("partition map is empty")
	}

	owned := make([]bool, numTiles)
	next := uint64(0)

	for _, r := range p.ranges {
		if r.Start >= r.End {
			return fmt.Errorf("range [0x%x, 0x%x) is empty", r.Start, r.End)
		}

		if r.Start%WorkListItemSize != 0 || r.End%WorkListItemSize != 0 {
			return fmt.Errorf("range [0x%x, 0x%x) is not aligned to %d bytes",
				r.Start, r.End, WorkListItemSize)
		}

		if r.Tile < 0 || r.Tile >= numTiles {
			return fmt.Errorf("range [0x%x, 0x%x) is assigned to tile %d, "+
				"but there are %d tiles", r.Start, r.End, r.Tile, numTiles)
		}

		switch {
		case r.Start < next:
			return fmt.Errorf("range [0x%x, 0x%x) overlaps with 0x%x",
				r.Start, r.End, next-1)
		case r.Start > next:
			return fmt.Errorf("addresses [0x%x, 0x%x) are not in any range",
				next, r.Start)
		}

		owned[r.Tile] = true
		next = r.End
	}

	if next != vertexSpaceEnd {
		return fmt.Errorf("ranges end at 0x%x, vertices end at 0x%x",
			next, vertexSpaceEnd)
	}

	for tile, ok := range owned {
		if !ok {
			return fmt.Errorf("tile %d owns no vertex", tile)
		}
	}

	return nil
}

// Find returns the tile that owns the address.
func (p *PartitionMap) Find(addr uint64) (int, error) {
	p.sort()

	i := sort.Search(len(p.ranges), func(i int) bool {
		return p.ranges[i].End > addr
	})

	if i == len(p.ranges) || p.ranges[i].Start > addr {
		return -1, fmt.Errorf("0x%x: %w", addr, ErrAddrNotMapped)
	}

	return p.ranges[i].Tile, nil
}

// MustFind is Find for addresses that a validated map must cover.
func (p *PartitionMap) MustFind(addr uint64) int {
	tile, err := p.Find(addr)
	if err != nil {
		panic(err)
	}

	return tile
}
