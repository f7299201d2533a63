package controller

import (
	"log"

	"github.com/sarchlab/sega/graph"
	"github.com/sarchlab/sega/sim"
)

// Builder can build controllers.
type Builder struct {
	engine    sim.Engine
	freq      sim.Freq
	tiles     []Tile
	partition *graph.PartitionMap
	maxCycles uint64
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq: 1 * sim.GHz,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets how often the tiles are checked.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithTiles sets the tiles, in the order of their IDs.
func (b Builder) WithTiles(tiles []Tile) Builder {
	b.tiles = tiles
	return b
}

// WithPartition sets the map that finds the owner of a seed.
func (b Builder) WithPartition(partition *graph.PartitionMap) Builder {
	b.partition = partition
	return b
}

// WithMaxCycles stops the run after the number of cycles. Zero means no
// limit.
func (b Builder) WithMaxCycles(n uint64) Builder {
	b.maxCycles = n
	return b
}

// Build creates a controller.
func (b Builder) Build(name string) *Comp {
	if len(b.tiles) == 0 {
		log.Panicf("controller %s has no tile", name)
	}

	if b.partition == nil {
		log.Panicf("controller %s has no partition map", name)
	}

	c := &Comp{
		tiles:     b.tiles,
		partition: b.partition,
		maxCycles: b.maxCycles,
	}

	c.ComponentBase = sim.NewComponentBase(name)
	c.TickScheduler = sim.NewTickScheduler(c, b.engine, b.freq)

	return c
}
