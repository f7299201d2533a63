package idealmemcontroller

import (
	"github.com/sarchlab/sega/mem"
	"github.com/sarchlab/sega/sim"
)

// Builder can build ideal memory controllers.
type Builder struct {
	engine     sim.Engine
	freq       sim.Freq
	width      int
	latency    int
	atomSize   uint64
	topBufSize int
	capacity   uint64
	storage    *mem.Storage
}

// MakeBuilder returns a Builder with a 1 GHz, 30-cycle, one-request-per-cycle
// controller of 64-byte atoms over 4 GiB.
func MakeBuilder() Builder {
	return Builder{
		freq:       1 * sim.GHz,
		width:      1,
		latency:    30,
		atomSize:   64,
		topBufSize: 16,
		capacity:   4 << 30,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the memory controller
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithWidth sets the number of requests accepted per cycle.
func (b Builder) WithWidth(width int) Builder {
	b.width = width
	return b
}

// WithLatency sets the cycles between accepting a request and responding.
func (b Builder) WithLatency(latency int) Builder {
	b.latency = latency
	return b
}

// WithAtomSize sets the largest access in bytes that a request may make.
func (b Builder) WithAtomSize(atomSize uint64) Builder {
	b.atomSize = atomSize
	return b
}

// WithTopBufSize sets the size of the buffers of the top port.
func (b Builder) WithTopBufSize(topBufSize int) Builder {
	b.topBufSize = topBufSize
	return b
}

// WithNewStorage makes the controller own a new storage of the capacity.
func (b Builder) WithNewStorage(capacity uint64) Builder {
	b.capacity = capacity
	return b
}

// WithStorage sets the storage that the controller reads and writes.
func (b Builder) WithStorage(storage *mem.Storage) Builder {
	b.storage = storage
	return b
}

// Build builds a new Comp
func (b Builder) Build(name string) *Comp {
	c := &Comp{
		Latency:  b.latency,
		width:    b.width,
		atomSize: b.atomSize,
		Storage:  b.storage,
	}

	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	if c.Storage == nil {
		c.Storage = mem.NewStorage(b.capacity)
	}

	c.topPort = sim.NewPort(c, b.topBufSize, b.topBufSize, name+".TopPort")
	c.AddPort("Top", c.topPort)

	return c
}
