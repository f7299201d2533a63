package wlengine

import (
	"github.com/sarchlab/sega/graph"
	"github.com/sarchlab/sega/sim"
)

// Builder can build work-list engines.
type Builder struct {
	engine            sim.Engine
	freq              sim.Freq
	workload          graph.Workload
	cache             CacheEngine
	intakeSize        int
	registerFileSize  int
	numReducePerCycle int
	numFlushPerCycle  int
	portBufSize       int
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:              1 * sim.GHz,
		intakeSize:        32,
		registerFileSize:  64,
		numReducePerCycle: 1,
		numFlushPerCycle:  1,
		portBufSize:       4,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithWorkload sets the operators used to reduce updates.
func (b Builder) WithWorkload(workload graph.Workload) Builder {
	b.workload = workload
	return b
}

// WithCacheEngine sets where the reduced values are flushed to.
func (b Builder) WithCacheEngine(cache CacheEngine) Builder {
	b.cache = cache
	return b
}

// WithIntakeSize sets the number of updates that can wait to be reduced.
func (b Builder) WithIntakeSize(n int) Builder {
	b.intakeSize = n
	return b
}

// WithRegisterFileSize sets the number of vertices that can be reduced at
// the same time.
func (b Builder) WithRegisterFileSize(n int) Builder {
	b.registerFileSize = n
	return b
}

// WithNumReducePerCycle sets the number of updates reduced per cycle.
func (b Builder) WithNumReducePerCycle(n int) Builder {
	b.numReducePerCycle = n
	return b
}

// WithNumFlushPerCycle sets the number of reduced values flushed per cycle.
func (b Builder) WithNumFlushPerCycle(n int) Builder {
	b.numFlushPerCycle = n
	return b
}

// WithPortBufSize sets the buffer sizes of the update port.
func (b Builder) WithPortBufSize(n int) Builder {
	b.portBufSize = n
	return b
}

// Build creates a work-list engine.
func (b Builder) Build(name string) *Comp {
	c := &Comp{
		workload:          b.workload,
		cache:             b.cache,
		numReducePerCycle: b.numReducePerCycle,
		numFlushPerCycle:  b.numFlushPerCycle,
		registerFileSize:  b.registerFileSize,
		registerFile:      make(map[uint64]*entry),
	}

	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)
	c.intake = sim.NewBuffer(name+".Intake", b.intakeSize)

	c.updatePort = sim.NewPort(c, b.portBufSize, b.portBufSize,
		name+".UpdatePort")
	c.AddPort("Update", c.updatePort)

	return c
}
