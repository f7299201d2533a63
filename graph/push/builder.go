package push

import (
	"github.com/sarchlab/sega/graph"
	"github.com/sarchlab/sega/sim"
)

// Builder can build push engines.
type Builder struct {
	engine              sim.Engine
	freq                sim.Freq
	workload            graph.Workload
	partition           *graph.PartitionMap
	tileID              int
	atomSize            uint64
	activationQueueSize int
	respQueueSize       int
	numPushPerCycle     int
	portBufSize         int
	edgeMemory          sim.RemotePort
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:                1 * sim.GHz,
		atomSize:            64,
		activationQueueSize: 32,
		respQueueSize:       32,
		numPushPerCycle:     1,
		portBufSize:         4,
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

// WithWorkload sets the operators used to compute the updates.
func (b Builder) WithWorkload(workload graph.Workload) Builder {
	b.workload = workload
	return b
}

// WithPartition sets the map used to route updates to tiles.
func (b Builder) WithPartition(partition *graph.PartitionMap) Builder {
	b.partition = partition
	return b
}

// WithTileID sets the ID of the tile that the engine belongs to.
func (b Builder) WithTileID(id int) Builder {
	b.tileID = id
	return b
}

// WithAtomSize sets the largest and alignment of the edge reads.
func (b Builder) WithAtomSize(atomSize uint64) Builder {
	b.atomSize = atomSize
	return b
}

// WithActivationQueueSize sets the number of activations that can wait for
// their edges to be read.
func (b Builder) WithActivationQueueSize(n int) Builder {
	b.activationQueueSize = n
	return b
}

// WithRespQueueSize sets the number of edge reads that can be outstanding or
// waiting to be pushed.
func (b Builder) WithRespQueueSize(n int) Builder {
	b.respQueueSize = n
	return b
}

// WithNumPushPerCycle sets the number of updates emitted per cycle.
func (b Builder) WithNumPushPerCycle(n int) Builder {
	b.numPushPerCycle = n
	return b
}

// WithPortBufSize sets the buffer sizes of the ports.
func (b Builder) WithPortBufSize(n int) Builder {
	b.portBufSize = n
	return b
}

// WithEdgeMemory sets the port of the edge store.
func (b Builder) WithEdgeMemory(port sim.RemotePort) Builder {
	b.edgeMemory = port
	return b
}

// Build creates a push engine.
func (b Builder) Build(name string) *Comp {
	c := &Comp{
		workload:        b.workload,
		partition:       b.partition,
		tileID:          b.tileID,
		atomSize:        b.atomSize,
		numPushPerCycle: b.numPushPerCycle,
		respQueueSize:   b.respQueueSize,
		edgeMemory:      b.edgeMemory,
		outstanding:     make(map[string]edgeRead),
	}

	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	c.activationQueue = sim.NewBuffer(name+".ActivationQueue",
		b.activationQueueSize)
	c.respQueue = sim.NewBuffer(name+".RespQueue", b.respQueueSize)

	c.reqPort = sim.NewPort(c, b.portBufSize, b.portBufSize, name+".ReqPort")
	c.AddPort("Req", c.reqPort)
	c.memPort = sim.NewPort(c, b.portBufSize, b.portBufSize, name+".MemPort")
	c.AddPort("Mem", c.memPort)

	return c
}
