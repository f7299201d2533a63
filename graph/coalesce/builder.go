package coalesce

import (
	"log"

	"github.com/sarchlab/sega/graph"
	"github.com/sarchlab/sega/graph/push"
	"github.com/sarchlab/sega/mem"
	"github.com/sarchlab/sega/sim"
)

// Builder can build cache engines.
type Builder struct {
	engine                 sim.Engine
	freq                   sim.Freq
	workload               graph.Workload
	cacheCapacity          int
	numWays                int
	numMSHR                int
	numTargetsPerMSHR      int
	rmwQueueSize           int
	activationQueueSize    int
	maxActivationsPerCycle int
	numRMWPerCycle         int
	memReqQueueSize        int
	portBufSize            int
	victimFinder           VictimFinder
	vertexMemory           sim.RemotePort
	storage                *mem.Storage
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:                   1 * sim.GHz,
		cacheCapacity:          256,
		numWays:                16,
		numMSHR:                32,
		numTargetsPerMSHR:      8,
		rmwQueueSize:           16,
		activationQueueSize:    16,
		maxActivationsPerCycle: 1,
		numRMWPerCycle:         1,
		memReqQueueSize:        8,
		portBufSize:            4,
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

// WithWorkload sets the operators applied to the vertices.
func (b Builder) WithWorkload(workload graph.Workload) Builder {
	b.workload = workload
	return b
}

// WithCacheCapacity sets the number of vertices that the cache can hold.
func (b Builder) WithCacheCapacity(n int) Builder {
	b.cacheCapacity = n
	return b
}

// WithNumWays sets the associativity. The capacity must be a multiple of it.
func (b Builder) WithNumWays(n int) Builder {
	b.numWays = n
	return b
}

// WithNumMSHR sets the number of misses that can be outstanding.
func (b Builder) WithNumMSHR(n int) Builder {
	b.numMSHR = n
	return b
}

// WithNumTargetsPerMSHR sets the number of updates that can wait on one miss.
func (b Builder) WithNumTargetsPerMSHR(n int) Builder {
	b.numTargetsPerMSHR = n
	return b
}

// WithRMWQueueSize sets the number of requests that can wait to be
// processed.
func (b Builder) WithRMWQueueSize(n int) Builder {
	b.rmwQueueSize = n
	return b
}

// WithActivationQueueSize sets the number of activations that can wait for
// the push engine.
func (b Builder) WithActivationQueueSize(n int) Builder {
	b.activationQueueSize = n
	return b
}

// WithMaxActivationsPerCycle sets the number of activations handed to the
// push engine per cycle.
func (b Builder) WithMaxActivationsPerCycle(n int) Builder {
	b.maxActivationsPerCycle = n
	return b
}

// WithNumRMWPerCycle sets the number of updates applied per cycle.
func (b Builder) WithNumRMWPerCycle(n int) Builder {
	b.numRMWPerCycle = n
	return b
}

// WithMemReqQueueSize sets the number of memory requests that can wait to
// be sent.
func (b Builder) WithMemReqQueueSize(n int) Builder {
	b.memReqQueueSize = n
	return b
}

// WithPortBufSize sets the buffer sizes of the memory port.
func (b Builder) WithPortBufSize(n int) Builder {
	b.portBufSize = n
	return b
}

// WithVictimFinder sets the replacement policy. LRU is used by default.
func (b Builder) WithVictimFinder(finder VictimFinder) Builder {
	b.victimFinder = finder
	return b
}

// WithVertexMemory sets the port of the vertex store.
func (b Builder) WithVertexMemory(port sim.RemotePort) Builder {
	b.vertexMemory = port
	return b
}

// WithStorage sets the vertex store used by functional accesses.
func (b Builder) WithStorage(storage *mem.Storage) Builder {
	b.storage = storage
	return b
}

// Build creates a cache engine.
func (b Builder) Build(name string) *Comp {
	b.parametersMustBeValid()

	c := &Comp{
		workload:               b.workload,
		tags:                   NewTagArray(b.cacheCapacity/b.numWays, b.numWays),
		victimFinder:           b.victimFinder,
		mshr:                   newMSHR(b.numMSHR, b.numTargetsPerMSHR),
		numRMWPerCycle:         b.numRMWPerCycle,
		maxActivationsPerCycle: b.maxActivationsPerCycle,
		vertexMemory:           b.vertexMemory,
		writeBacks:             make(map[string]*mem.WriteReq),
		lastWrite:              make(map[uint64]string),
		needsPush:              make(map[uint64]*push.Activation),
		storage:                b.storage,
	}

	if c.victimFinder == nil {
		c.victimFinder = NewLRUVictimFinder()
	}

	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	c.rmwQueue = sim.NewBuffer(name+".RMWQueue", b.rmwQueueSize)
	c.actQueue = sim.NewBuffer(name+".ActivationQueue", b.activationQueueSize)

	c.memPort = sim.NewPort(c, b.portBufSize, b.portBufSize, name+".MemPort")
	c.AddPort("Mem", c.memPort)
	c.memSender = sim.NewBufferedSender(c.memPort,
		sim.NewBuffer(name+".MemReqQueue", b.memReqQueueSize))

	return c
}

func (b Builder) parametersMustBeValid() {
	if b.numWays <= 0 || b.cacheCapacity < b.numWays ||
		b.cacheCapacity%b.numWays != 0 {
		log.Panicf("cache capacity %d is not a multiple of %d ways",
			b.cacheCapacity, b.numWays)
	}

	if b.numMSHR <= 0 || b.numTargetsPerMSHR <= 0 {
		log.Panic("the cache engine needs at least one miss tracker and target")
	}

	if b.activationQueueSize <= 0 {
		log.Panic("the activation queue must hold at least one activation")
	}

	if b.memReqQueueSize < 2 {
		log.Panic("the memory request queue must hold a write-back and a read")
	}
}
