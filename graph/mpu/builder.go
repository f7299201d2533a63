package mpu

import (
	"log"

	"github.com/sarchlab/sega/graph"
	"github.com/sarchlab/sega/graph/coalesce"
	"github.com/sarchlab/sega/graph/push"
	"github.com/sarchlab/sega/graph/wlengine"
	"github.com/sarchlab/sega/mem"
	"github.com/sarchlab/sega/mem/idealmemcontroller"
	"github.com/sarchlab/sega/sim"
	"github.com/sarchlab/sega/sim/directconnection"
)

// Builder can build tiles.
type Builder struct {
	engine    sim.Engine
	freq      sim.Freq
	workload  graph.Workload
	partition *graph.PartitionMap
	tileID    int

	intakeSize        int
	registerFileSize  int
	numReducePerCycle int
	numFlushPerCycle  int

	cacheCapacity          int
	numWays                int
	numMSHR                int
	numTargetsPerMSHR      int
	rmwQueueSize           int
	activationQueueSize    int
	maxActivationsPerCycle int
	numRMWPerCycle         int
	victimFinder           coalesce.VictimFinder

	pushActivationQueueSize int
	pushRespQueueSize       int
	numPushPerCycle         int

	vertexMemLatency int
	vertexMemWidth   int
	vertexAtomSize   uint64
	edgeMemLatency   int
	edgeMemWidth     int
	edgeAtomSize     uint64
	vertexStorage    *mem.Storage
	edgeStorage      *mem.Storage
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:                    1 * sim.GHz,
		intakeSize:              32,
		registerFileSize:        64,
		numReducePerCycle:       1,
		numFlushPerCycle:        1,
		cacheCapacity:           256,
		numWays:                 16,
		numMSHR:                 32,
		numTargetsPerMSHR:       8,
		rmwQueueSize:            16,
		activationQueueSize:     16,
		maxActivationsPerCycle:  1,
		numRMWPerCycle:          1,
		pushActivationQueueSize: 32,
		pushRespQueueSize:       32,
		numPushPerCycle:         1,
		vertexMemLatency:        30,
		vertexMemWidth:          1,
		vertexAtomSize:          64,
		edgeMemLatency:          30,
		edgeMemWidth:            1,
		edgeAtomSize:            64,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the engines and the memories.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithWorkload sets the algorithm to run.
func (b Builder) WithWorkload(workload graph.Workload) Builder {
	b.workload = workload
	return b
}

// WithPartition sets the map that routes updates to tiles.
func (b Builder) WithPartition(partition *graph.PartitionMap) Builder {
	b.partition = partition
	return b
}

// WithTileID sets the index of the tile in the partition map.
func (b Builder) WithTileID(id int) Builder {
	b.tileID = id
	return b
}

// WithIntakeSize sets the number of updates waiting to be reduced.
func (b Builder) WithIntakeSize(n int) Builder {
	b.intakeSize = n
	return b
}

// WithRegisterFileSize sets the number of vertices reduced at the same time.
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

// WithCacheCapacity sets the number of vertices the cache engine holds.
func (b Builder) WithCacheCapacity(n int) Builder {
	b.cacheCapacity = n
	return b
}

// WithNumWays sets the associativity of the cache engine.
func (b Builder) WithNumWays(n int) Builder {
	b.numWays = n
	return b
}

// WithNumMSHR sets the number of misses that can be outstanding.
func (b Builder) WithNumMSHR(n int) Builder {
	b.numMSHR = n
	return b
}

// WithNumTargetsPerMSHR sets the number of updates waiting on one miss.
func (b Builder) WithNumTargetsPerMSHR(n int) Builder {
	b.numTargetsPerMSHR = n
	return b
}

// WithRMWQueueSize sets the number of requests waiting in the cache engine.
func (b Builder) WithRMWQueueSize(n int) Builder {
	b.rmwQueueSize = n
	return b
}

// WithActivationQueueSize sets the number of activations the cache engine
// holds for the push engine. Activations beyond it wait as marked vertices.
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

// WithNumRMWPerCycle sets the number of updates the cache engine applies per
// cycle.
func (b Builder) WithNumRMWPerCycle(n int) Builder {
	b.numRMWPerCycle = n
	return b
}

// WithVictimFinder sets the replacement policy of the cache engine.
func (b Builder) WithVictimFinder(finder coalesce.VictimFinder) Builder {
	b.victimFinder = finder
	return b
}

// WithPushActivationQueueSize sets the number of activations waiting for
// their edges.
func (b Builder) WithPushActivationQueueSize(n int) Builder {
	b.pushActivationQueueSize = n
	return b
}

// WithPushRespQueueSize sets the number of edge reads outstanding or waiting
// to be pushed.
func (b Builder) WithPushRespQueueSize(n int) Builder {
	b.pushRespQueueSize = n
	return b
}

// WithNumPushPerCycle sets the number of updates emitted per cycle.
func (b Builder) WithNumPushPerCycle(n int) Builder {
	b.numPushPerCycle = n
	return b
}

// WithVertexMemLatency sets the latency of the vertex store in cycles.
func (b Builder) WithVertexMemLatency(latency int) Builder {
	b.vertexMemLatency = latency
	return b
}

// WithVertexMemWidth sets the number of requests the vertex store accepts
// per cycle.
func (b Builder) WithVertexMemWidth(width int) Builder {
	b.vertexMemWidth = width
	return b
}

// WithVertexAtomSize sets the largest access to the vertex store.
func (b Builder) WithVertexAtomSize(size uint64) Builder {
	b.vertexAtomSize = size
	return b
}

// WithEdgeMemLatency sets the latency of the edge store in cycles.
func (b Builder) WithEdgeMemLatency(latency int) Builder {
	b.edgeMemLatency = latency
	return b
}

// WithEdgeMemWidth sets the number of requests the edge store accepts per
// cycle.
func (b Builder) WithEdgeMemWidth(width int) Builder {
	b.edgeMemWidth = width
	return b
}

// WithEdgeAtomSize sets the size and alignment of the edge reads.
func (b Builder) WithEdgeAtomSize(size uint64) Builder {
	b.edgeAtomSize = size
	return b
}

// WithVertexStorage sets the backing store of the vertex memory.
func (b Builder) WithVertexStorage(storage *mem.Storage) Builder {
	b.vertexStorage = storage
	return b
}

// WithEdgeStorage sets the backing store of the edge memory.
func (b Builder) WithEdgeStorage(storage *mem.Storage) Builder {
	b.edgeStorage = storage
	return b
}

// Build creates a tile.
func (b Builder) Build(name string) *MPU {
	if b.engine == nil {
		log.Panicf("tile %s has no engine", name)
	}

	if b.partition == nil {
		log.Panicf("tile %s has no partition map", name)
	}

	if b.vertexAtomSize < graph.WorkListItemSize {
		log.Panicf("vertex atom size %d cannot hold a vertex", b.vertexAtomSize)
	}

	m := &MPU{name: name, tileID: b.tileID}

	b.buildMemories(m)
	b.buildEngines(m)
	b.connect(m)

	return m
}

func (b Builder) buildMemories(m *MPU) {
	vertexMem := idealmemcontroller.MakeBuilder().
		WithEngine(b.engine).
		WithFreq(b.freq).
		WithLatency(b.vertexMemLatency).
		WithWidth(b.vertexMemWidth).
		WithAtomSize(b.vertexAtomSize)
	if b.vertexStorage != nil {
		vertexMem = vertexMem.WithStorage(b.vertexStorage)
	}

	m.VertexMem = vertexMem.Build(m.name + ".VertexMem")

	edgeMem := idealmemcontroller.MakeBuilder().
		WithEngine(b.engine).
		WithFreq(b.freq).
		WithLatency(b.edgeMemLatency).
		WithWidth(b.edgeMemWidth).
		WithAtomSize(b.edgeAtomSize)
	if b.edgeStorage != nil {
		edgeMem = edgeMem.WithStorage(b.edgeStorage)
	}

	m.EdgeMem = edgeMem.Build(m.name + ".EdgeMem")
}

func (b Builder) buildEngines(m *MPU) {
	m.PushEngine = push.MakeBuilder().
		WithEngine(b.engine).
		WithFreq(b.freq).
		WithWorkload(b.workload).
		WithPartition(b.partition).
		WithTileID(b.tileID).
		WithAtomSize(b.edgeAtomSize).
		WithActivationQueueSize(b.pushActivationQueueSize).
		WithRespQueueSize(b.pushRespQueueSize).
		WithNumPushPerCycle(b.numPushPerCycle).
		WithEdgeMemory(m.EdgeMem.GetTopPort().AsRemote()).
		Build(m.name + ".PushEngine")

	m.CacheEngine = coalesce.MakeBuilder().
		WithEngine(b.engine).
		WithFreq(b.freq).
		WithWorkload(b.workload).
		WithCacheCapacity(b.cacheCapacity).
		WithNumWays(b.numWays).
		WithNumMSHR(b.numMSHR).
		WithNumTargetsPerMSHR(b.numTargetsPerMSHR).
		WithRMWQueueSize(b.rmwQueueSize).
		WithActivationQueueSize(b.activationQueueSize).
		WithMaxActivationsPerCycle(b.maxActivationsPerCycle).
		WithNumRMWPerCycle(b.numRMWPerCycle).
		WithVictimFinder(b.victimFinder).
		WithVertexMemory(m.VertexMem.GetTopPort().AsRemote()).
		WithStorage(m.VertexMem.Storage).
		Build(m.name + ".CacheEngine")

	m.WLEngine = wlengine.MakeBuilder().
		WithEngine(b.engine).
		WithFreq(b.freq).
		WithWorkload(b.workload).
		WithCacheEngine(m.CacheEngine).
		WithIntakeSize(b.intakeSize).
		WithRegisterFileSize(b.registerFileSize).
		WithNumReducePerCycle(b.numReducePerCycle).
		WithNumFlushPerCycle(b.numFlushPerCycle).
		Build(m.name + ".WLEngine")

	m.CacheEngine.SetPushEngine(m.PushEngine)
	m.PushEngine.SetLocalSink(m.WLEngine)
}

func (b Builder) connect(m *MPU) {
	m.vertexConn = directconnection.MakeBuilder().
		WithEngine(b.engine).
		WithFreq(b.freq).
		Build(m.name + ".VertexConn")
	m.vertexConn.PlugIn(m.CacheEngine.GetMemPort())
	m.vertexConn.PlugIn(m.VertexMem.GetTopPort())

	m.edgeConn = directconnection.MakeBuilder().
		WithEngine(b.engine).
		WithFreq(b.freq).
		Build(m.name + ".EdgeConn")
	m.edgeConn.PlugIn(m.PushEngine.GetMemPort())
	m.edgeConn.PlugIn(m.EdgeMem.GetTopPort())
}
