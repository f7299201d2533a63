package platform

import (
	"errors"
	"fmt"

	"github.com/sarchlab/sega/graph"
	"github.com/sarchlab/sega/graph/controller"
	"github.com/sarchlab/sega/graph/image"
	"github.com/sarchlab/sega/graph/mpu"
	"github.com/sarchlab/sega/mem"
	"github.com/sarchlab/sega/monitoring"
	"github.com/sarchlab/sega/sim"
	"github.com/sarchlab/sega/sim/directconnection"
	"github.com/sarchlab/sega/tracing"
)

const storageUnit = 4096

// Builder can build platforms.
type Builder struct {
	engine      sim.Engine
	freq        sim.Freq
	numTiles    int
	workload    graph.Workload
	partition   *graph.PartitionMap
	img         *image.Image
	tileBuilder mpu.Builder
	maxCycles   uint64
	tracers     []tracing.Tracer
	monitor     *monitoring.Monitor
}

// MakeBuilder returns a Builder with a single tile and the default tile
// parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:        1 * sim.GHz,
		numTiles:    1,
		tileBuilder: mpu.MakeBuilder(),
	}
}

// WithEngine sets the engine. A serial engine is created if not set.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of all the components.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithNumTiles sets the number of tiles.
func (b Builder) WithNumTiles(n int) Builder {
	b.numTiles = n
	return b
}

// WithWorkload sets the algorithm to run.
func (b Builder) WithWorkload(workload graph.Workload) Builder {
	b.workload = workload
	return b
}

// WithPartition sets which tile owns which vertices. The vertices are split
// evenly if not set.
func (b Builder) WithPartition(partition *graph.PartitionMap) Builder {
	b.partition = partition
	return b
}

// WithImage sets the graph.
func (b Builder) WithImage(img *image.Image) Builder {
	b.img = img
	return b
}

// WithTileBuilder sets the builder used for the tiles. The engine, the
// frequency, the workload, the partition, and the memories are set by the
// platform.
func (b Builder) WithTileBuilder(tileBuilder mpu.Builder) Builder {
	b.tileBuilder = tileBuilder
	return b
}

// WithMaxCycles ends the run after the number of controller cycles. Zero
// means no limit.
func (b Builder) WithMaxCycles(n uint64) Builder {
	b.maxCycles = n
	return b
}

// WithTracer adds a tracer that collects the tasks of every tile component.
func (b Builder) WithTracer(tracer tracing.Tracer) Builder {
	b.tracers = append(b.tracers, tracer)
	return b
}

// WithMonitor registers the platform with a monitor.
func (b Builder) WithMonitor(monitor *monitoring.Monitor) Builder {
	b.monitor = monitor
	return b
}

// Build checks the configuration and creates a platform.
func (b Builder) Build() (*Platform, error) {
	if err := b.configMustBeValid(); err != nil {
		return nil, err
	}

	engine := b.engine
	if engine == nil {
		engine = sim.NewSerialEngine()
	}

	partition := b.partition
	if partition == nil {
		partition = graph.NewUniformPartition(b.img.NumVertices, b.numTiles)
	}

	err := partition.Validate(graph.VertexAddr(b.img.NumVertices), b.numTiles)
	if err != nil {
		return nil, fmt.Errorf("invalid partition: %w", err)
	}

	p := &Platform{
		Engine:      engine,
		workload:    b.workload,
		partition:   partition,
		numVertices: b.img.NumVertices,
		monitor:     b.monitor,
	}

	if err := b.buildTiles(p); err != nil {
		return nil, err
	}

	b.buildInterconnect(p)
	b.buildController(p)
	b.attachTracers(p)
	b.registerWithMonitor(p)

	return p, nil
}

func (b Builder) configMustBeValid() error {
	if b.numTiles <= 0 {
		return fmt.Errorf("number of tiles must be positive, got %d", b.numTiles)
	}

	if err := b.workload.Validate(); err != nil {
		return fmt.Errorf("invalid workload: %w", err)
	}

	if b.img == nil {
		return errors.New("no graph image")
	}

	if b.img.NumVertices == 0 {
		return errors.New("graph has no vertex")
	}

	if err := b.img.Validate(); err != nil {
		return err
	}

	return nil
}

func storageSize(n int) uint64 {
	size := uint64(n+storageUnit-1) / storageUnit * storageUnit
	return max(size, storageUnit)
}

func (b Builder) buildTiles(p *Platform) error {
	for i := 0; i < b.numTiles; i++ {
		vertexStorage := mem.NewStorage(storageSize(len(b.img.Vertices)))
		if err := vertexStorage.Write(0, b.img.Vertices); err != nil {
			return fmt.Errorf("loading vertex image: %w", err)
		}

		edgeStorage := mem.NewStorage(storageSize(len(b.img.Edges)))
		if err := edgeStorage.Write(0, b.img.Edges); err != nil {
			return fmt.Errorf("loading edge image: %w", err)
		}

		tile := b.tileBuilder.
			WithEngine(p.Engine).
			WithFreq(b.freq).
			WithWorkload(b.workload).
			WithPartition(p.partition).
			WithTileID(i).
			WithVertexStorage(vertexStorage).
			WithEdgeStorage(edgeStorage).
			Build(sim.BuildNameWithIndex("", "Tile", i))

		p.Tiles = append(p.Tiles, tile)
	}

	return nil
}

func (b Builder) buildInterconnect(p *Platform) {
	p.Interconnect = directconnection.MakeBuilder().
		WithEngine(p.Engine).
		WithFreq(b.freq).
		Build("Interconnect")

	respPorts := make([]sim.RemotePort, 0, len(p.Tiles))
	for _, t := range p.Tiles {
		p.Interconnect.PlugIn(t.GetReqPort())
		p.Interconnect.PlugIn(t.GetRespPort())
		respPorts = append(respPorts, t.GetRespPort().AsRemote())
	}

	for _, t := range p.Tiles {
		t.SetRemotePorts(respPorts)
	}
}

func (b Builder) buildController(p *Platform) {
	tiles := make([]controller.Tile, 0, len(p.Tiles))
	for _, t := range p.Tiles {
		tiles = append(tiles, t)
	}

	p.Controller = controller.MakeBuilder().
		WithEngine(p.Engine).
		WithFreq(b.freq).
		WithTiles(tiles).
		WithPartition(p.partition).
		WithMaxCycles(b.maxCycles).
		Build("Controller")

	p.Controller.AcceptExitHandler(exitLogger{})
}

func (b Builder) attachTracers(p *Platform) {
	for _, tracer := range b.tracers {
		for _, t := range p.Tiles {
			for _, c := range t.Components() {
				tracing.CollectTrace(c, tracer)
			}
		}
	}
}

func (b Builder) registerWithMonitor(p *Platform) {
	if b.monitor == nil {
		return
	}

	b.monitor.RegisterEngine(p.Engine)

	for _, t := range p.Tiles {
		b.monitor.RegisterTile(t)

		for _, c := range t.Components() {
			b.monitor.RegisterComponent(c)
		}
	}

	b.monitor.RegisterComponent(p.Interconnect)
	b.monitor.RegisterComponent(p.Controller)
}
