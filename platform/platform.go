// Package platform assembles tiles, the interconnect, and the controller
// into a runnable accelerator.
package platform

import (
	"errors"
	"fmt"
	"log"

	"github.com/sarchlab/sega/graph"
	"github.com/sarchlab/sega/graph/controller"
	"github.com/sarchlab/sega/graph/mpu"
	"github.com/sarchlab/sega/monitoring"
	"github.com/sarchlab/sega/sim"
	"github.com/sarchlab/sega/sim/directconnection"
)

// A Seed is an update that starts the run.
type Seed = controller.Seed

// Result is what a run produces.
type Result struct {
	Cause     string
	Time      sim.VTimeInSec
	Cycles    uint64
	Vertices  []graph.WorkListItem
	TileStats []mpu.Stats
}

// Platform is a built accelerator.
type Platform struct {
	Engine       sim.Engine
	Tiles        []*mpu.MPU
	Interconnect *directconnection.Comp
	Controller   *controller.Comp

	workload    graph.Workload
	partition   *graph.PartitionMap
	numVertices uint64
	monitor     *monitoring.Monitor
	ran         bool
}

// Workload returns the algorithm the platform runs.
func (p *Platform) Workload() graph.Workload {
	return p.workload
}

// NumVertices returns the number of vertices of the graph.
func (p *Platform) NumVertices() uint64 {
	return p.numVertices
}

// SeedAll returns one seed per vertex, all with the same value.
func (p *Platform) SeedAll(value uint32) []Seed {
	seeds := make([]Seed, 0, p.numVertices)
	for i := uint64(0); i < p.numVertices; i++ {
		seeds = append(seeds, Seed{Addr: graph.VertexAddr(i), Value: value})
	}

	return seeds
}

// Run injects the seeds and runs until every tile is quiescent or the cycle
// limit is reached. A platform can only run once.
func (p *Platform) Run(seeds ...Seed) (*Result, error) {
	if p.ran {
		return nil, errors.New("platform has already run")
	}

	p.ran = true

	if err := p.injectSeeds(seeds); err != nil {
		return nil, err
	}

	p.Controller.Start()

	if p.monitor != nil {
		bar := p.monitor.CreateProgressBar("Updates Applied", 0)
		defer p.monitor.CompleteProgressBar(bar)

		p.Engine.AcceptHook(&progressHook{bar: bar, tiles: p.Tiles})
	}

	err := p.Engine.Run()
	if err != nil && !errors.Is(err, controller.ErrCycleLimit) {
		return nil, err
	}

	p.Engine.Finished()

	exit := p.Controller.Exit()
	if exit == nil {
		return nil, errors.New("simulation stopped before the controller ended it")
	}

	return p.collectResult(exit)
}

func (p *Platform) injectSeeds(seeds []Seed) error {
	for i, s := range seeds {
		err := p.Controller.InjectSeed(s.Addr, s.Value)
		if errors.Is(err, controller.ErrTileBusy) {
			return p.Controller.QueueSeeds(seeds[i:]...)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func (p *Platform) collectResult(exit *controller.ExitEvent) (*Result, error) {
	r := &Result{
		Cause:  exit.Cause,
		Time:   exit.Time,
		Cycles: p.Controller.Cycles(),
	}

	for i := uint64(0); i < p.numVertices; i++ {
		item, err := p.ReadVertex(graph.VertexAddr(i))
		if err != nil {
			return nil, err
		}

		r.Vertices = append(r.Vertices, item)
	}

	for _, t := range p.Tiles {
		r.TileStats = append(r.TileStats, t.Stats())
	}

	return r, nil
}

// ReadVertex returns the current record of a vertex from the tile that owns
// it.
func (p *Platform) ReadVertex(addr uint64) (graph.WorkListItem, error) {
	tileID, err := p.partition.Find(addr)
	if err != nil {
		return graph.WorkListItem{}, fmt.Errorf("reading vertex: %w", err)
	}

	return p.Tiles[tileID].ReadVertex(addr)
}

type exitLogger struct{}

func (exitLogger) HandleExit(e controller.ExitEvent) {
	log.Printf("simulation ended at %.10f s: %s\n", float64(e.Time), e.Cause)
}

// progressHook refreshes the progress bar once in a while, counting the
// updates that the cache engines have applied and those still waiting.
type progressHook struct {
	bar    *monitoring.ProgressBar
	tiles  []*mpu.MPU
	events uint64
}

func (h *progressHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosAfterEvent {
		return
	}

	h.events++
	if h.events%256 != 0 {
		return
	}

	var accepted, applied uint64
	for _, t := range h.tiles {
		s := t.CacheEngine.Stats()
		accepted += s.Accepted
		applied += s.Applied
	}

	inProgress := uint64(0)
	if accepted > applied {
		inProgress = accepted - applied
	}

	h.bar.Set(applied, inProgress)
}
