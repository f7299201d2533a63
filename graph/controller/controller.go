// Package controller provides the central controller that seeds a run and
// ends it once every tile is quiescent.
package controller

import (
	"errors"
	"fmt"
	"log"
	"reflect"

	"github.com/sarchlab/sega/graph"
	"github.com/sarchlab/sega/sim"
)

// The causes of an exit.
const (
	CauseQuiescent  = "all tiles quiescent"
	CauseCycleLimit = "cycle limit reached"
)

// ErrCycleLimit is returned by the controller's event handler when the run
// is stopped by the cycle limit. It makes the engine stop running.
var ErrCycleLimit = errors.New(CauseCycleLimit)

// ErrTileBusy is returned when a seed cannot be injected because the owner
// tile cannot take more updates.
var ErrTileBusy = errors.New("tile cannot take more updates")

// A Tile is what the controller coordinates.
type Tile interface {
	Name() string
	InjectUpdate(update graph.Update) bool
	IsIdle() bool
	FunctionalFlush() error
}

// A Seed is an update that starts the run.
type Seed struct {
	Addr  uint64
	Value uint32
}

// ExitEvent tells why and when a run ended.
type ExitEvent struct {
	Cause string
	Time  sim.VTimeInSec
}

// An ExitHandler is notified when the run ends.
type ExitHandler interface {
	HandleExit(e ExitEvent)
}

// Comp is the central controller. It checks the tiles every cycle and ends
// the run after one full cycle in which all of them are idle.
type Comp struct {
	*sim.ComponentBase
	*sim.TickScheduler

	tiles        []Tile
	partition    *graph.PartitionMap
	exitHandlers []ExitHandler
	maxCycles    uint64

	cycles       uint64
	idleChecks   int
	numSeeds     int
	pendingSeeds []Seed
	exit         *ExitEvent
}

// Tiles returns the tiles coordinated by the controller.
func (c *Comp) Tiles() []Tile {
	return c.tiles
}

// AcceptExitHandler registers a handler to be notified when the run ends.
func (c *Comp) AcceptExitHandler(h ExitHandler) {
	c.exitHandlers = append(c.exitHandlers, h)
}

// Exit returns how the run ended, or nil if it has not ended.
func (c *Comp) Exit() *ExitEvent {
	return c.exit
}

// Cycles returns the number of cycles the controller has checked.
func (c *Comp) Cycles() uint64 {
	return c.cycles
}

// InjectSeed sends the first update of the run to the tile that owns addr.
func (c *Comp) InjectSeed(addr uint64, value uint32) error {
	tileID, err := c.partition.Find(addr)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	tile := c.tiles[tileID]
	if !tile.InjectUpdate(graph.Update{Addr: addr, Value: value, Src: addr}) {
		return fmt.Errorf("seed 0x%x to %s: %w", addr, tile.Name(), ErrTileBusy)
	}

	c.numSeeds++
	c.Start()

	return nil
}

// QueueSeeds keeps seeds to be injected as soon as their owner tiles can take
// them, in order. It fails without queuing anything if a seed is not mapped
// to any tile.
func (c *Comp) QueueSeeds(seeds ...Seed) error {
	for _, s := range seeds {
		if _, err := c.partition.Find(s.Addr); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	c.pendingSeeds = append(c.pendingSeeds, seeds...)
	c.Start()

	return nil
}

// NumSeeds returns the number of seeds injected so far.
func (c *Comp) NumSeeds() int {
	return c.numSeeds
}

// Start makes the controller check the tiles from the next cycle on.
func (c *Comp) Start() {
	if c.exit == nil {
		c.TickLater()
	}
}

// NotifyRecv is not used, the controller has no port.
func (c *Comp) NotifyRecv(_ sim.Port) {}

// NotifyPortFree is not used, the controller has no port.
func (c *Comp) NotifyPortFree(_ sim.Port) {}

// Handle checks the tiles on each tick event.
func (c *Comp) Handle(e sim.Event) error {
	if _, ok := e.(sim.TickEvent); !ok {
		log.Panicf("cannot handle event of %s", reflect.TypeOf(e))
	}

	if c.exit != nil {
		return nil
	}

	c.cycles++
	c.injectPendingSeeds()

	if len(c.pendingSeeds) == 0 && c.allIdle() {
		c.idleChecks++
	} else {
		c.idleChecks = 0
	}

	switch {
	case c.idleChecks >= 2:
		return c.terminate(CauseQuiescent)
	case c.maxCycles > 0 && c.cycles >= c.maxCycles:
		if err := c.terminate(CauseCycleLimit); err != nil {
			return err
		}

		return ErrCycleLimit
	}

	c.TickLater()

	return nil
}

func (c *Comp) injectPendingSeeds() {
	for len(c.pendingSeeds) > 0 {
		s := c.pendingSeeds[0]
		tile := c.tiles[c.partition.MustFind(s.Addr)]

		if !tile.InjectUpdate(graph.Update{Addr: s.Addr, Value: s.Value, Src: s.Addr}) {
			return
		}

		c.numSeeds++
		c.pendingSeeds = c.pendingSeeds[1:]
	}
}

func (c *Comp) allIdle() bool {
	for _, t := range c.tiles {
		if !t.IsIdle() {
			return false
		}
	}

	return true
}

func (c *Comp) terminate(cause string) error {
	for _, t := range c.tiles {
		if err := t.FunctionalFlush(); err != nil {
			return fmt.Errorf("flushing %s: %w", t.Name(), err)
		}
	}

	c.exit = &ExitEvent{Cause: cause, Time: c.CurrentTime()}

	for _, h := range c.exitHandlers {
		h.HandleExit(*c.exit)
	}

	return nil
}
