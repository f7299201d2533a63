// Package wlengine implements the work-list engine of a tile. The work-list
// engine collects the updates sent to the vertices of the tile, reduces the
// updates that target the same vertex, and flushes the reduced values to the
// cache engine.
package wlengine

import (
	"log"
	"reflect"

	"github.com/sarchlab/sega/graph"
	"github.com/sarchlab/sega/sim"
	"github.com/sarchlab/sega/tracing"
)

// A CacheEngine applies reduced values to vertices.
type CacheEngine interface {
	ReadModifyWrite(addr uint64, value uint32) bool
}

// Stats counts what the work-list engine has done.
type Stats struct {
	Admitted          uint64
	Rejected          uint64
	Received          uint64
	Merged            uint64
	Flushed           uint64
	StalledCycles     uint64
	PeakRegisterFile  int
	PeakIntakeEntries int
}

type entry struct {
	addr   uint64
	value  uint32
	taskID string
}

// Comp is a work-list engine.
type Comp struct {
	*sim.TickingComponent

	workload          graph.Workload
	cache             CacheEngine
	numReducePerCycle int
	numFlushPerCycle  int
	registerFileSize  int

	updatePort   sim.Port
	intake       sim.Buffer
	registerFile map[uint64]*entry
	flushOrder   []uint64

	stats Stats
}

// GetUpdatePort returns the port that receives updates from other tiles.
func (c *Comp) GetUpdatePort() sim.Port {
	return c.updatePort
}

// SetCacheEngine sets where the reduced values are flushed to.
func (c *Comp) SetCacheEngine(cache CacheEngine) {
	c.cache = cache
}

// Stats returns the statistics collected so far.
func (c *Comp) Stats() Stats {
	return c.stats
}

// NumEntries returns the number of vertices in the register file.
func (c *Comp) NumEntries() int {
	return len(c.registerFile)
}

// Submit puts an update in the intake queue. It returns false if the queue
// is full.
func (c *Comp) Submit(update graph.Update) bool {
	if !c.intake.CanPush() {
		c.stats.Rejected++
		return false
	}

	c.admit(update)
	c.TickLater()

	return true
}

func (c *Comp) admit(update graph.Update) {
	c.intake.Push(update)
	c.stats.Admitted++
	c.stats.PeakIntakeEntries = max(c.stats.PeakIntakeEntries, c.intake.Size())
}

// IsIdle returns true if no update waits in the engine.
func (c *Comp) IsIdle() bool {
	return c.intake.Size() == 0 &&
		len(c.registerFile) == 0 &&
		c.updatePort.NumIncoming() == 0
}

// Tick flushes reduced values, reduces the updates in the intake queue and
// moves the updates from other tiles into the intake queue.
func (c *Comp) Tick() bool {
	madeProgress := false

	madeProgress = c.flush() || madeProgress
	madeProgress = c.reduce() || madeProgress
	madeProgress = c.receive() || madeProgress

	if !madeProgress && len(c.registerFile) > 0 {
		c.stats.StalledCycles++
	}

	return madeProgress ||
		c.intake.Size() > 0 ||
		len(c.registerFile) > 0
}

func (c *Comp) receive() bool {
	madeProgress := false

	for c.intake.CanPush() {
		msg := c.updatePort.RetrieveIncoming()
		if msg == nil {
			break
		}

		updateMsg, ok := msg.(*graph.UpdateMsg)
		if !ok {
			log.Panicf("%s: cannot handle %s", c.Name(), reflect.TypeOf(msg))
		}

		c.admit(updateMsg.Update)
		c.stats.Received++
		madeProgress = true
	}

	return madeProgress
}

func (c *Comp) reduce() bool {
	madeProgress := false

	for i := 0; i < c.numReducePerCycle; i++ {
		item := c.intake.Peek()
		if item == nil {
			break
		}

		update := item.(graph.Update)

		if e, found := c.registerFile[update.Addr]; found {
			e.value = c.workload.Reduce(update.Value, e.value)
			c.stats.Merged++
			tracing.AddTaskStep(e.taskID, c, "merge")
		} else {
			if len(c.registerFile) >= c.registerFileSize {
				break
			}

			c.allocate(update)
		}

		c.intake.Pop()
		madeProgress = true
	}

	return madeProgress
}

func (c *Comp) allocate(update graph.Update) {
	e := &entry{
		addr:   update.Addr,
		value:  update.Value,
		taskID: sim.GetIDGenerator().Generate(),
	}

	c.registerFile[update.Addr] = e
	c.flushOrder = append(c.flushOrder, update.Addr)
	c.stats.PeakRegisterFile = max(c.stats.PeakRegisterFile,
		len(c.registerFile))

	tracing.StartTask(e.taskID, "", c, "update", "reduce", update.Addr)
}

func (c *Comp) flush() bool {
	madeProgress := false

	for i := 0; i < c.numFlushPerCycle && len(c.flushOrder) > 0; i++ {
		e := c.registerFile[c.flushOrder[0]]

		if !c.cache.ReadModifyWrite(e.addr, e.value) {
			break
		}

		c.stats.Flushed++
		c.free(e)
		madeProgress = true
	}

	return madeProgress
}

func (c *Comp) free(e *entry) {
	delete(c.registerFile, e.addr)
	c.flushOrder = c.flushOrder[1:]

	tracing.EndTask(e.taskID, c)
}
