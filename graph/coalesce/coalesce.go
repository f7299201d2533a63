// Package coalesce implements the cache engine of a tile. The cache engine
// keeps recently updated vertices, applies updates to them, coalesces the
// updates that miss on the same vertex, and hands the vertices whose values
// changed to the push engine.
package coalesce

import (
	"log"
	"reflect"

	"github.com/sarchlab/sega/graph"
	"github.com/sarchlab/sega/graph/push"
	"github.com/sarchlab/sega/mem"
	"github.com/sarchlab/sega/sim"
	"github.com/sarchlab/sega/tracing"
)

// An ActivationSink accepts the vertices activated by the cache engine.
type ActivationSink interface {
	EnqueueActivation(act push.Activation) bool
}

// Stats counts what the cache engine has done.
type Stats struct {
	Accepted      uint64
	Rejected      uint64
	Hits          uint64
	Misses        uint64
	Coalesced     uint64
	Applied       uint64
	Evictions     uint64
	WriteBacks    uint64
	Activations   uint64
	Deferred      uint64
	StalledCycles uint64
	PeakTrackers  int
}

// Comp is a cache engine.
type Comp struct {
	*sim.TickingComponent

	workload     graph.Workload
	tags         *TagArray
	victimFinder VictimFinder
	mshr         *mshr

	numRMWPerCycle         int
	maxActivationsPerCycle int

	rmwQueue     sim.Buffer
	actQueue     sim.Buffer
	memPort      sim.Port
	memSender    sim.BufferedSender
	vertexMemory sim.RemotePort
	writeBacks   map[string]*mem.WriteReq
	lastWrite    map[uint64]string
	storage      *mem.Storage

	// Activations that did not fit into actQueue, at most one per vertex,
	// in activation order.
	needsPush map[uint64]*push.Activation
	pushOrder []uint64
	pushEngine   ActivationSink

	stats Stats
}

// GetMemPort returns the port that accesses the vertex store.
func (c *Comp) GetMemPort() sim.Port {
	return c.memPort
}

// SetPushEngine sets where the activated vertices go.
func (c *Comp) SetPushEngine(sink ActivationSink) {
	c.pushEngine = sink
}

// Stats returns the statistics collected so far.
func (c *Comp) Stats() Stats {
	s := c.stats
	s.PeakTrackers = c.mshr.peak

	return s
}

// NumTrackers returns the number of miss trackers in use.
func (c *Comp) NumTrackers() int {
	return c.mshr.size()
}

// ReadModifyWrite asks the cache engine to apply value to the vertex at addr.
// It returns false if the request queue is full.
func (c *Comp) ReadModifyWrite(addr uint64, value uint32) bool {
	if !c.rmwQueue.CanPush() {
		c.stats.Rejected++
		return false
	}

	req := rmwReq{
		addr:   addr,
		value:  value,
		taskID: sim.GetIDGenerator().Generate(),
	}
	c.rmwQueue.Push(req)
	c.stats.Accepted++

	tracing.StartTask(req.taskID, "", c, "rmw", "read_modify_write", addr)

	c.TickLater()

	return true
}

// IsIdle returns true if no request, miss, activation or write-back is left.
func (c *Comp) IsIdle() bool {
	return c.rmwQueue.Size() == 0 &&
		c.mshr.size() == 0 &&
		c.actQueue.Size() == 0 &&
		len(c.needsPush) == 0 &&
		c.memSender.Size() == 0 &&
		len(c.writeBacks) == 0 &&
		c.memPort.NumIncoming() == 0 &&
		c.memPort.NumOutgoing() == 0
}

// ReadVertex returns the current record of a vertex without timing.
func (c *Comp) ReadVertex(addr uint64) (graph.WorkListItem, error) {
	if line := c.tags.Lookup(addr); line != nil {
		return line.Item, nil
	}

	if id, ok := c.lastWrite[addr]; ok {
		return graph.DecodeWorkListItem(c.writeBacks[id].Data), nil
	}

	data, err := c.storage.Read(addr, graph.WorkListItemSize)
	if err != nil {
		return graph.WorkListItem{}, err
	}

	return graph.DecodeWorkListItem(data), nil
}

// FunctionalFlush writes all the dirty lines into the vertex store without
// timing.
func (c *Comp) FunctionalFlush() error {
	var err error

	c.tags.ForEach(func(line *Line) {
		if err != nil || line.State != LineDirty {
			return
		}

		err = c.storage.Write(line.Addr, line.Item.Bytes())
		if err == nil {
			line.State = LineClean
		}
	})

	return err
}

// Tick updates the state of the cache engine.
func (c *Comp) Tick() bool {
	madeProgress := false

	madeProgress = c.sendActivations() || madeProgress
	madeProgress = c.memSender.Tick() || madeProgress
	madeProgress = c.handleMemRsp() || madeProgress

	budget := c.numRMWPerCycle
	madeProgress = c.replayTargets(&budget) || madeProgress
	madeProgress = c.processRMW(&budget) || madeProgress

	if !madeProgress && c.rmwQueue.Size() > 0 {
		c.stats.StalledCycles++
	}

	return madeProgress ||
		c.rmwQueue.Size() > 0 ||
		len(c.mshr.ready) > 0 ||
		c.actQueue.Size() > 0 ||
		len(c.needsPush) > 0 ||
		c.memSender.Size() > 0
}

// NumDeferred returns the number of vertices waiting for room in the
// activation queue.
func (c *Comp) NumDeferred() int {
	return len(c.needsPush)
}

func (c *Comp) sendActivations() bool {
	madeProgress := false

	for i := 0; i < c.maxActivationsPerCycle; i++ {
		item := c.actQueue.Peek()
		if item == nil {
			break
		}

		if !c.pushEngine.EnqueueActivation(item.(push.Activation)) {
			break
		}

		c.actQueue.Pop()
		c.stats.Activations++
		madeProgress = true
	}

	c.refillActivations()

	return madeProgress
}

func (c *Comp) refillActivations() {
	for len(c.pushOrder) > 0 && c.actQueue.CanPush() {
		addr := c.pushOrder[0]
		c.pushOrder = c.pushOrder[1:]

		c.actQueue.Push(*c.needsPush[addr])
		delete(c.needsPush, addr)
	}
}

func (c *Comp) handleMemRsp() bool {
	madeProgress := false

	for {
		msg := c.memPort.RetrieveIncoming()
		if msg == nil {
			return madeProgress
		}

		switch rsp := msg.(type) {
		case *mem.DataReadyRsp:
			e := c.mshr.markReady(rsp.RespondTo)
			e.line.Item = graph.DecodeWorkListItem(rsp.Data)
			tracing.TraceReqFinalize(e.readReq, c)
		case *mem.WriteDoneRsp:
			req, found := c.writeBacks[rsp.RespondTo]
			if !found {
				log.Panicf("%s: unknown write-back %s", c.Name(), rsp.RespondTo)
			}

			delete(c.writeBacks, rsp.RespondTo)
			if c.lastWrite[req.Address] == req.ID {
				delete(c.lastWrite, req.Address)
			}

			tracing.TraceReqFinalize(req, c)
		default:
			log.Panicf("%s: cannot handle %s", c.Name(), reflect.TypeOf(msg))
		}

		madeProgress = true
	}
}

func (c *Comp) replayTargets(budget *int) bool {
	madeProgress := false

	for *budget > 0 && len(c.mshr.ready) > 0 {
		e := c.mshr.ready[0]

		changed := c.apply(e.line, e.targets[0])

		tracing.EndTask(e.targets[0].taskID, c)

		e.dirty = e.dirty || changed
		e.targets = e.targets[1:]
		*budget--
		madeProgress = true

		if len(e.targets) == 0 {
			c.release(e)
		}
	}

	return madeProgress
}

func (c *Comp) release(e *mshrEntry) {
	if e.dirty {
		e.line.State = LineDirty
	} else {
		e.line.State = LineClean
	}

	c.tags.Visit(e.line)
	c.mshr.remove(e)
}

func (c *Comp) processRMW(budget *int) bool {
	madeProgress := false

	for *budget > 0 {
		item := c.rmwQueue.Peek()
		if item == nil {
			break
		}

		if !c.handleRMW(item.(rmwReq)) {
			break
		}

		c.rmwQueue.Pop()
		*budget--
		madeProgress = true
	}

	return madeProgress
}

func (c *Comp) handleRMW(req rmwReq) bool {
	if e := c.mshr.lookup(req.addr); e != nil {
		return c.coalesce(e, req)
	}

	if line := c.tags.Lookup(req.addr); line != nil {
		return c.hit(line, req)
	}

	return c.miss(req)
}

func (c *Comp) coalesce(e *mshrEntry, req rmwReq) bool {
	if !c.mshr.canAddTarget(e) {
		return false
	}

	e.targets = append(e.targets, req)
	c.stats.Coalesced++
	tracing.AddTaskStep(req.taskID, c, "coalesce")

	return true
}

func (c *Comp) hit(line *Line, req rmwReq) bool {
	if c.apply(line, req) {
		line.State = LineDirty
	}

	c.tags.Visit(line)
	c.stats.Hits++

	tracing.AddTaskStep(req.taskID, c, "hit")
	tracing.EndTask(req.taskID, c)

	return true
}

func (c *Comp) miss(req rmwReq) bool {
	if c.mshr.isFull() {
		return false
	}

	victim := c.victimFinder.FindVictim(c.tags.GetSet(req.addr))
	if victim == nil {
		return false
	}

	numReqs := 1
	if victim.State == LineDirty {
		numReqs = 2
	}

	if !c.memSender.CanSend(numReqs) {
		return false
	}

	c.evict(victim)

	read := mem.ReadReqBuilder{}.
		WithSrc(c.memPort.AsRemote()).
		WithDst(c.vertexMemory).
		WithAddress(req.addr).
		WithByteSize(graph.WorkListItemSize).
		Build()
	c.memSender.Send(read)
	tracing.TraceReqInitiate(read, c, req.taskID)

	victim.Addr = req.addr
	victim.State = LinePending
	victim.Item = graph.WorkListItem{}
	c.tags.Visit(victim)

	e := c.mshr.add(req.addr, victim, read)
	e.targets = append(e.targets, req)

	c.stats.Misses++
	tracing.AddTaskStep(req.taskID, c, "miss")

	return true
}

func (c *Comp) evict(victim *Line) {
	if victim.State == LineInvalid {
		return
	}

	c.stats.Evictions++

	if victim.State != LineDirty {
		return
	}

	write := mem.WriteReqBuilder{}.
		WithSrc(c.memPort.AsRemote()).
		WithDst(c.vertexMemory).
		WithAddress(victim.Addr).
		WithData(victim.Item.Bytes()).
		Build()
	c.memSender.Send(write)
	c.writeBacks[write.ID] = write
	c.lastWrite[victim.Addr] = write.ID
	c.stats.WriteBacks++

	tracing.TraceReqInitiate(write, c, "")
}

// apply merges the update into the line and reports if the record changed.
// An activation that does not fit into the activation queue marks the vertex
// as needing a push instead; a vertex marked twice keeps one activation
// carrying the reduced value.
func (c *Comp) apply(line *Line, req rmwReq) bool {
	item := line.Item

	activated, value := c.workload.Apply(&item, req.value)

	changed := item != line.Item
	line.Item = item
	c.stats.Applied++

	if !activated {
		return changed
	}

	act := push.Activation{
		Addr:      line.Addr,
		Value:     value,
		Degree:    item.Degree,
		EdgeIndex: item.EdgeIndex,
	}
	tracing.AddTaskStep(req.taskID, c, "activate")

	if len(c.pushOrder) == 0 && c.actQueue.CanPush() {
		c.actQueue.Push(act)
		return changed
	}

	if pending, found := c.needsPush[act.Addr]; found {
		pending.Value = c.workload.Reduce(act.Value, pending.Value)
		return changed
	}

	c.needsPush[act.Addr] = &act
	c.pushOrder = append(c.pushOrder, act.Addr)
	c.stats.Deferred++

	return changed
}
