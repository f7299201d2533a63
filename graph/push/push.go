// Package push implements the push engine of a tile. The push engine reads
// the edges of activated vertices from the edge store and turns every edge
// into an update for the neighbor.
package push

import (
	"log"
	"reflect"

	"github.com/sarchlab/sega/graph"
	"github.com/sarchlab/sega/mem"
	"github.com/sarchlab/sega/sim"
	"github.com/sarchlab/sega/tracing"
)

// An Activation is a vertex whose value has changed and whose neighbors need
// to be updated.
type Activation struct {
	Addr      uint64
	Value     uint32
	Degree    uint32
	EdgeIndex uint32
}

// An UpdateSink accepts updates for the vertices of the local tile.
type UpdateSink interface {
	Submit(update graph.Update) bool
}

// Stats counts what the push engine has done.
type Stats struct {
	Activations   uint64
	Rejected      uint64
	EdgeReads     uint64
	LocalUpdates  uint64
	RemoteUpdates uint64
	Suppressed    uint64
	StalledCycles uint64
}

type activationTask struct {
	act      Activation
	nextAddr uint64
	endAddr  uint64
}

type edgeRead struct {
	act Activation
	req *mem.ReadReq
}

type edgeBatch struct {
	act   Activation
	edges []graph.Edge
	next  int
}

// Comp is a push engine.
type Comp struct {
	*sim.TickingComponent

	workload  graph.Workload
	partition *graph.PartitionMap
	tileID    int
	atomSize  uint64

	numPushPerCycle int
	respQueueSize   int

	reqPort     sim.Port
	memPort     sim.Port
	edgeMemory  sim.RemotePort
	remotePorts []sim.RemotePort
	localSink   UpdateSink

	activationQueue sim.Buffer
	outstanding     map[string]edgeRead
	respQueue       sim.Buffer

	stats Stats
}

// GetReqPort returns the port that sends updates to other tiles.
func (c *Comp) GetReqPort() sim.Port {
	return c.reqPort
}

// GetMemPort returns the port that reads the edge store.
func (c *Comp) GetMemPort() sim.Port {
	return c.memPort
}

// SetLocalSink sets where the updates for the local tile go.
func (c *Comp) SetLocalSink(sink UpdateSink) {
	c.localSink = sink
}

// SetRemotePorts sets the ports that receive updates for each tile, indexed
// by tile ID.
func (c *Comp) SetRemotePorts(ports []sim.RemotePort) {
	c.remotePorts = ports
}

// Stats returns the statistics collected so far.
func (c *Comp) Stats() Stats {
	return c.stats
}

// EnqueueActivation accepts an activated vertex. It returns false if the
// activation queue is full.
func (c *Comp) EnqueueActivation(act Activation) bool {
	if act.Degree == 0 {
		c.stats.Activations++
		return true
	}

	if !c.activationQueue.CanPush() {
		c.stats.Rejected++
		return false
	}

	c.activationQueue.Push(&activationTask{
		act:      act,
		nextAddr: uint64(act.EdgeIndex) * graph.EdgeSize,
		endAddr:  uint64(act.EdgeIndex+act.Degree) * graph.EdgeSize,
	})
	c.stats.Activations++
	c.TickLater()

	return true
}

// IsIdle returns true if there is no activation or edge list left to process.
func (c *Comp) IsIdle() bool {
	return c.activationQueue.Size() == 0 &&
		len(c.outstanding) == 0 &&
		c.respQueue.Size() == 0 &&
		c.reqPort.NumOutgoing() == 0 &&
		c.memPort.NumOutgoing() == 0 &&
		c.memPort.NumIncoming() == 0
}

// NumOutstanding returns the number of edge reads waiting for memory.
func (c *Comp) NumOutstanding() int {
	return len(c.outstanding)
}

// Tick pushes updates, collects edge lists and issues edge reads.
func (c *Comp) Tick() bool {
	madeProgress := false

	madeProgress = c.pushUpdates() || madeProgress
	madeProgress = c.receiveEdges() || madeProgress
	madeProgress = c.issueRead() || madeProgress

	if !madeProgress && c.respQueue.Size() > 0 {
		c.stats.StalledCycles++
	}

	return madeProgress ||
		c.activationQueue.Size() > 0 ||
		c.respQueue.Size() > 0
}

func (c *Comp) issueRead() bool {
	if len(c.outstanding)+c.respQueue.Size() >= c.respQueueSize {
		return false
	}

	item := c.activationQueue.Peek()
	if item == nil {
		return false
	}

	task := item.(*activationTask)
	addr := task.nextAddr
	end := min(addr-addr%c.atomSize+c.atomSize, task.endAddr)

	req := mem.ReadReqBuilder{}.
		WithSrc(c.memPort.AsRemote()).
		WithDst(c.edgeMemory).
		WithAddress(addr).
		WithByteSize(end - addr).
		Build()

	if err := c.memPort.Send(req); err != nil {
		return false
	}

	tracing.TraceReqInitiate(req, c, "")

	c.outstanding[req.ID] = edgeRead{act: task.act, req: req}
	c.stats.EdgeReads++

	task.nextAddr = end
	if task.nextAddr >= task.endAddr {
		c.activationQueue.Pop()
	}

	return true
}

func (c *Comp) receiveEdges() bool {
	madeProgress := false

	for {
		msg := c.memPort.RetrieveIncoming()
		if msg == nil {
			return madeProgress
		}

		rsp, ok := msg.(*mem.DataReadyRsp)
		if !ok {
			log.Panicf("%s: cannot handle %s", c.Name(), reflect.TypeOf(msg))
		}

		read, found := c.outstanding[rsp.RespondTo]
		if !found {
			log.Panicf("%s: response to unknown read %s", c.Name(), rsp.RespondTo)
		}

		delete(c.outstanding, rsp.RespondTo)
		c.respQueue.Push(&edgeBatch{
			act:   read.act,
			edges: graph.DecodeEdges(rsp.Data),
		})

		tracing.TraceReqFinalize(read.req, c)

		madeProgress = true
	}
}

func (c *Comp) pushUpdates() bool {
	madeProgress := false

	for i := 0; i < c.numPushPerCycle; i++ {
		item := c.respQueue.Peek()
		if item == nil {
			break
		}

		batch := item.(*edgeBatch)
		if !c.pushOne(batch) {
			break
		}

		madeProgress = true

		batch.next++
		if batch.next >= len(batch.edges) {
			c.respQueue.Pop()
		}
	}

	return madeProgress
}

func (c *Comp) pushOne(batch *edgeBatch) bool {
	edge := batch.edges[batch.next]
	value := c.workload.Propagate(batch.act.Value, edge.Weight, batch.act.Degree)

	if !c.workload.ShouldForward(value) {
		c.stats.Suppressed++
		return true
	}

	update := graph.Update{Addr: edge.Neighbor, Value: value, Src: batch.act.Addr}

	tile, err := c.partition.Find(edge.Neighbor)
	if err != nil {
		log.Panicf("%s: edge of vertex 0x%x: %v", c.Name(), batch.act.Addr, err)
	}

	if tile == c.tileID {
		if !c.localSink.Submit(update) {
			return false
		}

		c.stats.LocalUpdates++

		return true
	}

	msg := graph.UpdateMsgBuilder{}.
		WithSrc(c.reqPort.AsRemote()).
		WithDst(c.remotePorts[tile]).
		WithUpdate(update).
		Build()

	if err := c.reqPort.Send(msg); err != nil {
		return false
	}

	c.stats.RemoteUpdates++

	return true
}
