// Package idealmemcontroller provides a fixed-latency memory controller.
package idealmemcontroller

import (
	"log"
	"reflect"

	"github.com/sarchlab/sega/mem"
	"github.com/sarchlab/sega/sim"
	"github.com/sarchlab/sega/tracing"
)

type respondEvent struct {
	*sim.EventBase
	req mem.AccessReq
	rsp sim.Msg
}

func newRespondEvent(
	time sim.VTimeInSec,
	handler sim.Handler,
	req mem.AccessReq,
	rsp sim.Msg,
) *respondEvent {
	return &respondEvent{sim.NewEventBase(time, handler), req, rsp}
}

// Comp is an ideal memory controller. It accepts up to width requests per
// cycle and responds to each of them a fixed number of cycles later. There
// is no limitation on the number of requests in flight.
//
// The storage is read or written when a request is accepted, so requests
// take effect in arrival order even though responses may be retried.
type Comp struct {
	*sim.TickingComponent

	topPort  sim.Port
	Storage  *mem.Storage
	Latency  int
	width    int
	atomSize uint64

	inflight  int
	NumReads  uint64
	NumWrites uint64
}

// GetTopPort returns the port that receives the memory requests.
func (c *Comp) GetTopPort() sim.Port {
	return c.topPort
}

// IsIdle returns true if there is no request waiting or in flight.
func (c *Comp) IsIdle() bool {
	return c.inflight == 0 &&
		c.topPort.NumIncoming() == 0 &&
		c.topPort.NumOutgoing() == 0
}

// Handle defines how the Comp handles event
func (c *Comp) Handle(e sim.Event) error {
	c.Lock()
	defer c.Unlock()

	switch e := e.(type) {
	case *respondEvent:
		c.handleRespondEvent(e)
	case sim.TickEvent:
		return c.TickingComponent.Handle(e)
	default:
		log.Panicf("cannot handle event of %s", reflect.TypeOf(e))
	}

	return nil
}

// Tick accepts new requests.
func (c *Comp) Tick() bool {
	madeProgress := false

	for i := 0; i < c.width; i++ {
		msg := c.topPort.RetrieveIncoming()
		if msg == nil {
			break
		}

		tracing.TraceReqReceive(msg, c)

		switch msg := msg.(type) {
		case *mem.ReadReq:
			c.handleReadReq(msg)
		case *mem.WriteReq:
			c.handleWriteReq(msg)
		default:
			log.Panicf("cannot handle request of type %s", reflect.TypeOf(msg))
		}

		madeProgress = true
	}

	return madeProgress
}

func (c *Comp) accessMustBeValid(req mem.AccessReq) {
	if req.GetByteSize() == 0 || req.GetByteSize() > c.atomSize {
		log.Panicf("%s: access of %d bytes at 0x%x, atom size is %d",
			c.Name(), req.GetByteSize(), req.GetAddress(), c.atomSize)
	}
}

func (c *Comp) handleReadReq(req *mem.ReadReq) {
	c.accessMustBeValid(req)

	data, err := c.Storage.Read(req.Address, req.AccessByteSize)
	if err != nil {
		log.Panicf("%s: %v", c.Name(), err)
	}

	rsp := mem.DataReadyRspBuilder{}.
		WithSrc(c.topPort.AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		WithData(data).
		Build()

	c.NumReads++
	c.scheduleRespond(req, rsp)
}

func (c *Comp) handleWriteReq(req *mem.WriteReq) {
	c.accessMustBeValid(req)

	if err := c.Storage.Write(req.Address, req.Data); err != nil {
		log.Panicf("%s: %v", c.Name(), err)
	}

	rsp := mem.WriteDoneRspBuilder{}.
		WithSrc(c.topPort.AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		Build()

	c.NumWrites++
	c.scheduleRespond(req, rsp)
}

func (c *Comp) scheduleRespond(req mem.AccessReq, rsp sim.Msg) {
	now := c.CurrentTime()
	evt := newRespondEvent(c.Freq.NCyclesLater(c.Latency, now), c, req, rsp)
	c.Engine.Schedule(evt)
	c.inflight++
}

func (c *Comp) handleRespondEvent(e *respondEvent) {
	if err := c.topPort.Send(e.rsp); err != nil {
		retry := newRespondEvent(c.Freq.NextTick(e.Time()), c, e.req, e.rsp)
		c.Engine.Schedule(retry)

		return
	}

	c.inflight--
	tracing.TraceReqComplete(e.req, c)
}
