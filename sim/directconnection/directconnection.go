// Package directconnection provides a connection that delivers messages
// between the plugged-in ports with no latency.
package directconnection

import (
	"log"

	"github.com/sarchlab/sega/sim"
)

// Comp is a DirectConnection. It ticks as a secondary component, so messages
// sent in a cycle arrive in the same cycle after all the senders have run.
// Ports are served round-robin, starting one port later every cycle.
type Comp struct {
	*sim.TickingComponent

	nextPortID int
	portList   []sim.Port
	ports      map[sim.RemotePort]sim.Port
}

// PlugIn marks the port connects to this DirectConnection.
func (c *Comp) PlugIn(port sim.Port) {
	c.Lock()
	defer c.Unlock()

	if _, found := c.ports[port.AsRemote()]; found {
		log.Panicf("port %s is already plugged in to %s",
			port.AsRemote(), c.Name())
	}

	c.portList = append(c.portList, port)
	c.ports[port.AsRemote()] = port

	port.SetConnection(c)
}

// Unplug is not supported.
func (c *Comp) Unplug(port sim.Port) {
	log.Panicf("cannot unplug %s from %s", port.Name(), c.Name())
}

// NotifyAvailable is called when a destination port frees a slot, so blocked
// messages can be retried.
func (c *Comp) NotifyAvailable(_ sim.Port) {
	c.TickNow()
}

// NotifySend is called when a port has new messages to deliver.
func (c *Comp) NotifySend() {
	c.TickNow()
}

// Tick delivers as many messages as the destinations can accept.
func (c *Comp) Tick() bool {
	if len(c.portList) == 0 {
		return false
	}

	madeProgress := false
	for i := 0; i < len(c.portList); i++ {
		port := c.portList[(i+c.nextPortID)%len(c.portList)]
		madeProgress = c.forwardMany(port) || madeProgress
	}

	c.nextPortID = (c.nextPortID + 1) % len(c.portList)

	return madeProgress
}

func (c *Comp) forwardMany(port sim.Port) bool {
	madeProgress := false

	for {
		head := port.PeekOutgoing()
		if head == nil {
			break
		}

		dst, found := c.ports[head.Meta().Dst]
		if !found {
			log.Panicf("%s: destination %s of msg %s is not plugged in",
				c.Name(), head.Meta().Dst, head.Meta().ID)
		}

		if err := dst.Deliver(head); err != nil {
			break
		}

		port.RetrieveOutgoing()
		madeProgress = true

		if c.NumHooks() > 0 {
			c.InvokeHook(sim.HookCtx{
				Domain: c,
				Pos:    sim.HookPosConnDeliver,
				Item:   head,
			})
		}
	}

	return madeProgress
}
