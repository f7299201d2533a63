package sim

import (
	"log"
	"sync"
)

// HookPosPortMsgSend marks when a message is sent out from the port.
var HookPosPortMsgSend = &HookPos{Name: "Port Msg Send"}

// HookPosPortMsgRecvd marks when an inbound message arrives at the port.
var HookPosPortMsgRecvd = &HookPos{Name: "Port Msg Recv"}

// HookPosPortMsgRetrieveIncoming marks when an inbound message is retrieved
// from the incoming buffer.
var HookPosPortMsgRetrieveIncoming = &HookPos{
	Name: "Port Msg Retrieve Incoming",
}

// A RemotePort is the name of a port that a message is addressed to.
type RemotePort string

// A Port is owned by a component and is used to plug in connections.
type Port interface {
	Named
	Hookable

	AsRemote() RemotePort

	SetConnection(conn Connection)
	Component() Component

	// For connection
	Deliver(msg Msg) *SendError
	RetrieveOutgoing() Msg
	PeekOutgoing() Msg

	// For component
	CanSend() bool
	Send(msg Msg) *SendError
	RetrieveIncoming() Msg
	PeekIncoming() Msg

	NumIncoming() int
	NumOutgoing() int
}

type defaultPort struct {
	HookableBase

	lock sync.Mutex
	name string
	comp Component
	conn Connection

	incomingBuf Buffer
	outgoingBuf Buffer
}

// NewPort creates a port whose incoming and outgoing buffers hold
// incomingBufCap and outgoingBufCap messages.
func NewPort(
	comp Component,
	incomingBufCap, outgoingBufCap int,
	name string,
) Port {
	NameMustBeValid(name)

	return &defaultPort{
		name:        name,
		comp:        comp,
		incomingBuf: NewBuffer(name+".IncomingBuf", incomingBufCap),
		outgoingBuf: NewBuffer(name+".OutgoingBuf", outgoingBufCap),
	}
}

func (p *defaultPort) AsRemote() RemotePort {
	return RemotePort(p.name)
}

func (p *defaultPort) SetConnection(conn Connection) {
	if p.conn != nil {
		log.Panicf("port %s is already connected to %s, now connecting to %s",
			p.name, p.conn.Name(), conn.Name())
	}

	p.conn = conn
}

func (p *defaultPort) Component() Component {
	return p.comp
}

func (p *defaultPort) Name() string {
	return p.name
}

func (p *defaultPort) CanSend() bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.outgoingBuf.CanPush()
}

// Send puts the message in the outgoing buffer. The connection is notified
// when the buffer turns non-empty.
func (p *defaultPort) Send(msg Msg) *SendError {
	p.msgMustBeValid(msg)

	p.lock.Lock()
	if !p.outgoingBuf.CanPush() {
		p.lock.Unlock()
		return NewSendError()
	}

	wasEmpty := p.outgoingBuf.Size() == 0
	p.outgoingBuf.Push(msg)
	p.lock.Unlock()

	p.invoke(HookPosPortMsgSend, msg)

	if wasEmpty {
		p.conn.NotifySend()
	}

	return nil
}

// Deliver puts an arriving message in the incoming buffer and wakes the owner
// component when the buffer turns non-empty.
func (p *defaultPort) Deliver(msg Msg) *SendError {
	p.lock.Lock()
	if !p.incomingBuf.CanPush() {
		p.lock.Unlock()
		return NewSendError()
	}

	wasEmpty := p.incomingBuf.Size() == 0
	p.incomingBuf.Push(msg)
	p.lock.Unlock()

	p.invoke(HookPosPortMsgRecvd, msg)

	if p.comp != nil && wasEmpty {
		p.comp.NotifyRecv(p)
	}

	return nil
}

// RetrieveIncoming removes the first arrived message. The connection is told
// when a full incoming buffer frees a slot.
func (p *defaultPort) RetrieveIncoming() Msg {
	p.lock.Lock()
	item := p.incomingBuf.Pop()
	if item == nil {
		p.lock.Unlock()
		return nil
	}

	wasFull := p.incomingBuf.Size() == p.incomingBuf.Capacity()-1
	p.lock.Unlock()

	msg := item.(Msg)
	p.invoke(HookPosPortMsgRetrieveIncoming, msg)

	if wasFull {
		p.conn.NotifyAvailable(p)
	}

	return msg
}

// RetrieveOutgoing is used by the connection to take the next message to
// deliver. The owner is told when a full outgoing buffer frees a slot.
func (p *defaultPort) RetrieveOutgoing() Msg {
	p.lock.Lock()
	item := p.outgoingBuf.Pop()
	if item == nil {
		p.lock.Unlock()
		return nil
	}

	wasFull := p.outgoingBuf.Size() == p.outgoingBuf.Capacity()-1
	p.lock.Unlock()

	if wasFull && p.comp != nil {
		p.comp.NotifyPortFree(p)
	}

	return item.(Msg)
}

func (p *defaultPort) PeekIncoming() Msg {
	p.lock.Lock()
	defer p.lock.Unlock()

	item := p.incomingBuf.Peek()
	if item == nil {
		return nil
	}

	return item.(Msg)
}

func (p *defaultPort) PeekOutgoing() Msg {
	p.lock.Lock()
	defer p.lock.Unlock()

	item := p.outgoingBuf.Peek()
	if item == nil {
		return nil
	}

	return item.(Msg)
}

func (p *defaultPort) NumIncoming() int {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.incomingBuf.Size()
}

func (p *defaultPort) NumOutgoing() int {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.outgoingBuf.Size()
}

func (p *defaultPort) invoke(pos *HookPos, msg Msg) {
	if p.NumHooks() == 0 {
		return
	}

	p.InvokeHook(HookCtx{Domain: p, Pos: pos, Item: msg})
}

func (p *defaultPort) msgMustBeValid(msg Msg) {
	meta := msg.Meta()

	if meta.Src != p.AsRemote() {
		log.Panicf("sending port %s is not the msg src %s", p.name, meta.Src)
	}

	if meta.Dst == "" {
		log.Panicf("msg %s sent from %s has no destination", meta.ID, p.name)
	}

	if meta.Src == meta.Dst {
		log.Panicf("msg %s sent from %s to itself", meta.ID, p.name)
	}
}
