package graph

import (
	"reflect"

	"github.com/sarchlab/sega/sim"
)

var updateMsgByteSize = 16

// An Update carries a value to the vertex at Addr. Src is the address of the
// vertex that produced it, or the destination itself for seeds.
type Update struct {
	Addr  uint64
	Value uint32
	Src   uint64
}

// UpdateMsg carries an update between tiles.
type UpdateMsg struct {
	sim.MsgMeta

	Update Update
}

// Meta returns the meta data of the message.
func (m *UpdateMsg) Meta() *sim.MsgMeta {
	return &m.MsgMeta
}

// UpdateMsgBuilder can build update messages.
type UpdateMsgBuilder struct {
	src, dst sim.RemotePort
	update   Update
}

// WithSrc sets the source of the message to build.
func (b UpdateMsgBuilder) WithSrc(src sim.RemotePort) UpdateMsgBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the message to build.
func (b UpdateMsgBuilder) WithDst(dst sim.RemotePort) UpdateMsgBuilder {
	b.dst = dst
	return b
}

// WithUpdate sets the update to carry.
func (b UpdateMsgBuilder) WithUpdate(update Update) UpdateMsgBuilder {
	b.update = update
	return b
}

// Build creates a new UpdateMsg.
func (b UpdateMsgBuilder) Build() *UpdateMsg {
	m := &UpdateMsg{}
	m.ID = sim.GetIDGenerator().Generate()
	m.Src = b.src
	m.Dst = b.dst
	m.TrafficClass = reflect.TypeOf(UpdateMsg{}).String()
	m.TrafficBytes = updateMsgByteSize
	m.Update = b.update

	return m
}
