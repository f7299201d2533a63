// Package mpu composes the engines and the memories of a tile.
package mpu

import (
	"github.com/sarchlab/sega/graph"
	"github.com/sarchlab/sega/graph/coalesce"
	"github.com/sarchlab/sega/graph/push"
	"github.com/sarchlab/sega/graph/wlengine"
	"github.com/sarchlab/sega/mem/idealmemcontroller"
	"github.com/sarchlab/sega/sim"
	"github.com/sarchlab/sega/sim/directconnection"
)

// Stats collects the statistics of the engines of a tile.
type Stats struct {
	TileID    int
	WLEngine  wlengine.Stats
	Cache     coalesce.Stats
	Push      push.Stats
	VertexRds uint64
	VertexWrs uint64
	EdgeRds   uint64
}

// An MPU (memory processing unit) is a tile. Updates flow from the work-list
// engine to the cache engine and from the cache engine to the push engine,
// which sends them back to the work-list engine of the tile that owns the
// neighbor.
type MPU struct {
	name   string
	tileID int

	WLEngine    *wlengine.Comp
	CacheEngine *coalesce.Comp
	PushEngine  *push.Comp
	VertexMem   *idealmemcontroller.Comp
	EdgeMem     *idealmemcontroller.Comp

	vertexConn *directconnection.Comp
	edgeConn   *directconnection.Comp
}

// Name returns the name of the tile.
func (m *MPU) Name() string {
	return m.name
}

// TileID returns the index of the tile in the partition map.
func (m *MPU) TileID() int {
	return m.tileID
}

// GetReqPort returns the port that sends updates to other tiles.
func (m *MPU) GetReqPort() sim.Port {
	return m.PushEngine.GetReqPort()
}

// GetRespPort returns the port that receives updates from other tiles.
func (m *MPU) GetRespPort() sim.Port {
	return m.WLEngine.GetUpdatePort()
}

// SetRemotePorts sets the response ports of all the tiles, indexed by tile ID.
func (m *MPU) SetRemotePorts(ports []sim.RemotePort) {
	m.PushEngine.SetRemotePorts(ports)
}

// InjectUpdate puts an update into the work-list engine. It returns false if
// the work-list engine cannot take it now.
func (m *MPU) InjectUpdate(update graph.Update) bool {
	return m.WLEngine.Submit(update)
}

// IsIdle returns true if no engine or memory of the tile has work left.
func (m *MPU) IsIdle() bool {
	return m.WLEngine.IsIdle() &&
		m.CacheEngine.IsIdle() &&
		m.PushEngine.IsIdle() &&
		m.VertexMem.IsIdle() &&
		m.EdgeMem.IsIdle()
}

// Components returns all the components of the tile.
func (m *MPU) Components() []sim.Component {
	return []sim.Component{
		m.WLEngine,
		m.CacheEngine,
		m.PushEngine,
		m.VertexMem,
		m.EdgeMem,
		m.vertexConn,
		m.edgeConn,
	}
}

// FunctionalFlush writes the cached vertices back to the vertex store.
func (m *MPU) FunctionalFlush() error {
	return m.CacheEngine.FunctionalFlush()
}

// ReadVertex returns the current record of a vertex owned by the tile.
func (m *MPU) ReadVertex(addr uint64) (graph.WorkListItem, error) {
	return m.CacheEngine.ReadVertex(addr)
}

// Stats returns the statistics of the engines of the tile.
func (m *MPU) Stats() Stats {
	return Stats{
		TileID:    m.tileID,
		WLEngine:  m.WLEngine.Stats(),
		Cache:     m.CacheEngine.Stats(),
		Push:      m.PushEngine.Stats(),
		VertexRds: m.VertexMem.NumReads,
		VertexWrs: m.VertexMem.NumWrites,
		EdgeRds:   m.EdgeMem.NumReads,
	}
}
