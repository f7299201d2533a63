// Package graph defines the vertex and edge records, the update messages,
// the workloads and the partition map shared by the engines of a tile.
package graph

import (
	"encoding/binary"
	"fmt"
	"log"
)

// WorkListItemSize is the number of bytes of a vertex record.
const WorkListItemSize = 16

// EdgeSize is the number of bytes of an edge record.
const EdgeSize = 16

// A WorkListItem is the record of a vertex in the vertex store.
type WorkListItem struct {
	TempProp  uint32
	Prop      uint32
	Degree    uint32
	EdgeIndex uint32
}

// Bytes encodes the item in little endian.
func (w WorkListItem) Bytes() []byte {
	buf := make([]byte, WorkListItemSize)
	binary.LittleEndian.PutUint32(buf[0:], w.TempProp)
	binary.LittleEndian.PutUint32(buf[4:], w.Prop)
	binary.LittleEndian.PutUint32(buf[8:], w.Degree)
	binary.LittleEndian.PutUint32(buf[12:], w.EdgeIndex)

	return buf
}

// String prints the item.
func (w WorkListItem) String() string {
	return fmt.Sprintf("{temp_prop: %d, prop: %d, degree: %d, edge_index: %d}",
		w.TempProp, w.Prop, w.Degree, w.EdgeIndex)
}

// EdgeAddr returns the address of the first edge of the vertex in the edge
// store.
func (w WorkListItem) EdgeAddr() uint64 {
	return uint64(w.EdgeIndex) * EdgeSize
}

// DecodeWorkListItem decodes a vertex record.
func DecodeWorkListItem(buf []byte) WorkListItem {
	if len(buf) < WorkListItemSize {
		log.Panicf("vertex record needs %d bytes, got %d",
			WorkListItemSize, len(buf))
	}

	return WorkListItem{
		TempProp:  binary.LittleEndian.Uint32(buf[0:]),
		Prop:      binary.LittleEndian.Uint32(buf[4:]),
		Degree:    binary.LittleEndian.Uint32(buf[8:]),
		EdgeIndex: binary.LittleEndian.Uint32(buf[12:]),
	}
}

// An Edge connects a vertex to the vertex at address Neighbor.
type Edge struct {
	Weight   uint64
	Neighbor uint64
}

// Bytes encodes the edge in little endian.
func (e Edge) Bytes() []byte {
	buf := make([]byte, EdgeSize)
	binary.LittleEndian.PutUint64(buf[0:], e.Weight)
	binary.LittleEndian.PutUint64(buf[8:], e.Neighbor)

	return buf
}

// DecodeEdges decodes all the complete edge records in buf.
func DecodeEdges(buf []byte) []Edge {
	edges := make([]Edge, 0, len(buf)/EdgeSize)

	for off := 0; off+EdgeSize <= len(buf); off += EdgeSize {
		edges = append(edges, Edge{
			Weight:   binary.LittleEndian.Uint64(buf[off:]),
			Neighbor: binary.LittleEndian.Uint64(buf[off+8:]),
		})
	}

	return edges
}

// VertexAddr returns the address of vertex id in the vertex store.
func VertexAddr(id uint64) uint64 {
	return id * WorkListItemSize
}

// VertexID returns the id of the vertex at addr.
func VertexID(addr uint64) uint64 {
	return addr / WorkListItemSize
}
