package coalesce

import (
	"log"

	"github.com/sarchlab/sega/mem"
)

type rmwReq struct {
	addr   uint64
	value  uint32
	taskID string
}

// An mshrEntry tracks the read of one missing vertex and the updates that
// wait for it, in arrival order.
type mshrEntry struct {
	addr      uint64
	line      *Line
	readReq   *mem.ReadReq
	targets   []rmwReq
	dataReady bool
	dirty     bool
}

type mshr struct {
	capacity        int
	targetsPerEntry int

	entries map[uint64]*mshrEntry
	byReqID map[string]*mshrEntry
	ready   []*mshrEntry
	peak    int
}

func newMSHR(capacity, targetsPerEntry int) *mshr {
	return &mshr{
		capacity:        capacity,
		targetsPerEntry: targetsPerEntry,
		entries:         make(map[uint64]*mshrEntry),
		byReqID:         make(map[string]*mshrEntry),
	}
}

func (m *mshr) lookup(addr uint64) *mshrEntry {
	return m.entries[addr]
}

func (m *mshr) isFull() bool {
	return len(m.entries) >= m.capacity
}

func (m *mshr) size() int {
	return len(m.entries)
}

func (m *mshr) add(addr uint64, line *Line, read *mem.ReadReq) *mshrEntry {
	if _, found := m.entries[addr]; found {
		log.Panicf("vertex 0x%x already has a miss tracker", addr)
	}

	if m.isFull() {
		log.Panicf("adding tracker for 0x%x to a full MSHR", addr)
	}

	e := &mshrEntry{addr: addr, line: line, readReq: read}
	m.entries[addr] = e
	m.byReqID[read.ID] = e
	m.peak = max(m.peak, len(m.entries))

	return e
}

func (m *mshr) canAddTarget(e *mshrEntry) bool {
	return len(e.targets) < m.targetsPerEntry
}

func (m *mshr) markReady(reqID string) *mshrEntry {
	e, found := m.byReqID[reqID]
	if !found {
		log.Panicf("no miss tracker waits for read %s", reqID)
	}

	delete(m.byReqID, reqID)
	e.dataReady = true
	m.ready = append(m.ready, e)

	return e
}

func (m *mshr) remove(e *mshrEntry) {
	delete(m.entries, e.addr)

	for i, r := range m.ready {
		if r == e {
			m.ready = append(m.ready[:i], m.ready[i+1:]...)
			return
		}
	}
}
