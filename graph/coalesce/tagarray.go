package coalesce

import (
	"fmt"

	"github.com/sarchlab/sega/graph"
)

// LineState is the state of a cache line.
type LineState int

// A line is Invalid until a miss locks it as Pending. It becomes Clean when
// the read completes and all the coalesced updates are applied, and Dirty
// once its value differs from memory.
const (
	LineInvalid LineState = iota
	LinePending
	LineClean
	LineDirty
)

func (s LineState) String() string {
	switch s {
	case LineInvalid:
		return "invalid"
	case LinePending:
		return "pending"
	case LineClean:
		return "clean"
	case LineDirty:
		return "dirty"
	}

	return fmt.Sprintf("LineState(%d)", int(s))
}

// A Line holds one vertex record.
type Line struct {
	SetID, WayID int
	Addr         uint64
	State        LineState
	Item         graph.WorkListItem
}

// IsValid returns true if the line holds a usable vertex record.
func (l *Line) IsValid() bool {
	return l.State == LineClean || l.State == LineDirty
}

// A Set is the group of lines where a vertex can be stored. LRUQueue lists
// the lines from the least to the most recently used.
type Set struct {
	Lines    []*Line
	LRUQueue []*Line
}

// TagArray tracks which vertices are in the cache.
type TagArray struct {
	NumSets int
	NumWays int
	Sets    []Set
}

// NewTagArray creates a tag array with all lines invalid.
func NewTagArray(numSets, numWays int) *TagArray {
	t := &TagArray{
		NumSets: numSets,
		NumWays: numWays,
	}

	t.Reset()

	return t
}

// Reset invalidates all the lines.
func (t *TagArray) Reset() {
	t.Sets = make([]Set, t.NumSets)

	for i := 0; i < t.NumSets; i++ {
		for j := 0; j < t.NumWays; j++ {
			line := &Line{SetID: i, WayID: j}
			t.Sets[i].Lines = append(t.Sets[i].Lines, line)
			t.Sets[i].LRUQueue = append(t.Sets[i].LRUQueue, line)
		}
	}
}

// GetSet returns the set where the vertex at addr can be stored.
func (t *TagArray) GetSet(addr uint64) *Set {
	setID := int(addr / graph.WorkListItemSize % uint64(t.NumSets))
	return &t.Sets[setID]
}

// Lookup returns the valid line that holds the vertex at addr, or nil.
func (t *TagArray) Lookup(addr uint64) *Line {
	set := t.GetSet(addr)
	for _, line := range set.Lines {
		if line.IsValid() && line.Addr == addr {
			return line
		}
	}

	return nil
}

// Visit makes the line the most recently used in its set.
func (t *TagArray) Visit(line *Line) {
	set := &t.Sets[line.SetID]
	queue := make([]*Line, 0, len(set.LRUQueue))

	for _, l := range set.LRUQueue {
		if l != line {
			queue = append(queue, l)
		}
	}

	set.LRUQueue = append(queue, line)
}

// ForEach calls f on every line.
func (t *TagArray) ForEach(f func(line *Line)) {
	for i := range t.Sets {
		for _, line := range t.Sets[i].Lines {
			f(line)
		}
	}
}
