package coalesce

import (
	"math/rand"
)

// A VictimFinder picks the line of a set that a missing vertex replaces.
// Pending lines must never be picked. It returns nil if no line can be
// replaced.
type VictimFinder interface {
	FindVictim(set *Set) *Line
}

// LRUVictimFinder picks an invalid line first and the least recently used
// line otherwise.
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed LRU victim finder.
func NewLRUVictimFinder() *LRUVictimFinder {
	return &LRUVictimFinder{}
}

// FindVictim returns the least recently used line that is not pending.
func (e *LRUVictimFinder) FindVictim(set *Set) *Line {
	for _, line := range set.LRUQueue {
		if line.State == LineInvalid {
			return line
		}
	}

	for _, line := range set.LRUQueue {
		if line.State != LinePending {
			return line
		}
	}

	return nil
}

// RandomVictimFinder picks an invalid line first and a random replaceable
// line otherwise.
type RandomVictimFinder struct {
	rand *rand.Rand
}

// NewRandomVictimFinder creates a random victim finder. The same seed gives
// the same choices.
func NewRandomVictimFinder(seed int64) *RandomVictimFinder {
	return &RandomVictimFinder{rand: rand.New(rand.NewSource(seed))}
}

// FindVictim returns a random line that is not pending.
func (e *RandomVictimFinder) FindVictim(set *Set) *Line {
	candidates := make([]*Line, 0, len(set.Lines))

	for _, line := range set.Lines {
		switch line.State {
		case LineInvalid:
			return line
		case LinePending:
		default:
			candidates = append(candidates, line)
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	return candidates[e.rand.Intn(len(candidates))]
}
