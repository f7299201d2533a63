package mem

import (
	"fmt"
	"sync"
)

// Storage is a sparse byte-addressable backing store. It allocates memory in
// 4 KiB units, only for units that have been touched.
type Storage struct {
	sync.RWMutex

	unitSize uint64
	capacity uint64
	data     map[uint64][]byte
}

// NewStorage creates a storage object with the specified capacity in bytes.
func NewStorage(capacity uint64) *Storage {
	return &Storage{
		unitSize: 4096,
		capacity: capacity,
		data:     make(map[uint64][]byte),
	}
}

// Capacity returns the number of bytes the storage can hold.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

func (s *Storage) mustBeInRange(address, length uint64) error {
	if address+length > s.capacity || address+length < address {
		return fmt.Errorf(
			"accessing [0x%x, 0x%x) beyond the storage capacity 0x%x",
			address, address+length, s.capacity)
	}

	return nil
}

func (s *Storage) unit(address uint64, create bool) []byte {
	base := address - address%s.unitSize

	unit, ok := s.data[base]
	if !ok && create {
		unit = make([]byte, s.unitSize)
		s.data[base] = unit
	}

	return unit
}

// Read returns a copy of length bytes at address. Untouched bytes read as
// zero.
func (s *Storage) Read(address uint64, length uint64) ([]byte, error) {
	if err := s.mustBeInRange(address, length); err != nil {
		return nil, err
	}

	s.RLock()
	defer s.RUnlock()

	res := make([]byte, length)
	for offset := uint64(0); offset < length; {
		curr := address + offset
		inUnit := curr % s.unitSize
		n := min(length-offset, s.unitSize-inUnit)

		if unit := s.unit(curr, false); unit != nil {
			copy(res[offset:offset+n], unit[inUnit:inUnit+n])
		}

		offset += n
	}

	return res, nil
}

// Write stores data at address.
func (s *Storage) Write(address uint64, data []byte) error {
	length := uint64(len(data))
	if err := s.mustBeInRange(address, length); err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()

	for offset := uint64(0); offset < length; {
		curr := address + offset
		inUnit := curr % s.unitSize
		n := min(length-offset, s.unitSize-inUnit)

		copy(s.unit(curr, true)[inUnit:inUnit+n], data[offset:offset+n])

		offset += n
	}

	return nil
}
