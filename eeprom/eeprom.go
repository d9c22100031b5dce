// Package eeprom provides small byte-addressable stores where every write is
// committed before it returns.
package eeprom

import (
	"github.com/pkg/errors"
)

// Erased is the value of a cell that has never been written.
const Erased byte = 0xFF

var ErrOutOfRange = errors.New("address out of range")

type Cells interface {
	Get(addr int) (byte, error)
	// Put must not return before the value is durable.
	Put(addr int, v byte) error
	Size() int
	Close() error
}

func checkAddr(c Cells, addr int) error {
	if addr < 0 || addr >= c.Size() {
		return errors.Wrapf(ErrOutOfRange, "address %d, size %d", addr, c.Size())
	}
	return nil
}

// Memory is a volatile store. It survives a simulated power cycle as long as
// the same value is handed to the next settings.Open.
type Memory struct {
	cells  []byte
	Writes int
}

func NewMemory(size int) *Memory {
	m := &Memory{cells: make([]byte, size)}
	for i := range m.cells {
		m.cells[i] = Erased
	}
	return m
}

func (m *Memory) Get(addr int) (byte, error) {
	if err := checkAddr(m, addr); err != nil {
		return 0, err
	}
	return m.cells[addr], nil
}

func (m *Memory) Put(addr int, v byte) error {
	if err := checkAddr(m, addr); err != nil {
		return err
	}
	m.cells[addr] = v
	m.Writes++
	return nil
}

func (m *Memory) Size() int {
	return len(m.cells)
}

func (m *Memory) Close() error {
	return nil
}
