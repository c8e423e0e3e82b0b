// Package record keeps the bounded, volatile log of saved readings.
package record

import (
	"math"

	"github.com/chewxy/math32"
)

// Capacity is the number of slots in a Log.
const Capacity = 30

// Error is a record log error.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrFull  = Error("record log full")
	ErrEmpty = Error("no record at index")
)

// Log is an ordered, fixed-capacity log of readings stored in thousandths
// of a nanofarad. Entries [0, Len) are valid; slots past that are zero.
type Log struct {
	slots [Capacity]int32
	count int
}

// Len returns the number of valid entries.
func (l *Log) Len() int {
	return l.count
}

// Append stores v after the last valid entry.
func (l *Log) Append(v int32) error {
	if l.count >= Capacity {
		return ErrFull
	}
	l.slots[l.count] = v
	l.count++
	return nil
}

// DeleteAt removes entry i and shifts later entries down by one.
func (l *Log) DeleteAt(i int) error {
	if i < 0 || i >= l.count {
		return ErrEmpty
	}
	copy(l.slots[i:l.count], l.slots[i+1:l.count])
	l.count--
	l.slots[l.count] = 0
	return nil
}

// At returns entry i and whether it is valid.
func (l *Log) At(i int) (int32, bool) {
	if i < 0 || i >= l.count {
		return 0, false
	}
	return l.slots[i], true
}

// Entries returns a copy of the valid entries.
func (l *Log) Entries() []int32 {
	result := make([]int32, l.count)
	copy(result, l.slots[:l.count])
	return result
}

// Slots returns every slot, valid or not.
func (l *Log) Slots() [Capacity]int32 {
	return l.slots
}

// Clear empties the log.
func (l *Log) Clear() {
	l.slots = [Capacity]int32{}
	l.count = 0
}

// FromNanofarads converts nF into the fixed-point entry format, saturating
// at the int32 range.
func FromNanofarads(nf float32) int32 {
	v := math32.Round(nf * 1000)
	switch {
	case math32.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int32(v)
}

// ToNanofarads converts an entry back to nF.
func ToNanofarads(v int32) float32 {
	return float32(v) / 1000
}

// Cursor is a browsing position over every slot of a Log. It is not tied to
// the number of valid entries.
type Cursor struct {
	index int
}

// Index returns the current slot.
func (c *Cursor) Index() int {
	return c.index
}

// Down moves to the next slot, stopping at the last one.
func (c *Cursor) Down() {
	if c.index < Capacity-1 {
		c.index++
	}
}

// Up moves to the previous slot, stopping at the first one.
func (c *Cursor) Up() {
	if c.index > 0 {
		c.index--
	}
}

// Reset moves to the first slot.
func (c *Cursor) Reset() {
	c.index = 0
}
