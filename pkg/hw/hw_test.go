package hw

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// releasingButton reads pressed (low) for a fixed number of reads.
type releasingButton struct {
	held  int
	reads int
}

func (b *releasingButton) Get() bool {
	b.reads++
	if b.held > 0 {
		b.held--
		return false
	}
	return true
}

func TestPressed(t *testing.T) {
	assert.True(t, Pressed(&releasingButton{held: 1}))
	assert.False(t, Pressed(&releasingButton{}))
}

func TestWaitRelease(t *testing.T) {
	b := &releasingButton{held: 5}
	WaitRelease(b)

	assert.Equal(t, 0, b.held)
	assert.Equal(t, 6, b.reads, "five pressed reads plus the released one")
}

func TestWaitRelease_NotPressed(t *testing.T) {
	b := &releasingButton{}
	WaitRelease(b)
	assert.Equal(t, 1, b.reads)
}
