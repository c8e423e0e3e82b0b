package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/itohio/gocapm/pkg/reading"
)

// TestHistory_GracefulShutdown tests that Process returns when its input
// channel closes.
func TestHistory_GracefulShutdown(t *testing.T) {
	h := New(time.Minute, 3, 1)
	input := make(chan reading.Reading)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Process(input)
	}()

	now := time.Now()
	for i := range 3 {
		input <- present(now.Add(time.Duration(i)*time.Second), 10)
	}
	close(input)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Process did not return after input closed")
	}

	assert.Len(t, h.Readings(), 3)
	_, ok := h.Stable()
	assert.True(t, ok)
}
