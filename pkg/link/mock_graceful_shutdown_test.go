package link

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gocapm/pkg/menu"
)

// TestMock_GracefulShutdown tests that Mock device closes the report channel
// when Close() is called.
func TestMock_GracefulShutdown(t *testing.T) {
	m := testMock(t, 10)
	reports := m.Reports()

	received := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range reports {
			received++
			if received == 3 {
				m.Close()
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Reports channel did not close within timeout")
	}

	assert.GreaterOrEqual(t, received, 3, "Should receive reports before channel closes")
	assert.False(t, m.IsConnected())

	_, ok := <-reports
	assert.False(t, ok, "Channel should be closed")
}

// TestMock_CloseDuringEntry closes the mock while the controller waits for
// console input.
func TestMock_CloseDuringEntry(t *testing.T) {
	m := testMock(t, 10)
	require.NoError(t, m.Press(menu.Button3))
	require.NoError(t, m.Press(menu.Button5))

	select {
	case <-m.Prompts():
	case <-time.After(5 * time.Second):
		t.Fatal("no prompt")
	}

	closed := make(chan struct{})
	go func() {
		m.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close blocked on pending console input")
	}
}
