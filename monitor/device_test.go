package monitor_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splotty-labels/monitor"
)

// A pseudo-terminal stands in for a serial device: bytes written to the
// master arrive on the slave path like data from a USB adapter.
func TestCaptureFromTerminalDevice(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty not available: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	dev, err := monitor.OpenDevice(tty.Name())
	require.NoError(t, err)
	defer dev.Close()

	go func() {
		io.WriteString(ptmx, "10 20 30\n")
		io.WriteString(ptmx, "11 21 31\n")
	}()

	line, err := monitor.Capture(context.Background(), dev, 500*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "11 21 31", line)
}

func TestOpenDeviceMissing(t *testing.T) {
	_, err := monitor.OpenDevice("/dev/does-not-exist-splotty")
	assert.Error(t, err)
}
