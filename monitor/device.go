package monitor

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// OpenDevice opens a serial device for reading. Line settings (baud, parity,
// stop bits) are left as configured on the device.
func OpenDevice(path string) (io.ReadCloser, error) {
	return os.OpenFile(path, os.O_RDONLY, 0)
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 4096), 1<<20)
	return sc
}

func trimLine(s string) string {
	return strings.TrimRight(s, "\r\n")
}

func readLoop(mon *Monitor, log logrus.FieldLogger, onExit func(id string)) {
	sc := newLineScanner(mon.stream)
	for sc.Scan() {
		line := trimLine(sc.Text())
		if line == "" {
			continue
		}
		mon.publish(line)
	}
	if err := sc.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		log.WithField("monitor", mon.ID).Debugf("device read ended: %v", err)
	}
	close(mon.done)
	onExit(mon.ID)
}
