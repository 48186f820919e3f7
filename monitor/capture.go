package monitor

import (
	"context"
	"errors"
	"io"
	"time"

	"splotty-labels/preset"
)

var ErrNoData = errors.New("no data received from device")

// Window returns how long a capture for p should listen.
func Window(p *preset.Preset) time.Duration {
	secs := p.MonitorSecs
	if secs <= 0 {
		secs = preset.DefaultMonitorSecs
	}
	return time.Duration(secs) * time.Second
}

// Capture reads lines from r for up to window and returns the last non-empty
// one. It returns early when r reaches EOF. The reading goroutine exits once
// r is closed, so callers close r after Capture returns.
func Capture(ctx context.Context, r io.Reader, window time.Duration) (string, error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		defer close(lines)
		sc := newLineScanner(r)
		for sc.Scan() {
			select {
			case lines <- trimLine(sc.Text()):
			case <-stop:
				return
			}
		}
		if err := sc.Err(); err != nil {
			errc <- err
		}
	}()

	timer := time.NewTimer(window)
	defer timer.Stop()

	var last string
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return finish(last, errc)
			}
			if line != "" {
				last = line
			}
		case <-timer.C:
			return finish(last, nil)
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

func finish(last string, errc <-chan error) (string, error) {
	if last != "" {
		return last, nil
	}
	select {
	case err := <-errc:
		return "", err
	default:
	}
	return "", ErrNoData
}
