package monitor

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// pipeDevices hands out io.Pipe-backed devices whose write ends the test keeps.
type pipeDevices struct {
	mu      sync.Mutex
	writers map[string]*io.PipeWriter
}

func newPipeDevices() *pipeDevices {
	return &pipeDevices{writers: make(map[string]*io.PipeWriter)}
}

func (d *pipeDevices) open(device string) (io.ReadCloser, error) {
	if device == "" {
		return nil, errors.New("no device")
	}
	r, w := io.Pipe()
	d.mu.Lock()
	d.writers[device] = w
	d.mu.Unlock()
	return r, nil
}

func (d *pipeDevices) writer(device string) *io.PipeWriter {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writers[device]
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestManager() (*Manager, *pipeDevices) {
	devs := newPipeDevices()
	return NewManagerWithOpenFn(quietLogger(), devs.open), devs
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestCreateAndGet(t *testing.T) {
	m, _ := newTestManager()
	mon, err := m.Create("bench", "/dev/fake0")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if mon.Preset != "bench" || mon.Device != "/dev/fake0" {
		t.Fatalf("unexpected monitor %+v", mon)
	}
	got, ok := m.Get(mon.ID)
	if !ok {
		t.Fatal("Get returned ok=false for existing monitor")
	}
	if got.ID != mon.ID {
		t.Fatalf("Get returned wrong monitor")
	}
}

func TestCreateOnePerPreset(t *testing.T) {
	m, _ := newTestManager()
	if _, err := m.Create("dup", "/dev/a"); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := m.Create("dup", "/dev/b"); err != ErrAlreadyMonitored {
		t.Fatalf("expected ErrAlreadyMonitored, got %v", err)
	}
}

func TestCreateOpenError(t *testing.T) {
	m, _ := newTestManager()
	if _, err := m.Create("bench", ""); err == nil {
		t.Fatal("expected open error")
	}
	if len(m.List()) != 0 {
		t.Fatal("failed monitor should not be listed")
	}
}

func TestListSortedByPreset(t *testing.T) {
	m, _ := newTestManager()
	m.Create("b", "/dev/b")
	m.Create("a", "/dev/a")
	list := m.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 monitors, got %d", len(list))
	}
	if list[0].Preset != "a" || list[1].Preset != "b" {
		t.Fatalf("unexpected order: %s, %s", list[0].Preset, list[1].Preset)
	}
}

func TestKill(t *testing.T) {
	m, _ := newTestManager()
	mon, err := m.Create("killme", "/dev/k")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := m.Kill(mon.ID); err != nil {
		t.Fatalf("Kill failed: %v", err)
	}
	if _, ok := m.Get(mon.ID); ok {
		t.Fatal("monitor still exists after Kill")
	}
	select {
	case <-mon.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("read loop did not stop after Kill")
	}
}

func TestKillNotFound(t *testing.T) {
	m, _ := newTestManager()
	if err := m.Kill("nonexistent"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLinesReachScrollback(t *testing.T) {
	m, devs := newTestManager()
	mon, err := m.Create("bench", "/dev/s")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	w := devs.writer("/dev/s")
	if _, err := io.WriteString(w, "1,2,3\r\n\r\n4,5,6\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, func() bool { return len(mon.ScrollbackSnapshot()) == 2 })

	latest, ok := mon.Latest()
	if !ok || latest != "4,5,6" {
		t.Fatalf("expected latest '4,5,6', got %q", latest)
	}
	if mon.LastActive().IsZero() {
		t.Fatal("expected LastActive to be set")
	}
}

func TestAutoRemoveOnDeviceClose(t *testing.T) {
	m, devs := newTestManager()
	mon, err := m.Create("auto-remove", "/dev/x")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Closing the write end simulates the device going away.
	devs.writer("/dev/x").Close()

	waitFor(t, func() bool {
		_, ok := m.Get(mon.ID)
		return !ok
	})
}

func TestCreateDoesNotBlockLookupsWhileOpening(t *testing.T) {
	release := make(chan struct{})
	opened := make(chan struct{})
	m := NewManagerWithOpenFn(quietLogger(), func(device string) (io.ReadCloser, error) {
		close(opened)
		<-release
		r, _ := io.Pipe()
		return r, nil
	})

	created := make(chan error, 1)
	go func() {
		_, err := m.Create("slow", "/dev/slow")
		created <- err
	}()
	<-opened

	lookups := make(chan struct{})
	go func() {
		m.List()
		m.Get("none")
		close(lookups)
	}()
	select {
	case <-lookups:
	case <-time.After(2 * time.Second):
		t.Fatal("List/Get blocked by a pending open")
	}

	// The preset is reserved while its device is opening.
	if _, err := m.Create("slow", "/dev/other"); err != ErrAlreadyMonitored {
		t.Fatalf("expected ErrAlreadyMonitored during open, got %v", err)
	}

	close(release)
	if err := <-created; err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(m.List()) != 1 {
		t.Fatalf("expected 1 monitor, got %d", len(m.List()))
	}
}

func TestCreateReleasesPresetAfterOpenError(t *testing.T) {
	m, _ := newTestManager()
	if _, err := m.Create("bench", ""); err == nil {
		t.Fatal("expected open error")
	}
	if _, err := m.Create("bench", "/dev/ok"); err != nil {
		t.Fatalf("Create after failed open: %v", err)
	}
}
