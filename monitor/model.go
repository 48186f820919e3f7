package monitor

import (
	"io"
	"sync"
	"time"
)

const maxScrollback = 500 // lines

// Monitor is a live line stream from one preset's device. The exported
// fields are fixed at creation.
type Monitor struct {
	ID        string
	Preset    string
	Device    string
	CreatedAt time.Time

	stream     io.ReadCloser
	scrollback *scrollbackBuf
	done       chan struct{}

	// viewer state, guarded by viewerMu
	viewerMu  sync.Mutex
	viewer    chan string
	evicted   chan struct{}
	connected bool
}

// Status is a point-in-time view of a Monitor, safe to encode.
type Status struct {
	ID         string    `json:"id"`
	Preset     string    `json:"preset"`
	Device     string    `json:"device"`
	CreatedAt  time.Time `json:"created_at"`
	Connected  bool      `json:"connected"`
	LastActive time.Time `json:"last_active"`
}

func newMonitor(id, presetName, device string, stream io.ReadCloser) *Monitor {
	return &Monitor{
		ID:         id,
		Preset:     presetName,
		Device:     device,
		CreatedAt:  time.Now(),
		stream:     stream,
		scrollback: newScrollbackBuf(),
		done:       make(chan struct{}),
	}
}

func (m *Monitor) Status() Status {
	m.viewerMu.Lock()
	connected := m.connected
	m.viewerMu.Unlock()
	return Status{
		ID:         m.ID,
		Preset:     m.Preset,
		Device:     m.Device,
		CreatedAt:  m.CreatedAt,
		Connected:  connected,
		LastActive: m.scrollback.LastActive(),
	}
}

// scrollbackBuf keeps the most recent lines, dropping the oldest.
type scrollbackBuf struct {
	mu         sync.Mutex
	lines      []string
	max        int
	lastActive time.Time
}

func newScrollbackBuf() *scrollbackBuf {
	return &scrollbackBuf{max: maxScrollback}
}

func (s *scrollbackBuf) Write(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
	if len(s.lines) > s.max {
		excess := len(s.lines) - s.max
		s.lines = append(s.lines[:0:0], s.lines[excess:]...)
	}
	s.lastActive = time.Now()
}

func (s *scrollbackBuf) Snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lines) == 0 {
		return nil
	}
	cp := make([]string, len(s.lines))
	copy(cp, s.lines)
	return cp
}

func (s *scrollbackBuf) Latest() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lines) == 0 {
		return "", false
	}
	return s.lines[len(s.lines)-1], true
}

func (s *scrollbackBuf) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// publish appends line to the scrollback and offers it to the viewer.
// A viewer whose buffer is full misses the line; it can still be replayed
// from the scrollback.
func (m *Monitor) publish(line string) {
	m.scrollback.Write(line)
	m.viewerMu.Lock()
	defer m.viewerMu.Unlock()
	if m.viewer == nil {
		return
	}
	select {
	case m.viewer <- line:
	default:
	}
}

// SetClient makes ch the single viewer of the line stream. The returned
// channel is closed when a later viewer takes over, and the previous
// viewer's channel is closed now.
func (m *Monitor) SetClient(ch chan string) <-chan struct{} {
	m.viewerMu.Lock()
	defer m.viewerMu.Unlock()
	if m.evicted != nil {
		close(m.evicted)
	}
	m.viewer = ch
	m.evicted = make(chan struct{})
	m.connected = true
	return m.evicted
}

// ClearClient closes ch. The monitor goes back to having no viewer only if
// ch had not been replaced in the meantime.
func (m *Monitor) ClearClient(ch chan string) {
	m.viewerMu.Lock()
	if m.viewer == ch {
		m.viewer = nil
		m.evicted = nil
		m.connected = false
	}
	m.viewerMu.Unlock()
	close(ch)
}

// ScrollbackSnapshot returns a copy of the recent lines, oldest first.
func (m *Monitor) ScrollbackSnapshot() []string {
	return m.scrollback.Snapshot()
}

// Latest returns the most recent line read from the device.
func (m *Monitor) Latest() (string, bool) {
	return m.scrollback.Latest()
}

func (m *Monitor) LastActive() time.Time {
	return m.scrollback.LastActive()
}

// Done is closed when the device stream ends.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}
