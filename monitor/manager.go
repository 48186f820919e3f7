package monitor

import (
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrAlreadyMonitored = errors.New("preset is already being monitored")
var ErrNotFound = errors.New("monitor not found")

// OpenFunc opens a device for reading lines.
type OpenFunc func(device string) (io.ReadCloser, error)

// Manager tracks the live monitors of this process, at most one per preset.
type Manager struct {
	mu       sync.RWMutex
	monitors map[string]*Monitor
	opening  map[string]bool // presets whose device is being opened
	openFn   OpenFunc
	log      logrus.FieldLogger
}

func NewManager(log logrus.FieldLogger) *Manager {
	return NewManagerWithOpenFn(log, OpenDevice)
}

// NewManagerWithOpenFn creates a Manager that opens devices with fn.
func NewManagerWithOpenFn(log logrus.FieldLogger, fn OpenFunc) *Manager {
	return &Manager{
		monitors: make(map[string]*Monitor),
		opening:  make(map[string]bool),
		openFn:   fn,
		log:      log,
	}
}

// Create opens device and starts streaming its lines for presetName.
// The device is opened without holding the manager lock, so a slow open
// does not block Get or List.
func (m *Manager) Create(presetName, device string) (*Monitor, error) {
	m.mu.Lock()
	if m.opening[presetName] || m.monitoredLocked(presetName) {
		m.mu.Unlock()
		return nil, ErrAlreadyMonitored
	}
	m.opening[presetName] = true
	m.mu.Unlock()

	stream, err := m.openFn(device)

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.opening, presetName)
	if err != nil {
		return nil, err
	}
	mon := newMonitor(uuid.New().String(), presetName, device, stream)
	m.monitors[mon.ID] = mon

	m.log.WithFields(logrus.Fields{"monitor": mon.ID, "preset": presetName, "device": device}).
		Info("monitor started")
	go readLoop(mon, m.log, m.remove)
	return mon, nil
}

func (m *Manager) monitoredLocked(presetName string) bool {
	for _, mon := range m.monitors {
		if mon.Preset == presetName {
			return true
		}
	}
	return false
}

// List returns the live monitors ordered by preset name.
func (m *Manager) List() []*Monitor {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*Monitor, 0, len(m.monitors))
	for _, mon := range m.monitors {
		list = append(list, mon)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Preset < list[j].Preset })
	return list
}

func (m *Manager) Get(id string) (*Monitor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mon, ok := m.monitors[id]
	return mon, ok
}

// Kill closes the device of monitor id and forgets it.
func (m *Manager) Kill(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mon, ok := m.monitors[id]
	if !ok {
		return ErrNotFound
	}
	mon.stream.Close()
	delete(m.monitors, id)
	return nil
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.monitors, id)
}
