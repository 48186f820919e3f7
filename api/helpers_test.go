package api_test

import (
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"splotty-labels/api"
	"splotty-labels/monitor"
	"splotty-labels/preset"
)

// fakeDevices backs monitor devices with pipes the test writes into.
type fakeDevices struct {
	mu      sync.Mutex
	writers map[string]*io.PipeWriter
}

func (d *fakeDevices) open(device string) (io.ReadCloser, error) {
	r, w := io.Pipe()
	d.mu.Lock()
	d.writers[device] = w
	d.mu.Unlock()
	return r, nil
}

func (d *fakeDevices) writer(device string) *io.PipeWriter {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writers[device]
}

type testEnv struct {
	srv      *httptest.Server
	store    *preset.Storage
	monitors *monitor.Manager
	devices  *fakeDevices
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	store, err := preset.NewStorage(t.TempDir(), preset.WithLogger(log))
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	devs := &fakeDevices{writers: make(map[string]*io.PipeWriter)}
	mm := monitor.NewManagerWithOpenFn(log, devs.open)

	env := &testEnv{
		srv:      httptest.NewServer(api.RegisterRoutes(store, mm, log)),
		store:    store,
		monitors: mm,
		devices:  devs,
	}
	t.Cleanup(env.srv.Close)
	return env
}

// seedPreset stores a preset with one mapped field on device.
func (e *testEnv) seedPreset(t *testing.T, name, device string) *preset.Preset {
	t.Helper()
	p := preset.New(name)
	p.Device = device
	idx := 1
	p.Fields["S1.raw"] = &preset.FieldDef{ID: "S1.raw", Label: "Temp", Tags: preset.NewTags("env"), OriginIndex: &idx}
	root := preset.NewRoot(p.RootID)
	root.Children = []string{"f1"}
	p.TreeNodes[p.RootID] = root
	p.TreeNodes["f1"] = &preset.TreeNode{ID: "f1", Name: "Temp", Type: preset.NodeField, ParentID: p.RootID, Children: []string{}, Expanded: true, FieldID: "S1.raw"}
	if err := e.store.Save(p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return p
}
