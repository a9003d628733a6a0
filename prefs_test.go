package arix

import (
	"bytes"
	"log"
	"testing"

	"github.com/quasilyte/gdata/v2"
)

func TestPreferenceStoreMemoryOnly(t *testing.T) {
	ps := NewPreferenceStore(nil)
	if ps.Persistent() {
		t.Error("nil manager should be memory only")
	}
	if ps.Get() != DefaultPreferences() {
		t.Errorf("Get = %+v, want defaults", ps.Get())
	}

	ps.Set(Preferences{ShowFPS: true, CameraDistance: -3})
	if got := ps.Get(); !got.ShowFPS || got.CameraDistance != 0 {
		t.Errorf("Set = %+v, want ShowFPS and distance clamped to 0", got)
	}

	ps.Update(func(p *Preferences) {
		p.StartAssembled = true
		p.CameraDistance = 12
	})
	got := ps.Get()
	if !got.StartAssembled || got.CameraDistance != 12 || !got.ShowFPS {
		t.Errorf("Update = %+v", got)
	}
	if err := ps.Save(); err != nil {
		t.Errorf("memory-only Save = %v, want nil", err)
	}
}

func openTestPrefsManager(t *testing.T) *gdata.Manager {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	m, err := gdata.Open(gdata.Config{AppName: "arix_test"})
	if err != nil {
		t.Skipf("gdata unavailable: %v", err)
	}
	return m
}

func TestPreferenceStorePersists(t *testing.T) {
	m := openTestPrefsManager(t)
	ps := NewPreferenceStore(m)
	if !ps.Persistent() {
		t.Fatal("expected persistent store")
	}
	ps.Update(func(p *Preferences) {
		p.ShowFPS = true
		p.CameraDistance = 14.5
	})

	reopened := NewPreferenceStore(m)
	got := reopened.Get()
	if !got.ShowFPS || got.CameraDistance != 14.5 || got.StartAssembled {
		t.Errorf("reloaded = %+v", got)
	}
}

func TestPreferenceStoreCorruptData(t *testing.T) {
	m := openTestPrefsManager(t)
	if err := m.SaveObjectProp(prefsObject, prefsProperty, []byte("show_fps: [")); err != nil {
		t.Fatalf("SaveObjectProp: %v", err)
	}

	var buf bytes.Buffer
	old := logger
	logger = log.New(&buf, "", 0)
	defer func() { logger = old }()

	ps := NewPreferenceStore(m)
	if ps.Get() != DefaultPreferences() {
		t.Errorf("corrupt data should fall back to defaults, got %+v", ps.Get())
	}
	if !bytes.Contains(buf.Bytes(), []byte("using defaults")) {
		t.Errorf("expected a fallback log, got %q", buf.String())
	}
}
