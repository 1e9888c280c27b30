package storage

import (
	"path/filepath"
	"testing"

	"github.com/justyntemme/tome-t/internal/viewer"
)

type kv interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

func exerciseKV(t *testing.T, s kv) {
	t.Helper()

	if _, ok, err := s.Get("missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
	}
	if err := s.Set("a", "1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("a", "2"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, ok, err := s.Get("a")
	if err != nil || !ok || v != "2" {
		t.Fatalf("Get(a) = %q, %v, %v", v, ok, err)
	}
	if err := s.Delete("a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get("a"); ok {
		t.Error("key still present after delete")
	}
	if err := s.Delete("a"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
}

func TestMemory(t *testing.T) {
	exerciseKV(t, NewMemory())
}

func TestSQLite(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "state.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()
	exerciseKV(t, s)
}

func TestSQLitePersistsOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	want := viewer.ViewerOptions{Direction: viewer.RTL, Spread: viewer.SpreadOdd, FontSize: 20}
	if err := viewer.NewOptionsStore(s, nil).Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if got := viewer.NewOptionsStore(s, nil).Load(); got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestCorruptOptionsFallBack(t *testing.T) {
	m := NewMemory()
	m.Set(viewer.OptionsKey, "[]")
	if got := viewer.NewOptionsStore(m, nil).Load(); got != viewer.DefaultOptions() {
		t.Errorf("Load() = %+v, want defaults", got)
	}
}
