package kvstore

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundtrip(t *testing.T) {
	s := openTestStore(t)

	if err := s.Put("fortuna:coinflip:history", `[{"id":1}]`); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := s.Get("fortuna:coinflip:history")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected key to exist")
	}
	if got != `[{"id":1}]` {
		t.Errorf("value = %q", got)
	}
}

func TestGetMissingKey(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.Get("never-written")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Error("missing key reported as present")
	}
}

func TestPutOverwrites(t *testing.T) {
	s := openTestStore(t)

	if err := s.Put("k", "first"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put("k", "second"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, _, err := s.Get("k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "second" {
		t.Errorf("value = %q, want %q", got, "second")
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)

	if err := s.Put("k", "v"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Delete("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get("k"); ok {
		t.Error("key still present after delete")
	}

	// Deleting again is a no-op.
	if err := s.Delete("k"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}
