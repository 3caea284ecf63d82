package persist

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestBoltStoreExists(t *testing.T) {
	store := NewBoltStore(filepath.Join(t.TempDir(), "vault.db"))

	exists, err := store.Exists()
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("Store should not exist before first save")
	}

	if err := store.Save([]byte("{}")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	exists, err = store.Exists()
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("Store should exist after save")
	}
}

func TestBoltStoreSaveLoad(t *testing.T) {
	store := NewBoltStore(filepath.Join(t.TempDir(), "vault.db"))

	want := []byte(`{"version":1}`)
	if err := store.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Load mismatch: got %q, want %q", got, want)
	}

	want = []byte(`{"version":1,"secrets":{}}`)
	if err := store.Save(want); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}
	got, err = store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Load after overwrite mismatch: got %q, want %q", got, want)
	}
}

func TestBoltStoreLoadBeforeSave(t *testing.T) {
	store := NewBoltStore(filepath.Join(t.TempDir(), "vault.db"))
	if _, err := store.Load(); err == nil {
		t.Error("Load before any save should fail")
	}
}
