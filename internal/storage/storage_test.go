package storage

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "hackdash.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func exerciseKV(t *testing.T, kv KV) {
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, KeyAuthToken); err != nil || ok {
		t.Fatalf("Get on empty store = ok %v, err %v", ok, err)
	}

	if err := kv.Set(ctx, KeyAuthToken, "abc"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Set(ctx, KeyAuthToken, "def"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, ok, err := kv.Get(ctx, KeyAuthToken)
	if err != nil || !ok || v != "def" {
		t.Fatalf("Get = %q, %v, %v; want def", v, ok, err)
	}

	_ = kv.Set(ctx, DraftKey("7"), "{}")
	_ = kv.Set(ctx, DraftKey("12"), "{}")
	_ = kv.Set(ctx, "submissionDraftX", "{}")
	keys, err := kv.Keys(ctx, "submissionDraft:")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	want := []string{"submissionDraft:12", "submissionDraft:7"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("Keys = %v, want %v", keys, want)
	}

	if err := kv.Delete(ctx, KeyAuthToken); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := kv.Delete(ctx, KeyAuthToken); err != nil {
		t.Fatalf("Delete missing key: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, KeyAuthToken); ok {
		t.Error("expected key to be gone after Delete")
	}
}

func TestStore(t *testing.T) {
	exerciseKV(t, openTestStore(t))
}

func TestMemory(t *testing.T) {
	exerciseKV(t, NewMemory())
}

func TestStorePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Set(ctx, KeyAuthToken, "persisted"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	v, ok, err := s.Get(ctx, KeyAuthToken)
	if err != nil || !ok || v != "persisted" {
		t.Fatalf("Get after reopen = %q, %v, %v", v, ok, err)
	}
	if s.Path() != path {
		t.Errorf("Path() = %q", s.Path())
	}
}

func TestKeysEscapesWildcards(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_ = s.Set(ctx, "a_b", "1")
	_ = s.Set(ctx, "axb", "1")

	keys, err := s.Keys(ctx, "a_")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "a_b" {
		t.Errorf("Keys(a_) = %v, want [a_b]", keys)
	}
}
