// Package kvtest holds the behaviour checks every kv driver must pass.
package kvtest

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"kanbancore/internal/kv/core"
)

// Exercise runs the shared read, overwrite and delete checks against store.
func Exercise(t *testing.T, store core.Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Get(ctx, "kanban-enterprise"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing key, got %v", err)
	}
	if ok, err := store.Delete(ctx, "kanban-enterprise"); err != nil || ok {
		t.Fatalf("expected delete of missing key to report false, got %v %v", ok, err)
	}

	first := []byte(`{"version":1}`)
	if err := store.Put(ctx, "kanban-enterprise", first); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.Get(ctx, "kanban-enterprise")
	if err != nil || !bytes.Equal(got, first) {
		t.Fatalf("expected %s, got %s (err %v)", first, got, err)
	}

	second := []byte(`{"version":1,"projects":[]}`)
	if err := store.Put(ctx, "kanban-enterprise", second); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err = store.Get(ctx, "kanban-enterprise")
	if err != nil || !bytes.Equal(got, second) {
		t.Fatalf("expected overwrite to win, got %s (err %v)", got, err)
	}

	if err := store.Put(ctx, "other", []byte("x")); err != nil {
		t.Fatalf("put other: %v", err)
	}
	if ok, err := store.Delete(ctx, "kanban-enterprise"); err != nil || !ok {
		t.Fatalf("expected delete to report true, got %v %v", ok, err)
	}
	if _, err := store.Get(ctx, "kanban-enterprise"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if v, err := store.Get(ctx, "other"); err != nil || string(v) != "x" {
		t.Fatalf("expected unrelated key untouched, got %q %v", v, err)
	}
}
