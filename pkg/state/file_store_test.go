package state_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/goliatone/go-appmap"
	"github.com/goliatone/go-appmap/pkg/state"
	"github.com/jonboulle/clockwork"
)

func TestFileStorePathUsesDefaultFileName(t *testing.T) {
	store := &state.FileStore{Dir: "/addons/mapper"}
	if got, want := store.Path(), filepath.Join("/addons/mapper", state.DefaultFileName); got != want {
		t.Fatalf("expected path %q, got %q", want, got)
	}

	custom := &state.FileStore{Dir: "/addons/mapper", FileName: "mappings.cbor"}
	if got, want := custom.Path(), filepath.Join("/addons/mapper", "mappings.cbor"); got != want {
		t.Fatalf("expected path %q, got %q", want, got)
	}
}

func TestFileStoreLoadMissingFile(t *testing.T) {
	store := state.NewFileStore(t.TempDir())

	_, _, err := store.Load(context.Background())
	if !errors.Is(err, state.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	at := time.Date(2024, 3, 9, 10, 30, 0, 123, time.UTC)
	store := &state.FileStore{Dir: t.TempDir(), Clock: clockwork.NewFakeClockAt(at)}
	table := appmap.Table{
		"notepad": {Application: "notepad", Module: "code", OriginalModule: "notepad"},
		"kate":    {Application: "kate", Module: "code"},
	}

	saved, err := store.Save(context.Background(), table, state.Meta{})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.SnapshotID == "" || saved.Count != 2 || !saved.UpdatedAt.Equal(at) {
		t.Fatalf("unexpected save meta: %+v", saved)
	}

	loaded, meta, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(table, loaded) {
		t.Fatalf("round trip mismatch\nwant: %#v\n got: %#v", table, loaded)
	}
	if meta.SnapshotID != saved.SnapshotID || meta.Count != 2 || !meta.UpdatedAt.Equal(at) {
		t.Fatalf("unexpected loaded meta: %+v", meta)
	}
}

func TestFileStoreRoundTripEmptyTable(t *testing.T) {
	store := state.NewFileStore(t.TempDir())
	if _, err := store.Save(context.Background(), appmap.NewTable(), state.Meta{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, _, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded == nil || loaded.Len() != 0 {
		t.Fatalf("expected empty non-nil table, got %#v", loaded)
	}
}

func TestFileStoreSaveMintsSnapshotPerSave(t *testing.T) {
	store := state.NewFileStore(t.TempDir())
	first, err := store.Save(context.Background(), appmap.NewTable(), state.Meta{})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := store.Save(context.Background(), appmap.NewTable(), state.Meta{})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first.SnapshotID == second.SnapshotID {
		t.Fatalf("expected distinct snapshot IDs, got %q twice", first.SnapshotID)
	}
}

func TestFileStoreLoadCorruptFile(t *testing.T) {
	store := state.NewFileStore(t.TempDir())
	if err := os.WriteFile(store.Path(), []byte{0xff, 0xfe, 0x00, 0x13}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, _, err := store.Load(context.Background())
	var decodeErr *state.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if decodeErr.Path != store.Path() {
		t.Fatalf("expected path %q in error, got %q", store.Path(), decodeErr.Path)
	}
}

func TestFileStoreLoadRejectsDuplicateApplications(t *testing.T) {
	store := state.NewFileStore(t.TempDir())
	raw, err := cbor.Marshal(map[string]any{
		"meta": map[string]any{"count": 2},
		"mappings": []appmap.Mapping{
			{Application: "notepad", Module: "code"},
			{Application: "notepad", Module: "kate"},
		},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(store.Path(), raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, _, err = store.Load(context.Background())
	if !errors.Is(err, appmap.ErrDuplicateApplication) {
		t.Fatalf("expected ErrDuplicateApplication, got %v", err)
	}
}

func TestFileStoreSavePropagatesWriteErrors(t *testing.T) {
	store := state.NewFileStore(filepath.Join(t.TempDir(), "missing", "dir"))

	_, err := store.Save(context.Background(), appmap.NewTable(), state.Meta{})
	if err == nil {
		t.Fatalf("expected write error")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped not-exist error, got %v", err)
	}
}
