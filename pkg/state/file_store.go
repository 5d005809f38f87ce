package state

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
	"github.com/goliatone/go-appmap"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// DefaultFileName is the file the mapping table is stored under.
const DefaultFileName = "customModulesMapping.pickle"

// FileStore keeps the table in a single file inside the add-on's storage
// directory. It does no locking; one writer is assumed.
type FileStore struct {
	Dir      string
	FileName string
	Clock    clockwork.Clock
}

// NewFileStore returns a store writing DefaultFileName inside dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir, FileName: DefaultFileName}
}

var encMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	mode, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}

type fileEnvelope struct {
	Meta     Meta             `cbor:"meta"`
	Mappings []appmap.Mapping `cbor:"mappings"`
}

// Path resolves the table file location.
func (s *FileStore) Path() string {
	name := s.FileName
	if name == "" {
		name = DefaultFileName
	}
	return filepath.Join(s.Dir, name)
}

func (s *FileStore) Load(context.Context) (appmap.Table, Meta, error) {
	path := s.Path()
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, Meta{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, Meta{}, fmt.Errorf("state: read %s: %w", path, err)
	}

	var envelope fileEnvelope
	if err := cbor.Unmarshal(raw, &envelope); err != nil {
		return nil, Meta{}, &DecodeError{Path: path, Err: err}
	}
	table, err := appmap.TableFromMappings(envelope.Mappings)
	if err != nil {
		return nil, Meta{}, &DecodeError{Path: path, Err: err}
	}
	return table, envelope.Meta, nil
}

// Save overwrites the file with table. Errors are returned as-is; a failed
// write may leave a truncated file behind.
func (s *FileStore) Save(_ context.Context, table appmap.Table, meta Meta) (Meta, error) {
	if meta.SnapshotID == "" {
		meta.SnapshotID = uuid.NewString()
	}
	if meta.UpdatedAt.IsZero() {
		meta.UpdatedAt = s.clock().Now().UTC()
	}
	meta.Count = table.Len()

	raw, err := encMode.Marshal(fileEnvelope{Meta: meta, Mappings: table.Mappings()})
	if err != nil {
		return Meta{}, fmt.Errorf("state: encode mapping table: %w", err)
	}
	if err := os.WriteFile(s.Path(), raw, 0o644); err != nil {
		return Meta{}, fmt.Errorf("state: write %s: %w", s.Path(), err)
	}
	return meta, nil
}

func (s *FileStore) clock() clockwork.Clock {
	if s.Clock != nil {
		return s.Clock
	}
	return clockwork.NewRealClock()
}
