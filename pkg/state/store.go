package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-appmap"
)

// ErrNotFound reports that no table has been persisted yet.
var ErrNotFound = errors.New("state: mapping table not found")

// Meta is storage-owned metadata recorded with every save.
type Meta struct {
	SnapshotID string    `json:"snapshot_id,omitempty" cbor:"snapshot_id,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty" cbor:"updated_at,omitempty"`
	Count      int       `json:"count" cbor:"count"`
}

// Store loads and saves the whole mapping table.
type Store interface {
	// Load returns ErrNotFound when nothing was saved and a *DecodeError when
	// the stored table cannot be read back.
	Load(ctx context.Context) (appmap.Table, Meta, error)
	// Save replaces the stored table.
	Save(ctx context.Context, table appmap.Table, meta Meta) (Meta, error)
}

// DecodeError reports a persisted table that exists but cannot be decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path == "" {
		return fmt.Sprintf("state: decode mapping table: %v", e.Err)
	}
	return fmt.Sprintf("state: decode mapping table %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
