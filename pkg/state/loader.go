package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-appmap"
	"github.com/goliatone/go-appmap/pkg/activity"
)

// LoadStatus classifies the outcome of Loader.Load.
type LoadStatus int

const (
	// LoadStatusLoaded means the table was read and re-applied to the host.
	LoadStatusLoaded LoadStatus = iota
	// LoadStatusAbsent means nothing was persisted yet.
	LoadStatusAbsent
	// LoadStatusDecodeFailed means the stored table exists but could not be
	// read or decoded.
	LoadStatusDecodeFailed
	// LoadStatusApplyFailed means the host rejected a re-applied mapping.
	LoadStatusApplyFailed
)

func (s LoadStatus) String() string {
	switch s {
	case LoadStatusLoaded:
		return "loaded"
	case LoadStatusAbsent:
		return "absent"
	case LoadStatusDecodeFailed:
		return "decode_failed"
	case LoadStatusApplyFailed:
		return "apply_failed"
	default:
		return "unknown"
	}
}

// LoadResult describes what Loader.Load did.
type LoadResult struct {
	Status    LoadStatus
	Err       error
	Meta      Meta
	Applied   int
	Restarted bool
}

// OK reports whether the caller got the persisted table (or an empty one
// because nothing was persisted).
func (r LoadResult) OK() bool {
	return r.Status == LoadStatusLoaded || r.Status == LoadStatusAbsent
}

// Loader restores persisted mappings into the host and persists committed
// tables.
type Loader struct {
	Store   Store
	Host    appmap.Host
	Logger  appmap.Logger
	Emitter *activity.Emitter
}

// Load reads the persisted table and re-applies it to the host. It never
// fails: any problem yields an empty table, an error log entry and a result
// describing what went wrong.
func (l Loader) Load(ctx context.Context) (appmap.Table, LoadResult) {
	logger := l.logger()
	if l.Store == nil {
		err := errors.New("state: store is required")
		logger.Log(appmap.LogEvent{Level: appmap.LevelError, Op: appmap.OpLoad, Err: err})
		return appmap.NewTable(), LoadResult{Status: LoadStatusDecodeFailed, Err: err}
	}

	table, meta, err := l.Store.Load(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		logger.Log(appmap.LogEvent{Level: appmap.LevelInfo, Op: appmap.OpCreate, Path: l.path()})
		return appmap.NewTable(), LoadResult{Status: LoadStatusAbsent}
	case err != nil:
		logger.Log(appmap.LogEvent{Level: appmap.LevelError, Op: appmap.OpLoad, Path: l.path(), Err: err})
		return appmap.NewTable(), LoadResult{Status: LoadStatusDecodeFailed, Err: err}
	}
	if table == nil {
		table = appmap.NewTable()
	}
	logger.Log(appmap.LogEvent{Level: appmap.LevelInfo, Op: appmap.OpLoad, Path: l.path(), Count: table.Len()})

	applied, err := appmap.Reapply(ctx, l.Host, table, appmap.WithLogger(logger))
	if err != nil {
		logger.Log(appmap.LogEvent{Level: appmap.LevelError, Op: appmap.OpLoad, Path: l.path(), Err: err})
		return appmap.NewTable(), LoadResult{Status: LoadStatusApplyFailed, Err: err, Meta: meta, Applied: applied}
	}

	if l.Emitter.Enabled() && applied > 0 {
		event := activity.BuildMappingsLoadedEvent(activity.MappingEventInput{SnapshotID: meta.SnapshotID, Count: applied})
		if err := l.Emitter.Emit(ctx, event); err != nil {
			logger.Log(appmap.LogEvent{Level: appmap.LevelWarn, Op: appmap.OpActivity, Err: err})
		}
	}

	return table, LoadResult{
		Status:    LoadStatusLoaded,
		Meta:      meta,
		Applied:   applied,
		Restarted: applied > 0,
	}
}

// Persist saves the whole table, replacing whatever was stored. Errors are
// returned to the caller untouched by any recovery.
func (l Loader) Persist(ctx context.Context, table appmap.Table) (Meta, error) {
	if l.Store == nil {
		return Meta{}, errors.New("state: store is required")
	}
	if err := table.Validate(); err != nil {
		return Meta{}, fmt.Errorf("state: persist: %w", err)
	}
	meta, err := l.Store.Save(ctx, table, Meta{})
	if err != nil {
		return Meta{}, err
	}
	l.logger().Log(appmap.LogEvent{Level: appmap.LevelInfo, Op: appmap.OpSave, Path: l.path(), Count: meta.Count})
	return meta, nil
}

func (l Loader) logger() appmap.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return appmap.LoggerFunc(nil)
}

func (l Loader) path() string {
	if p, ok := l.Store.(interface{ Path() string }); ok {
		return p.Path()
	}
	return ""
}
