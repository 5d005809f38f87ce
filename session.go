package appmap

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-appmap/pkg/activity"
	"github.com/google/uuid"
)

// Session is a single editing pass over the mapping table. It is not safe for
// concurrent use; the UI surface drives it from one event loop.
type Session struct {
	host    Host
	cfg     config
	entries map[string]*StagedEntry
	closed  bool
}

// CommitReport summarizes the host changes a commit performed. Application
// lists are in commit order.
type CommitReport struct {
	ID          string
	Added       []string
	Modified    []string
	Removed     []string
	Restored    []string
	Restarted   bool
	CommittedAt time.Time
}

// Changed reports whether the commit touched the host.
func (r CommitReport) Changed() bool {
	return len(r.Added)+len(r.Modified)+len(r.Removed) > 0
}

// Stage seeds a session from table with every entry marked keep.
func Stage(table Table, host Host, opts ...Option) *Session {
	entries := make(map[string]*StagedEntry, len(table))
	for app, m := range table {
		entries[app] = &StagedEntry{Mapping: m, Action: ActionKeep}
	}
	return &Session{
		host:    host,
		cfg:     applyOptions(opts),
		entries: entries,
	}
}

// MarkAdd stages app -> module. Editing an already staged application keeps
// the original module captured by the first edit; otherwise the original is
// resolved from the host.
func (s *Session) MarkAdd(ctx context.Context, app, module string) error {
	if s.closed {
		return ErrSessionClosed
	}
	app = strings.TrimSpace(app)
	module = strings.TrimSpace(module)
	if app == "" {
		return ErrEmptyApplication
	}
	if module == "" {
		return ErrEmptyModule
	}

	if existing, ok := s.entries[app]; ok {
		action := ActionModify
		if existing.Action == ActionRemove {
			action = ActionAdd
		}
		s.entries[app] = &StagedEntry{
			Mapping: Mapping{
				Application:    app,
				Module:         module,
				OriginalModule: existing.OriginalModule,
			},
			Action: action,
		}
		return nil
	}

	if s.host == nil {
		return ErrHostRequired
	}
	original, _, err := Resolve(ctx, s.host, app)
	if err != nil {
		return err
	}
	s.entries[app] = &StagedEntry{
		Mapping: Mapping{
			Application:    app,
			Module:         module,
			OriginalModule: original,
		},
		Action: ActionAdd,
	}
	return nil
}

// MarkRemove flags app for removal. The entry stays staged until commit.
func (s *Session) MarkRemove(app string) error {
	if s.closed {
		return ErrSessionClosed
	}
	entry, ok := s.entries[strings.TrimSpace(app)]
	if !ok {
		return ErrUnknownApplication
	}
	entry.Action = ActionRemove
	return nil
}

// Entry returns the staged entry for app.
func (s *Session) Entry(app string) (StagedEntry, bool) {
	entry, ok := s.entries[app]
	if !ok {
		return StagedEntry{}, false
	}
	return *entry, true
}

// Entries returns every staged entry, removals included, ordered by
// application.
func (s *Session) Entries() []StagedEntry {
	out := make([]StagedEntry, 0, len(s.entries))
	for _, app := range s.keys() {
		out = append(out, *s.entries[app])
	}
	return out
}

// Visible returns the mappings that will survive a commit, ordered by
// application.
func (s *Session) Visible() []Mapping {
	out := make([]Mapping, 0, len(s.entries))
	for _, app := range s.keys() {
		entry := s.entries[app]
		if entry.Action == ActionRemove {
			continue
		}
		out = append(out, entry.Mapping)
	}
	return out
}

// Pending reports whether a commit would touch the host.
func (s *Session) Pending() bool {
	for _, entry := range s.entries {
		if entry.Action.Pending() {
			return true
		}
	}
	return false
}

// Commit applies the staged changes to the host in application order and
// returns the resulting table. The host is restarted once when anything
// changed. The session cannot be used afterwards, even when a host call
// fails; the caller persists the returned table.
func (s *Session) Commit(ctx context.Context) (Table, CommitReport, error) {
	if s.closed {
		return nil, CommitReport{}, ErrSessionClosed
	}
	s.closed = true
	if s.host == nil {
		return nil, CommitReport{}, ErrHostRequired
	}

	logger := s.cfg.loggerOrNoop()
	report := CommitReport{ID: uuid.NewString()}
	table := make(Table, len(s.entries))
	var events []activity.Event

	for _, app := range s.keys() {
		entry := s.entries[app]
		m := entry.Mapping
		input := activity.MappingEventInput{
			CommitID:       report.ID,
			Application:    m.Application,
			Module:         m.Module,
			OriginalModule: m.OriginalModule,
		}

		switch entry.Action {
		case ActionAdd, ActionModify:
			op := OpAssociate
			if entry.Action == ActionModify {
				op = OpModify
			}
			logger.Log(LogEvent{Level: LevelInfo, Op: op, Application: m.Application, Module: m.Module})
			if err := s.host.Register(ctx, m.Application, m.Module); err != nil {
				return nil, report, &HostError{Op: HostOpRegister, Application: m.Application, Err: err}
			}
			table[app] = m
			if entry.Action == ActionAdd {
				report.Added = append(report.Added, app)
				events = append(events, activity.BuildMappingAssociatedEvent(input))
			} else {
				report.Modified = append(report.Modified, app)
				events = append(events, activity.BuildMappingModifiedEvent(input))
			}
		case ActionRemove:
			logger.Log(LogEvent{Level: LevelInfo, Op: OpDisassociate, Application: m.Application, Module: m.Module})
			if err := s.host.Unregister(ctx, m.Application); err != nil {
				return nil, report, &HostError{Op: HostOpUnregister, Application: m.Application, Err: err}
			}
			report.Removed = append(report.Removed, app)
			events = append(events, activity.BuildMappingRemovedEvent(input))
			if m.HasOriginal() {
				if err := s.host.Register(ctx, m.Application, m.OriginalModule); err != nil {
					return nil, report, &HostError{Op: HostOpRegister, Application: m.Application, Err: err}
				}
				logger.Log(LogEvent{Level: LevelInfo, Op: OpRestore, Application: m.Application, Module: m.OriginalModule})
				report.Restored = append(report.Restored, app)
				events = append(events, activity.BuildMappingRestoredEvent(input))
			}
		default:
			table[app] = m
		}
	}

	if report.Changed() {
		logger.Log(LogEvent{Level: LevelInfo, Op: OpRestart, Count: len(report.Added) + len(report.Modified) + len(report.Removed)})
		if err := s.host.Restart(ctx); err != nil {
			return nil, report, &HostError{Op: HostOpRestart, Err: err}
		}
		report.Restarted = true
	}
	report.CommittedAt = s.cfg.clockOrReal().Now()

	s.emit(ctx, report.CommittedAt, events)
	return table, report, nil
}

func (s *Session) emit(ctx context.Context, at time.Time, events []activity.Event) {
	if !s.cfg.emitter.Enabled() {
		return
	}
	logger := s.cfg.loggerOrNoop()
	for _, event := range events {
		event.OccurredAt = at
		if err := s.cfg.emitter.Emit(ctx, event); err != nil {
			logger.Log(LogEvent{Level: LevelWarn, Op: OpActivity, Application: event.ObjectID, Err: err})
		}
	}
}

func (s *Session) keys() []string {
	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
