package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-appmap/pkg/activity"
	"github.com/goliatone/go-appmap/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsMappingEvent(t *testing.T) {
	sink := &recordingSink{}
	tenantID := uuid.New()
	hook := usersink.Hook{Sink: sink, TenantID: tenantID}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	event := activity.BuildMappingAssociatedEvent(activity.MappingEventInput{
		ActorID:     actorID.String(),
		UserID:      "not-a-uuid",
		Channel:     "appmap",
		CommitID:    "commit-1",
		Application: "notepad",
		Module:      "code",
	})
	event.OccurredAt = now

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID {
		t.Fatalf("expected actor %s got %s", actorID, record.ActorID)
	}
	if record.UserID != uuid.Nil {
		t.Fatalf("expected nil user for unparsable id, got %s", record.UserID)
	}
	if record.TenantID != tenantID {
		t.Fatalf("expected tenant %s got %s", tenantID, record.TenantID)
	}
	if record.Verb != activity.VerbMappingAssociated || record.ObjectType != activity.ObjectTypeMapping || record.ObjectID != "notepad" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "appmap" {
		t.Fatalf("expected channel appmap got %q", record.Channel)
	}
	if !record.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["app"] != "notepad" || record.Data["module"] != "code" || record.Data["commit_id"] != "commit-1" {
		t.Fatalf("unexpected data: %+v", record.Data)
	}
}

func TestHookNotifySkipsIncompleteEvents(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	if err := hook.Notify(context.Background(), activity.Event{Verb: activity.VerbMappingRemoved}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 0 {
		t.Fatalf("expected no records for incomplete event, got %d", len(sink.records))
	}
}

func TestHookNotifyReturnsSinkError(t *testing.T) {
	boom := errors.New("sink down")
	hook := usersink.Hook{Sink: &recordingSink{err: boom}}

	err := hook.Notify(context.Background(), activity.BuildMappingsLoadedEvent(activity.MappingEventInput{Count: 2}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}

func TestHookWithoutSinkIsNoop(t *testing.T) {
	hook := usersink.Hook{}
	if err := hook.Notify(context.Background(), activity.BuildMappingRemovedEvent(activity.MappingEventInput{Application: "x"})); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
