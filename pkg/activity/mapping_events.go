package activity

import "strings"

// Verbs emitted for mapping lifecycle events.
const (
	VerbMappingAssociated = "mapping.associated"
	VerbMappingModified   = "mapping.modified"
	VerbMappingRemoved    = "mapping.removed"
	VerbMappingRestored   = "mapping.restored"
	VerbMappingsLoaded    = "mappings.loaded"
)

// Object types attached to mapping events.
const (
	ObjectTypeMapping  = "mapping"
	ObjectTypeMappings = "mappings"
)

// MappingEventInput carries the fields shared by mapping events.
type MappingEventInput struct {
	ActorID        string
	UserID         string
	Channel        string
	CommitID       string
	SnapshotID     string
	Application    string
	Module         string
	OriginalModule string
	Count          int
	Metadata       map[string]any
}

func BuildMappingAssociatedEvent(input MappingEventInput) Event {
	return buildMappingEvent(VerbMappingAssociated, input)
}

func BuildMappingModifiedEvent(input MappingEventInput) Event {
	return buildMappingEvent(VerbMappingModified, input)
}

func BuildMappingRemovedEvent(input MappingEventInput) Event {
	return buildMappingEvent(VerbMappingRemoved, input)
}

// BuildMappingRestoredEvent reports the original module being registered
// again after an override was removed.
func BuildMappingRestoredEvent(input MappingEventInput) Event {
	event := buildMappingEvent(VerbMappingRestored, input)
	if input.OriginalModule != "" {
		event.Metadata["module"] = input.OriginalModule
	}
	return event
}

// BuildMappingsLoadedEvent describes a persisted table being re-applied at
// startup. The object ID falls back to the object type when no snapshot ID
// is known.
func BuildMappingsLoadedEvent(input MappingEventInput) Event {
	objectID := strings.TrimSpace(input.SnapshotID)
	if objectID == "" {
		objectID = ObjectTypeMappings
	}
	metadata := cloneMap(input.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["count"] = input.Count
	if input.SnapshotID != "" {
		metadata["snapshot_id"] = input.SnapshotID
	}
	return Event{
		Verb:       VerbMappingsLoaded,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		ObjectType: ObjectTypeMappings,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
	}
}

func buildMappingEvent(verb string, input MappingEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	if input.Module != "" {
		metadata["module"] = input.Module
	}
	if input.OriginalModule != "" {
		metadata["original_module"] = input.OriginalModule
	}
	if input.CommitID != "" {
		metadata["commit_id"] = input.CommitID
	}
	if input.SnapshotID != "" {
		metadata["snapshot_id"] = input.SnapshotID
	}
	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		ObjectType: ObjectTypeMapping,
		ObjectID:   strings.TrimSpace(input.Application),
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
	}
}
