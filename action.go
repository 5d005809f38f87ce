package appmap

// Action is the pending change recorded against a staged entry.
type Action int

const (
	// ActionKeep leaves the persisted mapping untouched.
	ActionKeep Action = iota
	// ActionAdd registers a mapping for an application without a prior override.
	ActionAdd
	// ActionModify replaces the module of an existing override.
	ActionModify
	// ActionRemove drops the override and restores the original module.
	ActionRemove
)

func (a Action) String() string {
	switch a {
	case ActionKeep:
		return "keep"
	case ActionAdd:
		return "add"
	case ActionModify:
		return "modify"
	case ActionRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Pending reports whether committing the action touches the host.
func (a Action) Pending() bool {
	return a == ActionAdd || a == ActionModify || a == ActionRemove
}

// StagedEntry is a mapping annotated with the change the session will apply.
type StagedEntry struct {
	Mapping
	Action Action
}
