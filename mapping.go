package appmap

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrEmptyApplication     = errors.New("appmap: application must not be empty")
	ErrEmptyModule          = errors.New("appmap: module must not be empty")
	ErrDuplicateApplication = errors.New("appmap: duplicate application")
)

// Mapping associates an application identifier with the handler module the
// host should load for it. OriginalModule holds whatever the host had
// configured before the override; empty means there was nothing to restore.
type Mapping struct {
	Application    string `json:"app" cbor:"app"`
	Module         string `json:"module" cbor:"module"`
	OriginalModule string `json:"original_module,omitempty" cbor:"original_module,omitempty"`
}

// HasOriginal reports whether removing the override should restore a module.
func (m Mapping) HasOriginal() bool {
	return m.OriginalModule != ""
}

// Validate checks the fields required to register the mapping with a host.
func (m Mapping) Validate() error {
	if strings.TrimSpace(m.Application) == "" {
		return ErrEmptyApplication
	}
	if strings.TrimSpace(m.Module) == "" {
		return fmt.Errorf("%w: application %q", ErrEmptyModule, m.Application)
	}
	return nil
}

func (m Mapping) String() string {
	if m.HasOriginal() {
		return fmt.Sprintf("%s -> %s (was %s)", m.Application, m.Module, m.OriginalModule)
	}
	return fmt.Sprintf("%s -> %s", m.Application, m.Module)
}

// Table is the persisted set of overrides keyed by application.
type Table map[string]Mapping

// NewTable returns an empty table.
func NewTable() Table {
	return Table{}
}

// TableFromMappings builds a table, rejecting invalid records and repeated
// applications.
func TableFromMappings(mappings []Mapping) (Table, error) {
	table := make(Table, len(mappings))
	for _, m := range mappings {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if _, exists := table[m.Application]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateApplication, m.Application)
		}
		table[m.Application] = m
	}
	return table, nil
}

// Keys returns the applications in ascending order.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for key := range t {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Mappings returns the records ordered by application.
func (t Table) Mappings() []Mapping {
	out := make([]Mapping, 0, len(t))
	for _, key := range t.Keys() {
		out = append(out, t[key])
	}
	return out
}

// Get returns the mapping for app.
func (t Table) Get(app string) (Mapping, bool) {
	m, ok := t[app]
	return m, ok
}

func (t Table) Len() int {
	return len(t)
}

// Clone returns an independent copy. A nil table clones to an empty one.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for key, value := range t {
		out[key] = value
	}
	return out
}

// Validate checks every record and that each record is stored under its own
// application key.
func (t Table) Validate() error {
	for key, m := range t {
		if err := m.Validate(); err != nil {
			return err
		}
		if key != m.Application {
			return fmt.Errorf("appmap: table key %q holds mapping for %q", key, m.Application)
		}
	}
	return nil
}
