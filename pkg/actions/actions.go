// Package actions maps the visible label of a clicked element to what the
// page does in response: show a toast or scroll a section into view.
//
// The mapping is data. A default table is embedded; a YAML file can
// replace it and is reloaded when it changes.
package actions

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultTable []byte

// Placeholder is replaced by the clicked element's label in role templates.
const Placeholder = "{label}"

// ErrInvalidAction is returned for an action that is neither a notification
// nor a scroll, or is both.
var ErrInvalidAction = errors.New("actions: invalid action")

// Kind is what an action does.
type Kind string

const (
	KindNotify Kind = "notify"
	KindScroll Kind = "scroll"
)

// Action is a single entry of the table.
type Action struct {
	Notify   string `yaml:"notify,omitempty"`
	Severity string `yaml:"severity,omitempty"`
	Display  string `yaml:"display,omitempty"`
	Scroll   string `yaml:"scroll,omitempty"`
}

// Kind reports what the action does.
func (a Action) Kind() Kind {
	if a.Scroll != "" {
		return KindScroll
	}
	return KindNotify
}

// DisplayFor returns the toast display duration, or zero for the default.
func (a Action) DisplayFor() time.Duration {
	d, _ := time.ParseDuration(a.Display)
	return d
}

func (a Action) validate() error {
	switch {
	case a.Notify == "" && a.Scroll == "":
		return fmt.Errorf("%w: needs notify or scroll", ErrInvalidAction)
	case a.Notify != "" && a.Scroll != "":
		return fmt.Errorf("%w: notify and scroll are exclusive", ErrInvalidAction)
	}
	switch a.Severity {
	case "", "info", "success", "error":
	default:
		return fmt.Errorf("%w: unknown severity %q", ErrInvalidAction, a.Severity)
	}
	if a.Display != "" {
		d, err := time.ParseDuration(a.Display)
		if err != nil {
			return fmt.Errorf("%w: display: %v", ErrInvalidAction, err)
		}
		if d <= 0 {
			return fmt.Errorf("%w: display must be positive", ErrInvalidAction)
		}
	}
	return nil
}

func (a Action) expand(label string) Action {
	a.Notify = strings.ReplaceAll(a.Notify, Placeholder, label)
	a.Scroll = strings.ReplaceAll(a.Scroll, Placeholder, label)
	return a
}

// Role holds the actions for one family of elements. Labels take
// precedence over Default.
type Role struct {
	Default *Action           `yaml:"default,omitempty"`
	Labels  map[string]Action `yaml:"labels,omitempty"`
}

// Table is the full label to action mapping.
type Table struct {
	Labels map[string]Action `yaml:"labels"`
	Roles  map[string]Role   `yaml:"roles"`
}

// Default returns the embedded table.
func Default() *Table {
	t, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("actions: embedded table: %v", err))
	}
	return t
}

// DefaultYAML returns the embedded table source.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultTable...)
}

// Parse decodes and validates a YAML table.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("actions: parse: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Load reads a table from path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("actions: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Validate checks every action in the table.
func (t *Table) Validate() error {
	var errs []error
	for label, a := range t.Labels {
		if err := a.validate(); err != nil {
			errs = append(errs, fmt.Errorf("label %q: %w", label, err))
		}
	}
	for name, r := range t.Roles {
		if r.Default != nil {
			if err := r.Default.validate(); err != nil {
				errs = append(errs, fmt.Errorf("role %q default: %w", name, err))
			}
		}
		for label, a := range r.Labels {
			if err := a.validate(); err != nil {
				errs = append(errs, fmt.Errorf("role %q label %q: %w", name, label, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Lookup returns the action for a button label. Surrounding whitespace is
// ignored; unknown labels report false.
func (t *Table) Lookup(label string) (Action, bool) {
	a, ok := t.Labels[strings.TrimSpace(label)]
	return a, ok
}

// ForRole returns the action for an element of the given role. A role with
// no entry in the table falls back to Lookup.
func (t *Table) ForRole(role, label string) (Action, bool) {
	label = strings.TrimSpace(label)
	r, ok := t.Roles[role]
	if !ok {
		return t.Lookup(label)
	}
	if a, ok := r.Labels[label]; ok {
		return a.expand(label), true
	}
	if r.Default != nil {
		return r.Default.expand(label), true
	}
	return Action{}, false
}

// LabelNames returns the top-level labels in sorted order.
func (t *Table) LabelNames() []string {
	names := make([]string, 0, len(t.Labels))
	for name := range t.Labels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RoleNames returns the role names in sorted order.
func (t *Table) RoleNames() []string {
	names := make([]string, 0, len(t.Roles))
	for name := range t.Roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Targets returns every scroll target the table refers to, sorted and
// without duplicates.
func (t *Table) Targets() []string {
	seen := make(map[string]bool)
	add := func(a Action) {
		if a.Scroll != "" {
			seen[a.Scroll] = true
		}
	}
	for _, a := range t.Labels {
		add(a)
	}
	for _, r := range t.Roles {
		if r.Default != nil {
			add(*r.Default)
		}
		for _, a := range r.Labels {
			add(a)
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
