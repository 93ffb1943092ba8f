package schema

import "strings"

// Kind describes how a field's value is represented in a storage record.
// Nullable kinds round-trip nil for SQL NULL.
type Kind int

const (
	KindInt64 Kind = iota
	KindInt
	KindText
	KindNullText
	KindBool
	KindTime
	KindNullTime
	KindNullInt64
	KindNullFloat
)

// Textual reports whether the kind participates in substring search.
func (k Kind) Textual() bool {
	return k == KindText || k == KindNullText
}

// Field binds one public field name to its storage column and accessors.
// Accessors are plain closures built at startup: runtime field resolution is
// a map lookup, never reflection.
type Field struct {
	Name   string // public name used in sort/search expressions, camelCase
	Column string
	Kind   Kind
	Get    func(e any) any
	Set    func(e any, v any)
}

// NavKind distinguishes how a navigation joins to its target.
type NavKind int

const (
	// NavRef follows a foreign key held by this entity to one target row.
	NavRef NavKind = iota
	// NavChild loads the single target row holding a foreign key back to
	// this entity (dependent side of a one-to-one).
	NavChild
	// NavChildren loads all target rows holding a foreign key back to this
	// entity.
	NavChildren
)

// Navigation declares a named, eager-loadable relationship.
type Navigation struct {
	Name   string
	Kind   NavKind
	Target func() *Descriptor // deferred: entity graphs are cyclic
	// FK is the foreign-key column: on this table for NavRef, on the
	// target table for NavChild/NavChildren.
	FK string
	// OrderField orders loaded children deterministically (public name on
	// the target). Empty means id order.
	OrderField string
	Assign     func(parent any, related []any)
}

// registry maps entity name to its built descriptor. Navigation targets
// resolve through it lazily: the entity graph is cyclic, and closures that
// reference the descriptor variables directly would put initialization
// cycles in the package.
var registry = map[string]*Descriptor{}

// target defers a navigation's target lookup until first use.
func target(entity string) func() *Descriptor {
	return func() *Descriptor { return registry[strings.ToLower(entity)] }
}

// Descriptor is the compile-time shape registry for one entity type: table,
// fields, searchable allow-list and navigations. Built once at init.
type Descriptor struct {
	Entity      string
	Table       string
	Fields      []Field
	Searchable  []string
	Navigations []Navigation
	New         func() any

	fieldIndex map[string]*Field
	navIndex   map[string]*Navigation
	columns    []string
}

// build finalizes the lookup indexes. Called once from init.
func (d *Descriptor) build() *Descriptor {
	d.fieldIndex = make(map[string]*Field, len(d.Fields))
	d.columns = make([]string, len(d.Fields))
	for i := range d.Fields {
		f := &d.Fields[i]
		d.fieldIndex[strings.ToLower(f.Name)] = f
		d.columns[i] = f.Column
	}
	d.navIndex = make(map[string]*Navigation, len(d.Navigations))
	for i := range d.Navigations {
		n := &d.Navigations[i]
		d.navIndex[strings.ToLower(n.Name)] = n
	}
	registry[strings.ToLower(d.Entity)] = d
	return d
}

// Field resolves a public field name, case-insensitively.
func (d *Descriptor) Field(name string) (*Field, bool) {
	f, ok := d.fieldIndex[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// Navigation resolves a navigation name, case-insensitively.
func (d *Descriptor) Navigation(name string) (*Navigation, bool) {
	n, ok := d.navIndex[strings.ToLower(strings.TrimSpace(name))]
	return n, ok
}

// Columns returns the storage columns in declaration order.
func (d *Descriptor) Columns() []string {
	return d.columns
}

// ValidatePath checks a dotted include path component-by-component against
// this descriptor and, recursively, the target of each navigation.
func (d *Descriptor) ValidatePath(path string) bool {
	current := d
	for _, part := range strings.Split(path, ".") {
		nav, ok := current.Navigation(part)
		if !ok {
			return false
		}
		current = nav.Target()
	}
	return true
}
