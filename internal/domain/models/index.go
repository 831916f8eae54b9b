package models

import (
	"fmt"
	"sort"
)

// IndexEntry is one member of a market index.
type IndexEntry struct {
	Ticker      string `json:"symbol"`
	DisplayName string `json:"name"`
}

// Registry is the immutable, ordered universe of a market index.
type Registry struct {
	name    string
	entries []IndexEntry
}

// NewRegistry copies entries so later changes to the caller's slice are not observed.
func NewRegistry(name string, entries []IndexEntry) *Registry {
	cp := make([]IndexEntry, len(entries))
	copy(cp, entries)
	return &Registry{name: name, entries: cp}
}

// Name returns the index selector, e.g. "djia".
func (r *Registry) Name() string { return r.name }

// Len returns the number of entries.
func (r *Registry) Len() int { return len(r.entries) }

// Entries returns a copy of the entries in registry order.
func (r *Registry) Entries() []IndexEntry {
	cp := make([]IndexEntry, len(r.entries))
	copy(cp, r.entries)
	return cp
}

// IndexBook holds every configured registry keyed by selector.
type IndexBook struct {
	byName map[string]*Registry
}

// NewIndexBook builds a book; duplicate or empty names are rejected.
func NewIndexBook(registries ...*Registry) (*IndexBook, error) {
	b := &IndexBook{byName: make(map[string]*Registry, len(registries))}
	for _, r := range registries {
		if r == nil || r.name == "" {
			return nil, fmt.Errorf("index book: registry name is required")
		}
		if _, dup := b.byName[r.name]; dup {
			return nil, fmt.Errorf("index book: duplicate index %q", r.name)
		}
		b.byName[r.name] = r
	}
	return b, nil
}

// Lookup resolves a selector to its registry.
func (b *IndexBook) Lookup(name string) (*Registry, bool) {
	r, ok := b.byName[name]
	return r, ok
}

// Names returns the configured selectors, sorted.
func (b *IndexBook) Names() []string {
	names := make([]string, 0, len(b.byName))
	for n := range b.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
