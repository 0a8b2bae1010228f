// Package store persists the four record kinds of a meeting (rooms,
// participants, polls, votes) behind one document-style contract:
// insert, point/filtered lookup, count, field update and bulk delete,
// where a Filter is an equality conjunction on record fields.
package store

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("store: not found")
	ErrDuplicate    = errors.New("store: duplicate key")
	ErrUnknownField = errors.New("store: unknown field")
)

// Filter is an equality conjunction: every key must equal its value.
// An empty Filter matches everything.
type Filter map[string]any

// Fields is the set of field assignments applied by Update.
type Fields map[string]any

// Collection is the per-kind persistence contract.
type Collection[T any] interface {
	Insert(ctx context.Context, rec T) error
	FindOne(ctx context.Context, f Filter) (T, error)
	FindMany(ctx context.Context, f Filter) ([]T, error)
	Count(ctx context.Context, f Filter) (int, error)
	Update(ctx context.Context, f Filter, set Fields) (int, error)
	DeleteMany(ctx context.Context, f Filter) (int, error)
}

type Store interface {
	Rooms() Collection[Room]
	Participants() Collection[Participant]
	Polls() Collection[Poll]
	Votes() Collection[Vote]
	Close()
}

// kind describes one record type: its table, its fields and which of
// them can be filtered on or updated.
type kind[T any] struct {
	table   string
	columns []string // insert/select order
	filters []string // comparable fields
	mutable []string
	order   string // FindMany ordering column

	values   func(T) []any // aligned with columns
	set      func(*T, string, any) error
	conflict func(a, b T) bool // uniqueness violation between two records
	clone    func(T) T
}

func (k *kind[T]) checkFilter(f Filter) error {
	for name := range f {
		if !contains(k.filters, name) {
			return fmt.Errorf("%w: %s.%s", ErrUnknownField, k.table, name)
		}
	}
	return nil
}

func (k *kind[T]) checkFields(set Fields) error {
	if len(set) == 0 {
		return fmt.Errorf("%w: empty update on %s", ErrUnknownField, k.table)
	}
	for name := range set {
		if !contains(k.mutable, name) {
			return fmt.Errorf("%w: %s.%s is not updatable", ErrUnknownField, k.table, name)
		}
	}
	return nil
}

// get returns the value of a named column of rec.
func (k *kind[T]) get(rec T, name string) (any, bool) {
	vals := k.values(rec)
	for i, c := range k.columns {
		if c == name {
			return vals[i], true
		}
	}
	return nil, false
}

func (k *kind[T]) matches(rec T, f Filter) bool {
	for name, want := range f {
		got, ok := k.get(rec, name)
		if !ok || got != want {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
