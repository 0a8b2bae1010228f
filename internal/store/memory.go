package store

import (
	"context"
	"fmt"
	"sync"
)

// Memory is a process-local Store. Records are kept in insertion order,
// which is also creation order.
type Memory struct {
	rooms        *memCollection[Room]
	participants *memCollection[Participant]
	polls        *memCollection[Poll]
	votes        *memCollection[Vote]
}

func NewMemory() *Memory {
	return &Memory{
		rooms:        &memCollection[Room]{k: roomKind},
		participants: &memCollection[Participant]{k: participantKind},
		polls:        &memCollection[Poll]{k: pollKind},
		votes:        &memCollection[Vote]{k: voteKind},
	}
}

func (m *Memory) Rooms() Collection[Room]               { return m.rooms }
func (m *Memory) Participants() Collection[Participant] { return m.participants }
func (m *Memory) Polls() Collection[Poll]               { return m.polls }
func (m *Memory) Votes() Collection[Vote]               { return m.votes }
func (m *Memory) Close()                                {}

type memCollection[T any] struct {
	mu   sync.RWMutex
	k    *kind[T]
	rows []T
}

// Insert checks uniqueness and appends under one lock, so concurrent
// inserts of conflicting records cannot both succeed.
func (c *memCollection[T]) Insert(ctx context.Context, rec T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.rows {
		if c.k.conflict(r, rec) {
			return fmt.Errorf("%w: %s", ErrDuplicate, c.k.table)
		}
	}
	c.rows = append(c.rows, c.k.clone(rec))
	return nil
}

func (c *memCollection[T]) FindOne(ctx context.Context, f Filter) (T, error) {
	var zero T
	if err := c.k.checkFilter(f); err != nil {
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.rows {
		if c.k.matches(r, f) {
			return c.k.clone(r), nil
		}
	}
	return zero, ErrNotFound
}

func (c *memCollection[T]) FindMany(ctx context.Context, f Filter) ([]T, error) {
	if err := c.k.checkFilter(f); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []T
	for _, r := range c.rows {
		if c.k.matches(r, f) {
			out = append(out, c.k.clone(r))
		}
	}
	return out, nil
}

func (c *memCollection[T]) Count(ctx context.Context, f Filter) (int, error) {
	if err := c.k.checkFilter(f); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, r := range c.rows {
		if c.k.matches(r, f) {
			n++
		}
	}
	return n, nil
}

func (c *memCollection[T]) Update(ctx context.Context, f Filter, set Fields) (int, error) {
	if err := c.k.checkFilter(f); err != nil {
		return 0, err
	}
	if err := c.k.checkFields(set); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for i := range c.rows {
		if !c.k.matches(c.rows[i], f) {
			continue
		}
		for name, v := range set {
			if err := c.k.set(&c.rows[i], name, v); err != nil {
				return n, err
			}
		}
		n++
	}
	return n, nil
}

func (c *memCollection[T]) DeleteMany(ctx context.Context, f Filter) (int, error) {
	if err := c.k.checkFilter(f); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.rows[:0]
	n := 0
	for _, r := range c.rows {
		if c.k.matches(r, f) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	c.rows = kept
	return n, nil
}
