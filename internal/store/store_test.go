package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemoryInsertAndFind(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	timer := 3
	p := Poll{PollID: "p1", RoomID: "R1", Question: "Q?", Options: []string{"Red", "Blue"}, TimerMinutes: &timer, CreatedAt: time.Now()}
	if err := m.Polls().Insert(ctx, p); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// mutating the caller's copy must not leak into the store
	p.Options[0] = "Green"
	*p.TimerMinutes = 9

	got, err := m.Polls().FindOne(ctx, Filter{FieldPollID: "p1"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !reflect.DeepEqual(got.Options, []string{"Red", "Blue"}) {
		t.Errorf("expected stored options [Red Blue], got %v", got.Options)
	}
	if got.TimerMinutes == nil || *got.TimerMinutes != 3 {
		t.Errorf("expected timer 3, got %v", got.TimerMinutes)
	}

	if _, err := m.Polls().FindOne(ctx, Filter{FieldPollID: "nope"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryFilterCountUpdateDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	ps := m.Participants()

	for i, status := range []string{StatusPending, StatusApproved, StatusPending} {
		err := ps.Insert(ctx, Participant{
			ParticipantID:    fmt.Sprintf("id%d", i),
			RoomID:           "ROOM1",
			ParticipantName:  fmt.Sprintf("n%d", i),
			ParticipantToken: fmt.Sprintf("tok%d", i),
			ApprovalStatus:   status,
		})
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	_ = ps.Insert(ctx, Participant{ParticipantID: "other", RoomID: "ROOM2", ParticipantToken: "tokX", ApprovalStatus: StatusPending})

	n, err := ps.Count(ctx, Filter{FieldRoomID: "ROOM1", FieldApprovalStatus: StatusPending})
	if err != nil || n != 2 {
		t.Fatalf("expected 2 pending, got %d (%v)", n, err)
	}

	updated, err := ps.Update(ctx, Filter{FieldParticipantID: "id0"}, Fields{FieldApprovalStatus: StatusApproved})
	if err != nil || updated != 1 {
		t.Fatalf("expected 1 updated, got %d (%v)", updated, err)
	}

	list, _ := ps.FindMany(ctx, Filter{FieldRoomID: "ROOM1", FieldApprovalStatus: StatusApproved})
	if len(list) != 2 || list[0].ParticipantID != "id0" || list[1].ParticipantID != "id1" {
		t.Errorf("expected id0,id1 approved in insertion order, got %+v", list)
	}

	deleted, err := ps.DeleteMany(ctx, Filter{FieldRoomID: "ROOM1"})
	if err != nil || deleted != 3 {
		t.Fatalf("expected 3 deleted, got %d (%v)", deleted, err)
	}
	if n, _ := ps.Count(ctx, Filter{}); n != 1 {
		t.Errorf("expected 1 remaining, got %d", n)
	}
}

func TestMemoryRejectsUnknownFields(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	tests := []struct {
		name string
		run  func() error
	}{
		{"filter on options", func() error {
			_, err := m.Polls().FindMany(ctx, Filter{"options": "x"})
			return err
		}},
		{"update question", func() error {
			_, err := m.Polls().Update(ctx, Filter{}, Fields{"question": "x"})
			return err
		}},
		{"update vote", func() error {
			_, err := m.Votes().Update(ctx, Filter{}, Fields{FieldSelectedOption: "x"})
			return err
		}},
		{"empty update", func() error {
			_, err := m.Rooms().Update(ctx, Filter{}, Fields{})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, ErrUnknownField) {
				t.Errorf("expected ErrUnknownField, got %v", err)
			}
		})
	}
}

func TestMemoryRoomUniqueAmongActive(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.Rooms().Insert(ctx, Room{RoomID: "MEET01", IsActive: true}); err != nil {
		t.Fatal(err)
	}
	if err := m.Rooms().Insert(ctx, Room{RoomID: "MEET01", IsActive: true}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	if _, err := m.Rooms().Update(ctx, Filter{FieldRoomID: "MEET01"}, Fields{FieldIsActive: false}); err != nil {
		t.Fatal(err)
	}
	if err := m.Rooms().Insert(ctx, Room{RoomID: "MEET01", IsActive: true}); err != nil {
		t.Errorf("closed room should free its id, got %v", err)
	}
}

func TestMemoryConcurrentVoteInsert(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var ok atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := m.Votes().Insert(ctx, Vote{
				VoteID:           fmt.Sprintf("v%d", i),
				PollID:           "p1",
				ParticipantToken: "alice",
				SelectedOption:   "Blue",
			})
			if err == nil {
				ok.Add(1)
			} else if !errors.Is(err, ErrDuplicate) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if ok.Load() != 1 {
		t.Errorf("expected exactly one vote admitted, got %d", ok.Load())
	}
	if n, _ := m.Votes().Count(ctx, Filter{FieldPollID: "p1"}); n != 1 {
		t.Errorf("expected 1 stored vote, got %d", n)
	}
}

func TestBuildWhere(t *testing.T) {
	where, args := buildWhere(Filter{FieldRoomID: "R", FieldIsActive: true}, 3)
	if where != " WHERE is_active = $3 AND room_id = $4" {
		t.Errorf("unexpected where clause %q", where)
	}
	if !reflect.DeepEqual(args, []any{true, "R"}) {
		t.Errorf("unexpected args %v", args)
	}

	if where, args := buildWhere(nil, 1); where != "" || args != nil {
		t.Errorf("empty filter should render nothing, got %q %v", where, args)
	}
}
