package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/KiiTuNp/voteapp/internal/app"
)

// newTestPostgres connects to PG_URL and applies migrations. Tests using
// it are skipped when PG_URL is unset.
func newTestPostgres(t *testing.T) *Postgres {
	t.Helper()
	url := os.Getenv("PG_URL")
	if url == "" {
		t.Skip("PG_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	pg, err := NewPostgres(ctx, app.Config{PGURL: url, PGMaxConn: 8}, log)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pg.Close)
	if err := RunMigrations(ctx, pg, log); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pg
}

// uniqueID keeps rows of concurrent or repeated runs apart.
func uniqueID(prefix string) string {
	return prefix + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func TestPostgresPollRoundTrip(t *testing.T) {
	pg := newTestPostgres(t)
	ctx := context.Background()
	roomID := uniqueID("R")
	t.Cleanup(func() { _, _ = pg.Polls().DeleteMany(context.Background(), Filter{FieldRoomID: roomID}) })

	timer := 3
	in := Poll{
		PollID:       uniqueID("p"),
		RoomID:       roomID,
		Question:     "Color?",
		Options:      []string{"Red", "Blue"},
		TimerMinutes: &timer,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := pg.Polls().Insert(ctx, in); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := pg.Polls().Insert(ctx, in); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate on repeated poll id, got %v", err)
	}

	got, err := pg.Polls().FindOne(ctx, Filter{FieldPollID: in.PollID})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !reflect.DeepEqual(got.Options, in.Options) || got.TimerMinutes == nil || *got.TimerMinutes != 3 {
		t.Errorf("unexpected poll %+v", got)
	}
	if !got.CreatedAt.Equal(in.CreatedAt) {
		t.Errorf("created_at %v, want %v", got.CreatedAt, in.CreatedAt)
	}

	n, err := pg.Polls().Update(ctx, Filter{FieldPollID: in.PollID}, Fields{FieldIsActive: true})
	if err != nil || n != 1 {
		t.Fatalf("update: n=%d err=%v", n, err)
	}
	if c, _ := pg.Polls().Count(ctx, Filter{FieldRoomID: roomID, FieldIsActive: true}); c != 1 {
		t.Errorf("expected 1 active poll, got %d", c)
	}

	if _, err := pg.Polls().FindOne(ctx, Filter{FieldPollID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := pg.Polls().FindMany(ctx, Filter{"question": "Color?"}); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
}

func TestPostgresRoomUniqueAmongActive(t *testing.T) {
	pg := newTestPostgres(t)
	ctx := context.Background()
	roomID := uniqueID("M")
	t.Cleanup(func() { _, _ = pg.Rooms().DeleteMany(context.Background(), Filter{FieldRoomID: roomID}) })

	room := Room{RoomID: roomID, OrganizerName: "Bob", CreatedAt: time.Now(), IsActive: true}
	if err := pg.Rooms().Insert(ctx, room); err != nil {
		t.Fatal(err)
	}
	if err := pg.Rooms().Insert(ctx, room); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	if _, err := pg.Rooms().Update(ctx, Filter{FieldRoomID: roomID}, Fields{FieldIsActive: false}); err != nil {
		t.Fatal(err)
	}
	if err := pg.Rooms().Insert(ctx, room); err != nil {
		t.Errorf("closed room should free its id, got %v", err)
	}
	if n, _ := pg.Rooms().Count(ctx, Filter{FieldRoomID: roomID}); n != 2 {
		t.Errorf("expected 2 room records, got %d", n)
	}
}

func TestPostgresConcurrentVoteInsert(t *testing.T) {
	pg := newTestPostgres(t)
	ctx := context.Background()
	pollID := uniqueID("p")
	t.Cleanup(func() { _, _ = pg.Votes().DeleteMany(context.Background(), Filter{FieldPollID: pollID}) })

	var ok atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := pg.Votes().Insert(ctx, Vote{
				VoteID:           fmt.Sprintf("%s-v%d", pollID, i),
				PollID:           pollID,
				RoomID:           "ROOM1",
				ParticipantToken: "alice",
				SelectedOption:   "Blue",
				VotedAt:          time.Now(),
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
	if n, _ := pg.Votes().Count(ctx, Filter{FieldPollID: pollID}); n != 1 {
		t.Errorf("expected 1 stored vote, got %d", n)
	}
}
