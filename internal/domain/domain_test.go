package domain

import (
	"errors"
	"testing"

	"github.com/KiiTuNp/voteapp/internal/store"
)

func TestValidateJoin(t *testing.T) {
	if err := ValidateJoin(nil); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("missing room: expected ErrRoomNotFound, got %v", err)
	}
	if err := ValidateJoin(&store.Room{RoomID: "ABC", IsActive: false}); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("inactive room: expected ErrRoomNotFound, got %v", err)
	}
	if err := ValidateJoin(&store.Room{RoomID: "ABC", IsActive: true}); err != nil {
		t.Errorf("active room: unexpected %v", err)
	}
}

func TestValidateCustomRoomID(t *testing.T) {
	tests := []struct {
		raw   string
		taken bool
		want  error
		id    string
	}{
		{raw: "AB", want: ErrInvalidRoomID},
		{raw: "ABCDEFGHIJK", want: ErrInvalidRoomID},
		{raw: "MEET-01", want: ErrInvalidRoomID},
		{raw: "MEET 01", want: ErrInvalidRoomID},
		{raw: "ÉCOLE1", want: ErrInvalidRoomID},
		{raw: "MEET01", id: "MEET01"},
		{raw: "  meet01 ", id: "MEET01"},
		{raw: "meet01", taken: true, want: ErrRoomIDTaken},
		// format wins over uniqueness
		{raw: "M-1", taken: true, want: ErrInvalidRoomID},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			id := NormalizeRoomID(tt.raw)
			err := ValidateCustomRoomID(id, tt.taken)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if tt.want == nil && id != tt.id {
				t.Errorf("expected normalized id %q, got %q", tt.id, id)
			}
		})
	}
	if KindOf(ErrInvalidRoomID) != KindInvalidInput || KindOf(ErrRoomIDTaken) != KindConflict {
		t.Error("room id errors have the wrong kinds")
	}
}

func TestValidateVoteOrder(t *testing.T) {
	active := &store.Poll{PollID: "p", Options: []string{"Red", "Blue"}, IsActive: true}
	stopped := &store.Poll{PollID: "p", Options: []string{"Red", "Blue"}}
	approved := &store.Participant{ApprovalStatus: store.StatusApproved}
	pending := &store.Participant{ApprovalStatus: store.StatusPending}
	denied := &store.Participant{ApprovalStatus: store.StatusDenied}
	prior := &store.Vote{SelectedOption: "Red"}

	tests := []struct {
		name     string
		poll     *store.Poll
		part     *store.Participant
		existing *store.Vote
		option   string
		want     error
	}{
		{"ok", active, approved, nil, "Blue", nil},
		{"no poll", nil, approved, nil, "Blue", ErrPollNotFound},
		{"no participant", active, nil, nil, "Blue", ErrParticipantNotFound},
		{"pending", active, pending, nil, "Blue", ErrNotApproved},
		{"denied", active, denied, nil, "Blue", ErrNotApproved},
		{"pending on stopped poll", stopped, pending, nil, "Blue", ErrNotApproved},
		{"stopped poll", stopped, approved, nil, "Blue", ErrPollNotFound},
		{"already voted", active, approved, prior, "Blue", ErrAlreadyVoted},
		{"already voted beats bad option", active, approved, prior, "Green", ErrAlreadyVoted},
		{"bad option", active, approved, nil, "Green", ErrInvalidOption},
		{"option is case sensitive", active, approved, nil, "blue", ErrInvalidOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVote(tt.poll, tt.part, tt.existing, tt.option)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestUnapprovedAlwaysForbidden(t *testing.T) {
	for _, status := range []string{store.StatusPending, store.StatusDenied} {
		for _, activeFlag := range []bool{true, false} {
			poll := &store.Poll{Options: []string{"A"}, IsActive: activeFlag}
			err := ValidateVote(poll, &store.Participant{ApprovalStatus: status}, nil, "A")
			if KindOf(err) != KindForbidden {
				t.Errorf("status=%s active=%v: expected forbidden, got %v", status, activeFlag, err)
			}
		}
	}
}

func TestValidatePollInput(t *testing.T) {
	zero, five, week, overWeek, huge := 0, 5, MaxTimerMinutes, MaxTimerMinutes+1, 200_000_000
	tests := []struct {
		name     string
		question string
		options  []string
		timer    *int
		ok       bool
	}{
		{"ok", "Color?", []string{"Red", "Blue"}, nil, true},
		{"ok with timer", "Color?", []string{"Red"}, &five, true},
		{"empty question", "  ", []string{"Red"}, nil, false},
		{"no options", "Color?", nil, nil, false},
		{"blank option", "Color?", CleanOptions([]string{"Red", "  "}), nil, false},
		{"duplicate option", "Color?", CleanOptions([]string{"Red", " Red"}), nil, false},
		{"zero timer", "Color?", []string{"Red"}, &zero, false},
		{"one week timer", "Color?", []string{"Red"}, &week, true},
		{"timer over a week", "Color?", []string{"Red"}, &overWeek, false},
		{"timer past duration range", "Color?", []string{"Red"}, &huge, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePollInput(tt.question, tt.options, tt.timer)
			if tt.ok && err != nil {
				t.Fatalf("unexpected %v", err)
			}
			if !tt.ok && KindOf(err) != KindInvalidInput {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestValidateDecision(t *testing.T) {
	if err := ValidateDecision(nil); !errors.Is(err, ErrParticipantNotFound) {
		t.Errorf("expected ErrParticipantNotFound, got %v", err)
	}
	if err := ValidateDecision(&store.Participant{ApprovalStatus: store.StatusPending}); err != nil {
		t.Errorf("pending: unexpected %v", err)
	}
	if err := ValidateDecision(&store.Participant{ApprovalStatus: store.StatusApproved}); !errors.Is(err, ErrAlreadyDecided) {
		t.Errorf("approved: expected ErrAlreadyDecided, got %v", err)
	}
}

func TestComputeTally(t *testing.T) {
	poll := store.Poll{PollID: "p", Options: []string{"Red", "Blue", "Green"}}
	votes := []store.Vote{
		{PollID: "p", SelectedOption: "Blue"},
		{PollID: "p", SelectedOption: "Blue"},
		{PollID: "p", SelectedOption: "Red"},
		{PollID: "other", SelectedOption: "Red"},
	}

	tally := ComputeTally(poll, votes)
	if tally.Counts["Red"] != 1 || tally.Counts["Blue"] != 2 || tally.Counts["Green"] != 0 {
		t.Errorf("unexpected counts %v", tally.Counts)
	}
	if _, ok := tally.Counts["Green"]; !ok {
		t.Error("zero-vote option must be present")
	}
	if tally.Total != 3 {
		t.Errorf("expected total 3, got %d", tally.Total)
	}
	if p := tally.Percent("Blue"); p < 66.66 || p > 66.67 {
		t.Errorf("expected ~66.67%%, got %f", p)
	}

	empty := ComputeTally(poll, nil)
	if empty.Total != 0 || empty.Percent("Red") != 0 {
		t.Errorf("empty tally should be all zero, got %+v", empty)
	}
}

func TestComputeRoomSummary(t *testing.T) {
	participants := []store.Participant{
		{ApprovalStatus: store.StatusApproved},
		{ApprovalStatus: store.StatusPending},
		{ApprovalStatus: store.StatusPending},
		{ApprovalStatus: store.StatusDenied},
	}
	polls := []store.Poll{{PollID: "a", IsActive: true}, {PollID: "b"}, {PollID: "c", IsActive: true}}

	s := ComputeRoomSummary(participants, polls)
	if s.ParticipantCount != 4 || s.ApprovedCount != 1 || s.PendingCount != 2 || s.DeniedCount != 1 {
		t.Errorf("unexpected participant counts %+v", s)
	}
	if s.TotalPolls != 3 || s.ActivePollCount != 2 || s.ActivePolls[0].PollID != "a" || s.ActivePolls[1].PollID != "c" {
		t.Errorf("unexpected poll summary %+v", s)
	}

	if empty := ComputeRoomSummary(nil, nil); empty.ActivePolls == nil {
		t.Error("active polls should be an empty list, not nil")
	}
}
