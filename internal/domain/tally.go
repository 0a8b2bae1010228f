package domain

import (
	"slices"

	"github.com/KiiTuNp/voteapp/internal/store"
)

// Tally is the per-option vote count of one poll. Options keeps the
// poll's order and every option has an entry in Counts, zero included.
type Tally struct {
	PollID  string         `json:"poll_id"`
	Options []string       `json:"-"`
	Counts  map[string]int `json:"vote_counts"`
	Total   int            `json:"total_votes"`
}

// Percent is count/total*100, or 0 when no votes were cast.
func (t Tally) Percent(option string) float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Counts[option]) * 100 / float64(t.Total)
}

// ComputeTally counts votes of poll by selected option. Votes of other
// polls, or for options the poll does not offer, are ignored.
func ComputeTally(poll store.Poll, votes []store.Vote) Tally {
	t := Tally{
		PollID:  poll.PollID,
		Options: slices.Clone(poll.Options),
		Counts:  make(map[string]int, len(poll.Options)),
	}
	for _, o := range poll.Options {
		t.Counts[o] = 0
	}
	for _, v := range votes {
		if v.PollID != poll.PollID {
			continue
		}
		if _, ok := t.Counts[v.SelectedOption]; ok {
			t.Counts[v.SelectedOption]++
		}
	}
	for _, n := range t.Counts {
		t.Total += n
	}
	return t
}

type RoomSummary struct {
	ParticipantCount int          `json:"participant_count"`
	ApprovedCount    int          `json:"approved_count"`
	PendingCount     int          `json:"pending_count"`
	DeniedCount      int          `json:"denied_count"`
	TotalPolls       int          `json:"total_polls"`
	ActivePolls      []store.Poll `json:"active_polls"`
	ActivePollCount  int          `json:"active_poll_count"`
}

func ComputeRoomSummary(participants []store.Participant, polls []store.Poll) RoomSummary {
	s := RoomSummary{
		ParticipantCount: len(participants),
		TotalPolls:       len(polls),
		ActivePolls:      []store.Poll{},
	}
	for _, p := range participants {
		switch p.ApprovalStatus {
		case store.StatusApproved:
			s.ApprovedCount++
		case store.StatusPending:
			s.PendingCount++
		case store.StatusDenied:
			s.DeniedCount++
		}
	}
	for _, p := range polls {
		if p.IsActive {
			s.ActivePolls = append(s.ActivePolls, p)
		}
	}
	s.ActivePollCount = len(s.ActivePolls)
	return s
}
