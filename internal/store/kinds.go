package store

import (
	"fmt"
	"slices"
)

var roomKind = &kind[Room]{
	table:   "rooms",
	columns: []string{"room_id", "organizer_name", "created_at", "is_active"},
	filters: []string{FieldRoomID, FieldIsActive},
	mutable: []string{FieldIsActive},
	order:   "created_at",
	values: func(r Room) []any {
		return []any{r.RoomID, r.OrganizerName, r.CreatedAt, r.IsActive}
	},
	set: func(r *Room, name string, v any) error {
		b, ok := v.(bool)
		if name != FieldIsActive || !ok {
			return fmt.Errorf("%w: rooms.%s=%v", ErrUnknownField, name, v)
		}
		r.IsActive = b
		return nil
	},
	// room ids are unique among active rooms only
	conflict: func(a, b Room) bool {
		return a.RoomID == b.RoomID && a.IsActive && b.IsActive
	},
	clone: func(r Room) Room { return r },
}

var participantKind = &kind[Participant]{
	table:   "participants",
	columns: []string{"participant_id", "room_id", "participant_name", "participant_token", "approval_status", "joined_at"},
	filters: []string{FieldParticipantID, FieldRoomID, FieldParticipantToken, FieldApprovalStatus},
	mutable: []string{FieldApprovalStatus},
	order:   "joined_at",
	values: func(p Participant) []any {
		return []any{p.ParticipantID, p.RoomID, p.ParticipantName, p.ParticipantToken, p.ApprovalStatus, p.JoinedAt}
	},
	set: func(p *Participant, name string, v any) error {
		s, ok := v.(string)
		if name != FieldApprovalStatus || !ok {
			return fmt.Errorf("%w: participants.%s=%v", ErrUnknownField, name, v)
		}
		p.ApprovalStatus = s
		return nil
	},
	conflict: func(a, b Participant) bool {
		return a.ParticipantID == b.ParticipantID || a.ParticipantToken == b.ParticipantToken
	},
	clone: func(p Participant) Participant { return p },
}

var pollKind = &kind[Poll]{
	table:   "polls",
	columns: []string{"poll_id", "room_id", "question", "options", "timer_minutes", "is_active", "created_at"},
	filters: []string{FieldPollID, FieldRoomID, FieldIsActive},
	mutable: []string{FieldIsActive},
	order:   "created_at",
	values: func(p Poll) []any {
		return []any{p.PollID, p.RoomID, p.Question, p.Options, p.TimerMinutes, p.IsActive, p.CreatedAt}
	},
	set: func(p *Poll, name string, v any) error {
		b, ok := v.(bool)
		if name != FieldIsActive || !ok {
			return fmt.Errorf("%w: polls.%s=%v", ErrUnknownField, name, v)
		}
		p.IsActive = b
		return nil
	},
	conflict: func(a, b Poll) bool { return a.PollID == b.PollID },
	clone: func(p Poll) Poll {
		p.Options = slices.Clone(p.Options)
		if p.TimerMinutes != nil {
			m := *p.TimerMinutes
			p.TimerMinutes = &m
		}
		return p
	},
}

var voteKind = &kind[Vote]{
	table:   "votes",
	columns: []string{"vote_id", "poll_id", "room_id", "participant_token", "selected_option", "voted_at"},
	filters: []string{FieldVoteID, FieldPollID, FieldRoomID, FieldParticipantToken, FieldSelectedOption},
	order:   "voted_at",
	values: func(v Vote) []any {
		return []any{v.VoteID, v.PollID, v.RoomID, v.ParticipantToken, v.SelectedOption, v.VotedAt}
	},
	set: func(_ *Vote, name string, v any) error {
		return fmt.Errorf("%w: votes are immutable (%s=%v)", ErrUnknownField, name, v)
	},
	// one vote per voter per poll
	conflict: func(a, b Vote) bool {
		return a.VoteID == b.VoteID || (a.PollID == b.PollID && a.ParticipantToken == b.ParticipantToken)
	},
	clone: func(v Vote) Vote { return v },
}
