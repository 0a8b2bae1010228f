package ws

import (
	"encoding/json"

	"github.com/KiiTuNp/voteapp/internal/store"
)

type EventType string

const (
	TypeParticipantUpdate   EventType = "participant_update"
	TypeNewPoll             EventType = "new_poll"
	TypePollStarted         EventType = "poll_started"
	TypePollStopped         EventType = "poll_stopped"
	TypePollAutoStopped     EventType = "poll_auto_stopped"
	TypeVoteUpdate          EventType = "vote_update"
	TypeParticipantApproved EventType = "participant_approved"
	TypeParticipantDenied   EventType = "participant_denied"
	TypeRoomClosed          EventType = "room_closed"
)

// Event is the closed set of messages pushed to room subscribers. Each
// implementation marshals itself with a "type" tag.
type Event interface {
	Type() EventType
	event()
}

type ParticipantUpdate struct {
	ParticipantCount int `json:"participant_count"`
	ApprovedCount    int `json:"approved_count"`
	PendingCount     int `json:"pending_count"`
}

type NewPoll struct {
	Poll store.Poll `json:"poll"`
}

type PollStarted struct {
	PollID       string   `json:"poll_id"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	TimerMinutes *int     `json:"timer_minutes"`
}

type PollStopped struct {
	PollID string `json:"poll_id"`
}

type PollAutoStopped struct {
	PollID  string `json:"poll_id"`
	Message string `json:"message"`
}

type VoteUpdate struct {
	PollID     string         `json:"poll_id"`
	VoteCounts map[string]int `json:"vote_counts"`
	TotalVotes int            `json:"total_votes"`
}

// ParticipantApproved and ParticipantDenied go to the whole room; the
// client holding ParticipantToken is the one that acts on them.
type ParticipantApproved struct {
	ParticipantToken string `json:"participant_token"`
	ParticipantName  string `json:"participant_name"`
}

type ParticipantDenied struct {
	ParticipantToken string `json:"participant_token"`
	ParticipantName  string `json:"participant_name"`
}

type RoomClosed struct {
	RoomID string `json:"room_id"`
}

func (ParticipantUpdate) Type() EventType   { return TypeParticipantUpdate }
func (NewPoll) Type() EventType             { return TypeNewPoll }
func (PollStarted) Type() EventType         { return TypePollStarted }
func (PollStopped) Type() EventType         { return TypePollStopped }
func (PollAutoStopped) Type() EventType     { return TypePollAutoStopped }
func (VoteUpdate) Type() EventType          { return TypeVoteUpdate }
func (ParticipantApproved) Type() EventType { return TypeParticipantApproved }
func (ParticipantDenied) Type() EventType   { return TypeParticipantDenied }
func (RoomClosed) Type() EventType          { return TypeRoomClosed }

func (ParticipantUpdate) event()   {}
func (NewPoll) event()             {}
func (PollStarted) event()         {}
func (PollStopped) event()         {}
func (PollAutoStopped) event()     {}
func (VoteUpdate) event()          {}
func (ParticipantApproved) event() {}
func (ParticipantDenied) event()   {}
func (RoomClosed) event()          {}

func (e ParticipantUpdate) MarshalJSON() ([]byte, error) {
	type payload ParticipantUpdate
	return tagged(e.Type(), payload(e))
}

func (e NewPoll) MarshalJSON() ([]byte, error) {
	type payload NewPoll
	return tagged(e.Type(), payload(e))
}

func (e PollStarted) MarshalJSON() ([]byte, error) {
	type payload PollStarted
	return tagged(e.Type(), payload(e))
}

func (e PollStopped) MarshalJSON() ([]byte, error) {
	type payload PollStopped
	return tagged(e.Type(), payload(e))
}

func (e PollAutoStopped) MarshalJSON() ([]byte, error) {
	type payload PollAutoStopped
	return tagged(e.Type(), payload(e))
}

func (e VoteUpdate) MarshalJSON() ([]byte, error) {
	type payload VoteUpdate
	return tagged(e.Type(), payload(e))
}

func (e ParticipantApproved) MarshalJSON() ([]byte, error) {
	type payload ParticipantApproved
	return tagged(e.Type(), payload(e))
}

func (e ParticipantDenied) MarshalJSON() ([]byte, error) {
	type payload ParticipantDenied
	return tagged(e.Type(), payload(e))
}

func (e RoomClosed) MarshalJSON() ([]byte, error) {
	type payload RoomClosed
	return tagged(e.Type(), payload(e))
}

// tagged marshals v as a JSON object whose first key is "type". v must be
// a struct type without its own MarshalJSON, or the call recurses.
func tagged[T any](typ EventType, v T) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	head, err := json.Marshal(struct {
		Type EventType `json:"type"`
	}{typ})
	if err != nil {
		return nil, err
	}
	if len(body) <= 2 {
		return head, nil
	}
	out := make([]byte, 0, len(head)+len(body))
	out = append(out, head[:len(head)-1]...)
	out = append(out, ',')
	return append(out, body[1:]...), nil
}
