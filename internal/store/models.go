package store

import "time"

// Approval states of a participant.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDenied   = "denied"
)

// Field names usable in a Filter or an update. They match the column
// names of the postgres schema.
const (
	FieldRoomID           = "room_id"
	FieldIsActive         = "is_active"
	FieldPollID           = "poll_id"
	FieldParticipantID    = "participant_id"
	FieldParticipantToken = "participant_token"
	FieldApprovalStatus   = "approval_status"
	FieldSelectedOption   = "selected_option"
	FieldVoteID           = "vote_id"
)

type Room struct {
	RoomID        string    `db:"room_id" json:"room_id"`
	OrganizerName string    `db:"organizer_name" json:"organizer_name"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	IsActive      bool      `db:"is_active" json:"is_active"`
}

type Participant struct {
	ParticipantID    string    `db:"participant_id" json:"participant_id"`
	RoomID           string    `db:"room_id" json:"room_id"`
	ParticipantName  string    `db:"participant_name" json:"participant_name"`
	ParticipantToken string    `db:"participant_token" json:"-"` // bearer credential, only returned on join
	ApprovalStatus   string    `db:"approval_status" json:"approval_status"`
	JoinedAt         time.Time `db:"joined_at" json:"joined_at"`
}

type Poll struct {
	PollID       string    `db:"poll_id" json:"poll_id"`
	RoomID       string    `db:"room_id" json:"room_id"`
	Question     string    `db:"question" json:"question"`
	Options      []string  `db:"options" json:"options"`
	TimerMinutes *int      `db:"timer_minutes" json:"timer_minutes"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Vote struct {
	VoteID           string    `db:"vote_id" json:"vote_id"`
	PollID           string    `db:"poll_id" json:"poll_id"`
	RoomID           string    `db:"room_id" json:"room_id"`
	ParticipantToken string    `db:"participant_token" json:"-"`
	SelectedOption   string    `db:"selected_option" json:"selected_option"`
	VotedAt          time.Time `db:"voted_at" json:"voted_at"`
}
