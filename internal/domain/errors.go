package domain

import "errors"

// Kind classifies a business outcome. Handlers map each Kind to exactly
// one transport status.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindConflict
	KindForbidden
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindInvalidInput:
		return "invalid_input"
	}
	return "unknown"
}

// Error is an expected, client-correctable outcome.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newErr(k Kind, msg string) *Error { return &Error{Kind: k, Msg: msg} }

// Invalid builds an InvalidInput error with a specific message.
func Invalid(msg string) error { return newErr(KindInvalidInput, msg) }

var (
	ErrRoomNotFound        = newErr(KindNotFound, "Room not found or inactive")
	ErrPollNotFound        = newErr(KindNotFound, "Poll not found or inactive")
	ErrParticipantNotFound = newErr(KindNotFound, "Participant not found")
	ErrNotApproved         = newErr(KindForbidden, "Participant not approved to vote")
	ErrAlreadyVoted        = newErr(KindConflict, "Already voted")
	ErrInvalidOption       = newErr(KindInvalidInput, "Invalid option")
	ErrInvalidRoomID       = newErr(KindInvalidInput, "Custom room ID must be 3-10 letters or digits")
	ErrRoomIDTaken         = newErr(KindConflict, "Room ID already exists. Please choose a different ID.")
	ErrAlreadyDecided      = newErr(KindConflict, "Participant has already been approved or denied")
)

// KindOf returns the Kind of a domain error anywhere in err's chain, or
// 0 for anything else (store failures, cancellations).
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}
