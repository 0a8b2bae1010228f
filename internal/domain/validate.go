// Package domain holds the pure decision functions of a meeting: state
// transition checks and derived views. Nothing here touches the store,
// the broadcast hub or the timer scheduler; callers own side effects.
package domain

import (
	"fmt"
	"slices"
	"strings"

	"github.com/KiiTuNp/voteapp/internal/store"
)

const (
	MinRoomIDLen   = 3
	MaxRoomIDLen   = 10
	MaxNameLen     = 100
	MaxQuestionLen = 500
	MaxOptions     = 20
	MaxOptionLen   = 200

	// MaxTimerMinutes is one week.
	MaxTimerMinutes = 7 * 24 * 60
)

// ValidateJoin fails when the room is missing or soft-deleted.
func ValidateJoin(room *store.Room) error {
	if room == nil || !room.IsActive {
		return ErrRoomNotFound
	}
	return nil
}

// NormalizeRoomID trims and upper-cases a room code.
func NormalizeRoomID(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidateRoomIDFormat checks a normalized id: 3-10 ASCII letters or digits.
func ValidateRoomIDFormat(id string) error {
	if len(id) < MinRoomIDLen || len(id) > MaxRoomIDLen {
		return ErrInvalidRoomID
	}
	for _, r := range id {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return ErrInvalidRoomID
		}
	}
	return nil
}

// ValidateCustomRoomID checks the format first, then whether an active
// room already uses the id.
func ValidateCustomRoomID(id string, taken bool) error {
	if err := ValidateRoomIDFormat(id); err != nil {
		return err
	}
	if taken {
		return ErrRoomIDTaken
	}
	return nil
}

// ValidateName checks an organizer or participant display name.
func ValidateName(name string) error {
	n := strings.TrimSpace(name)
	if n == "" {
		return Invalid("Name is required")
	}
	if len([]rune(n)) > MaxNameLen {
		return Invalid(fmt.Sprintf("Name must be at most %d characters", MaxNameLen))
	}
	return nil
}

// ValidatePollInput checks a poll definition. Options must already be
// trimmed (see CleanOptions).
func ValidatePollInput(question string, options []string, timerMinutes *int) error {
	q := strings.TrimSpace(question)
	switch {
	case q == "":
		return Invalid("Question is required")
	case len([]rune(q)) > MaxQuestionLen:
		return Invalid(fmt.Sprintf("Question must be at most %d characters", MaxQuestionLen))
	case len(options) == 0:
		return Invalid("At least one option is required")
	case len(options) > MaxOptions:
		return Invalid(fmt.Sprintf("At most %d options are allowed", MaxOptions))
	}
	seen := make(map[string]struct{}, len(options))
	for _, o := range options {
		if o == "" {
			return Invalid("Options must not be blank")
		}
		if len([]rune(o)) > MaxOptionLen {
			return Invalid(fmt.Sprintf("Options must be at most %d characters", MaxOptionLen))
		}
		if _, dup := seen[o]; dup {
			return Invalid("Options must be distinct")
		}
		seen[o] = struct{}{}
	}
	if timerMinutes != nil {
		if *timerMinutes <= 0 {
			return Invalid("Timer must be a positive number of minutes")
		}
		if *timerMinutes > MaxTimerMinutes {
			return Invalid(fmt.Sprintf("Timer must be at most %d minutes", MaxTimerMinutes))
		}
	}
	return nil
}

// CleanOptions trims every option, keeping order.
func CleanOptions(options []string) []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = strings.TrimSpace(o)
	}
	return out
}

// ValidateVote decides whether participant may cast option on poll.
// existing is the vote already recorded for the (poll, token) pair, if
// any. Checks run in a fixed order and the first failure wins. Approval
// is checked before the poll's active flag so an unapproved participant
// is refused as Forbidden whatever state the poll is in.
func ValidateVote(poll *store.Poll, participant *store.Participant, existing *store.Vote, option string) error {
	if poll == nil {
		return ErrPollNotFound
	}
	if participant == nil {
		return ErrParticipantNotFound
	}
	if participant.ApprovalStatus != store.StatusApproved {
		return ErrNotApproved
	}
	if !poll.IsActive {
		return ErrPollNotFound
	}
	if existing != nil {
		return ErrAlreadyVoted
	}
	if !slices.Contains(poll.Options, option) {
		return ErrInvalidOption
	}
	return nil
}

// ValidateDecision allows approve/deny only on a pending participant.
func ValidateDecision(participant *store.Participant) error {
	if participant == nil {
		return ErrParticipantNotFound
	}
	if participant.ApprovalStatus != store.StatusPending {
		return ErrAlreadyDecided
	}
	return nil
}

// ValidatePollControl is the start/stop precondition: the poll exists
// and its room is still active.
func ValidatePollControl(poll *store.Poll, room *store.Room) error {
	if poll == nil {
		return ErrPollNotFound
	}
	if room == nil || !room.IsActive {
		return ErrRoomNotFound
	}
	return nil
}
