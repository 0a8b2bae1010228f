// Package meeting runs the operations of a live poll meeting. Each
// state change is validated by package domain, committed to the Store,
// then announced to the room through the broadcast hub. Starting or
// stopping a timed poll arms or disarms its auto-stop timer.
//
// Every state-changing operation holds its room's lock from the first
// read to the broadcast enqueue. That makes the order of events a room
// receives equal to the order of commits, and serializes vote admission
// per room. The Store's unique (poll, token) constraint still backs the
// one-vote rule on its own.
package meeting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KiiTuNp/voteapp/internal/domain"
	"github.com/KiiTuNp/voteapp/internal/report"
	"github.com/KiiTuNp/voteapp/internal/store"
	"github.com/KiiTuNp/voteapp/internal/timer"
	"github.com/KiiTuNp/voteapp/internal/ws"
	"github.com/KiiTuNp/voteapp/pkg/metrics"
)

// AutoStopMessage accompanies every poll_auto_stopped event.
const AutoStopMessage = "Poll automatically stopped due to timer"

// Broadcaster fans an event out to a room. *ws.Hub implements it.
type Broadcaster interface {
	Broadcast(roomID string, ev ws.Event)
}

type Options struct {
	// Clock drives poll timers; nil means timer.RealClock.
	Clock timer.Clock
	// TimerUnit is the length of one "minute" of timer_minutes.
	TimerUnit time.Duration
	// Now stamps created records; nil means time.Now.
	Now func() time.Time
}

type Service struct {
	store  store.Store
	hub    Broadcaster
	log    *slog.Logger
	timers *timer.Scheduler
	unit   time.Duration
	now    func() time.Time
	locks  *roomLocks
}

func New(st store.Store, hub Broadcaster, log *slog.Logger, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = timer.RealClock
	}
	if opts.TimerUnit <= 0 {
		opts.TimerUnit = time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Service{
		store: st,
		hub:   hub,
		log:   log,
		unit:  opts.TimerUnit,
		now:   opts.Now,
		locks: newRoomLocks(),
	}
	s.timers = timer.New(opts.Clock, log, s.autoStop)
	return s
}

// Close disarms every poll timer and waits for in-flight auto-stops.
func (s *Service) Close() { s.timers.Close() }

// Timers exposes the scheduler for health reporting.
func (s *Service) Timers() *timer.Scheduler { return s.timers }

// Joined is what a participant gets back from JoinRoom. The token is
// the participant's only credential.
type Joined struct {
	ParticipantID    string `json:"participant_id"`
	ParticipantToken string `json:"participant_token"`
	ParticipantName  string `json:"participant_name"`
	RoomID           string `json:"room_id"`
	ApprovalStatus   string `json:"approval_status"`
	OrganizerName    string `json:"organizer_name"`
}

type PollInput struct {
	RoomID       string
	Question     string
	Options      []string
	TimerMinutes *int
}

// Status is the organizer's room dashboard.
type Status struct {
	RoomID        string `json:"room_id"`
	OrganizerName string `json:"organizer_name"`
	domain.RoomSummary
}

// PollResult is a poll with its live tally.
type PollResult struct {
	store.Poll
	VoteCounts map[string]int `json:"vote_counts"`
	TotalVotes int            `json:"total_votes"`
}

const maxRoomIDAttempts = 5

// CreateRoom opens a room. A blank customID gets a generated 8-char code.
func (s *Service) CreateRoom(ctx context.Context, organizer, customID string) (store.Room, error) {
	if err := domain.ValidateName(organizer); err != nil {
		return store.Room{}, err
	}
	rm := store.Room{
		OrganizerName: strings.TrimSpace(organizer),
		CreatedAt:     s.now().UTC(),
		IsActive:      true,
	}

	if strings.TrimSpace(customID) != "" {
		rm.RoomID = domain.NormalizeRoomID(customID)
		// a closed room keeps its id until cleanup so its records never
		// mix with a new room's
		n, err := s.store.Rooms().Count(ctx, store.Filter{store.FieldRoomID: rm.RoomID})
		if err != nil {
			return store.Room{}, fmt.Errorf("count rooms: %w", err)
		}
		if err := domain.ValidateCustomRoomID(rm.RoomID, n > 0); err != nil {
			return store.Room{}, err
		}
		if err := s.store.Rooms().Insert(ctx, rm); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return store.Room{}, domain.ErrRoomIDTaken
			}
			return store.Room{}, fmt.Errorf("insert room: %w", err)
		}
		s.log.Info("room.created", "room", rm.RoomID, "custom", true)
		return rm, nil
	}

	for i := 0; i < maxRoomIDAttempts; i++ {
		rm.RoomID = strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
		n, err := s.store.Rooms().Count(ctx, store.Filter{store.FieldRoomID: rm.RoomID})
		if err != nil {
			return store.Room{}, fmt.Errorf("count rooms: %w", err)
		}
		if n > 0 {
			continue
		}
		err = s.store.Rooms().Insert(ctx, rm)
		if errors.Is(err, store.ErrDuplicate) {
			continue
		}
		if err != nil {
			return store.Room{}, fmt.Errorf("insert room: %w", err)
		}
		s.log.Info("room.created", "room", rm.RoomID)
		return rm, nil
	}
	return store.Room{}, fmt.Errorf("create room: no free id after %d attempts", maxRoomIDAttempts)
}

// JoinRoom registers a pending participant and tells the room.
func (s *Service) JoinRoom(ctx context.Context, roomID, name string) (Joined, error) {
	if err := domain.ValidateName(name); err != nil {
		return Joined{}, err
	}
	roomID = domain.NormalizeRoomID(roomID)

	unlock := s.locks.lock(roomID)
	defer unlock()

	rm, err := s.activeRoom(ctx, roomID)
	if err != nil {
		return Joined{}, err
	}
	if err := domain.ValidateJoin(rm); err != nil {
		return Joined{}, err
	}

	p := store.Participant{
		ParticipantID:    uuid.NewString(),
		RoomID:           roomID,
		ParticipantName:  strings.TrimSpace(name),
		ParticipantToken: uuid.NewString(),
		ApprovalStatus:   store.StatusPending,
		JoinedAt:         s.now().UTC(),
	}
	if err := s.store.Participants().Insert(ctx, p); err != nil {
		return Joined{}, fmt.Errorf("insert participant: %w", err)
	}
	s.log.Info("participant.joined", "room", roomID, "participant", p.ParticipantID)

	s.broadcastParticipantCounts(ctx, roomID)

	return Joined{
		ParticipantID:    p.ParticipantID,
		ParticipantToken: p.ParticipantToken,
		ParticipantName:  p.ParticipantName,
		RoomID:           roomID,
		ApprovalStatus:   p.ApprovalStatus,
		OrganizerName:    rm.OrganizerName,
	}, nil
}

// CreatePoll adds an inactive poll to the room.
func (s *Service) CreatePoll(ctx context.Context, in PollInput) (store.Poll, error) {
	opts := domain.CleanOptions(in.Options)
	if err := domain.ValidatePollInput(in.Question, opts, in.TimerMinutes); err != nil {
		return store.Poll{}, err
	}
	roomID := domain.NormalizeRoomID(in.RoomID)

	unlock := s.locks.lock(roomID)
	defer unlock()

	rm, err := s.activeRoom(ctx, roomID)
	if err != nil {
		return store.Poll{}, err
	}
	if rm == nil {
		return store.Poll{}, domain.ErrRoomNotFound
	}

	p := store.Poll{
		PollID:       uuid.NewString(),
		RoomID:       roomID,
		Question:     strings.TrimSpace(in.Question),
		Options:      opts,
		TimerMinutes: in.TimerMinutes,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Polls().Insert(ctx, p); err != nil {
		return store.Poll{}, fmt.Errorf("insert poll: %w", err)
	}
	s.log.Info("poll.created", "room", roomID, "poll", p.PollID)

	s.hub.Broadcast(roomID, ws.NewPoll{Poll: p})
	return p, nil
}

// StartPoll opens a poll for voting. Starting an already running poll
// re-announces it and resets its timer.
func (s *Service) StartPoll(ctx context.Context, pollID string) error {
	p, unlock, err := s.lockPoll(ctx, pollID)
	if err != nil {
		return err
	}
	defer unlock()

	rm, err := s.activeRoom(ctx, p.RoomID)
	if err != nil {
		return err
	}
	if err := domain.ValidatePollControl(p, rm); err != nil {
		return err
	}

	if _, err := s.store.Polls().Update(ctx, store.Filter{store.FieldPollID: pollID}, store.Fields{store.FieldIsActive: true}); err != nil {
		return fmt.Errorf("start poll: %w", err)
	}
	s.log.Info("poll.started", "room", p.RoomID, "poll", pollID)

	s.hub.Broadcast(p.RoomID, ws.PollStarted{
		PollID:       p.PollID,
		Question:     p.Question,
		Options:      p.Options,
		TimerMinutes: p.TimerMinutes,
	})

	if p.TimerMinutes != nil {
		s.timers.Arm(pollID, p.RoomID, s.timerDuration(*p.TimerMinutes))
	} else {
		s.timers.Cancel(pollID)
	}
	return nil
}

// timerDuration scales minutes by the configured unit, saturating
// instead of wrapping when a large unit would overflow.
func (s *Service) timerDuration(minutes int) time.Duration {
	if int64(minutes) > math.MaxInt64/int64(s.unit) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(minutes) * s.unit
}

// StopPoll closes a poll. Stopping an inactive poll is a no-op success,
// so losing a race against the auto-stop timer is silent.
func (s *Service) StopPoll(ctx context.Context, pollID string) error {
	p, unlock, err := s.lockPoll(ctx, pollID)
	if err != nil {
		return err
	}
	defer unlock()

	rm, err := s.activeRoom(ctx, p.RoomID)
	if err != nil {
		return err
	}
	if err := domain.ValidatePollControl(p, rm); err != nil {
		return err
	}

	s.timers.Cancel(pollID)
	if !p.IsActive {
		return nil
	}
	if _, err := s.store.Polls().Update(ctx, store.Filter{store.FieldPollID: pollID}, store.Fields{store.FieldIsActive: false}); err != nil {
		return fmt.Errorf("stop poll: %w", err)
	}
	s.log.Info("poll.stopped", "room", p.RoomID, "poll", pollID)

	s.hub.Broadcast(p.RoomID, ws.PollStopped{PollID: pollID})
	return nil
}

// autoStop is the scheduler's fire callback.
func (s *Service) autoStop(ctx context.Context, t timer.Ticket) {
	unlock := s.locks.lock(t.RoomID)
	defer unlock()

	if !s.timers.Claim(t) {
		metrics.TimerFires.WithLabelValues("stale").Inc()
		return
	}

	p, err := findOpt(ctx, s.store.Polls(), store.Filter{store.FieldPollID: t.PollID})
	if err != nil {
		metrics.TimerFires.WithLabelValues("error").Inc()
		s.log.Error("poll.autostop", "poll", t.PollID, "err", err)
		return
	}
	if p == nil || !p.IsActive {
		metrics.TimerFires.WithLabelValues("inactive").Inc()
		return
	}

	if _, err := s.store.Polls().Update(ctx, store.Filter{store.FieldPollID: t.PollID}, store.Fields{store.FieldIsActive: false}); err != nil {
		metrics.TimerFires.WithLabelValues("error").Inc()
		s.log.Error("poll.autostop", "poll", t.PollID, "err", err)
		return
	}
	metrics.TimerFires.WithLabelValues("stopped").Inc()
	s.log.Info("poll.autostopped", "room", t.RoomID, "poll", t.PollID)

	s.hub.Broadcast(t.RoomID, ws.PollAutoStopped{PollID: t.PollID, Message: AutoStopMessage})
}

// CastVote records one vote and pushes the new tally to the room.
func (s *Service) CastVote(ctx context.Context, pollID, token, option string) (domain.Tally, error) {
	p, unlock, err := s.lockPoll(ctx, pollID)
	if err != nil {
		metrics.Votes.WithLabelValues(voteResult(err)).Inc()
		return domain.Tally{}, err
	}
	defer unlock()

	tally, err := s.castVote(ctx, p, token, option)
	metrics.Votes.WithLabelValues(voteResult(err)).Inc()
	return tally, err
}

func (s *Service) castVote(ctx context.Context, p *store.Poll, token, option string) (domain.Tally, error) {
	var part *store.Participant
	var prior *store.Vote
	if token != "" {
		var err error
		part, err = findOpt(ctx, s.store.Participants(), store.Filter{
			store.FieldParticipantToken: token,
			store.FieldRoomID:           p.RoomID,
		})
		if err != nil {
			return domain.Tally{}, err
		}
		prior, err = findOpt(ctx, s.store.Votes(), store.Filter{
			store.FieldPollID:           p.PollID,
			store.FieldParticipantToken: token,
		})
		if err != nil {
			return domain.Tally{}, err
		}
	}
	if err := domain.ValidateVote(p, part, prior, option); err != nil {
		return domain.Tally{}, err
	}

	v := store.Vote{
		VoteID:           uuid.NewString(),
		PollID:           p.PollID,
		RoomID:           p.RoomID,
		ParticipantToken: token,
		SelectedOption:   option,
		VotedAt:          s.now().UTC(),
	}
	if err := s.store.Votes().Insert(ctx, v); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return domain.Tally{}, domain.ErrAlreadyVoted
		}
		return domain.Tally{}, fmt.Errorf("insert vote: %w", err)
	}

	votes, err := s.store.Votes().FindMany(ctx, store.Filter{store.FieldPollID: p.PollID})
	if err != nil {
		return domain.Tally{}, fmt.Errorf("load votes: %w", err)
	}
	t := domain.ComputeTally(*p, votes)
	s.log.Debug("vote.recorded", "room", p.RoomID, "poll", p.PollID, "total", t.Total)

	s.hub.Broadcast(p.RoomID, ws.VoteUpdate{PollID: p.PollID, VoteCounts: t.Counts, TotalVotes: t.Total})
	return t, nil
}

func voteResult(err error) string {
	if err == nil {
		return "accepted"
	}
	switch domain.KindOf(err) {
	case domain.KindConflict:
		return "duplicate"
	case domain.KindForbidden:
		return "forbidden"
	case domain.KindNotFound, domain.KindInvalidInput:
		return "rejected"
	}
	return "error"
}

// ApproveParticipant lets a pending participant vote.
func (s *Service) ApproveParticipant(ctx context.Context, participantID string) error {
	return s.decide(ctx, participantID, store.StatusApproved)
}

// DenyParticipant refuses a pending participant.
func (s *Service) DenyParticipant(ctx context.Context, participantID string) error {
	return s.decide(ctx, participantID, store.StatusDenied)
}

func (s *Service) decide(ctx context.Context, participantID, status string) error {
	byID := store.Filter{store.FieldParticipantID: participantID}
	p, err := findOpt(ctx, s.store.Participants(), byID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrParticipantNotFound
	}

	unlock := s.locks.lock(p.RoomID)
	defer unlock()

	// re-read under the lock; a concurrent decision may have landed
	if p, err = findOpt(ctx, s.store.Participants(), byID); err != nil {
		return err
	}
	if err := domain.ValidateDecision(p); err != nil {
		return err
	}

	n, err := s.store.Participants().Update(ctx,
		store.Filter{store.FieldParticipantID: participantID, store.FieldApprovalStatus: store.StatusPending},
		store.Fields{store.FieldApprovalStatus: status})
	if err != nil {
		return fmt.Errorf("update participant: %w", err)
	}
	if n == 0 {
		return domain.ErrAlreadyDecided
	}
	s.log.Info("participant."+status, "room", p.RoomID, "participant", participantID)

	if status == store.StatusApproved {
		s.hub.Broadcast(p.RoomID, ws.ParticipantApproved{ParticipantToken: p.ParticipantToken, ParticipantName: p.ParticipantName})
	} else {
		s.hub.Broadcast(p.RoomID, ws.ParticipantDenied{ParticipantToken: p.ParticipantToken, ParticipantName: p.ParticipantName})
	}
	s.broadcastParticipantCounts(ctx, p.RoomID)
	return nil
}

// RoomStatus summarizes an active room.
func (s *Service) RoomStatus(ctx context.Context, roomID string) (Status, error) {
	roomID = domain.NormalizeRoomID(roomID)
	rm, err := s.activeRoom(ctx, roomID)
	if err != nil {
		return Status{}, err
	}
	if rm == nil {
		return Status{}, domain.ErrRoomNotFound
	}
	parts, err := s.store.Participants().FindMany(ctx, store.Filter{store.FieldRoomID: roomID})
	if err != nil {
		return Status{}, fmt.Errorf("load participants: %w", err)
	}
	polls, err := s.store.Polls().FindMany(ctx, store.Filter{store.FieldRoomID: roomID})
	if err != nil {
		return Status{}, fmt.Errorf("load polls: %w", err)
	}
	return Status{
		RoomID:        roomID,
		OrganizerName: rm.OrganizerName,
		RoomSummary:   domain.ComputeRoomSummary(parts, polls),
	}, nil
}

// ListPolls returns every poll of an active room with its tally, in
// creation order.
func (s *Service) ListPolls(ctx context.Context, roomID string) ([]PollResult, error) {
	roomID = domain.NormalizeRoomID(roomID)
	rm, err := s.activeRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if rm == nil {
		return nil, domain.ErrRoomNotFound
	}
	polls, votes, err := s.pollsWithVotes(ctx, roomID)
	if err != nil {
		return nil, err
	}
	out := make([]PollResult, 0, len(polls))
	for _, p := range polls {
		t := domain.ComputeTally(p, votes)
		out = append(out, PollResult{Poll: p, VoteCounts: t.Counts, TotalVotes: t.Total})
	}
	return out, nil
}

// ListParticipants returns the room's participants in join order.
func (s *Service) ListParticipants(ctx context.Context, roomID string) ([]store.Participant, error) {
	roomID = domain.NormalizeRoomID(roomID)
	rm, err := s.activeRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if rm == nil {
		return nil, domain.ErrRoomNotFound
	}
	parts, err := s.store.Participants().FindMany(ctx, store.Filter{store.FieldRoomID: roomID})
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	return parts, nil
}

// CloseRoom soft-deletes a room: it stops accepting joins, polls and
// votes, but its data stays readable for the report until cleanup.
func (s *Service) CloseRoom(ctx context.Context, roomID string) error {
	roomID = domain.NormalizeRoomID(roomID)
	unlock := s.locks.lock(roomID)
	defer unlock()

	rm, err := s.activeRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if rm == nil {
		return domain.ErrRoomNotFound
	}
	if err := s.cancelRoomTimers(ctx, roomID); err != nil {
		return err
	}
	if _, err := s.store.Polls().Update(ctx,
		store.Filter{store.FieldRoomID: roomID, store.FieldIsActive: true},
		store.Fields{store.FieldIsActive: false}); err != nil {
		return fmt.Errorf("close polls: %w", err)
	}
	if _, err := s.store.Rooms().Update(ctx,
		store.Filter{store.FieldRoomID: roomID, store.FieldIsActive: true},
		store.Fields{store.FieldIsActive: false}); err != nil {
		return fmt.Errorf("close room: %w", err)
	}
	s.log.Info("room.closed", "room", roomID)

	s.hub.Broadcast(roomID, ws.RoomClosed{RoomID: roomID})
	return nil
}

// DeleteRoom removes the room and everything in it. Deleting a room
// that does not exist succeeds.
func (s *Service) DeleteRoom(ctx context.Context, roomID string) error {
	roomID = domain.NormalizeRoomID(roomID)
	unlock := s.locks.lock(roomID)
	defer unlock()

	rm, err := s.activeRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if err := s.cancelRoomTimers(ctx, roomID); err != nil {
		return err
	}

	f := store.Filter{store.FieldRoomID: roomID}
	var counts [4]int
	if counts[0], err = s.store.Votes().DeleteMany(ctx, f); err != nil {
		return fmt.Errorf("delete votes: %w", err)
	}
	if counts[1], err = s.store.Polls().DeleteMany(ctx, f); err != nil {
		return fmt.Errorf("delete polls: %w", err)
	}
	if counts[2], err = s.store.Participants().DeleteMany(ctx, f); err != nil {
		return fmt.Errorf("delete participants: %w", err)
	}
	if counts[3], err = s.store.Rooms().DeleteMany(ctx, f); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	s.log.Info("room.deleted", "room", roomID,
		"votes", counts[0], "polls", counts[1], "participants", counts[2], "rooms", counts[3])

	if rm != nil {
		s.hub.Broadcast(roomID, ws.RoomClosed{RoomID: roomID})
	}
	return nil
}

// Report gathers the meeting for the CSV export. Closed rooms are
// reportable until they are cleaned up.
func (s *Service) Report(ctx context.Context, roomID string) (report.Meeting, error) {
	roomID = domain.NormalizeRoomID(roomID)
	rm, err := findOpt(ctx, s.store.Rooms(), store.Filter{store.FieldRoomID: roomID})
	if err != nil {
		return report.Meeting{}, err
	}
	if rm == nil {
		return report.Meeting{}, domain.ErrRoomNotFound
	}
	parts, err := s.store.Participants().FindMany(ctx, store.Filter{store.FieldRoomID: roomID})
	if err != nil {
		return report.Meeting{}, fmt.Errorf("load participants: %w", err)
	}
	polls, votes, err := s.pollsWithVotes(ctx, roomID)
	if err != nil {
		return report.Meeting{}, err
	}
	m := report.Meeting{
		Room:         *rm,
		Participants: parts,
		GeneratedAt:  s.now().UTC(),
	}
	for _, p := range polls {
		m.Polls = append(m.Polls, report.PollResult{Poll: p, Tally: domain.ComputeTally(p, votes)})
	}
	return m, nil
}

// RoomExists reports whether roomID names an active room.
func (s *Service) RoomExists(ctx context.Context, roomID string) (bool, error) {
	rm, err := s.activeRoom(ctx, domain.NormalizeRoomID(roomID))
	return rm != nil, err
}

// lockPoll loads a poll, takes its room's lock and re-reads it so the
// caller sees the committed state. A poll never changes rooms, so the
// first read is only used to pick the lock.
func (s *Service) lockPoll(ctx context.Context, pollID string) (*store.Poll, func(), error) {
	byID := store.Filter{store.FieldPollID: pollID}
	p, err := findOpt(ctx, s.store.Polls(), byID)
	if err != nil {
		return nil, nil, err
	}
	if p == nil {
		return nil, nil, domain.ErrPollNotFound
	}
	unlock := s.locks.lock(p.RoomID)
	p, err = findOpt(ctx, s.store.Polls(), byID)
	if err == nil && p == nil {
		err = domain.ErrPollNotFound
	}
	if err != nil {
		unlock()
		return nil, nil, err
	}
	return p, unlock, nil
}

func (s *Service) activeRoom(ctx context.Context, roomID string) (*store.Room, error) {
	return findOpt(ctx, s.store.Rooms(), store.Filter{store.FieldRoomID: roomID, store.FieldIsActive: true})
}

func (s *Service) pollsWithVotes(ctx context.Context, roomID string) ([]store.Poll, []store.Vote, error) {
	polls, err := s.store.Polls().FindMany(ctx, store.Filter{store.FieldRoomID: roomID})
	if err != nil {
		return nil, nil, fmt.Errorf("load polls: %w", err)
	}
	votes, err := s.store.Votes().FindMany(ctx, store.Filter{store.FieldRoomID: roomID})
	if err != nil {
		return nil, nil, fmt.Errorf("load votes: %w", err)
	}
	return polls, votes, nil
}

func (s *Service) cancelRoomTimers(ctx context.Context, roomID string) error {
	polls, err := s.store.Polls().FindMany(ctx, store.Filter{store.FieldRoomID: roomID})
	if err != nil {
		return fmt.Errorf("load polls: %w", err)
	}
	for _, p := range polls {
		s.timers.Cancel(p.PollID)
	}
	return nil
}

// broadcastParticipantCounts sends the room's participant counters.
// Must be called with the room lock held.
func (s *Service) broadcastParticipantCounts(ctx context.Context, roomID string) {
	parts, err := s.store.Participants().FindMany(ctx, store.Filter{store.FieldRoomID: roomID})
	if err != nil {
		s.log.Error("participant.counts", "room", roomID, "err", err)
		return
	}
	sum := domain.ComputeRoomSummary(parts, nil)
	s.hub.Broadcast(roomID, ws.ParticipantUpdate{
		ParticipantCount: sum.ParticipantCount,
		ApprovedCount:    sum.ApprovedCount,
		PendingCount:     sum.PendingCount,
	})
}

// findOpt is FindOne with "not found" mapped to a nil result.
func findOpt[T any](ctx context.Context, c store.Collection[T], f store.Filter) (*T, error) {
	rec, err := c.FindOne(ctx, f)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	return &rec, nil
}
