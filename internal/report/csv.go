// Package report renders the end-of-meeting summary handed to the
// organizer before the room's data is cleaned up.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/KiiTuNp/voteapp/internal/domain"
	"github.com/KiiTuNp/voteapp/internal/store"
)

// PollResult pairs a poll with its final tally.
type PollResult struct {
	Poll  store.Poll
	Tally domain.Tally
}

// Meeting is everything the report shows. Individual votes are never
// part of it; only per-option counts are.
type Meeting struct {
	Room         store.Room
	Participants []store.Participant
	Polls        []PollResult
	GeneratedAt  time.Time
}

var statusOrder = []string{store.StatusApproved, store.StatusPending, store.StatusDenied}

var header = []string{"section", "field", "value", "detail", "percent"}

// WriteCSV writes m as one CSV table with a fixed column count. The
// first column names the section a row belongs to (meeting, participant
// or poll).
func WriteCSV(w io.Writer, m Meeting) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		header,
		row("meeting", "room_id", m.Room.RoomID),
		row("meeting", "organizer", m.Room.OrganizerName),
		row("meeting", "generated_at", m.GeneratedAt.UTC().Format(time.RFC3339)),
		row("meeting", "total_participants", strconv.Itoa(len(m.Participants))),
	}

	// approved first, then pending, then denied
	for _, status := range statusOrder {
		for _, p := range m.Participants {
			if p.ApprovalStatus != status {
				continue
			}
			rows = append(rows, row("participant", status, p.ParticipantName, p.JoinedAt.UTC().Format("15:04:05")))
		}
	}

	for i, pr := range m.Polls {
		label := fmt.Sprintf("poll %d: %s", i+1, pr.Poll.Question)
		if pr.Tally.Total == 0 {
			rows = append(rows, row("poll", label, "no votes recorded"))
			continue
		}
		for _, opt := range pr.Tally.Options {
			rows = append(rows, row("poll", label, opt, strconv.Itoa(pr.Tally.Counts[opt]), percent(pr.Tally.Percent(opt))))
		}
		rows = append(rows, row("poll", label, "total", strconv.Itoa(pr.Tally.Total), "100.0%"))
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Filename is the attachment name offered for a report.
func Filename(m Meeting) string {
	return fmt.Sprintf("poll_report_%s_%s.csv", m.Room.RoomID, m.GeneratedAt.UTC().Format("20060102_150405"))
}

// row pads fields to the header width so every record has the same
// number of columns.
func row(fields ...string) []string {
	r := make([]string, len(header))
	copy(r, fields)
	return r
}

func percent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}
