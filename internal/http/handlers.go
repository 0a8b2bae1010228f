package httpx

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/KiiTuNp/voteapp/internal/domain"
	"github.com/KiiTuNp/voteapp/internal/meeting"
	"github.com/KiiTuNp/voteapp/internal/report"
	"github.com/KiiTuNp/voteapp/internal/store"
	"github.com/KiiTuNp/voteapp/internal/ws"
)

// MeetingAPI serves the REST surface of the meeting service.
type MeetingAPI struct {
	Meetings *meeting.Service
	Hub      *ws.Hub
	Log      *slog.Logger
}

type createRoomReq struct {
	OrganizerName string `json:"organizer_name"`
	CustomRoomID  string `json:"custom_room_id"`
}

type createRoomResp struct {
	RoomID        string `json:"room_id"`
	OrganizerName string `json:"organizer_name"`
}

type joinRoomReq struct {
	RoomID          string `json:"room_id"`
	ParticipantName string `json:"participant_name"`
}

type createPollReq struct {
	RoomID       string   `json:"room_id"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	TimerMinutes *int     `json:"timer_minutes"`
}

type voteReq struct {
	ParticipantToken string `json:"participant_token"`
	SelectedOption   string `json:"selected_option"`
}

type pollsResp struct {
	Polls []meeting.PollResult `json:"polls"`
}

type participantsResp struct {
	Participants []store.Participant `json:"participants"`
}

func (a *MeetingAPI) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "healthy"})
}

// CreateRoom accepts organizer_name and an optional custom_room_id.
func (a *MeetingAPI) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, a.Log, r, err)
		return
	}
	req.OrganizerName = orQuery(r, req.OrganizerName, "organizer_name")
	req.CustomRoomID = orQuery(r, req.CustomRoomID, "custom_room_id")

	rm, err := a.Meetings.CreateRoom(r.Context(), req.OrganizerName, req.CustomRoomID)
	if err != nil {
		writeError(w, a.Log, r, err)
		return
	}
	writeJSON(w, createRoomResp{RoomID: rm.RoomID, OrganizerName: rm.OrganizerName})
}

func (a *MeetingAPI) JoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRoomReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, a.Log, r, err)
		return
	}
	req.RoomID = orQuery(r, req.RoomID, "room_id")
	req.ParticipantName = orQuery(r, req.ParticipantName, "participant_name")

	j, err := a.Meetings.JoinRoom(r.Context(), req.RoomID, req.ParticipantName)
	if err != nil {
		writeError(w, a.Log, r, err)
		return
	}
	writeJSON(w, j)
}

func (a *MeetingAPI) RoomStatus(w http.ResponseWriter, r *http.Request) {
	st, err := a.Meetings.RoomStatus(r.Context(), r.PathValue("room_id"))
	if err != nil {
		writeError(w, a.Log, r, err)
		return
	}
	writeJSON(w, st)
}

func (a *MeetingAPI) ListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := a.Meetings.ListPolls(r.Context(), r.PathValue("room_id"))
	if err != nil {
		writeError(w, a.Log, r, err)
		return
	}
	writeJSON(w, pollsResp{Polls: polls})
}

func (a *MeetingAPI) ListParticipants(w http.ResponseWriter, r *http.Request) {
	parts, err := a.Meetings.ListParticipants(r.Context(), r.PathValue("room_id"))
	if err != nil {
		writeError(w, a.Log, r, err)
		return
	}
	if parts == nil {
		parts = []store.Participant{}
	}
	writeJSON(w, participantsResp{Participants: parts})
}

// Report streams the meeting summary as a CSV attachment.
func (a *MeetingAPI) Report(w http.ResponseWriter, r *http.Request) {
	m, err := a.Meetings.Report(r.Context(), r.PathValue("room_id"))
	if err != nil {
		writeError(w, a.Log, r, err)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, m); err != nil {
		writeError(w, a.Log, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", report.Filename(m)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

func (a *MeetingAPI) CloseRoom(w http.ResponseWriter, r *http.Request) {
	if err := a.Meetings.CloseRoom(r.Context(), r.PathValue("room_id")); err != nil {
		writeError(w, a.Log, r, err)
		return
	}
	writeJSON(w, message{"Room closed"})
}

func (a *MeetingAPI) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := a.Meetings.DeleteRoom(r.Context(), r.PathValue("room_id")); err != nil {
		writeError(w, a.Log, r, err)
		return
	}
	writeJSON(w, message{"Room data deleted successfully"})
}

func (a *MeetingAPI) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req createPollReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, a.Log, r, err)
		return
	}
	p, err := a.Meetings.CreatePoll(r.Context(), meeting.PollInput{
		RoomID:       req.RoomID,
		Question:     req.Question,
		Options:      req.Options,
		TimerMinutes: req.TimerMinutes,
	})
	if err != nil {
		writeError(w, a.Log, r, err)
		return
	}
	writeJSON(w, p)
}

func (a *MeetingAPI) StartPoll(w http.ResponseWriter, r *http.Request) {
	if err := a.Meetings.StartPoll(r.Context(), r.PathValue("poll_id")); err != nil {
		writeError(w, a.Log, r, err)
		return
	}
	writeJSON(w, message{"Poll started"})
}

func (a *MeetingAPI) StopPoll(w http.ResponseWriter, r *http.Request) {
	if err := a.Meetings.StopPoll(r.Context(), r.PathValue("poll_id")); err != nil {
		writeError(w, a.Log, r, err)
		return
	}
	writeJSON(w, message{"Poll stopped"})
}

func (a *MeetingAPI) Vote(w http.ResponseWriter, r *http.Request) {
	var req voteReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, a.Log, r, err)
		return
	}
	if _, err := a.Meetings.CastVote(r.Context(), r.PathValue("poll_id"), req.ParticipantToken, req.SelectedOption); err != nil {
		writeError(w, a.Log, r, err)
		return
	}
	writeJSON(w, message{"Vote recorded"})
}

func (a *MeetingAPI) Approve(w http.ResponseWriter, r *http.Request) {
	if err := a.Meetings.ApproveParticipant(r.Context(), r.PathValue("participant_id")); err != nil {
		writeError(w, a.Log, r, err)
		return
	}
	writeJSON(w, message{"Participant approved"})
}

func (a *MeetingAPI) Deny(w http.ResponseWriter, r *http.Request) {
	if err := a.Meetings.DenyParticipant(r.Context(), r.PathValue("participant_id")); err != nil {
		writeError(w, a.Log, r, err)
		return
	}
	writeJSON(w, message{"Participant denied"})
}

// Subscribe upgrades to a websocket bound to an active room.
func (a *MeetingAPI) Subscribe(w http.ResponseWriter, r *http.Request) {
	roomID := domain.NormalizeRoomID(r.PathValue("room_id"))
	ok, err := a.Meetings.RoomExists(r.Context(), roomID)
	if err != nil {
		writeError(w, a.Log, r, err)
		return
	}
	if !ok {
		writeError(w, a.Log, r, domain.ErrRoomNotFound)
		return
	}
	a.Hub.ServeWS(w, r, roomID)
}
