package httpx

import (
	"log/slog"
	"net/http"

	"github.com/KiiTuNp/voteapp/internal/app"
	"github.com/KiiTuNp/voteapp/internal/meeting"
	"github.com/KiiTuNp/voteapp/internal/ws"
	"github.com/KiiTuNp/voteapp/pkg/metrics"
	"github.com/KiiTuNp/voteapp/pkg/ratelimit"
)

type Deps struct {
	Config   app.Config
	Log      *slog.Logger
	Hub      *ws.Hub
	Meetings *meeting.Service
	Limiter  *ratelimit.Limiter // optional
}

// NewRouter wires up all HTTP routes, middleware, and handlers
func NewRouter(d Deps) http.Handler {
	mw := NewMiddleware(d.Config, d.Log, d.Limiter)
	api := &MeetingAPI{Meetings: d.Meetings, Hub: d.Hub, Log: d.Log}

	mux := http.NewServeMux()

	// Health / readiness / metrics
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/readyz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("GET /api/health", api.Health)

	// Rooms
	mux.HandleFunc("POST /api/rooms/create", api.CreateRoom)
	mux.HandleFunc("POST /api/rooms/join", api.JoinRoom)
	mux.HandleFunc("GET /api/rooms/{room_id}/status", api.RoomStatus)
	mux.HandleFunc("GET /api/rooms/{room_id}/polls", api.ListPolls)
	mux.HandleFunc("GET /api/rooms/{room_id}/participants", api.ListParticipants)
	mux.HandleFunc("GET /api/rooms/{room_id}/report", api.Report)
	mux.HandleFunc("POST /api/rooms/{room_id}/close", api.CloseRoom)
	mux.HandleFunc("DELETE /api/rooms/{room_id}/cleanup", api.DeleteRoom)

	// Polls
	mux.HandleFunc("POST /api/polls/create", api.CreatePoll)
	mux.HandleFunc("POST /api/polls/{poll_id}/start", api.StartPoll)
	mux.HandleFunc("POST /api/polls/{poll_id}/stop", api.StopPoll)
	mux.HandleFunc("POST /api/polls/{poll_id}/vote", api.Vote)

	// Participants
	mux.HandleFunc("POST /api/participants/{participant_id}/approve", api.Approve)
	mux.HandleFunc("POST /api/participants/{participant_id}/deny", api.Deny)

	// WebSocket endpoint
	mux.HandleFunc("GET /api/ws/{room_id}", api.Subscribe)

	return mw.Wrap(mux) // logging + CORS + rate limit applied globally
}
