package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/tictactoe-online/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
	"github.com/rocketscienceinc/tictactoe-online/internal/protocol"
)

type errorResponse struct {
	Error string `json:"error"`
}

// roomStats is what /rooms exposes. Codes stay private so waiting rooms cannot be
// picked up by strangers.
type roomStats struct {
	Total    int                       `json:"total"`
	ByStatus map[entity.RoomStatus]int `json:"byStatus"`
}

type roomHandler struct {
	logger *slog.Logger
	rooms  roomReader
}

func newRoomHandler(logger *slog.Logger, rooms roomReader) *roomHandler {
	return &roomHandler{
		logger: logger.With("component", "rest_rooms"),
		rooms:  rooms,
	}
}

func (that *roomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := that.rooms.List(r.Context())
	if err != nil {
		that.logger.Error("failed to list rooms", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	stats := roomStats{Total: len(rooms), ByStatus: make(map[entity.RoomStatus]int)}
	for _, room := range rooms {
		stats.ByStatus[room.Status]++
	}

	writeJSON(w, http.StatusOK, stats)
}

func (that *roomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := protocol.NormalizeCode(mux.Vars(r)["code"])

	room, err := that.rooms.GetByCode(r.Context(), code)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: protocol.MsgRoomNotFound})
		return
	}

	if err != nil {
		that.logger.Error("failed to get room", "code", code, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, room)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
