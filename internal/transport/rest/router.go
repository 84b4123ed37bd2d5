package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
)

type roomReader interface {
	GetByCode(ctx context.Context, code string) (entity.RoomSnapshot, error)
	List(ctx context.Context) ([]entity.RoomSnapshot, error)
}

type RouterConfig struct {
	Logger *slog.Logger
	Rooms  roomReader
	// WebSocket is mounted at /ws without the request middleware, which would hide the
	// hijacker the upgrade needs.
	WebSocket http.Handler
}

// NewRouter serves the websocket endpoint and the read-only room API.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	if cfg.WebSocket != nil {
		r.Handle("/ws", cfg.WebSocket)
	}

	roomHandler := newRoomHandler(cfg.Logger, cfg.Rooms)

	api := r.NewRoute().Subrouter()
	api.Use(recovery(cfg.Logger))
	api.Use(logging(cfg.Logger))

	api.HandleFunc("/ping", ping).Methods(http.MethodGet)
	api.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)

	return r
}

func ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("pong"))
}
