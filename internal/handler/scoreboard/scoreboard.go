// Package scoreboard pushes live game scores to WebSocket clients.
package scoreboard

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"
)

// Feed is the source of live game events. Messages are JSON documents.
type Feed interface {
	Current(ctx context.Context, gameID string) ([]byte, error)
	Subscribe(gameID string) chan []byte
	Unsubscribe(gameID string, ch chan []byte)
}

type Handler struct {
	feed         Feed
	logger       *slog.Logger
	pingInterval time.Duration
}

func NewHandler(logger *slog.Logger, feed Feed) *Handler {
	return &Handler{feed: feed, logger: logger, pingInterval: 30 * time.Second}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/games/{gameID}", h.follow)
	return r
}

func (h *Handler) follow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "gameID")

	ch := h.feed.Subscribe(id)
	defer h.feed.Unsubscribe(id, ch)

	initial, err := h.feed.Current(r.Context(), id)
	if err != nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	// Scoreboards only listen; CloseRead handles control frames and
	// cancels ctx once the client goes away.
	ctx := conn.CloseRead(r.Context())

	if err := h.write(ctx, conn, initial); err != nil {
		h.logger.Debug("websocket write failed", "game_id", id, "error", err)
		return
	}

	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("websocket closed", "game_id", id)
			return
		case data := <-ch:
			if err := h.write(ctx, conn, data); err != nil {
				h.logger.Debug("websocket write failed", "game_id", id, "error", err)
				return
			}
		case <-ping.C:
			if err := conn.Ping(ctx); err != nil {
				h.logger.Debug("websocket ping failed", "game_id", id, "error", err)
				return
			}
		}
	}
}

func (h *Handler) write(ctx context.Context, conn *websocket.Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}
