package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Shivanand-hulikatti/retreat-status/internal/service"
)

const (
	writeWait       = 5 * time.Second
	defaultPongWait = 60 * time.Second
)

func (h *RetreatHandler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(h.allowedOrigins) == 0 {
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			// Same-host upgrades are always allowed.
			u, err := url.Parse(origin)
			return err == nil && u.Host == r.Host
		},
	}
}

// CountdownWS handles GET /retreats/{id}/countdown/ws
// Streams one countdown frame per tick until the retreat leaves upcoming or the client leaves.
func (h *RetreatHandler) CountdownWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Resolve the retreat before upgrading so unknown ids get a JSON error.
	view, err := h.svc.GetRetreat(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	up := h.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade websocket", "error", err, "retreat_id", id)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The read loop only detects the client going away. Pongs keep it alive.
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(h.pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(h.pongWait * 9 / 10)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	last, err := h.svc.WatchCountdown(ctx, &view.Retreat, h.countdownInterval, func(frame service.CountdownView) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(frame)
	})
	switch {
	case err == nil:
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "retreat "+string(last.Phase)),
			time.Now().Add(writeWait))
	case errors.Is(err, context.Canceled):
	default:
		h.logger.Debug("countdown stream ended", "error", err, "retreat_id", id)
	}
}
