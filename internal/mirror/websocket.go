// Package mirror copies published ticker updates to places other than the
// LED panel: browser clients over a websocket and a Redis channel.
package mirror

import (
	"encoding/json"
	"net/http"
	"time"

	"stock-ticker/internal/pubsub"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Handler streams every update as a JSON text frame to each websocket client.
type Handler struct {
	broker   *pubsub.Broker
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewHandler(broker *pubsub.Broker, logger *zap.Logger) *Handler {
	return &Handler{
		broker: broker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The mirror is read-only and meant for any local dashboard.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	subscriber := h.broker.Subscribe("", 16)
	defer h.broker.Unsubscribe(subscriber.ID)

	logger := h.logger.With(zap.String("subscriber", subscriber.ID), zap.String("remote", r.RemoteAddr))
	logger.Info("websocket client connected")

	// Clients never send anything meaningful; reading only surfaces the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			logger.Info("websocket client disconnected")
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case update, ok := <-subscriber.Updates:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(writeWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(update); err != nil {
				logger.Warn("failed to write update", zap.Error(err))
				return
			}
		}
	}
}

// NewMux serves the websocket mirror at /ws and the latest update at /status.
func NewMux(broker *pubsub.Broker, logger *zap.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", NewHandler(broker, logger))
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		latest := broker.Latest()
		if latest == nil {
			http.Error(w, "no update published yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(latest); err != nil {
			logger.Warn("failed to encode status", zap.Error(err))
		}
	})
	return mux
}
