// Package stream pushes collection snapshots to websocket clients.
package stream

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/exp/slog"

	"coursekeeper/internal/store"
)

const Path = "/api/v1/db/{path}/stream"

type Settings struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
	ReadTimeout  time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		WriteTimeout: 5 * time.Second,
		PingInterval: 20 * time.Second,
		ReadTimeout:  60 * time.Second,
	}
}

type Handler struct {
	client   store.Client
	log      *slog.Logger
	settings Settings
	upgrader websocket.Upgrader
}

func NewHandler(client store.Client, log *slog.Logger, settings Settings) *Handler {
	return &Handler{
		client:   client,
		log:      log.With("component", "stream_handler"),
		settings: settings,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

func (h *Handler) SetupRoutes(mux chi.Router) {
	mux.Get(Path, h.ServeHTTP)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "path")
	if err := store.ValidatePath(path); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("upgrade failed", "path", path, "error", err)
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub, err := h.client.Subscribe(ctx, path)
	if err != nil {
		h.log.Warn("subscribe failed", "path", path, "error", err)
		h.send(ws, store.Frame{Type: store.FrameCancelled, Error: err.Error()})
		return
	}
	defer h.client.Unsubscribe(path, sub.Token())

	log := h.log.With("path", path, "token", sub.Token(), "remote_addr", r.RemoteAddr)
	log.Debug("stream opened")
	defer log.Debug("stream closed")

	// clients only send control frames; reading keeps pongs and close handled
	go func() {
		defer cancel()
		ws.SetReadDeadline(time.Now().Add(h.settings.ReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(h.settings.ReadTimeout))
		})
		for {
			if _, _, err := ws.NextReader(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(h.settings.PingInterval)
	defer ping.Stop()

	var last [blake2b.Size256]byte
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			ws.SetWriteDeadline(time.Now().Add(h.settings.WriteTimeout))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			if ev.Err != nil {
				log.Info("subscription cancelled", "error", ev.Err)
				h.send(ws, store.Frame{Type: store.FrameCancelled, Error: ev.Err.Error()})
				return
			}

			data, err := json.Marshal(ev.Snapshot)
			if err != nil {
				log.Error("failed to encode snapshot", "error", err)
				return
			}
			digest := blake2b.Sum256(data)
			if digest == last {
				continue
			}
			last = digest

			snap := ev.Snapshot
			if !h.send(ws, store.Frame{Type: store.FrameSnapshot, Snapshot: &snap, Digest: hex.EncodeToString(digest[:])}) {
				return
			}
		}
	}
}

func (h *Handler) send(ws *websocket.Conn, frame store.Frame) bool {
	ws.SetWriteDeadline(time.Now().Add(h.settings.WriteTimeout))
	if err := ws.WriteJSON(frame); err != nil {
		h.log.Debug("write failed", "error", err)
		return false
	}
	return true
}
