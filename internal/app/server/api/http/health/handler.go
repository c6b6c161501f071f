package health

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Pinger reports whether the backing store is usable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	log        *slog.Logger
	pinger     Pinger
	middleware huma.Middlewares
}

// NewHandler создает health handler. pinger может быть nil.
func NewHandler(log *slog.Logger, pinger Pinger, middleware huma.Middlewares) *Handler {
	return &Handler{
		log:        log,
		pinger:     pinger,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

func (h *Handler) healthCheck(ctx context.Context, _ *Input) (*Output, error) {
	resp := Response{Status: "OK", Store: "unchecked"}
	if h.pinger == nil {
		return &Output{Body: resp}, nil
	}

	start := time.Now()
	if err := h.pinger.Ping(ctx); err != nil {
		h.log.Warn("store is unavailable", "error", err)
		return nil, huma.Error503ServiceUnavailable("store is unavailable")
	}
	resp.Store = "ok"
	resp.LatencyMs = time.Since(start).Milliseconds()

	return &Output{Body: resp}, nil
}
