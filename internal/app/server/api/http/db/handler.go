package db

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"coursekeeper/internal/store"
)

type Handler struct {
	client     store.Client
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(client store.Client, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		client:     client,
		log:        log.With("component", "db_handler"),
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.generateKeyOp(), h.generateKey)
	huma.Register(api, h.readOp(), h.read)
	huma.Register(api, h.writeOp(), h.write)
	huma.Register(api, h.removeOp(), h.remove)
}

func (h *Handler) generateKey(_ context.Context, input *keyInput) (*keyOutput, error) {
	key, err := h.client.GenerateKey(input.Path)
	if err != nil {
		return nil, h.httpErr("generate key", err)
	}
	return &keyOutput{Body: keyResponse{Key: key}}, nil
}

func (h *Handler) read(ctx context.Context, input *childInput) (*childOutput, error) {
	child, ok, err := h.client.ReadOnce(ctx, input.Path, input.Key)
	if err != nil {
		return nil, h.httpErr("read", err)
	}
	if !ok {
		return nil, huma.Error404NotFound("key not found")
	}
	return &childOutput{Body: childResponse{Key: child.Key, Value: child.Value}}, nil
}

func (h *Handler) write(ctx context.Context, input *writeInput) (*output, error) {
	if !json.Valid(input.RawBody) {
		return nil, huma.Error400BadRequest("body is not valid JSON")
	}

	if err := h.client.Write(ctx, input.Path, input.Key, json.RawMessage(input.RawBody)); err != nil {
		return nil, h.httpErr("write", err)
	}
	return &output{Body: response{Key: input.Key, Status: "Ok"}}, nil
}

func (h *Handler) remove(ctx context.Context, input *childInput) (*output, error) {
	if err := h.client.Remove(ctx, input.Path, input.Key); err != nil {
		return nil, h.httpErr("remove", err)
	}
	return &output{Body: response{Key: input.Key, Status: "Ok"}}, nil
}

func (h *Handler) httpErr(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrInvalidPath), errors.Is(err, store.ErrInvalidKey):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, store.ErrClosed):
		return huma.Error503ServiceUnavailable("store is closed")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return huma.NewError(http.StatusRequestTimeout, err.Error())
	default:
		h.log.Error("store call failed", "op", op, "error", err)
		return huma.Error500InternalServerError("store failure")
	}
}
