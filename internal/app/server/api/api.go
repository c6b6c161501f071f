// GET    /api/v1/health               # Состояние сервера и хранилища
// POST   /api/v1/db/{path}/keys       # Новый ключ коллекции
// GET    /api/v1/db/{path}/{key}      # Прочитать значение
// PUT    /api/v1/db/{path}/{key}      # Записать значение целиком
// DELETE /api/v1/db/{path}/{key}      # Удалить значение
// GET    /api/v1/db/{path}/stream     # websocket: снимки коллекции при каждом изменении

package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	dbAPI "coursekeeper/internal/app/server/api/http/db"
	healthAPI "coursekeeper/internal/app/server/api/http/health"
	"coursekeeper/internal/app/server/api/http/middleware"
	"coursekeeper/internal/app/server/api/http/middleware/logger"
	streamAPI "coursekeeper/internal/app/server/api/http/stream"
	"coursekeeper/internal/store"
)

type Handlers struct {
	Health *healthAPI.Handler
	DB     *dbAPI.Handler
	Stream *streamAPI.Handler
}

// New создает *chi.Mux с операциями huma и websocket ручкой потока снимков
func New(client store.Client, log *slog.Logger) *chi.Mux {
	return NewWithSettings(client, log, streamAPI.DefaultSettings())
}

func NewWithSettings(client store.Client, log *slog.Logger, settings streamAPI.Settings) *chi.Mux {
	mux := chi.NewMux()

	config := huma.DefaultConfig("Coursekeeper Store API", "1.0.0")
	API := humachi.New(mux, config)

	h := handlers(client, log, settings)
	h.Health.SetupRoutes(API)
	h.DB.SetupRoutes(API)
	h.Stream.SetupRoutes(mux)

	return mux
}

func handlers(client store.Client, log *slog.Logger, settings streamAPI.Settings) *Handlers {
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	var pinger healthAPI.Pinger
	if p, ok := client.(healthAPI.Pinger); ok {
		pinger = p
	}
	healthHandler := healthAPI.NewHandler(log, pinger, middlewares.Add(loggerMW.Middleware()).GetAllAndClear())

	dbHandler := dbAPI.NewHandler(client, log, middlewares.Add(loggerMW.Middleware()).GetAllAndClear())

	streamHandler := streamAPI.NewHandler(client, log, settings)

	return &Handlers{
		Health: healthHandler,
		DB:     dbHandler,
		Stream: streamHandler,
	}
}
