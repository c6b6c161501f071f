package db

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) generateKeyOp() huma.Operation {
	return huma.Operation{
		OperationID: "db-generate-key",
		Method:      http.MethodPost,
		Path:        "/api/v1/db/{path}/keys",
		Summary:     "Сгенерировать ключ",
		Description: "Возвращает новый уникальный ключ коллекции. Ключи растут со временем.",
		Tags:        []string{"db"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) readOp() huma.Operation {
	return huma.Operation{
		OperationID: "db-read",
		Method:      http.MethodGet,
		Path:        "/api/v1/db/{path}/{key}",
		Summary:     "Прочитать значение",
		Tags:        []string{"db"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) writeOp() huma.Operation {
	return huma.Operation{
		OperationID: "db-write",
		Method:      http.MethodPut,
		Path:        "/api/v1/db/{path}/{key}",
		Summary:     "Записать значение",
		Description: "Заменяет значение целиком. Подписчики коллекции получают новый снимок.",
		Tags:        []string{"db"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) removeOp() huma.Operation {
	return huma.Operation{
		OperationID: "db-remove",
		Method:      http.MethodDelete,
		Path:        "/api/v1/db/{path}/{key}",
		Summary:     "Удалить значение",
		Description: "Удаление отсутствующего ключа не ошибка.",
		Tags:        []string{"db"},
		Middlewares: h.middleware,
	}
}
