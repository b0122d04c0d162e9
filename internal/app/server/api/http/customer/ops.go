package customer

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "clients-list",
		Method:      http.MethodGet,
		Path:        "/api/clients",
		Summary:     "Список клиентов техника",
		Tags:        []string{"clients"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID:   "clients-create",
		Method:        http.MethodPost,
		Path:          "/api/clients",
		Summary:       "Создание клиента",
		Tags:          []string{"clients"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID: "clients-update",
		Method:      http.MethodPut,
		Path:        "/api/clients/{id}",
		Summary:     "Обновление клиента",
		Tags:        []string{"clients"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
