package inspection

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "inspections-list",
		Method:      http.MethodGet,
		Path:        "/api/inspections",
		Summary:     "Список осмотров техника",
		Tags:        []string{"inspections"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID:   "inspections-create",
		Method:        http.MethodPost,
		Path:          "/api/inspections",
		Summary:       "Создание осмотра",
		Tags:          []string{"inspections"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) findOp() huma.Operation {
	return huma.Operation{
		OperationID: "inspections-find",
		Method:      http.MethodGet,
		Path:        "/api/inspections/{id}",
		Summary:     "Получение осмотра",
		Tags:        []string{"inspections"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID: "inspections-update",
		Method:      http.MethodPut,
		Path:        "/api/inspections/{id}",
		Summary:     "Обновление осмотра",
		Tags:        []string{"inspections"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) createTileOp() huma.Operation {
	return huma.Operation{
		OperationID:   "inspections-create-tile",
		Method:        http.MethodPost,
		Path:          "/api/inspections/{id}/tiles",
		Summary:       "Добавление строки описи черепицы",
		Tags:          []string{"inspections"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) createNonConformityOp() huma.Operation {
	return huma.Operation{
		OperationID:   "inspections-create-nc",
		Method:        http.MethodPost,
		Path:          "/api/inspections/{id}/non-conformities",
		Summary:       "Добавление несоответствия",
		Tags:          []string{"inspections"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
		Middlewares:   h.middleware,
	}
}
