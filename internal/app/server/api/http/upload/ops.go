package upload

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) uploadPhotoOp() huma.Operation {
	return huma.Operation{
		OperationID: "upload-photo",
		Method:      http.MethodPost,
		Path:        "/api/upload/photo",
		Summary:     "Загрузка фото несоответствия",
		Tags:        []string{"upload"},
		Security: []map[string][]string{
			{"bearer": {}},
		},
		Middlewares:   h.middleware,
		DefaultStatus: http.StatusCreated,
	}
}
