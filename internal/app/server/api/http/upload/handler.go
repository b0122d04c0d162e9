package upload

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"fieldreport/internal/app/server/config"
)

// Handler stores inspection photos on disk under a generated name and
// hands back the URL the non-conformity records will carry.
type Handler struct {
	cfg        config.Uploads
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(cfg config.Uploads, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		cfg:        cfg,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.uploadPhotoOp(), h.uploadPhoto)
}

func (h *Handler) uploadPhoto(_ context.Context, input *uploadInput) (*uploadOutput, error) {
	data := input.RawBody.Data()
	file := data.Photo

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return nil, huma.Error422UnprocessableEntity("unsupported photo type " + ext)
	}

	if err := os.MkdirAll(h.cfg.Dir, 0755); err != nil {
		h.log.Error("create uploads dir", "dir", h.cfg.Dir, "error", err)
		return nil, huma.Error500InternalServerError("store photo")
	}

	// Имя файла генерируется сервером, имя с устройства не используется.
	name := uuid.NewString() + ext
	path := filepath.Join(h.cfg.Dir, name)

	dst, err := os.Create(path)
	if err != nil {
		h.log.Error("create photo file", "path", path, "error", err)
		return nil, huma.Error500InternalServerError("store photo")
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(path)
		h.log.Error("write photo file", "path", path, "error", err)
		return nil, huma.Error500InternalServerError("store photo")
	}

	h.log.Info("photo stored", "filename", name, "size", size)

	return &uploadOutput{
		Body: UploadResponse{
			URL:      strings.TrimSuffix(h.cfg.BaseURL, "/") + "/" + name,
			Filename: name,
			Size:     size,
		},
	}, nil
}
