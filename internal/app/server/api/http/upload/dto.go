package upload

import "github.com/danielgtaylor/huma/v2"

type uploadFormData struct {
	Photo huma.FormFile `form:"photo" contentType:"image/jpeg,image/png,image/webp" required:"true"`
}

type uploadInput struct {
	RawBody huma.MultipartFormFiles[uploadFormData]
}

// UploadResponse возвращается клиенту после сохранения фото.
type UploadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

type uploadOutput struct {
	Body UploadResponse
}
