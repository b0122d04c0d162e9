package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"golang.org/x/exp/slog"

	"fieldreport/internal/app/client/config"
	"fieldreport/internal/domain/customer"
	"fieldreport/internal/domain/inspection"
	"fieldreport/internal/domain/user"
)

// APIError is a definitive server answer. Conflict marks the rejections
// that retrying cannot fix (duplicates, validation failures), as opposed
// to transport errors which stay retryable.
type APIError struct {
	Status   int
	Message  string
	Conflict bool
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error %d", e.Status)
}

type httpClient struct {
	client    *http.Client
	config    *config.Config
	log       *slog.Logger
	baseURL   string
	token     string
	userAgent string
}

func NewHTTPClient(cfg *config.Config, log *slog.Logger) (*httpClient, error) {
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	// Определяем протокол
	scheme := "http://"
	if cfg.EnableTLS {
		scheme = "https://"
	}
	baseURL := scheme + cfg.ServerAddress

	return &httpClient{
		client:    client,
		config:    cfg,
		log:       log,
		baseURL:   baseURL,
		userAgent: "FieldReport-Client/1.0",
	}, nil
}

// SetToken устанавливает токен аутентификации
func (h *httpClient) SetToken(token string) {
	h.token = token
}

// HealthCheck проверяет доступность сервера
func (h *httpClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", h.baseURL+"/api/v1/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status: %d", resp.StatusCode)
	}

	return nil
}

func (h *httpClient) Login(ctx context.Context, login, password string) (string, error) {
	req := user.BaseRequest{
		Login:    login,
		Password: password,
	}

	resp, err := h.doRequest(ctx, "POST", "/api/auth/login", req)
	if err != nil {
		return "", err
	}

	var loginResp struct {
		Token string `json:"token"`
	}

	if err := h.parseResponse(resp, &loginResp); err != nil {
		return "", err
	}

	h.SetToken(loginResp.Token)
	return loginResp.Token, nil
}

func (h *httpClient) Register(ctx context.Context, login, password string) error {
	req := user.BaseRequest{
		Login:    login,
		Password: password,
	}

	resp, err := h.doRequest(ctx, "POST", "/api/auth/register", req)
	if err != nil {
		return err
	}

	return h.parseResponse(resp, nil)
}

// CreateClient создает клиента на сервере
func (h *httpClient) CreateClient(ctx context.Context, c *customer.Client) (int64, error) {
	resp, err := h.doRequest(ctx, "POST", "/api/clients", c)
	if err != nil {
		return 0, err
	}

	var createResp struct {
		ID int64 `json:"id"`
	}

	if err := h.parseResponse(resp, &createResp); err != nil {
		return 0, err
	}

	return createResp.ID, nil
}

func (h *httpClient) UpdateClient(ctx context.Context, serverID int64, c *customer.Client) error {
	resp, err := h.doRequest(ctx, "PUT", fmt.Sprintf("/api/clients/%d", serverID), c)
	if err != nil {
		return err
	}

	return h.parseResponse(resp, nil)
}

func (h *httpClient) ListClients(ctx context.Context) ([]*customer.Client, error) {
	resp, err := h.doRequest(ctx, "GET", "/api/clients", nil)
	if err != nil {
		return nil, err
	}

	var listResp struct {
		Clients []*customer.Client `json:"clients"`
	}

	if err := h.parseResponse(resp, &listResp); err != nil {
		return nil, err
	}

	return listResp.Clients, nil
}

// CreateInspection создает осмотр на сервере
func (h *httpClient) CreateInspection(ctx context.Context, ins *inspection.Inspection) (int64, error) {
	resp, err := h.doRequest(ctx, "POST", "/api/inspections", ins)
	if err != nil {
		return 0, err
	}

	var createResp struct {
		ID int64 `json:"id"`
	}

	if err := h.parseResponse(resp, &createResp); err != nil {
		return 0, err
	}

	return createResp.ID, nil
}

func (h *httpClient) UpdateInspection(ctx context.Context, serverID int64, ins *inspection.Inspection) error {
	resp, err := h.doRequest(ctx, "PUT", fmt.Sprintf("/api/inspections/%d", serverID), ins)
	if err != nil {
		return err
	}

	return h.parseResponse(resp, nil)
}

func (h *httpClient) ListInspections(ctx context.Context) ([]*inspection.Inspection, error) {
	resp, err := h.doRequest(ctx, "GET", "/api/inspections", nil)
	if err != nil {
		return nil, err
	}

	var listResp struct {
		Inspections []*inspection.Inspection `json:"inspections"`
	}

	if err := h.parseResponse(resp, &listResp); err != nil {
		return nil, err
	}

	return listResp.Inspections, nil
}

func (h *httpClient) CreateTile(ctx context.Context, inspectionID int64, tile *inspection.Tile) (int64, error) {
	resp, err := h.doRequest(ctx, "POST", fmt.Sprintf("/api/inspections/%d/tiles", inspectionID), tile)
	if err != nil {
		return 0, err
	}

	var createResp struct {
		ID int64 `json:"id"`
	}

	if err := h.parseResponse(resp, &createResp); err != nil {
		return 0, err
	}

	return createResp.ID, nil
}

func (h *httpClient) CreateNonConformity(ctx context.Context, inspectionID int64, nc *inspection.NonConformity) (int64, error) {
	resp, err := h.doRequest(ctx, "POST", fmt.Sprintf("/api/inspections/%d/non-conformities", inspectionID), nc)
	if err != nil {
		return 0, err
	}

	var createResp struct {
		ID int64 `json:"id"`
	}

	if err := h.parseResponse(resp, &createResp); err != nil {
		return 0, err
	}

	return createResp.ID, nil
}

// UploadPhoto sends photo bytes as multipart form data and returns the
// stored file reference.
func (h *httpClient) UploadPhoto(ctx context.Context, filename string, data []byte) (*inspection.UploadResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("photo", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", h.baseURL+"/api/upload/photo", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("User-Agent", h.userAgent)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	var result inspection.UploadResult
	if err := h.parseResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (h *httpClient) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	h.log.Debug("Отправка запроса",
		"method", method,
		"url", req.URL.String(),
	)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	return resp, nil
}

func (h *httpClient) parseResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	h.log.Debug("Получен ответ",
		"status", resp.StatusCode,
		"body", string(body),
	)

	if resp.StatusCode >= 400 {
		apiErr := &APIError{
			Status:   resp.StatusCode,
			Conflict: isConflictStatus(resp.StatusCode),
		}
		var errResp struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil {
			if errResp.Error != "" {
				apiErr.Message = errResp.Error
			} else if errResp.Detail != "" {
				apiErr.Message = errResp.Detail
			}
		}
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}

	return nil
}

// isConflictStatus separates permanent rejections from statuses worth
// retrying (auth expiry, rate limits, server faults).
func isConflictStatus(status int) bool {
	switch status {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return true
	}
	return false
}
