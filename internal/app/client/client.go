package client

import (
	"context"
	"fmt"
	"os"
	gosync "sync"
	"time"

	"golang.org/x/exp/slog"

	"fieldreport/internal/app/client/config"
	"fieldreport/internal/domain/customer"
	"fieldreport/internal/domain/inspection"
	"fieldreport/internal/domain/user"
)

// App ties the local store, the task queue, the connectivity monitor and
// the reconciler together for the CLI. Every write lands locally first,
// the queue carries it to the server when a connection exists.
type App struct {
	config        *config.Config
	log           *slog.Logger
	httpClient    *httpClient
	store         Store
	attachments   *Attachments
	reconciler    *Reconciler
	monitor       *Monitor
	authenticated bool
	mu            gosync.RWMutex
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	// Инициализируем HTTP клиент
	httpCl, err := NewHTTPClient(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации HTTP клиента: %w", err)
	}

	// Инициализируем локальное хранилище (используем SQLite)
	var store Store
	sqliteStorage, err := NewSQLiteStorage(cfg.DataPath)
	if err != nil {
		log.Warn("Не удалось инициализировать SQLite, используем память", "error", err)
		store = NewMemoryStorage()
	} else {
		store = sqliteStorage
	}

	app := &App{
		config:      cfg,
		log:         log,
		httpClient:  httpCl,
		store:       store,
		attachments: NewAttachments(store),
	}

	app.reconciler = NewReconciler(store, httpCl, log, cfg.MaxRetries)
	app.monitor = NewMonitor(httpCl, log, time.Duration(cfg.SyncInterval)*time.Second)

	// Загружаем токен если он есть
	if token, err := app.GetToken(); err == nil && token != "" {
		httpCl.SetToken(token)
		app.authenticated = true
		log.Debug("Токен загружен из файла")
	}

	return app, nil
}

func (a *App) Close() error {
	return a.store.Close()
}

// Store exposes the local store for the CLI commands.
func (a *App) Store() Store {
	return a.store
}

func (a *App) Attachments() *Attachments {
	return a.attachments
}

func (a *App) Monitor() *Monitor {
	return a.monitor
}

// CheckConnection проверяет соединение с сервером
func (a *App) CheckConnection() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return a.httpClient.HealthCheck(ctx)
}

// IsAuthenticated проверяет, аутентифицирован ли пользователь
func (a *App) IsAuthenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.authenticated {
		token, err := a.GetToken()
		if err == nil && token != "" {
			a.authenticated = true
		}
	}

	return a.authenticated
}

// GetToken возвращает сохраненный токен
func (a *App) GetToken() (string, error) {
	tokenBytes, err := os.ReadFile(a.config.TokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("токен не найден. Выполните вход: fieldreport auth login")
		}
		return "", fmt.Errorf("ошибка чтения токена: %w", err)
	}
	return string(tokenBytes), nil
}

// SaveToken сохраняет токен аутентификации
func (a *App) SaveToken(token string) error {
	if err := os.WriteFile(a.config.TokenPath, []byte(token), 0600); err != nil {
		return fmt.Errorf("ошибка сохранения токена: %w", err)
	}

	a.httpClient.SetToken(token)
	return nil
}

// ClearToken удаляет токен
func (a *App) ClearToken() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.authenticated = false
	if err := os.Remove(a.config.TokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления токена: %w", err)
	}
	return nil
}

// Register регистрирует нового пользователя
func (a *App) Register(ctx context.Context, req user.BaseRequest) error {
	if err := a.httpClient.Register(ctx, req.Login, req.Password); err != nil {
		return err
	}

	a.log.Info("Пользователь успешно зарегистрирован", "login", req.Login)
	return nil
}

// Login выполняет вход пользователя
func (a *App) Login(ctx context.Context, req user.BaseRequest) (string, error) {
	token, err := a.httpClient.Login(ctx, req.Login, req.Password)
	if err != nil {
		return "", err
	}

	if err = a.SaveToken(token); err != nil {
		return "", fmt.Errorf("ошибка сохранения токена: %w", err)
	}

	a.mu.Lock()
	a.authenticated = true
	a.mu.Unlock()

	a.log.Info("Вход выполнен успешно", "login", req.Login)
	return token, nil
}

// ==================== Client Operations ====================

// CreateClient saves the client locally and enqueues its upload in the
// same transaction. The command succeeds whether or not the server is
// reachable.
func (a *App) CreateClient(c *Client) (*Client, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("имя клиента не может быть пустым")
	}
	if c.Document == "" {
		return nil, fmt.Errorf("документ клиента не может быть пустым")
	}

	task, err := NewTask(KindCreateClient, ClientPayload{
		Name:     c.Name,
		Document: c.Document,
		Contact:  c.Contact,
		Email:    c.Email,
		Phone:    c.Phone,
	}, 0)
	if err != nil {
		return nil, err
	}

	saved, err := a.store.PutClient(c, task)
	if err != nil {
		return nil, err
	}

	a.log.Info("Клиент сохранён локально", "local_id", saved.LocalID, "name", saved.Name)
	return saved, nil
}

// UpdateClient rewrites an existing client record and enqueues an update
// task carrying the new field values, in the same transaction. The server
// id and sync flags of the record are left as they are.
func (a *App) UpdateClient(localID int64, c *Client) (*Client, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("имя клиента не может быть пустым")
	}
	if c.Document == "" {
		return nil, fmt.Errorf("документ клиента не может быть пустым")
	}

	existing, err := a.store.GetClient(localID)
	if err != nil {
		return nil, err
	}

	existing.Name = c.Name
	existing.Document = c.Document
	existing.Contact = c.Contact
	existing.Email = c.Email
	existing.Phone = c.Phone

	task, err := NewTask(KindUpdateClient, ClientPayload{
		Name:     existing.Name,
		Document: existing.Document,
		Contact:  existing.Contact,
		Email:    existing.Email,
		Phone:    existing.Phone,
	}, localID)
	if err != nil {
		return nil, err
	}

	saved, err := a.store.PutClient(existing, task)
	if err != nil {
		return nil, err
	}

	a.log.Info("Клиент обновлён локально", "local_id", saved.LocalID, "name", saved.Name)
	return saved, nil
}

func (a *App) ListClients() ([]*Client, error) {
	return a.store.ListClients()
}

// RemoteClients pulls the client list from the server, bypassing the local
// store. Requires a connection.
func (a *App) RemoteClients(ctx context.Context) ([]*customer.Client, error) {
	if !a.IsAuthenticated() {
		return nil, fmt.Errorf("требуется аутентификация. Выполните: fieldreport auth login")
	}
	return a.httpClient.ListClients(ctx)
}

// ==================== Inspection Operations ====================

// CreateInspection saves a filled form locally and enqueues its upload.
func (a *App) CreateInspection(form inspection.Form) (*Inspection, error) {
	if form.Protocol == "" {
		return nil, fmt.Errorf("протокол осмотра не может быть пустым")
	}
	if form.Date.IsZero() {
		form.Date = time.Now()
	}

	if form.ClientLocalID != nil {
		if _, err := a.store.GetClient(*form.ClientLocalID); err != nil {
			return nil, fmt.Errorf("клиент не найден: %w", err)
		}
	}

	task, err := NewTask(KindCreateInspection, InspectionPayload{
		ClientLocalID: form.ClientLocalID,
		Form:          form,
	}, 0)
	if err != nil {
		return nil, err
	}

	ins := &Inspection{
		ClientLocalID: form.ClientLocalID,
		Protocol:      form.Protocol,
		Form:          form,
	}

	saved, err := a.store.PutInspection(ins, task)
	if err != nil {
		return nil, err
	}

	a.log.Info("Осмотр сохранён локально", "local_id", saved.LocalID, "protocol", saved.Protocol)
	return saved, nil
}

// UpdateInspection rewrites an existing inspection with a new form and
// enqueues an update task with the form snapshot, in the same transaction.
func (a *App) UpdateInspection(localID int64, form inspection.Form) (*Inspection, error) {
	if form.Protocol == "" {
		return nil, fmt.Errorf("протокол осмотра не может быть пустым")
	}

	existing, err := a.store.GetInspection(localID)
	if err != nil {
		return nil, err
	}
	if form.Date.IsZero() {
		form.Date = existing.Form.Date
	}

	if form.ClientLocalID != nil {
		if _, err := a.store.GetClient(*form.ClientLocalID); err != nil {
			return nil, fmt.Errorf("клиент не найден: %w", err)
		}
	}

	task, err := NewTask(KindUpdateInspection, InspectionPayload{
		ClientLocalID: form.ClientLocalID,
		Form:          form,
	}, localID)
	if err != nil {
		return nil, err
	}

	existing.ClientLocalID = form.ClientLocalID
	existing.Protocol = form.Protocol
	existing.Form = form

	saved, err := a.store.PutInspection(existing, task)
	if err != nil {
		return nil, err
	}

	a.log.Info("Осмотр обновлён локально", "local_id", saved.LocalID, "protocol", saved.Protocol)
	return saved, nil
}

func (a *App) ListInspections() ([]*Inspection, error) {
	return a.store.ListInspections()
}

// RemoteInspections pulls the inspection list from the server.
func (a *App) RemoteInspections(ctx context.Context) ([]*inspection.Inspection, error) {
	if !a.IsAuthenticated() {
		return nil, fmt.Errorf("требуется аутентификация. Выполните: fieldreport auth login")
	}
	return a.httpClient.ListInspections(ctx)
}

func (a *App) GetInspection(localID int64) (*Inspection, error) {
	return a.store.GetInspection(localID)
}

// DeleteInspection removes the inspection with its photos and any queued
// work for them.
func (a *App) DeleteInspection(localID int64) error {
	if err := a.store.DeleteInspection(localID); err != nil {
		return err
	}
	a.log.Info("Осмотр удалён", "local_id", localID)
	return nil
}

// AddPhoto attaches a photo file to a non-conformity of an inspection.
func (a *App) AddPhoto(inspectionLocalID int64, ncKey, path string) (*Photo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла: %w", err)
	}

	photo, err := a.attachments.Save(inspectionLocalID, ncKey, path, data)
	if err != nil {
		return nil, err
	}

	a.log.Info("Фото сохранено локально",
		"local_id", photo.LocalID, "inspection", inspectionLocalID, "size", len(data))
	return photo, nil
}

// ==================== Sync Operations ====================

// Sync запускает синхронизацию
func (a *App) Sync(ctx context.Context) (*Result, error) {
	if !a.IsAuthenticated() {
		return nil, fmt.Errorf("требуется аутентификация. Выполните: fieldreport auth login")
	}
	return a.reconciler.Sync(ctx)
}

// SyncStatus describes the local queue for the status command.
type SyncStatus struct {
	Online    bool
	Syncing   bool
	Pending   int
	Conflicts []*Task
}

func (a *App) SyncStatus(ctx context.Context) (*SyncStatus, error) {
	pending, err := a.store.PendingCount()
	if err != nil {
		return nil, err
	}
	conflicts, err := a.store.ConflictTasks()
	if err != nil {
		return nil, err
	}

	return &SyncStatus{
		Online:    a.monitor.Check(ctx),
		Syncing:   a.reconciler.Syncing(),
		Pending:   pending,
		Conflicts: conflicts,
	}, nil
}

// Watch runs the connectivity monitor and drains the queue on every
// reconnect and on a periodic tick, until the context is cancelled.
func (a *App) Watch(ctx context.Context) error {
	if !a.IsAuthenticated() {
		return fmt.Errorf("требуется аутентификация. Выполните: fieldreport auth login")
	}

	transitions := a.monitor.Subscribe()
	defer a.monitor.Unsubscribe(transitions)

	go a.monitor.Run(ctx)

	interval := time.Duration(a.config.SyncInterval) * time.Second
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("Наблюдение остановлено")
			return nil
		case online := <-transitions:
			if online {
				a.syncOnce(ctx)
			}
		case <-ticker.C:
			if a.monitor.Online() {
				a.syncOnce(ctx)
			}
		}
	}
}

func (a *App) syncOnce(ctx context.Context) {
	result, err := a.reconciler.Sync(ctx)
	if err != nil {
		if err != ErrSyncInProgress {
			a.log.Error("Ошибка синхронизации", "error", err)
		}
		return
	}
	if result.Success > 0 || result.Failed > 0 || result.Conflicts > 0 {
		a.log.Info("Фоновая синхронизация",
			"success", result.Success, "failed", result.Failed, "conflicts", result.Conflicts)
	}
}
