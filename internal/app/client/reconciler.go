package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"fieldreport/internal/domain/customer"
	"fieldreport/internal/domain/inspection"
)

// RemoteAPI is the server surface the reconciler drains the queue
// against. The HTTP client implements it, tests substitute a fake.
type RemoteAPI interface {
	CreateClient(ctx context.Context, c *customer.Client) (int64, error)
	UpdateClient(ctx context.Context, serverID int64, c *customer.Client) error
	CreateInspection(ctx context.Context, ins *inspection.Inspection) (int64, error)
	UpdateInspection(ctx context.Context, serverID int64, ins *inspection.Inspection) error
	CreateTile(ctx context.Context, inspectionID int64, tile *inspection.Tile) (int64, error)
	CreateNonConformity(ctx context.Context, inspectionID int64, nc *inspection.NonConformity) (int64, error)
	UploadPhoto(ctx context.Context, filename string, data []byte) (*inspection.UploadResult, error)
}

// Result summarizes a single drain of the queue.
type Result struct {
	Success   int
	Failed    int
	Conflicts int
	Pending   int
	Errors    []string
}

// ErrSyncInProgress возвращается, когда проход синхронизации уже идёт.
var ErrSyncInProgress = errors.New("sync already in progress")

// Reconciler drains the local task queue against the server, remapping
// local identifiers to server identifiers as records land.
type Reconciler struct {
	store      Store
	api        RemoteAPI
	log        *slog.Logger
	maxRetries int

	mu       sync.Mutex
	syncing  bool
	inFlight map[int64]struct{} // related record ids currently being pushed
}

const defaultMaxRetries = 5

func NewReconciler(store Store, api RemoteAPI, log *slog.Logger, maxRetries int) *Reconciler {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &Reconciler{
		store:      store,
		api:        api,
		log:        log,
		maxRetries: maxRetries,
		inFlight:   make(map[int64]struct{}),
	}
}

// Syncing reports whether a pass is currently running.
func (r *Reconciler) Syncing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.syncing
}

// Sync drains pending tasks in FIFO order. Only one pass runs at a time,
// a concurrent call returns ErrSyncInProgress instead of piling up.
func (r *Reconciler) Sync(ctx context.Context) (*Result, error) {
	r.mu.Lock()
	if r.syncing {
		r.mu.Unlock()
		return nil, ErrSyncInProgress
	}
	r.syncing = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.syncing = false
		r.mu.Unlock()
	}()

	tasks, err := r.store.PendingTasks(r.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("load pending tasks: %w", err)
	}

	result := &Result{}
	r.log.Info("Начало синхронизации", "tasks", len(tasks))

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			result.Pending = len(tasks) - result.Success - result.Failed - result.Conflicts
			return result, err
		}

		r.mu.Lock()
		if _, busy := r.inFlight[task.RelatedLocalID]; busy {
			r.mu.Unlock()
			continue
		}
		r.inFlight[task.RelatedLocalID] = struct{}{}
		r.mu.Unlock()

		err := r.dispatch(ctx, task)

		r.mu.Lock()
		delete(r.inFlight, task.RelatedLocalID)
		r.mu.Unlock()

		switch {
		case err == nil:
			if err := r.store.CompleteTask(task.ID); err != nil {
				r.log.Error("Не удалось завершить задачу", "task_id", task.ID, "error", err)
			}
			result.Success++
		case isConflict(err):
			r.log.Warn("Задача отклонена сервером",
				"task_id", task.ID, "kind", task.Kind, "error", err)
			if markErr := r.store.MarkConflict(task.ID, err); markErr != nil {
				r.log.Error("Не удалось пометить конфликт", "task_id", task.ID, "error", markErr)
			}
			result.Conflicts++
			result.Errors = append(result.Errors, err.Error())
		default:
			// Partial failure does not stop the pass, the remaining tasks
			// still get their attempt.
			r.log.Warn("Задача не выполнена",
				"task_id", task.ID, "kind", task.Kind, "retries", task.Retries, "error", err)
			if recErr := r.store.RecordFailure(task.ID, err); recErr != nil {
				r.log.Error("Не удалось записать сбой задачи", "task_id", task.ID, "error", recErr)
			}
			result.Failed++
			result.Errors = append(result.Errors, err.Error())
		}
	}

	pending, err := r.store.PendingCount()
	if err == nil {
		result.Pending = pending
	}

	r.log.Info("Синхронизация завершена",
		"success", result.Success,
		"failed", result.Failed,
		"conflicts", result.Conflicts,
		"pending", result.Pending,
	)

	return result, nil
}

func isConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Conflict
}

func (r *Reconciler) dispatch(ctx context.Context, task *Task) error {
	switch task.Kind {
	case KindCreateClient, KindUpdateClient:
		return r.syncClient(ctx, task)
	case KindCreateInspection, KindUpdateInspection:
		return r.syncInspection(ctx, task)
	case KindUploadPhoto:
		return r.syncPhoto(ctx, task)
	default:
		return &APIError{Status: 0, Message: fmt.Sprintf("unknown task kind %q", task.Kind), Conflict: true}
	}
}

func (r *Reconciler) syncClient(ctx context.Context, task *Task) error {
	p, err := task.ClientPayload()
	if err != nil {
		return err
	}

	// The local row only supplies checkpoint state here (server id,
	// deletion). What goes over the wire is the snapshot captured at
	// enqueue time; a later edit travels in its own update task.
	local, err := r.store.GetClient(task.RelatedLocalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Record deleted locally after the task was queued.
			return nil
		}
		return err
	}

	remote := &customer.Client{
		LocalID:  task.RelatedLocalID,
		Name:     p.Name,
		Document: p.Document,
		Contact:  p.Contact,
		Email:    p.Email,
		Phone:    p.Phone,
	}

	if task.Kind == KindUpdateClient || local.ServerID != nil {
		if local.ServerID == nil {
			return fmt.Errorf("client %d has no server id yet", local.LocalID)
		}
		if err := r.api.UpdateClient(ctx, *local.ServerID, remote); err != nil {
			return err
		}
		return r.store.MarkClientSynced(local.LocalID, *local.ServerID)
	}

	serverID, err := r.api.CreateClient(ctx, remote)
	if err != nil {
		return err
	}
	return r.store.MarkClientSynced(local.LocalID, serverID)
}

func (r *Reconciler) syncInspection(ctx context.Context, task *Task) error {
	p, err := task.InspectionPayload()
	if err != nil {
		return err
	}

	// As with clients, the row is read for checkpoint state only. The form
	// that goes up is the task's snapshot.
	local, err := r.store.GetInspection(task.RelatedLocalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	remote := &inspection.Inspection{
		LocalID:   task.RelatedLocalID,
		Protocol:  p.Form.Protocol,
		Date:      p.Form.Date,
		Address:   p.Form.Address,
		City:      p.Form.City,
		State:     p.Form.State,
		RoofModel: p.Form.RoofModel,
		Notes:     p.Form.Notes,
	}

	// The client record must land first so its server id can replace the
	// local reference. FIFO order makes that the common case within one
	// pass.
	if p.ClientLocalID != nil {
		c, err := r.store.GetClient(*p.ClientLocalID)
		if err != nil {
			return fmt.Errorf("resolve client %d: %w", *p.ClientLocalID, err)
		}
		if c.ServerID == nil {
			return fmt.Errorf("client %d not yet synced", c.LocalID)
		}
		remote.ClientID = c.ServerID
	}

	serverID := local.ServerID
	if serverID == nil {
		id, err := r.api.CreateInspection(ctx, remote)
		if err != nil {
			return err
		}
		// Checkpoint immediately so a crash between here and the sub-steps
		// does not create the inspection twice.
		if err := r.store.SetInspectionServerID(local.LocalID, id); err != nil {
			return err
		}
		serverID = &id
	} else if task.Kind == KindUpdateInspection {
		if err := r.api.UpdateInspection(ctx, *serverID, remote); err != nil {
			return err
		}
	}

	if err := r.syncInspectionSteps(ctx, task, &p.Form, *serverID); err != nil {
		return err
	}

	return r.store.MarkInspectionSynced(local.LocalID, time.Now())
}

// syncInspectionSteps pushes the tiles and non-conformities of the task's
// form snapshot, checkpointing each completed sub-step in the task progress
// so retries resume where the last attempt stopped.
func (r *Reconciler) syncInspectionSteps(ctx context.Context, task *Task, form *inspection.Form, serverID int64) error {
	if task.Progress == nil {
		task.Progress = Progress{}
	}

	for i := range form.Tiles {
		step := fmt.Sprintf("tile:%d", i)
		if task.Progress.Done(step) {
			continue
		}
		if _, err := r.api.CreateTile(ctx, serverID, &form.Tiles[i]); err != nil {
			return fmt.Errorf("tile %d: %w", i, err)
		}
		task.Progress.Mark(step)
		if err := r.store.SaveProgress(task.ID, task.Progress); err != nil {
			return err
		}
	}

	// Blobs are immutable once saved, so reading them live never leaks a
	// post-enqueue edit.
	photos, err := r.store.PhotosForInspection(task.RelatedLocalID)
	if err != nil {
		return err
	}

	for i := range form.NonConformities {
		nc := form.NonConformities[i]
		step := "nc:" + nc.Title
		if task.Progress.Done(step) {
			continue
		}

		// Photos attached to this non-conformity go up first so the
		// record carries server URLs instead of device-local ids.
		for _, p := range photos {
			if p.NonConformityKey != nc.Title {
				continue
			}
			url := p.ServerURL
			if !p.Synced {
				res, err := r.api.UploadPhoto(ctx, photoFilename(p.InspectionLocalID, p.LocalID), p.Data)
				if err != nil {
					return fmt.Errorf("upload photo %d: %w", p.LocalID, err)
				}
				if err := r.store.MarkPhotoSynced(p.LocalID, res.URL); err != nil {
					return err
				}
				p.Synced = true
				p.ServerURL = res.URL
				url = res.URL
			}
			nc.PhotoURLs = append(nc.PhotoURLs, url)
		}

		if _, err := r.api.CreateNonConformity(ctx, serverID, &nc); err != nil {
			return fmt.Errorf("non-conformity %q: %w", nc.Title, err)
		}
		task.Progress.Mark(step)
		if err := r.store.SaveProgress(task.ID, task.Progress); err != nil {
			return err
		}
	}

	return nil
}

func (r *Reconciler) syncPhoto(ctx context.Context, task *Task) error {
	p, err := task.PhotoPayload()
	if err != nil {
		return err
	}

	photo, err := r.store.GetPhoto(task.RelatedLocalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	// Already uploaded inline with its non-conformity.
	if photo.Synced {
		return nil
	}

	res, err := r.api.UploadPhoto(ctx, photoFilename(p.InspectionLocalID, photo.LocalID), photo.Data)
	if err != nil {
		return err
	}

	return r.store.MarkPhotoSynced(photo.LocalID, res.URL)
}

func photoFilename(inspectionLocalID, photoLocalID int64) string {
	return fmt.Sprintf("inspection_%d_photo_%d.jpg", inspectionLocalID, photoLocalID)
}
