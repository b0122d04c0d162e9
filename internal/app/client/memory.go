package client

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStorage keeps everything in maps. It backs tests and the degraded
// mode used when the local database cannot be opened.
type MemoryStorage struct {
	mu sync.RWMutex

	clients     map[int64]*Client
	inspections map[int64]*Inspection
	photos      map[int64]*Photo
	tasks       map[int64]*Task

	nextClientID     int64
	nextInspectionID int64
	nextPhotoID      int64
	nextTaskID       int64
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		clients:     make(map[int64]*Client),
		inspections: make(map[int64]*Inspection),
		photos:      make(map[int64]*Photo),
		tasks:       make(map[int64]*Task),
	}
}

func (m *MemoryStorage) enqueueLocked(task *Task) {
	m.nextTaskID++
	task.ID = m.nextTaskID
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	if task.Progress == nil {
		task.Progress = Progress{}
	}
	copied := *task
	m.tasks[task.ID] = &copied
}

func (m *MemoryStorage) PutClient(c *Client, task *Task) (*Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.clients {
		if existing.Document == c.Document && existing.LocalID != c.LocalID {
			return nil, fmt.Errorf("%w: document %s", ErrDuplicate, c.Document)
		}
	}

	now := time.Now()
	if c.LocalID == 0 {
		m.nextClientID++
		c.LocalID = m.nextClientID
		c.CreatedAt = now
	} else if _, ok := m.clients[c.LocalID]; !ok {
		return nil, fmt.Errorf("%w: client %d", ErrNotFound, c.LocalID)
	}
	c.UpdatedAt = now

	copied := *c
	m.clients[c.LocalID] = &copied

	if task != nil {
		if task.RelatedLocalID == 0 {
			task.RelatedLocalID = c.LocalID
		}
		m.enqueueLocked(task)
	}
	return c, nil
}

func (m *MemoryStorage) GetClient(localID int64) (*Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.clients[localID]
	if !ok {
		return nil, fmt.Errorf("%w: client %d", ErrNotFound, localID)
	}
	copied := *c
	return &copied, nil
}

func (m *MemoryStorage) ListClients() ([]*Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var clients []*Client
	for _, c := range m.clients {
		copied := *c
		clients = append(clients, &copied)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].Name < clients[j].Name })
	return clients, nil
}

func (m *MemoryStorage) PendingClients() ([]*Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var clients []*Client
	for _, c := range m.clients {
		if !c.Synced {
			copied := *c
			clients = append(clients, &copied)
		}
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].CreatedAt.Before(clients[j].CreatedAt) })
	return clients, nil
}

func (m *MemoryStorage) MarkClientSynced(localID, serverID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.clients[localID]
	if !ok {
		return fmt.Errorf("%w: client %d", ErrNotFound, localID)
	}
	c.ServerID = &serverID
	c.Synced = true
	c.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStorage) PutInspection(ins *Inspection, task *Task) (*Inspection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ins.Protocol == "" {
		ins.Protocol = ins.Form.Protocol
	}
	for _, existing := range m.inspections {
		if existing.Protocol == ins.Protocol && existing.LocalID != ins.LocalID {
			return nil, fmt.Errorf("%w: protocol %s", ErrDuplicate, ins.Protocol)
		}
	}

	now := time.Now()
	if ins.LocalID == 0 {
		m.nextInspectionID++
		ins.LocalID = m.nextInspectionID
		ins.CreatedAt = now
	} else if _, ok := m.inspections[ins.LocalID]; !ok {
		return nil, fmt.Errorf("%w: inspection %d", ErrNotFound, ins.LocalID)
	}
	ins.UpdatedAt = now

	copied := *ins
	m.inspections[ins.LocalID] = &copied

	if task != nil {
		if task.RelatedLocalID == 0 {
			task.RelatedLocalID = ins.LocalID
		}
		m.enqueueLocked(task)
	}
	return ins, nil
}

func (m *MemoryStorage) GetInspection(localID int64) (*Inspection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ins, ok := m.inspections[localID]
	if !ok {
		return nil, fmt.Errorf("%w: inspection %d", ErrNotFound, localID)
	}
	copied := *ins
	return &copied, nil
}

func (m *MemoryStorage) ListInspections() ([]*Inspection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var inspections []*Inspection
	for _, ins := range m.inspections {
		copied := *ins
		inspections = append(inspections, &copied)
	}
	sort.Slice(inspections, func(i, j int) bool {
		return inspections[i].CreatedAt.After(inspections[j].CreatedAt)
	})
	return inspections, nil
}

func (m *MemoryStorage) PendingInspections() ([]*Inspection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var inspections []*Inspection
	for _, ins := range m.inspections {
		if ins.SyncedAt == nil {
			copied := *ins
			inspections = append(inspections, &copied)
		}
	}
	sort.Slice(inspections, func(i, j int) bool {
		return inspections[i].CreatedAt.Before(inspections[j].CreatedAt)
	})
	return inspections, nil
}

func (m *MemoryStorage) SetInspectionServerID(localID, serverID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ins, ok := m.inspections[localID]
	if !ok {
		return fmt.Errorf("%w: inspection %d", ErrNotFound, localID)
	}
	ins.ServerID = &serverID
	return nil
}

func (m *MemoryStorage) MarkInspectionSynced(localID int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ins, ok := m.inspections[localID]
	if !ok {
		return fmt.Errorf("%w: inspection %d", ErrNotFound, localID)
	}
	if ins.SyncedAt == nil || ins.SyncedAt.Before(at) {
		stamp := at
		ins.SyncedAt = &stamp
	}
	return nil
}

func (m *MemoryStorage) DeleteInspection(localID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.inspections[localID]; !ok {
		return fmt.Errorf("%w: inspection %d", ErrNotFound, localID)
	}

	for id, p := range m.photos {
		if p.InspectionLocalID == localID {
			for taskID, t := range m.tasks {
				if t.Kind == KindUploadPhoto && t.RelatedLocalID == id {
					delete(m.tasks, taskID)
				}
			}
			delete(m.photos, id)
		}
	}
	for taskID, t := range m.tasks {
		if (t.Kind == KindCreateInspection || t.Kind == KindUpdateInspection) && t.RelatedLocalID == localID {
			delete(m.tasks, taskID)
		}
	}
	delete(m.inspections, localID)
	return nil
}

func (m *MemoryStorage) SavePhoto(p *Photo, task *Task) (*Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextPhotoID++
	p.LocalID = m.nextPhotoID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	copied := *p
	m.photos[p.LocalID] = &copied

	if task != nil {
		if task.RelatedLocalID == 0 {
			task.RelatedLocalID = p.LocalID
		}
		m.enqueueLocked(task)
	}
	return p, nil
}

func (m *MemoryStorage) GetPhoto(localID int64) (*Photo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.photos[localID]
	if !ok {
		return nil, fmt.Errorf("%w: photo %d", ErrNotFound, localID)
	}
	copied := *p
	return &copied, nil
}

func (m *MemoryStorage) PhotosForInspection(inspectionLocalID int64) ([]*Photo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var photos []*Photo
	for _, p := range m.photos {
		if p.InspectionLocalID == inspectionLocalID {
			copied := *p
			photos = append(photos, &copied)
		}
	}
	sort.Slice(photos, func(i, j int) bool { return photos[i].LocalID < photos[j].LocalID })
	return photos, nil
}

func (m *MemoryStorage) MarkPhotoSynced(localID int64, serverURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.photos[localID]
	if !ok {
		return fmt.Errorf("%w: photo %d", ErrNotFound, localID)
	}
	p.Synced = true
	p.ServerURL = serverURL
	return nil
}

func (m *MemoryStorage) DeletePhoto(localID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.photos[localID]; !ok {
		return fmt.Errorf("%w: photo %d", ErrNotFound, localID)
	}
	for taskID, t := range m.tasks {
		if t.Kind == KindUploadPhoto && t.RelatedLocalID == localID {
			delete(m.tasks, taskID)
		}
	}
	delete(m.photos, localID)
	return nil
}

func (m *MemoryStorage) Enqueue(task *Task) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.enqueueLocked(task)
	return task, nil
}

func (m *MemoryStorage) PendingTasks(maxRetries int) ([]*Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var tasks []*Task
	for _, t := range m.tasks {
		if t.Retries < maxRetries && !t.Conflict {
			copied := *t
			tasks = append(tasks, &copied)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (m *MemoryStorage) HasPendingTask(kind TaskKind, relatedLocalID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.tasks {
		if t.Kind == kind && t.RelatedLocalID == relatedLocalID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStorage) PendingCount() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, t := range m.tasks {
		if !t.Conflict {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStorage) ConflictTasks() ([]*Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var tasks []*Task
	for _, t := range m.tasks {
		if t.Conflict {
			copied := *t
			tasks = append(tasks, &copied)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (m *MemoryStorage) CompleteTask(taskID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[taskID]; !ok {
		return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
	}
	delete(m.tasks, taskID)
	return nil
}

func (m *MemoryStorage) RecordFailure(taskID int64, taskErr error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[taskID]
	if !ok {
		return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
	}
	t.Retries++
	now := time.Now()
	t.LastAttemptAt = &now
	if taskErr != nil {
		t.LastError = taskErr.Error()
	}
	return nil
}

func (m *MemoryStorage) MarkConflict(taskID int64, taskErr error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[taskID]
	if !ok {
		return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
	}
	t.Conflict = true
	now := time.Now()
	t.LastAttemptAt = &now
	if taskErr != nil {
		t.LastError = taskErr.Error()
	}
	return nil
}

func (m *MemoryStorage) SaveProgress(taskID int64, progress Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[taskID]
	if !ok {
		return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
	}
	copied := make(Progress, len(progress))
	for k, v := range progress {
		copied[k] = v
	}
	t.Progress = copied
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
