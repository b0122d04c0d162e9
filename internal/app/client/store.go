package client

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a record does not exist locally.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned on a local unique-constraint violation
	// (client document, inspection protocol).
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the transactional local persistence layer: four collections
// (inspections, clients, photos, sync queue) with indexed lookup, surviving
// process restarts. Every mutating call runs in a single transaction; the
// optional *Task argument on Put/Save calls is enqueued atomically with the
// record write so a crash can never separate a mutation from its intent.
//
// The reconciler and the CLI depend on this interface, not on the sqlite
// implementation, so they can be tested against an in-memory fake.
type Store interface {
	// Clients.
	PutClient(c *Client, task *Task) (*Client, error)
	GetClient(localID int64) (*Client, error)
	ListClients() ([]*Client, error)
	PendingClients() ([]*Client, error)
	MarkClientSynced(localID, serverID int64) error

	// Inspections.
	PutInspection(ins *Inspection, task *Task) (*Inspection, error)
	GetInspection(localID int64) (*Inspection, error)
	ListInspections() ([]*Inspection, error)
	PendingInspections() ([]*Inspection, error)
	// SetInspectionServerID checkpoints the server identity as soon as the
	// create call succeeds, before dependent rows are submitted.
	SetInspectionServerID(localID, serverID int64) error
	// MarkInspectionSynced sets synced_at; the value only ever moves
	// forward and is never cleared.
	MarkInspectionSynced(localID int64, at time.Time) error
	// DeleteInspection cascades to the inspection's photos and to any
	// queued tasks referencing the inspection or its photos.
	DeleteInspection(localID int64) error

	// Photos.
	SavePhoto(p *Photo, task *Task) (*Photo, error)
	GetPhoto(localID int64) (*Photo, error)
	PhotosForInspection(inspectionLocalID int64) ([]*Photo, error)
	MarkPhotoSynced(localID int64, serverURL string) error
	DeletePhoto(localID int64) error

	// Sync queue.
	Enqueue(task *Task) (*Task, error)
	PendingTasks(maxRetries int) ([]*Task, error)
	HasPendingTask(kind TaskKind, relatedLocalID int64) (bool, error)
	PendingCount() (int, error)
	ConflictTasks() ([]*Task, error)
	CompleteTask(taskID int64) error
	RecordFailure(taskID int64, taskErr error) error
	// MarkConflict parks a task outside the retry path; it stays visible
	// through ConflictTasks until corrected manually.
	MarkConflict(taskID int64, taskErr error) error
	SaveProgress(taskID int64, progress Progress) error

	Close() error
}
