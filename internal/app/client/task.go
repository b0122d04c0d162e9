package client

import (
	"encoding/json"
	"fmt"
	"time"

	"fieldreport/internal/domain/inspection"
)

// TaskKind identifies the mutation a queued task describes. Dispatch in the
// reconciler switches exhaustively over these values.
type TaskKind string

const (
	KindCreateInspection TaskKind = "create-inspection"
	KindUpdateInspection TaskKind = "update-inspection"
	KindCreateClient     TaskKind = "create-client"
	KindUpdateClient     TaskKind = "update-client"
	KindUploadPhoto      TaskKind = "upload-photo"
)

func (k TaskKind) Valid() bool {
	switch k {
	case KindCreateInspection, KindUpdateInspection, KindCreateClient, KindUpdateClient, KindUploadPhoto:
		return true
	}
	return false
}

// Task is one durable mutation intent awaiting confirmation by the remote
// system. Payload is the point-in-time snapshot captured when the task was
// enqueued; later edits to the record produce a new task and never touch an
// existing one.
type Task struct {
	ID             int64           `json:"id"`
	Kind           TaskKind        `json:"kind"`
	Payload        json.RawMessage `json:"payload"`
	RelatedLocalID int64           `json:"related_local_id"`
	Retries        int             `json:"retries"`
	Conflict       bool            `json:"conflict"`
	Progress       Progress        `json:"progress,omitempty"`
	LastAttemptAt  *time.Time      `json:"last_attempt_at,omitempty"`
	LastError      string          `json:"last_error,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Progress checkpoints the sub-steps of a multi-step task (tile rows,
// non-conformity rows) so a re-entered task never resends a completed step.
type Progress map[string]bool

func (p Progress) Done(step string) bool {
	return p[step]
}

func (p Progress) Mark(step string) Progress {
	if p == nil {
		p = Progress{}
	}
	p[step] = true
	return p
}

// ClientPayload is the snapshot carried by create-client and update-client
// tasks.
type ClientPayload struct {
	Name     string `json:"name"`
	Document string `json:"document"`
	Contact  string `json:"contact,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// InspectionPayload is the snapshot carried by create-inspection and
// update-inspection tasks. The form includes tile rows and non-conformities;
// ClientLocalID is resolved to a server id at dispatch time.
type InspectionPayload struct {
	ClientLocalID *int64          `json:"client_local_id,omitempty"`
	Form          inspection.Form `json:"form"`
}

// PhotoPayload is the snapshot carried by upload-photo tasks. The blob itself
// stays in the attachment store and is addressed through RelatedLocalID; its
// row id does not exist yet when the payload is captured.
type PhotoPayload struct {
	InspectionLocalID int64  `json:"inspection_local_id"`
	NonConformityKey  string `json:"non_conformity_key"`
}

// NewTask captures payload as the task's snapshot.
func NewTask(kind TaskKind, payload any, relatedLocalID int64) (*Task, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown task kind: %s", kind)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal task payload: %w", err)
	}

	return &Task{
		Kind:           kind,
		Payload:        raw,
		RelatedLocalID: relatedLocalID,
		CreatedAt:      time.Now(),
	}, nil
}

// ClientPayload decodes the task payload for client tasks.
func (t *Task) ClientPayload() (*ClientPayload, error) {
	if t.Kind != KindCreateClient && t.Kind != KindUpdateClient {
		return nil, fmt.Errorf("task %d is %s, not a client task", t.ID, t.Kind)
	}

	var p ClientPayload
	if err := json.Unmarshal(t.Payload, &p); err != nil {
		return nil, fmt.Errorf("decode client payload: %w", err)
	}
	return &p, nil
}

// InspectionPayload decodes the task payload for inspection tasks.
func (t *Task) InspectionPayload() (*InspectionPayload, error) {
	if t.Kind != KindCreateInspection && t.Kind != KindUpdateInspection {
		return nil, fmt.Errorf("task %d is %s, not an inspection task", t.ID, t.Kind)
	}

	var p InspectionPayload
	if err := json.Unmarshal(t.Payload, &p); err != nil {
		return nil, fmt.Errorf("decode inspection payload: %w", err)
	}
	return &p, nil
}

// PhotoPayload decodes the task payload for upload-photo tasks.
func (t *Task) PhotoPayload() (*PhotoPayload, error) {
	if t.Kind != KindUploadPhoto {
		return nil, fmt.Errorf("task %d is %s, not a photo task", t.ID, t.Kind)
	}

	var p PhotoPayload
	if err := json.Unmarshal(t.Payload, &p); err != nil {
		return nil, fmt.Errorf("decode photo payload: %w", err)
	}
	return &p, nil
}
