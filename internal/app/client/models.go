package client

import (
	"time"

	"fieldreport/internal/domain/inspection"
)

// Inspection is the local, possibly not-yet-synced inspection record.
// LocalID is assigned by the local store at creation and never changes;
// ServerID appears once the remote system accepts the record.
type Inspection struct {
	LocalID       int64           `json:"local_id"`
	ServerID      *int64          `json:"server_id,omitempty"`
	ClientLocalID *int64          `json:"client_local_id,omitempty"`
	Protocol      string          `json:"protocol"`
	Form          inspection.Form `json:"form"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	SyncedAt      *time.Time      `json:"synced_at,omitempty"`
}

// Synced reports whether the record has ever been accepted by the server.
func (i *Inspection) Synced() bool {
	return i.SyncedAt != nil
}

// Client is the local customer record. Document uniqueness is enforced by
// the local store; a record with Synced=true always carries a ServerID.
type Client struct {
	LocalID   int64     `json:"local_id"`
	ServerID  *int64    `json:"server_id,omitempty"`
	Name      string    `json:"name"`
	Document  string    `json:"document"`
	Contact   string    `json:"contact,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Synced    bool      `json:"synced"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Photo is a binary attachment for one non-conformity. The payload is
// immutable after creation; ServerURL is set once the upload is confirmed.
type Photo struct {
	LocalID           int64     `json:"local_id"`
	InspectionLocalID int64     `json:"inspection_local_id"`
	NonConformityKey  string    `json:"non_conformity_key"`
	Data              []byte    `json:"-"`
	Synced            bool      `json:"synced"`
	ServerURL         string    `json:"server_url,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
