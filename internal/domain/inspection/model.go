package inspection

import (
	"time"
)

// Inspection is the server-side record of a roof inspection. LocalID keeps
// the identifier the technician's device assigned before first sync, for
// audit and traceability.
type Inspection struct {
	ID        int64      `json:"id"`
	LocalID   int64      `json:"local_id,omitempty"`
	ClientID  *int64     `json:"client_id,omitempty"`
	Protocol  string     `json:"protocol"`
	Date      time.Time  `json:"date"`
	Address   string     `json:"address,omitempty"`
	City      string     `json:"city,omitempty"`
	State     string     `json:"state,omitempty"`
	RoofModel string     `json:"roof_model,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Tile is one row of the tile inventory.
type Tile struct {
	ID           int64   `json:"id,omitempty"`
	InspectionID int64   `json:"inspection_id,omitempty"`
	Model        string  `json:"model"`
	Thickness    string  `json:"thickness,omitempty"`
	Length       float64 `json:"length,omitempty"`
	Width        float64 `json:"width,omitempty"`
	Quantity     int     `json:"quantity"`
	Area         float64 `json:"area,omitempty"`
}

// NonConformity describes one issue found during the inspection. PhotoURLs
// are filled in only after the photos have been uploaded.
type NonConformity struct {
	ID           int64    `json:"id,omitempty"`
	InspectionID int64    `json:"inspection_id,omitempty"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	PhotoURLs    []string `json:"photo_urls,omitempty"`
}

// Form is the full inspection form as filled on the device. It is the
// snapshot stored locally and carried by sync tasks; tiles and
// non-conformities travel with it and are submitted row by row after the
// inspection itself is accepted.
type Form struct {
	Protocol        string          `json:"protocol"`
	Date            time.Time       `json:"date"`
	ClientLocalID   *int64          `json:"client_local_id,omitempty"`
	Address         string          `json:"address,omitempty"`
	City            string          `json:"city,omitempty"`
	State           string          `json:"state,omitempty"`
	RoofModel       string          `json:"roof_model,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Tiles           []Tile          `json:"tiles,omitempty"`
	NonConformities []NonConformity `json:"non_conformities,omitempty"`
}

// UploadResult is the server's answer to a photo upload.
type UploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}
