package customer

import "time"

// Client is a customer/company referenced by inspections. Document is the
// business/tax id and must be unique.
type Client struct {
	ID        int64     `json:"id"`
	LocalID   int64     `json:"local_id,omitempty"`
	Name      string    `json:"name"`
	Document  string    `json:"document"`
	Contact   string    `json:"contact,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
