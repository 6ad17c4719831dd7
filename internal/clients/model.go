package clients

import "time"

// Client identifies a purchaser. Clients are owned independently of any
// sales document and referenced by foreign key from documents.
type Client struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Address *string `json:"address,omitempty"`
	Phone1  *string `json:"phone1,omitempty"`
	Phone2  *string `json:"phone2,omitempty"`
	// TaxID carries the Tunisian "matricule fiscal".
	TaxID *string `json:"tax_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
