package clients

// CreateClientRequest carries a new client payload.
type CreateClientRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=300"`
	Phone1  *string `json:"phone1,omitempty" validate:"omitempty,max=30"`
	Phone2  *string `json:"phone2,omitempty" validate:"omitempty,max=30"`
	TaxID   *string `json:"tax_id,omitempty" validate:"omitempty,max=50"`
}

// UpdateClientRequest patches client fields.
type UpdateClientRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=300"`
	Phone1  *string `json:"phone1,omitempty" validate:"omitempty,max=30"`
	Phone2  *string `json:"phone2,omitempty" validate:"omitempty,max=30"`
	TaxID   *string `json:"tax_id,omitempty" validate:"omitempty,max=50"`
}

// ListClientsRequest filters client listings.
type ListClientsRequest struct {
	Search *string `json:"search,omitempty"`
	Limit  int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset int     `json:"offset" validate:"gte=0"`
}
