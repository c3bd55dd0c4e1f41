package model

// Store is a point of sale (PV) as exposed by /api/stores.
type Store struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Provincia string `json:"provincia,omitempty"`
	Formato   string `json:"formato,omitempty"`
	Cliente   string `json:"cliente,omitempty"`
}

// StoreInput is the create/update form. Name is the only required field.
type StoreInput struct {
	Name      string `json:"name" validate:"required,notblank,min=2,max=120"`
	Provincia string `json:"provincia,omitempty" validate:"omitempty,max=80"`
	Formato   string `json:"formato,omitempty" validate:"omitempty,max=60"`
	Cliente   string `json:"cliente,omitempty" validate:"omitempty,max=120"`
}
