package http

// Form submissions are decoded into these typed structures once at the
// boundary and checked before any use; handlers never reach into the raw
// form values afterwards.

// SearchFormDTO is the POST / payload.
type SearchFormDTO struct {
	Name   string `validate:"required"`
	Action string
}

// SaveFormDTO is the POST /add and POST /update payload.
type SaveFormDTO struct {
	Name  string `validate:"required"`
	Phone string `validate:"required"`
}

// DeleteFormDTO is the POST /delete payload.
type DeleteFormDTO struct {
	Name string `validate:"required"`
}
