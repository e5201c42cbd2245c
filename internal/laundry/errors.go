package laundry

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("conflict")
)

// MissingFieldsMessage is shown when a required form field is left empty.
const MissingFieldsMessage = "Please fill in all fields"
