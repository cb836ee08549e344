package calendar

import "errors"

// Виды ошибок движка календаря. Транспорты сопоставляют их со статусами
// HTTP и кодами gRPC, поэтому конкретные ошибки оборачивают один из них:
//
//	fmt.Errorf("%w: slot not found", ErrNotFound)
var (
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyBooked = errors.New("slot is already booked")
)
