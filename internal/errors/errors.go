// Package errors holds the sentinel errors services return to the API layer.
// Callers wrap them with context and the handlers pick the HTTP status with
// errors.Is, without knowing which store or stream produced the failure.
package errors

import "errors"

var (
	// ErrNotFound: the conversation (or another addressed resource) does not exist. 404.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation: the input was rejected. A blank chat submission uses it too,
	// and the message stream endpoint answers that case with an empty 204. 400.
	ErrValidation = errors.New("validation failed")

	// ErrConflict: the request clashes with a reply that is still streaming. 409.
	ErrConflict = errors.New("resource conflict")

	// ErrPermission is reserved for a future auth layer. 403.
	ErrPermission = errors.New("permission denied")

	// ErrInternal hides store or upstream details from clients. 500.
	ErrInternal = errors.New("internal server error")
)
