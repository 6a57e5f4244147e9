package common

import "errors"

// Error kinds shared by every service. Handlers translate them into HTTP statuses.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrEditConflict   = errors.New("edit conflict")
)
