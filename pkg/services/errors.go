package services

import "errors"

// Error taxonomy shared by the HTTP controllers and the ws hub. Controllers
// map these to 400/403/404; anything else is treated as internal and only
// logged server-side.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
)
