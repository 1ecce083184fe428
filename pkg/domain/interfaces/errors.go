package interfaces

import "errors"

// Errors shared by every repository backend
var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyAdhered  = errors.New("user already adhered to complaint")
	ErrVersionConflict = errors.New("complaint was modified concurrently")
)
