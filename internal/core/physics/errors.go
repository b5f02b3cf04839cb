package physics

import "errors"

var (
	ErrBodyNotFound   = errors.New("body not found")
	ErrStaticNotFound = errors.New("static not found")
	ErrInvalidShape   = errors.New("invalid shape")
	ErrShapeNotFound  = errors.New("shape index not registered")
	ErrInvalidStep    = errors.New("step duration must be positive and finite")
)
