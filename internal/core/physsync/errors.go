package physsync

import "errors"

// ErrUnsupportedShape is reported for a CollisionShape whose kind has no
// physics counterpart. The entity stays physics-less.
var ErrUnsupportedShape = errors.New("unsupported collision shape")
