package taxonomy

import "errors"

var (
	ErrUnknownFormat = errors.New("taxonomy: unknown format")
	ErrInvalid       = errors.New("taxonomy: invalid taxonomy")
	ErrDecode        = errors.New("taxonomy: failed to decode taxonomy")
	ErrRead          = errors.New("taxonomy: failed to read taxonomy file")
)
