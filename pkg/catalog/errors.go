package catalog

import "errors"

var (
	ErrInvalidPO    = errors.New("catalog: malformed PO file")
	ErrInvalidMO    = errors.New("catalog: malformed MO file")
	ErrWriteCatalog = errors.New("catalog: failed to write catalog")
	ErrReadCatalog  = errors.New("catalog: failed to read catalog")
)
