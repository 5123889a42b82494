package normalize

import "errors"

var (
	ErrMissingInput    = errors.New("normalize: no rows extracted")
	ErrMissingColumn   = errors.New("normalize: missing required column")
	ErrUnparseableDate = errors.New("normalize: unrecognized date format")
	ErrMissingField    = errors.New("normalize: missing canonical field")
	ErrMissingVersion  = errors.New("normalize: mapping and logic versions must be non-empty")
)
