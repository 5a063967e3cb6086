// Path: internal/domain/errors.go
package domain

import "errors"

var (
	// ErrFetch marks a network failure or an unsuccessful/malformed catalog API answer.
	ErrFetch = errors.New("catalog fetch failed")

	ErrProductNotFound = errors.New("product not found on the current page")
	ErrInvalidPage     = errors.New("invalid page")
	ErrInvalidPageSize = errors.New("invalid page size")
	ErrInvalidSortKey  = errors.New("invalid sort key")

	// ErrPercentileRange is returned for percentiles outside [0, 100).
	ErrPercentileRange = errors.New("percentile out of range")
)
