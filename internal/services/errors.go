package services

import "errors"

// Dashboard service errors
var (
	// ErrNoData is returned by exports when the dataset is empty.
	ErrNoData = errors.New("no data available")
)
