package handlers

import "errors"

var (
	errInvalidPage     = errors.New("page must be a positive integer")
	errInvalidPageSize = errors.New("page_size must be a positive integer")
)
