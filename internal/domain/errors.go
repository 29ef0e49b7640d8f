package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrLocationNotFound = errors.New("location not found")
)
