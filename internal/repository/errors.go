package repository

import "errors"

// ErrAlreadyAnswered is returned when a puzzle answer is recorded twice.
var ErrAlreadyAnswered = errors.New("puzzle already answered")
