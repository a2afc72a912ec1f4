package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrConflict              = errors.New("resource conflict")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrListenerRunning       = errors.New("match event listener already running")
)

// ErrMatchClosed is returned when a prediction targets a match that already kicked off.
var ErrMatchClosed = fmt.Errorf("%w: match is no longer open for predictions", ErrInvalidInput)
