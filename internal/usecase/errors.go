package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrConflict              = errors.New("state conflict")
)

// State conflicts. Each wraps ErrConflict so transport can map them together.
var (
	ErrDeadlinePassed   = fmt.Errorf("%w: gameweek deadline has passed", ErrConflict)
	ErrDuplicatePick    = fmt.Errorf("%w: pick already exists for gameweek", ErrConflict)
	ErrAlreadyProcessed = fmt.Errorf("%w: eliminations already processed", ErrConflict)
	ErrRuleViolation    = fmt.Errorf("%w: pick rule violated", ErrConflict)
)

var ErrNoActiveSeason = fmt.Errorf("%w: no active season", ErrNotFound)
