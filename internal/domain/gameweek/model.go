package gameweek

import (
	"fmt"
	"time"
)

const (
	MinWeekNumber = 1
	MaxWeekNumber = 38

	// DefaultHalfBoundary is the last week number that belongs to the first half.
	DefaultHalfBoundary = 19
)

// Gameweek is one round of a season. Picks lock at Deadline.
type Gameweek struct {
	SeasonID         string
	WeekNumber       int
	Deadline         time.Time
	IsLocked         bool
	EliminationCount int
}

func (g Gameweek) DeadlinePassed(now time.Time) bool {
	return !g.Deadline.IsZero() && !now.Before(g.Deadline)
}

func ValidWeekNumber(week int) bool {
	return week >= MinWeekNumber && week <= MaxWeekNumber
}

// Halves splits a season into two pick-limit windows at a single boundary week.
type Halves struct {
	Boundary int
}

func NewHalves(boundary int) (Halves, error) {
	if boundary < MinWeekNumber || boundary >= MaxWeekNumber {
		return Halves{}, fmt.Errorf("half boundary must be within %d..%d, got %d", MinWeekNumber, MaxWeekNumber-1, boundary)
	}
	return Halves{Boundary: boundary}, nil
}

func DefaultHalves() Halves {
	return Halves{Boundary: DefaultHalfBoundary}
}

// Of returns 1 or 2.
func (h Halves) Of(week int) int {
	if week <= h.boundary() {
		return 1
	}
	return 2
}

// Range returns the inclusive week window of the half containing week.
func (h Halves) Range(week int) (int, int) {
	if h.Of(week) == 1 {
		return MinWeekNumber, h.boundary()
	}
	return h.boundary() + 1, MaxWeekNumber
}

func (h Halves) SameHalf(a, b int) bool {
	return h.Of(a) == h.Of(b)
}

func (h Halves) boundary() int {
	if h.Boundary < MinWeekNumber || h.Boundary >= MaxWeekNumber {
		return DefaultHalfBoundary
	}
	return h.Boundary
}
