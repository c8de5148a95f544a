package season

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrArchived  = errors.New("season is archived")
	ErrNotFound  = errors.New("season not found")
	ErrDuplicate = errors.New("season already exists")
)

var namePattern = regexp.MustCompile(`^(\d{4})/(\d{4})$`)

// Season is one campaign of the game, e.g. "2025/2026". At most one is active.
type Season struct {
	ID         string
	Name       string
	StartDate  time.Time
	EndDate    time.Time
	IsActive   bool
	IsArchived bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (s Season) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("season id is required")
	}
	if err := ValidateName(s.Name); err != nil {
		return err
	}
	if s.StartDate.IsZero() || s.EndDate.IsZero() {
		return fmt.Errorf("season date range is required")
	}
	if !s.EndDate.After(s.StartDate) {
		return fmt.Errorf("season end date must be after start date")
	}

	return nil
}

// ValidateName accepts consecutive years in the form "YYYY/YYYY".
func ValidateName(name string) error {
	matches := namePattern.FindStringSubmatch(name)
	if matches == nil {
		return fmt.Errorf("season name %q must look like 2025/2026", name)
	}
	first, _ := strconv.Atoi(matches[1])
	second, _ := strconv.Atoi(matches[2])
	if second != first+1 {
		return fmt.Errorf("season name %q must span consecutive years", name)
	}

	return nil
}

// IDFromName turns "2025/2026" into the path-safe id "2025-2026".
func IDFromName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), "/", "-")
}
