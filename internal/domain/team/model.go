package team

import "fmt"

// Team is a real football club. Inactive teams (e.g. relegated) are never auto-assigned.
type Team struct {
	ID       string
	Name     string
	Short    string
	IsActive bool
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}

// ActiveOnly filters out inactive teams, preserving order.
func ActiveOnly(items []Team) []Team {
	out := make([]Team, 0, len(items))
	for _, item := range items {
		if item.IsActive {
			out = append(out, item)
		}
	}
	return out
}
