package model

import "fmt"

// StudentGroup is a cohort of students taught together, unique per
// (department, year, section). Students holds opaque directory identifiers;
// the core never stores personal data.
type StudentGroup struct {
	Department string   `json:"department"`
	Year       int      `json:"year"`
	Section    string   `json:"section"`
	Students   []string `json:"students"`
	Active     bool     `json:"active"`
}

// Key returns the unique identity of the group, e.g. "CS-2-A".
func (g StudentGroup) Key() string {
	return fmt.Sprintf("%s-%d-%s", g.Department, g.Year, g.Section)
}

// Size returns the group enrollment, used for room capacity checks.
func (g StudentGroup) Size() int { return len(g.Students) }

// Validate checks the group configuration is sound.
func (g StudentGroup) Validate() error {
	if g.Department == "" || g.Section == "" {
		return fmt.Errorf("group: department and section are required")
	}
	if g.Year < 1 {
		return fmt.Errorf("group %s: year must be positive", g.Key())
	}
	return nil
}
