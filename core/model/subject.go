package model

import "fmt"

// Subject is an academic course offered by a department.
type Subject struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Department  string `json:"department"`
	Credits     int    `json:"credits"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`
}

// Validate checks the subject configuration is sound.
func (s Subject) Validate() error {
	if s.Code == "" {
		return fmt.Errorf("subject code is required")
	}
	if s.Department == "" {
		return fmt.Errorf("subject %s: department is required", s.Code)
	}
	if s.Credits < 1 || s.Credits > 6 {
		return fmt.Errorf("subject %s: credits must be between 1 and 6", s.Code)
	}
	return nil
}
