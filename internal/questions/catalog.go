package questions

import (
	"errors"
	"strings"
)

const (
	DefaultLevel    = "Mid-Level"
	DefaultIndustry = "Technology"
	DefaultCount    = 2
)

// ErrEmptyRole is returned when no job role was given.
var ErrEmptyRole = errors.New("Please enter a job role")

// Catalog lists the choices offered in pickers. Any non-empty job role is
// accepted; Roles is only a suggestion list.
type Catalog struct {
	Roles      []string `json:"jobRoles"`
	Levels     []string `json:"experienceLevels"`
	Industries []string `json:"industries"`
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		Roles: []string{
			"Software Engineer",
			"Frontend Developer",
			"Backend Developer",
			"Full Stack Developer",
			"DevOps Engineer",
			"Data Scientist",
			"Machine Learning Engineer",
			"Product Manager",
			"UX Designer",
			"QA Engineer",
			"Mobile Developer",
			"Cloud Architect",
		},
		Levels: []string{"Entry Level", DefaultLevel, "Senior", "Lead"},
		Industries: []string{
			DefaultIndustry,
			"Finance",
			"Healthcare",
			"E-commerce",
			"Education",
			"Government",
			"Entertainment",
			"Manufacturing",
			"Consulting",
			"Energy",
		},
	}
}

// ValidateRole trims role and rejects it when empty.
func ValidateRole(role string) (string, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return "", ErrEmptyRole
	}
	return role, nil
}

// HasLevel reports whether level is one of the catalog's levels.
func (c Catalog) HasLevel(level string) bool {
	for _, l := range c.Levels {
		if l == level {
			return true
		}
	}
	return false
}

// HasIndustry reports whether industry is one of the catalog's industries.
func (c Catalog) HasIndustry(industry string) bool {
	for _, i := range c.Industries {
		if i == industry {
			return true
		}
	}
	return false
}
