package domain

import "strings"

// Role constants define the allowed marketplace roles.
const (
	RoleUser  = "user"
	RoleChef  = "chef"
	RoleAdmin = "admin"
)

// Account status constants.
const (
	StatusActive = "active"
	StatusFraud  = "fraud"
)

// ValidRoles returns the set of valid roles.
func ValidRoles() []string {
	return []string{RoleUser, RoleChef, RoleAdmin}
}

// IsValidRole checks whether the given role string is a valid role.
// Comparison is case-insensitive, matching how guards evaluate roles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// ChefDetails carries the chef-specific part of a profile record.
type ChefDetails struct {
	Bio        string  `json:"bio,omitempty"`
	Specialty  string  `json:"specialty,omitempty"`
	Rating     float64 `json:"rating,omitempty"`
	MealsCount int     `json:"meals_count,omitempty"`
}

// Profile is the backend-owned record carrying role and account status.
// It is fetched fresh on every auth-state transition and never persisted
// locally.
type Profile struct {
	UID         string       `json:"uid"`
	Email       string       `json:"email"`
	DisplayName string       `json:"display_name,omitempty"`
	PhotoURL    string       `json:"photo_url,omitempty"`
	Address     string       `json:"address,omitempty"`
	Role        string       `json:"role"`
	Status      string       `json:"status"`
	ChefID      string       `json:"chef_id,omitempty"`
	ChefDetails *ChefDetails `json:"chef_details,omitempty"`
}

// HasRole reports whether the profile's role matches any of the given roles,
// case-insensitively.
func (p *Profile) HasRole(roles ...string) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if strings.EqualFold(p.Role, r) {
			return true
		}
	}
	return false
}
