package auth

import "github.com/collegebuddy/api/model"

// Area is a group of routes sharing one access rule
type Area string

const (
	AreaAuthenticated Area = "authenticated"
	AreaAdmin         Area = "admin"
	AreaSuperAdmin    Area = "super-admin"
)

var policy = map[Area][]string{
	AreaAuthenticated: {model.RoleUser, model.RoleStudent, model.RoleAdmin, model.RoleSuperAdmin},
	AreaAdmin:         {model.RoleAdmin, model.RoleSuperAdmin},
	AreaSuperAdmin:    {model.RoleSuperAdmin},
}

// Authorize is the single access decision for every route area
func Authorize(role string, area Area) bool {
	for _, allowed := range policy[area] {
		if allowed == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether role is one of roles
func HasAnyRole(role string, roles ...string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsStaff reports whether role may manage content
func IsStaff(role string) bool {
	return Authorize(role, AreaAdmin)
}
