package authroles

import (
	domainauth "github.com/modhub/modhub-api/internal/domain/auth"
)

// StaticRoleMapper maps IdP groups by simple string membership rules. Every
// signed-in user is at least RoleUser; membership in AdminGroup elevates to
// RoleAdmin.
type StaticRoleMapper struct {
	AdminGroup string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	return domainauth.RoleUser
}
