package models

import (
	"fmt"
	"strings"
)

// Role is an ordered membership tier. Higher values include the lower tiers.
type Role int

const (
	RoleMember    Role = 100
	RoleModerator Role = 200
	RoleAdmin     Role = 300
)

func (r Role) IsModerator() bool { return r >= RoleModerator }

func (r Role) IsAdmin() bool { return r >= RoleAdmin }

func (r Role) String() string {
	switch {
	case r >= RoleAdmin:
		return "admin"
	case r >= RoleModerator:
		return "moderator"
	default:
		return "member"
	}
}

func ParseRole(name string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "member":
		return RoleMember, nil
	case "moderator":
		return RoleModerator, nil
	case "admin":
		return RoleAdmin, nil
	}
	return 0, fmt.Errorf("unknown role %q", name)
}
