package auth

import (
	"strings"

	"github.com/monchobi/artschool/internal/app/models"
	"github.com/monchobi/artschool/internal/pkg/apperrors"
)

// Principal is the authenticated caller of an operation.
type Principal struct {
	Email string
	Role  models.RoleType
}

// IsAdmin reports whether the caller has the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// Rule decides whether a principal may do something.
type Rule func(p Principal) bool

// HasRole allows principals holding any of roles.
func HasRole(roles ...models.RoleType) Rule {
	return func(p Principal) bool {
		for _, r := range roles {
			if p.Role == r {
				return true
			}
		}
		return false
	}
}

// IsOwner allows the principal whose email matches email, case-insensitively.
func IsOwner(email string) Rule {
	return func(p Principal) bool {
		return p.Email != "" && strings.EqualFold(p.Email, email)
	}
}

// AnyOf allows the principal if one of rules does.
func AnyOf(rules ...Rule) Rule {
	return func(p Principal) bool {
		for _, r := range rules {
			if r(p) {
				return true
			}
		}
		return false
	}
}

// AllOf allows the principal only if every rule does.
func AllOf(rules ...Rule) Rule {
	return func(p Principal) bool {
		for _, r := range rules {
			if !r(p) {
				return false
			}
		}
		return true
	}
}

// Require returns a Forbidden error when rule rejects p.
func Require(p Principal, rule Rule) error {
	if p.Email == "" {
		return apperrors.ErrUnauthorized
	}
	if !rule(p) {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// OwnerOrAdmin lets a caller act on records of email only when they own them
// or are an administrator.
func OwnerOrAdmin(email string) Rule {
	return AnyOf(IsOwner(email), HasRole(models.RoleAdmin))
}
