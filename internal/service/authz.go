package service

import "github.com/tecnoacademia/attendance-api/internal/models"

// CanAccess decides whether the actor may touch a resource owned by
// ownerID. Administrators may access anything; everyone else only their
// own resources.
func CanAccess(claims *models.JWTClaims, ownerID string) bool {
	if claims == nil {
		return false
	}
	if claims.IsAdmin {
		return true
	}
	return ownerID == claims.InstructorID
}

// ScopeOwner resolves the owner filter for listing operations. Non-admin
// callers are always pinned to their own resources; administrators may
// optionally narrow by a requested owner.
func ScopeOwner(claims *models.JWTClaims, requested string) string {
	if claims == nil {
		return ""
	}
	if claims.IsAdmin {
		return requested
	}
	return claims.InstructorID
}
