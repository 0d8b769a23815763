// Package auth holds the caller identity, token signing and password hashing, and the
// authorization predicates every mutating operation applies.
package auth

import (
	"github.com/kevinaaaquil/readingbud/backend/apperr"
	"github.com/kevinaaaquil/readingbud/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identity is the authenticated caller decoded from a bearer token. A nil *Identity is an
// anonymous caller.
type Identity struct {
	ID       primitive.ObjectID
	Email    string
	FullName string
	Role     string
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

// LoginRequired fails when the caller is anonymous.
func LoginRequired(caller *Identity) error {
	if caller == nil {
		return apperr.ErrUnauthenticated
	}
	return nil
}

// AdminRequired fails unless the caller is an admin.
func AdminRequired(caller *Identity) error {
	if caller == nil {
		return apperr.ErrUnauthenticated
	}
	if !caller.IsAdmin() {
		return apperr.ErrForbidden
	}
	return nil
}

// OwnerOrAdmin fails unless the caller is an admin or owns the resource.
func OwnerOrAdmin(caller *Identity, ownerID primitive.ObjectID, action string) error {
	if caller == nil {
		return apperr.ErrUnauthenticated
	}
	if caller.IsAdmin() || caller.ID == ownerID {
		return nil
	}
	return apperr.Forbidden("Access forbidden: You can only %s or must be an admin.", action)
}
