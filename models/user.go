package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role constants for user authorization.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var ValidRoles = []string{RoleUser, RoleAdmin}

func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// MaxCollectionsPerUser caps how many collections one user may own.
const MaxCollectionsPerUser = 5

// Field names of the id arrays held on a user document.
const (
	UserReviews     = "reviews"
	UserFollowers   = "followers"
	UserFollowing   = "following"
	UserCollections = "collections"
)

type User struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	FullName    string               `bson:"full_name" json:"full_name"`
	Email       string               `bson:"email" json:"email"`
	Password    string               `bson:"password" json:"-"` // bcrypt hash
	Role        string               `bson:"role" json:"role"`
	Reviews     []primitive.ObjectID `bson:"reviews" json:"reviews"`
	Followers   []primitive.ObjectID `bson:"followers" json:"followers"`
	Following   []primitive.ObjectID `bson:"following" json:"following"`
	Collections []primitive.ObjectID `bson:"collections" json:"collections"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsFollowing reports whether u follows id.
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	return ContainsID(u.Following, id)
}
