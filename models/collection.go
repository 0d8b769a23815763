package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Collection struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	User        primitive.ObjectID   `bson:"user" json:"user"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Books       []primitive.ObjectID `bson:"books" json:"books"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasBook reports whether the collection lists bookID.
func (c *Collection) HasBook(bookID primitive.ObjectID) bool {
	return ContainsID(c.Books, bookID)
}
