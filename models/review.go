package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating is kept as a string; clients may send it as a JSON number.
type Rating string

func (r *Rating) UnmarshalJSON(data []byte) error {
	v, err := decodeScalar(data)
	if err != nil {
		return err
	}
	*r = Rating(v)
	return nil
}

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title     string             `bson:"title" json:"title"`
	Text      string             `bson:"text" json:"text"`
	Rating    Rating             `bson:"rating" json:"rating"`
	Book      primitive.ObjectID `bson:"book" json:"book"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	ImagePath string             `bson:"image_path,omitempty" json:"image_path,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
