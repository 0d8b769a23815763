package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Image slots on a book, named after their form/bson fields.
const (
	ImageSmall  = "image_path_S"
	ImageMedium = "image_path_M"
	ImageLarge  = "image_path_L"
)

var ImageSlots = []string{ImageSmall, ImageMedium, ImageLarge}

// Field names of the id arrays held on a book document.
const (
	BookReviews     = "reviews"
	BookCollections = "collections"
)

type Book struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Title          string               `bson:"title" json:"title"`
	Author         string               `bson:"author" json:"author"`
	PublishingDate time.Time            `bson:"publishing_date" json:"publishing_date"`
	ImagePathS     string               `bson:"image_path_S,omitempty" json:"image_path_S,omitempty"`
	ImagePathM     string               `bson:"image_path_M,omitempty" json:"image_path_M,omitempty"`
	ImagePathL     string               `bson:"image_path_L,omitempty" json:"image_path_L,omitempty"`
	Reviews        []primitive.ObjectID `bson:"reviews" json:"reviews"`
	Collections    []primitive.ObjectID `bson:"collections" json:"collections"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// Image returns the path stored in the named slot.
func (b *Book) Image(slot string) string {
	switch slot {
	case ImageSmall:
		return b.ImagePathS
	case ImageMedium:
		return b.ImagePathM
	case ImageLarge:
		return b.ImagePathL
	}
	return ""
}

// SetImage stores path in the named slot.
func (b *Book) SetImage(slot, path string) {
	switch slot {
	case ImageSmall:
		b.ImagePathS = path
	case ImageMedium:
		b.ImagePathM = path
	case ImageLarge:
		b.ImagePathL = path
	}
}
