package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The *View types are read projections with references expanded into summaries.

type UserSummary struct {
	ID       primitive.ObjectID `json:"_id"`
	FullName string             `json:"full_name"`
}

type BookSummary struct {
	ID     primitive.ObjectID `json:"_id"`
	Title  string             `json:"title"`
	Author string             `json:"author"`
}

type CollectionSummary struct {
	ID   primitive.ObjectID `json:"_id"`
	Name string             `json:"name"`
}

type ReviewSummary struct {
	ID     primitive.ObjectID  `json:"_id"`
	Rating Rating              `json:"rating"`
	Title  string              `json:"title"`
	Book   *BookSummary        `json:"book,omitempty"`
	User   *primitive.ObjectID `json:"user,omitempty"`
}

type UserView struct {
	ID          primitive.ObjectID  `json:"_id"`
	FullName    string              `json:"full_name"`
	Email       string              `json:"email"`
	Role        string              `json:"role"`
	Reviews     []ReviewSummary     `json:"reviews"`
	Followers   []UserSummary       `json:"followers"`
	Following   []UserSummary       `json:"following"`
	Collections []CollectionSummary `json:"collections"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

type BookView struct {
	ID             primitive.ObjectID  `json:"_id"`
	Title          string              `json:"title"`
	Author         string              `json:"author"`
	PublishingDate time.Time           `json:"publishing_date"`
	ImagePathS     string              `json:"image_path_S,omitempty"`
	ImagePathM     string              `json:"image_path_M,omitempty"`
	ImagePathL     string              `json:"image_path_L,omitempty"`
	Reviews        []ReviewSummary     `json:"reviews"`
	Collections    []CollectionSummary `json:"collections"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

type ReviewView struct {
	ID        primitive.ObjectID `json:"_id"`
	Title     string             `json:"title"`
	Text      string             `json:"text"`
	Rating    Rating             `json:"rating"`
	Book      *BookSummary       `json:"book"`
	User      primitive.ObjectID `json:"user"`
	ImagePath string             `json:"image_path,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type CollectionView struct {
	ID          primitive.ObjectID `json:"_id"`
	User        *UserSummary       `json:"user"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Books       []BookSummary      `json:"books"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}
