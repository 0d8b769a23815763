package service

import (
	"context"

	"github.com/kevinaaaquil/readingbud/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore persists users and the id arrays they carry.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	AddUserRef(ctx context.Context, userID primitive.ObjectID, field string, ref primitive.ObjectID) error
	PullUserRef(ctx context.Context, userID primitive.ObjectID, field string, ref primitive.ObjectID) error
	PullUserRefs(ctx context.Context, field string, refs []primitive.ObjectID) error
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
}

// BookStore persists books and the id arrays they carry.
type BookStore interface {
	InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error)
	BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	ListBooks(ctx context.Context) ([]models.Book, error)
	BooksByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Book, error)
	UpdateBook(ctx context.Context, id primitive.ObjectID, book *models.Book) error
	AddBookRef(ctx context.Context, bookID primitive.ObjectID, field string, ref primitive.ObjectID) error
	PullBookRef(ctx context.Context, bookID primitive.ObjectID, field string, ref primitive.ObjectID) error
	PullBookRefs(ctx context.Context, field string, refs []primitive.ObjectID) error
	DeleteBook(ctx context.Context, id primitive.ObjectID) error
}

type ReviewStore interface {
	InsertReview(ctx context.Context, review *models.Review) (primitive.ObjectID, error)
	ReviewByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	ReviewByUserAndBook(ctx context.Context, userID, bookID primitive.ObjectID) (*models.Review, error)
	ListReviews(ctx context.Context) ([]models.Review, error)
	ReviewsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Review, error)
	ReviewsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Review, error)
	ReviewsByBook(ctx context.Context, bookID primitive.ObjectID) ([]models.Review, error)
	UpdateReview(ctx context.Context, id primitive.ObjectID, review *models.Review) error
	DeleteReview(ctx context.Context, id primitive.ObjectID) error
	DeleteReviewsByUser(ctx context.Context, userID primitive.ObjectID) error
	DeleteReviewsByBook(ctx context.Context, bookID primitive.ObjectID) error
}

type CollectionStore interface {
	InsertCollection(ctx context.Context, c *models.Collection) (primitive.ObjectID, error)
	CollectionByID(ctx context.Context, id primitive.ObjectID) (*models.Collection, error)
	ListCollections(ctx context.Context) ([]models.Collection, error)
	CollectionsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Collection, error)
	CollectionsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Collection, error)
	UpdateCollection(ctx context.Context, id primitive.ObjectID, c *models.Collection) error
	AddCollectionBook(ctx context.Context, collectionID, bookID primitive.ObjectID) error
	PullCollectionBook(ctx context.Context, collectionID, bookID primitive.ObjectID) error
	PullBookFromCollections(ctx context.Context, bookID primitive.ObjectID) error
	DeleteCollection(ctx context.Context, id primitive.ObjectID) error
	DeleteCollectionsByIDs(ctx context.Context, ids []primitive.ObjectID) error
}

// Store is everything the services need from persistence. Both *store.DB and
// *memory.Store satisfy it. Lookups return (nil, nil) when nothing matches.
type Store interface {
	UserStore
	BookStore
	ReviewStore
	CollectionStore
}
