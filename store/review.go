package store

import (
	"context"

	"github.com/kevinaaaquil/readingbud/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsertReview returns ErrDuplicateKey when the (user, book) pair is already reviewed.
func (db *DB) InsertReview(ctx context.Context, review *models.Review) (primitive.ObjectID, error) {
	res, err := db.Reviews().InsertOne(ctx, review, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, insertErr(err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) ReviewByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	return findOne[models.Review](ctx, db.Reviews(), bson.M{"_id": id})
}

func (db *DB) ReviewByUserAndBook(ctx context.Context, userID, bookID primitive.ObjectID) (*models.Review, error) {
	return findOne[models.Review](ctx, db.Reviews(), bson.M{"user": userID, "book": bookID})
}

func (db *DB) ListReviews(ctx context.Context) ([]models.Review, error) {
	return findAll[models.Review](ctx, db.Reviews(), bson.M{}, byCreated())
}

func (db *DB) ReviewsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Review, error) {
	return findAll[models.Review](ctx, db.Reviews(), bson.M{"_id": bson.M{"$in": ids}})
}

func (db *DB) ReviewsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Review, error) {
	return findAll[models.Review](ctx, db.Reviews(), bson.M{"user": userID})
}

func (db *DB) ReviewsByBook(ctx context.Context, bookID primitive.ObjectID) ([]models.Review, error) {
	return findAll[models.Review](ctx, db.Reviews(), bson.M{"book": bookID})
}

// UpdateReview writes title, text and rating.
func (db *DB) UpdateReview(ctx context.Context, id primitive.ObjectID, review *models.Review) error {
	_, err := db.Reviews().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"title":     review.Title,
		"text":      review.Text,
		"rating":    review.Rating,
		"updatedAt": review.UpdatedAt,
	}})
	return err
}

func (db *DB) DeleteReview(ctx context.Context, id primitive.ObjectID) error {
	_, err := db.Reviews().DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (db *DB) DeleteReviewsByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := db.Reviews().DeleteMany(ctx, bson.M{"user": userID})
	return err
}

func (db *DB) DeleteReviewsByBook(ctx context.Context, bookID primitive.ObjectID) error {
	_, err := db.Reviews().DeleteMany(ctx, bson.M{"book": bookID})
	return err
}
