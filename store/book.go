package store

import (
	"context"
	"time"

	"github.com/kevinaaaquil/readingbud/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error) {
	res, err := db.Books().InsertOne(ctx, book, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, insertErr(err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) ListBooks(ctx context.Context) ([]models.Book, error) {
	return findAll[models.Book](ctx, db.Books(), bson.M{}, byCreated())
}

func (db *DB) BooksByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Book, error) {
	return findAll[models.Book](ctx, db.Books(), bson.M{"_id": bson.M{"$in": ids}})
}

func (db *DB) BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	return findOne[models.Book](ctx, db.Books(), bson.M{"_id": id})
}

// UpdateBook writes the book's scalar fields and image slots. Reference arrays are left alone.
func (db *DB) UpdateBook(ctx context.Context, id primitive.ObjectID, book *models.Book) error {
	update := bson.M{
		"title":           book.Title,
		"author":          book.Author,
		"publishing_date": book.PublishingDate,
		"image_path_S":    book.ImagePathS,
		"image_path_M":    book.ImagePathM,
		"image_path_L":    book.ImagePathL,
		"updatedAt":       book.UpdatedAt,
	}
	_, err := db.Books().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

// AddBookRef adds ref to the named id array of one book if it is not already there.
func (db *DB) AddBookRef(ctx context.Context, bookID primitive.ObjectID, field string, ref primitive.ObjectID) error {
	_, err := db.Books().UpdateByID(ctx, bookID, bson.M{
		"$addToSet": bson.M{field: ref},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
	return err
}

// PullBookRef removes ref from the named id array of one book.
func (db *DB) PullBookRef(ctx context.Context, bookID primitive.ObjectID, field string, ref primitive.ObjectID) error {
	_, err := db.Books().UpdateByID(ctx, bookID, bson.M{
		"$pull": bson.M{field: ref},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	return err
}

// PullBookRefs removes every id in refs from the named array of every book that lists one.
func (db *DB) PullBookRefs(ctx context.Context, field string, refs []primitive.ObjectID) error {
	if len(refs) == 0 {
		return nil
	}
	_, err := db.Books().UpdateMany(ctx,
		bson.M{field: bson.M{"$in": refs}},
		bson.M{
			"$pull": bson.M{field: bson.M{"$in": refs}},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
	return err
}

func (db *DB) DeleteBook(ctx context.Context, id primitive.ObjectID) error {
	_, err := db.Books().DeleteOne(ctx, bson.M{"_id": id})
	return err
}
