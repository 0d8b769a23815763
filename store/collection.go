package store

import (
	"context"
	"time"

	"github.com/kevinaaaquil/readingbud/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) InsertCollection(ctx context.Context, c *models.Collection) (primitive.ObjectID, error) {
	res, err := db.Collections().InsertOne(ctx, c, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, insertErr(err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) CollectionByID(ctx context.Context, id primitive.ObjectID) (*models.Collection, error) {
	return findOne[models.Collection](ctx, db.Collections(), bson.M{"_id": id})
}

func (db *DB) ListCollections(ctx context.Context) ([]models.Collection, error) {
	return findAll[models.Collection](ctx, db.Collections(), bson.M{}, byCreated())
}

func (db *DB) CollectionsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Collection, error) {
	return findAll[models.Collection](ctx, db.Collections(), bson.M{"_id": bson.M{"$in": ids}})
}

func (db *DB) CollectionsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Collection, error) {
	return findAll[models.Collection](ctx, db.Collections(), bson.M{"user": userID})
}

// UpdateCollection writes name, description and the full books array.
func (db *DB) UpdateCollection(ctx context.Context, id primitive.ObjectID, c *models.Collection) error {
	_, err := db.Collections().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":        c.Name,
		"description": c.Description,
		"books":       c.Books,
		"updatedAt":   c.UpdatedAt,
	}})
	return err
}

func (db *DB) AddCollectionBook(ctx context.Context, collectionID, bookID primitive.ObjectID) error {
	_, err := db.Collections().UpdateByID(ctx, collectionID, bson.M{
		"$addToSet": bson.M{"books": bookID},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
	return err
}

func (db *DB) PullCollectionBook(ctx context.Context, collectionID, bookID primitive.ObjectID) error {
	_, err := db.Collections().UpdateByID(ctx, collectionID, bson.M{
		"$pull": bson.M{"books": bookID},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	return err
}

// PullBookFromCollections removes bookID from every collection that lists it.
func (db *DB) PullBookFromCollections(ctx context.Context, bookID primitive.ObjectID) error {
	_, err := db.Collections().UpdateMany(ctx,
		bson.M{"books": bookID},
		bson.M{
			"$pull": bson.M{"books": bookID},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
	return err
}

func (db *DB) DeleteCollection(ctx context.Context, id primitive.ObjectID) error {
	_, err := db.Collections().DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (db *DB) DeleteCollectionsByIDs(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := db.Collections().DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}
