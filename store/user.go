package store

import (
	"context"
	"time"

	"github.com/kevinaaaquil/readingbud/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, db.Users(), bson.M{"email": email})
}

func (db *DB) CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	res, err := db.Users().InsertOne(ctx, user, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, insertErr(err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return findOne[models.User](ctx, db.Users(), bson.M{"_id": id})
}

func (db *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, db.Users(), bson.M{}, byCreated())
}

func (db *DB) UsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	return findAll[models.User](ctx, db.Users(), bson.M{"_id": bson.M{"$in": ids}})
}

// AddUserRef adds ref to the named id array of one user if it is not already there.
func (db *DB) AddUserRef(ctx context.Context, userID primitive.ObjectID, field string, ref primitive.ObjectID) error {
	_, err := db.Users().UpdateByID(ctx, userID, bson.M{
		"$addToSet": bson.M{field: ref},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
	return err
}

// PullUserRef removes ref from the named id array of one user.
func (db *DB) PullUserRef(ctx context.Context, userID primitive.ObjectID, field string, ref primitive.ObjectID) error {
	_, err := db.Users().UpdateByID(ctx, userID, bson.M{
		"$pull": bson.M{field: ref},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	return err
}

// PullUserRefs removes every id in refs from the named array of every user that lists one.
func (db *DB) PullUserRefs(ctx context.Context, field string, refs []primitive.ObjectID) error {
	if len(refs) == 0 {
		return nil
	}
	_, err := db.Users().UpdateMany(ctx,
		bson.M{field: bson.M{"$in": refs}},
		bson.M{
			"$pull": bson.M{field: bson.M{"$in": refs}},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
	return err
}

func (db *DB) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	_, err := db.Users().DeleteOne(ctx, bson.M{"_id": id})
	return err
}
