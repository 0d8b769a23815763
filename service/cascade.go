package service

import (
	"context"
	"log/slog"

	"github.com/kevinaaaquil/readingbud/backend/apperr"
	"github.com/kevinaaaquil/readingbud/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cascade issues the compensating writes that remove every reference to a deleted entity.
// A failed write aborts the cascade with an Unexpected error naming the step; writes that
// already succeeded stay in place.
type Cascade struct {
	store  Store
	images ImageStore
	logger *slog.Logger
}

func NewCascade(store Store, images ImageStore, logger *slog.Logger) *Cascade {
	return &Cascade{store: store, images: images, logger: logger}
}

func (c *Cascade) fail(step string, err error) error {
	c.logger.Error("cascade aborted", "step", step, "error", err)
	return apperr.Unexpected(step, err)
}

// DeleteUser removes the user's reviews and collections, detaches them from books, drops
// the user from every follow list and finally deletes the user.
func (c *Cascade) DeleteUser(ctx context.Context, user *models.User) error {
	reviews, err := c.store.ReviewsByUser(ctx, user.ID)
	if err != nil {
		return c.fail("delete user: load reviews", err)
	}
	pulls := make([]func() error, 0, len(reviews))
	for _, r := range reviews {
		pulls = append(pulls, func() error {
			return c.store.PullBookRef(ctx, r.Book, models.BookReviews, r.ID)
		})
	}
	if err := runAll(pulls...); err != nil {
		return c.fail("delete user: pull reviews from books", err)
	}
	// Review ids listed on the user but already gone from the reviews collection.
	if stale := staleIDs(user.Reviews, reviews, reviewID); len(stale) > 0 {
		if err := c.store.PullBookRefs(ctx, models.BookReviews, stale); err != nil {
			return c.fail("delete user: pull reviews from books", err)
		}
	}
	if err := c.store.DeleteReviewsByUser(ctx, user.ID); err != nil {
		return c.fail("delete user: delete reviews", err)
	}

	owned, err := c.store.CollectionsByUser(ctx, user.ID)
	if err != nil {
		return c.fail("delete user: load collections", err)
	}
	colIDs := append([]primitive.ObjectID{}, user.Collections...)
	for _, col := range owned {
		colIDs = append(colIDs, col.ID)
	}
	colIDs = models.UniqueIDs(colIDs)
	if err := c.store.PullBookRefs(ctx, models.BookCollections, colIDs); err != nil {
		return c.fail("delete user: pull collections from books", err)
	}
	if err := c.store.DeleteCollectionsByIDs(ctx, colIDs); err != nil {
		return c.fail("delete user: delete collections", err)
	}

	self := []primitive.ObjectID{user.ID}
	if err := runAll(
		func() error { return c.store.PullUserRefs(ctx, models.UserFollowing, self) },
		func() error { return c.store.PullUserRefs(ctx, models.UserFollowers, self) },
	); err != nil {
		return c.fail("delete user: pull follow references", err)
	}
	if err := c.store.DeleteUser(ctx, user.ID); err != nil {
		return c.fail("delete user: delete user record", err)
	}
	c.logger.Info("user deleted", "user_id", user.ID.Hex(), "reviews", len(reviews), "collections", len(colIDs))
	return nil
}

// DeleteBook detaches the book from collections and users, deletes its reviews and the
// record, then removes its stored image artifacts.
func (c *Cascade) DeleteBook(ctx context.Context, book *models.Book) error {
	if err := c.store.PullBookFromCollections(ctx, book.ID); err != nil {
		return c.fail("delete book: pull book from collections", err)
	}
	reviews, err := c.store.ReviewsByBook(ctx, book.ID)
	if err != nil {
		return c.fail("delete book: load reviews", err)
	}
	reviewIDs := append([]primitive.ObjectID{}, book.Reviews...)
	for _, r := range reviews {
		reviewIDs = append(reviewIDs, r.ID)
	}
	if err := c.store.PullUserRefs(ctx, models.UserReviews, models.UniqueIDs(reviewIDs)); err != nil {
		return c.fail("delete book: pull reviews from users", err)
	}
	if err := c.store.DeleteReviewsByBook(ctx, book.ID); err != nil {
		return c.fail("delete book: delete reviews", err)
	}
	if err := c.store.DeleteBook(ctx, book.ID); err != nil {
		return c.fail("delete book: delete book record", err)
	}
	for _, slot := range models.ImageSlots {
		c.removeArtifact(ctx, book.Image(slot))
	}
	return nil
}

// DeleteCollection detaches the collection from its owner and its books, then deletes it.
func (c *Cascade) DeleteCollection(ctx context.Context, col *models.Collection) error {
	refs := []primitive.ObjectID{col.ID}
	if err := runAll(
		func() error { return c.store.PullUserRef(ctx, col.User, models.UserCollections, col.ID) },
		func() error { return c.store.PullBookRefs(ctx, models.BookCollections, refs) },
	); err != nil {
		return c.fail("delete collection: pull references", err)
	}
	if err := c.store.DeleteCollection(ctx, col.ID); err != nil {
		return c.fail("delete collection: delete collection record", err)
	}
	return nil
}

// DeleteReview pulls the review from its book and user and deletes it, all three concurrently.
func (c *Cascade) DeleteReview(ctx context.Context, review *models.Review) error {
	if err := runAll(
		func() error { return c.store.PullBookRef(ctx, review.Book, models.BookReviews, review.ID) },
		func() error { return c.store.PullUserRef(ctx, review.User, models.UserReviews, review.ID) },
		func() error { return c.store.DeleteReview(ctx, review.ID) },
	); err != nil {
		return c.fail("delete review", err)
	}
	return nil
}

// removeArtifact deletes a stored image. External URLs and failures are skipped; failures are logged.
func (c *Cascade) removeArtifact(ctx context.Context, path string) {
	if path == "" || IsExternalImage(path) || c.images == nil {
		return
	}
	if err := c.images.Delete(ctx, path); err != nil {
		c.logger.Warn("failed to delete image artifact", "key", path, "error", err)
	}
}

// staleIDs returns the ids in listed that are not among found.
func staleIDs[T any](listed []primitive.ObjectID, found []T, id func(*T) primitive.ObjectID) []primitive.ObjectID {
	have := indexBy(found, id)
	var out []primitive.ObjectID
	for _, l := range listed {
		if _, ok := have[l]; !ok {
			out = append(out, l)
		}
	}
	return out
}
