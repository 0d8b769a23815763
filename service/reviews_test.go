package service_test

import (
	"context"
	"testing"

	"github.com/kevinaaaquil/readingbud/backend/apperr"
	"github.com/kevinaaaquil/readingbud/backend/models"
	"github.com/kevinaaaquil/readingbud/backend/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateReview_LinksBookAndUser(t *testing.T) {
	f := newFixture(t)
	admin := f.admin(t)
	ada := f.register(t, "Ada")
	book := f.book(t, admin, "Dune")

	r := f.review(t, ada, book.ID)

	assert.Equal(t, ada.ID, r.User)
	assert.Equal(t, book.ID, r.Book)
	assert.Equal(t, []primitive.ObjectID{r.ID}, f.loadBook(t, book.ID).Reviews)
	assert.Equal(t, []primitive.ObjectID{r.ID}, f.loadUser(t, ada.ID).Reviews)
}

func TestCreateReview_OnePerUserAndBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	ada := f.register(t, "Ada")
	grace := f.register(t, "Grace")
	book := f.book(t, admin, "Dune")
	f.review(t, ada, book.ID)

	_, err := f.svc.Reviews.Create(ctx, ada, service.ReviewInput{Title: "Again", Text: "Again", Rating: "1", Book: book.ID.Hex()})
	assert.ErrorIs(t, err, apperr.ErrDuplicateReview)

	reviews, err := f.store.ReviewsByUser(ctx, ada.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
	assert.Len(t, f.loadBook(t, book.ID).Reviews, 1)

	f.review(t, grace, book.ID)
	assert.Len(t, f.loadBook(t, book.ID).Reviews, 2)
}

func TestCreateReview_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	ada := f.register(t, "Ada")
	book := f.book(t, admin, "Dune")

	valid := service.ReviewInput{Title: "t", Text: "x", Rating: "4", Book: book.ID.Hex()}

	_, err := f.svc.Reviews.Create(ctx, nil, valid)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	missingRating := valid
	missingRating.Rating = ""
	_, err = f.svc.Reviews.Create(ctx, ada, missingRating)
	assert.ErrorIs(t, err, apperr.ErrUnprocessable)

	badID := valid
	badID.Book = "123"
	_, err = f.svc.Reviews.Create(ctx, ada, badID)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	unknown := valid
	unknown.Book = primitive.NewObjectID().Hex()
	_, err = f.svc.Reviews.Create(ctx, ada, unknown)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	ghost := identityOf(&models.User{ID: primitive.NewObjectID(), Role: models.RoleUser})
	_, err = f.svc.Reviews.Create(ctx, ghost, valid)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateReview_RejectsUnknownKeysBeforeLookup(t *testing.T) {
	f := newFixture(t)
	ada := f.register(t, "Ada")

	_, err := f.svc.Reviews.Update(context.Background(), ada, primitive.NewObjectID(), map[string]any{
		"title": "ok",
		"book":  "x",
		"user":  "y",
	})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "title, text, rating")
	assert.Equal(t, map[string]any{"rejected": []string{"book", "user"}}, apperr.From(err).Details)
}

func TestUpdateReview_OwnerOrAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	ada := f.register(t, "Ada")
	grace := f.register(t, "Grace")
	book := f.book(t, admin, "Dune")
	r := f.review(t, ada, book.ID)

	_, err := f.svc.Reviews.Update(ctx, grace, r.ID, map[string]any{"title": "mine now"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	updated, err := f.svc.Reviews.Update(ctx, ada, r.ID, map[string]any{"title": "Second thoughts", "rating": float64(4)})
	require.NoError(t, err)
	assert.Equal(t, "Second thoughts", updated.Title)
	assert.Equal(t, models.Rating("4"), updated.Rating)

	_, err = f.svc.Reviews.Update(ctx, admin, r.ID, map[string]any{"text": "moderated"})
	require.NoError(t, err)

	stored, err := f.store.ReviewByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "moderated", stored.Text)
	assert.Equal(t, "Second thoughts", stored.Title)

	_, err = f.svc.Reviews.Update(ctx, ada, r.ID, map[string]any{"text": ""})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDeleteReview_PullsReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	ada := f.register(t, "Ada")
	grace := f.register(t, "Grace")
	book := f.book(t, admin, "Dune")
	r := f.review(t, ada, book.ID)

	assert.ErrorIs(t, f.svc.Reviews.Delete(ctx, grace, r.ID), apperr.ErrForbidden)

	require.NoError(t, f.svc.Reviews.Delete(ctx, ada, r.ID))
	assert.Empty(t, f.loadBook(t, book.ID).Reviews)
	assert.Empty(t, f.loadUser(t, ada.ID).Reviews)
	gone, err := f.store.ReviewByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	assert.ErrorIs(t, f.svc.Reviews.Delete(ctx, ada, r.ID), apperr.ErrNotFound)
}

func TestReviewReads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Reviews.List(ctx)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	admin := f.admin(t)
	ada := f.register(t, "Ada")
	book := f.book(t, admin, "Dune")
	r := f.review(t, ada, book.ID)

	view, err := f.svc.Reviews.Get(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Book)
	assert.Equal(t, models.BookSummary{ID: book.ID, Title: "Dune", Author: "Author of Dune"}, *view.Book)

	all, err := f.svc.Reviews.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
