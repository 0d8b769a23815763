package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/kevinaaaquil/readingbud/backend/apperr"
	"github.com/kevinaaaquil/readingbud/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSweep_RepairsAndIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	ada := f.register(t, "Ada")
	grace := f.register(t, "Grace")
	dune := f.book(t, admin, "Dune")
	emma := f.book(t, admin, "Emma")
	r := f.review(t, ada, dune.ID)
	col := f.collection(t, ada, "Sci-fi", dune.ID)

	// Break the graph the way interrupted cascades would.
	ghost := primitive.NewObjectID()
	require.NoError(t, f.store.AddBookRef(ctx, dune.ID, models.BookReviews, ghost))
	require.NoError(t, f.store.AddUserRef(ctx, ada.ID, models.UserFollowers, ghost))
	require.NoError(t, f.store.AddCollectionBook(ctx, col.ID, ghost))
	require.NoError(t, f.store.PullUserRef(ctx, ada.ID, models.UserReviews, r.ID))
	require.NoError(t, f.store.AddCollectionBook(ctx, col.ID, emma.ID))
	require.NoError(t, f.store.AddUserRef(ctx, ada.ID, models.UserFollowing, grace.ID))
	_, err := f.store.InsertReview(ctx, &models.Review{Title: "orphan", Rating: "1", User: ghost, Book: dune.ID, CreatedAt: time.Now()})
	require.NoError(t, err)

	rep, err := f.svc.Reconciler.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Deleted["reviews"])
	assert.Equal(t, 1, rep.Pulled["book.reviews"])
	assert.Equal(t, 1, rep.Pulled["user.followers"])
	assert.Equal(t, 1, rep.Pulled["collection.books"])
	assert.Equal(t, 1, rep.Restored["user.reviews"])
	assert.Equal(t, 1, rep.Restored["book.collections"])
	assert.Equal(t, 1, rep.Restored["user.followers"])

	assert.Equal(t, []primitive.ObjectID{r.ID}, f.loadBook(t, dune.ID).Reviews)
	assert.Equal(t, []primitive.ObjectID{r.ID}, f.loadUser(t, ada.ID).Reviews)
	assert.Empty(t, f.loadUser(t, ada.ID).Followers)
	assert.Equal(t, []primitive.ObjectID{ada.ID}, f.loadUser(t, grace.ID).Followers)
	assert.Equal(t, []primitive.ObjectID{dune.ID, emma.ID}, f.loadCollection(t, col.ID).Books)
	assert.Equal(t, []primitive.ObjectID{col.ID}, f.loadBook(t, emma.ID).Collections)

	again, err := f.svc.Reconciler.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Changes())
}

func TestSweep_DeletesCollectionsOfMissingOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	ada := f.register(t, "Ada")
	dune := f.book(t, admin, "Dune")
	col := f.collection(t, ada, "Sci-fi", dune.ID)
	require.NoError(t, f.store.DeleteUser(ctx, ada.ID))

	rep, err := f.svc.Reconciler.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Deleted["collections"])
	assert.Nil(t, f.loadCollection(t, col.ID))
	assert.Empty(t, f.loadBook(t, dune.ID).Collections)
}

func TestReconcileRun_AdminOnly(t *testing.T) {
	f := newFixture(t)
	ada := f.register(t, "Ada")

	_, err := f.svc.Reconciler.Run(context.Background(), ada)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	rep, err := f.svc.Reconciler.Run(context.Background(), f.admin(t))
	require.NoError(t, err)
	assert.Zero(t, rep.Changes())
}
