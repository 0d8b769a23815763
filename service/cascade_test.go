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

func TestDeleteUser_LeavesNoDanglingReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	ada := f.register(t, "Ada")
	grace := f.register(t, "Grace")
	alan := f.register(t, "Alan")
	dune := f.book(t, admin, "Dune")
	emma := f.book(t, admin, "Emma")

	adaReviews := []primitive.ObjectID{f.review(t, ada, dune.ID).ID, f.review(t, ada, emma.ID).ID}
	graceReview := f.review(t, grace, dune.ID)
	adaCols := []primitive.ObjectID{
		f.collection(t, ada, "Sci-fi", dune.ID).ID,
		f.collection(t, ada, "Mixed", dune.ID, emma.ID).ID,
	}
	graceCol := f.collection(t, grace, "Grace's", dune.ID)
	require.NoError(t, f.svc.Identity.Follow(ctx, ada, grace.ID))
	require.NoError(t, f.svc.Identity.Follow(ctx, alan, ada.ID))
	require.NoError(t, f.svc.Identity.Follow(ctx, grace, ada.ID))

	require.NoError(t, f.svc.Identity.DeleteUser(ctx, ada, ada.ID))

	assert.Nil(t, f.loadUser(t, ada.ID))
	for _, id := range []primitive.ObjectID{dune.ID, emma.ID} {
		b := f.loadBook(t, id)
		for _, r := range adaReviews {
			assert.NotContains(t, b.Reviews, r)
		}
		for _, c := range adaCols {
			assert.NotContains(t, b.Collections, c)
		}
	}
	for _, r := range adaReviews {
		gone, err := f.store.ReviewByID(ctx, r)
		require.NoError(t, err)
		assert.Nil(t, gone)
	}
	for _, c := range adaCols {
		assert.Nil(t, f.loadCollection(t, c))
	}
	users, err := f.store.ListUsers(ctx)
	require.NoError(t, err)
	for _, u := range users {
		assert.NotContains(t, u.Followers, ada.ID, u.FullName)
		assert.NotContains(t, u.Following, ada.ID, u.FullName)
	}

	// Other users' data is untouched.
	assert.Equal(t, []primitive.ObjectID{graceReview.ID}, f.loadBook(t, dune.ID).Reviews)
	assert.Equal(t, []primitive.ObjectID{graceCol.ID}, f.loadBook(t, dune.ID).Collections)
}

func TestDeleteUser_IncludesCollectionsMissingFromUserList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	ada := f.register(t, "Ada")
	dune := f.book(t, admin, "Dune")
	col := f.collection(t, ada, "Sci-fi", dune.ID)
	require.NoError(t, f.store.PullUserRef(ctx, ada.ID, models.UserCollections, col.ID))

	require.NoError(t, f.svc.Identity.DeleteUser(ctx, admin, ada.ID))
	assert.Nil(t, f.loadCollection(t, col.ID))
	assert.Empty(t, f.loadBook(t, dune.ID).Collections)
}

func TestCascadeFailure_ReportsStepWithoutRollback(t *testing.T) {
	f := newFixtureWith(t, map[string]bool{"PullUserRefs": true})
	ctx := context.Background()
	admin := f.admin(t)
	ada := f.register(t, "Ada")
	dune := f.book(t, admin, "Dune")
	r := f.review(t, ada, dune.ID)

	err := f.svc.Identity.DeleteUser(ctx, ada, ada.ID)
	require.ErrorIs(t, err, apperr.ErrUnexpected)
	assert.Equal(t, "failed to delete user: pull follow references", apperr.From(err).Message)
	assert.ErrorIs(t, err, errBoom)

	// Earlier steps stay applied; the user record survives.
	gone, err := f.store.ReviewByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.Empty(t, f.loadBook(t, dune.ID).Reviews)
	assert.NotNil(t, f.loadUser(t, ada.ID))
}

func TestCreateReview_LinkFailureIsUnexpected(t *testing.T) {
	f := newFixtureWith(t, map[string]bool{"AddUserRef:" + models.UserReviews: true})
	ctx := context.Background()
	admin := f.admin(t)
	ada := f.register(t, "Ada")
	dune := f.book(t, admin, "Dune")

	_, err := f.svc.Reviews.Create(ctx, ada, service.ReviewInput{Title: "t", Text: "x", Rating: "5", Book: dune.ID.Hex()})
	require.ErrorIs(t, err, apperr.ErrUnexpected)

	// The sibling write still ran: the book side is linked, the user side is not.
	assert.Len(t, f.loadBook(t, dune.ID).Reviews, 1)
	assert.Empty(t, f.loadUser(t, ada.ID).Reviews)
}

// Admin creates a book, a user reviews it, a duplicate review is refused, and deleting
// the account removes the review from the book.
func TestScenario_ReviewLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)

	b1, err := f.svc.Catalog.Create(ctx, admin, service.BookInput{Title: ptr("Dune"), Author: ptr("Herbert"), PublishingDate: ptr("1965")})
	require.NoError(t, err)

	_, err = f.svc.Identity.Register(ctx, service.RegisterInput{FullName: "User A", Email: "a@example.com", Password: "password123"})
	require.NoError(t, err)
	token, _, err := f.svc.Identity.Authenticate(ctx, service.LoginInput{Email: "a@example.com", Password: "password123"})
	require.NoError(t, err)
	a, err := f.tokens.Verify(token)
	require.NoError(t, err)

	r1, err := f.svc.Reviews.Create(ctx, a, service.ReviewInput{Title: "Great", Text: "Spice.", Rating: "5", Book: b1.ID.Hex()})
	require.NoError(t, err)
	assert.Contains(t, f.loadBook(t, b1.ID).Reviews, r1.ID)

	_, err = f.svc.Reviews.Create(ctx, a, service.ReviewInput{Title: "Again", Text: "Spice.", Rating: "4", Book: b1.ID.Hex()})
	require.ErrorIs(t, err, apperr.ErrDuplicateReview)
	assert.Equal(t, 403, apperr.From(err).HTTPStatus())

	require.NoError(t, f.svc.Identity.DeleteUser(ctx, a, a.ID))
	gone, err := f.store.ReviewByID(ctx, r1.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.NotContains(t, f.loadBook(t, b1.ID).Reviews, r1.ID)
}
