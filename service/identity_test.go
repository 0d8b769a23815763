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

func TestRegister_NormalizesAndHashes(t *testing.T) {
	f := newFixture(t)
	u, err := f.svc.Identity.Register(context.Background(), service.RegisterInput{
		FullName: "  Ada Lovelace ",
		Email:    "  Ada@Example.COM ",
		Password: "password123",
	})
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", u.FullName)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, "password123", u.Password)
	assert.NotEmpty(t, u.Password)
}

func TestRegister_DuplicateEmailIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Ada")

	_, err := f.svc.Identity.Register(context.Background(), service.RegisterInput{
		FullName: "Other Ada",
		Email:    "ADA@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, apperr.ErrDuplicateEmail)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		in   service.RegisterInput
	}{
		{"missing name", service.RegisterInput{Email: "a@example.com", Password: "x"}},
		{"malformed email", service.RegisterInput{FullName: "A", Email: "not-an-email", Password: "x"}},
		{"missing password", service.RegisterInput{FullName: "A", Email: "a@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Identity.Register(context.Background(), tt.in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ada := f.register(t, "Ada")
	ctx := context.Background()

	token, user, err := f.svc.Identity.Authenticate(ctx, service.LoginInput{Email: "ada@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, ada.ID, user.ID)

	id, err := f.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, ada.ID, id.ID)
	assert.Equal(t, "ada@example.com", id.Email)
	assert.Equal(t, "Ada", id.FullName)
	assert.Equal(t, models.RoleUser, id.Role)

	_, _, err = f.svc.Identity.Authenticate(ctx, service.LoginInput{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, _, err = f.svc.Identity.Authenticate(ctx, service.LoginInput{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestEnsureAdmin_OnlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Identity.EnsureAdmin(ctx, "Admin", "admin@example.com", "password")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.svc.Identity.EnsureAdmin(ctx, "Admin", "admin@example.com", "password")
	require.NoError(t, err)
	assert.False(t, created)

	u, err := f.store.UserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
}

func TestFollow_IsAntiReflexive(t *testing.T) {
	f := newFixture(t)
	admin := f.admin(t)
	for _, caller := range []string{"Ada", "Grace", "Alan"} {
		id := f.register(t, caller)
		err := f.svc.Identity.Follow(context.Background(), id, id.ID)
		assert.ErrorIs(t, err, apperr.ErrInvalidOperation, caller)
	}
	err := f.svc.Identity.Follow(context.Background(), admin, admin.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidOperation)
}

func TestFollowUnfollow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.register(t, "Ada")
	grace := f.register(t, "Grace")

	require.NoError(t, f.svc.Identity.Follow(ctx, ada, grace.ID))
	assert.Equal(t, []primitive.ObjectID{grace.ID}, f.loadUser(t, ada.ID).Following)
	assert.Equal(t, []primitive.ObjectID{ada.ID}, f.loadUser(t, grace.ID).Followers)

	assert.ErrorIs(t, f.svc.Identity.Follow(ctx, ada, grace.ID), apperr.ErrAlreadyFollowing)

	require.NoError(t, f.svc.Identity.Unfollow(ctx, ada, grace.ID))
	assert.Empty(t, f.loadUser(t, ada.ID).Following)
	assert.Empty(t, f.loadUser(t, grace.ID).Followers)

	assert.ErrorIs(t, f.svc.Identity.Unfollow(ctx, ada, grace.ID), apperr.ErrNotFollowing)
}

func TestFollow_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.register(t, "Ada")

	assert.ErrorIs(t, f.svc.Identity.Follow(ctx, nil, ada.ID), apperr.ErrUnauthenticated)
	assert.ErrorIs(t, f.svc.Identity.Follow(ctx, ada, primitive.NewObjectID()), apperr.ErrNotFound)
}

func TestListUsers_AdminOnlyWithSummaries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	ada := f.register(t, "Ada")
	grace := f.register(t, "Grace")
	book := f.book(t, admin, "Dune")
	f.review(t, ada, book.ID)
	col := f.collection(t, ada, "Favourites", book.ID)
	require.NoError(t, f.svc.Identity.Follow(ctx, ada, grace.ID))

	_, err := f.svc.Identity.List(ctx, nil)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	_, err = f.svc.Identity.List(ctx, ada)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	view, err := f.svc.Identity.Get(ctx, admin, ada.ID)
	require.NoError(t, err)
	require.Len(t, view.Reviews, 1)
	require.NotNil(t, view.Reviews[0].Book)
	assert.Equal(t, "Dune", view.Reviews[0].Book.Title)
	assert.Equal(t, models.Rating("5"), view.Reviews[0].Rating)
	assert.Equal(t, []models.UserSummary{{ID: grace.ID, FullName: "Grace"}}, view.Following)
	assert.Equal(t, []models.CollectionSummary{{ID: col.ID, Name: "Favourites"}}, view.Collections)

	all, err := f.svc.Identity.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDeleteUser_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.register(t, "Ada")
	grace := f.register(t, "Grace")

	err := f.svc.Identity.DeleteUser(ctx, grace, ada.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.NotNil(t, f.loadUser(t, ada.ID))

	require.NoError(t, f.svc.Identity.DeleteUser(ctx, ada, ada.ID))
	assert.Nil(t, f.loadUser(t, ada.ID))

	admin := f.admin(t)
	require.NoError(t, f.svc.Identity.DeleteUser(ctx, admin, grace.ID))
	assert.ErrorIs(t, f.svc.Identity.DeleteUser(ctx, admin, grace.ID), apperr.ErrNotFound)
}
