package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kevinaaaquil/readingbud/backend/apperr"
	"github.com/kevinaaaquil/readingbud/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService("test-secret")
	require.NoError(t, err)

	id := Identity{ID: primitive.NewObjectID(), Email: "a@example.com", FullName: "Ada", Role: models.RoleAdmin}
	token, err := svc.Sign(id)
	require.NoError(t, err)

	got, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, *got)
	assert.True(t, got.IsAdmin())
}

func TestTokenExpiresAfterOneWeek(t *testing.T) {
	svc, err := NewTokenService("test-secret")
	require.NoError(t, err)
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	token, err := svc.Sign(Identity{ID: primitive.NewObjectID(), Role: models.RoleUser})
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(TokenTTL - time.Minute) }
	_, err = svc.Verify(token)
	assert.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(TokenTTL + time.Minute) }
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsOtherSecretAndGarbage(t *testing.T) {
	a, _ := NewTokenService("secret-a")
	b, _ := NewTokenService("secret-b")

	token, err := a.Sign(Identity{ID: primitive.NewObjectID()})
	require.NoError(t, err)

	_, err = b.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = a.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsUnknownRole(t *testing.T) {
	svc, err := NewTokenService("test-secret")
	require.NoError(t, err)

	for _, role := range []string{"", "superuser", "Admin"} {
		token, err := svc.Sign(Identity{ID: primitive.NewObjectID(), Role: role})
		require.NoError(t, err)
		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "role %q", role)
	}
}

func TestTokenRejectsNonHMAC(t *testing.T) {
	svc, _ := NewTokenService("secret")
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: primitive.NewObjectID().Hex()})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("")
	assert.Error(t, err)
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, h.Check("correct horse", hash))
	assert.False(t, h.Check("wrong horse", hash))
	assert.False(t, h.Check("", hash))
}

func TestPolicies(t *testing.T) {
	owner := primitive.NewObjectID()
	user := &Identity{ID: owner, Role: models.RoleUser}
	other := &Identity{ID: primitive.NewObjectID(), Role: models.RoleUser}
	admin := &Identity{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

	assert.True(t, errors.Is(LoginRequired(nil), apperr.ErrUnauthenticated))
	assert.NoError(t, LoginRequired(user))

	assert.True(t, errors.Is(AdminRequired(nil), apperr.ErrUnauthenticated))
	assert.True(t, errors.Is(AdminRequired(user), apperr.ErrForbidden))
	assert.NoError(t, AdminRequired(admin))

	assert.NoError(t, OwnerOrAdmin(user, owner, "update your own reviews"))
	assert.NoError(t, OwnerOrAdmin(admin, owner, "update your own reviews"))
	assert.True(t, errors.Is(OwnerOrAdmin(other, owner, "update your own reviews"), apperr.ErrForbidden))
	assert.True(t, errors.Is(OwnerOrAdmin(nil, owner, "update your own reviews"), apperr.ErrUnauthenticated))
}
