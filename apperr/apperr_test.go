package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindUnprocessable, http.StatusUnprocessableEntity},
		{KindNotFound, http.StatusNotFound},
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindInvalidCredentials, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindDuplicateReview, http.StatusForbidden},
		{KindDuplicateEmail, http.StatusBadRequest},
		{KindLimitExceeded, http.StatusBadRequest},
		{KindInvalidOperation, http.StatusBadRequest},
		{KindRateLimited, http.StatusTooManyRequests},
		{KindUnexpected, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.HTTPStatus())
		})
	}
}

func TestErrorIsMatchesByKind(t *testing.T) {
	err := NotFound("Book with id %s was not found", "abc")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))

	wrapped := fmt.Errorf("loading book: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

func TestUnexpectedKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Unexpected("delete user: pull follower references", cause)

	assert.True(t, errors.Is(err, ErrUnexpected))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to delete user: pull follower references", err.Message)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestFrom(t *testing.T) {
	known := LimitExceeded("You can only create up to %d collections.", 5)
	assert.Same(t, known, From(fmt.Errorf("wrap: %w", known)))

	unknown := From(errors.New("boom"))
	assert.Equal(t, KindUnexpected, unknown.Kind)
}

func TestWithDetailsDoesNotMutateSentinel(t *testing.T) {
	withDetails := ErrValidation.WithDetails(map[string]string{"title": "is required"})
	assert.Nil(t, ErrValidation.Details)
	assert.NotNil(t, withDetails.Details)
	assert.True(t, errors.Is(withDetails, ErrValidation))
}
