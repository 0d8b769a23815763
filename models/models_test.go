package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRatingAcceptsStringOrNumber(t *testing.T) {
	var body struct {
		Rating Rating `json:"rating"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"rating":"5"}`), &body))
	assert.Equal(t, Rating("5"), body.Rating)

	require.NoError(t, json.Unmarshal([]byte(`{"rating":4.5}`), &body))
	assert.Equal(t, Rating("4.5"), body.Rating)

	assert.Error(t, json.Unmarshal([]byte(`{"rating":true}`), &body))
}

func TestUserPasswordNeverSerialized(t *testing.T) {
	u := User{FullName: "Ada", Email: "ada@example.com", Password: "$2a$10$digest"}
	out, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "digest")
	assert.NotContains(t, string(out), "password")
}

func TestIDHelpers(t *testing.T) {
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	assert.True(t, ContainsID([]primitive.ObjectID{a, b}, b))
	assert.False(t, ContainsID([]primitive.ObjectID{a, b}, c))
	assert.Equal(t, []primitive.ObjectID{a, c}, WithoutID([]primitive.ObjectID{a, b, c, b}, b))
	assert.Equal(t, []primitive.ObjectID{a, b}, UniqueIDs([]primitive.ObjectID{a, b, a, b}))
}

func TestBookImageSlots(t *testing.T) {
	var b Book
	b.SetImage(ImageMedium, "books/images/x.png")
	assert.Equal(t, "books/images/x.png", b.Image(ImageMedium))
	assert.Empty(t, b.Image(ImageSmall))
	assert.Empty(t, b.Image("image_path_XL"))
}

func TestScalarAcceptsYear(t *testing.T) {
	var body struct {
		PublishingDate *Scalar `json:"publishing_date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"publishing_date":1965}`), &body))
	require.NotNil(t, body.PublishingDate)
	assert.Equal(t, Scalar("1965"), *body.PublishingDate)

	body.PublishingDate = nil
	require.NoError(t, json.Unmarshal([]byte(`{}`), &body))
	assert.Nil(t, body.PublishingDate)
}
