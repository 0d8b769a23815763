package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/kevinaaaquil/readingbud/backend/apperr"
	"github.com/kevinaaaquil/readingbud/backend/auth"
	"github.com/kevinaaaquil/readingbud/backend/models"
	"github.com/kevinaaaquil/readingbud/backend/store"
	"github.com/kevinaaaquil/readingbud/backend/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reviews owns review records and their links from books and users.
type Reviews struct {
	store     Store
	validator *validation.Validator
	cascade   *Cascade
	views     expander
	logger    *slog.Logger
}

type ReviewInput struct {
	Title     string        `json:"title" validate:"required"`
	Text      string        `json:"text" validate:"required"`
	Rating    models.Rating `json:"rating" validate:"required"`
	Book      string        `json:"book" validate:"required"`
	ImagePath string        `json:"image_path"`
}

var reviewUpdateFields = []string{"title", "text", "rating"}

// Create writes the review and then links it from the book and the user concurrently.
func (s *Reviews) Create(ctx context.Context, caller *auth.Identity, in ReviewInput) (*models.Review, error) {
	if err := auth.LoginRequired(caller); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Text = strings.TrimSpace(in.Text)
	in.Rating = models.Rating(strings.TrimSpace(string(in.Rating)))
	if err := s.validator.ValidateSchema(in); err != nil {
		return nil, err
	}
	bookID, err := primitive.ObjectIDFromHex(in.Book)
	if err != nil {
		return nil, apperr.InvalidID("book", in.Book)
	}

	user, err := s.store.UserByID(ctx, caller.ID)
	if err != nil {
		return nil, apperr.Unexpected("load user", err)
	}
	if user == nil {
		return nil, apperr.NotFound("User not found. You cannot create a review.")
	}
	book, err := s.store.BookByID(ctx, bookID)
	if err != nil {
		return nil, apperr.Unexpected("load book", err)
	}
	if book == nil {
		return nil, apperr.NotFound("Book not found. Review cannot be created for a non-existent book.")
	}
	existing, err := s.store.ReviewByUserAndBook(ctx, user.ID, book.ID)
	if err != nil {
		return nil, apperr.Unexpected("look up existing review", err)
	}
	if existing != nil {
		return nil, apperr.ErrDuplicateReview
	}

	now := time.Now()
	review := &models.Review{
		Title:     in.Title,
		Text:      in.Text,
		Rating:    in.Rating,
		Book:      book.ID,
		User:      user.ID,
		ImagePath: strings.TrimSpace(in.ImagePath),
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.store.InsertReview(ctx, review)
	if errors.Is(err, store.ErrDuplicateKey) {
		return nil, apperr.ErrDuplicateReview
	}
	if err != nil {
		return nil, apperr.Unexpected("create review", err)
	}
	review.ID = id

	if err := runAll(
		func() error { return s.store.AddBookRef(ctx, book.ID, models.BookReviews, id) },
		func() error { return s.store.AddUserRef(ctx, user.ID, models.UserReviews, id) },
	); err != nil {
		s.logger.Error("review created but not linked", "review_id", id.Hex(), "error", err)
		return nil, apperr.Unexpected("create review: link book and user", err)
	}
	return review, nil
}

// Update changes title, text or rating. Unknown keys are rejected before anything is read.
func (s *Reviews) Update(ctx context.Context, caller *auth.Identity, id primitive.ObjectID, fields map[string]any) (*models.Review, error) {
	if err := auth.LoginRequired(caller); err != nil {
		return nil, err
	}
	if rejected := rejectedKeys(fields, reviewUpdateFields); len(rejected) > 0 {
		return nil, apperr.Validation("Invalid update fields. Allowed fields are: %s.", strings.Join(reviewUpdateFields, ", ")).
			WithDetails(map[string]any{"rejected": rejected})
	}

	review, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.OwnerOrAdmin(caller, review.User, "update your own reviews"); err != nil {
		return nil, err
	}

	for key, raw := range fields {
		v, err := scalarField(key, raw)
		if err != nil {
			return nil, err
		}
		switch key {
		case "title":
			review.Title = v
		case "text":
			review.Text = v
		case "rating":
			review.Rating = models.Rating(v)
		}
	}
	review.UpdatedAt = time.Now()
	if err := s.store.UpdateReview(ctx, review.ID, review); err != nil {
		return nil, apperr.Unexpected("update review", err)
	}
	return review, nil
}

// Delete removes the review and its references on the book and the user.
func (s *Reviews) Delete(ctx context.Context, caller *auth.Identity, id primitive.ObjectID) error {
	if err := auth.LoginRequired(caller); err != nil {
		return err
	}
	review, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.OwnerOrAdmin(caller, review.User, "delete your own reviews"); err != nil {
		return err
	}
	return s.cascade.DeleteReview(ctx, review)
}

func (s *Reviews) List(ctx context.Context) ([]models.ReviewView, error) {
	reviews, err := s.store.ListReviews(ctx)
	if err != nil {
		return nil, apperr.Unexpected("list reviews", err)
	}
	if len(reviews) == 0 {
		return nil, apperr.NotFound("No reviews found")
	}
	return s.views.ReviewViews(ctx, reviews)
}

func (s *Reviews) Get(ctx context.Context, id primitive.ObjectID) (*models.ReviewView, error) {
	review, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return firstView(s.views.ReviewViews(ctx, []models.Review{*review}))
}

func (s *Reviews) load(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	review, err := s.store.ReviewByID(ctx, id)
	if err != nil {
		return nil, apperr.Unexpected("load review", err)
	}
	if review == nil {
		return nil, apperr.NotFound("Review with ID %s not found.", id.Hex())
	}
	return review, nil
}

// rejectedKeys returns the keys of fields not in allowed, sorted.
func rejectedKeys(fields map[string]any, allowed []string) []string {
	var out []string
	for key := range fields {
		ok := false
		for _, a := range allowed {
			if key == a {
				ok = true
				break
			}
		}
		if !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// scalarField reads a non-empty string field. Numbers are accepted and kept in their
// decimal form.
func scalarField(key string, raw any) (string, error) {
	var v string
	switch t := raw.(type) {
	case string:
		v = strings.TrimSpace(t)
	case json.Number:
		v = t.String()
	case float64:
		v = fmt.Sprint(t)
	default:
		return "", apperr.Validation("Field %s must be a string.", key)
	}
	if v == "" {
		return "", apperr.Validation("Field %s cannot be empty.", key)
	}
	return v, nil
}
