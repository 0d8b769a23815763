package memory

import (
	"context"

	"github.com/kevinaaaquil/readingbud/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InsertReview enforces the unique (user, book) pair.
func (s *Store) InsertReview(_ context.Context, review *models.Review) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reviews {
		if r.User == review.User && r.Book == review.Book {
			return primitive.NilObjectID, errDuplicate
		}
	}
	c := cloneReview(review)
	c.ID = newID(review.ID)
	s.reviews[c.ID] = c
	return c.ID, nil
}

func (s *Store) ReviewByID(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.reviews[id]; ok {
		return cloneReview(r), nil
	}
	return nil, nil
}

func (s *Store) ReviewByUserAndBook(_ context.Context, userID, bookID primitive.ObjectID) (*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reviews {
		if r.User == userID && r.Book == bookID {
			return cloneReview(r), nil
		}
	}
	return nil, nil
}

func (s *Store) ListReviews(_ context.Context) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sorted(s.reviews, nil, cloneReview, reviewCreated), nil
}

func (s *Store) ReviewsByIDs(_ context.Context, list []primitive.ObjectID) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := inSet(list)
	return sorted(s.reviews, func(r *models.Review) bool { return want[r.ID] }, cloneReview, reviewCreated), nil
}

func (s *Store) ReviewsByUser(_ context.Context, userID primitive.ObjectID) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sorted(s.reviews, func(r *models.Review) bool { return r.User == userID }, cloneReview, reviewCreated), nil
}

func (s *Store) ReviewsByBook(_ context.Context, bookID primitive.ObjectID) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sorted(s.reviews, func(r *models.Review) bool { return r.Book == bookID }, cloneReview, reviewCreated), nil
}

func (s *Store) UpdateReview(_ context.Context, id primitive.ObjectID, review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.reviews[id]; ok {
		r.Title, r.Text, r.Rating, r.UpdatedAt = review.Title, review.Text, review.Rating, review.UpdatedAt
	}
	return nil
}

func (s *Store) DeleteReview(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reviews, id)
	return nil
}

func (s *Store) DeleteReviewsByUser(_ context.Context, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.reviews {
		if r.User == userID {
			delete(s.reviews, id)
		}
	}
	return nil
}

func (s *Store) DeleteReviewsByBook(_ context.Context, bookID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.reviews {
		if r.Book == bookID {
			delete(s.reviews, id)
		}
	}
	return nil
}
