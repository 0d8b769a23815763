package service

import (
	"context"

	"github.com/kevinaaaquil/readingbud/backend/apperr"
	"github.com/kevinaaaquil/readingbud/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// expander resolves reference arrays into summaries. References that no longer resolve
// are left out of the view.
type expander struct {
	store Store
}

func indexBy[T any](items []T, id func(*T) primitive.ObjectID) map[primitive.ObjectID]*T {
	m := make(map[primitive.ObjectID]*T, len(items))
	for i := range items {
		m[id(&items[i])] = &items[i]
	}
	return m
}

func userID(u *models.User) primitive.ObjectID             { return u.ID }
func bookID(b *models.Book) primitive.ObjectID             { return b.ID }
func reviewID(r *models.Review) primitive.ObjectID         { return r.ID }
func collectionID(c *models.Collection) primitive.ObjectID { return c.ID }

func bookSummary(b *models.Book) models.BookSummary {
	return models.BookSummary{ID: b.ID, Title: b.Title, Author: b.Author}
}

func (e expander) books(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Book, error) {
	if len(ids) == 0 {
		return map[primitive.ObjectID]*models.Book{}, nil
	}
	books, err := e.store.BooksByIDs(ctx, models.UniqueIDs(ids))
	if err != nil {
		return nil, apperr.Unexpected("load books", err)
	}
	return indexBy(books, bookID), nil
}

func (e expander) users(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	if len(ids) == 0 {
		return map[primitive.ObjectID]*models.User{}, nil
	}
	users, err := e.store.UsersByIDs(ctx, models.UniqueIDs(ids))
	if err != nil {
		return nil, apperr.Unexpected("load users", err)
	}
	return indexBy(users, userID), nil
}

func (e expander) reviews(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Review, error) {
	if len(ids) == 0 {
		return map[primitive.ObjectID]*models.Review{}, nil
	}
	reviews, err := e.store.ReviewsByIDs(ctx, models.UniqueIDs(ids))
	if err != nil {
		return nil, apperr.Unexpected("load reviews", err)
	}
	return indexBy(reviews, reviewID), nil
}

func (e expander) collections(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Collection, error) {
	if len(ids) == 0 {
		return map[primitive.ObjectID]*models.Collection{}, nil
	}
	cols, err := e.store.CollectionsByIDs(ctx, models.UniqueIDs(ids))
	if err != nil {
		return nil, apperr.Unexpected("load collections", err)
	}
	return indexBy(cols, collectionID), nil
}

func collectionSummaries(ids []primitive.ObjectID, cols map[primitive.ObjectID]*models.Collection) []models.CollectionSummary {
	out := []models.CollectionSummary{}
	for _, id := range ids {
		if c, ok := cols[id]; ok {
			out = append(out, models.CollectionSummary{ID: c.ID, Name: c.Name})
		}
	}
	return out
}

func userSummaries(ids []primitive.ObjectID, users map[primitive.ObjectID]*models.User) []models.UserSummary {
	out := []models.UserSummary{}
	for _, id := range ids {
		if u, ok := users[id]; ok {
			out = append(out, models.UserSummary{ID: u.ID, FullName: u.FullName})
		}
	}
	return out
}

// UserViews expands reviews (with their book), follow edges and collections.
func (e expander) UserViews(ctx context.Context, users []models.User) ([]models.UserView, error) {
	var reviewIDs, peerIDs, colIDs []primitive.ObjectID
	for _, u := range users {
		reviewIDs = append(reviewIDs, u.Reviews...)
		peerIDs = append(peerIDs, u.Followers...)
		peerIDs = append(peerIDs, u.Following...)
		colIDs = append(colIDs, u.Collections...)
	}
	reviews, err := e.reviews(ctx, reviewIDs)
	if err != nil {
		return nil, err
	}
	var reviewBooks []primitive.ObjectID
	for _, r := range reviews {
		reviewBooks = append(reviewBooks, r.Book)
	}
	books, err := e.books(ctx, reviewBooks)
	if err != nil {
		return nil, err
	}
	peers, err := e.users(ctx, peerIDs)
	if err != nil {
		return nil, err
	}
	cols, err := e.collections(ctx, colIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.UserView, 0, len(users))
	for _, u := range users {
		v := models.UserView{
			ID:          u.ID,
			FullName:    u.FullName,
			Email:       u.Email,
			Role:        u.Role,
			Reviews:     []models.ReviewSummary{},
			Followers:   userSummaries(u.Followers, peers),
			Following:   userSummaries(u.Following, peers),
			Collections: collectionSummaries(u.Collections, cols),
			CreatedAt:   u.CreatedAt,
			UpdatedAt:   u.UpdatedAt,
		}
		for _, id := range u.Reviews {
			r, ok := reviews[id]
			if !ok {
				continue
			}
			s := models.ReviewSummary{ID: r.ID, Rating: r.Rating, Title: r.Title}
			if b, ok := books[r.Book]; ok {
				bs := bookSummary(b)
				s.Book = &bs
			}
			v.Reviews = append(v.Reviews, s)
		}
		views = append(views, v)
	}
	return views, nil
}

// BookViews expands reviews (id, rating, title, user) and collections (id, name).
func (e expander) BookViews(ctx context.Context, books []models.Book) ([]models.BookView, error) {
	var reviewIDs, colIDs []primitive.ObjectID
	for _, b := range books {
		reviewIDs = append(reviewIDs, b.Reviews...)
		colIDs = append(colIDs, b.Collections...)
	}
	reviews, err := e.reviews(ctx, reviewIDs)
	if err != nil {
		return nil, err
	}
	cols, err := e.collections(ctx, colIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.BookView, 0, len(books))
	for _, b := range books {
		v := models.BookView{
			ID:             b.ID,
			Title:          b.Title,
			Author:         b.Author,
			PublishingDate: b.PublishingDate,
			ImagePathS:     b.ImagePathS,
			ImagePathM:     b.ImagePathM,
			ImagePathL:     b.ImagePathL,
			Reviews:        []models.ReviewSummary{},
			Collections:    collectionSummaries(b.Collections, cols),
			CreatedAt:      b.CreatedAt,
			UpdatedAt:      b.UpdatedAt,
		}
		for _, id := range b.Reviews {
			if r, ok := reviews[id]; ok {
				owner := r.User
				v.Reviews = append(v.Reviews, models.ReviewSummary{ID: r.ID, Rating: r.Rating, Title: r.Title, User: &owner})
			}
		}
		views = append(views, v)
	}
	return views, nil
}

// ReviewViews expands the reviewed book to (id, title, author).
func (e expander) ReviewViews(ctx context.Context, reviews []models.Review) ([]models.ReviewView, error) {
	ids := make([]primitive.ObjectID, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.Book)
	}
	books, err := e.books(ctx, ids)
	if err != nil {
		return nil, err
	}
	views := make([]models.ReviewView, 0, len(reviews))
	for _, r := range reviews {
		v := models.ReviewView{
			ID:        r.ID,
			Title:     r.Title,
			Text:      r.Text,
			Rating:    r.Rating,
			User:      r.User,
			ImagePath: r.ImagePath,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		}
		if b, ok := books[r.Book]; ok {
			bs := bookSummary(b)
			v.Book = &bs
		}
		views = append(views, v)
	}
	return views, nil
}

// CollectionViews expands member books and the owner.
func (e expander) CollectionViews(ctx context.Context, cols []models.Collection) ([]models.CollectionView, error) {
	var bookIDs, ownerIDs []primitive.ObjectID
	for _, c := range cols {
		bookIDs = append(bookIDs, c.Books...)
		ownerIDs = append(ownerIDs, c.User)
	}
	books, err := e.books(ctx, bookIDs)
	if err != nil {
		return nil, err
	}
	owners, err := e.users(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	views := make([]models.CollectionView, 0, len(cols))
	for _, c := range cols {
		v := models.CollectionView{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Books:       []models.BookSummary{},
			CreatedAt:   c.CreatedAt,
			UpdatedAt:   c.UpdatedAt,
		}
		if u, ok := owners[c.User]; ok {
			v.User = &models.UserSummary{ID: u.ID, FullName: u.FullName}
		}
		for _, id := range c.Books {
			if b, ok := books[id]; ok {
				v.Books = append(v.Books, bookSummary(b))
			}
		}
		views = append(views, v)
	}
	return views, nil
}

func firstView[T any](views []T, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, apperr.ErrUnexpected
	}
	return &views[0], nil
}
