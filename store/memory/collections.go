package memory

import (
	"context"
	"time"

	"github.com/kevinaaaquil/readingbud/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *Store) InsertCollection(_ context.Context, col *models.Collection) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := cloneCollection(col)
	c.ID = newID(col.ID)
	s.collections[c.ID] = c
	return c.ID, nil
}

func (s *Store) CollectionByID(_ context.Context, id primitive.ObjectID) (*models.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.collections[id]; ok {
		return cloneCollection(c), nil
	}
	return nil, nil
}

func (s *Store) ListCollections(_ context.Context) ([]models.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sorted(s.collections, nil, cloneCollection, collectionCreated), nil
}

func (s *Store) CollectionsByIDs(_ context.Context, list []primitive.ObjectID) ([]models.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := inSet(list)
	return sorted(s.collections, func(c *models.Collection) bool { return want[c.ID] }, cloneCollection, collectionCreated), nil
}

func (s *Store) CollectionsByUser(_ context.Context, userID primitive.ObjectID) ([]models.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sorted(s.collections, func(c *models.Collection) bool { return c.User == userID }, cloneCollection, collectionCreated), nil
}

func (s *Store) UpdateCollection(_ context.Context, id primitive.ObjectID, col *models.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.collections[id]; ok {
		c.Name, c.Description, c.Books, c.UpdatedAt = col.Name, col.Description, ids(col.Books), col.UpdatedAt
	}
	return nil
}

func (s *Store) AddCollectionBook(_ context.Context, collectionID, bookID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.collections[collectionID]; ok {
		c.Books = addToSet(c.Books, bookID)
		c.UpdatedAt = time.Now()
	}
	return nil
}

func (s *Store) PullCollectionBook(_ context.Context, collectionID, bookID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.collections[collectionID]; ok {
		c.Books = models.WithoutID(c.Books, bookID)
		c.UpdatedAt = time.Now()
	}
	return nil
}

func (s *Store) PullBookFromCollections(_ context.Context, bookID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.collections {
		if models.ContainsID(c.Books, bookID) {
			c.Books = models.WithoutID(c.Books, bookID)
			c.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (s *Store) DeleteCollection(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, id)
	return nil
}

func (s *Store) DeleteCollectionsByIDs(_ context.Context, list []primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range list {
		delete(s.collections, id)
	}
	return nil
}
