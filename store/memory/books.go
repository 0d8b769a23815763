package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/kevinaaaquil/readingbud/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *Store) InsertBook(_ context.Context, book *models.Book) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := cloneBook(book)
	c.ID = newID(book.ID)
	s.books[c.ID] = c
	return c.ID, nil
}

func (s *Store) BookByID(_ context.Context, id primitive.ObjectID) (*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.books[id]; ok {
		return cloneBook(b), nil
	}
	return nil, nil
}

func (s *Store) ListBooks(_ context.Context) ([]models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sorted(s.books, nil, cloneBook, bookCreated), nil
}

func (s *Store) BooksByIDs(_ context.Context, list []primitive.ObjectID) ([]models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := inSet(list)
	return sorted(s.books, func(b *models.Book) bool { return want[b.ID] }, cloneBook, bookCreated), nil
}

// UpdateBook writes scalar fields and image slots, leaving reference arrays untouched.
func (s *Store) UpdateBook(_ context.Context, id primitive.ObjectID, book *models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return nil
	}
	b.Title, b.Author, b.PublishingDate = book.Title, book.Author, book.PublishingDate
	b.ImagePathS, b.ImagePathM, b.ImagePathL = book.ImagePathS, book.ImagePathM, book.ImagePathL
	b.UpdatedAt = book.UpdatedAt
	return nil
}

func (s *Store) AddBookRef(_ context.Context, bookID primitive.ObjectID, field string, ref primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[bookID]
	if !ok {
		return nil
	}
	f := bookField(b, field)
	if f == nil {
		return fmt.Errorf("unknown book field %q", field)
	}
	*f = addToSet(*f, ref)
	b.UpdatedAt = time.Now()
	return nil
}

func (s *Store) PullBookRef(_ context.Context, bookID primitive.ObjectID, field string, ref primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[bookID]
	if !ok {
		return nil
	}
	f := bookField(b, field)
	if f == nil {
		return fmt.Errorf("unknown book field %q", field)
	}
	*f = models.WithoutID(*f, ref)
	b.UpdatedAt = time.Now()
	return nil
}

func (s *Store) PullBookRefs(_ context.Context, field string, refs []primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := inSet(refs)
	for _, b := range s.books {
		f := bookField(b, field)
		if f == nil {
			return fmt.Errorf("unknown book field %q", field)
		}
		if next, changed := pullAll(*f, set); changed {
			*f = next
			b.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (s *Store) DeleteBook(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.books, id)
	return nil
}
