// Package memory is an in-process implementation of the store used by tests and by
// STORAGE_DRIVER=memory. It enforces the same unique indexes as the MongoDB store.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/kevinaaaquil/readingbud/backend/models"
	"github.com/kevinaaaquil/readingbud/backend/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mu          sync.RWMutex
	users       map[primitive.ObjectID]*models.User
	books       map[primitive.ObjectID]*models.Book
	reviews     map[primitive.ObjectID]*models.Review
	collections map[primitive.ObjectID]*models.Collection
}

func New() *Store {
	return &Store{
		users:       map[primitive.ObjectID]*models.User{},
		books:       map[primitive.ObjectID]*models.Book{},
		reviews:     map[primitive.ObjectID]*models.Review{},
		collections: map[primitive.ObjectID]*models.Collection{},
	}
}

func ids(in []primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(in))
	copy(out, in)
	return out
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Reviews, c.Followers, c.Following, c.Collections = ids(u.Reviews), ids(u.Followers), ids(u.Following), ids(u.Collections)
	return &c
}

func cloneBook(b *models.Book) *models.Book {
	c := *b
	c.Reviews, c.Collections = ids(b.Reviews), ids(b.Collections)
	return &c
}

func cloneReview(r *models.Review) *models.Review {
	c := *r
	return &c
}

func cloneCollection(col *models.Collection) *models.Collection {
	c := *col
	c.Books = ids(col.Books)
	return &c
}

// sorted returns clones of every value in m ordered by creation time, then id.
func sorted[T any](m map[primitive.ObjectID]*T, keep func(*T) bool, clone func(*T) *T, created func(*T) (time.Time, primitive.ObjectID)) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		if keep == nil || keep(v) {
			out = append(out, *clone(v))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ti, idi := created(&out[i])
		tj, idj := created(&out[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return idi.Hex() < idj.Hex()
	})
	return out
}

func inSet(list []primitive.ObjectID) map[primitive.ObjectID]bool {
	set := make(map[primitive.ObjectID]bool, len(list))
	for _, id := range list {
		set[id] = true
	}
	return set
}

func addToSet(list []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	if models.ContainsID(list, id) {
		return list
	}
	return append(list, id)
}

func pullAll(list []primitive.ObjectID, refs map[primitive.ObjectID]bool) ([]primitive.ObjectID, bool) {
	out := list[:0:0]
	changed := false
	for _, id := range list {
		if refs[id] {
			changed = true
			continue
		}
		out = append(out, id)
	}
	return out, changed
}

func userCreated(u *models.User) (time.Time, primitive.ObjectID)             { return u.CreatedAt, u.ID }
func bookCreated(b *models.Book) (time.Time, primitive.ObjectID)             { return b.CreatedAt, b.ID }
func reviewCreated(r *models.Review) (time.Time, primitive.ObjectID)         { return r.CreatedAt, r.ID }
func collectionCreated(c *models.Collection) (time.Time, primitive.ObjectID) { return c.CreatedAt, c.ID }

func newID(id primitive.ObjectID) primitive.ObjectID {
	if id.IsZero() {
		return primitive.NewObjectID()
	}
	return id
}

// userField returns a pointer to the named id array on u.
func userField(u *models.User, field string) *[]primitive.ObjectID {
	switch field {
	case models.UserReviews:
		return &u.Reviews
	case models.UserFollowers:
		return &u.Followers
	case models.UserFollowing:
		return &u.Following
	case models.UserCollections:
		return &u.Collections
	}
	return nil
}

func bookField(b *models.Book, field string) *[]primitive.ObjectID {
	switch field {
	case models.BookReviews:
		return &b.Reviews
	case models.BookCollections:
		return &b.Collections
	}
	return nil
}

var errDuplicate = store.ErrDuplicateKey
