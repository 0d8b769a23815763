package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/kevinaaaquil/readingbud/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *Store) CreateUser(_ context.Context, user *models.User) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, errDuplicate
		}
	}
	c := cloneUser(user)
	c.ID = newID(user.ID)
	s.users[c.ID] = c
	return c.ID, nil
}

func (s *Store) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sorted(s.users, nil, cloneUser, userCreated), nil
}

func (s *Store) UsersByIDs(_ context.Context, list []primitive.ObjectID) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := inSet(list)
	return sorted(s.users, func(u *models.User) bool { return want[u.ID] }, cloneUser, userCreated), nil
}

func (s *Store) AddUserRef(_ context.Context, userID primitive.ObjectID, field string, ref primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	f := userField(u, field)
	if f == nil {
		return fmt.Errorf("unknown user field %q", field)
	}
	*f = addToSet(*f, ref)
	u.UpdatedAt = time.Now()
	return nil
}

func (s *Store) PullUserRef(_ context.Context, userID primitive.ObjectID, field string, ref primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	f := userField(u, field)
	if f == nil {
		return fmt.Errorf("unknown user field %q", field)
	}
	*f = models.WithoutID(*f, ref)
	u.UpdatedAt = time.Now()
	return nil
}

func (s *Store) PullUserRefs(_ context.Context, field string, refs []primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := inSet(refs)
	for _, u := range s.users {
		f := userField(u, field)
		if f == nil {
			return fmt.Errorf("unknown user field %q", field)
		}
		if next, changed := pullAll(*f, set); changed {
			*f = next
			u.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}
