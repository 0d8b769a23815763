package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/kevinaaaquil/readingbud/backend/auth"
	"github.com/kevinaaaquil/readingbud/backend/models"
	"github.com/kevinaaaquil/readingbud/backend/service"
	"github.com/kevinaaaquil/readingbud/backend/store"
	"github.com/kevinaaaquil/readingbud/backend/store/memory"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var (
	_ service.Store      = (*memory.Store)(nil)
	_ service.Store      = (*store.DB)(nil)
	_ service.ImageStore = (*service.DiskImageStore)(nil)
	_ service.ImageStore = (*service.S3Service)(nil)
)

var errBoom = errors.New("boom")

// fakeImages is an in-memory ImageStore that records deletions.
type fakeImages struct {
	mu       sync.Mutex
	n        int
	objects  map[string][]byte
	deleted  []string
	failSave bool
}

func newFakeImages() *fakeImages {
	return &fakeImages{objects: map[string][]byte{}}
}

func (f *fakeImages) Save(_ context.Context, prefix, filename string, body io.Reader, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave {
		return "", errBoom
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.n++
	key := fmt.Sprintf("%simg-%d%s", prefix, f.n, filepath.Ext(filename))
	f.objects[key] = data
	return key, nil
}

func (f *fakeImages) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeImages) Open(_ context.Context, key string) (io.ReadCloser, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, "", errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), "image/png", nil
}

func (f *fakeImages) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func (f *fakeImages) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// failingStore fails the named operations and delegates everything else.
type failingStore struct {
	service.Store
	fail map[string]bool
}

func (f *failingStore) InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error) {
	if f.fail["InsertBook"] {
		return primitive.NilObjectID, errBoom
	}
	return f.Store.InsertBook(ctx, book)
}

func (f *failingStore) PullUserRefs(ctx context.Context, field string, refs []primitive.ObjectID) error {
	if f.fail["PullUserRefs"] {
		return errBoom
	}
	return f.Store.PullUserRefs(ctx, field, refs)
}

func (f *failingStore) AddUserRef(ctx context.Context, userID primitive.ObjectID, field string, ref primitive.ObjectID) error {
	if f.fail["AddUserRef:"+field] {
		return errBoom
	}
	return f.Store.AddUserRef(ctx, userID, field, ref)
}

type fixture struct {
	store  *memory.Store
	images *fakeImages
	tokens *auth.TokenService
	svc    *service.Services
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, nil)
}

// newFixtureWith builds services over a memory store, optionally failing some operations.
func newFixtureWith(t *testing.T, fail map[string]bool) *fixture {
	t.Helper()
	st := memory.New()
	var s service.Store = st
	if fail != nil {
		s = &failingStore{Store: st, fail: fail}
	}
	tokens, err := auth.NewTokenService("test-secret")
	require.NoError(t, err)
	images := newFakeImages()
	svc := service.New(service.Deps{
		Store:  s,
		Images: images,
		Hasher: auth.NewBcryptHasher(bcrypt.MinCost),
		Tokens: tokens,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &fixture{store: st, images: images, tokens: tokens, svc: svc}
}

func identityOf(u *models.User) *auth.Identity {
	return &auth.Identity{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role}
}

func (f *fixture) register(t *testing.T, name string) *auth.Identity {
	t.Helper()
	u, err := f.svc.Identity.Register(context.Background(), service.RegisterInput{
		FullName: name,
		Email:    strings.ToLower(name) + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return identityOf(u)
}

func (f *fixture) admin(t *testing.T) *auth.Identity {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.Identity.EnsureAdmin(ctx, "Admin", "admin@example.com", "password")
	require.NoError(t, err)
	u, err := f.store.UserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	return identityOf(u)
}

func ptr(s string) *string { return &s }

func (f *fixture) book(t *testing.T, admin *auth.Identity, title string) *models.Book {
	t.Helper()
	b, err := f.svc.Catalog.Create(context.Background(), admin, service.BookInput{
		Title:          ptr(title),
		Author:         ptr("Author of " + title),
		PublishingDate: ptr("1965"),
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) review(t *testing.T, caller *auth.Identity, book primitive.ObjectID) *models.Review {
	t.Helper()
	r, err := f.svc.Reviews.Create(context.Background(), caller, service.ReviewInput{
		Title:  "Review",
		Text:   "Worth reading.",
		Rating: "5",
		Book:   book.Hex(),
	})
	require.NoError(t, err)
	return r
}

func (f *fixture) collection(t *testing.T, caller *auth.Identity, name string, books ...primitive.ObjectID) *models.Collection {
	t.Helper()
	ids := make([]string, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.Hex())
	}
	res, err := f.svc.Collections.Create(context.Background(), caller, service.CollectionInput{Name: name, BookIDs: ids})
	require.NoError(t, err)
	return res.Collection
}

func (f *fixture) loadUser(t *testing.T, id primitive.ObjectID) *models.User {
	t.Helper()
	u, err := f.store.UserByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (f *fixture) loadBook(t *testing.T, id primitive.ObjectID) *models.Book {
	t.Helper()
	b, err := f.store.BookByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

func (f *fixture) loadCollection(t *testing.T, id primitive.ObjectID) *models.Collection {
	t.Helper()
	c, err := f.store.CollectionByID(context.Background(), id)
	require.NoError(t, err)
	return c
}
