package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/kevinaaaquil/readingbud/backend/apperr"
	"github.com/kevinaaaquil/readingbud/backend/auth"
	"github.com/kevinaaaquil/readingbud/backend/models"
	"github.com/kevinaaaquil/readingbud/backend/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collections owns user-curated book lists and their links from users and books.
type Collections struct {
	store     Store
	validator *validation.Validator
	cascade   *Cascade
	views     expander
	logger    *slog.Logger
}

type CollectionInput struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	BookIDs     []string `json:"bookIds"`
}

// CollectionResult reports book ids that were malformed or did not resolve and were left out.
type CollectionResult struct {
	Collection     *models.Collection
	DroppedBookIDs []string
}

var collectionUpdateFields = []string{"name", "description", "books"}

// resolveBooks keeps the ids that parse and resolve to a book, in request order, without
// duplicates. Everything else is returned as dropped.
func (s *Collections) resolveBooks(ctx context.Context, raw []string) ([]primitive.ObjectID, []string, error) {
	dropped := []string{}
	var parsed []primitive.ObjectID
	for _, r := range raw {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(r))
		if err != nil {
			dropped = append(dropped, r)
			continue
		}
		parsed = append(parsed, id)
	}
	parsed = models.UniqueIDs(parsed)
	if len(parsed) == 0 {
		return []primitive.ObjectID{}, dropped, nil
	}
	books, err := s.store.BooksByIDs(ctx, parsed)
	if err != nil {
		return nil, nil, apperr.Unexpected("load books", err)
	}
	found := indexBy(books, bookID)
	kept := make([]primitive.ObjectID, 0, len(parsed))
	for _, id := range parsed {
		if _, ok := found[id]; ok {
			kept = append(kept, id)
		} else {
			dropped = append(dropped, id.Hex())
		}
	}
	return kept, dropped, nil
}

// Create writes the collection and links it from its owner and from each kept book.
func (s *Collections) Create(ctx context.Context, caller *auth.Identity, in CollectionInput) (*CollectionResult, error) {
	if err := auth.LoginRequired(caller); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	user, err := s.store.UserByID(ctx, caller.ID)
	if err != nil {
		return nil, apperr.Unexpected("load user", err)
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}
	owned, err := s.store.CollectionsByUser(ctx, user.ID)
	if err != nil {
		return nil, apperr.Unexpected("count collections", err)
	}
	if max(len(user.Collections), len(owned)) >= models.MaxCollectionsPerUser {
		return nil, apperr.LimitExceeded("You can only create up to %d collections.", models.MaxCollectionsPerUser)
	}

	kept, dropped, err := s.resolveBooks(ctx, in.BookIDs)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	col := &models.Collection{
		User:        user.ID,
		Name:        in.Name,
		Description: in.Description,
		Books:       kept,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := s.store.InsertCollection(ctx, col)
	if err != nil {
		return nil, apperr.Unexpected("create collection", err)
	}
	col.ID = id

	links := []func() error{
		func() error { return s.store.AddUserRef(ctx, user.ID, models.UserCollections, id) },
	}
	for _, b := range kept {
		links = append(links, func() error { return s.store.AddBookRef(ctx, b, models.BookCollections, id) })
	}
	if err := runAll(links...); err != nil {
		return nil, apperr.Unexpected("create collection: link user and books", err)
	}
	return &CollectionResult{Collection: col, DroppedBookIDs: dropped}, nil
}

// Update changes name, description or books. The owner cannot be changed. When books are
// replaced, the book side is synced for every added and removed id.
func (s *Collections) Update(ctx context.Context, caller *auth.Identity, id primitive.ObjectID, fields map[string]any) (*CollectionResult, error) {
	if err := auth.LoginRequired(caller); err != nil {
		return nil, err
	}
	if rejected := rejectedKeys(fields, collectionUpdateFields); len(rejected) > 0 {
		return nil, apperr.Validation("Invalid update fields. Allowed fields are: %s.", strings.Join(collectionUpdateFields, ", ")).
			WithDetails(map[string]any{"rejected": rejected})
	}
	col, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.OwnerOrAdmin(caller, col.User, "update your own collections"); err != nil {
		return nil, err
	}

	if raw, ok := fields["name"]; ok {
		if col.Name, err = scalarField("name", raw); err != nil {
			return nil, err
		}
	}
	if raw, ok := fields["description"]; ok {
		desc, isString := raw.(string)
		if !isString && raw != nil {
			return nil, apperr.Validation("Field description must be a string.")
		}
		col.Description = strings.TrimSpace(desc)
	}

	result := &CollectionResult{Collection: col, DroppedBookIDs: []string{}}
	var added, removed []primitive.ObjectID
	if raw, ok := fields["books"]; ok && raw != nil {
		ids, err := stringList("books", raw)
		if err != nil {
			return nil, err
		}
		kept, dropped, err := s.resolveBooks(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, b := range kept {
			if !col.HasBook(b) {
				added = append(added, b)
			}
		}
		for _, b := range col.Books {
			if !models.ContainsID(kept, b) {
				removed = append(removed, b)
			}
		}
		col.Books = kept
		result.DroppedBookIDs = dropped
	}
	col.UpdatedAt = time.Now()
	if err := s.store.UpdateCollection(ctx, col.ID, col); err != nil {
		return nil, apperr.Unexpected("update collection", err)
	}

	syncs := make([]func() error, 0, len(added)+len(removed))
	for _, b := range added {
		syncs = append(syncs, func() error { return s.store.AddBookRef(ctx, b, models.BookCollections, col.ID) })
	}
	for _, b := range removed {
		syncs = append(syncs, func() error { return s.store.PullBookRef(ctx, b, models.BookCollections, col.ID) })
	}
	if err := runAll(syncs...); err != nil {
		return nil, apperr.Unexpected("update collection: sync book references", err)
	}
	return result, nil
}

// AddBook appends the book to the collection and, if missing, the collection to the book.
func (s *Collections) AddBook(ctx context.Context, caller *auth.Identity, id, bookID primitive.ObjectID) (*models.CollectionView, error) {
	col, book, err := s.membership(ctx, caller, id, bookID, "add books to your own collections")
	if err != nil {
		return nil, err
	}
	if col.HasBook(book.ID) {
		return nil, apperr.AlreadyPresent("Book with id %s is already in the collection", book.ID.Hex())
	}
	if err := s.store.AddCollectionBook(ctx, col.ID, book.ID); err != nil {
		return nil, apperr.Unexpected("add book to collection", err)
	}
	if !models.ContainsID(book.Collections, col.ID) {
		if err := s.store.AddBookRef(ctx, book.ID, models.BookCollections, col.ID); err != nil {
			return nil, apperr.Unexpected("add book to collection: link book", err)
		}
	}
	return s.Get(ctx, col.ID)
}

// RemoveBook removes the book from the collection and the collection from the book.
func (s *Collections) RemoveBook(ctx context.Context, caller *auth.Identity, id, bookID primitive.ObjectID) (*models.CollectionView, error) {
	col, book, err := s.membership(ctx, caller, id, bookID, "remove books from your own collections")
	if err != nil {
		return nil, err
	}
	if !col.HasBook(book.ID) {
		return nil, apperr.NotPresent("Book with id %s is not in the collection", book.ID.Hex())
	}
	if err := s.store.PullCollectionBook(ctx, col.ID, book.ID); err != nil {
		return nil, apperr.Unexpected("remove book from collection", err)
	}
	if err := s.store.PullBookRef(ctx, book.ID, models.BookCollections, col.ID); err != nil {
		return nil, apperr.Unexpected("remove book from collection: unlink book", err)
	}
	return s.Get(ctx, col.ID)
}

func (s *Collections) membership(ctx context.Context, caller *auth.Identity, id, bookID primitive.ObjectID, action string) (*models.Collection, *models.Book, error) {
	if err := auth.LoginRequired(caller); err != nil {
		return nil, nil, err
	}
	col, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := auth.OwnerOrAdmin(caller, col.User, action); err != nil {
		return nil, nil, err
	}
	book, err := s.store.BookByID(ctx, bookID)
	if err != nil {
		return nil, nil, apperr.Unexpected("load book", err)
	}
	if book == nil {
		return nil, nil, apperr.NotFound("Book with id %s not found", bookID.Hex())
	}
	return col, book, nil
}

func (s *Collections) Delete(ctx context.Context, caller *auth.Identity, id primitive.ObjectID) error {
	if err := auth.LoginRequired(caller); err != nil {
		return err
	}
	col, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.OwnerOrAdmin(caller, col.User, "delete your own collections"); err != nil {
		return err
	}
	return s.cascade.DeleteCollection(ctx, col)
}

func (s *Collections) List(ctx context.Context) ([]models.CollectionView, error) {
	cols, err := s.store.ListCollections(ctx)
	if err != nil {
		return nil, apperr.Unexpected("list collections", err)
	}
	if len(cols) == 0 {
		return nil, apperr.NotFound("No collections found")
	}
	return s.views.CollectionViews(ctx, cols)
}

func (s *Collections) Get(ctx context.Context, id primitive.ObjectID) (*models.CollectionView, error) {
	col, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return firstView(s.views.CollectionViews(ctx, []models.Collection{*col}))
}

func (s *Collections) load(ctx context.Context, id primitive.ObjectID) (*models.Collection, error) {
	col, err := s.store.CollectionByID(ctx, id)
	if err != nil {
		return nil, apperr.Unexpected("load collection", err)
	}
	if col == nil {
		return nil, apperr.NotFound("Collection with id %s not found", id.Hex())
	}
	return col, nil
}

func stringList(key string, raw any) ([]string, error) {
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, v := range t {
			s, ok := v.(string)
			if !ok {
				return nil, apperr.Validation("Field %s must be a list of ids.", key)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, apperr.Validation("Field %s must be a list of ids.", key)
	}
}
