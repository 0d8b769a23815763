package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/kevinaaaquil/readingbud/backend/apperr"
	"github.com/kevinaaaquil/readingbud/backend/auth"
	"github.com/kevinaaaquil/readingbud/backend/models"
	"github.com/kevinaaaquil/readingbud/backend/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const bookImagePrefix = "books/images/"

// Catalog owns book records and their image artifacts.
type Catalog struct {
	store     Store
	images    ImageStore
	validator *validation.Validator
	cascade   *Cascade
	views     expander
	logger    *slog.Logger
}

// BookInput carries a create or partial update. Nil fields are left unchanged on update.
type BookInput struct {
	Title          *string
	Author         *string
	PublishingDate *string
	// ImageURLs maps an image slot to an absolute http(s) URL.
	ImageURLs map[string]string
	Uploads   []ImageUpload
}

type bookFields struct {
	Title          string `json:"title" validate:"required"`
	Author         string `json:"author" validate:"required"`
	PublishingDate string `json:"publishing_date" validate:"required"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

var publishingDateLayouts = []string{"2006", "2006-01-02", time.RFC3339}

// ParsePublishingDate accepts a year, a YYYY-MM-DD date or an RFC 3339 timestamp.
func ParsePublishingDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range publishingDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.Validation("Validation failed: invalid publishing date.").
		WithDetails(map[string]string{"publishing_date": "must be a year, a YYYY-MM-DD date or an RFC 3339 timestamp"})
}

func validSlot(slot string) bool {
	for _, s := range models.ImageSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// checkSlots rejects unknown slots and image values that are not absolute http(s) URLs.
// On update, current is the stored book and its own values are accepted unchanged.
func (s *Catalog) checkSlots(in BookInput, current *models.Book) error {
	for slot, url := range in.ImageURLs {
		if !validSlot(slot) {
			return apperr.Validation("Unknown image field: %s", slot)
		}
		if url = strings.TrimSpace(url); url == "" || (current != nil && url == current.Image(slot)) {
			continue
		}
		if err := s.validator.ValidateVar(slot, url, "http_url"); err != nil {
			return err
		}
	}
	for _, up := range in.Uploads {
		if !validSlot(up.Slot) {
			return apperr.Validation("Unknown image field: %s", up.Slot)
		}
	}
	return nil
}

// saveUploads stores every upload and returns slot -> key. On failure, artifacts already
// written are removed.
func (s *Catalog) saveUploads(ctx context.Context, uploads []ImageUpload) (map[string]string, error) {
	saved := map[string]string{}
	if len(uploads) == 0 {
		return saved, nil
	}
	if s.images == nil {
		return nil, apperr.Validation("Image uploads are not configured")
	}
	for _, up := range uploads {
		key, err := s.images.Save(ctx, bookImagePrefix, up.Filename, up.Body, up.ContentType)
		if err != nil {
			s.discard(ctx, saved)
			return nil, apperr.Unexpected("store uploaded image", err)
		}
		if prev, ok := saved[up.Slot]; ok {
			s.discard(ctx, map[string]string{up.Slot: prev})
		}
		saved[up.Slot] = key
	}
	return saved, nil
}

func (s *Catalog) discard(ctx context.Context, keys map[string]string) {
	for slot, key := range keys {
		if err := s.images.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to remove uploaded image", "slot", slot, "key", key, "error", err)
		}
	}
}

// Create inserts a book. Uploaded files are written only after validation passes and are
// removed again if the insert fails.
func (s *Catalog) Create(ctx context.Context, caller *auth.Identity, in BookInput) (*models.Book, error) {
	if err := auth.AdminRequired(caller); err != nil {
		return nil, err
	}
	fields := bookFields{Title: deref(in.Title), Author: deref(in.Author), PublishingDate: deref(in.PublishingDate)}
	if err := s.validator.Validate(fields); err != nil {
		return nil, err
	}
	published, err := ParsePublishingDate(fields.PublishingDate)
	if err != nil {
		return nil, err
	}
	if err := s.checkSlots(in, nil); err != nil {
		return nil, err
	}
	saved, err := s.saveUploads(ctx, in.Uploads)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	book := &models.Book{
		Title:          fields.Title,
		Author:         fields.Author,
		PublishingDate: published,
		Reviews:        []primitive.ObjectID{},
		Collections:    []primitive.ObjectID{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, slot := range models.ImageSlots {
		if key, ok := saved[slot]; ok {
			book.SetImage(slot, key)
		} else if url := strings.TrimSpace(in.ImageURLs[slot]); url != "" {
			book.SetImage(slot, url)
		}
	}
	id, err := s.store.InsertBook(ctx, book)
	if err != nil {
		s.discard(ctx, saved)
		return nil, apperr.Unexpected("create book", err)
	}
	book.ID = id
	return book, nil
}

// Update applies a partial update. Replaced artifacts are deleted once the new values are
// stored, and every collection listing the book is re-asserted to contain it.
func (s *Catalog) Update(ctx context.Context, caller *auth.Identity, id primitive.ObjectID, in BookInput) (*models.Book, error) {
	if err := auth.AdminRequired(caller); err != nil {
		return nil, err
	}
	book, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkSlots(in, book); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if book.Title = deref(in.Title); book.Title == "" {
			return nil, apperr.Validation("Title cannot be empty.")
		}
	}
	if in.Author != nil {
		if book.Author = deref(in.Author); book.Author == "" {
			return nil, apperr.Validation("Author cannot be empty.")
		}
	}
	if in.PublishingDate != nil {
		if book.PublishingDate, err = ParsePublishingDate(*in.PublishingDate); err != nil {
			return nil, err
		}
	}

	saved, err := s.saveUploads(ctx, in.Uploads)
	if err != nil {
		return nil, err
	}
	var replaced []string
	for _, slot := range models.ImageSlots {
		next, ok := saved[slot]
		if !ok {
			next = strings.TrimSpace(in.ImageURLs[slot])
		}
		if next == "" || next == book.Image(slot) {
			continue
		}
		if prev := book.Image(slot); prev != "" {
			replaced = append(replaced, prev)
		}
		book.SetImage(slot, next)
	}
	book.UpdatedAt = time.Now()

	if err := s.store.UpdateBook(ctx, book.ID, book); err != nil {
		s.discard(ctx, saved)
		return nil, apperr.Unexpected("update book", err)
	}
	for _, prev := range replaced {
		s.cascade.removeArtifact(ctx, prev)
	}

	rewrites := make([]func() error, 0, len(book.Collections))
	for _, colID := range book.Collections {
		rewrites = append(rewrites, func() error {
			return s.store.AddCollectionBook(ctx, colID, book.ID)
		})
	}
	if err := runAll(rewrites...); err != nil {
		return nil, apperr.Unexpected("update book: rewrite collection membership", err)
	}
	return book, nil
}

func (s *Catalog) Delete(ctx context.Context, caller *auth.Identity, id primitive.ObjectID) error {
	if err := auth.AdminRequired(caller); err != nil {
		return err
	}
	book, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	return s.cascade.DeleteBook(ctx, book)
}

func (s *Catalog) List(ctx context.Context) ([]models.BookView, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, apperr.Unexpected("list books", err)
	}
	if len(books) == 0 {
		return nil, apperr.NotFound("No books found")
	}
	return s.views.BookViews(ctx, books)
}

func (s *Catalog) Get(ctx context.Context, id primitive.ObjectID) (*models.BookView, error) {
	book, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return firstView(s.views.BookViews(ctx, []models.Book{*book}))
}

// Image opens the stored artifact in slot. External URLs are returned instead of a reader.
func (s *Catalog) Image(ctx context.Context, id primitive.ObjectID, slot string) (*StoredImage, error) {
	if !validSlot(slot) {
		return nil, apperr.Validation("Unknown image field: %s", slot)
	}
	book, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	path := book.Image(slot)
	if path == "" {
		return nil, apperr.NotFound("Book with id %s has no %s image", id.Hex(), slot)
	}
	if IsExternalImage(path) {
		return &StoredImage{URL: path}, nil
	}
	if s.images == nil {
		return nil, apperr.NotFound("Image %s is not available", path)
	}
	if p, ok := s.images.(presigner); ok {
		url, err := p.PresignedGetURL(ctx, path, 15*time.Minute)
		if err != nil {
			return nil, apperr.Unexpected("presign image", err)
		}
		return &StoredImage{URL: url}, nil
	}
	body, contentType, err := s.images.Open(ctx, path)
	if err != nil {
		return nil, apperr.NotFound("Image %s is not available", path)
	}
	return &StoredImage{Body: body, ContentType: contentType}, nil
}

// StoredImage is either a redirect URL or an open artifact the caller must close.
type StoredImage struct {
	URL         string
	Body        io.ReadCloser
	ContentType string
}

type presigner interface {
	PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

func (s *Catalog) load(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	book, err := s.store.BookByID(ctx, id)
	if err != nil {
		return nil, apperr.Unexpected("load book", err)
	}
	if book == nil {
		return nil, apperr.NotFound("Book with id %s was not found", id.Hex())
	}
	return book, nil
}
