// Package service implements the book, review, collection and account operations and the
// cascades that keep the denormalized references between them consistent.
//
// Every operation takes the caller as an explicit *auth.Identity; nil means anonymous.
// Errors are *apperr.Error values.
package service

import (
	"log/slog"

	"github.com/kevinaaaquil/readingbud/backend/auth"
	"github.com/kevinaaaquil/readingbud/backend/validation"
)

type Deps struct {
	Store     Store
	Images    ImageStore
	Hasher    auth.Hasher
	Tokens    *auth.TokenService
	Validator *validation.Validator
	Logger    *slog.Logger
}

type Services struct {
	Identity    *Identity
	Catalog     *Catalog
	Reviews     *Reviews
	Collections *Collections
	Cascade     *Cascade
	Reconciler  *Reconciler
}

func New(d Deps) *Services {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Validator == nil {
		d.Validator = validation.New()
	}
	cascade := NewCascade(d.Store, d.Images, d.Logger.With("component", "cascade"))
	views := expander{store: d.Store}
	return &Services{
		Identity: &Identity{
			store:     d.Store,
			hasher:    d.Hasher,
			tokens:    d.Tokens,
			validator: d.Validator,
			cascade:   cascade,
			views:     views,
			logger:    d.Logger.With("component", "identity"),
		},
		Catalog: &Catalog{
			store:     d.Store,
			images:    d.Images,
			validator: d.Validator,
			cascade:   cascade,
			views:     views,
			logger:    d.Logger.With("component", "catalog"),
		},
		Reviews: &Reviews{
			store:     d.Store,
			validator: d.Validator,
			cascade:   cascade,
			views:     views,
			logger:    d.Logger.With("component", "reviews"),
		},
		Collections: &Collections{
			store:     d.Store,
			validator: d.Validator,
			cascade:   cascade,
			views:     views,
			logger:    d.Logger.With("component", "collections"),
		},
		Cascade:    cascade,
		Reconciler: &Reconciler{store: d.Store, logger: d.Logger.With("component", "reconciler")},
	}
}
