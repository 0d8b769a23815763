// Package handlers is the HTTP surface: request decoding, the route table and the JSON envelope.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/kevinaaaquil/readingbud/backend/auth"
	"github.com/kevinaaaquil/readingbud/backend/middleware"
	"github.com/kevinaaaquil/readingbud/backend/service"
	"github.com/kevinaaaquil/readingbud/backend/validation"
)

type RouterDeps struct {
	Services       *service.Services
	Tokens         *auth.TokenService
	Validator      *validation.Validator
	Logger         *slog.Logger
	AuthLimiter    *middleware.KeyedLimiter
	MaxUploadBytes int64
}

func NewRouter(d RouterDeps) http.Handler {
	if d.Validator == nil {
		d.Validator = validation.New()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	authH := &AuthHandler{Identity: d.Services.Identity, Logger: d.Logger}
	usersH := &UsersHandler{Identity: d.Services.Identity, Logger: d.Logger}
	booksH := &BooksHandler{Catalog: d.Services.Catalog, Uploads: UploadParser{MaxBytes: d.MaxUploadBytes}, Logger: d.Logger}
	reviewsH := &ReviewsHandler{Reviews: d.Services.Reviews, Logger: d.Logger}
	colsH := &CollectionsHandler{Collections: d.Services.Collections, Validator: d.Validator, Logger: d.Logger}
	adminH := &AdminHandler{Reconciler: d.Services.Reconciler, Logger: d.Logger}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.AllowAll())

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, envelope{Message: "Welcome to readingbud."})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(d.Tokens))

		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(d.AuthLimiter))
				r.Post("/register", authH.Register)
				r.Post("/login", authH.Login)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.LoginRequired)
				r.Delete("/me", usersH.DeleteMe)
				r.Post("/{id}/follow", usersH.Follow)
				r.Post("/{id}/unfollow", usersH.Unfollow)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminRequired)
				r.Get("/", usersH.List)
				r.Get("/{id}", usersH.Get)
				r.Delete("/{id}", usersH.Delete)
			})
		})

		r.Route("/books", func(r chi.Router) {
			r.Get("/", booksH.List)
			r.Get("/{id}", booksH.Get)
			r.Get("/{id}/images/{slot}", booksH.Image)
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminRequired)
				r.Post("/", booksH.Create)
				r.Put("/{id}", booksH.Update)
				r.Delete("/{id}", booksH.Delete)
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", reviewsH.List)
			r.Get("/{id}", reviewsH.Get)
			r.Group(func(r chi.Router) {
				r.Use(middleware.LoginRequired)
				r.Post("/", reviewsH.Create)
				r.Put("/{id}", reviewsH.Update)
				r.Delete("/{id}", reviewsH.Delete)
			})
		})

		r.Route("/collections", func(r chi.Router) {
			r.Get("/", colsH.List)
			r.Get("/{id}", colsH.Get)
			r.Group(func(r chi.Router) {
				r.Use(middleware.LoginRequired)
				r.Post("/", colsH.Create)
				r.Put("/{id}", colsH.Update)
				r.Delete("/{id}", colsH.Delete)
				r.Post("/{id}/add_book", colsH.AddBook)
				r.Delete("/{id}/remove_book", colsH.RemoveBook)
			})
		})

		r.With(middleware.AdminRequired).Post("/admin/reconcile", adminH.Reconcile)
	})

	return r
}
