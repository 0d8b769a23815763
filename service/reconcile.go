package service

import (
	"context"
	"log/slog"

	"github.com/kevinaaaquil/readingbud/backend/apperr"
	"github.com/kevinaaaquil/readingbud/backend/auth"
	"github.com/kevinaaaquil/readingbud/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Report counts the repairs made by one sweep, keyed by entity.field.
type Report struct {
	Deleted  map[string]int `json:"deleted"`
	Pulled   map[string]int `json:"pulled"`
	Restored map[string]int `json:"restored"`
}

func newReport() *Report {
	return &Report{Deleted: map[string]int{}, Pulled: map[string]int{}, Restored: map[string]int{}}
}

// Changes is the total number of writes the sweep made.
func (r *Report) Changes() int {
	n := 0
	for _, m := range []map[string]int{r.Deleted, r.Pulled, r.Restored} {
		for _, v := range m {
			n += v
		}
	}
	return n
}

// Reconciler repairs the reference graph after partial cascades: it deletes reviews and
// collections whose owner is gone, pulls references that no longer resolve, and re-adds
// missing inverse edges. Running it twice in a row makes no changes the second time.
type Reconciler struct {
	store  Store
	logger *slog.Logger
}

type snapshot struct {
	users       map[primitive.ObjectID]*models.User
	books       map[primitive.ObjectID]*models.Book
	reviews     map[primitive.ObjectID]*models.Review
	collections map[primitive.ObjectID]*models.Collection
}

func (r *Reconciler) load(ctx context.Context) (*snapshot, error) {
	users, err := r.store.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Unexpected("reconcile: load users", err)
	}
	books, err := r.store.ListBooks(ctx)
	if err != nil {
		return nil, apperr.Unexpected("reconcile: load books", err)
	}
	reviews, err := r.store.ListReviews(ctx)
	if err != nil {
		return nil, apperr.Unexpected("reconcile: load reviews", err)
	}
	cols, err := r.store.ListCollections(ctx)
	if err != nil {
		return nil, apperr.Unexpected("reconcile: load collections", err)
	}
	return &snapshot{
		users:       indexBy(users, userID),
		books:       indexBy(books, bookID),
		reviews:     indexBy(reviews, reviewID),
		collections: indexBy(cols, collectionID),
	}, nil
}

// Run is Sweep for the admin endpoint.
func (r *Reconciler) Run(ctx context.Context, caller *auth.Identity) (*Report, error) {
	if err := auth.AdminRequired(caller); err != nil {
		return nil, err
	}
	return r.Sweep(ctx)
}

func (r *Reconciler) Sweep(ctx context.Context) (*Report, error) {
	snap, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	rep := newReport()

	if err := r.deleteOrphans(ctx, snap, rep); err != nil {
		return nil, err
	}
	if err := r.pullDangling(ctx, snap, rep); err != nil {
		return nil, err
	}
	if err := r.restoreInverse(ctx, snap, rep); err != nil {
		return nil, err
	}
	if n := rep.Changes(); n > 0 {
		r.logger.Info("reconcile sweep repaired references", "changes", n,
			"deleted", rep.Deleted, "pulled", rep.Pulled, "restored", rep.Restored)
	}
	return rep, nil
}

func (r *Reconciler) deleteOrphans(ctx context.Context, snap *snapshot, rep *Report) error {
	for id, rv := range snap.reviews {
		if snap.users[rv.User] != nil && snap.books[rv.Book] != nil {
			continue
		}
		if err := r.store.DeleteReview(ctx, id); err != nil {
			return apperr.Unexpected("reconcile: delete orphaned review", err)
		}
		delete(snap.reviews, id)
		rep.Deleted["reviews"]++
	}
	for id, col := range snap.collections {
		if snap.users[col.User] != nil {
			continue
		}
		if err := r.store.DeleteCollection(ctx, id); err != nil {
			return apperr.Unexpected("reconcile: delete orphaned collection", err)
		}
		delete(snap.collections, id)
		rep.Deleted["collections"]++
	}
	return nil
}

// pullDangling removes references whose target is gone or does not point back.
// The snapshot is updated in place so restoreInverse sees the cleaned lists.
func (r *Reconciler) pullDangling(ctx context.Context, snap *snapshot, rep *Report) error {
	for _, b := range snap.books {
		for _, id := range b.Reviews {
			if rv := snap.reviews[id]; rv == nil || rv.Book != b.ID {
				if err := r.store.PullBookRef(ctx, b.ID, models.BookReviews, id); err != nil {
					return apperr.Unexpected("reconcile: pull book reviews", err)
				}
				b.Reviews = models.WithoutID(b.Reviews, id)
				rep.Pulled["book.reviews"]++
			}
		}
		for _, id := range b.Collections {
			if col := snap.collections[id]; col == nil || !col.HasBook(b.ID) {
				if err := r.store.PullBookRef(ctx, b.ID, models.BookCollections, id); err != nil {
					return apperr.Unexpected("reconcile: pull book collections", err)
				}
				b.Collections = models.WithoutID(b.Collections, id)
				rep.Pulled["book.collections"]++
			}
		}
	}

	for _, u := range snap.users {
		for _, id := range u.Reviews {
			if rv := snap.reviews[id]; rv == nil || rv.User != u.ID {
				if err := r.pullUser(ctx, u, models.UserReviews, id, rep); err != nil {
					return err
				}
				u.Reviews = models.WithoutID(u.Reviews, id)
			}
		}
		for _, id := range u.Collections {
			if col := snap.collections[id]; col == nil || col.User != u.ID {
				if err := r.pullUser(ctx, u, models.UserCollections, id, rep); err != nil {
					return err
				}
				u.Collections = models.WithoutID(u.Collections, id)
			}
		}
		for _, id := range u.Followers {
			if snap.users[id] == nil || id == u.ID {
				if err := r.pullUser(ctx, u, models.UserFollowers, id, rep); err != nil {
					return err
				}
				u.Followers = models.WithoutID(u.Followers, id)
			}
		}
		for _, id := range u.Following {
			if snap.users[id] == nil || id == u.ID {
				if err := r.pullUser(ctx, u, models.UserFollowing, id, rep); err != nil {
					return err
				}
				u.Following = models.WithoutID(u.Following, id)
			}
		}
	}

	for _, col := range snap.collections {
		for _, id := range col.Books {
			if snap.books[id] == nil {
				if err := r.store.PullCollectionBook(ctx, col.ID, id); err != nil {
					return apperr.Unexpected("reconcile: pull collection books", err)
				}
				col.Books = models.WithoutID(col.Books, id)
				rep.Pulled["collection.books"]++
			}
		}
	}
	return nil
}

func (r *Reconciler) pullUser(ctx context.Context, u *models.User, field string, id primitive.ObjectID, rep *Report) error {
	if err := r.store.PullUserRef(ctx, u.ID, field, id); err != nil {
		return apperr.Unexpected("reconcile: pull user "+field, err)
	}
	rep.Pulled["user."+field]++
	return nil
}

func (r *Reconciler) restoreInverse(ctx context.Context, snap *snapshot, rep *Report) error {
	for _, rv := range snap.reviews {
		if b := snap.books[rv.Book]; !models.ContainsID(b.Reviews, rv.ID) {
			if err := r.store.AddBookRef(ctx, b.ID, models.BookReviews, rv.ID); err != nil {
				return apperr.Unexpected("reconcile: restore book reviews", err)
			}
			b.Reviews = append(b.Reviews, rv.ID)
			rep.Restored["book.reviews"]++
		}
		if u := snap.users[rv.User]; !models.ContainsID(u.Reviews, rv.ID) {
			if err := r.addUser(ctx, u, models.UserReviews, rv.ID, rep); err != nil {
				return err
			}
			u.Reviews = append(u.Reviews, rv.ID)
		}
	}

	for _, col := range snap.collections {
		if u := snap.users[col.User]; !models.ContainsID(u.Collections, col.ID) {
			if err := r.addUser(ctx, u, models.UserCollections, col.ID, rep); err != nil {
				return err
			}
			u.Collections = append(u.Collections, col.ID)
		}
		for _, id := range col.Books {
			if b := snap.books[id]; !models.ContainsID(b.Collections, col.ID) {
				if err := r.store.AddBookRef(ctx, b.ID, models.BookCollections, col.ID); err != nil {
					return apperr.Unexpected("reconcile: restore book collections", err)
				}
				b.Collections = append(b.Collections, col.ID)
				rep.Restored["book.collections"]++
			}
		}
	}

	for _, u := range snap.users {
		for _, id := range u.Following {
			if peer := snap.users[id]; !models.ContainsID(peer.Followers, u.ID) {
				if err := r.addUser(ctx, peer, models.UserFollowers, u.ID, rep); err != nil {
					return err
				}
				peer.Followers = append(peer.Followers, u.ID)
			}
		}
		for _, id := range u.Followers {
			if peer := snap.users[id]; !models.ContainsID(peer.Following, u.ID) {
				if err := r.addUser(ctx, peer, models.UserFollowing, u.ID, rep); err != nil {
					return err
				}
				peer.Following = append(peer.Following, u.ID)
			}
		}
	}
	return nil
}

func (r *Reconciler) addUser(ctx context.Context, u *models.User, field string, id primitive.ObjectID, rep *Report) error {
	if err := r.store.AddUserRef(ctx, u.ID, field, id); err != nil {
		return apperr.Unexpected("reconcile: restore user "+field, err)
	}
	rep.Restored["user."+field]++
	return nil
}
