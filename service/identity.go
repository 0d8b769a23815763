package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/kevinaaaquil/readingbud/backend/apperr"
	"github.com/kevinaaaquil/readingbud/backend/auth"
	"github.com/kevinaaaquil/readingbud/backend/models"
	"github.com/kevinaaaquil/readingbud/backend/store"
	"github.com/kevinaaaquil/readingbud/backend/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identity owns user accounts, credentials and the follow graph.
type Identity struct {
	store     Store
	hasher    auth.Hasher
	tokens    *auth.TokenService
	validator *validation.Validator
	cascade   *Cascade
	views     expander
	logger    *slog.Logger
}

type RegisterInput struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,account_email"`
	Password string `json:"password" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with role user. Only the password digest is stored.
func (s *Identity) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = normalizeEmail(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	return s.create(ctx, in, models.RoleUser)
}

func (s *Identity) create(ctx context.Context, in RegisterInput, role string) (*models.User, error) {
	existing, err := s.store.UserByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperr.Unexpected("look up email", err)
	}
	if existing != nil {
		return nil, apperr.ErrDuplicateEmail
	}
	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Unexpected("hash password", err)
	}
	now := time.Now()
	user := &models.User{
		FullName:    in.FullName,
		Email:       in.Email,
		Password:    digest,
		Role:        role,
		Reviews:     []primitive.ObjectID{},
		Followers:   []primitive.ObjectID{},
		Following:   []primitive.ObjectID{},
		Collections: []primitive.ObjectID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := s.store.CreateUser(ctx, user)
	if errors.Is(err, store.ErrDuplicateKey) {
		return nil, apperr.ErrDuplicateEmail
	}
	if err != nil {
		return nil, apperr.Unexpected("create user", err)
	}
	user.ID = id
	return user, nil
}

// Authenticate checks credentials and issues a signed token.
func (s *Identity) Authenticate(ctx context.Context, in LoginInput) (string, *models.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return "", nil, apperr.ErrInvalidCredentials
	}
	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		return "", nil, apperr.Unexpected("look up user", err)
	}
	if user == nil || !s.hasher.Check(in.Password, user.Password) {
		return "", nil, apperr.ErrInvalidCredentials
	}
	token, err := s.tokens.Sign(auth.Identity{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
	})
	if err != nil {
		return "", nil, apperr.Unexpected("sign token", err)
	}
	return token, user, nil
}

// EnsureAdmin creates an admin account unless a user with that email already exists.
func (s *Identity) EnsureAdmin(ctx context.Context, fullName, email, password string) (bool, error) {
	in := RegisterInput{FullName: strings.TrimSpace(fullName), Email: normalizeEmail(email), Password: password}
	if err := s.validator.Validate(in); err != nil {
		return false, err
	}
	_, err := s.create(ctx, in, models.RoleAdmin)
	if errors.Is(err, apperr.ErrDuplicateEmail) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.logger.Info("admin account created", "email", in.Email)
	return true, nil
}

func (s *Identity) List(ctx context.Context, caller *auth.Identity) ([]models.UserView, error) {
	if err := auth.AdminRequired(caller); err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Unexpected("list users", err)
	}
	if len(users) == 0 {
		return nil, apperr.NotFound("No users found")
	}
	return s.views.UserViews(ctx, users)
}

func (s *Identity) Get(ctx context.Context, caller *auth.Identity, id primitive.ObjectID) (*models.UserView, error) {
	if err := auth.AdminRequired(caller); err != nil {
		return nil, err
	}
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return firstView(s.views.UserViews(ctx, []models.User{*user}))
}

func (s *Identity) load(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.store.UserByID(ctx, id)
	if err != nil {
		return nil, apperr.Unexpected("load user", err)
	}
	if user == nil {
		return nil, apperr.NotFound("User with id %s was not found", id.Hex())
	}
	return user, nil
}

// Follow adds the caller to target's followers and target to the caller's following.
func (s *Identity) Follow(ctx context.Context, caller *auth.Identity, targetID primitive.ObjectID) error {
	me, target, err := s.followPair(ctx, caller, targetID, "follow")
	if err != nil {
		return err
	}
	if me.IsFollowing(target.ID) {
		return apperr.ErrAlreadyFollowing
	}
	if err := runAll(
		func() error { return s.store.AddUserRef(ctx, me.ID, models.UserFollowing, target.ID) },
		func() error { return s.store.AddUserRef(ctx, target.ID, models.UserFollowers, me.ID) },
	); err != nil {
		return apperr.Unexpected("follow user", err)
	}
	return nil
}

// Unfollow removes both sides of the follow edge.
func (s *Identity) Unfollow(ctx context.Context, caller *auth.Identity, targetID primitive.ObjectID) error {
	me, target, err := s.followPair(ctx, caller, targetID, "unfollow")
	if err != nil {
		return err
	}
	if !me.IsFollowing(target.ID) {
		return apperr.ErrNotFollowing
	}
	if err := runAll(
		func() error { return s.store.PullUserRef(ctx, me.ID, models.UserFollowing, target.ID) },
		func() error { return s.store.PullUserRef(ctx, target.ID, models.UserFollowers, me.ID) },
	); err != nil {
		return apperr.Unexpected("unfollow user", err)
	}
	return nil
}

func (s *Identity) followPair(ctx context.Context, caller *auth.Identity, targetID primitive.ObjectID, verb string) (*models.User, *models.User, error) {
	if err := auth.LoginRequired(caller); err != nil {
		return nil, nil, err
	}
	if caller.ID == targetID {
		return nil, nil, apperr.InvalidOperation("You cannot %s yourself.", verb)
	}
	me, err := s.store.UserByID(ctx, caller.ID)
	if err != nil {
		return nil, nil, apperr.Unexpected("load user", err)
	}
	if me == nil {
		return nil, nil, apperr.NotFound("User not found")
	}
	target, err := s.load(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}
	return me, target, nil
}

// DeleteUser deletes the account and everything that references it. Callers may delete
// themselves; admins may delete anyone.
func (s *Identity) DeleteUser(ctx context.Context, caller *auth.Identity, id primitive.ObjectID) error {
	if err := auth.OwnerOrAdmin(caller, id, "delete your own account"); err != nil {
		return err
	}
	user, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	return s.cascade.DeleteUser(ctx, user)
}
