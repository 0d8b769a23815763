package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kevinaaaquil/readingbud/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TokenTTL is the fixed validity window of issued tokens (one week).
const TokenTTL = 168 * time.Hour

var ErrInvalidToken = errors.New("invalid or expired token")

type Claims struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	UserID   string `json:"_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 tokens carrying an Identity.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must be provided")
	}
	return &TokenService{secret: []byte(secret), ttl: TokenTTL, now: time.Now}, nil
}

func (s *TokenService) Sign(id Identity) (string, error) {
	now := s.now()
	claims := &Claims{
		Email:    id.Email,
		FullName: id.FullName,
		UserID:   id.ID.Hex(),
		Role:     id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) Verify(raw string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil || !models.IsValidRole(claims.Role) {
		return nil, ErrInvalidToken
	}
	return &Identity{
		ID:       userID,
		Email:    claims.Email,
		FullName: claims.FullName,
		Role:     claims.Role,
	}, nil
}
