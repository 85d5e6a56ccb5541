package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/classbooker/internal/domain/user"
	"github.com/example/classbooker/internal/internaltypes"
	"golang.org/x/crypto/bcrypt"
)

type UserStore interface {
	Create(ctx context.Context, u user.User) error
	GetByUsername(ctx context.Context, username string) (user.User, error)
}

// AuthService guards the run-history dashboard.
type AuthService struct {
	Users UserStore
}

// decoyHash is compared against when the username is unknown, so a miss
// costs the same bcrypt work as a wrong password.
var decoyHash, _ = bcrypt.GenerateFromPassword([]byte("classbooker-decoy"), bcrypt.DefaultCost)

// VerifyPassword reports ErrUnauthorized for unknown users and wrong
// passwords alike.
func (a AuthService) VerifyPassword(ctx context.Context, username, password string) (user.User, error) {
	u, err := a.Users.GetByUsername(ctx, username)
	if errors.Is(err, internaltypes.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(decoyHash, []byte(password))
		return user.User{}, internaltypes.ErrUnauthorized
	}
	if err != nil {
		return user.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return user.User{}, internaltypes.ErrUnauthorized
	}
	return u, nil
}

func (a AuthService) Register(ctx context.Context, username, password string) (user.User, error) {
	u, err := NewUser(username, password)
	if err != nil {
		return user.User{}, err
	}
	if err := a.Users.Create(ctx, u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

func NewUser(username, password string) (user.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return user.User{}, fmt.Errorf("username required")
	}
	if len(password) < 8 {
		return user.User{}, fmt.Errorf("password must be at least 8 characters")
	}
	h, err := HashPassword(password)
	if err != nil {
		return user.User{}, err
	}
	return user.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: h,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
