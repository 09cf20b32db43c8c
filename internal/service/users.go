package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/taskboard/internal/domain/user"
	"github.com/geocoder89/taskboard/internal/observability"
)

type UsersRepo interface {
	Create(ctx context.Context, email, passwordHash, name string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Check(hash, plain string) bool
}

type UserService struct {
	repo   UsersRepo
	hasher PasswordHasher
	prom   *observability.Prom
}

func NewUserService(repo UsersRepo, hasher PasswordHasher, prom *observability.Prom) *UserService {
	return &UserService{repo: repo, hasher: hasher, prom: prom}
}

// Register creates an account. The email is looked up first so a taken address
// never costs a hash; the unique constraint still catches concurrent signups.
func (s *UserService) Register(ctx context.Context, email, password, name string) (user.User, error) {
	email = strings.TrimSpace(email)

	name = strings.TrimSpace(name)
	if name == "" {
		return user.User{}, user.ErrEmptyName
	}

	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		s.prom.ObserveAuth("register", "email_taken")
		return user.User{}, user.ErrEmailTaken
	case !errors.Is(err, user.ErrNotFound):
		return user.User{}, fmt.Errorf("register lookup: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user.User{}, fmt.Errorf("register hash: %w", err)
	}

	u, err := s.repo.Create(ctx, email, hash, name)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			s.prom.ObserveAuth("register", "email_taken")
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, fmt.Errorf("register create: %w", err)
	}

	s.prom.ObserveAuth("register", "ok")

	return u, nil
}

func (s *UserService) Authenticate(ctx context.Context, email, password string) (user.User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.prom.ObserveAuth("login", "unknown_email")
			return user.User{}, user.ErrUnknownEmail
		}
		return user.User{}, fmt.Errorf("authenticate: %w", err)
	}

	if !s.hasher.Check(u.PasswordHash, password) {
		s.prom.ObserveAuth("login", "invalid_password")
		return user.User{}, user.ErrInvalidPassword
	}

	s.prom.ObserveAuth("login", "ok")

	return u, nil
}

func (s *UserService) LoadByID(ctx context.Context, id int64) (user.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return user.User{}, fmt.Errorf("load user %d: %w", id, err)
	}

	return u, nil
}
