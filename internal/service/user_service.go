package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"devconnector/internal/model"
	"devconnector/internal/repository"
)

const bcryptCost = 10

// UserService manages the users profiles hang off.
type UserService interface {
	// EnsureUser returns the user registered under email, creating it when absent.
	// created reports whether a new user was stored.
	EnsureUser(ctx context.Context, name, email, password string) (user *model.User, created bool, err error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) EnsureUser(ctx context.Context, name, email, password string) (*model.User, bool, error) {
	email = normalizeEmail(email)

	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Avatar:       GravatarURL(email),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	return user, true, nil
}

// GravatarURL returns the 200px, pg-rated gravatar for email with the
// mystery-person fallback.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(normalizeEmail(email)))
	return "//www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&r=pg&d=mm"
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
