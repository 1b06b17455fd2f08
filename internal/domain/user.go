package domain

import (
	"context"
	"errors"

	"adultcare-api/internal/feature/user"
)

const (
	RoleFamily    = "family"
	RoleCaregiver = "caregiver"
	RoleAdmin     = "admin"
)

var Roles = []string{RoleFamily, RoleCaregiver, RoleAdmin}

func ValidRole(r string) bool {
	for _, v := range Roles {
		if v == r {
			return true
		}
	}
	return false
}

var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidRole        = errors.New("invalid role")
)

type UserRepository interface {
	Create(ctx context.Context, u *user.UserModel) error
	FindByID(ctx context.Context, id uint) (*user.UserModel, error)
	FindByEmail(ctx context.Context, email string) (*user.UserModel, error)
	List(ctx context.Context, q string, offset, limit int) ([]user.UserModel, int64, error)
	TouchLastLogin(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}
