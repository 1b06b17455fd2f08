package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"adultcare-api/internal/domain"
	"adultcare-api/internal/feature/user"
	"adultcare-api/pkg/utils"
)

type UserService struct {
	repo domain.UserRepository
	log  *zap.Logger
}

func NewUserService(repo domain.UserRepository, l *zap.Logger) *UserService {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserService{repo: repo, log: l}
}

type RegisterInput struct {
	Email      string
	Username   string
	Password   string
	RePassword string
	Role       string
	Phone      string
	Location   string
}

// NormalizeEmail 域名部分转小写，本地部分保持原样
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*user.UserModel, error) {
	if in.Password != in.RePassword {
		return nil, domain.ErrPasswordMismatch
	}
	role := in.Role
	if role == "" {
		role = domain.RoleFamily
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}
	return s.create(ctx, &user.UserModel{
		Email:    NormalizeEmail(in.Email),
		Username: in.Username,
		Role:     role,
		Phone:    in.Phone,
		Location: in.Location,
		IsActive: true,
	}, in.Password)
}

// CreateSuperuser 角色强制为 admin
func (s *UserService) CreateSuperuser(ctx context.Context, email, username, password string) (*user.UserModel, error) {
	return s.create(ctx, &user.UserModel{
		Email:       NormalizeEmail(email),
		Username:    username,
		Role:        domain.RoleAdmin,
		IsActive:    true,
		IsStaff:     true,
		IsSuperuser: true,
	}, password)
}

// EnsureSuperuser 幂等：该邮箱已存在则什么都不做
func (s *UserService) EnsureSuperuser(ctx context.Context, email, username, password string) (bool, error) {
	_, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err == nil {
		s.log.Info("superuser already exists", zap.String("email", email))
		return false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return false, fmt.Errorf("lookup superuser: %w", err)
	}
	if _, err := s.CreateSuperuser(ctx, email, username, password); err != nil {
		// 多实例同时启动时可能被别人先建了
		if errors.Is(err, domain.ErrEmailTaken) {
			return false, nil
		}
		return false, fmt.Errorf("create superuser: %w", err)
	}
	s.log.Info("superuser created", zap.String("email", email))
	return true, nil
}

func (s *UserService) create(ctx context.Context, u *user.UserModel, password string) (*user.UserModel, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate 邮箱不存在 / 密码错误 / 已停用统一返回 ErrInvalidCredentials
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*user.UserModel, error) {
	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if err := s.repo.TouchLastLogin(ctx, u.ID); err != nil {
		s.log.Warn("update last_login failed", zap.Uint("uid", u.ID), zap.Error(err))
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*user.UserModel, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, q string, offset, limit int) ([]user.UserModel, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, q, offset, limit)
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}
