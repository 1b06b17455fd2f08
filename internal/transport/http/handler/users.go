package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"adultcare-api/internal/core/auth"
	"adultcare-api/internal/domain"
	"adultcare-api/internal/feature/user"
	"adultcare-api/internal/service"
	httpez "adultcare-api/internal/transport/http/ez"
	mdw "adultcare-api/internal/transport/http/middleware"
)

// TokenStore refresh token 白名单；为 nil 时 refresh token 无状态
type TokenStore interface {
	AllowRefresh(ctx context.Context, uid uint, jti string, ttl time.Duration) error
	RefreshAllowed(ctx context.Context, uid uint, jti string) (bool, error)
	RevokeRefresh(ctx context.Context, uid uint, jti string) error
}

type UserHandler struct {
	db     *gorm.DB
	svc    *service.UserService
	jwt    *auth.JWTer
	tokens TokenStore
	log    *zap.Logger
}

func NewUserHandler(db *gorm.DB, svc *service.UserService, j *auth.JWTer, tokens TokenStore, l *zap.Logger) *UserHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserHandler{db: db, svc: svc, jwt: j, tokens: tokens, log: l}
}

func (h *UserHandler) Priority() int { return 10 }

type registerIn struct {
	Email      string `json:"email"       binding:"required,email,max=254"`
	Username   string `json:"username"    binding:"required,max=255"`
	Password   string `json:"password"    binding:"required"`
	RePassword string `json:"re_password" binding:"required"`
	Role       string `json:"role"        binding:"omitempty,oneof=family caregiver admin"`
	Phone      string `json:"phone"       binding:"max=20"`
	Location   string `json:"location"    binding:"max=255"`
}

type loginIn struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshIn struct {
	Refresh string `json:"refresh" binding:"required"`
}

type accessOut struct {
	Access string `json:"access"`
}

type feedbackIn struct {
	// 限定 1..5，原系统为不设上下限的整数
	Rating      *int    `json:"rating"      binding:"required,min=1,max=5"`
	Description *string `json:"description"`
}

// MountAPI 挂在 /api 下
func (h *UserHandler) MountAPI(api *gin.RouterGroup) {
	ez := httpez.New(api)

	httpez.RegisterAction(ez, h.db, httpez.Action[registerIn, user.Identity]{
		Method: http.MethodPost,
		Path:   "/users/register/",
		Binder: httpez.BindJSON,
		Policy: auth.AllowAny,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, _ *gorm.DB, in *registerIn) (user.Identity, error) {
			u, err := h.svc.Register(c.Request.Context(), service.RegisterInput{
				Email: in.Email, Username: in.Username,
				Password: in.Password, RePassword: in.RePassword,
				Role: in.Role, Phone: in.Phone, Location: in.Location,
			})
			switch {
			case errors.Is(err, domain.ErrPasswordMismatch):
				return user.Identity{}, httpez.Field("password", "Passwords do not match.")
			case errors.Is(err, domain.ErrInvalidRole):
				return user.Identity{}, httpez.Field("role", fmt.Sprintf("%q is not a valid choice.", in.Role))
			case errors.Is(err, domain.ErrEmailTaken):
				return user.Identity{}, httpez.Field("email", "user with this email already exists.")
			case err != nil:
				return user.Identity{}, httpez.Internal("register failed", err)
			}
			h.log.Info("user registered", zap.Uint("uid", u.ID), zap.String("role", u.Role))
			return u.Identity(), nil
		},
	})

	httpez.RegisterAction(ez, h.db, httpez.Action[struct{}, user.Identity]{
		Method: http.MethodGet,
		Path:   "/users/me/",
		Binder: httpez.BindNone,
		Policy: auth.Authenticated,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (user.Identity, error) {
			u, err := h.svc.Get(c.Request.Context(), mdw.PrincipalFrom(c).UID)
			if errors.Is(err, domain.ErrUserNotFound) {
				// token 有效但用户已被删除
				return user.Identity{}, httpez.Unauthorized("User not found")
			}
			if err != nil {
				return user.Identity{}, httpez.Internal("load user failed", err)
			}
			return u.Identity(), nil
		},
	})

	httpez.RegisterAction(ez, h.db, httpez.Action[feedbackIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/users/feedback/submit/",
		Binder: httpez.BindJSON,
		Policy: auth.AllowAny,
		Status: http.StatusCreated,
		UseTx:  true,
		Handler: func(c *gin.Context, tx *gorm.DB, in *feedbackIn) (gin.H, error) {
			fb := user.FeedbackModel{Rating: *in.Rating, Description: in.Description}
			if p := mdw.PrincipalFrom(c); p != nil {
				uid := p.UID
				fb.UserID = &uid
			}
			if err := tx.Create(&fb).Error; err != nil {
				return nil, httpez.Internal("save feedback failed", err)
			}
			return gin.H{"message": "Feedback submitted successfully!"}, nil
		},
	})

	login := httpez.Action[loginIn, auth.Pair]{
		Method:  http.MethodPost,
		Binder:  httpez.BindJSON,
		Policy:  auth.AllowAny,
		Handler: h.login,
	}
	for _, p := range []string{"/token/", "/users/login/"} {
		login.Path = p
		httpez.RegisterAction(ez, h.db, login)
	}

	refresh := httpez.Action[refreshIn, accessOut]{
		Method:  http.MethodPost,
		Binder:  httpez.BindJSON,
		Policy:  auth.AllowAny,
		Handler: h.refresh,
	}
	for _, p := range []string{"/token/refresh/", "/users/token/refresh/"} {
		refresh.Path = p
		httpez.RegisterAction(ez, h.db, refresh)
	}

	httpez.RegisterAction(ez, h.db, httpez.Action[refreshIn, struct{}]{
		Method: http.MethodPost,
		Path:   "/users/logout/",
		Binder: httpez.BindJSON,
		Policy: auth.AllowAny,
		Handler: func(c *gin.Context, _ *gorm.DB, in *refreshIn) (struct{}, error) {
			claims, err := h.jwt.ParseAs(in.Refresh, auth.RefreshToken)
			if err != nil {
				return struct{}{}, httpez.Unauthorized("Token is invalid or expired")
			}
			if h.tokens != nil {
				if err := h.tokens.RevokeRefresh(c.Request.Context(), claims.UID, claims.ID); err != nil {
					return struct{}{}, httpez.Internal("revoke refresh token failed", err)
				}
			}
			return struct{}{}, nil
		},
	})
}

func (h *UserHandler) login(c *gin.Context, _ *gorm.DB, in *loginIn) (auth.Pair, error) {
	u, err := h.svc.Authenticate(c.Request.Context(), in.Email, in.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return auth.Pair{}, httpez.Unauthorized("No active account found with the given credentials")
	}
	if err != nil {
		return auth.Pair{}, httpez.Internal("login failed", err)
	}
	pair, rc, err := h.jwt.IssuePair(u.ID, u.Role)
	if err != nil {
		return auth.Pair{}, httpez.Internal("issue token failed", err)
	}
	if h.tokens != nil {
		if err := h.tokens.AllowRefresh(c.Request.Context(), u.ID, rc.ID, h.jwt.RefreshTTL); err != nil {
			return auth.Pair{}, httpez.Internal("store refresh token failed", err)
		}
	}
	return pair, nil
}

func (h *UserHandler) refresh(c *gin.Context, _ *gorm.DB, in *refreshIn) (accessOut, error) {
	invalid := httpez.Unauthorized("Token is invalid or expired")
	claims, err := h.jwt.ParseAs(in.Refresh, auth.RefreshToken)
	if err != nil {
		return accessOut{}, invalid
	}
	ctx := c.Request.Context()
	if h.tokens != nil {
		ok, err := h.tokens.RefreshAllowed(ctx, claims.UID, claims.ID)
		if err != nil {
			return accessOut{}, httpez.Internal("check refresh token failed", err)
		}
		if !ok {
			return accessOut{}, invalid
		}
	}
	u, err := h.svc.Get(ctx, claims.UID)
	if errors.Is(err, domain.ErrUserNotFound) || (err == nil && !u.IsActive) {
		return accessOut{}, invalid
	}
	if err != nil {
		return accessOut{}, httpez.Internal("load user failed", err)
	}
	// 角色以库里为准
	tok, err := h.jwt.Issue(u.ID, u.Role)
	if err != nil {
		return accessOut{}, httpez.Internal("issue token failed", err)
	}
	return accessOut{Access: tok}, nil
}
