package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"adultcare-api/internal/domain"
	"adultcare-api/internal/service"
	httpez "adultcare-api/internal/transport/http/ez"
	mdw "adultcare-api/internal/transport/http/middleware"
)

// AdminHandler 后台用户管理；分组已走 AuthJWT("admin")
type AdminHandler struct {
	svc *service.UserService
	log *zap.Logger
}

func NewAdminHandler(svc *service.UserService, l *zap.Logger) *AdminHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return &AdminHandler{svc: svc, log: l}
}

type listUsersQ struct {
	Offset int    `form:"offset,default=0"`
	Limit  int    `form:"limit,default=20"`
	Q      string `form:"q"` // 按 email/username 模糊搜
}

type adminUserRow struct {
	ID          uint       `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	IsStaff     bool       `json:"is_staff"`
	IsSuperuser bool       `json:"is_superuser"`
	LastLogin   *time.Time `json:"last_login"`
	DateJoined  time.Time  `json:"date_joined"`
}

type listUsersOut struct {
	Total int64          `json:"total"`
	Items []adminUserRow `json:"items"`
}

func (h *AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	ez := httpez.New(admin)

	httpez.RegisterAction(ez, nil, httpez.Action[listUsersQ, listUsersOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, _ *gorm.DB, in *listUsersQ) (listUsersOut, error) {
			us, total, err := h.svc.List(c.Request.Context(), in.Q, in.Offset, in.Limit)
			if err != nil {
				return listUsersOut{}, httpez.Internal("list users failed", err)
			}
			out := listUsersOut{Total: total, Items: make([]adminUserRow, 0, len(us))}
			for _, u := range us {
				out.Items = append(out.Items, adminUserRow{
					ID: u.ID, Email: u.Email, Username: u.Username, Role: u.Role,
					IsActive: u.IsActive, IsStaff: u.IsStaff, IsSuperuser: u.IsSuperuser,
					LastLogin: u.LastLogin, DateJoined: u.DateJoined,
				})
			}
			return out, nil
		},
	})

	httpez.RegisterAction(ez, nil, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (gin.H, error) {
			id, err := strconv.ParseUint(c.Param("id"), 10, 64)
			if err != nil || id == 0 {
				return nil, httpez.NotFound("user not found")
			}
			if p := mdw.PrincipalFrom(c); p != nil && p.UID == uint(id) {
				return nil, httpez.BadRequest("cannot delete yourself")
			}
			err = h.svc.Delete(c.Request.Context(), uint(id))
			if errors.Is(err, domain.ErrUserNotFound) {
				return nil, httpez.NotFound("user not found")
			}
			if err != nil {
				return nil, httpez.Internal("delete user failed", err)
			}
			h.log.Info("user deleted", zap.Uint64("uid", id), zap.Uint("by", mdw.PrincipalFrom(c).UID))
			return gin.H{"id": id}, nil
		},
	})
}
