package ez

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"adultcare-api/internal/core/auth"
	mdw "adultcare-api/internal/transport/http/middleware"
	resp "adultcare-api/internal/transport/http/response"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// Action 非 CRUD 接口：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Policy  auth.Policy // nil = AllowAny
	Status  int         // 成功时的 HTTP 状态，默认 200
	UseTx   bool        // 是否包事务
	Handler func(c *gin.Context, db *gorm.DB, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口；不碰库的动作 db 可传 nil
func RegisterAction[I any, O any](e EZ, db *gorm.DB, a Action[I, O]) {
	policy := a.Policy
	if policy == nil {
		policy = auth.AllowAny
	}
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}

	h := func(c *gin.Context) {
		// 1) 授权
		if err := policy.Authorize(c.Request.Method, mdw.PrincipalFrom(c)); err != nil {
			WriteError(c, err)
			return
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = bindJSON(c, &in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			WriteError(c, bindError{bindErr})
			return
		}

		// 3) 执行（可选事务）
		var out O
		var err error
		if a.UseTx {
			err = db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
				o, e := a.Handler(c, tx, &in)
				out = o
				return e
			})
		} else {
			var conn *gorm.DB
			if db != nil {
				conn = db.WithContext(c.Request.Context())
			}
			out, err = a.Handler(c, conn, &in)
		}
		if err != nil {
			WriteError(c, err)
			return
		}
		if status == http.StatusCreated {
			c.JSON(status, resp.Created(out))
			return
		}
		c.JSON(status, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}
