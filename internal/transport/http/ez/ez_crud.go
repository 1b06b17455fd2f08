package ez

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"adultcare-api/internal/core/auth"
	mdw "adultcare-api/internal/transport/http/middleware"
	resp "adultcare-api/internal/transport/http/response"
)

type CrudHooks[T any] struct {
	// 写库前校验/补全；返回 *AErr 决定状态码
	BeforeCreate func(c *gin.Context, tx *gorm.DB, m *T) error
	BeforeUpdate func(c *gin.Context, tx *gorm.DB, old, m *T) error
	// Scope 行级过滤，作用于 list/get/update/delete
	Scope func(c *gin.Context, q *gorm.DB) *gorm.DB
}

type CrudConfig[T any] struct {
	DB     *gorm.DB
	Group  *gin.RouterGroup
	Path   string // 例 "/profiles"，生成 /profiles/ 与 /profiles/:id/
	New    func() *T
	Policy auth.Policy // nil = Authenticated

	Hooks CrudHooks[T]

	IDField string // 默认 "ID"
	// OwnerField 由服务端写入当前用户 ID 的字段；客户端传值一律忽略，更新时保持原值
	OwnerField string

	OrderBy string // 默认 "id DESC"
}

func uintField(obj any, name string) (reflect.Value, bool) {
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	f := v.Elem().FieldByName(name)
	if !f.IsValid() || !f.CanSet() {
		return reflect.Value{}, false
	}
	switch f.Kind() {
	case reflect.Uint, reflect.Uint64, reflect.Uint32:
		return f, true
	}
	return reflect.Value{}, false
}

func readUint(obj any, name string) uint {
	if f, ok := uintField(obj, name); ok {
		return uint(f.Uint())
	}
	return 0
}

func writeUint(obj any, name string, val uint) bool {
	f, ok := uintField(obj, name)
	if !ok {
		return false
	}
	f.SetUint(uint64(val))
	return true
}

func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// Crud 注册标准五件套 + PATCH
func Crud[T any](cfg CrudConfig[T]) {
	if cfg.Policy == nil {
		cfg.Policy = auth.Authenticated
	}
	if cfg.IDField == "" {
		cfg.IDField = "ID"
	}
	if cfg.OrderBy == "" {
		cfg.OrderBy = "id DESC"
	}
	if cfg.OwnerField != "" {
		if _, ok := uintField(cfg.New(), cfg.OwnerField); !ok {
			panic("ez.Crud: owner field " + cfg.OwnerField + " not found")
		}
	}
	if _, ok := uintField(cfg.New(), cfg.IDField); !ok {
		panic("ez.Crud: id field " + cfg.IDField + " not found")
	}

	collection := cfg.Path + "/"
	item := cfg.Path + "/:id/"

	authorize := func(c *gin.Context) (*auth.Principal, bool) {
		p := mdw.PrincipalFrom(c)
		if err := cfg.Policy.Authorize(c.Request.Method, p); err != nil {
			WriteError(c, err)
			return nil, false
		}
		return p, true
	}
	scoped := func(c *gin.Context) *gorm.DB {
		q := cfg.DB.WithContext(c.Request.Context()).Model(cfg.New())
		if cfg.Hooks.Scope != nil {
			q = cfg.Hooks.Scope(c, q)
		}
		return q
	}
	// load 取一行（经过 Scope），不存在写 404
	load := func(c *gin.Context) (*T, bool) {
		id, ok := parseID(c)
		if !ok {
			WriteError(c, NotFound("Not found."))
			return nil, false
		}
		m := cfg.New()
		err := scoped(c).Where(clause.Eq{Column: clause.PrimaryColumn, Value: id}).Take(m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteError(c, NotFound("Not found."))
			return nil, false
		}
		if err != nil {
			WriteError(c, Internal("load failed", err))
			return nil, false
		}
		return m, true
	}
	save := func(c *gin.Context, m *T) error {
		return cfg.DB.WithContext(c.Request.Context()).Omit(clause.Associations).Save(m).Error
	}

	// Create
	cfg.Group.POST(collection, func(c *gin.Context) {
		p, ok := authorize(c)
		if !ok {
			return
		}
		m := cfg.New()
		if err := bindJSON(c, m); err != nil {
			WriteError(c, bindError{err})
			return
		}
		// 主键与归属字段由服务端决定
		writeUint(m, cfg.IDField, 0)
		if cfg.OwnerField != "" {
			if p == nil {
				WriteError(c, auth.ErrUnauthenticated)
				return
			}
			writeUint(m, cfg.OwnerField, p.UID)
		}
		if cfg.Hooks.BeforeCreate != nil {
			if err := cfg.Hooks.BeforeCreate(c, cfg.DB.WithContext(c.Request.Context()), m); err != nil {
				WriteError(c, err)
				return
			}
		}
		if err := cfg.DB.WithContext(c.Request.Context()).Omit(clause.Associations).Create(m).Error; err != nil {
			WriteError(c, Internal("create failed", err))
			return
		}
		c.JSON(http.StatusCreated, resp.Created(m))
	})

	// List
	cfg.Group.GET(collection, func(c *gin.Context) {
		if _, ok := authorize(c); !ok {
			return
		}
		page := atoiDefault(c.Query("page"), 1)
		size := atoiDefault(c.Query("size"), 20)
		if size > 100 {
			size = 20
		}
		q := scoped(c).Session(&gorm.Session{})

		var total int64
		if err := q.Count(&total).Error; err != nil {
			WriteError(c, Internal("count failed", err))
			return
		}
		items := make([]T, 0, size)
		if err := q.Order(cfg.OrderBy).Limit(size).Offset((page - 1) * size).Find(&items).Error; err != nil {
			WriteError(c, Internal("list failed", err))
			return
		}
		c.JSON(http.StatusOK, resp.OK(gin.H{
			"list": items, "total": total, "page": page, "size": size,
		}))
	})

	// Get
	cfg.Group.GET(item, func(c *gin.Context) {
		if _, ok := authorize(c); !ok {
			return
		}
		if m, ok := load(c); ok {
			c.JSON(http.StatusOK, resp.OK(m))
		}
	})

	// PUT 全量 / PATCH 部分
	update := func(partial bool) gin.HandlerFunc {
		return func(c *gin.Context) {
			if _, ok := authorize(c); !ok {
				return
			}
			old, ok := load(c)
			if !ok {
				return
			}
			in := cfg.New()
			if partial {
				cp := *old
				in = &cp
			}
			if err := bindJSON(c, in); err != nil {
				WriteError(c, bindError{err})
				return
			}
			// 强制保持 ID/Owner
			writeUint(in, cfg.IDField, readUint(old, cfg.IDField))
			if cfg.OwnerField != "" {
				writeUint(in, cfg.OwnerField, readUint(old, cfg.OwnerField))
			}
			if cfg.Hooks.BeforeUpdate != nil {
				if err := cfg.Hooks.BeforeUpdate(c, cfg.DB.WithContext(c.Request.Context()), old, in); err != nil {
					WriteError(c, err)
					return
				}
			}
			if err := save(c, in); err != nil {
				WriteError(c, Internal("update failed", err))
				return
			}
			c.JSON(http.StatusOK, resp.OK(in))
		}
	}
	cfg.Group.PUT(item, update(false))
	cfg.Group.PATCH(item, update(true))

	// Delete
	cfg.Group.DELETE(item, func(c *gin.Context) {
		if _, ok := authorize(c); !ok {
			return
		}
		m, ok := load(c)
		if !ok {
			return
		}
		id := readUint(m, cfg.IDField)
		if err := cfg.DB.WithContext(c.Request.Context()).Delete(m).Error; err != nil {
			WriteError(c, Internal("delete failed", err))
			return
		}
		c.JSON(http.StatusOK, resp.OK(gin.H{"id": id}))
	})
}
