package auth

import (
	"errors"
	"net/http"
)

const RoleAdmin = "admin"

var (
	ErrUnauthenticated = errors.New("authentication credentials were not provided")
	ErrForbidden       = errors.New("you do not have permission to perform this action")
)

// Principal 当前请求的调用方，未登录时为 nil
type Principal struct {
	UID  uint
	Role string
}

func (p *Principal) IsAdmin() bool { return p != nil && p.Role == RoleAdmin }

// Policy 每个接口一个授权策略：返回 nil 放行，
// ErrUnauthenticated → 401，ErrForbidden → 403
type Policy interface {
	Authorize(method string, p *Principal) error
}

type PolicyFunc func(method string, p *Principal) error

func (f PolicyFunc) Authorize(method string, p *Principal) error { return f(method, p) }

func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

var (
	AllowAny = PolicyFunc(func(string, *Principal) error { return nil })

	Authenticated = PolicyFunc(func(_ string, p *Principal) error {
		if p == nil {
			return ErrUnauthenticated
		}
		return nil
	})

	// AdminOrReadOnly 读方法所有人可用，写方法只允许 admin
	AdminOrReadOnly = PolicyFunc(func(method string, p *Principal) error {
		if IsSafeMethod(method) {
			return nil
		}
		if p == nil {
			return ErrUnauthenticated
		}
		if !p.IsAdmin() {
			return ErrForbidden
		}
		return nil
	})
)
