package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"adultcare-api/internal/core/auth"
	resp "adultcare-api/internal/transport/http/response"
)

const (
	KeyClaims    = "claims"
	KeyUserID    = "userId"
	KeyRole      = "role"
	KeyPrincipal = "principal"
)

var errMissingToken = errors.New("missing token")

func bearer(c *gin.Context) (string, error) {
	ah := c.GetHeader("Authorization")
	if ah == "" {
		return "", errMissingToken
	}
	if !strings.HasPrefix(ah, "Bearer ") {
		return "", errors.New("invalid authorization header")
	}
	return strings.TrimSpace(strings.TrimPrefix(ah, "Bearer ")), nil
}

func setIdentity(c *gin.Context, claims *auth.Claims) {
	c.Set(KeyClaims, claims)
	c.Set(KeyUserID, claims.UID)
	c.Set(KeyRole, claims.Role)
	c.Set(KeyPrincipal, &auth.Principal{UID: claims.UID, Role: claims.Role})
}

// AuthJWT 强制登录；requireRole 非空时同时校验角色
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := bearer(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, err.Error()))
			return
		}
		claims, err := j.ParseAs(tok, auth.AccessToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			c.AbortWithStatusJSON(http.StatusForbidden, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// Identify 可选登录：无 Authorization 头按匿名放行，
// 带了但无效直接 401；是否必须登录由各接口的 Policy 决定
func Identify(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := bearer(c)
		if errors.Is(err, errMissingToken) {
			c.Next()
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, err.Error()))
			return
		}
		claims, err := j.ParseAs(tok, auth.AccessToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// PrincipalFrom 取当前调用方，匿名返回 nil
func PrincipalFrom(c *gin.Context) *auth.Principal {
	v, ok := c.Get(KeyPrincipal)
	if !ok {
		return nil
	}
	p, _ := v.(*auth.Principal)
	return p
}
