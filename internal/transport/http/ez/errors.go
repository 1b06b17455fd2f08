package ez

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"adultcare-api/internal/core/auth"
	resp "adultcare-api/internal/transport/http/response"
)

// AErr 统一错误对象：Code 即 HTTP 状态；Data 为附带数据（字段错误等）
type AErr struct {
	Code int
	Msg  string
	Err  error
	Data any
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: http.StatusBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: http.StatusUnauthorized, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: http.StatusNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}

// Invalid 字段级校验失败
func Invalid(fields map[string][]string) error {
	return &AErr{Code: http.StatusBadRequest, Msg: "validation failed", Data: fields}
}

// Field 单字段校验失败
func Field(name, msg string) error { return Invalid(map[string][]string{name: {msg}}) }

// Upstream 第三方返回失败，原样带回上游数据
func Upstream(msg string, data any) error {
	return &AErr{Code: http.StatusBadRequest, Msg: msg, Data: data}
}

type bindError struct{ err error }

func (b bindError) Error() string { return b.err.Error() }

// WriteError 错误 → 信封响应；500 不向外暴露细节，记到 c.Errors
func WriteError(c *gin.Context, err error) {
	var ae *AErr
	var be bindError
	switch {
	case errors.As(err, &be):
		c.JSON(http.StatusBadRequest, resp.Fail(resp.CodeBadRequest, "validation failed", FieldErrors(be.err)))
	case errors.Is(err, auth.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "Authentication credentials were not provided."))
	case errors.Is(err, auth.ErrForbidden):
		c.JSON(http.StatusForbidden, resp.Error(resp.CodeForbidden, "You do not have permission to perform this action."))
	case errors.As(err, &ae):
		if ae.Code >= http.StatusInternalServerError {
			_ = c.Error(err)
			c.JSON(ae.Code, resp.Error(ae.Code, ae.Msg))
			return
		}
		c.JSON(ae.Code, resp.Fail(ae.Code, ae.Msg, ae.Data))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "internal error"))
	}
}
