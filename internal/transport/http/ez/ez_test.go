package ez

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"adultcare-api/internal/core/auth"
	mdw "adultcare-api/internal/transport/http/middleware"
)

func init() { gin.SetMode(gin.TestMode) }

type body struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func serve(t *testing.T, r http.Handler, method, path, payload string) (int, body) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var b body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b), w.Body.String())
	return w.Code, b
}

type echoIn struct {
	Name  string `json:"name"  binding:"required,max=5"`
	Count *int   `json:"count" binding:"omitempty,min=1"`
}

func newEngine(p *auth.Principal) (*gin.Engine, EZ) {
	r := gin.New()
	if p != nil {
		r.Use(func(c *gin.Context) { c.Set(mdw.KeyPrincipal, p) })
	}
	return r, New(r.Group(""))
}

func TestRegisterAction_StatusAndBinding(t *testing.T) {
	r, e := newEngine(nil)
	RegisterAction(e, nil, Action[echoIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/echo",
		Binder: BindJSON,
		Status: http.StatusCreated,
		Handler: func(_ *gin.Context, db *gorm.DB, in *echoIn) (gin.H, error) {
			assert.Nil(t, db)
			return gin.H{"name": in.Name}, nil
		},
	})

	code, b := serve(t, r, http.MethodPost, "/echo", `{"name":"bob"}`)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, 0, b.Code)
	assert.JSONEq(t, `{"name":"bob"}`, string(b.Data))

	code, b = serve(t, r, http.MethodPost, "/echo", `{"name":"toolong","count":0}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.JSONEq(t, `{
		"name":["Ensure this field has no more than 5 characters."],
		"count":["Ensure this value is greater than or equal to 1."]
	}`, string(b.Data))

	code, b = serve(t, r, http.MethodPost, "/echo", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.JSONEq(t, `{"name":["This field is required."]}`, string(b.Data))

	code, b = serve(t, r, http.MethodPost, "/echo", `{"name":1}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.JSONEq(t, `{"name":["Incorrect type."]}`, string(b.Data))

	code, b = serve(t, r, http.MethodPost, "/echo", `{"name":"bob","count":"two"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.JSONEq(t, `{"count":["A valid integer is required."]}`, string(b.Data))

	code, b = serve(t, r, http.MethodPost, "/echo", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(b.Data), NonFieldErrors)
}

func TestRegisterAction_Policy(t *testing.T) {
	handler := func(*gin.Context, *gorm.DB, *struct{}) (gin.H, error) { return gin.H{}, nil }
	a := Action[struct{}, gin.H]{Method: http.MethodDelete, Path: "/x", Binder: BindNone, Policy: auth.AdminOrReadOnly, Handler: handler}

	r, e := newEngine(nil)
	RegisterAction(e, nil, a)
	code, b := serve(t, r, http.MethodDelete, "/x", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, 401, b.Code)

	r, e = newEngine(&auth.Principal{UID: 2, Role: "family"})
	RegisterAction(e, nil, a)
	code, _ = serve(t, r, http.MethodDelete, "/x", "")
	assert.Equal(t, http.StatusForbidden, code)

	r, e = newEngine(&auth.Principal{UID: 1, Role: auth.RoleAdmin})
	RegisterAction(e, nil, a)
	code, _ = serve(t, r, http.MethodDelete, "/x", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestWriteError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"not found", NotFound("gone"), http.StatusNotFound, "gone"},
		{"field", Field("email", "taken"), http.StatusBadRequest, "validation failed"},
		{"upstream", Upstream("Payment session not created", gin.H{"details": "x"}), http.StatusBadRequest, "Payment session not created"},
		{"internal hides cause", Internal("db down", errors.New("dial tcp: refused")), http.StatusInternalServerError, "db down"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal error"},
		{"forbidden", auth.ErrForbidden, http.StatusForbidden, "You do not have permission to perform this action."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			WriteError(c, tc.err)

			assert.Equal(t, tc.code, w.Code)
			var b body
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
			assert.Equal(t, tc.code, b.Code)
			assert.Equal(t, tc.msg, b.Msg)
			assert.NotContains(t, w.Body.String(), "refused")
			if tc.code >= 500 {
				assert.Len(t, c.Errors, 1)
			}
		})
	}
}

func TestUintHelpers(t *testing.T) {
	type m struct {
		ID    uint
		Owner uint
		Name  string
	}
	v := &m{ID: 3}
	assert.True(t, writeUint(v, "Owner", 9))
	assert.Equal(t, uint(9), readUint(v, "Owner"))
	assert.Equal(t, uint(3), readUint(v, "ID"))
	assert.False(t, writeUint(v, "Name", 1))
	assert.False(t, writeUint(v, "Missing", 1))
	assert.False(t, writeUint(*v, "ID", 1))
}
