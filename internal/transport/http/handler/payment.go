package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"adultcare-api/internal/core/auth"
	"adultcare-api/internal/payment"
	httpez "adultcare-api/internal/transport/http/ez"
)

// OrderCreator *payment.Client 实现；测试里可换成假网关
type OrderCreator interface {
	NewOrder() payment.Order
	CreateOrder(ctx context.Context, o payment.Order) (string, error)
}

type PaymentHandler struct {
	gw OrderCreator
}

func NewPaymentHandler(gw OrderCreator) *PaymentHandler { return &PaymentHandler{gw: gw} }

func (h *PaymentHandler) Priority() int { return 30 }

type sessionOut struct {
	PaymentSessionID string `json:"payment_session_id"`
}

func (h *PaymentHandler) MountAPI(api *gin.RouterGroup) {
	ez := httpez.New(api)
	a := httpez.Action[struct{}, sessionOut]{
		Method:  http.MethodGet,
		Binder:  httpez.BindNone,
		Policy:  auth.AllowAny,
		Handler: h.createOrder,
	}
	for _, p := range []string{"/create-cashfree-order/", "/users/create-cashfree-order/"} {
		a.Path = p
		httpez.RegisterAction(ez, nil, a)
	}
}

func (h *PaymentHandler) createOrder(c *gin.Context, _ *gorm.DB, _ *struct{}) (sessionOut, error) {
	sid, err := h.gw.CreateOrder(c.Request.Context(), h.gw.NewOrder())
	if err != nil {
		var ge *payment.GatewayError
		if errors.As(err, &ge) {
			return sessionOut{}, httpez.Upstream("Payment session not created", gin.H{
				"error":   "Payment session not created",
				"details": ge.Details,
			})
		}
		return sessionOut{}, httpez.Internal("create order failed", err)
	}
	return sessionOut{PaymentSessionID: sid}, nil
}
