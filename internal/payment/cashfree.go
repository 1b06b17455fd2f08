package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ordersTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "payment_orders_total", Help: "Cashfree order attempts by result"},
	[]string{"result"},
)

func init() { prometheus.MustRegister(ordersTotal) }

// ErrNoSession 网关返回成功但没有 payment_session_id
var ErrNoSession = errors.New("payment session not created")

// GatewayError Details 为网关原始响应（JSON 解析失败时为字符串）或传输错误描述
type GatewayError struct {
	Details any
	Err     error
}

func (e *GatewayError) Error() string { return "cashfree: " + e.Err.Error() }
func (e *GatewayError) Unwrap() error { return e.Err }

type Customer struct {
	ID    string `json:"customerId"`
	Email string `json:"customerEmail"`
	Phone string `json:"customerPhone"`
}

type Order struct {
	OrderID  string          `json:"orderId"`
	Amount   decimal.Decimal `json:"orderAmount"`
	Currency string          `json:"orderCurrency"`
	Customer Customer        `json:"customerDetails"`
}

// MarshalJSON orderAmount 输出为数字，固定两位小数
func (o Order) MarshalJSON() ([]byte, error) {
	type alias Order
	return json.Marshal(struct {
		alias
		Amount json.Number `json:"orderAmount"`
	}{alias: alias(o), Amount: json.Number(o.Amount.StringFixed(2))})
}

type Options struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	APIVersion   string
	Timeout      time.Duration

	// 下单默认值
	Amount   decimal.Decimal
	Currency string
	Customer Customer
}

// Client Cashfree PG 下单，只发一次，不重试
type Client struct {
	opts Options
	hc   *http.Client
	log  *zap.Logger
}

func NewClient(o Options, l *zap.Logger) *Client {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if l == nil {
		l = zap.NewNop()
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	return &Client{opts: o, hc: &http.Client{Timeout: o.Timeout}, log: l}
}

// NewOrder 用配置里的金额和客户信息生成一笔订单
func (c *Client) NewOrder() Order {
	return Order{
		OrderID:  "order_" + uuid.NewString(),
		Amount:   c.opts.Amount,
		Currency: c.opts.Currency,
		Customer: c.opts.Customer,
	}
}

// CreateOrder 返回 payment_session_id；失败返回 *GatewayError
func (c *Client) CreateOrder(ctx context.Context, o Order) (string, error) {
	sid, err := c.createOrder(ctx, o)
	if err != nil {
		ordersTotal.WithLabelValues("failed").Inc()
		c.log.Warn("cashfree order failed", zap.String("order_id", o.OrderID), zap.Error(err))
		return "", err
	}
	ordersTotal.WithLabelValues("ok").Inc()
	return sid, nil
}

func (c *Client) createOrder(ctx context.Context, o Order) (string, error) {
	body, err := json.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("encode order: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/pg/orders", bytes.NewReader(body))
	if err != nil {
		return "", &GatewayError{Details: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-version", c.opts.APIVersion)
	req.Header.Set("x-client-id", c.opts.ClientID)
	req.Header.Set("x-client-secret", c.opts.ClientSecret)

	res, err := c.hc.Do(req)
	if err != nil {
		return "", &GatewayError{Details: err.Error(), Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", &GatewayError{Details: err.Error(), Err: err}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", &GatewayError{Details: string(raw), Err: fmt.Errorf("http %d: %w", res.StatusCode, err)}
	}
	sid, _ := m["payment_session_id"].(string)
	if sid == "" {
		return "", &GatewayError{Details: m, Err: ErrNoSession}
	}
	return sid, nil
}
