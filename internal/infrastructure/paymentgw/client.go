package paymentgw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-show-booking/internal/config"
	"github.com/sanosuguru/go-show-booking/internal/domain/payment"
	"github.com/sanosuguru/go-show-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-show-booking/internal/pkg/metrics"
)

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Client は Razorpay 互換の Orders API クライアント
type Client struct {
	baseURL string
	keyID   string
	secret  string
	hc      *http.Client
	metrics *metrics.Metrics
}

func NewClient(cfg *config.PaymentConfig, hc *http.Client, m *metrics.Metrics) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		keyID:   cfg.KeyID,
		secret:  cfg.KeySecret,
		hc:      hc,
		metrics: m,
	}
}

// CreateOrder は POST /v1/orders で決済オーダーを作成する
// 通信失敗や 2xx 以外の応答は payment.ErrGatewayUnavailable でラップして返す
func (c *Client) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (order *payment.Order, err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveGateway("create_order", err == nil, time.Since(start))
	}()

	reqBody, err := json.Marshal(createOrderRequest{Amount: amountMinor, Currency: currency, Receipt: receipt})
	if err != nil {
		return nil, fmt.Errorf("オーダーリクエストの生成に失敗: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("オーダーリクエストの生成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.keyID, c.secret)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", payment.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: レスポンス読み込みに失敗: %w", payment.ErrGatewayUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var er errorResponse
		_ = json.Unmarshal(body, &er)
		logger.FromContext(ctx).Warn("決済オーダー作成が拒否されました",
			zap.String("receipt", receipt),
			zap.Int("status", resp.StatusCode),
			zap.String("code", er.Error.Code),
			zap.String("description", er.Error.Description),
		)
		return nil, fmt.Errorf("%w: status=%d code=%s", payment.ErrGatewayUnavailable, resp.StatusCode, er.Error.Code)
	}

	var or orderResponse
	if err := json.Unmarshal(body, &or); err != nil {
		return nil, fmt.Errorf("%w: レスポンス解析に失敗: %w", payment.ErrGatewayUnavailable, err)
	}
	if or.ID == "" {
		return nil, fmt.Errorf("%w: オーダーIDが空です", payment.ErrGatewayUnavailable)
	}

	return &payment.Order{
		ID:          or.ID,
		AmountMinor: or.Amount,
		Currency:    or.Currency,
		Receipt:     or.Receipt,
		Status:      or.Status,
	}, nil
}

var _ payment.Gateway = (*Client)(nil)
