package paymentgw

import (
	"errors"
	"net/http"

	"github.com/sanosuguru/go-show-booking/internal/config"
	"github.com/sanosuguru/go-show-booking/internal/domain/payment"
	"github.com/sanosuguru/go-show-booking/internal/pkg/metrics"
)

// ErrSecretRequired は署名検証用のシークレットが未設定であることを表す
var ErrSecretRequired = errors.New("PAYMENT_KEY_SECRET が設定されていません")

// NewGateway は設定に応じた決済ゲートウェイを返す
// シークレットがなければ決済成功通知を検証できないため起動させない
// KEY_ID のみ未設定の場合は開発用の LocalGateway を使う
func NewGateway(cfg *config.PaymentConfig, m *metrics.Metrics) (payment.Gateway, bool, error) {
	if cfg.KeySecret == "" {
		return nil, false, ErrSecretRequired
	}
	if cfg.KeyID == "" {
		return NewLocalGateway(), true, nil
	}
	return NewClient(cfg, &http.Client{Timeout: cfg.Timeout}, m), false, nil
}
