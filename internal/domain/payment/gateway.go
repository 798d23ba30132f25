package payment

import (
	"context"
	"errors"
)

var ErrGatewayUnavailable = errors.New("決済ゲートウェイに接続できません")

// Order は決済ゲートウェイで作成されたオーダー
type Order struct {
	ID          string
	AmountMinor int64
	Currency    string
	Receipt     string
	Status      string
}

// Gateway は決済ゲートウェイのインターフェース
type Gateway interface {
	// CreateOrder は決済オーダーを作成する。receipt には予約IDを渡す
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*Order, error)
}
