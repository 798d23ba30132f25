package booking

import (
	"context"
	"time"

	"github.com/sanosuguru/go-show-booking/internal/domain/transaction"
)

// Repository は予約台帳のインターフェース
type Repository interface {
	// Create は予約と予約座席を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, booking *Booking) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Booking, error)

	// GetByIDForUpdate は予約行をロックして取得する（トランザクション必須）
	GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*Booking, error)

	// GetByUserID はユーザーIDから予約一覧を取得する
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*Booking, error)

	// SetPaymentOrderRef は決済オーダー参照を保存する
	SetPaymentOrderRef(ctx context.Context, id, orderRef string) error

	// MarkConfirmed は PENDING かつ期限内の予約のみを CONFIRMED に更新する
	// 更新されなかった場合は false を返す
	MarkConfirmed(ctx context.Context, tx transaction.Tx, booking *Booking) (bool, error)

	// TransitionFromPending は PENDING の予約のみを指定状態に更新する
	TransitionFromPending(ctx context.Context, tx transaction.Tx, id string, to Status, now time.Time) (bool, error)

	// ListExpiredPending は期限切れの保留中予約を取得する
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*Booking, error)
}
