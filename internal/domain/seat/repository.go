package seat

import (
	"context"

	"github.com/sanosuguru/go-show-booking/internal/domain/transaction"
)

// Repository は座席在庫のインターフェース
type Repository interface {
	// CreateBulk は複数の座席を一括作成する（トランザクション必須）
	CreateBulk(ctx context.Context, tx transaction.Tx, seats []*Seat) error

	// GetByShowID は公演の座席一覧を取得する
	GetByShowID(ctx context.Context, showID string) ([]*Seat, error)

	// GetByBookingID は予約に紐づく座席一覧を取得する
	GetByBookingID(ctx context.Context, bookingID string) ([]*Seat, error)

	// LockForUpdate は公演の指定座席を行ロックして取得する（ID順、トランザクション必須）
	LockForUpdate(ctx context.Context, tx transaction.Tx, showID string, seatIDs []string) ([]*Seat, error)

	// MarkBooked は未予約の座席のみを予約済みにする
	// 1席でも更新できなければ ErrSeatUnavailable を返す
	MarkBooked(ctx context.Context, tx transaction.Tx, seatIDs []string) error

	// Release は予約済みの座席を解放し、解放した座席数を返す
	Release(ctx context.Context, tx transaction.Tx, seatIDs []string) (int, error)
}
