package show

import (
	"context"

	"github.com/sanosuguru/go-show-booking/internal/domain/transaction"
)

// Repository は公演リポジトリのインターフェース
type Repository interface {
	// Create は新しい公演を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, show *Show) error

	// GetByID はIDから公演を取得する
	GetByID(ctx context.Context, id string) (*Show, error)

	// AdjustAvailable は空席数を delta だけ増減する（トランザクション必須）
	// 結果が 0 未満または総席数を超える場合は ErrAvailabilityMismatch を返す
	AdjustAvailable(ctx context.Context, tx transaction.Tx, showID string, delta int) error
}
