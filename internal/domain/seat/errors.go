package seat

import "errors"

// Seat ドメインのエラー定義
var (
	ErrSeatNotFound       = errors.New("座席が見つかりません")
	ErrSeatUnavailable    = errors.New("座席は既に予約されています")
	ErrShowIDRequired     = errors.New("公演IDは必須です")
	ErrSeatNumberRequired = errors.New("座席番号は必須です")
)
