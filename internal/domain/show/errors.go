package show

import "errors"

// Show ドメインのエラー定義
var (
	ErrShowNotFound         = errors.New("公演が見つかりません")
	ErrShowNameRequired     = errors.New("公演名は必須です")
	ErrInvalidTotalSeats    = errors.New("座席数は1以上である必要があります")
	ErrAvailabilityMismatch = errors.New("空席数の更新が整合しません")
)
