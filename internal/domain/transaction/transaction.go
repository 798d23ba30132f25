package transaction

import (
	"context"
	"errors"
)

// ErrTransient はロック競合やタイムアウトなど、操作全体を再試行すれば成功しうるストアエラー
var ErrTransient = errors.New("一時的なストアエラーが発生しました")

// Tx はトランザクションを表すインターフェース
// ドメイン層がインフラ層（sqlx等）に依存しないようにするための抽象化
type Tx interface {
	// Commit はトランザクションをコミットする
	Commit() error
	// Rollback はトランザクションをロールバックする
	Rollback() error
}

// Manager はトランザクションを管理するインターフェース
type Manager interface {
	// Begin は新しいトランザクションを開始する
	Begin(ctx context.Context) (Tx, error)
}
