package postgres

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/sanosuguru/go-show-booking/internal/domain/transaction"
)

// 再試行で解消しうる SQLSTATE
var transientCodes = map[pq.ErrorCode]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available
	"57014": {}, // query_canceled (statement_timeout)
}

var errTxRequired = errors.New("トランザクションが指定されていません")

// wrapError はドライバーエラーに文脈を付与し、一時的なエラーは transaction.ErrTransient として扱えるようにする
func wrapError(msg string, err error) error {
	if isTransient(err) {
		return fmt.Errorf("%s: %w: %w", msg, transaction.ErrTransient, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func isTransient(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	_, ok := transientCodes[pqErr.Code]
	return ok
}

// isInvalidID は UUID として解釈できない ID が渡された場合に true を返す
func isInvalidID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22P02"
}
