package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-show-booking/internal/domain/show"
	"github.com/sanosuguru/go-show-booking/internal/domain/transaction"
)

type showRow struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	StartsAt       time.Time `db:"starts_at"`
	TotalSeats     int       `db:"total_seats"`
	AvailableSeats int       `db:"available_seats"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (r *showRow) toEntity() *show.Show {
	return &show.Show{
		ID: r.ID, Name: r.Name, StartsAt: r.StartsAt,
		TotalSeats: r.TotalSeats, AvailableSeats: r.AvailableSeats,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type ShowRepository struct{ db *sqlx.DB }

func NewShowRepository(db *sqlx.DB) *ShowRepository { return &ShowRepository{db: db} }

func (r *ShowRepository) Create(ctx context.Context, tx transaction.Tx, s *show.Show) error {
	sqlTx := UnwrapTx(tx)
	if sqlTx == nil {
		return errTxRequired
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	query := `INSERT INTO shows (id, name, starts_at, total_seats, available_seats, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := sqlTx.ExecContext(ctx, query, s.ID, s.Name, s.StartsAt, s.TotalSeats, s.AvailableSeats, s.CreatedAt, s.UpdatedAt); err != nil {
		return wrapError("公演作成に失敗", err)
	}
	return nil
}

func (r *ShowRepository) GetByID(ctx context.Context, id string) (*show.Show, error) {
	query := `SELECT id, name, starts_at, total_seats, available_seats, created_at, updated_at FROM shows WHERE id = $1`
	var row showRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, show.ErrShowNotFound
		}
		return nil, wrapError("公演取得に失敗", err)
	}
	return row.toEntity(), nil
}

// AdjustAvailable は空席数を SQL 上で加減算する
// 範囲外になる更新は 0 件となり ErrAvailabilityMismatch を返す
func (r *ShowRepository) AdjustAvailable(ctx context.Context, tx transaction.Tx, showID string, delta int) error {
	sqlTx := UnwrapTx(tx)
	if sqlTx == nil {
		return errTxRequired
	}
	if delta == 0 {
		return nil
	}

	query := `UPDATE shows SET available_seats = available_seats + $2, updated_at = NOW()
		WHERE id = $1 AND available_seats + $2 >= 0 AND available_seats + $2 <= total_seats`
	result, err := sqlTx.ExecContext(ctx, query, showID, delta)
	if err != nil {
		if isInvalidID(err) {
			return show.ErrShowNotFound
		}
		return wrapError("空席数の更新に失敗", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return wrapError("空席数更新結果の取得に失敗", err)
	}
	if rows == 1 {
		return nil
	}

	var exists bool
	if err := sqlTx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM shows WHERE id = $1)`, showID); err != nil {
		return wrapError("公演存在確認に失敗", err)
	}
	if !exists {
		return show.ErrShowNotFound
	}
	return show.ErrAvailabilityMismatch
}

var _ show.Repository = (*ShowRepository)(nil)
