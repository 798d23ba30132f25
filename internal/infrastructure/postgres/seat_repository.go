package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-show-booking/internal/domain/seat"
	"github.com/sanosuguru/go-show-booking/internal/domain/transaction"
)

const seatColumns = `id, show_id, seat_number, is_booked, created_at, updated_at`

type seatRow struct {
	ID         string    `db:"id"`
	ShowID     string    `db:"show_id"`
	SeatNumber string    `db:"seat_number"`
	IsBooked   bool      `db:"is_booked"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r *seatRow) toEntity() *seat.Seat {
	return &seat.Seat{
		ID: r.ID, ShowID: r.ShowID, SeatNumber: r.SeatNumber, IsBooked: r.IsBooked,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func toSeats(rows []seatRow) []*seat.Seat {
	seats := make([]*seat.Seat, len(rows))
	for i := range rows {
		seats[i] = rows[i].toEntity()
	}
	return seats
}

type SeatRepository struct{ db *sqlx.DB }

func NewSeatRepository(db *sqlx.DB) *SeatRepository { return &SeatRepository{db: db} }

// CreateBulk はバッチごとのマルチバリューINSERTで座席を作成する
// ID 未設定の座席には UUID を採番する
func (r *SeatRepository) CreateBulk(ctx context.Context, tx transaction.Tx, seats []*seat.Seat) error {
	sqlTx := UnwrapTx(tx)
	if sqlTx == nil {
		return errTxRequired
	}

	const batchSize = 1000
	for i := 0; i < len(seats); i += batchSize {
		end := i + batchSize
		if end > len(seats) {
			end = len(seats)
		}
		if err := r.createBatch(ctx, sqlTx, seats[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *SeatRepository) createBatch(ctx context.Context, tx *sqlx.Tx, seats []*seat.Seat) error {
	if len(seats) == 0 {
		return nil
	}

	const cols = 6
	args := make([]interface{}, 0, len(seats)*cols)
	placeholders := make([]string, 0, len(seats))
	for i, s := range seats {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		base := i * cols
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6))
		args = append(args, s.ID, s.ShowID, s.SeatNumber, s.IsBooked, s.CreatedAt, s.UpdatedAt)
	}

	query := `INSERT INTO seats (` + seatColumns + `) VALUES ` + strings.Join(placeholders, ", ")
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return wrapError("座席一括作成に失敗", err)
	}
	return nil
}

func (r *SeatRepository) GetByShowID(ctx context.Context, showID string) ([]*seat.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE show_id = $1 ORDER BY seat_number`
	var rows []seatRow
	if err := r.db.SelectContext(ctx, &rows, query, showID); err != nil {
		if isInvalidID(err) {
			return []*seat.Seat{}, nil
		}
		return nil, wrapError("座席一覧取得に失敗", err)
	}
	return toSeats(rows), nil
}

func (r *SeatRepository) GetByBookingID(ctx context.Context, bookingID string) ([]*seat.Seat, error) {
	query := `SELECT s.id, s.show_id, s.seat_number, s.is_booked, s.created_at, s.updated_at
		FROM seats s JOIN booking_seats bs ON bs.seat_id = s.id
		WHERE bs.booking_id = $1 ORDER BY s.seat_number`
	var rows []seatRow
	if err := r.db.SelectContext(ctx, &rows, query, bookingID); err != nil {
		if isInvalidID(err) {
			return []*seat.Seat{}, nil
		}
		return nil, wrapError("予約座席取得に失敗", err)
	}
	return toSeats(rows), nil
}

// LockForUpdate は指定座席をID順に行ロックする
// 公演に属さない座席が含まれる場合は seat.ErrSeatNotFound
func (r *SeatRepository) LockForUpdate(ctx context.Context, tx transaction.Tx, showID string, seatIDs []string) ([]*seat.Seat, error) {
	sqlTx := UnwrapTx(tx)
	if sqlTx == nil {
		return nil, errTxRequired
	}

	query := `SELECT ` + seatColumns + ` FROM seats WHERE id = ANY($1) AND show_id = $2 ORDER BY id FOR UPDATE`
	var rows []seatRow
	if err := sqlTx.SelectContext(ctx, &rows, query, pq.Array(seatIDs), showID); err != nil {
		if isInvalidID(err) {
			return nil, seat.ErrSeatNotFound
		}
		return nil, wrapError("座席ロックに失敗", err)
	}

	if len(rows) != len(seatIDs) {
		found := make(map[string]struct{}, len(rows))
		for _, row := range rows {
			found[row.ID] = struct{}{}
		}
		for _, id := range seatIDs {
			if _, ok := found[id]; !ok {
				return nil, fmt.Errorf("%w: %s", seat.ErrSeatNotFound, id)
			}
		}
		return nil, seat.ErrSeatNotFound
	}
	return toSeats(rows), nil
}

func (r *SeatRepository) MarkBooked(ctx context.Context, tx transaction.Tx, seatIDs []string) error {
	sqlTx := UnwrapTx(tx)
	if sqlTx == nil {
		return errTxRequired
	}
	if len(seatIDs) == 0 {
		return nil
	}

	query := `UPDATE seats SET is_booked = TRUE, updated_at = NOW() WHERE id = ANY($1) AND is_booked = FALSE`
	result, err := sqlTx.ExecContext(ctx, query, pq.Array(seatIDs))
	if err != nil {
		return wrapError("座席確保に失敗", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return wrapError("座席確保結果の取得に失敗", err)
	}
	if int(rows) != len(seatIDs) {
		return seat.ErrSeatUnavailable
	}
	return nil
}

func (r *SeatRepository) Release(ctx context.Context, tx transaction.Tx, seatIDs []string) (int, error) {
	sqlTx := UnwrapTx(tx)
	if sqlTx == nil {
		return 0, errTxRequired
	}
	if len(seatIDs) == 0 {
		return 0, nil
	}

	query := `UPDATE seats SET is_booked = FALSE, updated_at = NOW() WHERE id = ANY($1) AND is_booked = TRUE`
	result, err := sqlTx.ExecContext(ctx, query, pq.Array(seatIDs))
	if err != nil {
		return 0, wrapError("座席解放に失敗", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, wrapError("座席解放結果の取得に失敗", err)
	}
	return int(rows), nil
}

var _ seat.Repository = (*SeatRepository)(nil)
