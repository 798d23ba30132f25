package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-show-booking/internal/domain/booking"
	"github.com/sanosuguru/go-show-booking/internal/domain/transaction"
)

const bookingSelect = `SELECT b.id, b.user_id, b.show_id, b.amount, b.currency, b.status, b.expires_at,
	b.payment_order_ref, b.payment_id, b.payment_signature, b.confirmed_at, b.created_at, b.updated_at,
	ARRAY(SELECT bs.seat_id::text FROM booking_seats bs WHERE bs.booking_id = b.id ORDER BY bs.seat_id) AS seat_ids
	FROM bookings b`

type bookingRow struct {
	ID               string         `db:"id"`
	UserID           string         `db:"user_id"`
	ShowID           string         `db:"show_id"`
	Amount           int64          `db:"amount"`
	Currency         string         `db:"currency"`
	Status           string         `db:"status"`
	ExpiresAt        time.Time      `db:"expires_at"`
	PaymentOrderRef  sql.NullString `db:"payment_order_ref"`
	PaymentID        sql.NullString `db:"payment_id"`
	PaymentSignature sql.NullString `db:"payment_signature"`
	ConfirmedAt      *time.Time     `db:"confirmed_at"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
	SeatIDs          pq.StringArray `db:"seat_ids"`
}

func (r *bookingRow) toEntity() *booking.Booking {
	seatIDs := []string(r.SeatIDs)
	if seatIDs == nil {
		seatIDs = []string{}
	}
	return &booking.Booking{
		ID: r.ID, UserID: r.UserID, ShowID: r.ShowID, SeatIDs: seatIDs,
		Amount: r.Amount, Currency: r.Currency, Status: booking.Status(r.Status),
		ExpiresAt:        r.ExpiresAt,
		PaymentOrderRef:  r.PaymentOrderRef.String,
		PaymentID:        r.PaymentID.String,
		PaymentSignature: r.PaymentSignature.String,
		ConfirmedAt:      r.ConfirmedAt,
		CreatedAt:        r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type BookingRepository struct{ db *sqlx.DB }

func NewBookingRepository(db *sqlx.DB) *BookingRepository { return &BookingRepository{db: db} }

// Create は予約行と booking_seats を同じトランザクションで作成する
func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlTx := UnwrapTx(tx)
	if sqlTx == nil {
		return errTxRequired
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	query := `INSERT INTO bookings (id, user_id, show_id, amount, currency, status, expires_at, payment_order_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := sqlTx.ExecContext(ctx, query,
		b.ID, b.UserID, b.ShowID, b.Amount, b.Currency, string(b.Status), b.ExpiresAt,
		nullString(b.PaymentOrderRef), b.CreatedAt, b.UpdatedAt,
	); err != nil {
		return wrapError("予約作成に失敗", err)
	}

	if len(b.SeatIDs) == 0 {
		return nil
	}
	seatQuery := `INSERT INTO booking_seats (booking_id, seat_id) SELECT $1, unnest($2::uuid[])`
	if _, err := sqlTx.ExecContext(ctx, seatQuery, b.ID, pq.Array(b.SeatIDs)); err != nil {
		return wrapError("予約座席関連付けに失敗", err)
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	var row bookingRow
	if err := r.db.GetContext(ctx, &row, bookingSelect+` WHERE b.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, wrapError("予約取得に失敗", err)
	}
	return row.toEntity(), nil
}

// GetByIDForUpdate は予約行を FOR UPDATE でロックして取得する
func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*booking.Booking, error) {
	sqlTx := UnwrapTx(tx)
	if sqlTx == nil {
		return nil, errTxRequired
	}
	var row bookingRow
	if err := sqlTx.GetContext(ctx, &row, bookingSelect+` WHERE b.id = $1 FOR UPDATE OF b`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, wrapError("予約ロックに失敗", err)
	}
	return row.toEntity(), nil
}

func (r *BookingRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := bookingSelect + ` WHERE b.user_id = $1 ORDER BY b.created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, wrapError("予約一覧取得に失敗", err)
	}
	return toBookings(rows), nil
}

func (r *BookingRepository) SetPaymentOrderRef(ctx context.Context, id, orderRef string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE bookings SET payment_order_ref = $2, updated_at = NOW() WHERE id = $1`, id, orderRef)
	if err != nil {
		return wrapError("決済オーダー参照の保存に失敗", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return wrapError("決済オーダー参照保存結果の取得に失敗", err)
	}
	if rows == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

// MarkConfirmed は PENDING かつ期限内で、オーダー参照が一致する場合のみ CONFIRMED にする
func (r *BookingRepository) MarkConfirmed(ctx context.Context, tx transaction.Tx, b *booking.Booking) (bool, error) {
	sqlTx := UnwrapTx(tx)
	if sqlTx == nil {
		return false, errTxRequired
	}
	if b.ConfirmedAt == nil {
		return false, booking.ErrInvalidTransition
	}

	query := `UPDATE bookings
		SET status = 'CONFIRMED', payment_id = $2, payment_signature = $3, confirmed_at = $4, updated_at = $4
		WHERE id = $1 AND status = 'PENDING' AND expires_at > $4 AND payment_order_ref = $5`
	result, err := sqlTx.ExecContext(ctx, query, b.ID, b.PaymentID, b.PaymentSignature, *b.ConfirmedAt, nullString(b.PaymentOrderRef))
	if err != nil {
		return false, wrapError("予約確定に失敗", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, wrapError("予約確定結果の取得に失敗", err)
	}
	return rows == 1, nil
}

func (r *BookingRepository) TransitionFromPending(ctx context.Context, tx transaction.Tx, id string, to booking.Status, now time.Time) (bool, error) {
	sqlTx := UnwrapTx(tx)
	if sqlTx == nil {
		return false, errTxRequired
	}
	if to != booking.StatusFailed && to != booking.StatusExpired {
		return false, booking.ErrInvalidTransition
	}

	result, err := sqlTx.ExecContext(ctx,
		`UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1 AND status = 'PENDING'`,
		id, string(to), now)
	if err != nil {
		return false, wrapError("予約状態の更新に失敗", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, wrapError("予約状態更新結果の取得に失敗", err)
	}
	return rows == 1, nil
}

func (r *BookingRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*booking.Booking, error) {
	var rows []bookingRow
	// expires_at ちょうどは期限切れとして扱う（MarkConfirmed の expires_at > now と対になる）
	query := bookingSelect + ` WHERE b.status = 'PENDING' AND b.expires_at <= $1 ORDER BY b.expires_at LIMIT $2`
	if err := r.db.SelectContext(ctx, &rows, query, now, limit); err != nil {
		return nil, wrapError("期限切れ予約の取得に失敗", err)
	}
	return toBookings(rows), nil
}

func toBookings(rows []bookingRow) []*booking.Booking {
	result := make([]*booking.Booking, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}

var _ booking.Repository = (*BookingRepository)(nil)
