package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/stay"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/transaction"
)

type bookingRow struct {
	ID         string    `db:"id"`
	RoomID     string    `db:"room_id"`
	GuestID    string    `db:"guest_id"`
	CheckIn    time.Time `db:"check_in"`
	CheckOut   time.Time `db:"check_out"`
	UnitCount  int       `db:"unit_count"`
	AdultCount int       `db:"adult_count"`
	TotalPrice int64     `db:"total_price"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r *bookingRow) toEntity() *booking.Booking {
	return &booking.Booking{
		ID: r.ID, RoomID: r.RoomID, GuestID: r.GuestID,
		Range: stay.DateRange{
			CheckIn:  stay.TruncateToDate(r.CheckIn),
			CheckOut: stay.TruncateToDate(r.CheckOut),
		},
		UnitCount: r.UnitCount, AdultCount: r.AdultCount,
		TotalPrice: r.TotalPrice, Status: booking.Status(r.Status),
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const bookingColumns = `id, room_id, guest_id, check_in, check_out, unit_count, adult_count, total_price, status, created_at, updated_at`

type BookingRepository struct{ db *sqlx.DB }

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("予約作成にはトランザクションが必要です")
	}
	query := `INSERT INTO bookings (room_id, guest_id, check_in, check_out, unit_count, adult_count, total_price, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query,
		b.RoomID, b.GuestID, b.Range.CheckIn, b.Range.CheckOut,
		b.UnitCount, b.AdultCount, b.TotalPrice, string(b.Status),
		b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID); err != nil {
		return fmt.Errorf("予約作成に失敗: %w", wrapTxError(err))
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	var row bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*booking.Booking, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, fmt.Errorf("行ロック付き予約取得にはトランザクションが必要です")
	}
	var row bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	if err := sqlxTx.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", wrapTxError(err))
	}
	return row.toEntity(), nil
}

func (r *BookingRepository) ListActiveByRoom(ctx context.Context, roomID string) ([]*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE room_id = $1 AND status IN ('pending', 'confirmed')`
	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, query, roomID); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	return toEntities(rows), nil
}

func (r *BookingRepository) ListActiveByRoomTx(ctx context.Context, tx transaction.Tx, roomID string) ([]*booking.Booking, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, fmt.Errorf("トランザクション内での予約一覧取得にはトランザクションが必要です")
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE room_id = $1 AND status IN ('pending', 'confirmed')`
	var rows []bookingRow
	if err := sqlxTx.SelectContext(ctx, &rows, query, roomID); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", wrapTxError(err))
	}
	return toEntities(rows), nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string, limit, offset int) ([]*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE guest_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, query, guestID, limit, offset); err != nil {
		return nil, fmt.Errorf("宿泊客の予約一覧取得に失敗: %w", err)
	}
	return toEntities(rows), nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("予約更新にはトランザクションが必要です")
	}
	query := `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := sqlxTx.ExecContext(ctx, query, string(b.Status), b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("予約更新に失敗: %w", wrapTxError(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) ListPendingCheckInBefore(ctx context.Context, before time.Time) ([]*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = 'pending' AND check_in < $1`
	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, query, before); err != nil {
		return nil, fmt.Errorf("滞留pending予約の取得に失敗: %w", err)
	}
	return toEntities(rows), nil
}

func toEntities(rows []bookingRow) []*booking.Booking {
	result := make([]*booking.Booking, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}

var _ booking.Repository = (*BookingRepository)(nil)
