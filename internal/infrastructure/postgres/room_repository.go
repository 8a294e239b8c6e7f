package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/room"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/transaction"
)

type roomRow struct {
	ID              string `db:"id"`
	TotalUnits      int    `db:"total_units"`
	PricePerNight   int64  `db:"price_per_night"`
	ExtraAdultPrice int64  `db:"extra_adult_price"`
}

func (r *roomRow) toSnapshot() *room.Snapshot {
	return &room.Snapshot{
		RoomID:          r.ID,
		TotalUnits:      r.TotalUnits,
		PricePerNight:   r.PricePerNight,
		ExtraAdultPrice: r.ExtraAdultPrice,
	}
}

// RoomRepository はストアフロントの客室CRUD層が所有するテーブルへの
// 読み取り専用アダプター。予約エンジンは客室メタデータを変更しない
type RoomRepository struct{ db *sqlx.DB }

func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) GetSnapshot(ctx context.Context, roomID string) (*room.Snapshot, error) {
	var row roomRow
	query := `SELECT id, total_units, price_per_night, extra_adult_price FROM rooms WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, roomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, room.ErrRoomNotFound
		}
		return nil, fmt.Errorf("客室スナップショット取得に失敗: %w", err)
	}
	return row.toSnapshot(), nil
}

// GetSnapshotForUpdate は客室行をFOR UPDATEでロックして取得する
// 同一客室の予約処理はこの行ロックで直列化される。分散ロックが
// 無効な構成でも、空室判定と挿入の競合はここで防がれる
func (r *RoomRepository) GetSnapshotForUpdate(ctx context.Context, tx transaction.Tx, roomID string) (*room.Snapshot, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, fmt.Errorf("客室行ロックにはトランザクションが必要です")
	}
	var row roomRow
	query := `SELECT id, total_units, price_per_night, extra_adult_price FROM rooms WHERE id = $1 FOR UPDATE`
	if err := sqlxTx.GetContext(ctx, &row, query, roomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, room.ErrRoomNotFound
		}
		return nil, fmt.Errorf("客室スナップショット取得に失敗: %w", wrapTxError(err))
	}
	return row.toSnapshot(), nil
}

// IsRoomOwner はユーザーが客室の属するホテルのオーナーかを返す
// 所有データはホテルコラボレーターのテーブルを参照する
func (r *RoomRepository) IsRoomOwner(ctx context.Context, userID, roomID string) (bool, error) {
	var owns bool
	query := `SELECT EXISTS (
		SELECT 1 FROM rooms r
		JOIN hotels h ON h.id = r.hotel_id
		WHERE r.id = $1 AND h.owner_id = $2
	)`
	if err := r.db.GetContext(ctx, &owns, query, roomID, userID); err != nil {
		return false, fmt.Errorf("所有関係の解決に失敗: %w", err)
	}
	return owns, nil
}

var (
	_ room.SnapshotProvider  = (*RoomRepository)(nil)
	_ room.OwnershipResolver = (*RoomRepository)(nil)
)
