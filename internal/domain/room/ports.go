package room

import (
	"context"

	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/transaction"
)

// SnapshotProvider は客室スナップショットを供給するインターフェース
// 実体はストアフロントの客室CRUD層が所有するテーブルへの読み取り
type SnapshotProvider interface {
	// GetSnapshot は客室IDからスナップショットを取得する
	GetSnapshot(ctx context.Context, roomID string) (*Snapshot, error)

	// GetSnapshotForUpdate はトランザクション内で客室行をロックして
	// スナップショットを取得する。同一客室に対する予約処理を直列化するため、
	// 空室判定と予約挿入は必ずこのロックの下で行う
	GetSnapshotForUpdate(ctx context.Context, tx transaction.Tx, roomID string) (*Snapshot, error)
}

// OwnershipResolver は呼び出し元と客室のホテルの所有関係を解決するインターフェース
// 所有データはホテルコラボレーターが管理する
type OwnershipResolver interface {
	// IsRoomOwner はユーザーが客室の属するホテルのオーナーかを返す
	IsRoomOwner(ctx context.Context, userID, roomID string) (bool, error)
}
