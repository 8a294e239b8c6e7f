package booking

import (
	"context"
	"time"

	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, b *Booking) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Booking, error)

	// GetByIDForUpdate は予約を行ロック付きで再取得する（トランザクション必須）
	// 状態遷移は読んだ行と書く行が同一であることをロックで保証する
	GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*Booking, error)

	// ListActiveByRoom は客室のpending/confirmed予約一覧を取得する
	ListActiveByRoom(ctx context.Context, roomID string) ([]*Booking, error)

	// ListActiveByRoomTx は同じ一覧をトランザクション内で取得する
	// 空室判定に使う読み取りは予約挿入と同じ作業単位に乗せる
	ListActiveByRoomTx(ctx context.Context, tx transaction.Tx, roomID string) ([]*Booking, error)

	// ListByGuest は宿泊客の予約一覧を取得する
	ListByGuest(ctx context.Context, guestID string, limit, offset int) ([]*Booking, error)

	// UpdateStatus は予約の状態と更新時刻を更新する（トランザクション必須）
	UpdateStatus(ctx context.Context, tx transaction.Tx, b *Booking) error

	// ListPendingCheckInBefore はチェックイン日が指定日より前の
	// pending予約を取得する（滞留ホールドの掃除用）
	ListPendingCheckInBefore(ctx context.Context, before time.Time) ([]*Booking, error)
}
