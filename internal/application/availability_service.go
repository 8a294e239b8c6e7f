package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/room"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/stay"
	rediscache "github.com/sanosuguru/go-hotel-room-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/pkg/logger"
)

// スナップショットのキャッシュTTL。客室メタデータの変更頻度は低い
const snapshotCacheTTL = 5 * time.Minute

// Availability は指定期間の空室状況
type Availability struct {
	RoomID     string
	Range      stay.DateRange
	TotalUnits int
	Demand     int // 期間と衝突するpending/confirmedの占有部屋数
	Available  int
}

// AvailabilityService は空室照会の読み取り専用サービス
// 予約確定と同じ衝突判定・需要集計を使うため、表示と判定がずれることはない
type AvailabilityService struct {
	bookingRepo   booking.Repository
	roomRepo      room.SnapshotProvider
	snapshotCache rediscache.SnapshotCacheInterface
}

func NewAvailabilityService(br booking.Repository, rr room.SnapshotProvider, sc rediscache.SnapshotCacheInterface) *AvailabilityService {
	return &AvailabilityService{bookingRepo: br, roomRepo: rr, snapshotCache: sc}
}

// CheckAvailability は指定期間の残室数を返す
// 読み取り専用のため作業単位は不要。確定時にはReserveが改めて
// トランザクション内で再判定する
func (s *AvailabilityService) CheckAvailability(ctx context.Context, roomID string, checkIn, checkOut time.Time) (*Availability, error) {
	rng, err := stay.NewDateRange(checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshot(ctx, roomID)
	if err != nil {
		return nil, err
	}

	existing, err := s.bookingRepo.ListActiveByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	demand := booking.AggregateDemand(rng, existing, "")
	available := snap.TotalUnits - demand
	if available < 0 {
		available = 0
	}

	return &Availability{
		RoomID:     roomID,
		Range:      rng,
		TotalUnits: snap.TotalUnits,
		Demand:     demand,
		Available:  available,
	}, nil
}

// snapshot はキャッシュ経由で客室スナップショットを取得する
// キャッシュ障害は照会を止めず、ストアへフォールバックする
func (s *AvailabilityService) snapshot(ctx context.Context, roomID string) (*room.Snapshot, error) {
	if s.snapshotCache != nil {
		snap, err := s.snapshotCache.Get(ctx, roomID)
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, rediscache.ErrCacheMiss) {
			logger.Warn("スナップショットキャッシュ取得に失敗", zap.String("room_id", roomID), zap.Error(err))
		}
	}

	snap, err := s.roomRepo.GetSnapshot(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if s.snapshotCache != nil {
		if err := s.snapshotCache.Set(ctx, snap, snapshotCacheTTL); err != nil {
			logger.Warn("スナップショットキャッシュ保存に失敗", zap.String("room_id", roomID), zap.Error(err))
		}
	}
	return snap, nil
}
