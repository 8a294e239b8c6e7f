package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/room"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/stay"
	redisinfra "github.com/sanosuguru/go-hotel-room-reservation/internal/infrastructure/redis"
)

func TestAvailabilityService_CheckAvailability(t *testing.T) {
	checkIn, checkOut := futureRange(t, 10, 2)
	rng, err := stay.NewDateRange(checkIn, checkOut)
	require.NoError(t, err)

	t.Run("キャッシュヒット時はストアのスナップショット取得を省略", func(t *testing.T) {
		bookingRepo := new(MockBookingRepository)
		roomRepo := new(MockSnapshotProvider)
		cache := new(MockSnapshotCache)
		svc := NewAvailabilityService(bookingRepo, roomRepo, cache)
		ctx := context.Background()

		cache.On("Get", ctx, "room-1").Return(testSnapshot(), nil)
		occupying := booking.NewBooking("room-1", "guest-9", rng, 2, 2, 40000)
		bookingRepo.On("ListActiveByRoom", ctx, "room-1").
			Return([]*booking.Booking{occupying}, nil)

		avail, err := svc.CheckAvailability(ctx, "room-1", checkIn, checkOut)

		require.NoError(t, err)
		assert.Equal(t, 3, avail.TotalUnits)
		assert.Equal(t, 2, avail.Demand)
		assert.Equal(t, 1, avail.Available)
		roomRepo.AssertNotCalled(t, "GetSnapshot")
	})

	t.Run("キャッシュミス時はストアから取得してキャッシュに保存", func(t *testing.T) {
		bookingRepo := new(MockBookingRepository)
		roomRepo := new(MockSnapshotProvider)
		cache := new(MockSnapshotCache)
		svc := NewAvailabilityService(bookingRepo, roomRepo, cache)
		ctx := context.Background()

		snap := testSnapshot()
		cache.On("Get", ctx, "room-1").Return(nil, redisinfra.ErrCacheMiss)
		roomRepo.On("GetSnapshot", ctx, "room-1").Return(snap, nil)
		cache.On("Set", ctx, snap, 5*time.Minute).Return(nil)
		bookingRepo.On("ListActiveByRoom", ctx, "room-1").Return([]*booking.Booking{}, nil)

		avail, err := svc.CheckAvailability(ctx, "room-1", checkIn, checkOut)

		require.NoError(t, err)
		assert.Equal(t, 3, avail.Available)
		cache.AssertExpectations(t)
		roomRepo.AssertExpectations(t)
	})

	t.Run("キャッシュ障害でも照会は成功する", func(t *testing.T) {
		bookingRepo := new(MockBookingRepository)
		roomRepo := new(MockSnapshotProvider)
		cache := new(MockSnapshotCache)
		svc := NewAvailabilityService(bookingRepo, roomRepo, cache)
		ctx := context.Background()

		snap := testSnapshot()
		cache.On("Get", ctx, "room-1").Return(nil, errors.New("redis connection error"))
		roomRepo.On("GetSnapshot", ctx, "room-1").Return(snap, nil)
		cache.On("Set", ctx, snap, mock.AnythingOfType("time.Duration")).
			Return(errors.New("redis connection error"))
		bookingRepo.On("ListActiveByRoom", ctx, "room-1").Return([]*booking.Booking{}, nil)

		avail, err := svc.CheckAvailability(ctx, "room-1", checkIn, checkOut)

		require.NoError(t, err)
		assert.Equal(t, 3, avail.Available)
	})

	t.Run("キャッシュなし構成でも動作する", func(t *testing.T) {
		bookingRepo := new(MockBookingRepository)
		roomRepo := new(MockSnapshotProvider)
		svc := NewAvailabilityService(bookingRepo, roomRepo, nil)
		ctx := context.Background()

		roomRepo.On("GetSnapshot", ctx, "room-1").Return(testSnapshot(), nil)
		bookingRepo.On("ListActiveByRoom", ctx, "room-1").Return([]*booking.Booking{}, nil)

		avail, err := svc.CheckAvailability(ctx, "room-1", checkIn, checkOut)

		require.NoError(t, err)
		assert.Equal(t, 3, avail.Available)
	})

	t.Run("需要超過時も残室数は0に切り詰められる", func(t *testing.T) {
		bookingRepo := new(MockBookingRepository)
		roomRepo := new(MockSnapshotProvider)
		svc := NewAvailabilityService(bookingRepo, roomRepo, nil)
		ctx := context.Background()

		roomRepo.On("GetSnapshot", ctx, "room-1").Return(testSnapshot(), nil)
		// 減室後のオーバーブッキング状態を想定
		overbooked := []*booking.Booking{
			booking.NewBooking("room-1", "guest-1", rng, 3, 2, 60000),
			booking.NewBooking("room-1", "guest-2", rng, 2, 2, 40000),
		}
		bookingRepo.On("ListActiveByRoom", ctx, "room-1").Return(overbooked, nil)

		avail, err := svc.CheckAvailability(ctx, "room-1", checkIn, checkOut)

		require.NoError(t, err)
		assert.Equal(t, 5, avail.Demand)
		assert.Equal(t, 0, avail.Available)
	})

	t.Run("客室が存在しない", func(t *testing.T) {
		bookingRepo := new(MockBookingRepository)
		roomRepo := new(MockSnapshotProvider)
		svc := NewAvailabilityService(bookingRepo, roomRepo, nil)
		ctx := context.Background()

		roomRepo.On("GetSnapshot", ctx, "missing").Return(nil, room.ErrRoomNotFound)

		avail, err := svc.CheckAvailability(ctx, "missing", checkIn, checkOut)

		require.Error(t, err)
		assert.Nil(t, avail)
		assert.True(t, errors.Is(err, room.ErrRoomNotFound))
	})

	t.Run("不正な期間", func(t *testing.T) {
		bookingRepo := new(MockBookingRepository)
		roomRepo := new(MockSnapshotProvider)
		svc := NewAvailabilityService(bookingRepo, roomRepo, nil)

		avail, err := svc.CheckAvailability(context.Background(), "room-1", checkOut, checkIn)

		require.Error(t, err)
		assert.Nil(t, avail)
		assert.True(t, errors.Is(err, stay.ErrInvalidRange))
		roomRepo.AssertNotCalled(t, "GetSnapshot")
	})
}
