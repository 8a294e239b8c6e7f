package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/identity"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/room"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/stay"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/transaction"
	redislock "github.com/sanosuguru/go-hotel-room-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/pkg/metrics"
)

// ErrBusy は競合リトライを使い切ったことを表す
// 呼び出し元は一時的エラーとして再試行してよい
var ErrBusy = errors.New("予約処理が混み合っています。しばらくしてから再試行してください")

const (
	// 空室判定と挿入の競合をやり直す上限回数
	reserveMaxAttempts = 3

	roomLockTTL        = 10 * time.Second
	roomLockRetries    = 3
	roomLockRetryDelay = 100 * time.Millisecond
)

// ReservationService は空室計算と予約確定を所有するサービス
// 依存はすべてコンストラクタで注入し、グローバルな接続プールは持たない
type ReservationService struct {
	txManager   transaction.Manager
	bookingRepo booking.Repository
	roomRepo    room.SnapshotProvider
	ownership   room.OwnershipResolver
	lockManager redislock.LockManagerInterface
	metrics     *metrics.Metrics
}

func NewReservationService(
	txManager transaction.Manager,
	br booking.Repository,
	rr room.SnapshotProvider,
	or room.OwnershipResolver,
	lm redislock.LockManagerInterface,
	m *metrics.Metrics,
) *ReservationService {
	return &ReservationService{
		txManager:   txManager,
		bookingRepo: br,
		roomRepo:    rr,
		ownership:   or,
		lockManager: lm,
		metrics:     m,
	}
}

// ReserveInput は予約リクエスト
type ReserveInput struct {
	RoomID     string
	CheckIn    time.Time
	CheckOut   time.Time
	UnitCount  int
	AdultCount int
	Caller     identity.Identity
}

// Reserve は空室を確認して予約を確定する
//
// 既存予約の読み取りと新規予約の挿入は1つの作業単位として実行される。
// 客室行ロック（と有効な場合は客室単位の分散ロック）の下で需要を再集計するため、
// 同じ客室に対する並行リクエストが同じ残室数を観測して両方成功することはない。
// 競合で中断された試行は最初からやり直し、上限を超えたらErrBusyを返す
func (s *ReservationService) Reserve(ctx context.Context, input ReserveInput) (*booking.Booking, error) {
	// バリデーションはストアアクセスの前にすべて弾く
	if !input.Caller.Valid() {
		s.recordBooking("invalid")
		return nil, booking.ErrGuestIDRequired
	}
	if input.UnitCount < 1 {
		s.recordBooking("invalid")
		return nil, booking.ErrInvalidUnitCount
	}
	if input.AdultCount < 1 {
		s.recordBooking("invalid")
		return nil, booking.ErrInvalidAdultCount
	}
	rng, err := stay.NewDateRange(input.CheckIn, input.CheckOut)
	if err != nil {
		s.recordBooking("invalid")
		return nil, err
	}
	if rng.StartsBefore(time.Now()) {
		s.recordBooking("invalid")
		return nil, booking.ErrCheckInPast
	}

	// 水平スケール構成では客室単位の分散ロックで予約処理を直列化する
	// 単一プロセス構成（lockManagerなし）でも客室行ロックだけで不変条件は守られる
	if s.lockManager != nil {
		lockStart := time.Now()
		lock, err := s.lockManager.AcquireLockWithRetry(ctx, s.roomLockKey(input.RoomID), roomLockTTL, roomLockRetries, roomLockRetryDelay)
		if err != nil {
			s.recordLock("acquire", "failed", time.Since(lockStart))
			if errors.Is(err, redislock.ErrLockNotAcquired) {
				s.recordBooking("busy")
				return nil, ErrBusy
			}
			s.recordBooking("error")
			return nil, fmt.Errorf("客室ロック取得に失敗: %w", err)
		}
		s.recordLock("acquire", "success", time.Since(lockStart))
		defer func() {
			releaseStart := time.Now()
			if err := lock.Release(ctx); err != nil {
				s.recordLock("release", "failed", time.Since(releaseStart))
				logger.Warn("客室ロック解放に失敗", zap.String("room_id", input.RoomID), zap.Error(err))
				return
			}
			s.recordLock("release", "success", time.Since(releaseStart))
		}()
	}

	var lastErr error
	for attempt := 0; attempt < reserveMaxAttempts; attempt++ {
		b, err := s.reserveOnce(ctx, input.RoomID, rng, input.UnitCount, input.AdultCount, input.Caller.UserID)
		if err == nil {
			s.recordBooking("success")
			s.adjustActive(booking.StatusPending, +1)
			return b, nil
		}
		if errors.Is(err, transaction.ErrConflict) {
			lastErr = err
			logger.Debug("予約処理の競合を検出、やり直します",
				zap.String("room_id", input.RoomID), zap.Int("attempt", attempt+1))
			continue
		}
		if _, ok := booking.IsInsufficientAvailability(err); ok {
			s.recordBooking("no_availability")
		} else if errors.Is(err, room.ErrRoomNotFound) {
			s.recordBooking("not_found")
		} else {
			s.recordBooking("error")
		}
		return nil, err
	}

	logger.Warn("予約処理のリトライ上限に到達",
		zap.String("room_id", input.RoomID), zap.Error(lastErr))
	s.recordBooking("busy")
	return nil, ErrBusy
}

// reserveOnce は空室判定から挿入までを1つの作業単位として1回だけ試行する
func (s *ReservationService) reserveOnce(ctx context.Context, roomID string, rng stay.DateRange, unitCount, adultCount int, guestID string) (*booking.Booking, error) {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	// 客室行をロックして取得。以降の読み取りと挿入はこのロックの下で行われる
	snap, err := s.roomRepo.GetSnapshotForUpdate(ctx, tx, roomID)
	if err != nil {
		return nil, err
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.bookingRepo.ListActiveByRoomTx(ctx, tx, roomID)
	if err != nil {
		return nil, err
	}

	demand := booking.AggregateDemand(rng, existing, "")
	available := snap.TotalUnits - demand
	if available < 0 {
		available = 0
	}
	if unitCount > available {
		return nil, &booking.InsufficientAvailabilityError{Available: available}
	}

	price := booking.ComputePrice(snap, rng, unitCount, adultCount)
	b := booking.NewBooking(roomID, guestID, rng, unitCount, adultCount, price)
	if err := b.Validate(); err != nil {
		return nil, err
	}

	if err := s.bookingRepo.Create(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}
	return b, nil
}

// Transition は予約の状態遷移を実行する
// 状態機械とロール規則の判定はエンティティが行い、ここでは
// 呼び出し元と客室の所有関係の解決と、単一行の永続化だけを担う
func (s *ReservationService) Transition(ctx context.Context, bookingID string, target booking.Status, caller identity.Identity) (*booking.Booking, error) {
	if !booking.ValidStatus(target) {
		s.recordTransition(target, "invalid")
		return nil, booking.ErrInvalidTransition
	}
	if !caller.Valid() {
		s.recordTransition(target, "forbidden")
		return nil, booking.ErrForbidden
	}

	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		s.recordTransition(target, "not_found")
		return nil, err
	}

	actor := booking.Actor{UserID: caller.UserID, Role: caller.Role}
	if caller.Role == identity.RoleOwner {
		owns, err := s.ownership.IsRoomOwner(ctx, caller.UserID, b.RoomID)
		if err != nil {
			s.recordTransition(target, "error")
			return nil, err
		}
		actor.OwnsRoom = owns
	}

	// ロック前の早期判定。確定判定はトランザクション内の再取得に対して行う
	trial := *b
	if err := trial.TransitionTo(target, actor); err != nil {
		if errors.Is(err, booking.ErrForbidden) {
			s.recordTransition(target, "forbidden")
		} else {
			s.recordTransition(target, "invalid")
		}
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		s.recordTransition(target, "error")
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	// 行ロック付きで再取得し、読んだ状態に対して遷移と更新を同一作業単位で行う。
	// 並行する遷移が先にコミットしていた場合はここで弾かれる
	fresh, err := s.bookingRepo.GetByIDForUpdate(ctx, tx, bookingID)
	if err != nil {
		s.recordTransition(target, "error")
		return nil, err
	}
	prev := fresh.Status
	if err := fresh.TransitionTo(target, actor); err != nil {
		if errors.Is(err, booking.ErrForbidden) {
			s.recordTransition(target, "forbidden")
		} else {
			s.recordTransition(target, "invalid")
		}
		return nil, err
	}

	if err := s.bookingRepo.UpdateStatus(ctx, tx, fresh); err != nil {
		s.recordTransition(target, "error")
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		s.recordTransition(target, "error")
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.recordTransition(target, "success")
	s.adjustActive(prev, -1)
	if target != booking.StatusCancelled {
		s.adjustActive(target, +1)
	}
	return fresh, nil
}

// GetBooking は予約を取得する
func (s *ReservationService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

// ListGuestBookings は宿泊客の予約一覧を取得する
func (s *ReservationService) ListGuestBookings(ctx context.Context, guestID string, limit, offset int) ([]*booking.Booking, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.bookingRepo.ListByGuest(ctx, guestID, limit, offset)
}

// CancelLapsedPending はチェックイン日を過ぎても確定されなかった
// pending予約をキャンセルし、在庫を解放する。ワーカーから定期的に呼ばれる
func (s *ReservationService) CancelLapsedPending(ctx context.Context) (int, error) {
	today := stay.TruncateToDate(time.Now())
	lapsed, err := s.bookingRepo.ListPendingCheckInBefore(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("滞留pending予約の取得に失敗: %w", err)
	}

	system := booking.Actor{UserID: "system", Role: identity.RoleAdmin}
	cancelled := 0
	for _, b := range lapsed {
		trial := *b
		if err := trial.TransitionTo(booking.StatusCancelled, system); err != nil {
			// 別の経路で既に遷移済みの予約はスキップ
			continue
		}
		done, err := s.cancelOne(ctx, b.ID)
		if err != nil {
			logger.Warn("滞留pending予約のキャンセルに失敗",
				zap.String("booking_id", b.ID), zap.Error(err))
			continue
		}
		if !done {
			continue
		}
		s.adjustActive(booking.StatusPending, -1)
		cancelled++
	}
	return cancelled, nil
}

// cancelOne は1件の滞留予約をキャンセルする。一覧取得からの経過中に
// 別の経路で遷移した可能性があるため、行ロック付きで再取得してから書く。
// 再取得時に既にキャンセル対象でなくなっていた場合は何もせずfalseを返す
func (s *ReservationService) cancelOne(ctx context.Context, bookingID string) (bool, error) {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	fresh, err := s.bookingRepo.GetByIDForUpdate(ctx, tx, bookingID)
	if err != nil {
		return false, err
	}
	system := booking.Actor{UserID: "system", Role: identity.RoleAdmin}
	if err := fresh.TransitionTo(booking.StatusCancelled, system); err != nil {
		return false, nil
	}
	if err := s.bookingRepo.UpdateStatus(ctx, tx, fresh); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("コミットに失敗: %w", err)
	}
	return true, nil
}

func (s *ReservationService) roomLockKey(roomID string) string {
	return "room:" + roomID
}

func (s *ReservationService) recordBooking(outcome string) {
	if s.metrics != nil {
		s.metrics.BookingsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *ReservationService) recordTransition(target booking.Status, outcome string) {
	if s.metrics != nil {
		s.metrics.TransitionsTotal.WithLabelValues(string(target), outcome).Inc()
	}
}

func (s *ReservationService) recordLock(operation, status string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.RoomLockDuration.WithLabelValues(operation, status).Observe(d.Seconds())
	}
}

func (s *ReservationService) adjustActive(status booking.Status, delta float64) {
	if s.metrics != nil {
		s.metrics.ActiveBookings.WithLabelValues(string(status)).Add(delta)
	}
}
