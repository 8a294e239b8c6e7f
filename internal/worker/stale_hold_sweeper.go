package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-room-reservation/internal/pkg/logger"
)

// HoldSweeper は滞留したpending予約をキャンセルするインターフェース
type HoldSweeper interface {
	CancelLapsedPending(ctx context.Context) (int, error)
}

// StaleHoldSweeper はチェックイン日を過ぎても確定されなかったpending予約を
// 定期的にキャンセルし、占有されたままの在庫を解放するワーカー
type StaleHoldSweeper struct {
	reservationService HoldSweeper
	interval           time.Duration
	stopCh             chan struct{}
	doneCh             chan struct{}
}

// NewStaleHoldSweeper は新しいスイーパーを作成
func NewStaleHoldSweeper(rs HoldSweeper, interval time.Duration) *StaleHoldSweeper {
	return &StaleHoldSweeper{
		reservationService: rs,
		interval:           interval,
		stopCh:             make(chan struct{}),
		doneCh:             make(chan struct{}),
	}
}

// Start はスイーパーを開始
func (s *StaleHoldSweeper) Start(ctx context.Context) {
	logger.Info("滞留予約スイーパー開始", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("滞留予約スイーパー停止（コンテキストキャンセル）")
			return
		case <-s.stopCh:
			logger.Info("滞留予約スイーパー停止（シグナル受信）")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop はスイーパーを停止
func (s *StaleHoldSweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// sweep は滞留pending予約をキャンセル
func (s *StaleHoldSweeper) sweep(ctx context.Context) {
	log := logger.Get()
	log.Debug("滞留pending予約の掃除開始")

	count, err := s.reservationService.CancelLapsedPending(ctx)
	if err != nil {
		log.Error("滞留pending予約の掃除失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("滞留pending予約をキャンセル", zap.Int("count", count))
	} else {
		log.Debug("滞留pending予約なし")
	}
}
