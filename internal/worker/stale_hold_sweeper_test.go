package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockHoldSweeper はHoldSweeperのモック
type MockHoldSweeper struct {
	mock.Mock
}

func (m *MockHoldSweeper) CancelLapsedPending(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestNewStaleHoldSweeper(t *testing.T) {
	mockService := new(MockHoldSweeper)
	interval := 1 * time.Hour

	sweeper := NewStaleHoldSweeper(mockService, interval)

	assert.NotNil(t, sweeper)
	assert.Equal(t, interval, sweeper.interval)
	assert.NotNil(t, sweeper.stopCh)
	assert.NotNil(t, sweeper.doneCh)
}

func TestStaleHoldSweeper_Sweep(t *testing.T) {
	t.Run("正常に掃除が実行される", func(t *testing.T) {
		mockService := new(MockHoldSweeper)
		mockService.On("CancelLapsedPending", mock.Anything).Return(3, nil)

		sweeper := NewStaleHoldSweeper(mockService, 1*time.Hour)

		sweeper.sweep(context.Background())

		mockService.AssertExpectations(t)
	})

	t.Run("キャンセル対象がない場合も正常に動作する", func(t *testing.T) {
		mockService := new(MockHoldSweeper)
		mockService.On("CancelLapsedPending", mock.Anything).Return(0, nil)

		sweeper := NewStaleHoldSweeper(mockService, 1*time.Hour)

		sweeper.sweep(context.Background())

		mockService.AssertExpectations(t)
	})

	t.Run("エラーが発生しても継続する", func(t *testing.T) {
		mockService := new(MockHoldSweeper)
		mockService.On("CancelLapsedPending", mock.Anything).Return(0, assert.AnError)

		sweeper := NewStaleHoldSweeper(mockService, 1*time.Hour)

		// パニックしないことを確認
		sweeper.sweep(context.Background())

		mockService.AssertExpectations(t)
	})
}

func TestStaleHoldSweeper_StartStop(t *testing.T) {
	t.Run("開始と停止が正常に動作する", func(t *testing.T) {
		mockService := new(MockHoldSweeper)
		// sweep が呼ばれる可能性があるので、任意回数マッチさせる
		mockService.On("CancelLapsedPending", mock.Anything).Return(0, nil).Maybe()

		sweeper := NewStaleHoldSweeper(mockService, 50*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// バックグラウンドで開始
		go sweeper.Start(ctx)

		// 少し待機
		time.Sleep(120 * time.Millisecond)

		// 停止
		sweeper.Stop()

		// Stop後はdoneChがcloseされている
		select {
		case <-sweeper.doneCh:
			// 正常に終了
		case <-time.After(1 * time.Second):
			t.Error("sweeper did not stop in time")
		}
	})

	t.Run("コンテキストキャンセルで停止する", func(t *testing.T) {
		mockService := new(MockHoldSweeper)
		mockService.On("CancelLapsedPending", mock.Anything).Return(0, nil).Maybe()

		sweeper := NewStaleHoldSweeper(mockService, 50*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			sweeper.Start(ctx)
			close(done)
		}()

		// 少し待機してからコンテキストをキャンセル
		time.Sleep(80 * time.Millisecond)
		cancel()

		// 終了を待機
		select {
		case <-done:
			// 正常に終了
		case <-time.After(1 * time.Second):
			t.Error("sweeper did not stop after context cancel")
		}
	})
}
