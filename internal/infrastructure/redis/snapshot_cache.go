package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/room"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// SnapshotCacheInterface は客室スナップショットキャッシュのインターフェース
type SnapshotCacheInterface interface {
	Get(ctx context.Context, roomID string) (*room.Snapshot, error)
	Set(ctx context.Context, snap *room.Snapshot, ttl time.Duration) error
	Invalidate(ctx context.Context, roomID string) error
}

// SnapshotCache は客室スナップショットのキャッシュを管理する
// 客室メタデータはストアフロントのCRUD層が所有し変更頻度が低いため、
// 空室照会の読み取り負荷をここで吸収する
type SnapshotCache struct {
	client *redis.Client
}

// NewSnapshotCache は新しいSnapshotCacheインスタンスを作成する
func NewSnapshotCache(client *redis.Client) *SnapshotCache {
	return &SnapshotCache{client: client}
}

// Get は客室スナップショットをキャッシュから取得する
func (c *SnapshotCache) Get(ctx context.Context, roomID string) (*room.Snapshot, error) {
	key := c.snapshotKey(roomID)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	var snap room.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("キャッシュの復元に失敗: %w", err)
	}
	return &snap, nil
}

// Set は客室スナップショットをキャッシュに保存する
func (c *SnapshotCache) Set(ctx context.Context, snap *room.Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("キャッシュの変換に失敗: %w", err)
	}
	if err := c.client.Set(ctx, c.snapshotKey(snap.RoomID), data, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は客室のキャッシュを無効化する
func (c *SnapshotCache) Invalidate(ctx context.Context, roomID string) error {
	if err := c.client.Del(ctx, c.snapshotKey(roomID)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *SnapshotCache) snapshotKey(roomID string) string {
	return fmt.Sprintf("rooms:snapshot:%s", roomID)
}

var _ SnapshotCacheInterface = (*SnapshotCache)(nil)
