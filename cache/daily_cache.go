package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"DailyFM/model"

	"github.com/go-redis/redis/v8"
)

// 当日歌单快照保留两天，足够覆盖跨天重启；历史快照随每次写入续期
const (
	dailyTTL   = 48 * time.Hour
	historyTTL = 8 * 24 * time.Hour

	historyKey = "dailyfm:history"
)

// DailyCache 把当日歌单和历史窗口写入Redis，进程重启后恢复状态。
// Redis只做快照，内存状态始终是权威数据。
type DailyCache struct {
	client *redis.Client
}

// NewDailyCache 创建Redis快照存储
func NewDailyCache(client *redis.Client) *DailyCache {
	return &DailyCache{client: client}
}

// dailyKey 按日期生成当日歌单的Redis键
func dailyKey(date string) string {
	return fmt.Sprintf("dailyfm:daily:%s", date)
}

// SaveDaily 写入某天的歌单快照
func (c *DailyCache) SaveDaily(ctx context.Context, playlist *model.DailyPlaylist) error {
	data, err := json.Marshal(playlist)
	if err != nil {
		return fmt.Errorf("failed to marshal daily playlist: %w", err)
	}
	if err := c.client.Set(ctx, dailyKey(playlist.Date), data, dailyTTL).Err(); err != nil {
		return fmt.Errorf("failed to set daily playlist key: %w", err)
	}
	return nil
}

// LoadDaily 读取某天的歌单快照，键不存在时返回 (nil, nil)
func (c *DailyCache) LoadDaily(ctx context.Context, date string) (*model.DailyPlaylist, error) {
	data, err := c.client.Get(ctx, dailyKey(date)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily playlist key: %w", err)
	}

	var playlist model.DailyPlaylist
	if err := json.Unmarshal(data, &playlist); err != nil {
		return nil, fmt.Errorf("failed to unmarshal daily playlist: %w", err)
	}
	return &playlist, nil
}

// SaveHistory 整体写入历史窗口快照
func (c *DailyCache) SaveHistory(ctx context.Context, entries []model.HistoryEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal history entries: %w", err)
	}
	if err := c.client.Set(ctx, historyKey, data, historyTTL).Err(); err != nil {
		return fmt.Errorf("failed to set history key: %w", err)
	}
	return nil
}

// LoadHistory 读取历史窗口快照，键不存在时返回 (nil, nil)
func (c *DailyCache) LoadHistory(ctx context.Context) ([]model.HistoryEntry, error) {
	data, err := c.client.Get(ctx, historyKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history key: %w", err)
	}

	var entries []model.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history entries: %w", err)
	}
	return entries, nil
}
