package recommend

import (
	"sort"

	"DailyFM/model"
)

// HistoryWindowDays 历史窗口保留的天数
const HistoryWindowDays = 7

// HistoryTracker 滚动记录最近 7 天推送过的歌曲 ID。
// 既作为评分输入，也作为随机挑歌的排除条件。
// 非并发安全，由 Service 持锁访问。
type HistoryTracker struct {
	entries []model.HistoryEntry
	limit   int
}

// NewHistoryTracker 创建历史追踪器，limit <= 0 时使用默认 7 天
func NewHistoryTracker(limit int) *HistoryTracker {
	if limit <= 0 {
		limit = HistoryWindowDays
	}
	return &HistoryTracker{
		entries: make([]model.HistoryEntry, 0, limit),
		limit:   limit,
	}
}

// Append 把某天推送的歌曲 ID 追加进历史。同一天多次追加合并到同一条记录。
// 超过窗口上限时按日期先进先出淘汰最旧的一天。
func (t *HistoryTracker) Append(date string, songIDs []string) {
	for i := range t.entries {
		if t.entries[i].Date == date {
			t.entries[i].SongIDs = append(t.entries[i].SongIDs, songIDs...)
			return
		}
	}

	entry := model.HistoryEntry{Date: date, SongIDs: append([]string(nil), songIDs...)}
	t.entries = append(t.entries, entry)

	// 正常运行时按日期递增追加，这里仍显式排序，保证淘汰的总是最旧日期
	sort.Slice(t.entries, func(i, j int) bool {
		return t.entries[i].Date < t.entries[j].Date
	})
	for len(t.entries) > t.limit {
		t.entries = t.entries[1:]
	}
}

// RecentIDs 返回最近 windowDays 天推送过的歌曲 ID 并集
func (t *HistoryTracker) RecentIDs(windowDays int) map[string]struct{} {
	if windowDays <= 0 || windowDays > len(t.entries) {
		windowDays = len(t.entries)
	}

	ids := make(map[string]struct{})
	for _, entry := range t.entries[len(t.entries)-windowDays:] {
		for _, id := range entry.SongIDs {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// Clear 删除某一天的记录，date 为空时清空全部历史
func (t *HistoryTracker) Clear(date string) {
	if date == "" {
		t.entries = t.entries[:0]
		return
	}
	for i := range t.entries {
		if t.entries[i].Date == date {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return
		}
	}
}

// Entries 返回历史记录的副本，按日期升序
func (t *HistoryTracker) Entries() []model.HistoryEntry {
	out := make([]model.HistoryEntry, len(t.entries))
	for i, e := range t.entries {
		out[i] = model.HistoryEntry{
			Date:    e.Date,
			SongIDs: append([]string(nil), e.SongIDs...),
		}
	}
	return out
}

// Restore 用持久化快照整体替换历史记录，超出窗口的旧日期直接丢弃
func (t *HistoryTracker) Restore(entries []model.HistoryEntry) {
	t.entries = t.entries[:0]
	for _, e := range entries {
		t.entries = append(t.entries, model.HistoryEntry{
			Date:    e.Date,
			SongIDs: append([]string(nil), e.SongIDs...),
		})
	}
	sort.Slice(t.entries, func(i, j int) bool {
		return t.entries[i].Date < t.entries[j].Date
	})
	for len(t.entries) > t.limit {
		t.entries = t.entries[1:]
	}
}

// Len 返回当前持有的天数
func (t *HistoryTracker) Len() int {
	return len(t.entries)
}
