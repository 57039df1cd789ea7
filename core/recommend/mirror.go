package recommend

import (
	"sort"
	"sync"
	"time"

	"DailyFM/model"
)

// CatalogMirror 外部曲库的内存镜像，按需刷新。
// 刷新时整体替换内容，读写都经 RWMutex 保护。
type CatalogMirror struct {
	mu          sync.RWMutex
	songs       []model.Song
	byID        map[string]model.Song
	refreshedAt time.Time
}

// MirrorStats 镜像的运行时概况
type MirrorStats struct {
	Size        int            `json:"size"`
	GenreCounts map[string]int `json:"genreCounts"`
	RefreshedAt time.Time      `json:"refreshedAt"`
}

// NewCatalogMirror 创建空镜像
func NewCatalogMirror() *CatalogMirror {
	return &CatalogMirror{
		byID: make(map[string]model.Song),
	}
}

// Replace 用新一批歌曲整体替换镜像：按 ID 去重保留热度最高的一条，
// 再按热度降序排序。只有最终交换这一步持写锁。
func (m *CatalogMirror) Replace(songs []model.Song, now time.Time) {
	byID := make(map[string]model.Song, len(songs))
	order := make([]string, 0, len(songs))
	for _, s := range songs {
		existing, seen := byID[s.ID]
		if !seen {
			order = append(order, s.ID)
			byID[s.ID] = s
			continue
		}
		if s.PopularityScore > existing.PopularityScore {
			byID[s.ID] = s
		}
	}

	unique := make([]model.Song, 0, len(order))
	for _, id := range order {
		unique = append(unique, byID[id])
	}
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].PopularityScore > unique[j].PopularityScore
	})

	m.mu.Lock()
	m.songs = unique
	m.byID = byID
	m.refreshedAt = now
	m.mu.Unlock()
}

// Songs 返回镜像内容的副本
func (m *CatalogMirror) Songs() []model.Song {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Song, len(m.songs))
	copy(out, m.songs)
	return out
}

// Get 按 ID 查找歌曲
func (m *CatalogMirror) Get(id string) (model.Song, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.byID[id]
	return s, ok
}

// IsEmpty 镜像是否为空
func (m *CatalogMirror) IsEmpty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.songs) == 0
}

// Stats 返回镜像概况
func (m *CatalogMirror) Stats() MirrorStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int)
	for _, s := range m.songs {
		counts[s.Genre]++
	}
	return MirrorStats{
		Size:        len(m.songs),
		GenreCounts: counts,
		RefreshedAt: m.refreshedAt,
	}
}
