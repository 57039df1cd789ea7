package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"DailyFM/core/catalog"
	"DailyFM/logger"
	"DailyFM/model"

	"golang.org/x/sync/singleflight"
)

// SnapshotStore 当日歌单与历史窗口的持久化快照，进程重启后恢复状态。
// 实现缺失的键返回 (nil, nil) 而不是错误。
type SnapshotStore interface {
	SaveDaily(ctx context.Context, playlist *model.DailyPlaylist) error
	LoadDaily(ctx context.Context, date string) (*model.DailyPlaylist, error)
	SaveHistory(ctx context.Context, entries []model.HistoryEntry) error
	LoadHistory(ctx context.Context) ([]model.HistoryEntry, error)
}

// ArchiveStore 每日歌单的长期归档，窗口之外的历史从这里查询
type ArchiveStore interface {
	SavePlaylist(ctx context.Context, playlist *model.DailyPlaylist) error
	LoadPlaylist(ctx context.Context, date string) (*model.DailyPlaylist, error)
}

// ServiceConfig Service 的装配参数，零值字段取默认值
type ServiceConfig struct {
	TargetSize       int              // 每日歌单目标长度，默认 50
	WindowDays       int              // 历史窗口天数，默认 7
	DefaultYearRange *model.YearRange // 自动刷新镜像时的年份过滤
	Location         *time.Location   // 自然日所用的固定时区，默认 UTC
	Clock            Clock            // 注入时钟，默认系统时钟
	Seed             int64            // 随机挑歌的种子，0 表示按当前时间取
	Snapshots        SnapshotStore    // 可选，nil 时仅内存
	Archive          ArchiveStore     // 可选，nil 时不归档
}

// Service 推荐服务实例，持有镜像、当日歌单缓存和历史窗口。
// 生命周期和同步都由构造方显式管理，不依赖任何包级单例。
type Service struct {
	provider catalog.Provider
	mirror   *CatalogMirror
	clock    Clock
	loc      *time.Location

	targetSize       int
	windowDays       int
	defaultYearRange *model.YearRange

	// mu 串行保护当日歌单缓存、历史窗口和随机源
	mu      sync.Mutex
	daily   *model.DailyPlaylist
	history *HistoryTracker
	rng     *rand.Rand

	// 同一天的缓存未命中合并为一次计算，定时预热和请求触发共用这条路径
	flight singleflight.Group

	snapshots SnapshotStore
	archive   ArchiveStore
}

// NewService 创建推荐服务
func NewService(provider catalog.Provider, cfg ServiceConfig) *Service {
	if cfg.TargetSize <= 0 {
		cfg.TargetSize = DefaultTargetSize
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = HistoryWindowDays
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Service{
		provider:         provider,
		mirror:           NewCatalogMirror(),
		clock:            cfg.Clock,
		loc:              cfg.Location,
		targetSize:       cfg.TargetSize,
		windowDays:       cfg.WindowDays,
		defaultYearRange: cfg.DefaultYearRange,
		history:          NewHistoryTracker(cfg.WindowDays),
		rng:              rand.New(rand.NewSource(cfg.Seed)),
		snapshots:        cfg.Snapshots,
		archive:          cfg.Archive,
	}
}

// today 返回固定时区下的自然日键
func (s *Service) today() string {
	return s.clock.Now().In(s.loc).Format("2006-01-02")
}

// Restore 从快照恢复历史窗口和当日歌单，重启后不丢 7 天窗口也不重算当天
func (s *Service) Restore(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}

	entries, err := s.snapshots.LoadHistory(ctx)
	if err != nil {
		return fmt.Errorf("load history snapshot: %w", err)
	}

	date := s.today()
	daily, err := s.snapshots.LoadDaily(ctx, date)
	if err != nil {
		return fmt.Errorf("load daily snapshot: %w", err)
	}

	s.mu.Lock()
	if entries != nil {
		s.history.Restore(entries)
	}
	if daily != nil {
		s.daily = daily
	}
	s.mu.Unlock()

	logger.Info("Restored recommendation state from snapshots",
		logger.Int("historyDays", len(entries)),
		logger.Bool("dailyRestored", daily != nil))
	return nil
}

// GetDaily 返回当日歌单。当天已计算过则直接命中缓存；
// 未命中时同一天的并发调用合并为一次计算，所有调用方拿到同一个结果。
func (s *Service) GetDaily(ctx context.Context) (*model.DailyPlaylist, error) {
	date := s.today()

	s.mu.Lock()
	if s.daily != nil && s.daily.Date == date {
		p := s.daily
		s.mu.Unlock()
		return p, nil
	}
	s.mu.Unlock()

	v, err, _ := s.flight.Do(date, func() (interface{}, error) {
		return s.computeDaily(ctx, date)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.DailyPlaylist), nil
}

// computeDaily 执行一次完整的当日歌单计算：确保镜像非空、评分、均衡、
// 写缓存并记入历史。失败绝不写缓存，下一次调用会重试。
func (s *Service) computeDaily(ctx context.Context, date string) (*model.DailyPlaylist, error) {
	// 合并的等待者可能在首个计算者完成后才进来，先重查缓存
	s.mu.Lock()
	if s.daily != nil && s.daily.Date == date {
		p := s.daily
		s.mu.Unlock()
		return p, nil
	}
	s.mu.Unlock()

	// 镜像刷新涉及网络 IO，不持缓存锁进行
	if s.mirror.IsEmpty() {
		if _, err := s.RefreshMirror(ctx, s.defaultYearRange); err != nil {
			return nil, err
		}
	}

	songs := s.mirror.Songs()
	if len(songs) == 0 {
		return nil, ErrEmptyCatalog
	}

	s.mu.Lock()
	recent := s.history.RecentIDs(s.windowDays)
	s.mu.Unlock()

	selection, err := SelectDaily(songs, recent, s.targetSize)
	if err != nil {
		return nil, err
	}

	playlist := &model.DailyPlaylist{Date: date, Songs: selection}
	songIDs := make([]string, len(selection))
	for i, song := range selection {
		songIDs[i] = song.ID
	}

	s.mu.Lock()
	s.daily = playlist
	s.history.Append(date, songIDs)
	entries := s.history.Entries()
	s.mu.Unlock()

	s.persist(ctx, playlist, entries)

	logger.Info("Computed daily playlist",
		logger.String("date", date),
		logger.Int("songs", len(selection)),
		logger.Int("candidates", len(songs)))
	return playlist, nil
}

// persist 尽力而为地落快照和归档，失败只告警不影响已计算的结果
func (s *Service) persist(ctx context.Context, playlist *model.DailyPlaylist, entries []model.HistoryEntry) {
	if s.snapshots != nil {
		if err := s.snapshots.SaveDaily(ctx, playlist); err != nil {
			logger.Warn("Failed to save daily playlist snapshot", logger.ErrorField(err))
		}
		if err := s.snapshots.SaveHistory(ctx, entries); err != nil {
			logger.Warn("Failed to save history snapshot", logger.ErrorField(err))
		}
	}
	if s.archive != nil {
		if err := s.archive.SavePlaylist(ctx, playlist); err != nil {
			logger.Warn("Failed to archive daily playlist",
				logger.String("date", playlist.Date), logger.ErrorField(err))
		}
	}
}

// RefreshMirror 强制从曲库方刷新镜像，返回刷新后的内容。
// 曲库方失败时原镜像保持不变。
func (s *Service) RefreshMirror(ctx context.Context, yearRange *model.YearRange) ([]model.Song, error) {
	songs, err := s.provider.FetchSongs(ctx, yearRange)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	s.mirror.Replace(songs, s.clock.Now().In(s.loc))
	refreshed := s.mirror.Songs()
	logger.Info("Catalog mirror refreshed", logger.Int("songs", len(refreshed)))
	return refreshed, nil
}

// History 返回历史记录，date 非空时只保留该天
func (s *Service) History(date string) []model.HistoryEntry {
	s.mu.Lock()
	entries := s.history.Entries()
	s.mu.Unlock()

	if date == "" {
		return entries
	}
	filtered := make([]model.HistoryEntry, 0, 1)
	for _, e := range entries {
		if e.Date == date {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// ClearHistory 删除某天或全部历史记录并同步快照
func (s *Service) ClearHistory(ctx context.Context, date string) error {
	s.mu.Lock()
	s.history.Clear(date)
	entries := s.history.Entries()
	s.mu.Unlock()

	if s.snapshots != nil {
		if err := s.snapshots.SaveHistory(ctx, entries); err != nil {
			logger.Warn("Failed to save history snapshot after clear", logger.ErrorField(err))
		}
	}
	return nil
}

// Random 从镜像中随机返回一首历史窗口之外的歌曲
func (s *Service) Random() (*model.Song, error) {
	songs := s.mirror.Songs()

	s.mu.Lock()
	recent := s.history.RecentIDs(s.windowDays)
	song, ok := PickRandom(songs, recent, s.rng)
	s.mu.Unlock()

	if !ok {
		return nil, ErrNoEligibleSong
	}
	return &song, nil
}

// SongByID 查单曲详情：先查镜像，未命中再回源曲库方
func (s *Service) SongByID(ctx context.Context, id string) (*model.Song, error) {
	if song, ok := s.mirror.Get(id); ok {
		return &song, nil
	}

	song, err := s.provider.GetSongByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if song == nil {
		return nil, ErrNotFound
	}
	return song, nil
}

// ArchivedPlaylist 查询某天的归档歌单
func (s *Service) ArchivedPlaylist(ctx context.Context, date string) (*model.DailyPlaylist, error) {
	if s.archive == nil {
		return nil, ErrNotFound
	}
	playlist, err := s.archive.LoadPlaylist(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load archived playlist: %w", err)
	}
	if playlist == nil {
		return nil, ErrNotFound
	}
	return playlist, nil
}

// MirrorStats 返回镜像概况
func (s *Service) MirrorStats() MirrorStats {
	return s.mirror.Stats()
}
