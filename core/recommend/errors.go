package recommend

import "errors"

// 推荐子系统的错误分类，由 HTTP 层映射为状态码。
// 曲库方的失败绝不缓存为成功结果，也绝不退化为空歌单。
var (
	// ErrProviderUnavailable 外部曲库调用失败（网络、鉴权、限流）
	ErrProviderUnavailable = errors.New("catalog provider unavailable")

	// ErrNotFound 镜像和曲库方都查不到指定歌曲
	ErrNotFound = errors.New("song not found")

	// ErrNoEligibleSong 历史窗口之外没有任何可选歌曲
	ErrNoEligibleSong = errors.New("no eligible song outside history window")

	// ErrEmptyCatalog 镜像为空且无法刷新，当日歌单计算必须失败而不是缓存空结果
	ErrEmptyCatalog = errors.New("catalog mirror is empty")
)
