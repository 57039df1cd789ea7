package model

// Song 每日推荐的候选歌曲，由外部曲库拉取后存入镜像，获取后不可变
type Song struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Artist          string `json:"artist"`
	Genre           string `json:"genre"`
	ReleaseYear     int    `json:"releaseYear"`
	PopularityScore int    `json:"popularityScore"` // 0-100
	AudioURL        string `json:"audioUrl"`
	AlbumCover      string `json:"albumCover,omitempty"` // 封面URL
	Duration        int    `json:"duration,omitempty"`   // 时长（秒）
}

// DailyPlaylist 某个自然日的推荐歌单，创建后不再修改，跨天后整体替换
type DailyPlaylist struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Songs []Song `json:"songs"`
}

// HistoryEntry 某一天推送过的歌曲ID集合
type HistoryEntry struct {
	Date    string   `json:"date"` // YYYY-MM-DD
	SongIDs []string `json:"songIds"`
}

// YearRange 拉取曲库时的发行年份过滤条件，零值表示不限制
type YearRange struct {
	StartYear int `json:"startYear,omitempty"`
	EndYear   int `json:"endYear,omitempty"`
}
