package model

import "time"

// ArchivedPlaylistSong 每日歌单归档行，按 (date, position) 还原当天的完整歌单。
// 7 天滚动窗口之外的历史只能从这里查询。
type ArchivedPlaylistSong struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Date            string    `gorm:"type:char(10);index:idx_archive_date" json:"date"`
	Position        int       `gorm:"not null" json:"position"`
	SongID          string    `gorm:"type:varchar(64);index" json:"songId"`
	Title           string    `gorm:"type:varchar(255)" json:"title"`
	Artist          string    `gorm:"type:varchar(255)" json:"artist"`
	Genre           string    `gorm:"type:varchar(64)" json:"genre"`
	ReleaseYear     int       `json:"releaseYear"`
	PopularityScore int       `json:"popularityScore"`
	AudioURL        string    `gorm:"type:varchar(512)" json:"audioUrl"`
	AlbumCover      string    `gorm:"type:varchar(512)" json:"albumCover"`
	Duration        int       `json:"duration"`
	CreatedAt       time.Time `json:"createdAt"`
}

// TableName 指定归档表名
func (ArchivedPlaylistSong) TableName() string {
	return "daily_playlist_archive"
}
