package repository

import (
	"context"
	"fmt"

	"DailyFM/model"

	"gorm.io/gorm"
)

// ArchiveRepository defines the interface for daily playlist archive operations.
type ArchiveRepository interface {
	SavePlaylist(ctx context.Context, playlist *model.DailyPlaylist) error
	LoadPlaylist(ctx context.Context, date string) (*model.DailyPlaylist, error)
}

// gormArchiveRepository implements ArchiveRepository on MySQL via GORM.
type gormArchiveRepository struct {
	db *gorm.DB
}

// NewGormArchiveRepository creates a new instance of gormArchiveRepository.
func NewGormArchiveRepository(db *gorm.DB) ArchiveRepository {
	return &gormArchiveRepository{db: db}
}

// SavePlaylist archives one day's playlist, replacing any earlier rows for
// the same date so a recompute after state loss does not leave duplicates.
func (r *gormArchiveRepository) SavePlaylist(ctx context.Context, playlist *model.DailyPlaylist) error {
	rows := make([]model.ArchivedPlaylistSong, len(playlist.Songs))
	for i, song := range playlist.Songs {
		rows[i] = model.ArchivedPlaylistSong{
			Date:            playlist.Date,
			Position:        i,
			SongID:          song.ID,
			Title:           song.Title,
			Artist:          song.Artist,
			Genre:           song.Genre,
			ReleaseYear:     song.ReleaseYear,
			PopularityScore: song.PopularityScore,
			AudioURL:        song.AudioURL,
			AlbumCover:      song.AlbumCover,
			Duration:        song.Duration,
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("date = ?", playlist.Date).
			Delete(&model.ArchivedPlaylistSong{}).Error; err != nil {
			return fmt.Errorf("failed to clear previous archive rows: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert archive rows: %w", err)
		}
		return nil
	})
}

// LoadPlaylist reconstructs one day's archived playlist in serving order.
// Returns (nil, nil) when no rows exist for the date.
func (r *gormArchiveRepository) LoadPlaylist(ctx context.Context, date string) (*model.DailyPlaylist, error) {
	var rows []model.ArchivedPlaylistSong
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query archive rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	songs := make([]model.Song, len(rows))
	for i, row := range rows {
		songs[i] = model.Song{
			ID:              row.SongID,
			Title:           row.Title,
			Artist:          row.Artist,
			Genre:           row.Genre,
			ReleaseYear:     row.ReleaseYear,
			PopularityScore: row.PopularityScore,
			AudioURL:        row.AudioURL,
			AlbumCover:      row.AlbumCover,
			Duration:        row.Duration,
		}
	}
	return &model.DailyPlaylist{Date: date, Songs: songs}, nil
}
