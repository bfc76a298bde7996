package catalogdb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	catalogtypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog/domain/types"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"
)

// CatalogDBImpl handles database operations for the song catalog.
type CatalogDBImpl struct {
	DB *bun.DB
}

var _ Repository = (*CatalogDBImpl)(nil)

// LoadSongs reads the full song table.
func (db *CatalogDBImpl) LoadSongs(ctx context.Context) ([]catalogtypes.Song, error) {
	var rows []Song
	if err := db.DB.NewSelect().Model(&rows).Order("id").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to load songs: %w", err)
	}
	songs := make([]catalogtypes.Song, len(rows))
	for i := range rows {
		songs[i] = rows[i].toDomain()
	}
	return songs, nil
}

// LoadGroups reads the full artist table.
func (db *CatalogDBImpl) LoadGroups(ctx context.Context) ([]catalogtypes.ArtistGroup, error) {
	var rows []ArtistGroup
	if err := db.DB.NewSelect().Model(&rows).Order("id").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to load artist groups: %w", err)
	}
	groups := make([]catalogtypes.ArtistGroup, len(rows))
	for i := range rows {
		groups[i] = rows[i].toDomain()
	}
	return groups, nil
}

// IncrementPlayCount bumps a song's play counter and, when the round was
// guessed, its guess counter.
func (db *CatalogDBImpl) IncrementPlayCount(ctx context.Context, songID sharedtypes.SongID, guessed bool) error {
	q := db.DB.NewUpdate().
		Model((*Song)(nil)).
		Set("play_count = play_count + 1").
		Where("id = ?", songID.String())
	if guessed {
		q = q.Set("guess_count = guess_count + 1")
	}
	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment play count for %s: %w", songID, err)
	}
	return nil
}
