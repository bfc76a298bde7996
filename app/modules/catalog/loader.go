package catalog

import (
	"context"
	"fmt"

	catalogdb "github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog/infrastructure/repositories"
)

// Load reads the song and artist tables and builds the in-memory catalog.
// The catalog is immutable once built; a changed table needs a reload and a
// new Catalog value.
func Load(ctx context.Context, repo catalogdb.Repository) (*Catalog, error) {
	songs, err := repo.LoadSongs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load songs: %w", err)
	}
	groups, err := repo.LoadGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load artist groups: %w", err)
	}
	return Build(songs, groups)
}
