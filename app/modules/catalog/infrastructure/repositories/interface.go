package catalogdb

import (
	"context"

	catalogtypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog/domain/types"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"
)

// Repository is the catalog provider boundary: it loads the song and artist
// tables and maintains the per-song play and guess counters.
type Repository interface {
	LoadSongs(ctx context.Context) ([]catalogtypes.Song, error)
	LoadGroups(ctx context.Context) ([]catalogtypes.ArtistGroup, error)
	IncrementPlayCount(ctx context.Context, songID sharedtypes.SongID, guessed bool) error
}
