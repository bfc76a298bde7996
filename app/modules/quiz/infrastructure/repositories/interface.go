package quizdb

import (
	"context"

	quiztypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/types"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"
)

// PlayerStatsUpdate is one participant's increment from a finished round or
// session.
type PlayerStatsUpdate struct {
	UserID       sharedtypes.UserID
	SongsGuessed int
	ExpGained    int
	GamesPlayed  int
}

// Repository handles quiz persistence. Every call is a side effect: the
// in-memory session state never waits on, or depends on, its completion.
type Repository interface {
	// GetConfiguration loads a guild's configuration snapshot. The boolean
	// reports whether a stored snapshot existed.
	GetConfiguration(ctx context.Context, guildID sharedtypes.GuildID) (quiztypes.SessionConfiguration, bool, error)
	SaveConfiguration(ctx context.Context, guildID sharedtypes.GuildID, cfg quiztypes.SessionConfiguration) error

	UpsertPlayerStats(ctx context.Context, updates []PlayerStatsUpdate) error
	IncrementGuildStats(ctx context.Context, guildID sharedtypes.GuildID, games, rounds int) error
	InsertSessionStats(ctx context.Context, stats SessionStats) error
	SaveBookmarks(ctx context.Context, bookmarks []Bookmark) error
}
