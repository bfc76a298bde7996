package quizdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	quiztypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/types"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"
)

// QuizDBImpl handles database operations for quiz persistence.
type QuizDBImpl struct {
	DB *bun.DB
}

var _ Repository = (*QuizDBImpl)(nil)

// GetConfiguration loads and normalizes a guild's stored snapshot. A missing
// row yields the defaults rather than an error.
func (db *QuizDBImpl) GetConfiguration(ctx context.Context, guildID sharedtypes.GuildID) (quiztypes.SessionConfiguration, bool, error) {
	row := new(GuildConfiguration)
	err := db.DB.NewSelect().
		Model(row).
		Where("guild_id = ?", guildID.String()).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quiztypes.DefaultConfiguration(), false, nil
		}
		return quiztypes.SessionConfiguration{}, false, fmt.Errorf("failed to load configuration for guild %s: %w", guildID, err)
	}

	var cfg quiztypes.SessionConfiguration
	// Unknown fields in old snapshots are dropped here; missing ones are
	// filled by Normalize. Loading never rejects a snapshot.
	if err := json.Unmarshal(row.Snapshot, &cfg); err != nil {
		return quiztypes.DefaultConfiguration(), false, nil
	}
	cfg.Normalize()
	return cfg, true, nil
}

// SaveConfiguration upserts a guild's snapshot.
func (db *QuizDBImpl) SaveConfiguration(ctx context.Context, guildID sharedtypes.GuildID, cfg quiztypes.SessionConfiguration) error {
	snapshot, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	row := &GuildConfiguration{
		GuildID:   guildID.String(),
		Snapshot:  snapshot,
		UpdatedAt: time.Now().UTC(),
	}
	_, err = db.DB.NewInsert().
		Model(row).
		On("CONFLICT (guild_id) DO UPDATE").
		Set("snapshot = EXCLUDED.snapshot").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save configuration for guild %s: %w", guildID, err)
	}
	return nil
}

// UpsertPlayerStats applies every increment in one transaction.
func (db *QuizDBImpl) UpsertPlayerStats(ctx context.Context, updates []PlayerStatsUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return db.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now().UTC()
		for _, u := range updates {
			row := &PlayerStats{
				UserID:       u.UserID.String(),
				GamesPlayed:  int64(u.GamesPlayed),
				SongsGuessed: int64(u.SongsGuessed),
				ExpGained:    int64(u.ExpGained),
				LastPlayedAt: now,
			}
			_, err := tx.NewInsert().
				Model(row).
				On("CONFLICT (user_id) DO UPDATE").
				Set("games_played = ps.games_played + EXCLUDED.games_played").
				Set("songs_guessed = ps.songs_guessed + EXCLUDED.songs_guessed").
				Set("exp_gained = ps.exp_gained + EXCLUDED.exp_gained").
				Set("last_played_at = EXCLUDED.last_played_at").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to upsert stats for %s: %w", u.UserID, err)
			}
		}
		return nil
	})
}

// IncrementGuildStats bumps a guild's totals.
func (db *QuizDBImpl) IncrementGuildStats(ctx context.Context, guildID sharedtypes.GuildID, games, rounds int) error {
	row := &GuildStats{
		GuildID:      guildID.String(),
		GamesPlayed:  int64(games),
		RoundsPlayed: int64(rounds),
		LastPlayedAt: time.Now().UTC(),
	}
	_, err := db.DB.NewInsert().
		Model(row).
		On("CONFLICT (guild_id) DO UPDATE").
		Set("games_played = gs.games_played + EXCLUDED.games_played").
		Set("rounds_played = gs.rounds_played + EXCLUDED.rounds_played").
		Set("last_played_at = EXCLUDED.last_played_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to increment stats for guild %s: %w", guildID, err)
	}
	return nil
}

// InsertSessionStats records one finished session.
func (db *QuizDBImpl) InsertSessionStats(ctx context.Context, stats SessionStats) error {
	if _, err := db.DB.NewInsert().Model(&stats).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert session stats: %w", err)
	}
	return nil
}

// SaveBookmarks flushes a session's bookmarked songs.
func (db *QuizDBImpl) SaveBookmarks(ctx context.Context, bookmarks []Bookmark) error {
	if len(bookmarks) == 0 {
		return nil
	}
	if _, err := db.DB.NewInsert().Model(&bookmarks).Exec(ctx); err != nil {
		return fmt.Errorf("failed to save bookmarks: %w", err)
	}
	return nil
}
