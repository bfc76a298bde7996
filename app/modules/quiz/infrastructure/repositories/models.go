package quizdb

import (
	"time"

	"github.com/uptrace/bun"
)

// PlayerStats accumulates a user's lifetime quiz statistics.
type PlayerStats struct {
	bun.BaseModel `bun:"table:player_stats,alias:ps"`

	UserID       string    `bun:"user_id,pk"`
	GamesPlayed  int64     `bun:"games_played,notnull,default:0"`
	SongsGuessed int64     `bun:"songs_guessed,notnull,default:0"`
	ExpGained    int64     `bun:"exp_gained,notnull,default:0"`
	LastPlayedAt time.Time `bun:"last_played_at,nullzero"`
}

// GuildStats accumulates per-guild totals.
type GuildStats struct {
	bun.BaseModel `bun:"table:guild_stats,alias:gs"`

	GuildID      string    `bun:"guild_id,pk"`
	GamesPlayed  int64     `bun:"games_played,notnull,default:0"`
	RoundsPlayed int64     `bun:"rounds_played,notnull,default:0"`
	LastPlayedAt time.Time `bun:"last_played_at,nullzero"`
}

// SessionStats is one finished session's record.
type SessionStats struct {
	bun.BaseModel `bun:"table:session_stats,alias:ss"`

	ID           int64     `bun:"id,pk,autoincrement"`
	GuildID      string    `bun:"guild_id,notnull"`
	Kind         string    `bun:"kind,notnull"`
	RoundsPlayed int       `bun:"rounds_played,notnull"`
	StartedAt    time.Time `bun:"started_at,notnull"`
	EndedAt      time.Time `bun:"ended_at,notnull"`
	Reason       string    `bun:"reason,notnull"`
	IsError      bool      `bun:"is_error,notnull,default:false"`
}

// Bookmark is one song a participant asked to keep from a session.
type Bookmark struct {
	bun.BaseModel `bun:"table:bookmarks,alias:b"`

	ID        int64     `bun:"id,pk,autoincrement"`
	UserID    string    `bun:"user_id,notnull"`
	GuildID   string    `bun:"guild_id,notnull"`
	SongID    string    `bun:"song_id,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// GuildConfiguration stores a guild's SessionConfiguration snapshot as JSON.
// Unknown fields in old snapshots are dropped on load; missing fields are
// defaulted.
type GuildConfiguration struct {
	bun.BaseModel `bun:"table:guild_configurations,alias:gc"`

	GuildID   string    `bun:"guild_id,pk"`
	Snapshot  []byte    `bun:"snapshot,type:jsonb,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
