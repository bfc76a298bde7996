package sharedtypes

import "github.com/google/uuid"

// GuildID identifies a chat server. Exactly one quiz session may be live per
// guild at any time.
type GuildID string

func (id GuildID) String() string { return string(id) }

// UserID identifies a participant.
type UserID string

func (id UserID) String() string { return string(id) }

// ChannelID identifies a text or voice channel inside a guild.
type ChannelID string

func (id ChannelID) String() string { return string(id) }

// SongID is the catalog key of a song (stable across reloads).
type SongID string

func (id SongID) String() string { return string(id) }

// GroupID identifies an artist or artist group in the catalog.
type GroupID int64

// RoundID is the identity token of a single round. Late playback and timer
// events carry the RoundID they were armed for; events whose RoundID no
// longer matches the live round are dropped.
type RoundID string

func (id RoundID) String() string { return string(id) }

// NewRoundID returns a fresh round identity token.
func NewRoundID() RoundID {
	return RoundID(uuid.New().String())
}

// TeamName identifies a team on a team scoreboard.
type TeamName string

func (n TeamName) String() string { return string(n) }
