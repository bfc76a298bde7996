// Package sharedevents defines the watermill topics and payloads exchanged
// between the quiz core and its external collaborators (command gateway,
// voice nodes, renderers). The core never formats user-facing text; renderers
// subscribe to the outbound topics and do their own presentation.
package sharedevents

import (
	"time"

	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"

	quiztypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/types"
)

// Inbound topics (consumed by the quiz router).
const (
	SessionStartRequested = "quiz.session.start.requested"

	GuessReceived       = "quiz.guess.received"
	SkipRequested       = "quiz.skip.requested"
	HintRequested       = "quiz.hint.requested"
	BookmarkRequested   = "quiz.bookmark.requested"
	SessionEndRequested = "quiz.session.end.requested"
	TeamJoinRequested   = "quiz.team.join.requested"
	ConfigUpdated       = "quiz.config.updated"
	VoiceMemberLeft     = "voice.member.left"
	PlaybackEnded       = "playback.ended"
	PlaybackErrored     = "playback.errored"
)

// Outbound topics (published by the quiz core).
const (
	RoundStarted = "quiz.round.started"
	HintIssued   = "quiz.hint.issued"
	RoundResult  = "quiz.round.result"
	SessionEnded = "quiz.session.ended"
	PlaybackPlay = "playback.play"
	PlaybackStop = "playback.stop"
)

// SessionStartRequestedPayload opens a session for a guild.
type SessionStartRequestedPayload struct {
	GuildID        sharedtypes.GuildID   `json:"guild_id"`
	UserID         sharedtypes.UserID    `json:"user_id"`
	TextChannelID  sharedtypes.ChannelID `json:"text_channel_id"`
	VoiceChannelID sharedtypes.ChannelID `json:"voice_channel_id"`
	Kind           quiztypes.SessionKind `json:"kind"`
}

// GuessReceivedPayload carries one free-text guess.
type GuessReceivedPayload struct {
	GuildID    sharedtypes.GuildID `json:"guild_id"`
	UserID     sharedtypes.UserID  `json:"user_id"`
	UserName   string              `json:"user_name"`
	AvatarURL  string              `json:"avatar_url"`
	Text       string              `json:"text"`
	ReceivedAt time.Time           `json:"received_at"`
}

// SkipRequestedPayload is one skip vote.
type SkipRequestedPayload struct {
	GuildID sharedtypes.GuildID `json:"guild_id"`
	UserID  sharedtypes.UserID  `json:"user_id"`
}

// HintRequestedPayload is one hint request; a hint-assisted correct guess is
// worth half points.
type HintRequestedPayload struct {
	GuildID sharedtypes.GuildID `json:"guild_id"`
	UserID  sharedtypes.UserID  `json:"user_id"`
}

// BookmarkRequestedPayload asks the session to remember the current (or just
// finished) song for the user.
type BookmarkRequestedPayload struct {
	GuildID sharedtypes.GuildID `json:"guild_id"`
	UserID  sharedtypes.UserID  `json:"user_id"`
}

// TeamJoinRequestedPayload assigns a user to a team in a team session.
// Joining a second time switches teams.
type TeamJoinRequestedPayload struct {
	GuildID   sharedtypes.GuildID  `json:"guild_id"`
	UserID    sharedtypes.UserID   `json:"user_id"`
	UserName  string               `json:"user_name"`
	AvatarURL string               `json:"avatar_url"`
	Team      sharedtypes.TeamName `json:"team"`
}

// SessionEndRequestedPayload is the explicit end command.
type SessionEndRequestedPayload struct {
	GuildID sharedtypes.GuildID `json:"guild_id"`
	UserID  sharedtypes.UserID  `json:"user_id"`
}

// ConfigUpdatedPayload carries a guild's new configuration snapshot. The
// core persists it and reloads the live selector. A nil snapshot means the
// stored one changed out of band and only a reload is needed.
type ConfigUpdatedPayload struct {
	GuildID       sharedtypes.GuildID             `json:"guild_id"`
	Configuration *quiztypes.SessionConfiguration `json:"configuration,omitempty"`
}

// VoiceMemberLeftPayload reports a member leaving the session's voice channel.
type VoiceMemberLeftPayload struct {
	GuildID sharedtypes.GuildID `json:"guild_id"`
	UserID  sharedtypes.UserID  `json:"user_id"`
}

// PlaybackEndedPayload reports that the voice node finished playing a round's
// audio. RoundID gates stale deliveries.
type PlaybackEndedPayload struct {
	GuildID sharedtypes.GuildID `json:"guild_id"`
	RoundID sharedtypes.RoundID `json:"round_id"`
}

// PlaybackErroredPayload reports a playback failure for a round.
type PlaybackErroredPayload struct {
	GuildID sharedtypes.GuildID `json:"guild_id"`
	RoundID sharedtypes.RoundID `json:"round_id"`
	Error   string              `json:"error"`
}

// PlaybackPlayPayload instructs a voice node to start streaming one song.
// The core decides the seek offset and transcoder arguments; the voice node
// owns everything below that.
type PlaybackPlayPayload struct {
	GuildID        sharedtypes.GuildID   `json:"guild_id"`
	VoiceChannelID sharedtypes.ChannelID `json:"voice_channel_id"`
	RoundID        sharedtypes.RoundID   `json:"round_id"`
	SongID         sharedtypes.SongID    `json:"song_id"`
	SeekSeconds    float64               `json:"seek_seconds"`
	TranscodeArgs  []string              `json:"transcode_args,omitempty"`
}

// PlaybackStopPayload instructs a voice node to stop streaming.
type PlaybackStopPayload struct {
	GuildID sharedtypes.GuildID `json:"guild_id"`
}

// RoundStartedPayload announces a new round. The song itself is withheld
// until the round resolves.
type RoundStartedPayload struct {
	GuildID     sharedtypes.GuildID `json:"guild_id"`
	RoundID     sharedtypes.RoundID `json:"round_id"`
	RoundNumber int                 `json:"round_number"`
	StartedAt   time.Time           `json:"started_at"`
}

// HintIssuedPayload is the structured hint for one user. The core exposes
// word lengths and the artist initial; the renderer decides presentation.
type HintIssuedPayload struct {
	GuildID       sharedtypes.GuildID `json:"guild_id"`
	RoundID       sharedtypes.RoundID `json:"round_id"`
	UserID        sharedtypes.UserID  `json:"user_id"`
	WordLengths   []int               `json:"word_lengths"`
	ArtistInitial string              `json:"artist_initial"`
}

// RoundWinner is one correct guesser in first-correct-first order.
type RoundWinner struct {
	UserID       sharedtypes.UserID `json:"user_id"`
	UserName     string             `json:"user_name"`
	PointsEarned float64            `json:"points_earned"`
	ExpGained    int                `json:"exp_gained"`
	StreakLength int                `json:"streak_length"`
}

// RoundResultPayload is the structured outcome of one round; renderers turn
// this into user-facing messages.
type RoundResultPayload struct {
	GuildID           sharedtypes.GuildID `json:"guild_id"`
	RoundID           sharedtypes.RoundID `json:"round_id"`
	SongID            sharedtypes.SongID  `json:"song_id"`
	SongName          string              `json:"song_name"`
	ArtistName        string              `json:"artist_name"`
	Guessed           bool                `json:"guessed"`
	Skipped           bool                `json:"skipped"`
	TimedOut          bool                `json:"timed_out"`
	Winners           []RoundWinner       `json:"winners,omitempty"`
	Scores            []ScoreEntry        `json:"scores,omitempty"`
	RemainingDuration time.Duration       `json:"remaining_duration"`
}

// ScoreEntry is one scoreboard row at the time a result is published.
type ScoreEntry struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	ExpGained  int     `json:"exp_gained"`
	FirstPlace bool    `json:"first_place"`
}

// SessionEndedPayload announces session termination with a caller-visible
// reason. IsError distinguishes selection/playback failures from ordinary
// endings (goal reached, duration elapsed, abandonment, explicit end).
type SessionEndedPayload struct {
	GuildID      sharedtypes.GuildID `json:"guild_id"`
	Reason       string              `json:"reason"`
	IsError      bool                `json:"is_error"`
	RoundsPlayed int                 `json:"rounds_played"`
	FinalScores  []ScoreEntry        `json:"final_scores,omitempty"`
}
