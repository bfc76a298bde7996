package quiztypes

import (
	"time"

	catalogtypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog/domain/types"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"
)

// ShuffleKind selects the ordering applied to the filtered set before the
// limit window is cut, not a per-draw shuffle.
type ShuffleKind string

const (
	ShuffleRandom               ShuffleKind = "random"
	ShuffleUniqueRandom         ShuffleKind = "unique_random"
	ShufflePopularity           ShuffleKind = "popularity"
	ShuffleWeightedEasy         ShuffleKind = "weighted_easy"
	ShuffleWeightedHard         ShuffleKind = "weighted_hard"
	ShuffleChronological        ShuffleKind = "chronological"
	ShuffleReverseChronological ShuffleKind = "reverse_chronological"
)

// SeekKind selects where within a song playback begins.
type SeekKind string

const (
	SeekBeginning SeekKind = "beginning"
	SeekMiddle    SeekKind = "middle"
	SeekRandom    SeekKind = "random"
)

// GuessMode selects what a guess must name to count.
type GuessMode string

const (
	GuessModeSong   GuessMode = "song"
	GuessModeArtist GuessMode = "artist"
	GuessModeBoth   GuessMode = "both"
)

// ArtistType narrows selection to soloists or groups.
type ArtistType string

const (
	ArtistTypeAll      ArtistType = "all"
	ArtistTypeSoloists ArtistType = "soloists"
	ArtistTypeGroups   ArtistType = "groups"
)

// TagPolicy is the enumerated include/exclude/exclusive handling applied to a
// tag class (OST, remix, non-default language).
type TagPolicy string

const (
	TagPolicyExclude   TagPolicy = "exclude"
	TagPolicyInclude   TagPolicy = "include"
	TagPolicyExclusive TagPolicy = "exclusive"
)

// ReleasePolicy narrows selection to official releases or allows everything.
type ReleasePolicy string

const (
	ReleaseOfficialOnly ReleasePolicy = "official"
	ReleaseAll          ReleasePolicy = "all"
)

// SessionKind selects the game variant a session runs.
type SessionKind string

const (
	KindClassic     SessionKind = "classic"
	KindElimination SessionKind = "elimination"
	KindTeams       SessionKind = "teams"
	KindCompetition SessionKind = "competition"
	KindClip        SessionKind = "clip"
	KindListening   SessionKind = "listening"
	KindMusic       SessionKind = "music"
)

// Default values applied by Normalize. They match the lower and upper bounds
// of the catalog the defaults were chosen for, not anything structural.
const (
	DefaultBeginningYear   = 1990
	DefaultEndYear         = 2100
	DefaultGoal            = 0
	DefaultDurationMin     = 0
	DefaultGuessTimeoutSec = 45
	DefaultLimitEnd        = 500
	DefaultLivesPerPlayer  = 10
	DefaultClipReplayCap   = 3
	DefaultClipEndDelaySec = 15
)

// SessionConfiguration is the per-guild snapshot of every active filter and
// toggle. It is a value object: mutations happen by storing a new snapshot
// and notifying the live session, never by writing through this struct.
//
// Unknown fields in a stored snapshot are dropped by decoding; missing fields
// are defaulted by Normalize. Loading never rejects a snapshot.
type SessionConfiguration struct {
	BeginningYear     int                   `yaml:"beginning_year" json:"beginning_year"`
	EndYear           int                   `yaml:"end_year" json:"end_year"`
	Genders           []catalogtypes.Gender `yaml:"genders" json:"genders"`
	AlternatingGender bool                  `yaml:"alternating_gender" json:"alternating_gender"`
	IncludedArtists   []sharedtypes.GroupID `yaml:"included_artists" json:"included_artists"`
	ExcludedArtists   []sharedtypes.GroupID `yaml:"excluded_artists" json:"excluded_artists"`
	SelectedArtists   []sharedtypes.GroupID `yaml:"selected_artists" json:"selected_artists"`
	IncludeSubunits   bool                  `yaml:"include_subunits" json:"include_subunits"`
	ArtistType        ArtistType            `yaml:"artist_type" json:"artist_type"`
	OSTPolicy         TagPolicy             `yaml:"ost_policy" json:"ost_policy"`
	RemixPolicy       TagPolicy             `yaml:"remix_policy" json:"remix_policy"`
	LanguagePolicy    TagPolicy             `yaml:"language_policy" json:"language_policy"`
	ReleaseType       ReleasePolicy         `yaml:"release_type" json:"release_type"`
	Shuffle           ShuffleKind           `yaml:"shuffle" json:"shuffle"`
	Seek              SeekKind              `yaml:"seek" json:"seek"`
	GuessMode         GuessMode             `yaml:"guess_mode" json:"guess_mode"`
	Goal              int                   `yaml:"goal" json:"goal"`
	DurationMin       int                   `yaml:"duration_min" json:"duration_min"`
	MultiGuess        bool                  `yaml:"multi_guess" json:"multi_guess"`
	GuessTimeoutSec   int                   `yaml:"guess_timeout_sec" json:"guess_timeout_sec"`
	TypoTolerance     bool                  `yaml:"typo_tolerance" json:"typo_tolerance"`
	HintsAllowed      bool                  `yaml:"hints_allowed" json:"hints_allowed"`
	LimitStart        int                   `yaml:"limit_start" json:"limit_start"`
	LimitEnd          int                   `yaml:"limit_end" json:"limit_end"`
	ForcePlaySongID   sharedtypes.SongID    `yaml:"force_play_song_id,omitempty" json:"force_play_song_id,omitempty"`
	LivesPerPlayer    int                   `yaml:"lives_per_player" json:"lives_per_player"`
	ClipReplayCap     int                   `yaml:"clip_replay_cap" json:"clip_replay_cap"`
	ClipEndDelaySec   int                   `yaml:"clip_end_delay_sec" json:"clip_end_delay_sec"`
}

// DefaultConfiguration returns the snapshot used for guilds that never set
// anything.
func DefaultConfiguration() SessionConfiguration {
	cfg := SessionConfiguration{LimitEnd: DefaultLimitEnd, TypoTolerance: true, HintsAllowed: true}
	cfg.Normalize()
	return cfg
}

// Normalize fills missing fields with defaults and drops invalid enum values
// back to their defaults. A stored snapshot is never rejected.
func (c *SessionConfiguration) Normalize() {
	if c.BeginningYear <= 0 {
		c.BeginningYear = DefaultBeginningYear
	}
	if c.EndYear <= 0 {
		c.EndYear = DefaultEndYear
	}
	if len(c.Genders) == 0 {
		c.Genders = catalogtypes.Genders()
	}
	switch c.ArtistType {
	case ArtistTypeAll, ArtistTypeSoloists, ArtistTypeGroups:
	default:
		c.ArtistType = ArtistTypeAll
	}
	c.OSTPolicy = normalizeTagPolicy(c.OSTPolicy, TagPolicyExclude)
	c.RemixPolicy = normalizeTagPolicy(c.RemixPolicy, TagPolicyInclude)
	c.LanguagePolicy = normalizeTagPolicy(c.LanguagePolicy, TagPolicyInclude)
	switch c.ReleaseType {
	case ReleaseOfficialOnly, ReleaseAll:
	default:
		c.ReleaseType = ReleaseOfficialOnly
	}
	switch c.Shuffle {
	case ShuffleRandom, ShuffleUniqueRandom, ShufflePopularity,
		ShuffleWeightedEasy, ShuffleWeightedHard,
		ShuffleChronological, ShuffleReverseChronological:
	default:
		c.Shuffle = ShuffleRandom
	}
	switch c.Seek {
	case SeekBeginning, SeekMiddle, SeekRandom:
	default:
		c.Seek = SeekRandom
	}
	switch c.GuessMode {
	case GuessModeSong, GuessModeArtist, GuessModeBoth:
	default:
		c.GuessMode = GuessModeSong
	}
	if c.GuessTimeoutSec <= 0 {
		c.GuessTimeoutSec = DefaultGuessTimeoutSec
	}
	if c.LimitStart < 0 {
		c.LimitStart = 0
	}
	// LimitEnd 0 is a meaningful value (an empty candidate window), so it is
	// only defaulted for brand-new configurations, via DefaultConfiguration.
	if c.LimitEnd < 0 {
		c.LimitEnd = DefaultLimitEnd
	}
	if c.LimitEnd < c.LimitStart {
		c.LimitEnd = c.LimitStart
	}
	if c.LivesPerPlayer <= 0 {
		c.LivesPerPlayer = DefaultLivesPerPlayer
	}
	if c.ClipReplayCap <= 0 {
		c.ClipReplayCap = DefaultClipReplayCap
	}
	if c.ClipEndDelaySec <= 0 {
		c.ClipEndDelaySec = DefaultClipEndDelaySec
	}
}

func normalizeTagPolicy(p TagPolicy, fallback TagPolicy) TagPolicy {
	switch p {
	case TagPolicyInclude, TagPolicyExclude, TagPolicyExclusive:
		return p
	default:
		return fallback
	}
}

// UniqueShuffle reports whether the unique-played set is active.
func (c *SessionConfiguration) UniqueShuffle() bool {
	return c.Shuffle == ShuffleUniqueRandom
}

// GroupFilteringActive reports whether a selected-groups restriction is on;
// artist-mode EXP is disqualified entirely while it is.
func (c *SessionConfiguration) GroupFilteringActive() bool {
	return len(c.SelectedArtists) > 0
}

// GuessTimeout returns the configured round inactivity timeout.
func (c *SessionConfiguration) GuessTimeout() time.Duration {
	return time.Duration(c.GuessTimeoutSec) * time.Second
}

// Duration returns the configured session duration limit, or zero when the
// session has no time limit.
func (c *SessionConfiguration) Duration() time.Duration {
	return time.Duration(c.DurationMin) * time.Minute
}
