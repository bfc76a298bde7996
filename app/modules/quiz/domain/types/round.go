package quiztypes

import (
	"time"

	catalogtypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog/domain/types"
	"github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/guess"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"
)

// RoundKind distinguishes the playback shape of a round.
type RoundKind string

const (
	RoundMusic     RoundKind = "music"
	RoundListening RoundKind = "listening"
	RoundClip      RoundKind = "clip"
)

// Points awarded by CheckGuess. In "both" mode an artist-only match earns the
// smaller fraction; a hint-assisted guess earns half of whichever applies.
const (
	FullMatchPoints  = 1.0
	ArtistOnlyPoints = 0.2
)

// GuessRecord is one stored attempt. A user's most recent attempt for a key
// overwrites earlier ones.
type GuessRecord struct {
	Text      string
	Correct   bool
	Points    float64
	ElapsedMS int64
}

// Round is one played song plus its guess, skip, and bookmark state. It is
// created at round start and dereferenced at round end; the session's lock
// serializes all access.
type Round struct {
	ID          sharedtypes.RoundID
	Kind        RoundKind
	Song        *catalogtypes.Song
	StartedAt   time.Time
	SeekSeconds float64

	songAnswers   []string
	artistAnswers []string

	guesses         map[sharedtypes.UserID]GuessRecord
	correctGuessers []sharedtypes.UserID
	correctSet      map[sharedtypes.UserID]struct{}
	skipVoters      map[sharedtypes.UserID]struct{}
	hintUsers       map[sharedtypes.UserID]struct{}

	// finished is set exactly once; afterwards the round accepts no guesses.
	// It is the serialization gate between racing guess, skip, timeout, and
	// playback paths.
	finished bool

	// PlaybackRetried marks that this round already burned its one automatic
	// retry after a playback error.
	PlaybackRetried bool

	// ClipReplays counts auto-replays in clip rounds.
	ClipReplays int
}

// NewRound builds a round for the given song, precomputing the accepted
// answer lists (base name, localized name, aliases, with collab artists split
// into independent answers).
func NewRound(kind RoundKind, song *catalogtypes.Song, startedAt time.Time) *Round {
	return &Round{
		ID:            sharedtypes.NewRoundID(),
		Kind:          kind,
		Song:          song,
		StartedAt:     startedAt,
		songAnswers:   song.AcceptedSongNames(),
		artistAnswers: song.AcceptedArtistNames(),
		guesses:       make(map[sharedtypes.UserID]GuessRecord),
		correctSet:    make(map[sharedtypes.UserID]struct{}),
		skipVoters:    make(map[sharedtypes.UserID]struct{}),
		hintUsers:     make(map[sharedtypes.UserID]struct{}),
	}
}

// Finished reports whether the round has been closed to new guesses.
func (r *Round) Finished() bool { return r.finished }

// Finish closes the round. The first caller wins; it reports whether this
// call was the one that closed it.
func (r *Round) Finish() bool {
	if r.finished {
		return false
	}
	r.finished = true
	return true
}

// CheckGuess evaluates a guess under the given mode and returns the point
// value it would earn: FullMatchPoints for a full match, ArtistOnlyPoints for
// an artist-only match in "both" mode, 0 for a miss. Hint usage is applied by
// the caller via HintPenalty.
func (r *Round) CheckGuess(text string, mode GuessMode, typoTolerant bool) float64 {
	songMatch := guess.CheckSimilarity(text, r.songAnswers, typoTolerant)
	artistMatch := guess.CheckSimilarity(text, r.artistAnswers, typoTolerant)

	switch mode {
	case GuessModeSong:
		if songMatch {
			return FullMatchPoints
		}
	case GuessModeArtist:
		if artistMatch {
			return FullMatchPoints
		}
	case GuessModeBoth:
		if songMatch {
			return FullMatchPoints
		}
		if artistMatch {
			return ArtistOnlyPoints
		}
	}
	return 0
}

// HintPenalty halves the earned points when the user requested a hint this
// round.
func (r *Round) HintPenalty(userID sharedtypes.UserID, points float64) float64 {
	if _, used := r.hintUsers[userID]; used {
		return points / 2
	}
	return points
}

// StoreGuess records an attempt. Correct guessers are appended to the
// first-correct-first order exactly once; a later correct guess by the same
// user does not duplicate their entry.
func (r *Round) StoreGuess(userID sharedtypes.UserID, text string, correct bool, points float64, elapsed time.Duration) {
	r.guesses[userID] = GuessRecord{
		Text:      text,
		Correct:   correct,
		Points:    points,
		ElapsedMS: elapsed.Milliseconds(),
	}
	if !correct {
		return
	}
	if _, seen := r.correctSet[userID]; seen {
		return
	}
	r.correctSet[userID] = struct{}{}
	r.correctGuessers = append(r.correctGuessers, userID)
}

// Guess returns the stored attempt for one user.
func (r *Round) Guess(userID sharedtypes.UserID) (GuessRecord, bool) {
	rec, ok := r.guesses[userID]
	return rec, ok
}

// CorrectGuessers returns the correct guessers in first-correct-first order.
// The returned slice is shared; callers must not mutate it.
func (r *Round) CorrectGuessers() []sharedtypes.UserID {
	return r.correctGuessers
}

// GuessedCorrectly reports whether the user has a correct guess this round.
func (r *Round) GuessedCorrectly(userID sharedtypes.UserID) bool {
	_, ok := r.correctSet[userID]
	return ok
}

// AddSkipVote registers a skip vote and returns the current vote count.
func (r *Round) AddSkipVote(userID sharedtypes.UserID) int {
	r.skipVoters[userID] = struct{}{}
	return len(r.skipVoters)
}

// SkipVotes returns the number of distinct skip voters.
func (r *Round) SkipVotes() int { return len(r.skipVoters) }

// UseHint marks that the user requested a hint this round.
func (r *Round) UseHint(userID sharedtypes.UserID) {
	r.hintUsers[userID] = struct{}{}
}

// HintUsed reports whether the user requested a hint this round.
func (r *Round) HintUsed(userID sharedtypes.UserID) bool {
	_, ok := r.hintUsers[userID]
	return ok
}
