// Package exp computes the EXP awarded for correct guesses. The modifier
// constants are product-tuned values carried over verbatim; they are not
// derivable from first principles and must not be adjusted casually.
package exp

import (
	"math"
	"math/rand"
	"time"
)

const (
	// SpeedBonusThresholdMS is the latency under which a guess earns the
	// fast-guess bonus.
	SpeedBonusThresholdMS = 3500
	// SpeedBonusModifier multiplies EXP for a fast guess.
	SpeedBonusModifier = 1.1
	// StreakThreshold is the consecutive-round win count at which the streak
	// bonus activates.
	StreakThreshold = 5
	// StreakModifier multiplies EXP at or above the streak threshold.
	StreakModifier = 1.2
	// ArtistGuessModifier multiplies EXP in artist guess mode. Artist-mode
	// EXP is disqualified entirely while group filtering is active.
	ArtistGuessModifier = 0.3
	// BonusWindowModifier doubles EXP on weekends and during power hours.
	BonusWindowModifier = 2.0
	// VoteBonusModifier doubles EXP for users holding an externally-verified
	// vote bonus.
	VoteBonusModifier = 2.0
	// SoloModifier is the participant-count floor applied to solo play.
	SoloModifier = 0.75
	// MaxParticipantModifier caps the 2..6 participant reward.
	MaxParticipantModifier = 1.25
	// MinSongCountForExp disables EXP for sessions whose filtered set is too
	// narrow to reward.
	MinSongCountForExp = 10
	// baseExpCurveRate is the logistic growth rate of the base EXP curve.
	baseExpCurveRate = 0.0125
	// baseExpCeiling is the asymptote of the base EXP curve.
	baseExpCeiling = 1000.0
	// baseExpJitter is the symmetric random jitter applied to base EXP.
	baseExpJitter = 0.05
)

// ModifierArgs carries every independent input of the per-guess modifier.
type ModifierArgs struct {
	ParticipantCount int
	ArtistGuessMode  bool
	GroupFiltering   bool
	GuessLatencyMS   int64
	StreakLength     int
	BonusWindow      bool
	VoteBonus        bool
}

// ParticipantModifier penalizes solo play and rewards 2..6 participants,
// flattening above 6.
func ParticipantModifier(count int) float64 {
	switch {
	case count <= 1:
		return SoloModifier
	case count <= 6:
		return math.Min(1+0.05*float64(count-1), MaxParticipantModifier)
	default:
		return 1.0
	}
}

// Modifier multiplies the independent bonus factors together. A zero return
// means the guess is disqualified from EXP (artist mode with group
// filtering active).
func Modifier(args ModifierArgs) float64 {
	if args.ArtistGuessMode && args.GroupFiltering {
		return 0
	}
	m := ParticipantModifier(args.ParticipantCount)
	if args.ArtistGuessMode {
		m *= ArtistGuessModifier
	}
	if args.GuessLatencyMS >= 0 && args.GuessLatencyMS < SpeedBonusThresholdMS {
		m *= SpeedBonusModifier
	}
	if args.StreakLength >= StreakThreshold {
		m *= StreakModifier
	}
	if args.BonusWindow {
		m *= BonusWindowModifier
	}
	if args.VoteBonus {
		m *= VoteBonusModifier
	}
	return m
}

// GuessExp returns the EXP for one correct guess:
// floor(baseExp * modifier / guessPosition), where position 1 is the first
// correct guesser.
func GuessExp(baseExp int, modifier float64, guessPosition int) int {
	if guessPosition < 1 {
		guessPosition = 1
	}
	return int(math.Floor(float64(baseExp) * modifier / float64(guessPosition)))
}

// BaseExp computes the per-session base EXP from the eligible song count via
// a logistic curve with small symmetric jitter. Sessions below the minimum
// eligible count earn nothing. Bonus windows double the base.
func BaseExp(songCount int, bonusWindow bool, rng *rand.Rand) int {
	if songCount < MinSongCountForExp {
		return 0
	}
	base := baseExpCeiling / (1 + math.Exp(1-baseExpCurveRate*float64(songCount)))
	jitter := 1 + (rng.Float64()*2-1)*baseExpJitter
	base *= jitter
	if bonusWindow {
		base *= BonusWindowModifier
	}
	return int(math.Floor(base))
}

// InBonusWindow reports whether t falls on a weekend or within one of the
// configured power hours (local time).
func InBonusWindow(t time.Time, powerHours []int) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	hour := t.Hour()
	for _, h := range powerHours {
		if h == hour {
			return true
		}
	}
	return false
}
