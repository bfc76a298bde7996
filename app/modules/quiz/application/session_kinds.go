package quizservice

import (
	"time"

	"github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/exp"

	quiztypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/types"
)

// kindBehavior is the per-variant policy consulted by the session loop. The
// loop itself is identical across kinds; only these answers differ.
type kindBehavior interface {
	// RoundKind is the playback shape of this variant's rounds.
	RoundKind() quiztypes.RoundKind
	// ScoringEnabled reports whether guesses are evaluated at all.
	ScoringEnabled() bool
	// ExpModifier computes the per-guess EXP modifier.
	ExpModifier(args exp.ModifierArgs) float64
	// NextRoundDelay is extra spacing between a resolved round and the next.
	NextRoundDelay(cfg *quiztypes.SessionConfiguration) time.Duration
	// OnRoundResolved runs variant bookkeeping after a scored round. The
	// session lock is held.
	OnRoundResolved(s *Session)
	// Finished reports a variant-specific termination with its reason.
	Finished(s *Session) (string, bool)
}

func behaviorFor(kind quiztypes.SessionKind) kindBehavior {
	switch kind {
	case quiztypes.KindElimination:
		return eliminationBehavior{}
	case quiztypes.KindCompetition:
		return competitionBehavior{}
	case quiztypes.KindClip:
		return clipBehavior{}
	case quiztypes.KindListening:
		return listeningBehavior{}
	case quiztypes.KindMusic:
		return musicBehavior{}
	default:
		return classicBehavior{}
	}
}

// classicBehavior also covers team play; the team rules live in the
// scoreboard, not here.
type classicBehavior struct{}

func (classicBehavior) RoundKind() quiztypes.RoundKind { return quiztypes.RoundMusic }

func (classicBehavior) ScoringEnabled() bool { return true }

func (classicBehavior) ExpModifier(args exp.ModifierArgs) float64 { return exp.Modifier(args) }

func (classicBehavior) NextRoundDelay(*quiztypes.SessionConfiguration) time.Duration { return 0 }

func (classicBehavior) OnRoundResolved(*Session) {}

func (classicBehavior) Finished(*Session) (string, bool) { return "", false }

// eliminationBehavior docks a life from every participant who failed the
// round and ends the session once at most one player survives.
type eliminationBehavior struct{ classicBehavior }

func (eliminationBehavior) OnRoundResolved(s *Session) {
	round := s.lastRound
	if round == nil {
		return
	}
	for id := range s.lives {
		if round.GuessedCorrectly(id) {
			continue
		}
		s.lives[id]--
		if s.lives[id] <= 0 {
			delete(s.lives, id)
			s.board.RemovePlayer(id)
		}
	}
}

func (eliminationBehavior) Finished(s *Session) (string, bool) {
	// Nobody is eliminated before they have joined a round.
	if len(s.participants) < 2 {
		return "", false
	}
	if len(s.lives) <= 1 {
		return ReasonElimination, true
	}
	return "", false
}

// competitionBehavior levels the field: every correct guess earns unmodified
// base EXP regardless of speed, streaks, or bonuses.
type competitionBehavior struct{ classicBehavior }

func (competitionBehavior) ExpModifier(exp.ModifierArgs) float64 { return 1.0 }

// clipBehavior plays short clips and leaves a reveal window between rounds.
type clipBehavior struct{ classicBehavior }

func (clipBehavior) RoundKind() quiztypes.RoundKind { return quiztypes.RoundClip }

func (clipBehavior) NextRoundDelay(cfg *quiztypes.SessionConfiguration) time.Duration {
	return time.Duration(cfg.ClipEndDelaySec) * time.Second
}

// listeningBehavior plays full songs with reveals and no scoring.
type listeningBehavior struct{ classicBehavior }

func (listeningBehavior) RoundKind() quiztypes.RoundKind { return quiztypes.RoundListening }
func (listeningBehavior) ScoringEnabled() bool           { return false }

// musicBehavior is the jukebox: full songs, no scoring, no reveal pacing
// beyond the songs themselves.
type musicBehavior struct{ classicBehavior }

func (musicBehavior) RoundKind() quiztypes.RoundKind { return quiztypes.RoundListening }
func (musicBehavior) ScoringEnabled() bool           { return false }
