package quizservice

import (
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/scoreboard"
	"github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/selector"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"

	quizdb "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/infrastructure/repositories"
	quiztypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/types"
)

// participant is what the session remembers about a user who interacted with
// it. The gateway supplies name and avatar on every guess; the session keeps
// the latest.
type participant struct {
	Name      string
	AvatarURL string
}

// Session is one guild's live game. All fields behind mu; timers and
// fire-and-forget persistence goroutines re-enter through the service, which
// re-acquires the lock.
type Session struct {
	mu sync.Mutex

	guildID        sharedtypes.GuildID
	ownerID        sharedtypes.UserID
	textChannelID  sharedtypes.ChannelID
	voiceChannelID sharedtypes.ChannelID

	kind     quiztypes.SessionKind
	behavior kindBehavior
	cfg      quiztypes.SessionConfiguration

	selector *selector.Selector
	board    scoreboard.Board
	teams    *scoreboard.TeamScoreboard
	rng      *rand.Rand

	round        *quiztypes.Round
	lastRound    *quiztypes.Round
	roundsPlayed int
	startedAt    time.Time

	// baseExp is recomputed whenever the candidate set changes.
	baseExp     int
	bonusWindow bool

	participants map[sharedtypes.UserID]participant
	streaks      map[sharedtypes.UserID]int
	lives        map[sharedtypes.UserID]int
	voiceMembers map[sharedtypes.UserID]struct{}

	bookmarks []quizdb.Bookmark

	// playbackFailures counts consecutive rounds lost to playback errors;
	// two in a row ends the session.
	playbackFailures int

	limiter    *rate.Limiter
	guessTimer *time.Timer
	graceTimer *time.Timer

	ended bool
}

// stopTimers cancels the round timers. Callers hold the lock; identity gating
// on RoundID makes a late fire harmless anyway.
func (s *Session) stopTimers() {
	if s.guessTimer != nil {
		s.guessTimer.Stop()
		s.guessTimer = nil
	}
	if s.graceTimer != nil {
		s.graceTimer.Stop()
		s.graceTimer = nil
	}
}

// rememberParticipant records or refreshes a user's display info and, in
// elimination play, hands out their starting lives.
func (s *Session) rememberParticipant(id sharedtypes.UserID, name, avatarURL string) {
	if _, known := s.participants[id]; !known && s.kind == quiztypes.KindElimination {
		s.lives[id] = s.cfg.LivesPerPlayer
	}
	s.participants[id] = participant{Name: name, AvatarURL: avatarURL}
	s.voiceMembers[id] = struct{}{}
}

// remainingDuration returns how much of a timed session is left, or zero for
// untimed sessions.
func (s *Session) remainingDuration(now time.Time) time.Duration {
	limit := s.cfg.Duration()
	if limit <= 0 {
		return 0
	}
	left := s.startedAt.Add(limit).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// durationElapsed reports whether a timed session has run out.
func (s *Session) durationElapsed(now time.Time) bool {
	limit := s.cfg.Duration()
	return limit > 0 && now.Sub(s.startedAt) >= limit
}
