package quizservice

import (
	"context"
	"log/slog"
	"time"

	"github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/exp"
	"github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/scoreboard"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedevents"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"

	quizdb "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/infrastructure/repositories"
	quiztypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/types"
)

// roundOutcome states how a round ended. All false means the song simply
// played out.
type roundOutcome struct {
	Guessed  bool
	Skipped  bool
	TimedOut bool
}

// resolveRound closes the live round, applies scoring, announces the result,
// and either ends the session or schedules the next round. The session lock
// is held. Finish is the idempotence gate: racing guess, skip, timeout, and
// playback paths all funnel through it and only the first caller proceeds.
func (svc *SessionService) resolveRound(ctx context.Context, s *Session, outcome roundOutcome) {
	round := s.round
	if round == nil || !round.Finish() {
		return
	}
	s.stopTimers()
	s.round = nil
	s.lastRound = round
	s.playbackFailures = 0
	svc.metrics.RoundsPlayed.Inc()

	var winners []sharedevents.RoundWinner
	var statUpdates []quizdb.PlayerStatsUpdate
	if s.behavior.ScoringEnabled() {
		winners, statUpdates = svc.scoreRound(ctx, s, round)
	}
	s.behavior.OnRoundResolved(s)

	now := time.Now()
	svc.publishRoundResult(ctx, s, round, outcome, winners, now)
	svc.persistRoundStats(s, statUpdates, round.Song.ID, outcome.Guessed)

	if reason, done := s.behavior.Finished(s); done {
		svc.endSession(ctx, s, reason, false)
		return
	}
	if s.cfg.Goal > 0 && s.board.GameFinished(s.cfg.Goal) {
		svc.endSession(ctx, s, ReasonGoalReached, false)
		return
	}
	if s.durationElapsed(now) {
		svc.endSession(ctx, s, ReasonDuration, false)
		return
	}
	svc.scheduleRound(s, s.behavior.NextRoundDelay(&s.cfg))
}

// scoreRound converts the round's correct guessers into scoreboard updates
// and EXP awards. The round's point goes only to the first correct guesser;
// every correct guesser earns EXP divided by their position. Streaks advance
// for correct guessers and reset for everyone else who has played.
func (svc *SessionService) scoreRound(ctx context.Context, s *Session, round *quiztypes.Round) ([]sharedevents.RoundWinner, []quizdb.PlayerStatsUpdate) {
	for id := range s.participants {
		if round.GuessedCorrectly(id) {
			s.streaks[id]++
		} else {
			s.streaks[id] = 0
		}
	}

	correct := round.CorrectGuessers()
	if len(correct) == 0 {
		return nil, nil
	}

	updates := make([]scoreboard.ScoreUpdate, 0, len(correct))
	winners := make([]sharedevents.RoundWinner, 0, len(correct))
	stats := make([]quizdb.PlayerStatsUpdate, 0, len(correct))

	for i, id := range correct {
		rec, _ := round.Guess(id)
		position := i + 1

		voteBonus := false
		if held, err := svc.bonus.IsBonusUser(ctx, id); err == nil {
			voteBonus = held
		} else {
			svc.logger.WarnContext(ctx, "vote bonus lookup failed",
				slog.String("user_id", id.String()),
				slog.Any("error", err),
			)
		}

		modifier := s.behavior.ExpModifier(exp.ModifierArgs{
			ParticipantCount: len(s.voiceMembers),
			ArtistGuessMode:  s.cfg.GuessMode == quiztypes.GuessModeArtist,
			GroupFiltering:   s.cfg.GroupFilteringActive(),
			GuessLatencyMS:   rec.ElapsedMS,
			StreakLength:     s.streaks[id],
			BonusWindow:      s.bonusWindow,
			VoteBonus:        voteBonus,
		})
		gained := exp.GuessExp(s.baseExp, modifier, position)

		points := 0.0
		if position == 1 {
			points = rec.Points
		}

		p := s.participants[id]
		updates = append(updates, scoreboard.ScoreUpdate{
			UserID:    id,
			UserName:  p.Name,
			AvatarURL: p.AvatarURL,
			Points:    points,
			Exp:       gained,
		})
		winners = append(winners, sharedevents.RoundWinner{
			UserID:       id,
			UserName:     p.Name,
			PointsEarned: points,
			ExpGained:    gained,
			StreakLength: s.streaks[id],
		})
		stats = append(stats, quizdb.PlayerStatsUpdate{
			UserID:       id,
			SongsGuessed: 1,
			ExpGained:    gained,
		})
		svc.metrics.ExpAwarded.Add(float64(gained))
	}

	s.board.Update(updates)
	return winners, stats
}

// scoreEntries snapshots the scoreboard for an outbound payload.
func (s *Session) scoreEntries() []sharedevents.ScoreEntry {
	rows := s.board.Entries()
	firstPlace := make(map[string]struct{})
	for _, w := range s.board.Winners() {
		firstPlace[w.ID] = struct{}{}
	}
	entries := make([]sharedevents.ScoreEntry, 0, len(rows))
	for _, row := range rows {
		_, first := firstPlace[row.ID]
		entries = append(entries, sharedevents.ScoreEntry{
			ID:         row.ID,
			Name:       row.Name,
			Score:      row.Score,
			ExpGained:  row.ExpGained,
			FirstPlace: first,
		})
	}
	return entries
}

func (svc *SessionService) publishRoundResult(ctx context.Context, s *Session, round *quiztypes.Round, outcome roundOutcome, winners []sharedevents.RoundWinner, now time.Time) {
	payload := sharedevents.RoundResultPayload{
		GuildID:           s.guildID,
		RoundID:           round.ID,
		SongID:            round.Song.ID,
		SongName:          round.Song.Name,
		ArtistName:        round.Song.ArtistName,
		Guessed:           outcome.Guessed,
		Skipped:           outcome.Skipped,
		TimedOut:          outcome.TimedOut,
		Winners:           winners,
		Scores:            s.scoreEntries(),
		RemainingDuration: s.remainingDuration(now),
	}
	svc.publish(ctx, sharedevents.RoundResult, payload)
}

// persistRoundStats writes the round's increments in the background; the
// game loop never waits on the database.
func (svc *SessionService) persistRoundStats(s *Session, statUpdates []quizdb.PlayerStatsUpdate, songID sharedtypes.SongID, guessed bool) {
	guildID := s.guildID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if len(statUpdates) > 0 {
			if err := svc.repo.UpsertPlayerStats(ctx, statUpdates); err != nil {
				svc.logger.ErrorContext(ctx, "failed to persist player stats", slog.Any("error", err))
			}
		}
		if err := svc.repo.IncrementGuildStats(ctx, guildID, 0, 1); err != nil {
			svc.logger.ErrorContext(ctx, "failed to persist guild stats", slog.Any("error", err))
		}
		if err := svc.catalogRepo.IncrementPlayCount(ctx, songID, guessed); err != nil {
			svc.logger.ErrorContext(ctx, "failed to persist play count", slog.Any("error", err))
		}
	}()
}
