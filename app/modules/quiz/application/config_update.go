package quizservice

import (
	"context"
	"log/slog"

	"github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/exp"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedevents"

	quiztypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/types"
)

// HandleConfigUpdated persists a guild's new configuration snapshot and
// reloads it into the live session, if any. The candidate set is rebuilt
// immediately; the live round keeps playing under the rules it started with.
// Base EXP follows the new candidate count.
func (svc *SessionService) HandleConfigUpdated(ctx context.Context, payload sharedevents.ConfigUpdatedPayload) error {
	var cfg quiztypes.SessionConfiguration
	if payload.Configuration != nil {
		cfg = *payload.Configuration
		cfg.Normalize()
		if err := svc.repo.SaveConfiguration(ctx, payload.GuildID, cfg); err != nil {
			svc.logger.ErrorContext(ctx, "failed to save configuration",
				slog.String("guild_id", payload.GuildID.String()),
				slog.Any("error", err),
			)
			return err
		}
	} else {
		stored, found, err := svc.repo.GetConfiguration(ctx, payload.GuildID)
		if err != nil {
			svc.logger.ErrorContext(ctx, "failed to reload configuration",
				slog.String("guild_id", payload.GuildID.String()),
				slog.Any("error", err),
			)
			return err
		}
		if !found {
			return nil
		}
		cfg = stored
	}

	s, ok := svc.session(payload.GuildID)
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return nil
	}

	s.cfg = cfg
	s.selector.Reload(cfg)
	s.baseExp = exp.BaseExp(len(s.selector.Songs()), s.bonusWindow, s.rng)

	svc.logger.InfoContext(ctx, "configuration reloaded",
		slog.String("guild_id", s.guildID.String()),
		slog.Int("candidate_songs", len(s.selector.Songs())),
		slog.Int("base_exp", s.baseExp),
	)
	return nil
}
