package quizservice

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/Blind-Test-Club/songquiz-bot/app/modules/bonus"
	"github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog"
	"github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/exp"
	"github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/scoreboard"
	"github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/selector"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"
	"github.com/Blind-Test-Club/songquiz-bot/internal/eventbus"
	"github.com/Blind-Test-Club/songquiz-bot/internal/eventutil"
	"github.com/Blind-Test-Club/songquiz-bot/internal/observability"

	catalogdb "github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog/infrastructure/repositories"
	quizdb "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/infrastructure/repositories"
	quiztypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/types"
)

// persistTimeout bounds the fire-and-forget persistence goroutines; the game
// loop never waits on the database.
const persistTimeout = 10 * time.Second

// Tunables carries the process-wide quiz settings that are not part of any
// guild's configuration snapshot.
type Tunables struct {
	RoundStartDelay  time.Duration
	MultiGuessWindow time.Duration
	PowerHours       []int
}

// SessionService owns every live session, keyed by guild. All mutating paths
// converge here: commands from the router, timer callbacks, and playback
// reports.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[sharedtypes.GuildID]*Session

	catalog     *catalog.Catalog
	catalogRepo catalogdb.Repository
	repo        quizdb.Repository
	bonus       bonus.Store
	playback    Playback
	presence    VoicePresence
	bus         eventbus.EventBus

	logger  *slog.Logger
	metrics *observability.QuizMetrics
	tracer  trace.Tracer

	tunables Tunables
	newRand  func() *rand.Rand
}

var _ Service = (*SessionService)(nil)

// NewSessionService wires the orchestrator.
func NewSessionService(
	cat *catalog.Catalog,
	catalogRepo catalogdb.Repository,
	repo quizdb.Repository,
	bonusStore bonus.Store,
	playback Playback,
	presence VoicePresence,
	bus eventbus.EventBus,
	logger *slog.Logger,
	metrics *observability.QuizMetrics,
	tracer trace.Tracer,
	tunables Tunables,
) *SessionService {
	if tunables.RoundStartDelay <= 0 {
		tunables.RoundStartDelay = 2 * time.Second
	}
	if tunables.MultiGuessWindow <= 0 {
		tunables.MultiGuessWindow = 1500 * time.Millisecond
	}
	return &SessionService{
		sessions:    make(map[sharedtypes.GuildID]*Session),
		catalog:     cat,
		catalogRepo: catalogRepo,
		repo:        repo,
		bonus:       bonusStore,
		playback:    playback,
		presence:    presence,
		bus:         bus,
		logger:      logger,
		metrics:     metrics,
		tracer:      tracer,
		tunables:    tunables,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// publish marshals and publishes one outbound event. Publish failures are
// logged, never propagated into the game loop.
func (svc *SessionService) publish(ctx context.Context, topic string, payload any) {
	msg, err := eventutil.NewMessage(payload)
	if err != nil {
		svc.logger.ErrorContext(ctx, "failed to marshal event",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
		return
	}
	if err := svc.bus.Publish(topic, msg); err != nil {
		svc.logger.ErrorContext(ctx, "failed to publish event",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
	}
}

// session looks up a guild's live session.
func (svc *SessionService) session(guildID sharedtypes.GuildID) (*Session, bool) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	s, ok := svc.sessions[guildID]
	return s, ok
}

// SessionCount returns the number of live sessions.
func (svc *SessionService) SessionCount() int {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return len(svc.sessions)
}

// CreateSession opens a session for a guild, loads its configuration
// snapshot, builds the candidate set, and starts the first round. A guild
// runs at most one session at a time.
func (svc *SessionService) CreateSession(ctx context.Context, req CreateSessionRequest) error {
	ctx, span := svc.tracer.Start(ctx, "quiz.create_session",
		trace.WithAttributes(
			attribute.String("guild_id", req.GuildID.String()),
			attribute.String("kind", string(req.Kind)),
		))
	defer span.End()

	cfg, found, err := svc.repo.GetConfiguration(ctx, req.GuildID)
	if err != nil {
		svc.logger.WarnContext(ctx, "failed to load configuration, using defaults",
			slog.String("guild_id", req.GuildID.String()),
			slog.Any("error", err),
		)
		found = false
	}
	if !found {
		cfg = quiztypes.DefaultConfiguration()
	}

	rng := svc.newRand()
	sel := selector.New(svc.catalog, cfg, rng)
	if sel.Empty() {
		return ErrNoMatchingSongs
	}

	now := time.Now()
	s := &Session{
		guildID:        req.GuildID,
		ownerID:        req.OwnerID,
		textChannelID:  req.TextChannelID,
		voiceChannelID: req.VoiceChannelID,
		kind:           req.Kind,
		behavior:       behaviorFor(req.Kind),
		cfg:            cfg,
		selector:       sel,
		rng:            rng,
		startedAt:      now,
		bonusWindow:    exp.InBonusWindow(now, svc.tunables.PowerHours),
		participants:   make(map[sharedtypes.UserID]participant),
		streaks:        make(map[sharedtypes.UserID]int),
		lives:          make(map[sharedtypes.UserID]int),
		voiceMembers:   make(map[sharedtypes.UserID]struct{}),
		limiter:        rate.NewLimiter(rate.Every(svc.tunables.RoundStartDelay), 1),
	}
	if req.Kind == quiztypes.KindTeams {
		s.teams = scoreboard.NewTeams()
		s.board = s.teams
	} else {
		s.board = scoreboard.New()
	}
	s.baseExp = exp.BaseExp(len(sel.Songs()), s.bonusWindow, rng)

	if members, err := svc.presence.Members(ctx, req.GuildID, req.VoiceChannelID); err != nil {
		svc.logger.WarnContext(ctx, "voice presence lookup failed",
			slog.String("guild_id", req.GuildID.String()),
			slog.Any("error", err),
		)
	} else {
		for _, id := range members {
			s.voiceMembers[id] = struct{}{}
		}
	}
	s.voiceMembers[req.OwnerID] = struct{}{}

	svc.mu.Lock()
	if _, exists := svc.sessions[req.GuildID]; exists {
		svc.mu.Unlock()
		return ErrSessionExists
	}
	svc.sessions[req.GuildID] = s
	svc.mu.Unlock()

	svc.metrics.SessionsActive.Inc()
	svc.logger.InfoContext(ctx, "session created",
		slog.String("guild_id", req.GuildID.String()),
		slog.String("kind", string(req.Kind)),
		slog.Int("candidate_songs", len(sel.Songs())),
		slog.Int("base_exp", s.baseExp),
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	svc.scheduleRound(s, 0)
	return nil
}

// Shutdown ends every live session with the shutdown reason.
func (svc *SessionService) Shutdown(ctx context.Context) {
	svc.mu.RLock()
	sessions := make([]*Session, 0, len(svc.sessions))
	for _, s := range svc.sessions {
		sessions = append(sessions, s)
	}
	svc.mu.RUnlock()

	for _, s := range sessions {
		s.mu.Lock()
		svc.endSession(ctx, s, ReasonShutdown, false)
		s.mu.Unlock()
	}
}
