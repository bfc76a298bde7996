package quizservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Blind-Test-Club/songquiz-bot/app/modules/bonus"
	"github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedevents"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"
	"github.com/Blind-Test-Club/songquiz-bot/internal/observability"

	catalogtypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog/domain/types"
	quiztypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/types"
)

const (
	testGuild sharedtypes.GuildID   = "guild-1"
	testOwner sharedtypes.UserID    = "owner"
	testText  sharedtypes.ChannelID = "text-1"
	testVoice sharedtypes.ChannelID = "voice-1"
)

func singleSongCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Build([]catalogtypes.Song{{
		ID:          "s1",
		Name:        "Test Song",
		ArtistID:    1,
		ArtistName:  "Tester",
		Gender:      catalogtypes.GenderFemale,
		PublishDate: time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC),
		Release:     catalogtypes.ReleaseOfficial,
		DurationSec: 200,
	}}, nil)
	require.NoError(t, err)
	return cat
}

type testEnv struct {
	svc      *SessionService
	repo     *fakeQuizRepo
	catRepo  *fakeCatalogRepo
	playback *fakePlayback
	bus      *fakeBus
}

func newTestEnv(t *testing.T, cat *catalog.Catalog, repo *fakeQuizRepo, members ...sharedtypes.UserID) *testEnv {
	t.Helper()
	if repo == nil {
		repo = &fakeQuizRepo{}
	}
	env := &testEnv{
		repo:     repo,
		catRepo:  &fakeCatalogRepo{},
		playback: &fakePlayback{},
		bus:      newFakeBus(),
	}
	env.svc = NewSessionService(
		cat,
		env.catRepo,
		env.repo,
		bonus.NoopStore{},
		env.playback,
		&fakePresence{members: members},
		env.bus,
		slog.Default(),
		observability.NewQuizMetrics(prometheus.NewRegistry()),
		noop.NewTracerProvider().Tracer("test"),
		Tunables{RoundStartDelay: time.Millisecond, MultiGuessWindow: 200 * time.Millisecond},
	)
	env.svc.newRand = func() *rand.Rand { return rand.New(rand.NewSource(1)) }
	t.Cleanup(func() { env.svc.Shutdown(context.Background()) })
	return env
}

func (e *testEnv) createSession(t *testing.T, kind quiztypes.SessionKind) {
	t.Helper()
	err := e.svc.CreateSession(context.Background(), CreateSessionRequest{
		GuildID:        testGuild,
		OwnerID:        testOwner,
		TextChannelID:  testText,
		VoiceChannelID: testVoice,
		Kind:           kind,
	})
	require.NoError(t, err)
}

func (e *testEnv) liveRound() *quiztypes.Round {
	s, ok := e.svc.session(testGuild)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

func (e *testEnv) waitForRound(t *testing.T) *quiztypes.Round {
	t.Helper()
	var round *quiztypes.Round
	require.Eventually(t, func() bool {
		round = e.liveRound()
		return round != nil
	}, 2*time.Second, 5*time.Millisecond, "no round started")
	return round
}

func (e *testEnv) waitForNextRound(t *testing.T, previous sharedtypes.RoundID) *quiztypes.Round {
	t.Helper()
	var round *quiztypes.Round
	require.Eventually(t, func() bool {
		round = e.liveRound()
		return round != nil && round.ID != previous
	}, 2*time.Second, 5*time.Millisecond, "no follow-up round started")
	return round
}

func (e *testEnv) withSession(t *testing.T, fn func(s *Session)) {
	t.Helper()
	s, ok := e.svc.session(testGuild)
	require.True(t, ok, "no live session")
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

func (e *testEnv) guess(t *testing.T, user sharedtypes.UserID, text string) {
	t.Helper()
	err := e.svc.HandleGuess(context.Background(), sharedevents.GuessReceivedPayload{
		GuildID:    testGuild,
		UserID:     user,
		UserName:   user.String(),
		Text:       text,
		ReceivedAt: time.Now(),
	})
	require.NoError(t, err)
}

func lastPayload[T any](t *testing.T, bus *fakeBus, topic string) T {
	t.Helper()
	payloads := bus.payloads(topic)
	require.NotEmpty(t, payloads, "nothing published on %s", topic)
	var v T
	require.NoError(t, json.Unmarshal(payloads[len(payloads)-1], &v))
	return v
}

func TestCreateSessionStartsFirstRound(t *testing.T) {
	env := newTestEnv(t, singleSongCatalog(t), nil, testOwner)
	env.createSession(t, quiztypes.KindClassic)
	assert.Equal(t, 1, env.svc.SessionCount())

	round := env.waitForRound(t)
	require.Eventually(t, func() bool {
		return len(env.playback.playCalls()) > 0
	}, 2*time.Second, 5*time.Millisecond)

	plays := env.playback.playCalls()
	assert.Equal(t, round.ID, plays[0].RoundID)
	assert.Equal(t, sharedtypes.SongID("s1"), plays[0].SongID)
	assert.Empty(t, plays[0].TranscodeArgs)

	started := lastPayload[sharedevents.RoundStartedPayload](t, env.bus, sharedevents.RoundStarted)
	assert.Equal(t, round.ID, started.RoundID)
	assert.Equal(t, 1, started.RoundNumber)
}

func TestBeginRoundIgnoredWhileRoundLive(t *testing.T) {
	env := newTestEnv(t, singleSongCatalog(t), nil, testOwner)
	env.createSession(t, quiztypes.KindClassic)
	round := env.waitForRound(t)

	// A duplicate timer fire must not stack a second round on the live one.
	env.svc.beginRound(context.Background(), testGuild)

	current := env.liveRound()
	require.NotNil(t, current)
	assert.Equal(t, round.ID, current.ID)
	env.withSession(t, func(s *Session) {
		assert.Equal(t, 1, s.roundsPlayed)
	})
	assert.Len(t, env.bus.payloads(sharedevents.RoundStarted), 1)
}

func TestCreateSessionRejectsSecond(t *testing.T) {
	env := newTestEnv(t, singleSongCatalog(t), nil, testOwner)
	env.createSession(t, quiztypes.KindClassic)

	err := env.svc.CreateSession(context.Background(), CreateSessionRequest{
		GuildID: testGuild, OwnerID: testOwner, Kind: quiztypes.KindClassic,
	})
	assert.ErrorIs(t, err, ErrSessionExists)
	assert.Equal(t, 1, env.svc.SessionCount())
}

func TestCreateSessionNoMatchingSongs(t *testing.T) {
	cfg := quiztypes.DefaultConfiguration()
	cfg.LimitEnd = 0
	env := newTestEnv(t, singleSongCatalog(t), &fakeQuizRepo{cfg: cfg, cfgFound: true}, testOwner)

	err := env.svc.CreateSession(context.Background(), CreateSessionRequest{
		GuildID: testGuild, OwnerID: testOwner, Kind: quiztypes.KindClassic,
	})
	assert.ErrorIs(t, err, ErrNoMatchingSongs)
	assert.Zero(t, env.svc.SessionCount())
}

func TestCorrectGuessResolvesRound(t *testing.T) {
	env := newTestEnv(t, singleSongCatalog(t), nil, testOwner)
	env.createSession(t, quiztypes.KindClassic)
	round := env.waitForRound(t)

	env.guess(t, "alice", "test song")

	result := lastPayload[sharedevents.RoundResultPayload](t, env.bus, sharedevents.RoundResult)
	assert.Equal(t, round.ID, result.RoundID)
	assert.True(t, result.Guessed)
	assert.Equal(t, "Test Song", result.SongName)
	require.Len(t, result.Winners, 1)
	assert.Equal(t, sharedtypes.UserID("alice"), result.Winners[0].UserID)
	assert.Equal(t, 1.0, result.Winners[0].PointsEarned)
	assert.Equal(t, 1, result.Winners[0].StreakLength)
	require.Len(t, result.Scores, 1)
	assert.Equal(t, 1.0, result.Scores[0].Score)
	assert.True(t, result.Scores[0].FirstPlace)

	// The session keeps going: a fresh round follows.
	next := env.waitForNextRound(t, round.ID)
	assert.NotEqual(t, round.ID, next.ID)

	require.Eventually(t, func() bool {
		return len(env.catRepo.playCountCalls()) > 0
	}, 2*time.Second, 5*time.Millisecond)
	call := env.catRepo.playCountCalls()[0]
	assert.Equal(t, sharedtypes.SongID("s1"), call.SongID)
	assert.True(t, call.Guessed)
}

func TestWrongGuessKeepsRoundOpen(t *testing.T) {
	env := newTestEnv(t, singleSongCatalog(t), nil, testOwner)
	env.createSession(t, quiztypes.KindClassic)
	round := env.waitForRound(t)

	env.guess(t, "alice", "completely wrong")

	assert.False(t, round.Finished())
	assert.Empty(t, env.bus.payloads(sharedevents.RoundResult))
	rec, ok := round.Guess("alice")
	require.True(t, ok)
	assert.False(t, rec.Correct)
}

func TestMultiGuessGraceWindow(t *testing.T) {
	cfg := quiztypes.DefaultConfiguration()
	cfg.MultiGuess = true
	env := newTestEnv(t, singleSongCatalog(t), &fakeQuizRepo{cfg: cfg, cfgFound: true}, testOwner)
	env.createSession(t, quiztypes.KindClassic)
	round := env.waitForRound(t)

	env.guess(t, "alice", "test song")
	assert.False(t, round.Finished(), "grace window holds the round open")

	env.guess(t, "bob", "test song")

	require.Eventually(t, func() bool {
		return len(env.bus.payloads(sharedevents.RoundResult)) > 0
	}, 2*time.Second, 5*time.Millisecond)

	result := lastPayload[sharedevents.RoundResultPayload](t, env.bus, sharedevents.RoundResult)
	require.Len(t, result.Winners, 2)
	assert.Equal(t, sharedtypes.UserID("alice"), result.Winners[0].UserID)
	assert.Equal(t, 1.0, result.Winners[0].PointsEarned)
	assert.Equal(t, sharedtypes.UserID("bob"), result.Winners[1].UserID)
	assert.Equal(t, 0.0, result.Winners[1].PointsEarned, "only the first correct guess scores the point")
}

func TestGoalReachedEndsSession(t *testing.T) {
	cfg := quiztypes.DefaultConfiguration()
	cfg.Goal = 1
	env := newTestEnv(t, singleSongCatalog(t), &fakeQuizRepo{cfg: cfg, cfgFound: true}, testOwner)
	env.createSession(t, quiztypes.KindClassic)
	env.waitForRound(t)

	env.guess(t, "alice", "test song")

	assert.Zero(t, env.svc.SessionCount())
	ended := lastPayload[sharedevents.SessionEndedPayload](t, env.bus, sharedevents.SessionEnded)
	assert.Equal(t, ReasonGoalReached, ended.Reason)
	assert.False(t, ended.IsError)
	assert.Equal(t, 1, ended.RoundsPlayed)
	require.Len(t, ended.FinalScores, 1)
	assert.Equal(t, 1.0, ended.FinalScores[0].Score)

	assert.GreaterOrEqual(t, env.playback.stopCount(), 1)

	require.Eventually(t, func() bool {
		return len(env.repo.sessionRecords()) > 0
	}, 2*time.Second, 5*time.Millisecond)
	record := env.repo.sessionRecords()[0]
	assert.Equal(t, testGuild.String(), record.GuildID)
	assert.Equal(t, ReasonGoalReached, record.Reason)
	assert.Equal(t, 1, record.RoundsPlayed)
}

func TestOwnerSkipResolvesImmediately(t *testing.T) {
	env := newTestEnv(t, singleSongCatalog(t), nil, testOwner, "u2", "u3")
	env.createSession(t, quiztypes.KindClassic)
	env.waitForRound(t)

	require.NoError(t, env.svc.HandleSkip(context.Background(), sharedevents.SkipRequestedPayload{
		GuildID: testGuild, UserID: testOwner,
	}))

	result := lastPayload[sharedevents.RoundResultPayload](t, env.bus, sharedevents.RoundResult)
	assert.True(t, result.Skipped)
	assert.False(t, result.Guessed)
}

func TestSkipNeedsMajority(t *testing.T) {
	env := newTestEnv(t, singleSongCatalog(t), nil, testOwner, "u2", "u3")
	env.createSession(t, quiztypes.KindClassic)
	round := env.waitForRound(t)

	require.NoError(t, env.svc.HandleSkip(context.Background(), sharedevents.SkipRequestedPayload{
		GuildID: testGuild, UserID: "u2",
	}))
	assert.False(t, round.Finished(), "one of three voters is not a majority")

	require.NoError(t, env.svc.HandleSkip(context.Background(), sharedevents.SkipRequestedPayload{
		GuildID: testGuild, UserID: "u3",
	}))
	result := lastPayload[sharedevents.RoundResultPayload](t, env.bus, sharedevents.RoundResult)
	assert.True(t, result.Skipped)
}

func TestGuessTimeout(t *testing.T) {
	env := newTestEnv(t, singleSongCatalog(t), nil, testOwner)
	env.createSession(t, quiztypes.KindClassic)
	round := env.waitForRound(t)

	// A stale timer fire against a different round is ignored.
	env.svc.handleGuessTimeout(context.Background(), testGuild, sharedtypes.RoundID("stale"))
	assert.False(t, round.Finished())

	env.svc.handleGuessTimeout(context.Background(), testGuild, round.ID)
	result := lastPayload[sharedevents.RoundResultPayload](t, env.bus, sharedevents.RoundResult)
	assert.True(t, result.TimedOut)
	assert.Empty(t, result.Winners)
}

func TestPlaybackEndedResolvesRound(t *testing.T) {
	env := newTestEnv(t, singleSongCatalog(t), nil, testOwner)
	env.createSession(t, quiztypes.KindClassic)
	round := env.waitForRound(t)

	require.NoError(t, env.svc.HandlePlaybackEnded(context.Background(), sharedevents.PlaybackEndedPayload{
		GuildID: testGuild, RoundID: round.ID,
	}))

	result := lastPayload[sharedevents.RoundResultPayload](t, env.bus, sharedevents.RoundResult)
	assert.Equal(t, round.ID, result.RoundID)
	assert.False(t, result.Guessed)
	assert.False(t, result.Skipped)
	assert.False(t, result.TimedOut)
}

func TestPlaybackErrorRetriesThenEnds(t *testing.T) {
	env := newTestEnv(t, singleSongCatalog(t), nil, testOwner)
	env.createSession(t, quiztypes.KindClassic)
	round := env.waitForRound(t)

	// A report for an unknown round changes nothing.
	require.NoError(t, env.svc.HandlePlaybackErrored(context.Background(), sharedevents.PlaybackErroredPayload{
		GuildID: testGuild, RoundID: sharedtypes.RoundID("stale"), Error: "boom",
	}))
	assert.Equal(t, 1, env.svc.SessionCount())

	// First failure burns the retry: the round is discarded and replaced.
	require.NoError(t, env.svc.HandlePlaybackErrored(context.Background(), sharedevents.PlaybackErroredPayload{
		GuildID: testGuild, RoundID: round.ID, Error: "boom",
	}))
	assert.Equal(t, 1, env.svc.SessionCount())
	next := env.waitForNextRound(t, round.ID)

	// A second consecutive failure gives up.
	require.NoError(t, env.svc.HandlePlaybackErrored(context.Background(), sharedevents.PlaybackErroredPayload{
		GuildID: testGuild, RoundID: next.ID, Error: "boom again",
	}))
	assert.Zero(t, env.svc.SessionCount())

	ended := lastPayload[sharedevents.SessionEndedPayload](t, env.bus, sharedevents.SessionEnded)
	assert.Equal(t, ReasonPlaybackFailure, ended.Reason)
	assert.True(t, ended.IsError)
}

func TestPlaybackRecoveryResetsFailureCount(t *testing.T) {
	env := newTestEnv(t, singleSongCatalog(t), nil, testOwner)
	env.createSession(t, quiztypes.KindClassic)
	round := env.waitForRound(t)

	require.NoError(t, env.svc.HandlePlaybackErrored(context.Background(), sharedevents.PlaybackErroredPayload{
		GuildID: testGuild, RoundID: round.ID, Error: "boom",
	}))
	next := env.waitForNextRound(t, round.ID)

	// The replacement round resolving normally clears the failure streak,
	// so a later error is a fresh first failure.
	env.guess(t, "alice", "test song")
	third := env.waitForNextRound(t, next.ID)

	require.NoError(t, env.svc.HandlePlaybackErrored(context.Background(), sharedevents.PlaybackErroredPayload{
		GuildID: testGuild, RoundID: third.ID, Error: "boom",
	}))
	assert.Equal(t, 1, env.svc.SessionCount())
}

func TestVoiceMemberLeft(t *testing.T) {
	t.Run("owner leaving transfers ownership", func(t *testing.T) {
		env := newTestEnv(t, singleSongCatalog(t), nil, testOwner, "u2")
		env.createSession(t, quiztypes.KindClassic)
		env.waitForRound(t)

		require.NoError(t, env.svc.HandleVoiceMemberLeft(context.Background(), sharedevents.VoiceMemberLeftPayload{
			GuildID: testGuild, UserID: testOwner,
		}))
		assert.Equal(t, 1, env.svc.SessionCount())
		env.withSession(t, func(s *Session) {
			assert.Equal(t, sharedtypes.UserID("u2"), s.ownerID)
		})
	})

	t.Run("ownership lands on a remaining member", func(t *testing.T) {
		env := newTestEnv(t, singleSongCatalog(t), nil, testOwner, "u2", "u3", "u4")
		env.createSession(t, quiztypes.KindClassic)
		env.waitForRound(t)

		require.NoError(t, env.svc.HandleVoiceMemberLeft(context.Background(), sharedevents.VoiceMemberLeftPayload{
			GuildID: testGuild, UserID: testOwner,
		}))
		env.withSession(t, func(s *Session) {
			assert.Contains(t, []sharedtypes.UserID{"u2", "u3", "u4"}, s.ownerID)
			_, present := s.voiceMembers[s.ownerID]
			assert.True(t, present)
		})
	})

	t.Run("emptied channel abandons the session", func(t *testing.T) {
		env := newTestEnv(t, singleSongCatalog(t), nil, testOwner)
		env.createSession(t, quiztypes.KindClassic)
		env.waitForRound(t)

		require.NoError(t, env.svc.HandleVoiceMemberLeft(context.Background(), sharedevents.VoiceMemberLeftPayload{
			GuildID: testGuild, UserID: testOwner,
		}))
		assert.Zero(t, env.svc.SessionCount())
		ended := lastPayload[sharedevents.SessionEndedPayload](t, env.bus, sharedevents.SessionEnded)
		assert.Equal(t, ReasonAbandoned, ended.Reason)
	})
}

func TestEliminationEndsWithLastSurvivor(t *testing.T) {
	cfg := quiztypes.DefaultConfiguration()
	cfg.LivesPerPlayer = 1
	env := newTestEnv(t, singleSongCatalog(t), &fakeQuizRepo{cfg: cfg, cfgFound: true}, testOwner)
	env.createSession(t, quiztypes.KindElimination)
	env.waitForRound(t)

	env.guess(t, "u2", "totally wrong")
	env.guess(t, testOwner, "test song")

	assert.Zero(t, env.svc.SessionCount())
	ended := lastPayload[sharedevents.SessionEndedPayload](t, env.bus, sharedevents.SessionEnded)
	assert.Equal(t, ReasonElimination, ended.Reason)
}

func TestHintHalvesPoints(t *testing.T) {
	env := newTestEnv(t, singleSongCatalog(t), nil, testOwner)
	env.createSession(t, quiztypes.KindClassic)
	round := env.waitForRound(t)

	require.NoError(t, env.svc.HandleHint(context.Background(), sharedevents.HintRequestedPayload{
		GuildID: testGuild, UserID: "alice",
	}))

	hint := lastPayload[sharedevents.HintIssuedPayload](t, env.bus, sharedevents.HintIssued)
	assert.Equal(t, round.ID, hint.RoundID)
	assert.Equal(t, []int{4, 4}, hint.WordLengths)
	assert.Equal(t, "T", hint.ArtistInitial)

	env.guess(t, "alice", "test song")
	result := lastPayload[sharedevents.RoundResultPayload](t, env.bus, sharedevents.RoundResult)
	require.Len(t, result.Winners, 1)
	assert.Equal(t, 0.5, result.Winners[0].PointsEarned)
}

func TestHintsCanBeDisabled(t *testing.T) {
	cfg := quiztypes.DefaultConfiguration()
	cfg.HintsAllowed = false
	env := newTestEnv(t, singleSongCatalog(t), &fakeQuizRepo{cfg: cfg, cfgFound: true}, testOwner)
	env.createSession(t, quiztypes.KindClassic)
	env.waitForRound(t)

	require.NoError(t, env.svc.HandleHint(context.Background(), sharedevents.HintRequestedPayload{
		GuildID: testGuild, UserID: "alice",
	}))
	assert.Empty(t, env.bus.payloads(sharedevents.HintIssued))
}

func TestTeamPlayScoresTheGuesserTeam(t *testing.T) {
	env := newTestEnv(t, singleSongCatalog(t), nil, testOwner)
	env.createSession(t, quiztypes.KindTeams)
	env.waitForRound(t)

	join := func(user sharedtypes.UserID, team sharedtypes.TeamName) {
		require.NoError(t, env.svc.HandleTeamJoin(context.Background(), sharedevents.TeamJoinRequestedPayload{
			GuildID: testGuild, UserID: user, UserName: user.String(), Team: team,
		}))
	}
	join("alice", "red")
	join("bob", "blue")

	env.guess(t, "alice", "test song")

	result := lastPayload[sharedevents.RoundResultPayload](t, env.bus, sharedevents.RoundResult)
	assert.True(t, result.Guessed)
	env.withSession(t, func(s *Session) {
		red, ok := s.teams.Team("red")
		require.True(t, ok)
		assert.Equal(t, 1.0, red.Score())
	})
}

func TestClipRoundsReplayUpToCap(t *testing.T) {
	cfg := quiztypes.DefaultConfiguration()
	cfg.ClipReplayCap = 1
	env := newTestEnv(t, singleSongCatalog(t), &fakeQuizRepo{cfg: cfg, cfgFound: true}, testOwner)
	env.createSession(t, quiztypes.KindClip)
	round := env.waitForRound(t)

	require.Eventually(t, func() bool {
		return len(env.playback.playCalls()) > 0
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"-t", "10"}, env.playback.playCalls()[0].TranscodeArgs)

	// First playback end replays the clip instead of resolving.
	require.NoError(t, env.svc.HandlePlaybackEnded(context.Background(), sharedevents.PlaybackEndedPayload{
		GuildID: testGuild, RoundID: round.ID,
	}))
	assert.False(t, round.Finished())
	assert.Equal(t, 1, round.ClipReplays)
	require.Eventually(t, func() bool {
		return len(env.playback.playCalls()) >= 2
	}, 2*time.Second, 5*time.Millisecond)

	// The cap is spent; the next end resolves the round.
	require.NoError(t, env.svc.HandlePlaybackEnded(context.Background(), sharedevents.PlaybackEndedPayload{
		GuildID: testGuild, RoundID: round.ID,
	}))
	result := lastPayload[sharedevents.RoundResultPayload](t, env.bus, sharedevents.RoundResult)
	assert.Equal(t, round.ID, result.RoundID)
}

func TestListeningRoundsIgnoreGuesses(t *testing.T) {
	env := newTestEnv(t, singleSongCatalog(t), nil, testOwner)
	env.createSession(t, quiztypes.KindListening)
	round := env.waitForRound(t)
	assert.Equal(t, quiztypes.RoundListening, round.Kind)
	assert.Zero(t, round.SeekSeconds, "listening rounds play from the top")

	env.guess(t, "alice", "test song")
	assert.False(t, round.Finished())
	assert.Empty(t, env.bus.payloads(sharedevents.RoundResult))

	// Playback ending is what resolves a listening round.
	require.NoError(t, env.svc.HandlePlaybackEnded(context.Background(), sharedevents.PlaybackEndedPayload{
		GuildID: testGuild, RoundID: round.ID,
	}))
	assert.NotEmpty(t, env.bus.payloads(sharedevents.RoundResult))
}

func TestHandleConfigUpdated(t *testing.T) {
	env := newTestEnv(t, singleSongCatalog(t), nil, testOwner)
	env.createSession(t, quiztypes.KindClassic)
	env.waitForRound(t)

	next := quiztypes.DefaultConfiguration()
	next.GuessTimeoutSec = 30
	next.MultiGuess = true
	require.NoError(t, env.svc.HandleConfigUpdated(context.Background(), sharedevents.ConfigUpdatedPayload{
		GuildID:       testGuild,
		Configuration: &next,
	}))

	saved := env.repo.savedConfigurations()
	require.Len(t, saved, 1)
	assert.Equal(t, testGuild, saved[0].GuildID)
	assert.Equal(t, 30, saved[0].Config.GuessTimeoutSec)

	env.withSession(t, func(s *Session) {
		assert.Equal(t, 30, s.cfg.GuessTimeoutSec)
		assert.True(t, s.cfg.MultiGuess)
	})
}

func TestBookmarksFlushAtSessionEnd(t *testing.T) {
	env := newTestEnv(t, singleSongCatalog(t), nil, testOwner)
	env.createSession(t, quiztypes.KindClassic)
	env.waitForRound(t)

	require.NoError(t, env.svc.HandleBookmark(context.Background(), sharedevents.BookmarkRequestedPayload{
		GuildID: testGuild, UserID: "alice",
	}))
	require.NoError(t, env.svc.HandleSessionEndRequested(context.Background(), sharedevents.SessionEndRequestedPayload{
		GuildID: testGuild, UserID: testOwner,
	}))

	require.Eventually(t, func() bool {
		return len(env.repo.savedBookmarks()) > 0
	}, 2*time.Second, 5*time.Millisecond)
	saves := env.repo.savedBookmarks()
	require.Len(t, saves[0], 1)
	assert.Equal(t, "alice", saves[0][0].UserID)
	assert.Equal(t, "s1", saves[0][0].SongID)
}

func TestSessionEndIsIdempotent(t *testing.T) {
	env := newTestEnv(t, singleSongCatalog(t), nil, testOwner)
	env.createSession(t, quiztypes.KindClassic)
	env.waitForRound(t)

	for i := 0; i < 2; i++ {
		require.NoError(t, env.svc.HandleSessionEndRequested(context.Background(), sharedevents.SessionEndRequestedPayload{
			GuildID: testGuild, UserID: testOwner,
		}))
	}
	assert.Len(t, env.bus.payloads(sharedevents.SessionEnded), 1)
}

func TestShutdownEndsEverySession(t *testing.T) {
	env := newTestEnv(t, singleSongCatalog(t), nil, testOwner)
	env.createSession(t, quiztypes.KindClassic)
	env.waitForRound(t)

	env.svc.Shutdown(context.Background())
	assert.Zero(t, env.svc.SessionCount())
	ended := lastPayload[sharedevents.SessionEndedPayload](t, env.bus, sharedevents.SessionEnded)
	assert.Equal(t, ReasonShutdown, ended.Reason)
}
