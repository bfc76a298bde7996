package quizservice

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedevents"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"

	catalogtypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog/domain/types"
	quizdb "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/infrastructure/repositories"
	quiztypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/types"
)

// fakeBus records published messages per topic. The subscriber half is never
// exercised by the service.
type fakeBus struct {
	mu     sync.Mutex
	topics map[string][][]byte
}

func newFakeBus() *fakeBus {
	return &fakeBus{topics: make(map[string][][]byte)}
}

func (b *fakeBus) Publish(topic string, messages ...*message.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, msg := range messages {
		b.topics[topic] = append(b.topics[topic], msg.Payload)
	}
	return nil
}

func (b *fakeBus) Subscribe(context.Context, string) (<-chan *message.Message, error) {
	return nil, nil
}

func (b *fakeBus) Close() error { return nil }

func (b *fakeBus) payloads(topic string) [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][]byte, len(b.topics[topic]))
	copy(out, b.topics[topic])
	return out
}

type savedConfiguration struct {
	GuildID sharedtypes.GuildID
	Config  quiztypes.SessionConfiguration
}

type guildStatsCall struct {
	GuildID sharedtypes.GuildID
	Games   int
	Rounds  int
}

type fakeQuizRepo struct {
	mu sync.Mutex

	cfg      quiztypes.SessionConfiguration
	cfgFound bool
	cfgErr   error

	savedConfigs  []savedConfiguration
	playerStats   [][]quizdb.PlayerStatsUpdate
	guildStats    []guildStatsCall
	sessionStats  []quizdb.SessionStats
	bookmarkSaves [][]quizdb.Bookmark
}

func (r *fakeQuizRepo) GetConfiguration(_ context.Context, _ sharedtypes.GuildID) (quiztypes.SessionConfiguration, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg, r.cfgFound, r.cfgErr
}

func (r *fakeQuizRepo) SaveConfiguration(_ context.Context, guildID sharedtypes.GuildID, cfg quiztypes.SessionConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.savedConfigs = append(r.savedConfigs, savedConfiguration{GuildID: guildID, Config: cfg})
	return nil
}

func (r *fakeQuizRepo) UpsertPlayerStats(_ context.Context, updates []quizdb.PlayerStatsUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playerStats = append(r.playerStats, updates)
	return nil
}

func (r *fakeQuizRepo) IncrementGuildStats(_ context.Context, guildID sharedtypes.GuildID, games, rounds int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guildStats = append(r.guildStats, guildStatsCall{GuildID: guildID, Games: games, Rounds: rounds})
	return nil
}

func (r *fakeQuizRepo) InsertSessionStats(_ context.Context, stats quizdb.SessionStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessionStats = append(r.sessionStats, stats)
	return nil
}

func (r *fakeQuizRepo) SaveBookmarks(_ context.Context, bookmarks []quizdb.Bookmark) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookmarkSaves = append(r.bookmarkSaves, bookmarks)
	return nil
}

func (r *fakeQuizRepo) sessionRecords() []quizdb.SessionStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]quizdb.SessionStats, len(r.sessionStats))
	copy(out, r.sessionStats)
	return out
}

func (r *fakeQuizRepo) savedConfigurations() []savedConfiguration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]savedConfiguration, len(r.savedConfigs))
	copy(out, r.savedConfigs)
	return out
}

func (r *fakeQuizRepo) savedBookmarks() [][]quizdb.Bookmark {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]quizdb.Bookmark, len(r.bookmarkSaves))
	copy(out, r.bookmarkSaves)
	return out
}

type playCountCall struct {
	SongID  sharedtypes.SongID
	Guessed bool
}

type fakeCatalogRepo struct {
	mu         sync.Mutex
	playCounts []playCountCall
}

func (r *fakeCatalogRepo) LoadSongs(context.Context) ([]catalogtypes.Song, error) { return nil, nil }

func (r *fakeCatalogRepo) LoadGroups(context.Context) ([]catalogtypes.ArtistGroup, error) {
	return nil, nil
}

func (r *fakeCatalogRepo) IncrementPlayCount(_ context.Context, songID sharedtypes.SongID, guessed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playCounts = append(r.playCounts, playCountCall{SongID: songID, Guessed: guessed})
	return nil
}

func (r *fakeCatalogRepo) playCountCalls() []playCountCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]playCountCall, len(r.playCounts))
	copy(out, r.playCounts)
	return out
}

type fakePlayback struct {
	mu    sync.Mutex
	plays []sharedevents.PlaybackPlayPayload
	stops []sharedtypes.GuildID
}

func (p *fakePlayback) Play(_ context.Context, payload sharedevents.PlaybackPlayPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plays = append(p.plays, payload)
	return nil
}

func (p *fakePlayback) Stop(_ context.Context, guildID sharedtypes.GuildID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops = append(p.stops, guildID)
	return nil
}

func (p *fakePlayback) playCalls() []sharedevents.PlaybackPlayPayload {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]sharedevents.PlaybackPlayPayload, len(p.plays))
	copy(out, p.plays)
	return out
}

func (p *fakePlayback) stopCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.stops)
}

type fakePresence struct {
	members []sharedtypes.UserID
	err     error
}

func (p *fakePresence) Members(context.Context, sharedtypes.GuildID, sharedtypes.ChannelID) ([]sharedtypes.UserID, error) {
	return p.members, p.err
}
