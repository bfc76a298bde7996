// Package selector implements the per-session song-selection engine: it
// filters the shared catalog under the guild configuration, orders the
// result per the configured shuffle, and tracks played-song history so draws
// avoid immediate repeats. One Selector belongs to exactly one session and
// is serialized by the session's lock.
package selector

import (
	"math/rand"

	"github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog"
	catalogtypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog/domain/types"
	quiztypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/types"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"
)

// lastPlayedCapacity bounds the recently-played FIFO used to avoid immediate
// repeats.
const lastPlayedCapacity = 10

// Selector owns the filtered song set and the played-song history of one
// session.
type Selector struct {
	catalog *catalog.Catalog
	cfg     quiztypes.SessionConfiguration
	rng     *rand.Rand

	filtered         []catalogtypes.Song
	countBeforeLimit int

	lastPlayed   []sharedtypes.SongID
	uniquePlayed map[sharedtypes.SongID]struct{}

	// alternatingCursor flips between female and male each round while
	// alternating-gender mode is on.
	alternatingCursor catalogtypes.Gender
}

// New builds a selector over the shared catalog and loads the filtered set
// for the given configuration.
func New(cat *catalog.Catalog, cfg quiztypes.SessionConfiguration, rng *rand.Rand) *Selector {
	s := &Selector{
		catalog:           cat,
		rng:               rng,
		uniquePlayed:      make(map[sharedtypes.SongID]struct{}),
		alternatingCursor: catalogtypes.GenderFemale,
	}
	s.Reload(cfg)
	return s
}

// Reload recomputes the filtered set from a configuration snapshot. If the
// unique-play history is no longer a subset of the new filtered set, it is
// reset.
func (s *Selector) Reload(cfg quiztypes.SessionConfiguration) {
	cfg.Normalize()
	s.cfg = cfg

	matched := s.filterSongs()
	s.orderSongs(matched)
	s.countBeforeLimit = len(matched)
	s.filtered = applyLimit(matched, cfg.LimitStart, cfg.LimitEnd)

	if !s.uniqueHistoryIsSubset() {
		s.uniquePlayed = make(map[sharedtypes.SongID]struct{})
	}
	s.pruneRecentlyPlayed()
}

// pruneRecentlyPlayed drops recently-played entries invalidated by a reload.
// A filtered set no larger than the queue capacity never feeds the queue, so
// a queue surviving from a wider set could cover the whole set and block
// every draw.
func (s *Selector) pruneRecentlyPlayed() {
	if len(s.lastPlayed) == 0 {
		return
	}
	if len(s.filtered) <= lastPlayedCapacity {
		s.lastPlayed = nil
		return
	}
	inSet := make(map[sharedtypes.SongID]struct{}, len(s.filtered))
	for i := range s.filtered {
		inSet[s.filtered[i].ID] = struct{}{}
	}
	kept := s.lastPlayed[:0]
	for _, id := range s.lastPlayed {
		if _, ok := inSet[id]; ok {
			kept = append(kept, id)
		}
	}
	s.lastPlayed = kept
}

// Songs returns the current filtered candidate set. The returned slice is
// owned by the selector; callers must treat it as read-only.
func (s *Selector) Songs() []catalogtypes.Song {
	return s.filtered
}

// CountBeforeLimit returns the number of songs that matched the filters
// before the limit window was cut; the UI reports it.
func (s *Selector) CountBeforeLimit() int {
	return s.countBeforeLimit
}

// Empty reports whether no candidate songs remain at all.
func (s *Selector) Empty() bool {
	return len(s.filtered) == 0
}

// Configuration returns the active configuration snapshot.
func (s *Selector) Configuration() quiztypes.SessionConfiguration {
	return s.cfg
}

// SelectRandomSong draws one candidate from the filtered set, excluding the
// ignored keys and, when a gender override is given, restricted to that
// gender. Draw probability is proportional to SelectionWeight (unset weights
// count as 1). It returns nil when no candidate remains; callers must treat
// that as a hard selection failure, not retry indefinitely.
func (s *Selector) SelectRandomSong(ignored map[sharedtypes.SongID]struct{}, genderOverride *catalogtypes.Gender) *catalogtypes.Song {
	var candidates []*catalogtypes.Song
	var totalWeight float64
	for i := range s.filtered {
		song := &s.filtered[i]
		if _, skip := ignored[song.ID]; skip {
			continue
		}
		if genderOverride != nil && song.Gender != *genderOverride {
			continue
		}
		candidates = append(candidates, song)
		totalWeight += weightOf(song)
	}
	if len(candidates) == 0 {
		return nil
	}

	target := s.rng.Float64() * totalWeight
	for _, song := range candidates {
		target -= weightOf(song)
		if target < 0 {
			return song
		}
	}
	return candidates[len(candidates)-1]
}

// QueryRandomSong rotates the alternating-gender cursor, unions the
// recently-played queue with the unique-played set as the ignore set, and
// draws. A successful draw is pushed into the recently-played queue (only
// when the filtered set is larger than the queue capacity) and, in unique
// shuffle, into the unique-played set.
func (s *Selector) QueryRandomSong() *catalogtypes.Song {
	var genderOverride *catalogtypes.Gender
	if s.cfg.AlternatingGender {
		cursor := s.rotateAlternatingGender()
		genderOverride = &cursor
	}

	ignored := make(map[sharedtypes.SongID]struct{}, len(s.lastPlayed)+len(s.uniquePlayed))
	for _, id := range s.lastPlayed {
		ignored[id] = struct{}{}
	}
	if s.cfg.UniqueShuffle() {
		for id := range s.uniquePlayed {
			ignored[id] = struct{}{}
		}
	}

	song := s.SelectRandomSong(ignored, genderOverride)
	if song == nil {
		return nil
	}

	if len(s.filtered) > lastPlayedCapacity {
		s.lastPlayed = append(s.lastPlayed, song.ID)
		if len(s.lastPlayed) > lastPlayedCapacity {
			s.lastPlayed = s.lastPlayed[1:]
		}
	}
	if s.cfg.UniqueShuffle() {
		s.uniquePlayed[song.ID] = struct{}{}
	}
	return song
}

// CheckUniqueSongQueue reports whether every song in the current filtered
// set has been played in unique-shuffle mode, resetting the unique-played
// set when it has. The comparison is against the current filtered set, so
// mid-session configuration changes are tolerated.
func (s *Selector) CheckUniqueSongQueue() bool {
	if !s.cfg.UniqueShuffle() || len(s.filtered) == 0 {
		return false
	}
	for i := range s.filtered {
		if _, played := s.uniquePlayed[s.filtered[i].ID]; !played {
			return false
		}
	}
	s.uniquePlayed = make(map[sharedtypes.SongID]struct{})
	return true
}

// UniquePlayedCount returns the size of the unique-played set.
func (s *Selector) UniquePlayedCount() int {
	return len(s.uniquePlayed)
}

func (s *Selector) rotateAlternatingGender() catalogtypes.Gender {
	if s.alternatingCursor == catalogtypes.GenderFemale {
		s.alternatingCursor = catalogtypes.GenderMale
	} else {
		s.alternatingCursor = catalogtypes.GenderFemale
	}
	return s.alternatingCursor
}

// uniqueHistoryIsSubset reports whether every unique-played key still exists
// in the filtered set.
func (s *Selector) uniqueHistoryIsSubset() bool {
	if len(s.uniquePlayed) == 0 {
		return true
	}
	inSet := make(map[sharedtypes.SongID]struct{}, len(s.filtered))
	for i := range s.filtered {
		inSet[s.filtered[i].ID] = struct{}{}
	}
	for id := range s.uniquePlayed {
		if _, ok := inSet[id]; !ok {
			return false
		}
	}
	return true
}

func weightOf(song *catalogtypes.Song) float64 {
	if song.SelectionWeight <= 0 {
		return 1
	}
	return song.SelectionWeight
}

func applyLimit(songs []catalogtypes.Song, start, end int) []catalogtypes.Song {
	if start > len(songs) {
		start = len(songs)
	}
	if end > len(songs) {
		end = len(songs)
	}
	if end < start {
		end = start
	}
	window := make([]catalogtypes.Song, end-start)
	copy(window, songs[start:end])
	return window
}
