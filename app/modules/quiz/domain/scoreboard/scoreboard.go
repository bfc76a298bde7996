// Package scoreboard tracks per-participant scores and EXP for a session.
// Two implementations share the Board interface: Scoreboard for individual
// play and TeamScoreboard for team play. Neither is internally synchronized;
// the owning session serializes access.
package scoreboard

import (
	"sort"

	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"
)

// Player is one scoreboard entry.
type Player struct {
	ID           sharedtypes.UserID
	Name         string
	AvatarURL    string
	Score        float64
	ExpGained    int
	PreviousRank int
}

// ScoreUpdate is one participant's increment from a resolved round, in
// first-correct-first order.
type ScoreUpdate struct {
	UserID    sharedtypes.UserID
	UserName  string
	AvatarURL string
	Points    float64
	Exp       int
}

// Entry is a read-only scoreboard row.
type Entry struct {
	ID        string
	Name      string
	Score     float64
	ExpGained int
}

// Board is the common contract of individual and team scoreboards.
type Board interface {
	// Update applies every increment and recomputes the first-place set.
	Update(results []ScoreUpdate)
	// Winners returns the entries whose score equals the current maximum,
	// or nothing while all scores are zero.
	Winners() []Entry
	// Entries returns all rows ordered by descending score.
	Entries() []Entry
	// HighestScore returns the current maximum score.
	HighestScore() float64
	// GameFinished reports whether the goal score has been reached. A goal
	// of zero never finishes.
	GameFinished(goal int) bool
	// RemovePlayer drops a participant, cascading as needed.
	RemovePlayer(id sharedtypes.UserID)
	// PlayerCount returns the number of tracked participants.
	PlayerCount() int
}

// Scoreboard maps participants to players and tracks the first-place set
// incrementally: append on tie, reset-and-replace on a new maximum.
type Scoreboard struct {
	players    map[sharedtypes.UserID]*Player
	firstPlace []sharedtypes.UserID
	maxScore   float64
}

var _ Board = (*Scoreboard)(nil)

// New returns an empty individual scoreboard.
func New() *Scoreboard {
	return &Scoreboard{players: make(map[sharedtypes.UserID]*Player)}
}

func (s *Scoreboard) player(u ScoreUpdate) *Player {
	p, ok := s.players[u.UserID]
	if !ok {
		p = &Player{ID: u.UserID, Name: u.UserName, AvatarURL: u.AvatarURL}
		s.players[u.UserID] = p
	}
	return p
}

// Update applies every entry's score and EXP increment.
func (s *Scoreboard) Update(results []ScoreUpdate) {
	for _, u := range results {
		p := s.player(u)
		p.Score += u.Points
		p.ExpGained += u.Exp
		s.trackFirstPlace(u.UserID, p.Score)
	}
}

func (s *Scoreboard) trackFirstPlace(id sharedtypes.UserID, score float64) {
	if score <= 0 {
		return
	}
	switch {
	case score > s.maxScore:
		s.maxScore = score
		s.firstPlace = []sharedtypes.UserID{id}
	case score == s.maxScore:
		for _, existing := range s.firstPlace {
			if existing == id {
				return
			}
		}
		s.firstPlace = append(s.firstPlace, id)
	}
}

// recomputeFirstPlace rebuilds the maximum from scratch; used after removals.
func (s *Scoreboard) recomputeFirstPlace() {
	s.maxScore = 0
	s.firstPlace = nil
	for id, p := range s.players {
		s.trackFirstPlace(id, p.Score)
	}
}

// Winners returns the current first-place entries.
func (s *Scoreboard) Winners() []Entry {
	entries := make([]Entry, 0, len(s.firstPlace))
	for _, id := range s.firstPlace {
		if p, ok := s.players[id]; ok {
			entries = append(entries, Entry{ID: p.ID.String(), Name: p.Name, Score: p.Score, ExpGained: p.ExpGained})
		}
	}
	return entries
}

// Entries returns all rows ordered by descending score.
func (s *Scoreboard) Entries() []Entry {
	entries := make([]Entry, 0, len(s.players))
	for _, p := range s.players {
		entries = append(entries, Entry{ID: p.ID.String(), Name: p.Name, Score: p.Score, ExpGained: p.ExpGained})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// HighestScore returns the current maximum score.
func (s *Scoreboard) HighestScore() float64 { return s.maxScore }

// GameFinished reports whether the goal has been reached.
func (s *Scoreboard) GameFinished(goal int) bool {
	return goal > 0 && s.maxScore >= float64(goal)
}

// Player returns the tracked player for an ID.
func (s *Scoreboard) Player(id sharedtypes.UserID) (*Player, bool) {
	p, ok := s.players[id]
	return p, ok
}

// PlayerIDs returns every tracked participant.
func (s *Scoreboard) PlayerIDs() []sharedtypes.UserID {
	ids := make([]sharedtypes.UserID, 0, len(s.players))
	for id := range s.players {
		ids = append(ids, id)
	}
	return ids
}

// PlayerCount returns the number of tracked participants.
func (s *Scoreboard) PlayerCount() int { return len(s.players) }

// RemovePlayer drops a participant. If they were among the only holders of
// first place, the maximum is recomputed from the remaining players, falling
// back to an empty winner set when every remaining score is zero.
func (s *Scoreboard) RemovePlayer(id sharedtypes.UserID) {
	if _, ok := s.players[id]; !ok {
		return
	}
	delete(s.players, id)

	held := false
	for _, fp := range s.firstPlace {
		if fp == id {
			held = true
			break
		}
	}
	if held {
		s.recomputeFirstPlace()
	}
}
