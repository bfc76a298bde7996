package scoreboard

import (
	"math"
	"sort"

	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"
)

// TeamExpBonus is the extra EXP share granted to members of the sole
// first-place team while more than one team exists.
const TeamExpBonus = 0.1

// Team aggregates its member players: its score, EXP, and avatar are
// computed from the members, never stored. A team owns its members; a player
// belongs to at most one team at a time.
type Team struct {
	Name    sharedtypes.TeamName
	members map[sharedtypes.UserID]*Player
}

// Score sums the member scores.
func (t *Team) Score() float64 {
	var total float64
	for _, p := range t.members {
		total += p.Score
	}
	return total
}

// ExpGained sums the member EXP.
func (t *Team) ExpGained() int {
	var total int
	for _, p := range t.members {
		total += p.ExpGained
	}
	return total
}

// AvatarURL borrows the avatar of an arbitrary member.
func (t *Team) AvatarURL() string {
	for _, p := range t.members {
		if p.AvatarURL != "" {
			return p.AvatarURL
		}
	}
	return ""
}

// Members returns the member players.
func (t *Team) Members() []*Player {
	members := make([]*Player, 0, len(t.members))
	for _, p := range t.members {
		members = append(members, p)
	}
	return members
}

// Size returns the member count.
func (t *Team) Size() int { return len(t.members) }

// TeamScoreboard aggregates players into teams. The point from a resolved
// round lands on the first correct guesser's team; EXP lands on every
// correct guesser individually.
type TeamScoreboard struct {
	teams      map[sharedtypes.TeamName]*Team
	membership map[sharedtypes.UserID]sharedtypes.TeamName
	firstPlace []sharedtypes.TeamName
	maxScore   float64
}

var _ Board = (*TeamScoreboard)(nil)

// NewTeams returns an empty team scoreboard.
func NewTeams() *TeamScoreboard {
	return &TeamScoreboard{
		teams:      make(map[sharedtypes.TeamName]*Team),
		membership: make(map[sharedtypes.UserID]sharedtypes.TeamName),
	}
}

// AddPlayer puts a player on a team, creating the team as needed. Switching
// teams removes the player from the old team first; a team left with zero
// members is deleted.
func (s *TeamScoreboard) AddPlayer(team sharedtypes.TeamName, player Player) {
	if current, ok := s.membership[player.ID]; ok {
		if current == team {
			return
		}
		s.RemovePlayer(player.ID)
	}
	t, ok := s.teams[team]
	if !ok {
		t = &Team{Name: team, members: make(map[sharedtypes.UserID]*Player)}
		s.teams[team] = t
	}
	p := player
	t.members[player.ID] = &p
	s.membership[player.ID] = team
	s.trackFirstPlace(team, t.Score())
}

// TeamOf returns the team a player belongs to.
func (s *TeamScoreboard) TeamOf(id sharedtypes.UserID) (sharedtypes.TeamName, bool) {
	name, ok := s.membership[id]
	return name, ok
}

// Team returns a team by name.
func (s *TeamScoreboard) Team(name sharedtypes.TeamName) (*Team, bool) {
	t, ok := s.teams[name]
	return t, ok
}

// TeamCount returns the number of teams.
func (s *TeamScoreboard) TeamCount() int { return len(s.teams) }

// Update applies every entry: EXP to the entry's player, points to the
// player (and therefore to their team's aggregate). Callers put the round's
// point only on the first correct guesser's entry. After the increments, the
// sole first-place team's members from this update receive the team EXP
// bonus, provided more than one team exists.
func (s *TeamScoreboard) Update(results []ScoreUpdate) {
	for _, u := range results {
		teamName, ok := s.membership[u.UserID]
		if !ok {
			// Guessers outside any team do not score in team mode.
			continue
		}
		t := s.teams[teamName]
		p := t.members[u.UserID]
		p.Score += u.Points
		p.ExpGained += u.Exp
		s.trackFirstPlace(teamName, t.Score())
	}

	if len(s.teams) > 1 && len(s.firstPlace) == 1 {
		leader := s.firstPlace[0]
		for _, u := range results {
			if s.membership[u.UserID] != leader {
				continue
			}
			p := s.teams[leader].members[u.UserID]
			p.ExpGained += int(math.Floor(float64(u.Exp) * TeamExpBonus))
		}
	}
}

func (s *TeamScoreboard) trackFirstPlace(name sharedtypes.TeamName, score float64) {
	if score <= 0 {
		return
	}
	switch {
	case score > s.maxScore:
		s.maxScore = score
		s.firstPlace = []sharedtypes.TeamName{name}
	case score == s.maxScore:
		for _, existing := range s.firstPlace {
			if existing == name {
				return
			}
		}
		s.firstPlace = append(s.firstPlace, name)
	}
}

func (s *TeamScoreboard) recomputeFirstPlace() {
	s.maxScore = 0
	s.firstPlace = nil
	for name, t := range s.teams {
		s.trackFirstPlace(name, t.Score())
	}
}

// Winners returns the first-place teams, or nothing while every team score
// is zero.
func (s *TeamScoreboard) Winners() []Entry {
	entries := make([]Entry, 0, len(s.firstPlace))
	for _, name := range s.firstPlace {
		if t, ok := s.teams[name]; ok {
			entries = append(entries, Entry{ID: name.String(), Name: name.String(), Score: t.Score(), ExpGained: t.ExpGained()})
		}
	}
	return entries
}

// Entries returns all teams ordered by descending score.
func (s *TeamScoreboard) Entries() []Entry {
	entries := make([]Entry, 0, len(s.teams))
	for name, t := range s.teams {
		entries = append(entries, Entry{ID: name.String(), Name: name.String(), Score: t.Score(), ExpGained: t.ExpGained()})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// HighestScore returns the leading team score.
func (s *TeamScoreboard) HighestScore() float64 { return s.maxScore }

// GameFinished reports whether any team reached the goal.
func (s *TeamScoreboard) GameFinished(goal int) bool {
	return goal > 0 && s.maxScore >= float64(goal)
}

// PlayerCount returns the number of players across all teams.
func (s *TeamScoreboard) PlayerCount() int { return len(s.membership) }

// RemovePlayer drops a player from their team. Removing the last member
// deletes the team; if the deleted or shrunken team held first place, the
// leaders are recomputed from the remaining teams, falling back to an empty
// winner set when every remaining score is zero.
func (s *TeamScoreboard) RemovePlayer(id sharedtypes.UserID) {
	teamName, ok := s.membership[id]
	if !ok {
		return
	}
	t := s.teams[teamName]
	delete(t.members, id)
	delete(s.membership, id)
	if len(t.members) == 0 {
		delete(s.teams, teamName)
	}

	// The removed player's score leaves the team aggregate, so any first
	// place held through this team is stale.
	for _, fp := range s.firstPlace {
		if fp == teamName {
			s.recomputeFirstPlace()
			return
		}
	}
}
