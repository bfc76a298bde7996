package scoreboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"
)

func update(id string, points float64, exp int) ScoreUpdate {
	return ScoreUpdate{UserID: sharedtypes.UserID(id), UserName: id, Points: points, Exp: exp}
}

func TestScoreboardUpdateAccumulates(t *testing.T) {
	b := New()
	b.Update([]ScoreUpdate{update("alice", 1, 100)})
	b.Update([]ScoreUpdate{update("alice", 1, 80), update("bob", 0, 40)})

	p, ok := b.Player(sharedtypes.UserID("alice"))
	require.True(t, ok)
	assert.Equal(t, 2.0, p.Score)
	assert.Equal(t, 180, p.ExpGained)

	p, ok = b.Player(sharedtypes.UserID("bob"))
	require.True(t, ok)
	assert.Equal(t, 0.0, p.Score)
	assert.Equal(t, 40, p.ExpGained)

	assert.Equal(t, 2, b.PlayerCount())
	assert.Equal(t, 2.0, b.HighestScore())
}

func TestScoreboardWinners(t *testing.T) {
	b := New()
	assert.Empty(t, b.Winners(), "no winners before any score")

	b.Update([]ScoreUpdate{update("alice", 1, 100)})
	winners := b.Winners()
	require.Len(t, winners, 1)
	assert.Equal(t, "alice", winners[0].ID)

	// Bob ties, both lead.
	b.Update([]ScoreUpdate{update("bob", 1, 60)})
	assert.Len(t, b.Winners(), 2)

	// Alice pulls ahead, the tie dissolves.
	b.Update([]ScoreUpdate{update("alice", 1, 100)})
	winners = b.Winners()
	require.Len(t, winners, 1)
	assert.Equal(t, "alice", winners[0].ID)
}

func TestScoreboardZeroScoresHaveNoWinner(t *testing.T) {
	b := New()
	b.Update([]ScoreUpdate{update("alice", 0, 30), update("bob", 0, 10)})
	assert.Empty(t, b.Winners())
	assert.Equal(t, 0.0, b.HighestScore())
}

func TestScoreboardEntriesOrdered(t *testing.T) {
	b := New()
	b.Update([]ScoreUpdate{
		update("carol", 3, 10),
		update("alice", 1, 10),
		update("bob", 2, 10),
	})
	entries := b.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "carol", entries[0].ID)
	assert.Equal(t, "bob", entries[1].ID)
	assert.Equal(t, "alice", entries[2].ID)
}

func TestScoreboardGameFinished(t *testing.T) {
	b := New()
	b.Update([]ScoreUpdate{update("alice", 5, 0)})
	assert.False(t, b.GameFinished(0), "goal zero never finishes")
	assert.False(t, b.GameFinished(6))
	assert.True(t, b.GameFinished(5))
	assert.True(t, b.GameFinished(3))
}

func TestScoreboardRemovePlayer(t *testing.T) {
	b := New()
	b.Update([]ScoreUpdate{update("alice", 3, 0), update("bob", 1, 0)})

	b.RemovePlayer(sharedtypes.UserID("alice"))
	assert.Equal(t, 1, b.PlayerCount())
	assert.Equal(t, 1.0, b.HighestScore())
	winners := b.Winners()
	require.Len(t, winners, 1)
	assert.Equal(t, "bob", winners[0].ID)

	b.RemovePlayer(sharedtypes.UserID("bob"))
	assert.Zero(t, b.PlayerCount())
	assert.Empty(t, b.Winners())
	assert.Equal(t, 0.0, b.HighestScore())

	// Removing an unknown player is a no-op.
	b.RemovePlayer(sharedtypes.UserID("nobody"))
	assert.Zero(t, b.PlayerCount())
}
