package picker

import (
	"testing"

	"shelfpick/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func player(id, name string) models.SessionPlayer {
	return models.SessionPlayer{ID: id, Name: name}
}

func vote(playerID, gameID string, decision models.VoteDecision) models.SessionVote {
	return models.SessionVote{PlayerID: playerID, GameID: gameID, Decision: decision}
}

func TestAggregateUnanimity(t *testing.T) {
	players := []models.SessionPlayer{player("p1", "Alice"), player("p2", "Bob")}
	votes := []models.SessionVote{
		vote("p1", "g1", models.DecisionLike),
		vote("p2", "g1", models.DecisionPick),
		vote("p1", "g2", models.DecisionLike),
		vote("p2", "g2", models.DecisionSkip),
		vote("p1", "g3", models.DecisionSkip),
		vote("p2", "g3", models.DecisionSkip),
	}

	results := Aggregate([]string{"g1", "g2", "g3"}, players, votes)

	require.Len(t, results.UnanimousMatches, 1)
	assert.Equal(t, "g1", results.UnanimousMatches[0].GameID)
	assert.True(t, results.UnanimousMatches[0].Unanimous)
	assert.Equal(t, 1, results.UnanimousMatches[0].Likes)
	assert.Equal(t, 1, results.UnanimousMatches[0].Picks)
	assert.ElementsMatch(t, []string{"Alice"}, results.UnanimousMatches[0].LikedBy)
	assert.ElementsMatch(t, []string{"Bob"}, results.UnanimousMatches[0].PickedBy)

	// g2 has one like, g3 only skips and must not appear at all.
	require.Len(t, results.RankedResults, 1)
	assert.Equal(t, "g2", results.RankedResults[0].GameID)
	assert.False(t, results.RankedResults[0].Unanimous)

	assert.Equal(t, 3, results.TotalGames)
	assert.Equal(t, 2, results.TotalPlayers)
}

func TestAggregateZeroPlayersNeverUnanimous(t *testing.T) {
	results := Aggregate([]string{"g1"}, nil, nil)

	assert.Empty(t, results.UnanimousMatches)
	assert.Empty(t, results.RankedResults)
	assert.Equal(t, 1, results.TotalGames)
	assert.Equal(t, 0, results.TotalPlayers)
}

func TestAggregateRankedOrderByLikes(t *testing.T) {
	players := []models.SessionPlayer{
		player("p1", "Alice"), player("p2", "Bob"), player("p3", "Cara"),
	}
	votes := []models.SessionVote{
		vote("p1", "g1", models.DecisionLike),
		vote("p1", "g2", models.DecisionLike),
		vote("p2", "g2", models.DecisionLike),
		vote("p1", "g3", models.DecisionLike),
		vote("p2", "g3", models.DecisionLike),
		vote("p3", "g3", models.DecisionSkip),
	}

	results := Aggregate([]string{"g1", "g2", "g3"}, players, votes)

	require.Len(t, results.RankedResults, 3)
	assert.Equal(t, "g3", results.RankedResults[0].GameID)
	assert.Equal(t, "g2", results.RankedResults[1].GameID)
	assert.Equal(t, "g1", results.RankedResults[2].GameID)
}

func TestAggregatePicksAreNotARankingSignal(t *testing.T) {
	players := []models.SessionPlayer{
		player("p1", "Alice"), player("p2", "Bob"), player("p3", "Cara"),
	}
	// g1 gets two likes, g2 gets one like and one pick. g2's pick does
	// not outrank g1's extra like.
	votes := []models.SessionVote{
		vote("p1", "g1", models.DecisionLike),
		vote("p2", "g1", models.DecisionLike),
		vote("p1", "g2", models.DecisionLike),
		vote("p2", "g2", models.DecisionPick),
	}

	results := Aggregate([]string{"g1", "g2"}, players, votes)

	require.Len(t, results.RankedResults, 2)
	assert.Equal(t, "g1", results.RankedResults[0].GameID)
	assert.Equal(t, "g2", results.RankedResults[1].GameID)
}

func TestAggregateIgnoresVotesOutsideCandidateList(t *testing.T) {
	players := []models.SessionPlayer{player("p1", "Alice")}
	votes := []models.SessionVote{
		vote("p1", "g1", models.DecisionLike),
		vote("p1", "stray", models.DecisionPick),
	}

	results := Aggregate([]string{"g1"}, players, votes)

	require.Len(t, results.UnanimousMatches, 1)
	assert.Equal(t, "g1", results.UnanimousMatches[0].GameID)
	assert.Empty(t, results.RankedResults)
	assert.Equal(t, 1, results.TotalGames)
}

func TestAggregateTieKeepsUnanimousFirst(t *testing.T) {
	players := []models.SessionPlayer{player("p1", "Alice"), player("p2", "Bob")}
	votes := []models.SessionVote{
		vote("p1", "g1", models.DecisionLike),
		vote("p2", "g1", models.DecisionLike),
		vote("p1", "g2", models.DecisionLike),
	}

	// The tie-break shuffle randomizes equal scores, so run repeatedly:
	// the unanimous game must lead every time.
	for i := 0; i < 25; i++ {
		results := Aggregate([]string{"g1", "g2"}, players, votes)
		require.Len(t, results.UnanimousMatches, 1)
		assert.Equal(t, "g1", results.UnanimousMatches[0].GameID)
		require.Len(t, results.RankedResults, 1)
		assert.Equal(t, "g2", results.RankedResults[0].GameID)
	}
}
