// Package picker turns a session's votes into ranked and unanimous results.
//
// Aggregation is recomputed on every read while a session is active, and the
// tie-break shuffle means equal-score games can swap places between reads.
// Ending the session runs the aggregation one last time and persists the
// output, after which reads return the stored snapshot and the ordering
// never moves again.
package picker

import (
	"math/rand"
	"sort"

	"shelfpick/backend/internal/models"
)

// Aggregate scores the candidate games against the session's current
// players and votes. Votes for games outside the candidate list are
// ignored; games with no positive votes appear in neither output list but
// still count toward TotalGames.
func Aggregate(gameIDs []string, players []models.SessionPlayer, votes []models.SessionVote) *models.SessionResults {
	totalPlayers := len(players)

	tallies := make([]models.VoteTally, 0, len(gameIDs))
	byGame := make(map[string]*models.VoteTally, len(gameIDs))
	for _, id := range gameIDs {
		tallies = append(tallies, models.VoteTally{GameID: id})
		byGame[id] = &tallies[len(tallies)-1]
	}

	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}

	for _, v := range votes {
		tally, ok := byGame[v.GameID]
		if !ok {
			continue
		}
		switch v.Decision {
		case models.DecisionLike:
			tally.Likes++
			tally.LikedBy = append(tally.LikedBy, names[v.PlayerID])
		case models.DecisionPick:
			tally.Picks++
			tally.PickedBy = append(tally.PickedBy, names[v.PlayerID])
		case models.DecisionSkip:
			tally.Skips++
		}
	}

	// A game is unanimous when every current player gave it a like or a
	// pick. The totalPlayers guard keeps an empty roster from making
	// everything "unanimous".
	for i := range tallies {
		t := &tallies[i]
		t.Unanimous = totalPlayers > 0 && t.Likes+t.Picks == totalPlayers
	}

	// Shuffle before the stable sort so that equal-score games land in a
	// random relative order rather than candidate-list order.
	rand.Shuffle(len(tallies), func(i, j int) {
		tallies[i], tallies[j] = tallies[j], tallies[i]
	})

	// Unanimous entries first, then by likes descending. Picks are not a
	// ranking signal on their own; they only feed unanimity.
	sort.SliceStable(tallies, func(i, j int) bool {
		if tallies[i].Unanimous != tallies[j].Unanimous {
			return tallies[i].Unanimous
		}
		return tallies[i].Likes > tallies[j].Likes
	})

	results := &models.SessionResults{
		UnanimousMatches: []models.VoteTally{},
		RankedResults:    []models.VoteTally{},
		TotalGames:       len(gameIDs),
		TotalPlayers:     totalPlayers,
	}
	for _, t := range tallies {
		switch {
		case t.Unanimous:
			results.UnanimousMatches = append(results.UnanimousMatches, t)
		case t.Likes > 0 || t.Picks > 0:
			results.RankedResults = append(results.RankedResults, t)
		}
	}
	return results
}
