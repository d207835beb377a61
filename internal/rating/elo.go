// Package rating computes and stores the per-user skill scores derived
// from pairwise comparisons.
package rating

import "math"

const (
	// BaseScore is assumed for any group the user has not voted on yet.
	BaseScore = 1200

	// DefaultK is the Elo K-factor applied to every vote.
	DefaultK = 32
)

// Compute returns the updated winner and loser scores after one recorded
// outcome. Pure: expected = 1/(1+10^((loser-winner)/400)), winner gains
// k*(1-expected), loser loses the same amount, both rounded to integers.
func Compute(winner, loser int, k float64) (newWinner, newLoser int) {
	expected := 1 / (1 + math.Pow(10, float64(loser-winner)/400))
	delta := k * (1 - expected)
	newWinner = int(math.Round(float64(winner) + delta))
	newLoser = int(math.Round(float64(loser) - delta))
	return newWinner, newLoser
}
