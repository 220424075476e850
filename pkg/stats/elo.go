// Copyright © 2023 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package stats estimates playing strength from match results.
package stats

import "math"

// Score is the tally of an agent's results.
type Score struct {
	Wins, Draws, Losses int
}

// Add adds the other tally to the score.
func (score *Score) Add(other Score) {
	score.Wins += other.Wins
	score.Draws += other.Draws
	score.Losses += other.Losses
}

// Total returns the number of results in the tally.
func (score Score) Total() int {
	return score.Wins + score.Draws + score.Losses
}

// Elo returns the elo estimate of the score and its error margin.
func (score Score) Elo() (elo float64, margin float64) {
	lower, elo, upper := Elo(score.Wins, score.Draws, score.Losses)
	return elo, math.Abs(math.Max(upper-elo, elo-lower))
}

// LOS returns the likelihood of superiority of the score.
func (score Score) LOS() float64 {
	return LOS(score.Wins, score.Losses)
}

// Elo returns the likely elo of the target player along with its p < 0.05
// upper bound and lower bound, called mu, muMax, and muMin respectively.
func Elo(ws, ds, ls int) (muMin float64, mu float64, muMax float64) {
	N := float64(ws + ds + ls) // total number of games

	if N == 0 {
		return 0, 0, 0
	}

	w := float64(ws) / N // measured win probability
	d := float64(ds) / N // measured draw probability
	l := float64(ls) / N // measured loss probability

	// empirical mean of random variable
	mu = w + d/2

	// standard deviation of the random variable
	sigma := math.Sqrt(w*math.Pow(1-mu, 2)+d*math.Pow(0.5-mu, 2)+l*math.Pow(0-mu, 2)) / math.Sqrt(N)

	muMax = mu + phiInv(0.975)*sigma // upper bound
	muMin = mu + phiInv(0.025)*sigma // lower bound

	return clampElo(muMin), clampElo(mu), clampElo(muMax)
}

// LOS returns the probability that the player is stronger than its
// opponent given its wins and losses. Draws don't affect it.
func LOS(ws, ls int) float64 {
	if ws+ls == 0 {
		return 0.5
	}

	return 0.5 * (1 + math.Erf(float64(ws-ls)/math.Sqrt(2*float64(ws+ls))))
}

func clampElo(x float64) float64 {
	switch {
	case x <= 0, x >= 1:
		return 0

	default:
		return -400 * math.Log10(1/x-1)
	}
}

func phiInv(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}
