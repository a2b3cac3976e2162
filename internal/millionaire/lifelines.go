// Package millionaire holds the randomized lifeline simulators. Each is a
// pure function of the visible options, the correct answer and an explicit
// random source, so they stay testable with a seeded generator.
package millionaire

import (
	"math"
	"math/rand"
)

// reliability is the probability that the audience or the friend favors the
// correct answer.
const reliability = 0.95

// FiftyFifty picks the two incorrect options to hide, uniformly at random
// among the three distractors. The correct answer is never hidden.
func FiftyFifty(options []string, correctAnswer string, rng *rand.Rand) []string {
	incorrect := make([]string, 0, len(options))
	for _, option := range options {
		if option != correctAnswer {
			incorrect = append(incorrect, option)
		}
	}

	rng.Shuffle(len(incorrect), func(i, j int) {
		incorrect[i], incorrect[j] = incorrect[j], incorrect[i]
	})

	if len(incorrect) <= 2 {
		return incorrect
	}
	return incorrect[:2]
}

// SimulateAudienceVote produces a percentage per visible option. Most of the
// time the audience leans heavily toward the correct answer; occasionally the
// vote is pure noise. Raw shares are normalized to sum to 100, with each entry
// rounded independently, so the total may land on 99 or 101.
func SimulateAudienceVote(visibleOptions []string, correctAnswer string, rng *rand.Rand) map[string]int {
	raw := make(map[string]int, len(visibleOptions))

	if rng.Float64() < reliability {
		for _, option := range visibleOptions {
			if option == correctAnswer {
				raw[option] = 50 + rng.Intn(30) // 50-79
			} else {
				raw[option] = 5 + rng.Intn(15) // 5-19
			}
		}
	} else {
		for _, option := range visibleOptions {
			raw[option] = rng.Intn(100)
		}
	}

	total := 0
	for _, share := range raw {
		total += share
	}
	if total == 0 {
		raw[correctAnswer] = 1
		total = 1
	}

	votes := make(map[string]int, len(raw))
	for option, share := range raw {
		votes[option] = int(math.Round(float64(share) / float64(total) * 100))
	}

	return votes
}

// SimulatePhoneFriend returns the friend's pick: the correct answer with high
// probability, otherwise a uniformly random visible incorrect option.
func SimulatePhoneFriend(visibleOptions []string, correctAnswer string, rng *rand.Rand) string {
	if rng.Float64() < reliability {
		return correctAnswer
	}

	incorrect := make([]string, 0, len(visibleOptions))
	for _, option := range visibleOptions {
		if option != correctAnswer {
			incorrect = append(incorrect, option)
		}
	}

	if len(incorrect) == 0 {
		return correctAnswer
	}
	return incorrect[rng.Intn(len(incorrect))]
}
