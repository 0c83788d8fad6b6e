// internal/puzzle/engine.go
//
// Core game engine for a single Connections puzzle.
// Responsibilities:
//   - Create fresh states (shuffled or from an upstream starting order).
//   - Evaluate guesses against the categories (best overlap, first max wins).
//   - Apply guesses: remove solved categories from the board, record history.
//   - Derive completion/progress status from the order and history.
//
// Notes:
//   - Nothing here performs I/O or logs; callers persist after each mutation.
//   - Randomness comes from an injected Shuffler so tests are deterministic.

package puzzle

import "math/rand/v2"

// NewState builds a fresh state for def.
// If start is empty the board is all 16 words in a shuffled order.
// A nil rng falls back to the process-wide math/rand/v2 source.
func NewState(def *Definition, start []string, rng Shuffler) *State {
	s := &State{Definition: def, Guesses: []Guess{}, rng: orDefault(rng)}
	if len(start) > 0 {
		s.Order = append([]string(nil), start...)
	} else {
		s.Order = def.Words()
		s.Shuffle()
	}
	return s
}

// Restore rebuilds a state from persisted fields.
func Restore(def *Definition, order []string, guesses []Guess, rng Shuffler) *State {
	if order == nil {
		order = []string{}
	}
	if guesses == nil {
		guesses = []Guess{}
	}
	return &State{Definition: def, Order: order, Guesses: guesses, rng: orDefault(rng)}
}

// Evaluate returns the category with the largest overlap with candidate and that overlap.
// Ties keep the earliest category. categories must not be empty.
func Evaluate(categories []Category, candidate []string) (Category, int) {
	best := categories[0]
	bestScore := best.Overlap(candidate)
	for _, c := range categories[1:] {
		if n := c.Overlap(candidate); n > bestScore {
			best, bestScore = c, n
		}
	}
	return best, bestScore
}

// Guess submits a candidate word set.
//
// A candidate equal to an earlier guess returns AlreadyGuessed and changes nothing.
// Otherwise the guess is recorded, and a perfect match removes the category's
// words from the board.
func (s *State) Guess(candidate []string) Outcome {
	words := normalize(candidate)
	if s.HasGuessed(words) {
		return AlreadyGuessed
	}

	best, score := Evaluate(s.Definition.Categories, words)
	if score == GroupSize {
		s.Order = without(s.Order, best.Words)
	}
	s.Guesses = append(s.Guesses, Guess{Words: words, Score: score})

	switch score {
	case GroupSize:
		return Correct
	case GroupSize - 1:
		return OneAway
	default:
		return Incorrect
	}
}

// HasGuessed reports whether candidate was already submitted, in any word order.
func (s *State) HasGuessed(candidate []string) bool {
	for _, g := range s.Guesses {
		if g.Matches(candidate) {
			return true
		}
	}
	return false
}

// GuessRow guesses the words in Order[start:end], typically one board row.
func (s *State) GuessRow(start, end int) Outcome {
	return s.Guess(s.Order[start:end])
}

// Reset discards all progress and deals a freshly shuffled full board.
func (s *State) Reset() {
	s.Guesses = []Guess{}
	s.Order = s.Definition.Words()
	s.Shuffle()
}

// Shuffle permutes the board in place. Guess history is untouched.
func (s *State) Shuffle() {
	s.rng.Shuffle(len(s.Order), func(i, j int) {
		s.Order[i], s.Order[j] = s.Order[j], s.Order[i]
	})
}

// IsComplete reports whether every category has been found.
func (s *State) IsComplete() bool { return len(s.Order) == 0 }

// IsInProgress reports whether the puzzle has been started but not finished.
func (s *State) IsInProgress() bool { return len(s.Guesses) > 0 && !s.IsComplete() }

// FoundCategories lists solved categories in the order they were solved.
func (s *State) FoundCategories() []Category {
	var out []Category
	for _, g := range s.Guesses {
		if g.Score != GroupSize {
			continue
		}
		for _, c := range s.Definition.Categories {
			if g.Matches(c.Words) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// NumFound is len(FoundCategories()).
func (s *State) NumFound() int { return len(s.FoundCategories()) }

// IsPerfectScore reports a completed puzzle with no wasted guesses.
func (s *State) IsPerfectScore() bool {
	return s.IsComplete() && len(s.Guesses) == len(s.Definition.Categories)
}

// SolvedHardestFirst reports a completed puzzle whose first guess was the level-3 category.
func (s *State) SolvedHardestFirst() bool {
	if !s.IsComplete() || len(s.Guesses) == 0 {
		return false
	}
	hardest, ok := s.Definition.Hardest()
	return ok && s.Guesses[0].Matches(hardest.Words)
}

// Facts returns the raw values an external stats module needs.
func (s *State) Facts() Facts {
	return Facts{
		ID:           s.Definition.ID,
		Date:         s.Definition.Date,
		Complete:     s.IsComplete(),
		GuessCount:   len(s.Guesses),
		Perfect:      s.IsPerfectScore(),
		HardestFirst: s.SolvedHardestFirst(),
	}
}

// globalShuffler shuffles with the top-level math/rand/v2 functions, which are
// safe for concurrent use.
type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

func orDefault(rng Shuffler) Shuffler {
	if rng == nil {
		return globalShuffler{}
	}
	return rng
}
