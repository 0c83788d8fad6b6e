// internal/puzzle/types.go
//
// Core type definitions for the Connections puzzle engine.
// Defines:
//   - Category:   one of the four word groups of a puzzle.
//   - Definition: the immutable description of one day's puzzle.
//   - Guess:      a submitted candidate and its best overlap score.
//   - Outcome:    classification of a guess (already guessed/incorrect/one away/correct).
//   - State:      mutable per-user game state wrapping a Definition.

package puzzle

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"
)

const (
	// GroupSize is the number of words in every category (and per board row).
	GroupSize = 4
	// NumCategories is the number of categories in every puzzle.
	NumCategories = 4
	// NumWords is the total number of words on a fresh board.
	NumWords = GroupSize * NumCategories
	// HardestLevel is the level of the hardest (purple) category.
	HardestLevel = 3
)

// ErrInvalidDefinition is returned when a puzzle does not have exactly four
// categories of four unique words.
var ErrInvalidDefinition = errors.New("invalid puzzle definition")

// Category is a thematic group of words.
// Level ranks difficulty from 0 (easiest) to 3 (hardest) and picks the emoji tier.
type Category struct {
	Name  string   `json:"name"`
	Level int      `json:"level"`
	Words []string `json:"words"` // set, kept sorted
}

// Contains reports whether word belongs to the category.
func (c Category) Contains(word string) bool {
	return lo.Contains(c.Words, word)
}

// Overlap returns how many of the candidate words belong to the category.
func (c Category) Overlap(candidate []string) int {
	return len(lo.Intersect(c.Words, candidate))
}

// Definition describes one day's puzzle. It is never mutated after NewDefinition.
type Definition struct {
	ID         int        `json:"id"`
	Date       string     `json:"date"`
	Categories []Category `json:"categories"`
}

// NewDefinition validates and builds a Definition.
// Category word lists are normalized to sorted sets.
func NewDefinition(id int, date string, categories []Category) (*Definition, error) {
	if len(categories) != NumCategories {
		return nil, fmt.Errorf("%w: want %d categories, got %d", ErrInvalidDefinition, NumCategories, len(categories))
	}
	cats := make([]Category, len(categories))
	seen := make(map[string]struct{}, NumWords)
	for i, c := range categories {
		words := normalize(c.Words)
		if len(words) != GroupSize || len(c.Words) != GroupSize {
			return nil, fmt.Errorf("%w: category %q has %d words", ErrInvalidDefinition, c.Name, len(c.Words))
		}
		if c.Level < 0 || c.Level > HardestLevel {
			return nil, fmt.Errorf("%w: category %q has level %d", ErrInvalidDefinition, c.Name, c.Level)
		}
		for _, w := range words {
			if _, dup := seen[w]; dup {
				return nil, fmt.Errorf("%w: word %q appears twice", ErrInvalidDefinition, w)
			}
			seen[w] = struct{}{}
		}
		cats[i] = Category{Name: c.Name, Level: c.Level, Words: words}
	}
	return &Definition{ID: id, Date: date, Categories: cats}, nil
}

// Words returns all 16 words in category order.
func (d *Definition) Words() []string {
	return lo.FlatMap(d.Categories, func(c Category, _ int) []string { return c.Words })
}

// CategoryOf returns the category containing word.
func (d *Definition) CategoryOf(word string) (Category, bool) {
	return lo.Find(d.Categories, func(c Category) bool { return c.Contains(word) })
}

// Hardest returns the level-3 category, if present.
func (d *Definition) Hardest() (Category, bool) {
	return lo.Find(d.Categories, func(c Category) bool { return c.Level == HardestLevel })
}

// Guess is a submitted candidate set with its best overlap against any category.
// Two guesses are the same guess when their word sets are equal.
type Guess struct {
	Words []string `json:"words"` // set, kept sorted
	Score int      `json:"score"`
}

// Matches reports whether the guess covers exactly the given word set.
func (g Guess) Matches(words []string) bool {
	return sameSet(g.Words, words)
}

// Outcome classifies the result of submitting a guess.
type Outcome string

const (
	AlreadyGuessed Outcome = "already_guessed"
	Incorrect      Outcome = "incorrect"
	OneAway        Outcome = "one_away"
	Correct        Outcome = "correct"
)

// Shuffler is the random source used to permute the board.
// *math/rand/v2.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// State is the mutable game state for one puzzle.
// It is not safe for concurrent use; callers serialize mutations.
type State struct {
	Definition *Definition // shared, read-only
	Order      []string    // unsolved words in board order
	Guesses    []Guess     // chronological, append-only
	rng        Shuffler
}

// Facts are the per-game values an external stats view aggregates.
type Facts struct {
	ID           int    `json:"id"`
	Date         string `json:"date"`
	Complete     bool   `json:"complete"`
	GuessCount   int    `json:"guessCount"`
	Perfect      bool   `json:"perfect"`
	HardestFirst bool   `json:"hardestFirst"`
}

// normalize turns a word list into a sorted set.
func normalize(words []string) []string {
	out := lo.Uniq(words)
	sort.Strings(out)
	return out
}

func sameSet(a, b []string) bool {
	a, b = normalize(a), normalize(b)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
