// internal/puzzle/summary.go
//
// Shareable emoji transcript of a game.

package puzzle

import (
	"fmt"
	"sort"
	"strings"
)

// Banner is the first line of every summary.
const Banner = "Connections"

// Emoji returns the color square for a category level.
func Emoji(level int) string {
	switch level {
	case 0:
		return "🟨"
	case 1:
		return "🟩"
	case 2:
		return "🟦"
	case 3:
		return "🟪"
	default:
		return "⬛️"
	}
}

// Name is the display name of the puzzle, e.g. "Puzzle #273".
func (s *State) Name() string {
	return fmt.Sprintf("Puzzle #%d", s.Definition.number())
}

// Summary renders the guess history as one emoji row per guess, each square
// colored by the category its word belongs to.
func Summary(s *State) string {
	lines := []string{Banner, s.Name()}
	for _, g := range s.Guesses {
		words := append([]string(nil), g.Words...)
		sort.Strings(words)
		var b strings.Builder
		for _, w := range words {
			level := -1
			if c, ok := s.Definition.CategoryOf(w); ok {
				level = c.Level
			}
			b.WriteString(Emoji(level))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// number is the puzzle number shown to players, derived from the publish date.
func (d *Definition) number() int {
	if n, err := PuzzleNumberOf(d.Date); err == nil {
		return n
	}
	return d.ID
}
