// internal/puzzle/reorder.go
//
// Board reordering used by drag and swipe interactions.
// All operations rearrange State.Order in place and never touch the guess history.

package puzzle

import "github.com/samber/lo"

// Hoist moves the given words to the front of the board, keeping their relative order.
func (s *State) Hoist(words []string) {
	picked := pick(s.Order, words)
	s.Order = append(picked, without(s.Order, words)...)
}

// Drop moves the given words to the end of the board, keeping their relative order.
func (s *State) Drop(words []string) {
	picked := pick(s.Order, words)
	s.Order = append(without(s.Order, words), picked...)
}

// RollBlock moves the 4-word block starting at start one row up (direction < 0)
// or down (direction > 0), wrapping around the board.
// A block that does not fit on the board is left alone.
func (s *State) RollBlock(start, direction int) {
	n := len(s.Order)
	if start < 0 || start+GroupSize > n {
		return
	}
	block := append([]string(nil), s.Order[start:start+GroupSize]...)
	dest := (start + sign(direction)*GroupSize + n) % n

	rest := make([]string, 0, n)
	rest = append(rest, s.Order[:start]...)
	rest = append(rest, s.Order[start+GroupSize:]...)
	if dest > len(rest) {
		dest = len(rest)
	}

	out := make([]string, 0, n)
	out = append(out, rest[:dest]...)
	out = append(out, block...)
	out = append(out, rest[dest:]...)
	s.Order = out
}

// MoveSelection applies a drag gesture to a selection.
// A selection that is exactly one aligned board row rolls as a block; any other
// selection is hoisted (direction < 0) or dropped (direction > 0).
func (s *State) MoveSelection(words []string, direction int) {
	if start, ok := s.alignedRow(words); ok {
		s.RollBlock(start, direction)
		return
	}
	switch {
	case direction < 0:
		s.Hoist(words)
	case direction > 0:
		s.Drop(words)
	}
}

// alignedRow reports whether words occupy one full row of the board and returns its start.
func (s *State) alignedRow(words []string) (int, bool) {
	if len(lo.Uniq(words)) != GroupSize {
		return 0, false
	}
	var idx []int
	for i, w := range s.Order {
		if lo.Contains(words, w) {
			idx = append(idx, i)
		}
	}
	if len(idx) != GroupSize {
		return 0, false
	}
	first := idx[0]
	return first, first%GroupSize == 0 && idx[GroupSize-1] == first+GroupSize-1
}

// pick returns the members of order that are in words, in board order.
func pick(order, words []string) []string {
	return lo.Filter(order, func(w string, _ int) bool { return lo.Contains(words, w) })
}

// without returns order minus every word in words, survivors keeping their order.
func without(order, words []string) []string {
	return lo.Filter(order, func(w string, _ int) bool { return !lo.Contains(words, w) })
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
