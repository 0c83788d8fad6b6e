package puzzle

import (
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(from, to int) []string {
	var out []string
	for i := from; i <= to; i++ {
		out = append(out, "w"+strconv.Itoa(i))
	}
	return out
}

func testDefinition(t *testing.T) *Definition {
	t.Helper()
	def, err := NewDefinition(273, "2024-03-10", []Category{
		{Name: "A", Level: 0, Words: words(1, 4)},
		{Name: "B", Level: 1, Words: words(5, 8)},
		{Name: "C", Level: 2, Words: words(9, 12)},
		{Name: "D", Level: 3, Words: words(13, 16)},
	})
	require.NoError(t, err)
	return def
}

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func newTestState(t *testing.T) *State {
	t.Helper()
	return NewState(testDefinition(t), words(1, 16), testRand())
}

func TestNewDefinition_Invariants(t *testing.T) {
	def := testDefinition(t)
	assert.Len(t, def.Categories, NumCategories)
	assert.ElementsMatch(t, words(1, 16), def.Words())
	for _, c := range def.Categories {
		assert.Len(t, c.Words, GroupSize)
	}
}

func TestNewDefinition_Rejects(t *testing.T) {
	cases := map[string][]Category{
		"three categories": {
			{Name: "A", Level: 0, Words: words(1, 4)},
			{Name: "B", Level: 1, Words: words(5, 8)},
			{Name: "C", Level: 2, Words: words(9, 12)},
		},
		"short category": {
			{Name: "A", Level: 0, Words: words(1, 3)},
			{Name: "B", Level: 1, Words: words(5, 8)},
			{Name: "C", Level: 2, Words: words(9, 12)},
			{Name: "D", Level: 3, Words: words(13, 16)},
		},
		"duplicate word": {
			{Name: "A", Level: 0, Words: words(1, 4)},
			{Name: "B", Level: 1, Words: []string{"w4", "w6", "w7", "w8"}},
			{Name: "C", Level: 2, Words: words(9, 12)},
			{Name: "D", Level: 3, Words: words(13, 16)},
		},
		"repeated word inside a category": {
			{Name: "A", Level: 0, Words: []string{"w1", "w1", "w2", "w3"}},
			{Name: "B", Level: 1, Words: words(5, 8)},
			{Name: "C", Level: 2, Words: words(9, 12)},
			{Name: "D", Level: 3, Words: words(13, 16)},
		},
		"level out of range": {
			{Name: "A", Level: 0, Words: words(1, 4)},
			{Name: "B", Level: 1, Words: words(5, 8)},
			{Name: "C", Level: 2, Words: words(9, 12)},
			{Name: "D", Level: 4, Words: words(13, 16)},
		},
	}
	for name, cats := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewDefinition(1, "2023-06-12", cats)
			assert.ErrorIs(t, err, ErrInvalidDefinition)
		})
	}
}

func TestEvaluate_FirstMaximumWins(t *testing.T) {
	def := testDefinition(t)

	best, score := Evaluate(def.Categories, []string{"w5", "w6", "w1", "w2"})
	assert.Equal(t, "A", best.Name)
	assert.Equal(t, 2, score)

	best, score = Evaluate(def.Categories, []string{"w9", "w10", "w11", "w13"})
	assert.Equal(t, "C", best.Name)
	assert.Equal(t, 3, score)

	best, score = Evaluate(def.Categories, []string{"w16"})
	assert.Equal(t, "D", best.Name)
	assert.Equal(t, 1, score)
}

func TestGuess_CorrectRemovesCategory(t *testing.T) {
	s := newTestState(t)

	out := s.Guess([]string{"w1", "w2", "w3", "w4"})

	assert.Equal(t, Correct, out)
	assert.Equal(t, words(5, 16), s.Order)
	assert.Len(t, s.Guesses, 1)
	assert.Equal(t, 4, s.Guesses[0].Score)
}

func TestGuess_OneAwayKeepsBoard(t *testing.T) {
	s := newTestState(t)
	require.Equal(t, Correct, s.Guess([]string{"w1", "w2", "w3", "w4"}))

	out := s.Guess([]string{"w1", "w2", "w3", "w5"})

	assert.Equal(t, OneAway, out)
	assert.Len(t, s.Order, 12)
	assert.Len(t, s.Guesses, 2)
	assert.Equal(t, 3, s.Guesses[1].Score)
}

func TestGuess_Incorrect(t *testing.T) {
	s := newTestState(t)

	out := s.Guess([]string{"w1", "w2", "w5", "w6"})

	assert.Equal(t, Incorrect, out)
	assert.Len(t, s.Order, 16)
	assert.Equal(t, []Guess{{Words: []string{"w1", "w2", "w5", "w6"}, Score: 2}}, s.Guesses)
}

func TestGuess_AlreadyGuessedIsNoop(t *testing.T) {
	s := newTestState(t)
	require.Equal(t, Correct, s.Guess([]string{"w1", "w2", "w3", "w4"}))
	require.Equal(t, Incorrect, s.Guess([]string{"w5", "w6", "w9", "w10"}))
	before := append([]string(nil), s.Order...)

	assert.Equal(t, AlreadyGuessed, s.Guess([]string{"w4", "w3", "w2", "w1"}))
	assert.Equal(t, AlreadyGuessed, s.Guess([]string{"w10", "w9", "w6", "w5"}))
	assert.Len(t, s.Guesses, 2)
	assert.Equal(t, before, s.Order)
}

func TestGuessRow(t *testing.T) {
	s := newTestState(t)

	assert.Equal(t, Correct, s.GuessRow(4, 8))
	assert.Equal(t, append(words(1, 4), words(9, 16)...), s.Order)
}

func TestDerivedStatus_PerfectAndHardestFirst(t *testing.T) {
	s := newTestState(t)
	assert.False(t, s.IsInProgress())

	require.Equal(t, Correct, s.Guess(words(13, 16)))
	assert.True(t, s.IsInProgress())
	require.Equal(t, Correct, s.Guess(words(1, 4)))
	require.Equal(t, Correct, s.Guess(words(5, 8)))
	require.Equal(t, Correct, s.Guess(words(9, 12)))

	assert.True(t, s.IsComplete())
	assert.False(t, s.IsInProgress())
	assert.True(t, s.IsPerfectScore())
	assert.True(t, s.SolvedHardestFirst())
	assert.Equal(t, 4, s.NumFound())

	found := s.FoundCategories()
	names := []string{found[0].Name, found[1].Name, found[2].Name, found[3].Name}
	assert.Equal(t, []string{"D", "A", "B", "C"}, names)

	assert.Equal(t, Facts{ID: 273, Date: "2024-03-10", Complete: true, GuessCount: 4, Perfect: true, HardestFirst: true}, s.Facts())
}

func TestDerivedStatus_WastedGuess(t *testing.T) {
	s := newTestState(t)
	s.Guess([]string{"w1", "w2", "w3", "w5"})
	for _, g := range [][]string{words(1, 4), words(5, 8), words(9, 12), words(13, 16)} {
		s.Guess(g)
	}

	assert.True(t, s.IsComplete())
	assert.False(t, s.IsPerfectScore())
	assert.False(t, s.SolvedHardestFirst())
	assert.Equal(t, 5, s.Facts().GuessCount)
}

func TestShuffle_PreservesWordsAndHistory(t *testing.T) {
	s := newTestState(t)
	s.Guess([]string{"w1", "w2", "w5", "w6"})
	history := append([]Guess(nil), s.Guesses...)

	s.Shuffle()

	assert.ElementsMatch(t, words(1, 16), s.Order)
	assert.Equal(t, history, s.Guesses)
}

func TestNewState_ShufflesWithoutStartingOrder(t *testing.T) {
	s := NewState(testDefinition(t), nil, testRand())

	assert.Len(t, s.Order, NumWords)
	assert.ElementsMatch(t, words(1, 16), s.Order)
	assert.Empty(t, s.Guesses)
}

func TestNewState_NilRandomSourceStillShuffles(t *testing.T) {
	def := testDefinition(t)

	s := NewState(def, nil, nil)
	assert.ElementsMatch(t, words(1, 16), s.Order)
	assert.NotEqual(t, def.Words(), s.Order, "board must not be dealt in category order")

	restored := Restore(def, def.Words(), nil, nil)
	restored.Shuffle()
	assert.ElementsMatch(t, words(1, 16), restored.Order)
	assert.NotEqual(t, def.Words(), restored.Order)
}

func TestReset(t *testing.T) {
	s := newTestState(t)
	s.Guess(words(1, 4))
	s.Guess([]string{"w5", "w6", "w9", "w10"})

	s.Reset()

	assert.Empty(t, s.Guesses)
	assert.ElementsMatch(t, words(1, 16), s.Order)
	assert.False(t, s.IsInProgress())
}

func TestRecord_RestoresState(t *testing.T) {
	s := newTestState(t)
	s.Guess(words(13, 16))
	s.Hoist([]string{"w9"})

	restored, err := FromRecord(s.Record(), testRand())
	require.NoError(t, err)

	assert.Equal(t, s.Order, restored.Order)
	assert.Equal(t, s.Guesses, restored.Guesses)
	assert.Equal(t, s.Definition, restored.Definition)
	assert.Equal(t, AlreadyGuessed, restored.Guess(words(13, 16)))
}
