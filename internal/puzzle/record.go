// internal/puzzle/record.go
//
// Flat persisted form of a game. ID and Date are both unique keys.

package puzzle

// Record is the serializable form of a State.
type Record struct {
	ID         int        `json:"id"`
	Date       string     `json:"date"`
	Categories []Category `json:"categories"`
	Order      []string   `json:"order"`
	Guesses    []Guess    `json:"guesses"`
}

// Record snapshots the state for persistence.
func (s *State) Record() Record {
	return Record{
		ID:         s.Definition.ID,
		Date:       s.Definition.Date,
		Categories: s.Definition.Categories,
		Order:      append([]string{}, s.Order...),
		Guesses:    append([]Guess{}, s.Guesses...),
	}
}

// FromRecord rebuilds a state from its persisted form.
// The categories are revalidated; a corrupted record is rejected.
func FromRecord(r Record, rng Shuffler) (*State, error) {
	def, err := NewDefinition(r.ID, r.Date, r.Categories)
	if err != nil {
		return nil, err
	}
	return Restore(def, append([]string{}, r.Order...), append([]Guess{}, r.Guesses...), rng), nil
}
