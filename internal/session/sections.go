// internal/session/sections.go
//
// Listings that drive the puzzle picker and the external stats view.

package session

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/robalobadob/connections/internal/puzzle"
)

// Sections groups puzzle dates for navigation.
type Sections struct {
	Today        string   `json:"today"`
	Yesterday    string   `json:"yesterday"`
	InProgress   []string `json:"inProgress"`   // oldest first
	StreakRepair []string `json:"streakRepair"` // oldest first
	Completed    []string `json:"completed"`    // newest first
	Archive      []string `json:"archive"`      // newest first
}

// Sections builds the navigation listing from the stored games.
func (s *Service) Sections(ctx context.Context) (Sections, error) {
	states, err := s.states(ctx)
	if err != nil {
		return Sections{}, err
	}
	now := s.now()
	dates := func(pred func(*puzzle.State) bool) []string {
		return lo.FilterMap(states, func(st *puzzle.State, _ int) (string, bool) {
			return st.Definition.Date, pred(st)
		})
	}

	return Sections{
		Today:        puzzle.FormatDate(now),
		Yesterday:    puzzle.FormatDate(now.AddDate(0, 0, -1)),
		InProgress:   dates((*puzzle.State).IsInProgress),
		StreakRepair: StreakRepair(states, now),
		Completed:    lo.Reverse(dates((*puzzle.State).IsComplete)),
		Archive:      puzzle.Archive(now),
	}, nil
}

// Facts lists the per-game stats facts of every stored game, oldest first.
func (s *Service) Facts(ctx context.Context) ([]puzzle.Facts, error) {
	states, err := s.states(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(states, func(st *puzzle.State, _ int) puzzle.Facts { return st.Facts() }), nil
}

// StreakRepair lists the dates after the first completed game that still lack
// a completed game, oldest first. states must be sorted by date.
func StreakRepair(states []*puzzle.State, today time.Time) []string {
	first, ok := lo.Find(states, (*puzzle.State).IsComplete)
	if !ok {
		return []string{}
	}
	firstDate := first.Definition.Date
	complete := lo.Associate(states, func(st *puzzle.State) (string, bool) {
		return st.Definition.Date, st.IsComplete()
	})

	out := []string{}
	for _, date := range puzzle.Archive(today) {
		if date <= firstDate {
			break
		}
		if complete[date] {
			continue
		}
		out = append(out, date)
	}
	return lo.Reverse(out)
}

func (s *Service) states(ctx context.Context) ([]*puzzle.State, error) {
	recs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*puzzle.State, 0, len(recs))
	for _, r := range recs {
		st, err := puzzle.FromRecord(r, s.rng)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}
