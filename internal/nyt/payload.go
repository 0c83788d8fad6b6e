// internal/nyt/payload.go
//
// Decoding of upstream puzzle payloads.
// Two wire shapes are accepted:
//   - v1: a map of category name → {level, members} plus "startingGroups" rows.
//   - v2: a list of {title, cards[{position, content, image_alt_text}]}; the
//     list index is the level and the starting board is the cards sorted by
//     position, chunked into rows of four.
//
// Both normalize to a puzzle.Definition and a starting word order.

package nyt

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/robalobadob/connections/internal/puzzle"
)

// ErrDecode is returned when a payload matches neither shape or breaks the
// four-by-four invariants.
var ErrDecode = errors.New("decode puzzle payload")

// GroupData is one v1 category.
type GroupData struct {
	Level   int      `json:"level"`
	Members []string `json:"members"`
}

// Card is one v2 tile.
type Card struct {
	Position     int     `json:"position"`
	Content      *string `json:"content,omitempty"`
	ImageURL     *string `json:"image_url,omitempty"`
	ImageAltText *string `json:"image_alt_text,omitempty"`
}

// Text picks the display text of a card: alt text, then content, then "Unknown".
func (c Card) Text() string {
	if c.ImageAltText != nil {
		return *c.ImageAltText
	}
	if c.Content != nil {
		return *c.Content
	}
	return "Unknown"
}

// CategoryData is one v2 category.
type CategoryData struct {
	Title string `json:"title"`
	Cards []Card `json:"cards"`
}

// Payload is the union of both upstream shapes.
type Payload struct {
	ID        int     `json:"id"`
	PrintDate *string `json:"print_date,omitempty"`
	Editor    *string `json:"editor,omitempty"`
	Status    *string `json:"status,omitempty"`

	// v1
	Groups         map[string]GroupData `json:"groups,omitempty"`
	StartingGroups [][]string           `json:"startingGroups,omitempty"`

	// v2
	Categories []CategoryData `json:"categories,omitempty"`
}

// Decode parses raw JSON into a Payload and checks that one shape is present.
func Decode(raw []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(p.Groups) == 0 && len(p.Categories) == 0 {
		return nil, fmt.Errorf("%w: no groups or categories", ErrDecode)
	}
	return &p, nil
}

// IsImageBased reports the v2 shape, which can carry image tiles.
func (p *Payload) IsImageBased() bool { return len(p.Categories) > 0 }

// GroupsV1 returns the categories in v1 form, converting v2 when needed.
func (p *Payload) GroupsV1() map[string]GroupData {
	if len(p.Groups) > 0 {
		return p.Groups
	}
	out := make(map[string]GroupData, len(p.Categories))
	for i, c := range p.Categories {
		out[c.Title] = GroupData{Level: i, Members: lo.Map(c.Cards, func(card Card, _ int) string { return card.Text() })}
	}
	return out
}

// StartingRows returns the starting board in rows of four.
func (p *Payload) StartingRows() [][]string {
	if len(p.StartingGroups) > 0 {
		return p.StartingGroups
	}
	cards := lo.FlatMap(p.Categories, func(c CategoryData, _ int) []Card { return c.Cards })
	sort.SliceStable(cards, func(i, j int) bool { return cards[i].Position < cards[j].Position })
	texts := lo.Map(cards, func(c Card, _ int) string { return c.Text() })
	return lo.Chunk(texts, puzzle.GroupSize)
}

// Definition normalizes the payload into a validated puzzle for date.
// The puzzle id is always derived from the date; upstream ids are not stable
// across API versions.
func (p *Payload) Definition(date string) (*puzzle.Definition, error) {
	id, err := puzzle.PuzzleNumberOf(date)
	if err != nil {
		return nil, fmt.Errorf("%w: bad date %q: %v", ErrDecode, date, err)
	}
	groups := p.GroupsV1()
	cats := make([]puzzle.Category, 0, len(groups))
	for name, g := range groups {
		cats = append(cats, puzzle.Category{Name: name, Level: g.Level, Words: g.Members})
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].Level != cats[j].Level {
			return cats[i].Level < cats[j].Level
		}
		return cats[i].Name < cats[j].Name
	})
	def, err := puzzle.NewDefinition(id, date, cats)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return def, nil
}

// StartingOrder flattens the starting rows. It returns nil when the rows are
// not a permutation of the definition's words, so the caller shuffles instead.
func (p *Payload) StartingOrder(def *puzzle.Definition) []string {
	order := lo.Flatten(p.StartingRows())
	if len(order) != puzzle.NumWords || len(lo.Uniq(order)) != puzzle.NumWords {
		return nil
	}
	if !lo.Every(def.Words(), order) {
		return nil
	}
	return order
}
