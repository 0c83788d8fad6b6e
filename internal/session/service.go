// internal/session/service.go
//
// Session service: the single entry point the HTTP server and CLI use to play.
// Responsibilities:
//   - Open a puzzle by date, downloading and persisting it on first use.
//   - Serialize mutations per puzzle (one in-flight mutation per state).
//   - Persist the state after every mutation.
//   - Daily sync and forced redownload.
//
// The engine itself (internal/puzzle) is synchronous and unsynchronized; all
// locking lives here.

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/robalobadob/connections/internal/nyt"
	"github.com/robalobadob/connections/internal/puzzle"
	"github.com/robalobadob/connections/internal/store"
)

var (
	// ErrInvalidDate is returned for malformed, pre-epoch or unpublished dates.
	ErrInvalidDate = errors.New("invalid puzzle date")
	// ErrInvalidGuess is returned for an empty or oversized candidate.
	ErrInvalidGuess = errors.New("invalid guess")
	// ErrNotInPlay is returned when a guess or move names a word not on the board.
	ErrNotInPlay = errors.New("word not in play")
)

// Fetcher downloads upstream puzzle payloads. *nyt.Client satisfies it.
type Fetcher interface {
	FetchByDate(ctx context.Context, date string) (*nyt.Payload, error)
}

// Service wires the engine to a store and a fetcher.
type Service struct {
	store store.Store
	fetch Fetcher
	rng   puzzle.Shuffler
	now   func() time.Time

	mu    sync.Mutex             // guards locks
	locks map[string]*sync.Mutex // per-date mutation locks
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the wall clock (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New constructs a Service. rng is wrapped so it can be shared across puzzles.
func New(st store.Store, f Fetcher, rng puzzle.Shuffler, opts ...Option) *Service {
	s := &Service{
		store: st,
		fetch: f,
		rng:   &lockedShuffler{r: rng},
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Today returns today's date key.
func (s *Service) Today() string { return puzzle.FormatDate(s.now()) }

// Open returns the state for date, downloading the puzzle if it is not stored yet.
func (s *Service) Open(ctx context.Context, date string) (*puzzle.State, error) {
	if err := s.checkDate(date); err != nil {
		return nil, err
	}
	unlock := s.lock(date)
	defer unlock()
	return s.load(ctx, date)
}

// Sync makes sure today's puzzle is stored. It reports whether a download happened.
func (s *Service) Sync(ctx context.Context) (bool, error) {
	today := s.Today()
	unlock := s.lock(today)
	defer unlock()

	if _, err := s.store.Get(ctx, today); err == nil {
		log.Debug().Str("date", today).Msg("sync: already stored")
		return false, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	id, _ := puzzle.PuzzleNumberOf(today)
	if _, err := s.store.GetByID(ctx, id); err == nil {
		return false, nil
	}
	if _, err := s.download(ctx, today); err != nil {
		return false, err
	}
	return true, nil
}

// Redownload discards any stored progress for date and fetches a fresh copy.
func (s *Service) Redownload(ctx context.Context, date string) (*puzzle.State, error) {
	if err := s.checkDate(date); err != nil {
		return nil, err
	}
	unlock := s.lock(date)
	defer unlock()

	if err := s.store.Delete(ctx, date); err != nil {
		return nil, fmt.Errorf("delete %s: %w", date, err)
	}
	log.Info().Str("date", date).Msg("redownloading puzzle")
	return s.download(ctx, date)
}

// Guess submits a candidate word set for date.
func (s *Service) Guess(ctx context.Context, date string, words []string) (puzzle.Outcome, *puzzle.State, error) {
	n := len(lo.Uniq(words))
	if n == 0 || n > puzzle.GroupSize {
		return "", nil, fmt.Errorf("%w: %d words", ErrInvalidGuess, n)
	}
	var out puzzle.Outcome
	st, err := s.mutate(ctx, date, func(st *puzzle.State) error {
		if !st.HasGuessed(words) {
			if err := inPlay(st, words); err != nil {
				return err
			}
		}
		out = st.Guess(words)
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	log.Info().Str("date", date).Strs("words", words).Str("outcome", string(out)).Msg("guess")
	return out, st, nil
}

// GuessRow guesses the four words in board row row (0-based).
func (s *Service) GuessRow(ctx context.Context, date string, row int) (puzzle.Outcome, *puzzle.State, error) {
	var out puzzle.Outcome
	st, err := s.mutate(ctx, date, func(st *puzzle.State) error {
		if row < 0 || row >= len(st.Order)/puzzle.GroupSize {
			return fmt.Errorf("%w: row %d", ErrInvalidGuess, row)
		}
		start := row * puzzle.GroupSize
		out = st.GuessRow(start, start+puzzle.GroupSize)
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return out, st, nil
}

// Move applies a drag gesture: a full aligned row rolls, other selections go to an edge.
func (s *Service) Move(ctx context.Context, date string, words []string, direction int) (*puzzle.State, error) {
	return s.mutate(ctx, date, func(st *puzzle.State) error {
		if err := inPlay(st, words); err != nil {
			return err
		}
		st.MoveSelection(words, direction)
		return nil
	})
}

// Hoist moves words to the top of the board, even when they form a full row.
func (s *Service) Hoist(ctx context.Context, date string, words []string) (*puzzle.State, error) {
	return s.reorder(ctx, date, words, (*puzzle.State).Hoist)
}

// Drop moves words to the bottom of the board, even when they form a full row.
func (s *Service) Drop(ctx context.Context, date string, words []string) (*puzzle.State, error) {
	return s.reorder(ctx, date, words, (*puzzle.State).Drop)
}

func (s *Service) reorder(ctx context.Context, date string, words []string, fn func(*puzzle.State, []string)) (*puzzle.State, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: empty selection", ErrInvalidGuess)
	}
	return s.mutate(ctx, date, func(st *puzzle.State) error {
		if err := inPlay(st, words); err != nil {
			return err
		}
		fn(st, words)
		return nil
	})
}

// Shuffle permutes the board.
func (s *Service) Shuffle(ctx context.Context, date string) (*puzzle.State, error) {
	return s.mutate(ctx, date, func(st *puzzle.State) error {
		st.Shuffle()
		return nil
	})
}

// Reset discards all progress on date.
func (s *Service) Reset(ctx context.Context, date string) (*puzzle.State, error) {
	return s.mutate(ctx, date, func(st *puzzle.State) error {
		st.Reset()
		return nil
	})
}

// Summary renders the share transcript for date.
func (s *Service) Summary(ctx context.Context, date string) (string, error) {
	st, err := s.Open(ctx, date)
	if err != nil {
		return "", err
	}
	return puzzle.Summary(st), nil
}

// mutate loads date, applies fn and persists the result, all under the date's lock.
func (s *Service) mutate(ctx context.Context, date string, fn func(*puzzle.State) error) (*puzzle.State, error) {
	if err := s.checkDate(date); err != nil {
		return nil, err
	}
	unlock := s.lock(date)
	defer unlock()

	st, err := s.load(ctx, date)
	if err != nil {
		return nil, err
	}
	if err := fn(st); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, st.Record()); err != nil {
		return nil, fmt.Errorf("save %s: %w", date, err)
	}
	return st, nil
}

// load reads date from the store, downloading it when missing. Caller holds the lock.
func (s *Service) load(ctx context.Context, date string) (*puzzle.State, error) {
	rec, err := s.store.Get(ctx, date)
	if errors.Is(err, store.ErrNotFound) {
		return s.download(ctx, date)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", date, err)
	}
	return puzzle.FromRecord(rec, s.rng)
}

// download fetches, builds and persists a fresh state. Caller holds the lock.
func (s *Service) download(ctx context.Context, date string) (*puzzle.State, error) {
	log.Info().Str("date", date).Msg("fetching puzzle")
	p, err := s.fetch.FetchByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	def, err := p.Definition(date)
	if err != nil {
		return nil, err
	}
	st := puzzle.NewState(def, p.StartingOrder(def), s.rng)
	if err := s.store.Save(ctx, st.Record()); err != nil {
		return nil, fmt.Errorf("save %s: %w", date, err)
	}
	log.Info().Int("id", def.ID).Str("date", date).Msg("inserted puzzle")
	return st, nil
}

// checkDate accepts published dates after the epoch.
func (s *Service) checkDate(date string) error {
	n, err := puzzle.PuzzleNumberOf(date)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	if n <= 0 || !puzzle.IsPublished(date, s.now()) {
		return fmt.Errorf("%w: %s", ErrInvalidDate, date)
	}
	return nil
}

func (s *Service) lock(date string) func() {
	s.mu.Lock()
	l, ok := s.locks[date]
	if !ok {
		l = &sync.Mutex{}
		s.locks[date] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func inPlay(st *puzzle.State, words []string) error {
	for _, w := range words {
		if !lo.Contains(st.Order, w) {
			return fmt.Errorf("%w: %q", ErrNotInPlay, w)
		}
	}
	return nil
}

// lockedShuffler makes a shared random source safe across puzzles.
type lockedShuffler struct {
	mu sync.Mutex
	r  puzzle.Shuffler
}

func (l *lockedShuffler) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}
