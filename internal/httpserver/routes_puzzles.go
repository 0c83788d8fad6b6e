// internal/httpserver/routes_puzzles.go
//
// HTTP routes for playing puzzles. Mounted under /puzzles:
//   - GET  /puzzles                    → navigation sections (in progress, streak repair, ...)
//   - GET  /puzzles/{date}             → board + history (downloads on first open)
//   - POST /puzzles/{date}/guess       → submit {"words":[...]} or {"row":n}
//   - POST /puzzles/{date}/move        → drag gesture {"words":[...],"direction":n}
//   - POST /puzzles/{date}/hoist       → move {"words":[...]} to the top
//   - POST /puzzles/{date}/drop        → move {"words":[...]} to the bottom
//   - POST /puzzles/{date}/shuffle     → shuffle the board
//   - POST /puzzles/{date}/reset       → discard progress
//   - POST /puzzles/{date}/redownload  → discard and fetch again
//   - GET  /puzzles/{date}/summary     → emoji transcript (text/plain)
//
// {date} is a "YYYY-MM-DD" key; "today" is accepted as an alias.

package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/connections/internal/puzzle"
)

// mountPuzzles registers all /puzzles routes.
func (s *Server) mountPuzzles(r chi.Router) {
	r.Route("/puzzles", func(r chi.Router) {
		r.Get("/", s.handleSections)
		r.Route("/{date}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Post("/guess", s.handleGuess)
			r.Post("/move", s.handleMove)
			r.Post("/hoist", s.handleHoist)
			r.Post("/drop", s.handleDrop)
			r.Post("/shuffle", s.handleShuffle)
			r.Post("/reset", s.handleReset)
			r.Post("/redownload", s.handleRedownload)
			r.Get("/summary", s.handleSummary)
		})
	})
}

// dateParam resolves the {date} URL parameter.
func (s *Server) dateParam(r *http.Request) string {
	d := chi.URLParam(r, "date")
	if d == "today" {
		return s.svc.Today()
	}
	return d
}

// -----------------------------------------------------------------------------
// views

type categoryView struct {
	Name  string   `json:"name"`
	Level int      `json:"level"`
	Emoji string   `json:"emoji"`
	Words []string `json:"words"`
}

// stateView is the JSON shape of a game. Unsolved categories are never exposed.
type stateView struct {
	ID         int            `json:"id"`
	Date       string         `json:"date"`
	Name       string         `json:"name"`
	HumanDate  string         `json:"humanDate"`
	Words      []string       `json:"words"`
	Found      []categoryView `json:"found"`
	Guesses    []puzzle.Guess `json:"guesses"`
	Complete   bool           `json:"complete"`
	InProgress bool           `json:"inProgress"`
	Perfect    bool           `json:"perfect"`
}

func viewOf(st *puzzle.State) stateView {
	found := []categoryView{}
	for _, c := range st.FoundCategories() {
		found = append(found, categoryView{Name: c.Name, Level: c.Level, Emoji: puzzle.Emoji(c.Level), Words: c.Words})
	}
	return stateView{
		ID:         st.Definition.ID,
		Date:       st.Definition.Date,
		Name:       st.Name(),
		HumanDate:  puzzle.HumanDate(st.Definition.Date),
		Words:      st.Order,
		Found:      found,
		Guesses:    st.Guesses,
		Complete:   st.IsComplete(),
		InProgress: st.IsInProgress(),
		Perfect:    st.IsPerfectScore(),
	}
}

// -----------------------------------------------------------------------------
// handlers

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	sec, err := s.svc.Sections(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sec)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Open(r.Context(), s.dateParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(st))
}

// guessReq is the request payload for /guess. Row takes precedence when set.
type guessReq struct {
	Words []string `json:"words"`
	Row   *int     `json:"row"`
}

// guessRes is the response payload for /guess.
type guessRes struct {
	Outcome puzzle.Outcome `json:"outcome"`
	State   stateView      `json:"state"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var p guessReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad request"})
		return
	}

	var (
		out puzzle.Outcome
		st  *puzzle.State
		err error
	)
	if p.Row != nil {
		out, st, err = s.svc.GuessRow(r.Context(), s.dateParam(r), *p.Row)
	} else {
		out, st, err = s.svc.Guess(r.Context(), s.dateParam(r), p.Words)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, guessRes{Outcome: out, State: viewOf(st)})
}

// moveReq is the request payload for /move.
type moveReq struct {
	Words     []string `json:"words"`
	Direction int      `json:"direction"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var p moveReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || len(p.Words) == 0 {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad request"})
		return
	}
	s.respondState(w)(s.svc.Move(r.Context(), s.dateParam(r), p.Words, p.Direction))
}

// selectionReq is the request payload for /hoist and /drop.
type selectionReq struct {
	Words []string `json:"words"`
}

func (s *Server) handleHoist(w http.ResponseWriter, r *http.Request) {
	var p selectionReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad request"})
		return
	}
	s.respondState(w)(s.svc.Hoist(r.Context(), s.dateParam(r), p.Words))
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	var p selectionReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad request"})
		return
	}
	s.respondState(w)(s.svc.Drop(r.Context(), s.dateParam(r), p.Words))
}

func (s *Server) handleShuffle(w http.ResponseWriter, r *http.Request) {
	s.respondState(w)(s.svc.Shuffle(r.Context(), s.dateParam(r)))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.respondState(w)(s.svc.Reset(r.Context(), s.dateParam(r)))
}

func (s *Server) handleRedownload(w http.ResponseWriter, r *http.Request) {
	s.respondState(w)(s.svc.Redownload(r.Context(), s.dateParam(r)))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	text, err := s.svc.Summary(r.Context(), s.dateParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(text))
}

// respondState writes either the state view or the mapped error.
func (s *Server) respondState(w http.ResponseWriter) func(*puzzle.State, error) {
	return func(st *puzzle.State, err error) {
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, viewOf(st))
	}
}
