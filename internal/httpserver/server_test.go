package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/connections/internal/nyt"
	"github.com/robalobadob/connections/internal/puzzle"
	"github.com/robalobadob/connections/internal/session"
	"github.com/robalobadob/connections/internal/store"
)

type staticFetcher struct{}

func (staticFetcher) FetchByDate(ctx context.Context, date string) (*nyt.Payload, error) {
	return &nyt.Payload{
		Groups: map[string]nyt.GroupData{
			"FISH":   {Level: 0, Members: []string{"BASS", "PIKE", "CARP", "SOLE"}},
			"SHOES":  {Level: 1, Members: []string{"PUMP", "MULE", "CLOG", "FLAT"}},
			"KEYS":   {Level: 2, Members: []string{"SHIFT", "ENTER", "TAB", "END"}},
			"_ BALL": {Level: 3, Members: []string{"FOOT", "BASKET", "HAND", "SNOW"}},
		},
		StartingGroups: [][]string{
			{"BASS", "PIKE", "CARP", "SOLE"},
			{"PUMP", "MULE", "CLOG", "FLAT"},
			{"SHIFT", "ENTER", "TAB", "END"},
			{"FOOT", "BASKET", "HAND", "SNOW"},
		},
	}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	svc := session.New(store.NewMemoryStore(), staticFetcher{}, rand.New(rand.NewPCG(3, 4)),
		session.WithClock(func() time.Time { return now }))
	srv := httptest.NewServer(New(svc, "", time.Second).Router())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, reqBody string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(reqBody))
	require.NoError(t, err)
	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, body
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	res, body := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestGetPuzzle(t *testing.T) {
	srv := newTestServer(t)

	res, body := do(t, srv, http.MethodGet, "/puzzles/today", "")
	require.Equal(t, http.StatusOK, res.StatusCode)

	var v stateView
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, 273, v.ID)
	assert.Equal(t, "Puzzle #273", v.Name)
	assert.Equal(t, "Sunday, Mar 10, 2024", v.HumanDate)
	assert.Len(t, v.Words, puzzle.NumWords)
	assert.Empty(t, v.Found)
}

func TestGuessFlow(t *testing.T) {
	srv := newTestServer(t)

	res, body := do(t, srv, http.MethodPost, "/puzzles/2024-03-10/guess", `{"words":["FOOT","BASKET","HAND","SNOW"]}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var g guessRes
	require.NoError(t, json.Unmarshal(body, &g))
	assert.Equal(t, puzzle.Correct, g.Outcome)
	assert.Len(t, g.State.Words, 12)
	require.Len(t, g.State.Found, 1)
	assert.Equal(t, "🟪", g.State.Found[0].Emoji)

	res, body = do(t, srv, http.MethodPost, "/puzzles/2024-03-10/guess", `{"row":0}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.Unmarshal(body, &g))
	assert.Equal(t, puzzle.Correct, g.Outcome)

	res, body = do(t, srv, http.MethodPost, "/puzzles/2024-03-10/guess", `{"words":["SNOW","HAND","BASKET","FOOT"]}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.Unmarshal(body, &g))
	assert.Equal(t, puzzle.AlreadyGuessed, g.Outcome)
	assert.Len(t, g.State.Guesses, 2)

	res, body = do(t, srv, http.MethodGet, "/puzzles/2024-03-10/summary", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", res.Header.Get("Content-Type"))
	assert.Equal(t, "Connections\nPuzzle #273\n🟪🟪🟪🟪\n🟨🟨🟨🟨", string(body))
}

func TestGuessErrors(t *testing.T) {
	srv := newTestServer(t)

	res, _ := do(t, srv, http.MethodPost, "/puzzles/2024-03-10/guess", `{"words":["NOPE"]}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = do(t, srv, http.MethodPost, "/puzzles/2024-03-10/guess", `not json`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = do(t, srv, http.MethodGet, "/puzzles/2031-01-01", "")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestMoveShuffleReset(t *testing.T) {
	srv := newTestServer(t)

	res, body := do(t, srv, http.MethodPost, "/puzzles/2024-03-10/move", `{"words":["SHIFT","ENTER","TAB","END"],"direction":-1}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var v stateView
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, []string{"SHIFT", "ENTER", "TAB", "END"}, v.Words[4:8])

	res, body = do(t, srv, http.MethodPost, "/puzzles/2024-03-10/shuffle", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Len(t, v.Words, 16)

	res, body = do(t, srv, http.MethodPost, "/puzzles/2024-03-10/reset", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Empty(t, v.Guesses)
}

func TestHoistDrop(t *testing.T) {
	srv := newTestServer(t)

	res, body := do(t, srv, http.MethodPost, "/puzzles/2024-03-10/hoist", `{"words":["SHIFT","ENTER","TAB","END"]}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var v stateView
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, []string{"SHIFT", "ENTER", "TAB", "END"}, v.Words[:4])

	res, body = do(t, srv, http.MethodPost, "/puzzles/2024-03-10/drop", `{"words":["BASS","PIKE","CARP","SOLE"]}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, []string{"BASS", "PIKE", "CARP", "SOLE"}, v.Words[12:])

	res, _ = do(t, srv, http.MethodPost, "/puzzles/2024-03-10/hoist", `{"words":["NOPE"]}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res, _ = do(t, srv, http.MethodPost, "/puzzles/2024-03-10/drop", `{}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestRequestTimeout_CoversBothFetchAttempts(t *testing.T) {
	assert.Equal(t, DefaultRequestTimeout, RequestTimeout(0))
	for _, fetch := range []time.Duration{time.Second, 10 * time.Second, time.Minute} {
		assert.Greater(t, RequestTimeout(fetch), 2*fetch, "fetch timeout %s", fetch)
	}
}

func TestSectionsAndStats(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodPost, "/puzzles/2024-03-09/guess", `{"words":["BASS","PIKE","CARP","PUMP"]}`)

	res, body := do(t, srv, http.MethodGet, "/puzzles", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var sec session.Sections
	require.NoError(t, json.Unmarshal(body, &sec))
	assert.Equal(t, []string{"2024-03-09"}, sec.InProgress)
	assert.Equal(t, "2024-03-10", sec.Today)

	res, body = do(t, srv, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var st statsRes
	require.NoError(t, json.Unmarshal(body, &st))
	require.Len(t, st.Games, 1)
	assert.Equal(t, 1, st.Games[0].GuessCount)

	res, body = do(t, srv, http.MethodPost, "/sync", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"date":"2024-03-10","added":true}`, string(body))
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t)
	res, body := do(t, srv, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.JSONEq(t, `{"error":"not_found","path":"/nope"}`, string(body))
}
