package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/robalobadob/connections/internal/puzzle"
	"github.com/robalobadob/connections/internal/session"
)

var playCmd = &cobra.Command{
	Use:   "play [date|today]",
	Short: "Play a puzzle in the terminal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		svc := newService(st)
		date := svc.Today()
		if len(args) == 1 && args[0] != "today" {
			date = args[0]
		}
		return play(cmd.Context(), svc, date, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
}

const playHelp = `commands:
  guess W1 W2 W3 W4   submit a guess (separate multi-word entries with commas)
  row N               guess board row N (1-4)
  up W...             move words to the top, or roll a full row up
  down W...           move words to the bottom, or roll a full row down
  top W...            move words to the top
  bottom W...         move words to the bottom
  shuffle             shuffle the board
  reset               start over
  summary             print the share transcript
  help                show this text
  quit                leave`

// play runs the interactive loop until quit or EOF.
func play(ctx context.Context, svc *session.Service, date string, in io.Reader, out io.Writer) error {
	st, err := svc.Open(ctx, date)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s, %s\n", st.Name(), puzzle.HumanDate(date))
	printBoard(out, st)

	sc := bufio.NewScanner(in)
	for {
		if st.IsComplete() {
			fmt.Fprintln(out, "\nSolved!")
			fmt.Fprintln(out, puzzle.Summary(st))
			return nil
		}
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		verb, rest, _ := strings.Cut(strings.TrimSpace(sc.Text()), " ")
		verb = strings.ToLower(verb)

		var next *puzzle.State
		err = nil
		switch verb {
		case "":
			continue
		case "quit", "q", "exit":
			return nil
		case "help", "?":
			fmt.Fprintln(out, playHelp)
			continue
		case "board", "b":
			printBoard(out, st)
			continue
		case "summary":
			fmt.Fprintln(out, puzzle.Summary(st))
			continue
		case "guess", "g":
			var outcome puzzle.Outcome
			outcome, next, err = svc.Guess(ctx, date, parseWords(rest))
			if err == nil {
				fmt.Fprintln(out, describe(outcome))
			}
		case "row", "r":
			n, convErr := strconv.Atoi(strings.TrimSpace(rest))
			if convErr != nil {
				fmt.Fprintln(out, "row needs a number")
				continue
			}
			var outcome puzzle.Outcome
			outcome, next, err = svc.GuessRow(ctx, date, n-1)
			if err == nil {
				fmt.Fprintln(out, describe(outcome))
			}
		case "up", "down":
			dir := -1
			if verb == "down" {
				dir = 1
			}
			next, err = svc.Move(ctx, date, parseWords(rest), dir)
		case "top":
			next, err = svc.Hoist(ctx, date, parseWords(rest))
		case "bottom":
			next, err = svc.Drop(ctx, date, parseWords(rest))
		case "shuffle", "s":
			next, err = svc.Shuffle(ctx, date)
		case "reset":
			next, err = svc.Reset(ctx, date)
		default:
			fmt.Fprintf(out, "unknown command %q, try help\n", verb)
			continue
		}

		switch {
		case errors.Is(err, session.ErrInvalidGuess), errors.Is(err, session.ErrNotInPlay):
			fmt.Fprintln(out, err)
			continue
		case err != nil:
			return err
		}
		st = next
		printBoard(out, st)
	}
}

// parseWords splits user input into board words. Commas take precedence over spaces.
func parseWords(s string) []string {
	sep := func(r rune) bool { return r == ' ' || r == '\t' }
	if strings.Contains(s, ",") {
		sep = func(r rune) bool { return r == ',' }
	}
	words := strings.FieldsFunc(strings.ToUpper(s), sep)
	return lo.FilterMap(words, func(w string, _ int) (string, bool) {
		w = strings.TrimSpace(w)
		return w, w != ""
	})
}

func describe(o puzzle.Outcome) string {
	switch o {
	case puzzle.Correct:
		return "Correct!"
	case puzzle.OneAway:
		return "One away..."
	case puzzle.AlreadyGuessed:
		return "Already guessed."
	default:
		return "Not quite."
	}
}

func printBoard(out io.Writer, st *puzzle.State) {
	fmt.Fprintln(out)
	for _, c := range st.FoundCategories() {
		fmt.Fprintf(out, "%s %s: %s\n", puzzle.Emoji(c.Level), c.Name, strings.Join(c.Words, ", "))
	}
	width := lo.Max(lo.Map(st.Order, func(w string, _ int) int { return len(w) }))
	for _, row := range lo.Chunk(st.Order, puzzle.GroupSize) {
		cells := lo.Map(row, func(w string, _ int) string { return fmt.Sprintf("%-*s", width, w) })
		fmt.Fprintln(out, strings.Join(cells, "  "))
	}
	fmt.Fprintf(out, "mistakes: %d\n", len(st.Guesses)-st.NumFound())
}
