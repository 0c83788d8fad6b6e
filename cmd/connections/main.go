// cmd/connections/main.go
//
// Entry point for the Connections backend.
// Responsibilities:
//   - Load .env and environment defaults (flags override them).
//   - Configure the global zerolog level.
//   - Wire store, upstream client and session service for each subcommand.

package main

import (
	"math/rand/v2"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/connections/internal/nyt"
	"github.com/robalobadob/connections/internal/session"
	"github.com/robalobadob/connections/internal/store"
)

// config is resolved once in PersistentPreRunE.
type config struct {
	Port         string
	LogLevel     string
	Store        string // "sqlite" or "memory"
	DBPath       string
	NYTBaseURL   string
	FetchTimeout time.Duration
	ClientOrigin string
}

var cfg config

var rootCmd = &cobra.Command{
	Use:           "connections",
	Short:         "Play and serve daily Connections puzzles",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			zerolog.SetGlobalLevel(lvl)
		}
		// Human-readable logs on a terminal, JSON otherwise.
		if isatty.IsTerminal(os.Stderr.Fd()) {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		}
		return nil
	},
}

func main() {
	_ = godotenv.Load()
	bindFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("connections exited")
	}
}

// bindFlags registers flags whose defaults come from the environment.
func bindFlags(cmd *cobra.Command) {
	timeout, err := time.ParseDuration(getEnv("FETCH_TIMEOUT", "10s"))
	if err != nil {
		timeout = 10 * time.Second
	}

	f := cmd.PersistentFlags()
	f.StringVar(&cfg.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "zerolog level (debug, info, warn, error)")
	f.StringVar(&cfg.Store, "store", getEnv("STORE", "sqlite"), `storage backend: "sqlite" or "memory"`)
	f.StringVar(&cfg.DBPath, "db", getEnv("DB_PATH", "./data/connections.db"), "sqlite database path")
	f.StringVar(&cfg.NYTBaseURL, "nyt-base-url", getEnv("NYT_BASE_URL", nyt.DefaultBaseURL), "upstream puzzle endpoint")
	f.DurationVar(&cfg.FetchTimeout, "fetch-timeout", timeout, "upstream request timeout")

	// Flag defaults read the environment, so they are bound after godotenv.Load.
	serveCmd.Flags().StringVar(&cfg.Port, "port", getEnv("PORT", "5175"), "HTTP listen port")
	serveCmd.Flags().StringVar(&cfg.ClientOrigin, "client-origin", getEnv("CLIENT_ORIGIN", "http://localhost:5173"), "allowed CORS origin")
}

// openStore returns the configured store and a close func.
func openStore() (store.Store, func(), error) {
	if cfg.Store == "memory" || cfg.DBPath == ":memory:" {
		log.Info().Msg("using in-memory store")
		return store.NewMemoryStore(), func() {}, nil
	}
	db, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("path", cfg.DBPath).Msg("opened sqlite store")
	return db, func() { _ = db.Close() }, nil
}

// newService builds the session service on top of st.
func newService(st store.Store) *session.Service {
	seed := uint64(time.Now().UnixNano())
	rng := rand.New(rand.NewPCG(seed, seed>>32|1))
	return session.New(st, nyt.NewClient(cfg.NYTBaseURL, cfg.FetchTimeout), rng)
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
