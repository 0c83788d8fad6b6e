package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/connections/internal/httpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Sync today's puzzle and start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()
		svc := newService(st)

		// A failed startup sync is not fatal; the puzzle is fetched again on first open.
		syncCtx, cancel := context.WithTimeout(cmd.Context(), cfg.FetchTimeout*2)
		if added, err := svc.Sync(syncCtx); err != nil {
			log.Warn().Err(err).Msg("startup sync failed")
		} else {
			log.Info().Str("date", svc.Today()).Bool("added", added).Msg("startup sync")
		}
		cancel()

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           httpserver.New(svc, cfg.ClientOrigin, cfg.FetchTimeout).Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("port", cfg.Port).Msg("starting connections server")
			errCh <- srv.ListenAndServe()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			log.Info().Str("signal", sig.String()).Msg("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
