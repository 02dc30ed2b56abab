package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// StartServer serves handler on port in the background. The returned server is
// what ShutdownServer drains.
func StartServer(name string, handler http.Handler, port string) *http.Server {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("server", name).Str("address", srv.Addr).Msg("Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Str("server", name).Msg("Failed to start server")
		}
	}()

	return srv
}

// ShutdownServer waits up to timeout for in-flight requests before closing srv
func ShutdownServer(srv *http.Server, timeout time.Duration) error {
	log.Info().Str("address", srv.Addr).Msg("Shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Str("address", srv.Addr).Msg("HTTP server stopped")
	return nil
}
