// Command demoserver runs the in-memory casino backend on localhost so the
// desktop client can be developed and tested without the real service.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/fortuna-gaming/fortuna-desktop/internal/demoserver"
)

func main() {
	addr := flag.String("addr", ":8099", "listen address")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	srv := &http.Server{
		Addr:    *addr,
		Handler: demoserver.NewServer(log).Routes(),
	}

	go func() {
		log.Info().Str("addr", *addr).Msg("demo backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("demo backend stopped")
}
