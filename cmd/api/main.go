package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trip-booking/internal/server"
	"trip-booking/pkg/logger"
)

func main() {
	log := logger.New()

	srv := server.NewServer(log)

	listener, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		log.Fatal("creating listener", "error", err)
	}

	// Channel to receive errors from the server
	errChan := make(chan error, 1)

	go func() {
		log.Info("server started", "addr", srv.Addr)
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server encountered an error", "error", err)
			errChan <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Wait for an interrupt or server error
	select {
	case err := <-errChan:
		log.Fatal("server error", "error", err)
	case sig := <-stop:
		log.Info("initiating graceful shutdown", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Fatal("could not gracefully shut down the server", "error", err)
		}

		log.Info("server gracefully stopped")
	}
}
