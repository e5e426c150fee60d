package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VindiceCode/bonzobuddy/config"
	"github.com/VindiceCode/bonzobuddy/internal/http/chi"
	"github.com/VindiceCode/bonzobuddy/metrics"
	"github.com/VindiceCode/bonzobuddy/pkg/log"
	"github.com/VindiceCode/bonzobuddy/receiver"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Setup(cfg.LogLevel)
	logger := log.WithModule("mockhook")

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	collector := metrics.NewInMemoryCollector()
	exporter, err := metrics.NewOTelExporter(collector)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer exporter.Shutdown(context.Background())

	inbox := receiver.NewInbox(receiver.Options{}, collector)
	r := chi.MockhookHandlers(inbox, exporter)

	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.MockhookPort,
		Handler:      r,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)
	logger.Info("listening", "port", cfg.MockhookPort)
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	err = <-errShutdown
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		errShutdown <- nil
	default:
		errShutdown <- fmt.Errorf("forcing server close: %w", err)
	}
}
