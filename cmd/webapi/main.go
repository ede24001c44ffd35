/*
Webapi is the executable for the onair web server.
It builds a web server around the APIs of the `pkg` stores: members, shows, playlists, songs and favorites.
Webapi connects to the database (SQLite by default, PostgreSQL when configured) and serves the API, along with
Prometheus metrics on /metrics and a liveness probe on /health.

Usage:

	webapi [flags]

Flags and configurations are handled automatically by the code in `load-configuration.go`.

Return values (exit codes):

	0
		The program ended successfully (no errors, stopped by signal)

	> 0
		The program ended due to an error

Note that this program creates the database schema when missing, and refuses to start on an SQLite database
whose schema differs from the one embedded in the executable.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardanlabs/conf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/silktrader/onair/pkg/auth"
	"github.com/silktrader/onair/pkg/favorites"
	"github.com/silktrader/onair/pkg/members"
	"github.com/silktrader/onair/pkg/playlists"
	"github.com/silktrader/onair/pkg/rest"
	"github.com/silktrader/onair/pkg/shows"
	"github.com/silktrader/onair/pkg/songs"
	"github.com/silktrader/onair/pkg/storage"
	"github.com/sirupsen/logrus"
)

// main is the program entry point. The only purpose of this function is to call run() and set the exit code if there is
// any error
func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error: ", err)
		os.Exit(1)
	}
}

// run executes the program. The body of this function should perform the following steps:
// * reads the configuration
// * creates and configure the logger
// * connects to any external resources (like databases, authenticators, etc.)
// * creates the stores and registers their handlers
// * starts the principal web server
// * waits for any termination event: SIGTERM signal (UNIX), non-recoverable server error, etc.
// * closes the principal web server
func run() error {
	// Load Configuration and defaults
	cfg, err := loadConfiguration()
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			return nil
		}
		return err
	}

	// Init logging
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	logger.Infof("application initializing")

	// tokens can't be issued without a secret, better to find out before serving requests
	issuer, err := auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("configuring tokens, set ONAIR_AUTH_SECRET: %w", err)
	}

	// initialise database before registering handlers for an immediate exit in case of issues
	db, err := storage.Open(logger, storage.Config{
		Driver:          cfg.DB.Driver,
		DSN:             cfg.DB.DSN,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		logger.WithError(err).Error("error initialising storage")
		return fmt.Errorf("error while initialising storage: %w", err)
	}
	defer db.Close()

	// Start (main) API server
	logger.Info("initializing API server")

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewDBStatsCollector(db.DB, cfg.DB.Driver),
	)

	e, err := rest.New(rest.Config{
		Logger:   logger,
		Registry: registry,
	})
	if err != nil {
		logger.WithError(err).Error("error creating the API server instance")
		return fmt.Errorf("creating the API server instance: %w", err)
	}

	// setup handlers
	membersStore, err := members.NewStore(db, auth.NewBcryptHasher(cfg.Auth.BcryptCost))
	if err != nil {
		logger.WithError(err).Error("error creating the members store")
		return fmt.Errorf("creating the members store: %w", err)
	}
	var showsStore = shows.NewStore(db)
	var playlistsStore = playlists.NewStore(db)
	var songsStore = songs.NewStore(db)
	var favoritesStore = favorites.NewStore(db)

	// identify bearers on every route, guards are applied per route
	e.Use(auth.Authenticate(issuer, membersStore))

	members.RegisterHandlers(e, membersStore, issuer)
	shows.RegisterHandlers(e, showsStore)
	playlists.RegisterHandlers(e, playlistsStore)
	songs.RegisterHandlers(e, songsStore, playlistsStore)
	favorites.RegisterHandlers(e, favoritesStore)
	registerHealth(e, db)

	// Apply CORS policy
	handler := applyCORSHandler(e.Handler())

	// create the API server
	server := http.Server{
		Addr:              cfg.Web.APIHost,
		Handler:           handler,
		ReadTimeout:       cfg.Web.ReadTimeout,
		ReadHeaderTimeout: cfg.Web.ReadTimeout,
		WriteTimeout:      cfg.Web.WriteTimeout,
	}

	// Start the service listening for requests in a separate goroutine
	go func() {
		logger.Infof("API listening on %s", server.Addr)
		serverErrors <- server.ListenAndServe()
		logger.Infof("stopping API server")
	}()

	// Waiting for shutdown signal or POSIX signals
	select {
	case err := <-serverErrors:
		// Non-recoverable server error
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("signal %v received, start shutdown", sig)

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and load shed.
		err = server.Shutdown(ctx)
		if err != nil {
			logger.WithError(err).Warning("error during graceful shutdown of HTTP server")
			err = server.Close()
		}

		if err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}
