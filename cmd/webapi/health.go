package main

import (
	"context"
	"net/http"
	"time"

	JSON "github.com/silktrader/onair/pkg/json-utilities"
	"github.com/silktrader/onair/pkg/rest"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

// registerHealth adds a liveness route, failing while the database can't be reached.
func registerHealth(engine *rest.Engine, db pinger) {
	engine.Get("/health", func(writer http.ResponseWriter, request *http.Request) {
		ctx, cancel := context.WithTimeout(request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			rest.Logger(request).WithError(err).Warning("database unreachable")
			writer.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		JSON.Ok(writer, map[string]string{"status": "ok"})
	})
}
