package main

import (
	"net/http"

	"github.com/gorilla/handlers"
)

// applyCORSHandler applies a CORS policy to the router.
func applyCORSHandler(h http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedHeaders([]string{
			"Content-Type", "Authorization",
		}),
		handlers.ExposedHeaders([]string{"X-Request-ID"}),
		handlers.AllowCredentials(),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS", "DELETE", "PATCH"}),
		handlers.AllowedOrigins([]string{"*"}),
	)(h)
}
