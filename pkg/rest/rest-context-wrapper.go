package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gofrs/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
)

type contextKey string

const requestContextKey contextKey = "request-context"

// RequestContext is the context of the request, for request-dependent parameters
type RequestContext struct {
	// ReqUUID is the request unique ID
	ReqUUID uuid.UUID

	// Logger is a custom field logger for the request
	Logger logrus.FieldLogger
}

// wrap adds a RequestContext instance related to the request.
func (e *Engine) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqUUID, err := uuid.NewV4()
		if err != nil {
			e.baseLogger.WithError(err).Error("can't generate a request UUID")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var rc = RequestContext{
			ReqUUID: reqUUID,
		}

		// Create a request-specific logger
		rc.Logger = e.baseLogger.WithFields(logrus.Fields{
			"reqid":     rc.ReqUUID.String(),
			"remote-ip": r.RemoteAddr,
		})

		w.Header().Set("X-Request-ID", rc.ReqUUID.String())

		// Call the next handler in chain (usually, the handler function for the path)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestContextKey, rc)))
	})
}

// Logger returns the request-specific logger, or the standard logrus logger for requests that didn't go
// through the engine, as happens in tests.
func Logger(r *http.Request) logrus.FieldLogger {
	if rc, ok := r.Context().Value(requestContextKey).(RequestContext); ok {
		return rc.Logger
	}
	return logrus.StandardLogger()
}

// GetParam returns the named route parameter, or an empty string.
func GetParam(r *http.Request, name string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(name)
}

// GetIDParam parses the named route parameter as a positive integer identifier.
func GetIDParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(GetParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
