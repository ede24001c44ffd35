package rest

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Config is used to provide dependencies and configuration to the New function.
type Config struct {
	Logger logrus.FieldLogger

	// Registry collects the HTTP metrics; a private registry is created when nil
	Registry *prometheus.Registry
}

func New(cfg Config) (*Engine, error) {
	// assign a logger or fail
	if cfg.Logger == nil {
		return nil, errors.New("logger is required")
	}

	var engine = Engine{baseLogger: cfg.Logger, registry: cfg.Registry}
	if engine.registry == nil {
		engine.registry = prometheus.NewRegistry()
	}
	metrics, err := newMetrics(engine.registry)
	if err != nil {
		return nil, err
	}
	engine.metrics = metrics

	engine.router = httprouter.New()

	// disables redirections such as `/foo/` to `/foo`
	engine.router.RedirectTrailingSlash = false

	// disables attempts to fix common path issues and redirects them, i.e. `/FoO` redirects to `/foo`
	engine.router.RedirectFixedPath = false

	// answer with JSON messages rather than the router's plain text defaults
	engine.router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not Found")
	})
	engine.router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	engine.router.PanicHandler = func(w http.ResponseWriter, r *http.Request, recovered interface{}) {
		Logger(r).WithField("panic", recovered).Error("recovered from panic")
		w.WriteHeader(http.StatusInternalServerError)
	}

	engine.router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(engine.registry, promhttp.HandlerOpts{}))

	return &engine, nil
}

// Engine contains the muxer, logger and middleware.
type Engine struct {
	router *httprouter.Router

	// a middleware queue; invocation order follows insertion order
	middleware []func(http.Handler) http.Handler

	// baseLogger is a logger for non-requests contexts, like goroutines or background tasks not started by a request
	baseLogger logrus.FieldLogger

	registry *prometheus.Registry
	metrics  *metrics
}

// Handler returns an instance of httprouter.Router that handle APIs registered here
func (e *Engine) Handler() http.Handler {
	return e.router
}

// Handle registers the path and method to the given handler, wrapped by the middleware.
// The per-route middleware runs after the global one, so that route guards can rely on what global middleware
// added to the request, such as the authenticated identity. Every request is then given its own context,
// logger and metrics.
func (e *Engine) Handle(method string, path string, handler http.Handler, middleware ...func(http.Handler) http.Handler) {

	// first apply the per-route specific middleware, in reverse so that the first listed runs first
	for i := len(middleware) - 1; i >= 0; i-- {
		handler = middleware[i](handler)
	}

	// then apply the router's globally defined middleware
	for i := len(e.middleware) - 1; i >= 0; i-- {
		handler = e.middleware[i](handler)
	}

	handler = e.metrics.instrument(path, handler)

	// associate the final composed handler to the selected path and method pair
	e.router.Handler(method, path, e.wrap(handler))
}

// Use specifies one or multiple new handlers that will be evaluated for every specified route (ie. logger).
func (e *Engine) Use(mw ...func(http.Handler) http.Handler) {
	e.middleware = append(e.middleware, mw...)
}

// Get defines a new GET method handler for the specified path.
// The variadic arguments can include middleware that will be exclusively evaluated for the path.
func (e *Engine) Get(path string, handlerFunc http.HandlerFunc, middleware ...func(http.Handler) http.Handler) {
	e.Handle(http.MethodGet, path, handlerFunc, middleware...)
}

func (e *Engine) Post(path string, handlerFunc http.HandlerFunc, middleware ...func(http.Handler) http.Handler) {
	e.Handle(http.MethodPost, path, handlerFunc, middleware...)
}

func (e *Engine) Put(path string, handlerFunc http.HandlerFunc, middleware ...func(http.Handler) http.Handler) {
	e.Handle(http.MethodPut, path, handlerFunc, middleware...)
}

func (e *Engine) Patch(path string, handlerFunc http.HandlerFunc, middleware ...func(http.Handler) http.Handler) {
	e.Handle(http.MethodPatch, path, handlerFunc, middleware...)
}

func (e *Engine) Delete(path string, handlerFunc http.HandlerFunc, middleware ...func(http.Handler) http.Handler) {
	e.Handle(http.MethodDelete, path, handlerFunc, middleware...)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"Message":"` + message + `"}`))
}
