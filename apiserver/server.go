// Package apiserver exposes the conversational agent over HTTP.
package apiserver

import (
	"context"
	"net/http"
	"time"

	"github.com/effective-security/chatops/agent"
	"github.com/effective-security/chatops/store"
	"github.com/effective-security/xlog"
	"github.com/gorilla/mux"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/chatops", "apiserver")

// Runner is the slice of the agent the server depends on.
type Runner interface {
	Run(ctx context.Context, req *agent.Request) (string, error)
}

// Server is the chat API server. It resolves chat history from the store,
// delegates each prompt to the Runner, and persists the exchange.
type Server struct {
	router *mux.Router
	runner Runner
	store  store.MessageStore
	server *http.Server
}

// NewServer creates a fully-wired Server ready to Start().
func NewServer(addr string, runner Runner, ms store.MessageStore) *Server {
	srv := &Server{
		router: mux.NewRouter(),
		runner: runner,
		store:  ms,
	}
	srv.server = &http.Server{
		Addr:         addr,
		Handler:      srv.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	srv.registerRoutes()
	return srv
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/chat", s.handleChat).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/chat/{chat_id}", s.handleResetChat).Methods(http.MethodDelete)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening and serving HTTP requests. It blocks until the
// server is shut down or encounters a fatal error.
func (s *Server) Start() error {
	logger.KV(xlog.INFO, "status", "starting", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
