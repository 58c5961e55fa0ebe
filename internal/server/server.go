package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lucasnoah/notebot/internal/event"
	"github.com/lucasnoah/notebot/internal/service"
)

// maxPayloadBytes bounds inbound webhook documents.
const maxPayloadBytes = 4 << 20

// Handler processes one raw webhook document. Implemented by
// service.Service.
type Handler interface {
	Handle(raw []byte) (service.Outcome, error)
}

// Server is the thin webhook ingress: it parses, acknowledges the
// sender promptly, and dispatches pipeline runs in the background.
type Server struct {
	Router  *chi.Mux
	addr    string
	handler Handler
	logger  *slog.Logger
}

// New creates a Server listening on host:port.
func New(host string, port int, handler Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "notebot")
	})

	s := &Server{
		Router:  r,
		addr:    fmt.Sprintf("%s:%d", host, port),
		handler: handler,
		logger:  logger,
	}

	r.Get("/health", s.handleHealth)
	r.Post("/webhook", s.handleWebhook)
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/webhook", http.StatusTemporaryRedirect)
	})
	r.Post("/", s.handleWebhook)

	return s
}

// Start begins listening. Blocks until the listener fails.
func (s *Server) Start() error {
	s.logger.Info("starting server", slog.String("addr", s.addr))
	return http.ListenAndServe(s.addr, s.Router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "notebot",
	})
}

// handleWebhook acknowledges the webhook sender synchronously and runs
// the pipeline on a background goroutine, so delivery is independent of
// how long a run takes.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "read body"})
		return
	}

	payload, err := event.Parse(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "invalid JSON payload"})
		return
	}

	s.logger.Info("received webhook",
		slog.String("request_id", RequestID(r.Context())),
		slog.String("event_type", payload.ObjectKind),
		slog.String("project", payload.Project.Name))

	go func() {
		outcome, err := s.handler.Handle(raw)
		if err != nil {
			s.logger.Error("webhook handling failed", slog.String("error", err.Error()))
			return
		}
		if outcome.Ran {
			s.logger.Info("pipeline run finished",
				slog.String("command", outcome.Command),
				slog.Bool("success", outcome.Success))
		}
	}()

	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "received",
		"event_type": payload.ObjectKind,
		"project":    payload.Project.Name,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
