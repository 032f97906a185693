package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/internal/logging"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/metrics"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/aretw0/chatflow/pkg/sanitizer"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes a FlowService over HTTP.
type Server struct {
	Service ports.FlowService

	limiter      ports.RateLimiter
	metrics      *metrics.Metrics
	gatherer     prometheus.Gatherer
	logger       *slog.Logger
	maxInputSize int
	validate     *validator.Validate
}

// Option configures the Server.
type Option func(*Server)

// WithRateLimiter bounds turns per bot on the message and webhook routes.
func WithRateLimiter(l ports.RateLimiter) Option {
	return func(s *Server) {
		s.limiter = l
	}
}

// WithMetrics counts turns on m and serves gatherer on GET /metrics.
func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxInputSize overrides the user input limit (0 disables it).
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.maxInputSize = n
	}
}

// NewHandler creates a new HTTP handler for the service.
func NewHandler(svc ports.FlowService, opts ...Option) (http.Handler, error) {
	s := &Server{
		Service:      svc,
		logger:       logging.NewNop(),
		maxInputSize: sanitizer.MaxInputSize(),
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(s)
	}

	requestValidator, err := newRequestValidator()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)
	r.Use(requestValidator.middleware(s.logger))

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Post("/validate", s.ValidateFlow)
	r.Route("/bots/{botID}", func(r chi.Router) {
		r.Get("/flow", s.GetFlow)
		r.Post("/flow", s.ProvisionFlow)
		r.Put("/flow", s.UpdateFlow)
		r.Get("/flow/versions", s.ListFlowVersions)
		r.Post("/flow/activate", s.ActivateFlow)
		r.Post("/flow/deactivate", s.DeactivateFlow)
		r.Get("/conversations/{conversationID}", s.GetConversation)
		r.With(s.rateLimit).Post("/conversations/{conversationID}/messages", s.SendMessage)
		r.With(s.rateLimit).Post("/webhook", s.Webhook)
	})

	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type validateRequest struct {
	Nodes       []domain.Node       `json:"nodes" validate:"required"`
	Connections []domain.Connection `json:"connections"`
}

type messageRequest struct {
	Input string `json:"input"`
}

type webhookRequest struct {
	ConversationID string `json:"conversationId" validate:"required,max=128"`
	Message        string `json:"message"`
}

type errorResponse struct {
	Error      string                   `json:"error"`
	Validation *domain.ValidationResult `json:"validation,omitempty"`
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "chatflow-http",
		"version":     strings.TrimSpace(chatflow.Version),
		"api_version": apiVersion,
	})
}

// ValidateFlow handles POST /validate. Findings are data, so invalid flows still answer 200.
func (s *Server) ValidateFlow(w http.ResponseWriter, r *http.Request) {
	var body validateRequest
	if !s.decode(w, r, &body) {
		return
	}
	writeJSON(w, http.StatusOK, s.Service.Validate(body.Nodes, body.Connections))
}

// GetFlow handles GET /bots/{botID}/flow.
func (s *Server) GetFlow(w http.ResponseWriter, r *http.Request) {
	flow, err := s.Service.GetFlow(r.Context(), chi.URLParam(r, "botID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flow)
}

// ProvisionFlow handles POST /bots/{botID}/flow.
func (s *Server) ProvisionFlow(w http.ResponseWriter, r *http.Request) {
	flow, err := s.Service.Provision(r.Context(), chi.URLParam(r, "botID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, flow)
}

// UpdateFlow handles PUT /bots/{botID}/flow.
func (s *Server) UpdateFlow(w http.ResponseWriter, r *http.Request) {
	var body domain.FlowUpdate
	if !s.decode(w, r, &body) {
		return
	}
	flow, result, err := s.Service.UpdateFlow(r.Context(), chi.URLParam(r, "botID"), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Flow       *domain.Flow            `json:"flow"`
		Validation domain.ValidationResult `json:"validation"`
	}{flow, result})
}

// ListFlowVersions handles GET /bots/{botID}/flow/versions.
func (s *Server) ListFlowVersions(w http.ResponseWriter, r *http.Request) {
	flows, err := s.Service.Versions(r.Context(), chi.URLParam(r, "botID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flows)
}

// ActivateFlow handles POST /bots/{botID}/flow/activate.
func (s *Server) ActivateFlow(w http.ResponseWriter, r *http.Request) {
	flow, err := s.Service.Activate(r.Context(), chi.URLParam(r, "botID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flow)
}

// DeactivateFlow handles POST /bots/{botID}/flow/deactivate.
func (s *Server) DeactivateFlow(w http.ResponseWriter, r *http.Request) {
	flow, err := s.Service.Deactivate(r.Context(), chi.URLParam(r, "botID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flow)
}

// GetConversation handles GET /bots/{botID}/conversations/{conversationID}.
func (s *Server) GetConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := s.Service.Conversation(r.Context(), chi.URLParam(r, "conversationID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if conv.BotID != chi.URLParam(r, "botID") {
		s.writeError(w, r, domain.ErrConversationNotFound)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// SendMessage handles POST /bots/{botID}/conversations/{conversationID}/messages.
func (s *Server) SendMessage(w http.ResponseWriter, r *http.Request) {
	var body messageRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.turn(w, r, chi.URLParam(r, "conversationID"), body.Input)
}

// Webhook handles POST /bots/{botID}/webhook, the entry point for messaging channels.
func (s *Server) Webhook(w http.ResponseWriter, r *http.Request) {
	var body webhookRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.turn(w, r, body.ConversationID, body.Message)
}

func (s *Server) turn(w http.ResponseWriter, r *http.Request, conversationID, input string) {
	botID := chi.URLParam(r, "botID")

	clean, err := sanitizer.SanitizeWithLimit(input, s.maxInputSize)
	if err != nil {
		s.logger.Warn("input rejected", "bot_id", botID, "size", len(input), "err", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid input: %v", err)})
		return
	}

	result, err := s.Service.Converse(r.Context(), botID, conversationID, clean)
	if err != nil {
		outcome := "error"
		if errors.Is(err, domain.ErrNoActiveFlow) || errors.Is(err, domain.ErrFlowNotFound) {
			outcome = "no_active_flow"
		}
		s.observeTurn(botID, outcome)
		s.writeError(w, r, err)
		return
	}
	s.observeTurn(botID, "ok")
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) observeTurn(botID, outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveTurn(botID, outcome)
	}
}

// decode reads a JSON body into dst and runs its validate tags.
// It writes a 400 and returns false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
			}
			err = errors.New(strings.Join(msgs, "; "))
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *domain.InvalidFlowError
	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Validation: &invalid.Result})
	case errors.Is(err, domain.ErrFlowNotFound),
		errors.Is(err, domain.ErrNoActiveFlow),
		errors.Is(err, domain.ErrConversationNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrFlowExists), errors.Is(err, domain.ErrConversationMismatch):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"err", err,
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
