package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"wmgateway/internal/constants"
	"wmgateway/internal/database"
	"wmgateway/internal/metrics"
	"wmgateway/internal/middleware"
	"wmgateway/internal/models"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// webhookProcessor runs the attribution pipeline for a decoded delivery.
type webhookProcessor interface {
	ProcessValues(ctx context.Context, values []models.WebhookValue) error
}

// managementStore is the store surface behind the keyword and signal
// management endpoints.
type managementStore interface {
	ListKeywordRules(ctx context.Context) ([]models.KeywordRule, error)
	GetKeywordRule(ctx context.Context, id int64) (*models.KeywordRule, error)
	CreateKeywordRule(ctx context.Context, rule *models.KeywordRule) error
	UpdateKeywordRule(ctx context.Context, rule *models.KeywordRule) (bool, error)
	DeleteKeywordRule(ctx context.Context, id int64) (bool, error)
	ListSignals(ctx context.Context, req database.PageRequest) ([]models.Signal, int64, error)
}

type Server struct {
	router    *mux.Router
	logger    *logrus.Logger
	cfg       *models.Config
	processor webhookProcessor
	store     managementStore
	server    *http.Server
}

func NewServer(cfg *models.Config, processor webhookProcessor, store managementStore, logger *logrus.Logger) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		logger:    logger,
		cfg:       cfg,
		processor: processor,
		store:     store,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Observability(s.logger))

	// Open endpoints: webhook ingestion and health
	s.router.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	s.router.HandleFunc("/webhook", s.handleWebhookVerification()).Methods(http.MethodGet)
	s.router.HandleFunc("/webhook", s.handleWebhook()).Methods(http.MethodPost)

	// Management endpoints behind the auth token
	auth := requireAuthToken(s.cfg.Auth.Token, s.logger)

	keywords := s.router.PathPrefix("/keywords").Subrouter()
	keywords.Use(auth)
	keywords.HandleFunc("", s.handleListKeywords()).Methods(http.MethodGet)
	keywords.HandleFunc("", s.handleCreateKeyword()).Methods(http.MethodPost)
	keywords.HandleFunc("/{id:[0-9]+}", s.handleGetKeyword()).Methods(http.MethodGet)
	keywords.HandleFunc("/{id:[0-9]+}", s.handleUpdateKeyword()).Methods(http.MethodPut)
	keywords.HandleFunc("/{id:[0-9]+}", s.handleDeleteKeyword()).Methods(http.MethodDelete)

	signals := s.router.PathPrefix("/signals").Subrouter()
	signals.Use(auth)
	signals.HandleFunc("", s.handleListSignals()).Methods(http.MethodGet)

	metricsRoute := s.router.PathPrefix("/metrics").Subrouter()
	metricsRoute.Use(auth)
	metricsRoute.Handle("", promhttp.Handler()).Methods(http.MethodGet)
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.Server.IdleTimeoutSec) * time.Second,
	}

	s.logger.Infof("Starting server on port %d", s.cfg.Server.Port)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// handleWebhookVerification answers the platform's subscription handshake by
// echoing the challenge. When a verify token is configured the caller's
// token must match; payload signature validation stays out of scope.
func (s *Server) handleWebhookVerification() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode := r.URL.Query().Get("hub.mode")
		challenge := r.URL.Query().Get("hub.challenge")
		verifyToken := r.URL.Query().Get("hub.verify_token")

		s.logger.WithFields(logrus.Fields{
			"mode": mode,
		}).Info("Webhook verification request")

		if s.cfg.Webhook.VerifyToken != "" && verifyToken != s.cfg.Webhook.VerifyToken {
			http.Error(w, "verification token mismatch", http.StatusForbidden)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(challenge))
	}
}

// handleWebhook ingests a webhook delivery. The response reports ingestion,
// not processing: once the envelope decodes, the status is 200 even when the
// pipeline fails, and messagePayload tells the caller whether any message
// payload was present.
func (s *Server) handleWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var envelope models.WebhookEnvelope
		if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
			s.logger.WithError(err).Warn("Failed to decode webhook envelope")
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}

		hasMessages := envelope.HasMessages()
		metrics.WebhooksReceived.WithLabelValues(strconv.FormatBool(hasMessages)).Inc()

		if hasMessages {
			if err := s.processor.ProcessValues(r.Context(), envelope.MessageValues()); err != nil {
				// Ingestion succeeded; processing failures are logged and
				// counted but never surfaced to the platform.
				s.logger.WithError(err).Error("Webhook processing finished with errors")
			}
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"success":        "true",
			"messagePayload": strconv.FormatBool(hasMessages),
		})
	}
}

func (s *Server) handleListKeywords() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rules, err := s.store.ListKeywordRules(r.Context())
		if err != nil {
			s.internalError(w, r, err, "Failed to list keyword rules")
			return
		}
		if rules == nil {
			rules = []models.KeywordRule{}
		}
		writeJSON(w, http.StatusOK, rules)
	}
}

func (s *Server) handleGetKeyword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
			return
		}

		rule, err := s.store.GetKeywordRule(r.Context(), id)
		if err != nil {
			s.internalError(w, r, err, "Failed to load keyword rule")
			return
		}
		if rule == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, rule)
	}
}

func (s *Server) handleCreateKeyword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rule, ok := decodeKeywordRule(w, r)
		if !ok {
			return
		}

		// Any client-supplied id is ignored; the store assigns one.
		rule.ID = 0
		if err := s.store.CreateKeywordRule(r.Context(), rule); err != nil {
			s.internalError(w, r, err, "Failed to create keyword rule")
			return
		}
		writeJSON(w, http.StatusOK, rule)
	}
}

func (s *Server) handleUpdateKeyword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
			return
		}

		rule, ok := decodeKeywordRule(w, r)
		if !ok {
			return
		}

		rule.ID = id
		updated, err := s.store.UpdateKeywordRule(r.Context(), rule)
		if err != nil {
			s.internalError(w, r, err, "Failed to update keyword rule")
			return
		}
		if !updated {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusAccepted, rule)
	}
}

func (s *Server) handleDeleteKeyword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
			return
		}

		deleted, err := s.store.DeleteKeywordRule(r.Context(), id)
		if err != nil {
			s.internalError(w, r, err, "Failed to delete keyword rule")
			return
		}
		if !deleted {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleListSignals() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := queryInt(r, "page", 0)
		if err != nil || page < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid page"})
			return
		}

		size, err := queryInt(r, "size", constants.DefaultSignalsPageSize)
		if err != nil || size <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid size"})
			return
		}
		if size > constants.MaxSignalsPageSize {
			size = constants.MaxSignalsPageSize
		}

		sort := r.URL.Query().Get("sort")
		if sort == "" {
			sort = "id,desc"
		}
		parts := strings.Split(sort, ",")
		if len(parts) != 2 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "sort parameter should have a field followed by a direction",
			})
			return
		}

		req := database.PageRequest{
			Page:      page,
			Size:      size,
			SortField: parts[0],
			SortDesc:  database.SortDescending(parts[1]),
		}

		signals, total, err := s.store.ListSignals(r.Context(), req)
		if err != nil {
			if strings.Contains(err.Error(), "unsupported sort field") {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			s.internalError(w, r, err, "Failed to list signals")
			return
		}

		if len(signals) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"signals":     signals,
			"currentPage": page,
			"totalItems":  total,
			"totalPages":  int(math.Ceil(float64(total) / float64(size))),
		})
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	s.logger.WithError(err).Error(msg)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func decodeKeywordRule(w http.ResponseWriter, r *http.Request) (*models.KeywordRule, bool) {
	var rule models.KeywordRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return nil, false
	}
	if rule.Keyword == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "keyword cannot be empty"})
		return nil, false
	}
	if rule.CapiEvent == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "capiEvent cannot be empty"})
		return nil, false
	}
	return &rule, true
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
