package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/SercanAkan88/siteguard/internal/engine"
	"github.com/SercanAkan88/siteguard/internal/logging"
	"github.com/SercanAkan88/siteguard/internal/model"
	"github.com/SercanAkan88/siteguard/internal/orchestrator"
	"github.com/SercanAkan88/siteguard/internal/store"
)

// Server is the HTTP API surface for SiteGuard: the public demo/quick scan
// endpoints plus website registration and on-demand scans.
type Server struct {
	cfg    Config
	engine *engine.Engine
	orch   *orchestrator.Orchestrator
	store  store.Store
	router chi.Router
	logger logging.Logger
}

func NewServer(cfg Config, eng *engine.Engine, orch *orchestrator.Orchestrator, st store.Store, logger logging.Logger) (*Server, error) {
	if eng == nil || orch == nil || st == nil {
		return nil, errors.New("server: nil collaborator")
	}
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	s := &Server{
		cfg:    cfg,
		engine: eng,
		orch:   orch,
		store:  st,
		router: chi.NewRouter(),
		logger: logger,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	r.Get("/api/health", s.handleHealth)

	// Public scan endpoints (homepage demo)
	r.Post("/api/scan/demo", s.handleDemoScan)
	r.Post("/api/scan/quick", s.handleQuickCheck)

	// Registered-site management and on-demand scans
	r.Post("/api/users", s.handleCreateUser)
	r.Post("/api/websites", s.handleCreateWebsite)
	r.Get("/api/websites", s.handleListWebsites)
	r.Post("/api/websites/{websiteID}/scan", s.handleScanWebsite)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("http_request",
		logging.Field{Key: "method", Value: r.Method},
		logging.Field{Key: "path", Value: r.URL.Path})

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe. No write
// timeout: a demo scan can legitimately take the better part of a minute.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:        s.cfg.ListenAddr,
		Handler:     s,
		ReadTimeout: 15 * time.Second,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleDemoScan(w http.ResponseWriter, r *http.Request) {
	var req ScanURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	target, err := normalizeTargetURL(req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Info("demo scan requested", logging.Field{Key: "url", Value: target})

	result := s.engine.Scan(r.Context(), target)
	writeJSON(w, http.StatusOK, DemoScanResponse{Success: true, Results: result})
}

func (s *Server) handleQuickCheck(w http.ResponseWriter, r *http.Request) {
	var req ScanURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	target, err := normalizeTargetURL(req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.orch.QuickCheck(r.Context(), target))
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	user, err := s.store.CreateUser(r.Context(), req.Email, req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleCreateWebsite(w http.ResponseWriter, r *http.Request) {
	var req CreateWebsiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	target, err := normalizeTargetURL(req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	website, err := s.store.CreateWebsite(r.Context(), req.UserID, target, req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, website)
}

func (s *Server) handleListWebsites(w http.ResponseWriter, r *http.Request) {
	var (
		websites []*model.Website
		err      error
	)
	if userID := r.URL.Query().Get("userId"); userID != "" {
		websites, err = s.store.FindWebsitesByUser(r.Context(), userID)
	} else {
		websites, err = s.store.FindAllWebsites(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if websites == nil {
		websites = []*model.Website{}
	}
	writeJSON(w, http.StatusOK, websites)
}

func (s *Server) handleScanWebsite(w http.ResponseWriter, r *http.Request) {
	websiteID := chi.URLParam(r, "websiteID")

	outcome, err := s.orch.ScanOneWebsite(r.Context(), websiteID)
	if err != nil {
		if errors.Is(err, store.ErrWebsiteNotFound) {
			writeError(w, http.StatusNotFound, "website not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// normalizeTargetURL mirrors the demo form behavior: a bare domain gets
// https:// prepended, then the result must parse as an absolute URL.
func normalizeTargetURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("URL is required")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid URL format")
	}
	return raw, nil
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
