// Package api exposes the repository over HTTP, mirroring the envelope the
// original service used: {success, data, error, meta}. The core stays
// transport-agnostic; this layer only consumes it.
package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/netutil"

	"github.com/lumensyntax-org/truthgit/internal/config"
	"github.com/lumensyntax-org/truthgit/internal/repo"
	"github.com/lumensyntax-org/truthgit/internal/validator"
)

// Version reported by the health endpoint.
const Version = "0.4.0"

// Server serves the repository API.
type Server struct {
	repo       *repo.Repository
	validators []validator.Validator
	cfg        config.Config
	log        *logrus.Entry
}

// New creates a server over an open repository. The validator set is fixed
// at construction; requests never choose their own judges.
func New(r *repo.Repository, validators []validator.Validator, cfg config.Config, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
	}
	return &Server{
		repo:       r,
		validators: validators,
		cfg:        cfg,
		log:        log.WithField("component", "api"),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/verify", s.handleVerify)
	mux.HandleFunc("POST /api/prove", s.handleProve)
	mux.HandleFunc("POST /api/verify-proof", s.handleVerifyProof)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/claims", s.handleClaims)
	return s.withCORS(s.withLogging(mux))
}

// ListenAndServe serves until ctx is cancelled. The listener is capped at
// cfg.API.MaxConns simultaneous connections.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.API.Addr)
	if err != nil {
		return err
	}
	if s.cfg.API.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.cfg.API.MaxConns)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	s.log.WithField("addr", ln.Addr().String()).Info("api listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		return err
	}
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Debug("request")
	})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// envelope is the standard response wrapper.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    meta   `json:"meta"`
}

type meta struct {
	Timestamp      string `json:"timestamp"`
	ProcessingTime int64  `json:"processingTime"`
}

func respond(w http.ResponseWriter, status int, data any, errMsg string, start time.Time) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success: errMsg == "",
		Data:    data,
		Error:   errMsg,
		Meta: meta{
			Timestamp:      time.Now().UTC().Format(time.RFC3339),
			ProcessingTime: time.Since(start).Milliseconds(),
		},
	})
}
