/*
 * Copyright 2024 Canonical Ltd.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package api provides the HTTP server for the hardware certification
// lookup service.
package api

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/canonical/hwapi/pkg/logger"
	"github.com/canonical/hwapi/pkg/models"
)

//go:embed openapi.yaml
var openapiFS embed.FS

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 60 * time.Second

	rootBanner = "Hardware Information API (hwapi) server"
)

// Checker classifies one machine description. The production implementation
// is StatusService; tests substitute a fake.
type Checker interface {
	CheckStatus(ctx context.Context, req *models.CertificationStatusRequest) (models.CertificationStatusResponse, error)
}

// Server is the HTTP front of the service.
type Server struct {
	router  *mux.Router
	checker Checker
	log     logger.Logger
	srv     *http.Server
}

// NewServer builds the router and wires the routes.
func NewServer(checker Checker, log logger.Logger) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		checker: checker,
		log:     log.WithComponent("api"),
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(requestIDMiddleware)
	s.router.Use(corsMiddleware)
	s.router.Use(requestLogMiddleware(s.log))

	s.router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/openapi.yaml", s.handleOpenAPI).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/certification/status", s.handleCertificationStatus).Methods(http.MethodPost)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start(addr string) error {
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	s.log.Info().Str("addr", addr).Msg("Starting HTTP server")

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api: serve: %w", err)
	}

	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}

	return s.srv.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(rootBanner))
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	schema, err := openapiFS.ReadFile("openapi.yaml")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "schema unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(schema)
}

func (s *Server) handleCertificationStatus(w http.ResponseWriter, r *http.Request) {
	var req models.CertificationStatusRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("malformed request body: %v", err))
		return
	}

	if err := req.Validate(); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp, err := s.checker.CheckStatus(r.Context(), &req)
	if err != nil {
		s.log.Error().Err(err).Str("vendor", req.Vendor).Str("model", req.Model).
			Msg("Certification status check failed")
		s.writeError(w, http.StatusInternalServerError, "internal server error")

		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

// errorBody mirrors the {"detail": ...} shape clients already parse.
type errorBody struct {
	Detail string `json:"detail"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, errorBody{Detail: detail})
}
