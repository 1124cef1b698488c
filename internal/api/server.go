// Package api exposes the gateway over HTTP: signed batch submissions plus
// read endpoints for monitoring and auditing.
package api

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Arctek/core/internal/auth"
	"github.com/Arctek/core/internal/collateral"
	"github.com/Arctek/core/internal/logger"
	"github.com/Arctek/core/internal/params"
	"github.com/Arctek/core/internal/updater"
)

const (
	// maxBodySize is the maximum request body size in bytes.
	maxBodySize = 1 << 20 // 1 MB
)

// Envelope is a signed batch submission. The signature covers
// BLAKE3(operation || 0x00 || payload); the principal is derived from the
// public key after verification.
type Envelope struct {
	PublicKey string          `json:"pubkey"`    // hex-encoded BLS public key
	Signature string          `json:"signature"` // hex-encoded BLS signature
	Payload   json.RawMessage `json:"payload"`   // operation-specific arguments
}

// Server is the HTTP API server.
type Server struct {
	addr        string               // addr is the HTTP listen address
	updater     *updater.Updater     // updater applies batch operations
	vaultParams *params.VaultParams  // vaultParams answers capability queries
	collaterals *collateral.Registry // collaterals lists registered assets
	server      *http.Server         // server is the underlying HTTP server
}

// New creates a new HTTP API server.
func New(addr string, u *updater.Updater, vaultParams *params.VaultParams, collaterals *collateral.Registry) *Server {
	return &Server{
		addr:        addr,
		updater:     u,
		vaultParams: vaultParams,
		collaterals: collaterals,
	}
}

// Start starts the HTTP server in a goroutine.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http api started", "addr", s.addr)

		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// Handler returns the server's request handler, for embedding in tests or
// other HTTP servers.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// routes builds the request mux.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/batch/{op}", s.handleBatch)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /v1/collaterals", s.handleCollaterals)
	mux.HandleFunc("GET /v1/auth/{address}", s.handleAuth)

	return mux
}

// handleBatch handles POST /v1/batch/{op} requests.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	op := r.PathValue("op")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		writeError(w, http.StatusBadRequest, "invalid envelope")
		return
	}

	pubkey, err := hex.DecodeString(env.PublicKey)
	if err != nil || len(pubkey) != auth.PublicKeySize {
		writeError(w, http.StatusBadRequest, "invalid public key")
		return
	}

	signature, err := hex.DecodeString(env.Signature)
	if err != nil || len(signature) != auth.SignatureSize {
		writeError(w, http.StatusBadRequest, "invalid signature encoding")
		return
	}

	digest := auth.EnvelopeDigest(op, env.Payload)

	if !auth.Verify(signature, digest[:], pubkey) {
		writeError(w, http.StatusUnauthorized, "signature verification failed")
		return
	}

	principal := auth.AddressFromPublicKey(pubkey)

	if err := s.dispatch(op, principal, env.Payload); err != nil {
		writeBatchError(w, op, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "applied",
		"operation": op,
		"principal": principal.String(),
	})
}

// writeBatchError maps a dispatch failure to an HTTP status.
func writeBatchError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, errUnknownOperation):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errBadPayload), errors.Is(err, updater.ErrLengthMismatch):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, updater.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		logger.Warn("batch failed", "op", op, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

// handleHealth handles GET /health requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleStatus handles GET /status requests.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"vault":       s.vaultParams.Vault().String(),
		"collaterals": s.collaterals.Count(),
	})
}

// handleCollaterals handles GET /v1/collaterals requests.
func (s *Server) handleCollaterals(w http.ResponseWriter, r *http.Request) {
	assets := s.collaterals.Collaterals()

	list := make([]string, len(assets))
	for i, a := range assets {
		list[i] = a.String()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"collaterals": list,
	})
}

// handleAuth handles GET /v1/auth/{address} requests.
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	addr, err := params.ParseAddress(r.PathValue("address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid address")
		return
	}

	gate := s.updater.Gate()

	writeJSON(w, http.StatusOK, map[string]any{
		"address":        addr.String(),
		"isManager":      gate.IsManager(addr),
		"canModifyVault": gate.CanModifyVault(addr),
		"isVaultProcess": gate.IsVaultProcess(addr),
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
