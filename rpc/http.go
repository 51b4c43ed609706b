package rpc

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stakehub/native/staking"
	"stakehub/token"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB

	// AuthTokenEnv names the environment variable holding the bearer token
	// required for admin methods.
	AuthTokenEnv = "STAKEHUB_RPC_TOKEN"
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
)

// Server exposes the staking engine over JSON-RPC 2.0.
type Server struct {
	engine    *staking.Engine
	ledger    *token.Ledger
	authToken string
	logger    *slog.Logger
}

func NewServer(engine *staking.Engine, ledger *token.Ledger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine:    engine,
		ledger:    ledger,
		authToken: strings.TrimSpace(os.Getenv(AuthTokenEnv)),
		logger:    logger,
	}
}

// Router wires the RPC endpoint alongside health and metrics handlers.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Post("/", s.handle)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Start blocks serving HTTP on the given address.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting JSON-RPC server", slog.String("addr", addr))
	return http.ListenAndServe(addr, s.Router())
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeEngineError maps engine sentinels onto stable RPC codes so callers can
// branch programmatically. The sentinel text travels in the data field.
func writeEngineError(w http.ResponseWriter, id interface{}, err error) {
	switch {
	case errors.Is(err, staking.ErrNotAdmin):
		writeError(w, http.StatusForbidden, id, codeUnauthorized, err.Error(), nil)
	case errors.Is(err, staking.ErrInvalidAmount),
		errors.Is(err, staking.ErrInvalidAPY),
		errors.Is(err, staking.ErrInvalidAllowance):
		writeError(w, http.StatusBadRequest, id, codeInvalidParams, err.Error(), nil)
	default:
		writeError(w, http.StatusOK, id, codeServerError, err.Error(), nil)
	}
}

func (s *Server) requireAuth(r *http.Request) *RPCError {
	if s.authToken == "" {
		return &RPCError{Code: codeUnauthorized, Message: "rpc auth token not configured"}
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return &RPCError{Code: codeUnauthorized, Message: "missing bearer token"}
	}
	provided := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if subtle.ConstantTimeCompare([]byte(provided), []byte(s.authToken)) != 1 {
		return &RPCError{Code: codeUnauthorized, Message: "invalid bearer token"}
	}
	return nil
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	var req RPCRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "failed to parse request", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", nil)
		return
	}

	switch req.Method {
	// Admin surface.
	case "staking_addPool":
		s.handleAddPool(w, r, &req)
	case "staking_startStaking":
		s.handleStartStaking(w, r, &req)
	case "staking_pauseStaking":
		s.handlePauseStaking(w, r, &req)
	case "staking_resumeStaking":
		s.handleResumeStaking(w, r, &req)
	case "staking_updatePoolAPY":
		s.handleUpdatePoolAPY(w, r, &req)
	case "staking_setFeeWallet":
		s.handleSetFeeWallet(w, r, &req)
	case "staking_pauseClaims":
		s.handleSetClaimsGate(w, r, &req, true)
	case "staking_startClaims":
		s.handleSetClaimsGate(w, r, &req, false)
	case "staking_pauseUnstaking":
		s.handleSetUnstakingGate(w, r, &req, true)
	case "staking_startUnstaking":
		s.handleSetUnstakingGate(w, r, &req, false)

	// Account surface.
	case "staking_stake":
		s.handleStake(w, &req)
	case "staking_claimRewards":
		s.handleClaimRewards(w, &req)
	case "staking_unStake":
		s.handleUnstake(w, &req)

	// Read-only surface.
	case "staking_rewardPerSecond":
		s.handleRewardPerSecond(w, &req)
	case "staking_viewRewards":
		s.handleViewRewards(w, &req)
	case "staking_getPool":
		s.handleGetPool(w, &req)
	case "staking_getPosition":
		s.handleGetPosition(w, &req)
	case "token_balanceOf":
		s.handleBalanceOf(w, &req)

	default:
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "method not found", req.Method)
	}
}
