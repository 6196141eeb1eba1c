// Package http exposes the JSON API: ledger CRUD, trash, budget and
// alerts, dashboard, monthly reports, caixinhas and backup bundles.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/kevenbotelho/controle-pessoal/internal/services"
)

type Server struct {
	http.Server

	ledger    *services.LedgerService
	caixinhas *services.CaixinhaService
	backup    *services.BackupService

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer wires the route table and middleware, returning a
// ready-to-run server. writeLimit caps mutating requests per client
// per minute; a non-positive value falls back to the default.
func NewServer(addr string, writeLimit int, ledger *services.LedgerService, caixinhas *services.CaixinhaService, backup *services.BackupService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:      ledger,
		caixinhas:   caixinhas,
		backup:      backup,
		rateLimiter: newRateLimiter(writeLimit),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/transacoes", s.wrap(s.handleListTransactions))
	mux.HandleFunc("POST /api/transacoes", s.wrap(s.handleCreateTransaction))
	mux.HandleFunc("PUT /api/transacoes/{id}", s.wrap(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transacoes/{id}", s.wrap(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/categorias", s.wrap(s.handleListCategories))
	mux.HandleFunc("POST /api/categorias", s.wrap(s.handleCreateCategory))
	mux.HandleFunc("DELETE /api/categorias/{id}", s.wrap(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/lixeira", s.wrap(s.handleListTrash))
	mux.HandleFunc("POST /api/lixeira/{id}/restaurar", s.wrap(s.handleRestoreTrash))
	mux.HandleFunc("DELETE /api/lixeira/{id}", s.wrap(s.handlePurgeTrash))
	mux.HandleFunc("DELETE /api/lixeira", s.wrap(s.handleEmptyTrash))

	mux.HandleFunc("GET /api/orcamentos", s.wrap(s.handleGetBudget))
	mux.HandleFunc("PUT /api/orcamentos", s.wrap(s.handleSetBudget))
	mux.HandleFunc("GET /api/orcamentos/alertas", s.wrap(s.handleBudgetAlerts))

	mux.HandleFunc("GET /api/dashboard", s.wrap(s.handleDashboard))
	mux.HandleFunc("GET /api/relatorios/mensal", s.wrap(s.handleMonthlyReport))

	mux.HandleFunc("GET /api/caixinhas", s.wrap(s.handleListCaixinhas))
	mux.HandleFunc("POST /api/caixinhas", s.wrap(s.handleCreateCaixinha))
	mux.HandleFunc("GET /api/caixinhas/notificacoes", s.wrap(s.handleCaixinhaNotifications))
	mux.HandleFunc("POST /api/caixinhas/sugestao", s.wrap(s.handleCaixinhaSuggestion))
	mux.HandleFunc("GET /api/caixinhas/{id}", s.wrap(s.handleGetCaixinha))
	mux.HandleFunc("PUT /api/caixinhas/{id}", s.wrap(s.handleUpdateCaixinha))
	mux.HandleFunc("DELETE /api/caixinhas/{id}", s.wrap(s.handleDeleteCaixinha))
	mux.HandleFunc("POST /api/caixinhas/{id}/contribuicoes", s.wrap(s.handleContribute))
	mux.HandleFunc("POST /api/caixinhas/{id}/status", s.wrap(s.handleToggleCaixinha))
	mux.HandleFunc("GET /api/caixinhas/{id}/projecao", s.wrap(s.handleCaixinhaProjection))

	mux.HandleFunc("GET /api/perfil", s.wrap(s.handleGetProfile))
	mux.HandleFunc("PUT /api/perfil", s.wrap(s.handleSetProfile))

	mux.HandleFunc("GET /api/backup/exportar", s.wrap(s.handleExportLedger))
	mux.HandleFunc("POST /api/backup/importar", s.wrap(s.handleImportLedger))
	mux.HandleFunc("GET /api/backup/caixinhas/exportar", s.wrap(s.handleExportCaixinhas))
	mux.HandleFunc("POST /api/backup/caixinhas/importar", s.wrap(s.handleImportCaixinhas))

	return s
}

// Shutdown stops the rate limiter cleanup goroutine and drains the
// HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// wrap adds security headers, request-id tracing, request logging and
// rate limiting on mutating methods.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(int(rateWindow/time.Second)))
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
