package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/contacts"
	"github.com/sells-group/outreach-cli/internal/waterfall"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for resolution requests",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		exec, err := buildExecutor(cfg)
		if err != nil {
			return err
		}
		disc := buildDiscoverer(cfg)

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Post("/api/resolve", handleResolve(exec))
		r.Post("/api/contacts", handleContacts(disc))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("server listening", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "serve")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func handleResolve(exec *waterfall.Executor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PersonName  string `json:"person_name"`
			CompanyName string `json:"company_name"`
			Domain      string `json:"domain"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		req, err := waterfall.NewRequest(body.PersonName, body.CompanyName, body.Domain)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		outcome, err := exec.Resolve(r.Context(), req)
		if err != nil {
			zap.L().Error("resolve failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "resolution failed"})
			return
		}
		writeJSON(w, http.StatusOK, outcome)
	}
}

func handleContacts(disc *contacts.Discoverer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if disc == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no scraping provider configured"})
			return
		}

		var body struct {
			CompanyName string   `json:"company_name"`
			Domain      string   `json:"domain"`
			Roles       []string `json:"roles"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if body.CompanyName == "" && body.Domain == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "company_name or domain is required"})
			return
		}

		records, err := disc.FindCompanyContacts(r.Context(), body.CompanyName, waterfall.NormalizeDomain(body.Domain), body.Roles)
		if err != nil {
			zap.L().Error("contact discovery failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "discovery failed"})
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
