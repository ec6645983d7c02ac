package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/directory-enrich/internal/model"
	"github.com/sells-group/directory-enrich/internal/store"
)

var servePort int

// maxRequestBody bounds POST /v1/enrich payloads.
const maxRequestBody = 64 << 10

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the enrichment HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           buildRouter(env.Pipeline, env.Store, cfg.Server.CORSOrigins),
			ReadHeaderTimeout: 5 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// buildRouter wires the HTTP API. st may be nil, in which case the run
// endpoints answer 404.
func buildRouter(p enricher, st store.Store, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/enrich", handleEnrich(p, st))
		r.Get("/runs", handleListRuns(st))
		r.Get("/runs/{id}", handleGetRun(st))
	})
	return r
}

func handleEnrich(p enricher, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.EnrichmentRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := p.Enrich(r.Context(), req)
		run := saveRun(r.Context(), st, req, resp, err)
		if errors.Is(err, model.ErrMissingName) {
			writeError(w, http.StatusBadRequest, "businessName is required")
			return
		}
		if err != nil {
			zap.L().Error("enrich request failed", zap.String("business_id", req.BusinessID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "enrichment failed")
			return
		}

		if run != nil {
			w.Header().Set("X-Run-ID", run.ID)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleGetRun(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			writeError(w, http.StatusNotFound, "run history is not configured")
			return
		}
		run, err := st.GetRun(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		if err != nil {
			zap.L().Error("get run failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load run")
			return
		}
		writeJSON(w, http.StatusOK, runView(run))
	}
}

func handleListRuns(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			writeError(w, http.StatusNotFound, "run history is not configured")
			return
		}
		q := r.URL.Query()
		filter := store.RunFilter{
			Status:     model.RunStatus(q.Get("status")),
			BusinessID: q.Get("businessId"),
		}
		if v := q.Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
				return
			}
			filter.Limit = n
		}

		runs, err := st.ListRuns(r.Context(), filter)
		if err != nil {
			zap.L().Error("list runs failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list runs")
			return
		}
		if runs == nil {
			runs = []model.Run{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
	}
}

// requestLogger logs each request through the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
