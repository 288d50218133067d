package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shortlist-group/jobscout/internal/model"
	"github.com/shortlist-group/jobscout/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pipeline HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/v1/pipeline/runs", handleCreateRun(env))
		r.Get("/v1/pipeline/runs/{runID}", handleGetRun(env.Store))
		r.Get("/v1/candidates/{candidateID}/latest", handleLatestRun(env.Store))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

type runRequest struct {
	CandidateID   string               `json:"candidate_id"`
	ResumeProfile model.ResumeProfile  `json:"resume_profile"`
	Preferences   model.JobPreferences `json:"preferences"`
	TargetJobURL  string               `json:"target_job_url,omitempty"`
	TargetJD      string               `json:"target_jd,omitempty"`
	MaxResults    int                  `json:"max_results,omitempty"`
}

// handleCreateRun runs the pipeline synchronously and returns the scored
// jobs; pipeline failures surface as 500s with the run already marked
// failed in the store.
func handleCreateRun(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req runRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if _, err := uuid.Parse(req.CandidateID); err != nil {
			writeError(w, http.StatusBadRequest, "candidate_id must be a UUID")
			return
		}

		result, err := env.Pipeline.Run(r.Context(), model.PipelineInput{
			CandidateID:       req.CandidateID,
			Profile:           req.ResumeProfile,
			Preferences:       req.Preferences,
			TargetJobURL:      req.TargetJobURL,
			TargetDescription: req.TargetJD,
			MaxResults:        req.MaxResults,
		})
		if err != nil {
			zap.L().Error("api: pipeline run failed",
				zap.String("candidate_id", req.CandidateID),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "pipeline run failed")
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func handleGetRun(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := chi.URLParam(r, "runID")
		run, err := st.GetRun(r.Context(), runID)
		if err != nil {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeRunWithJobs(w, r, st, run)
	}
}

func handleLatestRun(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidateID := chi.URLParam(r, "candidateID")
		run, err := st.GetLatestRunByCandidate(r.Context(), candidateID)
		if err != nil {
			writeError(w, http.StatusNotFound, "no runs for candidate")
			return
		}
		writeRunWithJobs(w, r, st, run)
	}
}

func writeRunWithJobs(w http.ResponseWriter, r *http.Request, st store.Store, run *model.Run) {
	jobs, err := st.ListJobsByRun(r.Context(), run.ID)
	if err != nil {
		zap.L().Error("api: list jobs failed", zap.String("run_id", run.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load jobs")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Run  *model.Run        `json:"run"`
		Jobs []model.ScoredJob `json:"jobs"`
	}{run, jobs})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
