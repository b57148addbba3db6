package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/adapter"
	"github.com/sells-group/leadgen-cli/internal/engine"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// runStatus tracks one asynchronous scrape triggered over HTTP.
type runStatus struct {
	ID        string       `json:"id"`
	Status    string       `json:"status"` // running, complete, failed
	URLs      []string     `json:"urls"`
	ListName  string       `json:"list_name"`
	Leads     []model.Lead `json:"leads,omitempty"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// runRegistry is the in-process record of serve-mode runs. Nothing is
// persisted; runs vanish with the process.
type runRegistry struct {
	mu   sync.RWMutex
	runs map[string]*runStatus
}

func (r *runRegistry) put(s *runStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[s.ID] = s
}

func (r *runRegistry) get(id string) (*runStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.runs[id]
	return s, ok
}

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve scrape requests over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(); err != nil {
			return err
		}

		profiles, err := adapter.Load(cfg.Scrape.ProfilesFile)
		if err != nil {
			return err
		}

		browser := newBrowser(cfg.Render)
		defer browser.Close() //nolint:errcheck

		registry := &runRegistry{runs: make(map[string]*runStatus)}

		r := chi.NewRouter()
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/scrape", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				URLs     []string `json:"urls"`
				ListName string   `json:"list_name"`
				MaxPages int      `json:"max_pages"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
				return
			}
			if len(body.URLs) == 0 {
				http.Error(w, `{"error":"urls is required"}`, http.StatusBadRequest)
				return
			}

			listName := body.ListName
			if listName == "" {
				listName = cfg.Scrape.ListName
			}

			opts := engineOptions(cfg.Scrape)
			if body.MaxPages > 0 {
				opts.MaxPages = body.MaxPages
			}

			status := &runStatus{
				ID:        uuid.New().String(),
				Status:    "running",
				URLs:      body.URLs,
				ListName:  listName,
				CreatedAt: time.Now().UTC(),
			}
			registry.put(status)

			// Each run gets its own engine so dedup state stays per-run.
			eng := engine.New(browser, profiles, opts)

			go func() {
				leads, err := eng.Run(ctx, status.URLs)
				registry.mu.Lock()
				defer registry.mu.Unlock()
				if err != nil {
					status.Status = "failed"
					status.Error = err.Error()
					zap.L().Error("serve: run failed",
						zap.String("run", status.ID),
						zap.Error(err),
					)
					return
				}
				model.Stamp(leads, listName, time.Now())
				status.Status = "complete"
				status.Leads = leads
				zap.L().Info("serve: run complete",
					zap.String("run", status.ID),
					zap.Int("leads", len(leads)),
				)
			}()

			writeJSON(w, http.StatusAccepted, map[string]string{
				"id":     status.ID,
				"status": status.Status,
			})
		})

		r.Get("/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
			status, ok := registry.get(chi.URLParam(req, "id"))
			if !ok {
				http.Error(w, `{"error":"run not found"}`, http.StatusNotFound)
				return
			}
			registry.mu.RLock()
			defer registry.mu.RUnlock()
			writeJSON(w, http.StatusOK, status)
		})

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

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
