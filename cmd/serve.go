package main

import (
	"context"
	"encoding/json"
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

	"github.com/sells-group/rescue-router/internal/geo"
	"github.com/sells-group/rescue-router/internal/model"
)

const maxRequestBytes = 1 << 20

var servePort int

// planService is the subset of the planner the HTTP API exposes.
type planService interface {
	Locate(ctx context.Context, address, city string) (model.GeoPoint, error)
	Survey(ctx context.Context, address, city string) *model.SurveyReport
	PlanRoutes(ctx context.Context, address, city string, avoid [][]string) *model.Plan
}

type planRequest struct {
	Address  string     `json:"address"`
	City     string     `json:"city"`
	Center   string     `json:"center"`
	RadiusKM float64    `json:"radius_km"`
	Avoid    [][]string `json:"avoid"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		cfg.Server.Port = port

		env, err := initPlanner(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           buildRouter(env.Planner, cfg.Directions.RadiusKM),
			ReadHeaderTimeout: 10 * time.Second,
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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// buildRouter mounts the API on a chi router. radiusKM is the default
// distance for /v1/points.
func buildRouter(svc planService, radiusKM float64) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/points", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decodeRequest(w, req)
			if !ok {
				return
			}
			radius := body.RadiusKM
			if radius <= 0 {
				radius = radiusKM
			}

			var center model.GeoPoint
			var err error
			switch {
			case body.Center != "":
				center, err = model.ParseGeoPoint(body.Center)
				if err != nil {
					writeError(w, http.StatusBadRequest, err.Error())
					return
				}
			case body.Address != "":
				center, err = svc.Locate(req.Context(), body.Address, body.City)
				if err != nil {
					zap.L().Warn("points: address unresolved", zap.String("address", body.Address), zap.Error(err))
					writeJSON(w, http.StatusOK, map[string]any{"points": []model.DirectionalPoint{}, "error": err.Error()})
					return
				}
			default:
				writeError(w, http.StatusBadRequest, "center or address is required")
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"center": center, "points": geo.AroundPoints(center, radius)})
		})

		r.Post("/survey", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decodeAddress(w, req)
			if !ok {
				return
			}
			writeJSON(w, http.StatusOK, svc.Survey(req.Context(), body.Address, body.City))
		})

		r.Post("/routes", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decodeAddress(w, req)
			if !ok {
				return
			}
			writeJSON(w, http.StatusOK, svc.PlanRoutes(req.Context(), body.Address, body.City, body.Avoid))
		})
	})

	return r
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (planRequest, bool) {
	var body planRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return body, false
	}
	return body, true
}

func decodeAddress(w http.ResponseWriter, r *http.Request) (planRequest, bool) {
	body, ok := decodeRequest(w, r)
	if !ok {
		return body, false
	}
	if body.Address == "" {
		writeError(w, http.StatusBadRequest, "address is required")
		return body, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
