package serverhttp

import (
	"github.com/go-chi/chi/v5"

	"facility-recon/internal/middleware"
	recHnd "facility-recon/internal/reconcile/handler"
	"facility-recon/server/http/handlers"
)

func NewRouter(d recHnd.Deps) *chi.Mux {
	r := chi.NewRouter()

	// порядок важен: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(d.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(d.Logger))
	r.Use(middleware.CORS(d.Cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(d.Cfg.MaxUploadMB) << 20))

	r.Get("/health", handlers.Health)

	r.Post("/reconcile", recHnd.Reconcile(d))
	r.Get("/runs", recHnd.Runs(d))
	r.Get("/runs/{id}", recHnd.RunByID(d))

	return r
}
