package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/techb2bnew/coconut-delivery/api/controllers"
	"github.com/techb2bnew/coconut-delivery/api/middleware"
	"github.com/techb2bnew/coconut-delivery/internal/estimation"
	"github.com/techb2bnew/coconut-delivery/internal/estimation/session"
	"github.com/techb2bnew/coconut-delivery/internal/orders"
	"github.com/techb2bnew/coconut-delivery/internal/rules"
	"github.com/techb2bnew/coconut-delivery/pkg/config"
	"github.com/techb2bnew/coconut-delivery/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	db controllers.Pinger,
	cache controllers.Pinger,
	estimator estimation.Service,
	sessions *session.Manager,
	rulesRepo rules.Repository,
	ordersRepo orders.Repository,
	ordersSvc orders.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, db, cache))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/estimates", controllers.Estimates(estimator, ordersRepo, cfg.Estimator.DefaultTimezone, logg))

		r.Route("/estimate-sessions", func(r chi.Router) {
			r.Post("/", controllers.OpenEstimateSession(sessions, ordersRepo, cfg.Estimator.DefaultTimezone, logg))
			r.Route("/{sessionId}", func(r chi.Router) {
				r.Get("/", controllers.EstimateSessionSnapshot(sessions, logg))
				r.Put("/quantity", controllers.UpdateEstimateSessionQuantity(sessions, logg))
				r.Delete("/", controllers.CloseEstimateSession(sessions, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.SubmitOrder(ordersSvc, logg))
			r.Get("/{orderId}", controllers.OrderDetail(ordersSvc, logg))
		})

		r.Route("/franchises/{franchiseId}", func(r chi.Router) {
			r.Get("/rules", controllers.FranchiseRules(rulesRepo, logg))
			r.Get("/orders", controllers.FranchiseOrders(ordersSvc, logg))
		})
	})

	return r
}
