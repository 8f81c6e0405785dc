package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ridgelinearms/armory-backend/api/controllers"
	"github.com/ridgelinearms/armory-backend/api/middleware"
	"github.com/ridgelinearms/armory-backend/internal/catalog"
	"github.com/ridgelinearms/armory-backend/internal/compliance"
	"github.com/ridgelinearms/armory-backend/internal/ffl"
	"github.com/ridgelinearms/armory-backend/internal/orders"
	"github.com/ridgelinearms/armory-backend/internal/pricing"
	"github.com/ridgelinearms/armory-backend/internal/rules"
	"github.com/ridgelinearms/armory-backend/pkg/config"
	"github.com/ridgelinearms/armory-backend/pkg/logger"
	pkgredis "github.com/ridgelinearms/armory-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	Redis   *pkgredis.Client
	Metrics prometheus.Gatherer

	Catalog    *catalog.Repo
	RuleLoader *pricing.Loader
	Orders     orders.Service
	Rules      *rules.Service
	HoldQueue  compliance.Repository
	Tracker    *compliance.Tracker
	Dealers    *ffl.Repo
}

// NewRouter builds the full HTTP surface: public quote endpoints, the
// authenticated storefront API, and the staff admin API.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	// Storefront browse surface. Anonymous callers get public pricing;
	// a valid staff token upgrades the same endpoints to full visibility.
	r.Route("/api/public/v1", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, logg))
		r.Get("/products", controllers.ListProducts(deps.Catalog, logg))
		r.Get("/quotes/{sku}", controllers.Quote(deps.Catalog, deps.RuleLoader, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Post("/checkout", controllers.Checkout(deps.Orders, logg))
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(deps.Orders, logg))
			r.Get("/{baseNumber}", controllers.GetOrder(deps.Orders, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireStaff(logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/rules", func(r chi.Router) {
			r.Get("/", controllers.AdminListRules(deps.Rules, logg))
			r.Post("/", controllers.AdminActivateRule(deps.Rules, logg))
			r.Get("/active", controllers.AdminActiveRule(deps.Rules, logg))
			r.Get("/{ruleId}", controllers.AdminGetRule(deps.Rules, logg))
			r.Post("/{ruleId}/deactivate", controllers.AdminDeactivateRule(deps.Rules, logg))
		})

		r.Route("/holds", func(r chi.Router) {
			r.Get("/", controllers.AdminHoldQueue(deps.HoldQueue, logg))
			r.Post("/{shipmentId}/clear", controllers.AdminClearHold(deps.Tracker, logg))
			r.Post("/{shipmentId}/reject", controllers.AdminRejectHold(deps.Tracker, logg))
		})

		r.Route("/ffl-dealers", func(r chi.Router) {
			r.Get("/", controllers.AdminListDealers(deps.Dealers, logg))
			r.Post("/", controllers.AdminCreateDealer(deps.Dealers, logg))
			r.Get("/{dealerId}", controllers.AdminGetDealer(deps.Dealers, logg))
			r.Post("/{dealerId}/status", controllers.AdminUpdateDealerStatus(deps.Dealers, logg))
		})

		r.Get("/orders/{orderId}", controllers.AdminOrderDetail(deps.Orders, logg))
	})

	return r
}
