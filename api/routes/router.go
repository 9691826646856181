package routes

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/minimarket-client/api/controllers"
	"github.com/angelmondragon/minimarket-client/api/middleware"
	"github.com/angelmondragon/minimarket-client/internal/orders"
	"github.com/angelmondragon/minimarket-client/pkg/config"
	"github.com/angelmondragon/minimarket-client/pkg/logger"
)

// CartView is what the cart and checkout routes need from the view layer.
type CartView interface {
	controllers.CartView
	controllers.Finalizer
}

// Deps collects the collaborators the view server routes to.
type Deps struct {
	View          CartView
	Cart          controllers.CartRefresher
	Checkout      controllers.SubmissionStater
	Notifications controllers.NotificationSource
	Catalog       controllers.CatalogReader
	Orders        orders.Service
	Store         controllers.Pinger
	Gatherer      prometheus.Gatherer
}

func (d Deps) validate() error {
	switch {
	case d.View == nil:
		return fmt.Errorf("cart view required")
	case d.Checkout == nil:
		return fmt.Errorf("checkout state required")
	case d.Catalog == nil:
		return fmt.Errorf("catalog reader required")
	case d.Orders == nil:
		return fmt.Errorf("orders service required")
	}
	return nil
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) (http.Handler, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.Store, logg))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.View, deps.Cart, logg))
			r.Delete("/", controllers.CartClear(deps.View, logg))
			r.Post("/items", controllers.CartAddItem(deps.View, logg))
			r.Put("/items/{productId}", controllers.CartSetQuantity(deps.View, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.View, logg))
			r.Post("/items/{productId}/increment", controllers.CartIncrement(deps.View, logg))
			r.Post("/items/{productId}/decrement", controllers.CartDecrement(deps.View, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutStatus(deps.Checkout, deps.Notifications, logg))
			r.Post("/", controllers.CheckoutSubmit(deps.View, logg))
		})

		r.Get("/products", controllers.ProductsList(deps.Catalog, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(deps.Orders, logg))
			r.Get("/stats", controllers.OrderStats(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
		})
	})

	return r, nil
}
