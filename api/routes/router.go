package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/technova/storefront-backend/api/controllers"
	"github.com/technova/storefront-backend/api/middleware"
	authsvc "github.com/technova/storefront-backend/internal/auth"
	cartsvc "github.com/technova/storefront-backend/internal/cart"
	catalogsvc "github.com/technova/storefront-backend/internal/catalog"
	checkoutsvc "github.com/technova/storefront-backend/internal/checkout"
	comparisonsvc "github.com/technova/storefront-backend/internal/comparison"
	orderssvc "github.com/technova/storefront-backend/internal/orders"
	reviewssvc "github.com/technova/storefront-backend/internal/reviews"
	userssvc "github.com/technova/storefront-backend/internal/users"
	wishlistsvc "github.com/technova/storefront-backend/internal/wishlist"
	"github.com/technova/storefront-backend/pkg/auth/session"
	"github.com/technova/storefront-backend/pkg/config"
	"github.com/technova/storefront-backend/pkg/logger"
	"github.com/technova/storefront-backend/pkg/metrics"
)

// Services bundles the domain services the router wires to controllers.
type Services struct {
	Catalog    catalogsvc.Service
	Cart       cartsvc.Service
	Comparison comparisonsvc.Service
	Checkout   checkoutsvc.Service
	Orders     orderssvc.Service
	Wishlist   wishlistsvc.Service
	Reviews    reviewssvc.Service
	Users      userssvc.Service
	Auth       authsvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	sessions session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	readiness map[string]controllers.Pinger,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if httpMetrics != nil {
		r.Use(middleware.Metrics(httpMetrics))
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, sessions, logg)).
			Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public storefront reads.
		r.Group(func(r chi.Router) {
			r.Get("/products", controllers.ProductList(svcs.Catalog, logg))
			r.Get("/products/featured", controllers.ProductsFeatured(svcs.Catalog, logg))
			r.Get("/products/deals", controllers.ProductsDeals(svcs.Catalog, logg))
			r.Get("/products/{slug}", controllers.ProductDetail(svcs.Catalog, logg))
			r.Get("/products/{productId}/reviews", controllers.ReviewList(svcs.Reviews, logg))
			r.Get("/categories", controllers.CategoryList(svcs.Catalog, logg))
		})

		// Cart, comparison, and quoting work for both anonymous and
		// signed-in shoppers. Signed-in shoppers get a stable slot keyed
		// by their user id.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, sessions, logg))
			r.Use(middleware.ShopperSession(logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(svcs.Cart, logg))
				r.Post("/items", controllers.CartAddItem(svcs.Cart, logg))
				r.Put("/items/{productId}", controllers.CartUpdateItem(svcs.Cart, logg))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(svcs.Cart, logg))
				r.Delete("/", controllers.CartClear(svcs.Cart, logg))
				r.Post("/panel", controllers.CartPanel(svcs.Cart, logg))
			})

			r.Route("/comparison", func(r chi.Router) {
				r.Get("/", controllers.ComparisonFetch(svcs.Comparison, logg))
				r.Post("/items", controllers.ComparisonAdd(svcs.Comparison, logg))
				r.Delete("/items/{productId}", controllers.ComparisonRemove(svcs.Comparison, logg))
				r.Delete("/", controllers.ComparisonClear(svcs.Comparison, logg))
				r.Post("/panel", controllers.ComparisonPanel(svcs.Comparison, logg))
			})

			r.Get("/checkout/quote", controllers.CheckoutQuote(svcs.Checkout, logg))
		})

		// Signed-in shoppers only.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Use(middleware.ShopperSession(logg))

			r.Post("/checkout", controllers.CheckoutPlaceOrder(svcs.Checkout, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderList(svcs.Orders, logg))
				r.Get("/{orderId}", controllers.OrderDetail(svcs.Orders, logg))
				r.Post("/{orderId}/cancel", controllers.OrderCancel(svcs.Orders, logg))
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.WishlistList(svcs.Wishlist, logg))
				r.Post("/items", controllers.WishlistAdd(svcs.Wishlist, logg))
				r.Delete("/items/{productId}", controllers.WishlistRemove(svcs.Wishlist, logg))
			})

			r.Route("/reviews", func(r chi.Router) {
				r.Put("/", controllers.ReviewUpsert(svcs.Reviews, logg))
				r.Get("/{productId}", controllers.ReviewOwn(svcs.Reviews, logg))
				r.Delete("/{productId}", controllers.ReviewDelete(svcs.Reviews, logg))
			})

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", controllers.ProfileGet(svcs.Users, logg))
				r.Put("/", controllers.ProfileUpdate(svcs.Users, logg))
			})
		})
	})

	return r
}
