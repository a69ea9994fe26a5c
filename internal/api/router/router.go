package router

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	m "github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// SetupRouter 的 limiter 為 nil 時不限流
func SetupRouter(server *api.Server, logger *zerolog.Logger, limiter *m.TokenBucket) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(middleware.RealIP)
	r.Use(m.LoggerMiddleware(logger))
	r.Use(m.RecoverMiddleware(logger))
	r.Use(m.RateLimitMiddleware(limiter))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/menu", func(r chi.Router) {
			r.Get("/", server.MenuHandler.List)
			r.Get("/featured", server.MenuHandler.Featured)
		})
		r.Get("/specials", server.MenuHandler.Specials)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", server.CartHandler.Get)
			r.Delete("/", server.CartHandler.Clear)
			r.Post("/items/{id}", server.CartHandler.AddItem)
			r.Delete("/items/{id}", server.CartHandler.RemoveItem)
		})
		r.Post("/checkout", server.CartHandler.Checkout)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", server.OrderHandler.List)
			r.Delete("/", server.OrderHandler.Clear)
			r.Get("/{id}", server.OrderHandler.Get)
		})
	})
	return r
}

// Routes lists every registered route as "METHOD /path".
func Routes(r chi.Routes) ([]string, error) {
	var out []string
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		out = append(out, method+" "+route)
		return nil
	})
	return out, err
}
