package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/quillbooks/quillbooks/internal/auth"
	"github.com/quillbooks/quillbooks/internal/catalog"
	"github.com/quillbooks/quillbooks/internal/customers"
	"github.com/quillbooks/quillbooks/internal/invoices"
	"github.com/quillbooks/quillbooks/internal/quotations"
	"github.com/quillbooks/quillbooks/internal/render"
	"github.com/quillbooks/quillbooks/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	AuthHandler       *auth.Handler
	AuthMiddleware    func(http.Handler) http.Handler
	CustomersHandler  *customers.Handler
	CatalogHandler    *catalog.Handler
	UsersHandler      *users.Handler
	QuotationsHandler *quotations.Handler
	InvoicesHandler   *invoices.Handler
	RenderHandler     *render.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)

		r.Group(func(r chi.Router) {
			if params.AuthMiddleware != nil {
				r.Use(params.AuthMiddleware)
			}
			r.Route("/customers", params.CustomersHandler.MountRoutes)
			r.Route("/items", params.CatalogHandler.MountRoutes)
			r.Route("/users", params.UsersHandler.MountRoutes)
			r.Route("/quotations", params.QuotationsHandler.MountRoutes)
			r.Route("/invoices", params.InvoicesHandler.MountRoutes)
			params.RenderHandler.MountRoutes(r)
		})
	})

	return r
}
