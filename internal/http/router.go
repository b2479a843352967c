package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"plantstock/internal/auth"
	"plantstock/internal/handlers"
	"plantstock/internal/inventory"
	"plantstock/internal/parts"
	"plantstock/internal/recordstore"
	"plantstock/internal/users"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Tokens           *auth.Manager
	Users            *users.Service
	Inventory        *inventory.Service
	Parts            *parts.Service
	StoreBackend     recordstore.DocumentStore
	HealthCollection string
}

// NewRouter creates the application router with all routes registered.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	userHandler := handlers.NewUserHandler(deps.Users, deps.Tokens)
	inventoryHandler := handlers.NewInventoryHandler(deps.Inventory)
	partsHandler := handlers.NewPartsHandler(deps.Parts)
	menuHandler := handlers.NewMenuHandler()
	healthHandler := handlers.NewHealthHandler(deps.StoreBackend, deps.HealthCollection)

	r.With(OptionalAuth(deps.Tokens)).Get("/", menuHandler.ServeHTTP)
	r.Get("/health", healthHandler.ServeHTTP)

	r.Route("/user", func(r chi.Router) {
		r.With(OptionalAuth(deps.Tokens)).Get("/manage", userHandler.Manage)
		r.Post("/login", userHandler.Login)
		r.Post("/logout", userHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(deps.Tokens))
			r.Post("/register", userHandler.Register)
			r.Post("/reset_password", userHandler.ResetPassword)
			r.Get("/me", userHandler.Me)
		})
	})

	r.Route("/inventory", func(r chi.Router) {
		r.Use(RequireAuth(deps.Tokens))

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(users.RoleAdmin, users.RoleEngineer, users.RoleInventory))
			r.Post("/add_item", inventoryHandler.AddItem)
			r.Get("/get_inventory", inventoryHandler.GetInventory)
			r.Get("/export_inventory", inventoryHandler.Export)
		})

		r.With(RequireRole(users.RoleAdmin, users.RoleEngineer)).
			Put("/update_item", inventoryHandler.UpdateItem)
		r.With(RequireRole(users.RoleAdmin)).
			Delete("/delete_item", inventoryHandler.DeleteItem)
	})

	r.Route("/engineering", func(r chi.Router) {
		r.Use(RequireAuth(deps.Tokens))
		r.Use(RequireRole(users.RoleAdmin, users.RoleEngineer))

		r.Get("/", partsHandler.Home)
		r.Post("/numero_parte/nuevo", partsHandler.Create)
		r.Get("/numero_parte/list", partsHandler.List)
		r.Get("/numero_parte/buscar", partsHandler.Find)
		r.Post("/numero_parte/modificar", partsHandler.Update)
		r.Post("/numero_parte/eliminar", partsHandler.Delete)
	})

	return r
}
