package handler

import "github.com/gofiber/fiber/v2"

type Handlers struct {
	Auth         *AuthHandler
	Dashboard    *DashboardHandler
	Measurements *MeasurementHandler
	Stores       *StoreHandler
	Import       *ImportHandler
	Health       *HealthHandler
	WS           *WSHandler
}

// RegisterRoutes mounts every endpoint. requireAuth guards everything
// except login, token validation and health.
func RegisterRoutes(app *fiber.App, h Handlers, requireAuth fiber.Handler) {
	app.Get("/health", h.Health.Health)

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", h.Auth.Login)
	auth.Post("/validate-token", h.Auth.ValidateToken)
	auth.Post("/logout", requireAuth, h.Auth.Logout)
	auth.Post("/heartbeat", requireAuth, h.Auth.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	protected.Get("/dashboard", h.Dashboard.Get)
	protected.Post("/dashboard/refresh", h.Dashboard.Refresh)
	protected.Put("/dashboard/options", h.Dashboard.ApplyOptions)
	protected.Get("/dashboard/export.csv", h.Dashboard.ExportCSV)
	protected.Get("/dashboard/page", h.Dashboard.Page)

	protected.Get("/measurements", h.Measurements.List)

	protected.Get("/stores", h.Stores.GetStores)
	protected.Get("/stores/:id", h.Stores.GetStore)
	protected.Post("/stores", h.Stores.CreateStore)
	protected.Put("/stores/:id", h.Stores.UpdateStore)
	protected.Delete("/stores/:id", h.Stores.DeleteStore)

	protected.Post("/import/excel", h.Import.ImportExcel)

	if h.WS != nil {
		protected.Get("/ws", h.WS.RequireUpgrade, h.WS.Stream())
	}
}
