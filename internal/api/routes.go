package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)
	auth.Get("/me", handler.AuthRequired, handler.Me)

	cycle := api.Group("/cycle", handler.AuthRequired)
	cycle.Get("/overview", handler.CycleOverview)
	cycle.Get("/profile", handler.GetCycleProfile)
	cycle.Post("/settings", handler.SaveCycleSettings)
	cycle.Post("/period/start", handler.StartPeriod)
	cycle.Post("/period/end", handler.EndPeriod)
	cycle.Get("/days/:date", handler.GetDailyEntry)
	cycle.Put("/days/:date", handler.UpsertDailyEntry)
	cycle.Get("/insights", handler.CycleInsights)

	finance := api.Group("/finance", handler.AuthRequired)
	finance.Get("/aggregate", handler.GetFinanceAggregate)
	finance.Get("/transactions", handler.ListTransactions)
	finance.Post("/transactions", handler.PostTransaction)
	finance.Delete("/transactions/:id", handler.DeleteTransaction)
	finance.Post("/migrate", handler.MigrateLegacyTransactions)
	finance.Post("/reconcile", handler.ReconcileFinance)
}
