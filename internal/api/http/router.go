package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/payroll-registry/internal/api/http/handlers"
	"github.com/spec-kit/payroll-registry/internal/auth"
	"github.com/spec-kit/payroll-registry/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Registry       *handlers.RegistryHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Reads are public; mutations go through
// the auth middleware so the registry can check proven identities.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/challenge", cfg.Auth.Challenge)
	authGroup.Post("/token", cfg.Auth.Token)

	reg := app.Group("/registry")
	reg.Get("/owner", cfg.Registry.GetOwner)
	reg.Get("/staff", cfg.Registry.ListStaff)
	reg.Get("/staff/count", cfg.Registry.CountStaff)
	reg.Get("/staff/:hash", cfg.Registry.GetStaff)
	reg.Get("/staff/:hash/active", cfg.Registry.IsStaffActive)
	reg.Get("/staff/:hash/registered", cfg.Registry.IsStaffRegistered)
	reg.Get("/batches", cfg.Registry.ListBatches)
	reg.Get("/batches/count", cfg.Registry.CountBatches)
	reg.Get("/batches/:hash", cfg.Registry.GetBatch)
	reg.Get("/batches/:hash/recorded", cfg.Registry.IsBatchRecorded)

	authn := cfg.AuthMiddleware.Handle
	reg.Post("/initialize", authn, cfg.Registry.Initialize)
	reg.Post("/owner/transfer", authn, cfg.Registry.TransferOwnership)
	reg.Post("/staff", authn, cfg.Registry.RegisterStaff)
	reg.Post("/staff/:hash/revoke", authn, cfg.Registry.RevokeStaff)
	reg.Post("/batches", authn, cfg.Registry.RecordBatch)
}
