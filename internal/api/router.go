package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/swiftlogistics/order-api/docs"
	"github.com/swiftlogistics/order-api/internal/api/handler"
	"github.com/swiftlogistics/order-api/internal/api/middleware"
	"github.com/swiftlogistics/order-api/internal/core/domain"
	"github.com/swiftlogistics/order-api/internal/core/ports"
)

// Deps carries the services and infrastructure hooks the router mounts.
type Deps struct {
	Auth     ports.AuthService
	Orders   ports.OrderService
	Delivery ports.DeliveryService
	Queue    handler.UpdateQueue
	Events   ports.EventReader
	Health   map[string]handler.Check
	Logger   zerolog.Logger

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "logistics",
		Subsystem:  "http",
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(echomiddleware.BodyLimit("1M"))

	// --- Handlers ---
	healthHandler := handler.NewHealthHandler(deps.Health)
	authHandler := handler.NewAuthHandler(deps.Auth)
	orderHandler := handler.NewOrderHandler(deps.Orders)
	deliveryHandler := handler.NewDeliveryHandler(deps.Delivery, deps.Queue, deps.Logger)
	adminHandler := handler.NewAdminHandler(deps.Orders, deps.Events)

	// --- Public routes ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Authenticated routes ---
	auth := middleware.Auth(deps.Auth)
	courierOrAdmin := middleware.RBAC(domain.RoleCourier, domain.RoleAdmin)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	e.POST("/orders", orderHandler.Create, auth)
	e.GET("/orders", orderHandler.List, auth)
	e.GET("/orders/:id", orderHandler.Get, auth)
	e.GET("/orders/:id/updates", deliveryHandler.History, auth)
	e.POST("/orders/:id/status", deliveryHandler.UpdateStatus, auth, courierOrAdmin)
	e.POST("/delivery-updates/batch", deliveryHandler.Batch, auth, courierOrAdmin)

	e.GET("/admin/stats", adminHandler.Stats, auth, adminOnly)
	e.GET("/admin/orders/:id/events", adminHandler.Events, auth, adminOnly)

	return e
}
