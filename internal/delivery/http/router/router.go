// Package router registers the HTTP routes.
package router

import (
	"authcore/internal/delivery/http/middleware"
	"authcore/internal/delivery/http/router/handler"
	"authcore/internal/domain/entity"
	"authcore/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler      *handler.AuthHandler
	UserHandler      *handler.UserHandler
	EquipmentHandler *handler.EquipmentHandler
	MealHandler      *handler.MealHandler
	AuthMiddleware   *middleware.AuthMiddleware
	Metrics          *metrics.Metrics `optional:"true"`
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler      *handler.AuthHandler
	userHandler      *handler.UserHandler
	equipmentHandler *handler.EquipmentHandler
	mealHandler      *handler.MealHandler
	authMiddleware   *middleware.AuthMiddleware
	metrics          *metrics.Metrics
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:      params.AuthHandler,
		userHandler:      params.UserHandler,
		equipmentHandler: params.EquipmentHandler,
		mealHandler:      params.MealHandler,
		authMiddleware:   params.AuthMiddleware,
		metrics:          params.Metrics,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)
	if r.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(r.metrics.Handler()))
	}

	authGroup := e.Group("/auth")
	{
		authGroup.POST("/signup", r.authHandler.Signup)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/refresh", r.authHandler.Refresh)
		authGroup.POST("/logout", r.authHandler.Logout)
		authGroup.POST("/forgot-password", r.authHandler.ForgotPassword)
		authGroup.POST("/reset-password", r.authHandler.ResetPassword)
	}

	api := e.Group("/api/v1")
	api.Use(r.authMiddleware.Authenticate)
	api.GET("/me", r.userHandler.Me)

	equipment := api.Group("/equipment")
	{
		owned := r.authMiddleware.CheckOwnership(handler.EquipmentResource, r.equipmentHandler.OwnerLookup())
		equipment.POST("", r.equipmentHandler.Create)
		equipment.GET("", r.equipmentHandler.List)
		equipment.GET("/:id", r.equipmentHandler.Get, owned)
		equipment.PATCH("/:id", r.equipmentHandler.Update, owned)
		equipment.DELETE("/:id", r.equipmentHandler.Delete, owned)
	}

	meals := api.Group("/meals")
	{
		owned := r.authMiddleware.CheckOwnership(handler.MealResource, r.mealHandler.OwnerLookup())
		meals.POST("", r.mealHandler.Create)
		meals.GET("", r.mealHandler.List)
		meals.GET("/:id", r.mealHandler.Get, owned)
		meals.DELETE("/:id", r.mealHandler.Delete, owned)
	}

	admin := api.Group("/admin")
	admin.Use(r.authMiddleware.Authorize(entity.RoleAdmin))
	{
		admin.GET("/users/:id", r.userHandler.GetUser)
		admin.PATCH("/users/:id/active", r.userHandler.SetActive)
	}
}
