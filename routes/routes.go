package routes

import (
	"food-marketplace-api/access"
	"food-marketplace-api/handlers"
	"food-marketplace-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler) {
	r.Static("/uploads", h.UploadDir)

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)

		public.GET("/restaurants", h.ListRestaurants)
		public.GET("/restaurants/:id", h.GetRestaurant)
		public.GET("/restaurants/:id/menu", h.GetMenu)
		public.GET("/restaurants/:id/hours", h.GetHours)

		public.GET("/state-machine", h.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	// Restaurant-scoped checks run inside the handlers since they need the id.
	auth := r.Group("/api")
	auth.Use(h.Auth.AuthRequired())
	{
		auth.GET("/profile", h.GetProfile)

		// Comments
		auth.GET("/restaurants/:id/comments", h.ListComments)
		auth.POST("/restaurants/:id/comments", h.PostComment)
		auth.DELETE("/comments/:commentId", h.DeleteComment)
		auth.POST("/comments/:commentId/vote", h.VoteComment)

		// Cart & orders
		auth.POST("/cart", h.CreateCart)
		auth.POST("/cart/items", h.AddToCart)
		auth.GET("/orders", h.GetMyOrders)
		auth.GET("/orders/:id", h.GetOrder)
		auth.POST("/orders/:id/checkout", h.Checkout)

		// Restaurant management
		auth.PUT("/restaurants/:id", h.UpdateRestaurant)
		auth.DELETE("/restaurants/:id", h.DeleteRestaurant)
		auth.POST("/restaurants/:id/image", h.UploadRestaurantImage)
		auth.POST("/restaurants/:id/menu/:foodId/image", h.UploadFoodImage)
		auth.POST("/restaurants/:id/menu", h.AddFood)
		auth.PUT("/restaurants/:id/menu/:foodId", h.UpdateFood)
		auth.DELETE("/restaurants/:id/menu/:foodId", h.DeleteFood)
		auth.POST("/restaurants/:id/hours", h.PostHours)
		auth.PUT("/restaurants/:id/hours", h.PutHours)
		auth.DELETE("/restaurants/:id/hours/:day", h.DeleteHours)
		auth.PUT("/restaurants/:id/owner", h.UpdateOwnerNationalID)
		auth.PUT("/restaurants/:id/owner/replace", h.ReplaceOwner)

		// Order management
		auth.GET("/restaurants/:id/orders", h.GetRestaurantOrders)
		auth.PUT("/orders/:id/status", h.UpdateOrderStatus)
	}

	// ── Owner routes ───────────────────────────────────────────────
	owner := r.Group("/api")
	owner.Use(h.Auth.AuthRequired(), middleware.Require(h.Access, access.ActionCreateRestaurant))
	{
		owner.POST("/restaurants", h.CreateRestaurant)
		owner.GET("/owners/me", h.GetMyOwnerships)
	}
	register := r.Group("/api")
	register.Use(h.Auth.AuthRequired(), middleware.Require(h.Access, access.ActionRegisterOwner))
	{
		register.POST("/owners", h.CreateOwner)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(h.Auth.AuthRequired(), middleware.Require(h.Access, access.ActionAdminister))
	{
		admin.GET("/orders", h.AdminGetAllOrders)
		admin.GET("/accounts", h.AdminGetAllAccounts)
		admin.PUT("/accounts/:id/role", h.AdminSetRole)
	}
}
