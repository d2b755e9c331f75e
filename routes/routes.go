package routes

import (
	"time"

	"creditcoach/handlers"
	"creditcoach/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterCartRoutes registers cart endpoints.
func RegisterCartRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/cart")
	{
		api.GET("", hb.GetCartHandler)
		api.DELETE("", hb.ClearCartHandler)
		api.POST("/items", hb.AddCartItemHandler)
		api.PATCH("/items/:id", hb.UpdateCartItemHandler)
		api.DELETE("/items/:id", hb.RemoveCartItemHandler)
	}
}

// RegisterCatalogRoutes registers the product catalog endpoints.
func RegisterCatalogRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/products")
	{
		api.GET("", hb.ListProductsHandler)
		api.GET("/:id", hb.GetProductHandler)
	}
}

// RegisterCheckoutRoutes registers the payment endpoints.
func RegisterCheckoutRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/checkout")
	{
		api.POST("", middleware.BearerAuth(hb.Verifier, true), hb.StartCheckoutHandler)
		api.GET("/complete", hb.CompleteCheckoutHandler)
	}
}

// RegisterAccountRoutes registers the signed-in dashboard endpoints.
func RegisterAccountRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/account")
	{
		// Protected routes (Require Authentication)
		api.Use(middleware.BearerAuth(hb.Verifier, false))
		api.GET("/bookings", hb.MyBookingsHandler)
	}
}

// RegisterHealthRoute registers the health-check and metrics endpoints.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, allowedOrigins []string, sessionCookie string, secureCookies bool) {
	// Cookies carry the session, so origins must be listed explicitly.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)

	// Everything below is per browser session.
	r.Use(middleware.SessionMiddleware(sessionCookie, secureCookies))
	RegisterCartRoutes(r, hb)
	RegisterCatalogRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterCheckoutRoutes(r, hb)
	RegisterAccountRoutes(r, hb)
}
