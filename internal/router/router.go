package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/giftnest-dev/giftnest/internal/handlers"
	"github.com/giftnest-dev/giftnest/internal/middleware"
	"github.com/giftnest-dev/giftnest/internal/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps carries the constructed handlers into route registration.
type Deps struct {
	Auth        *handlers.AuthHandler
	Family      *handlers.FamilyHandler
	Wishlist    *handlers.WishlistHandler
	Reservation *handlers.ReservationHandler
	WS          *handlers.WSHandler
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		// The public page is the only unauthenticated read.
		api.GET("/public/:slug", deps.Wishlist.Public)

		auth := api.Group("/auth")
		{
			auth.POST("/register", deps.Auth.Register)
			auth.POST("/login", deps.Auth.Login)
			auth.POST("/logout", deps.Auth.Logout)
			auth.GET("/me", middleware.AuthMiddleware(), deps.Auth.Me)
		}

		family := api.Group("/family", middleware.AuthMiddleware())
		{
			family.GET("/me", deps.Family.Me)
			family.POST("", deps.Family.Create)
			family.POST("/join", deps.Family.Join)

			inFamily := family.Group("", middleware.FamilyMiddleware())
			{
				inFamily.POST("/rotate", deps.Family.RotateInviteCode)
				inFamily.GET("/members", deps.Family.Members)
			}
		}

		scoped := api.Group("", middleware.AuthMiddleware(), middleware.FamilyMiddleware())
		{
			scoped.GET("/wishlist/me", deps.Wishlist.Own)
			scoped.POST("/wishlist/me/items", deps.Wishlist.AddItem)
			scoped.PATCH("/wishlist/me/items/:id", deps.Wishlist.UpdateItem)
			scoped.DELETE("/wishlist/me/items/:id", deps.Wishlist.DeleteItem)
			scoped.POST("/wishlist/me/publish", deps.Wishlist.Publish)
			scoped.DELETE("/wishlist/me/publish", deps.Wishlist.Unpublish)

			scoped.GET("/wishlists", deps.Wishlist.ListOthers)
			scoped.GET("/wishlists/:user_id", deps.Wishlist.ViewMember)

			scoped.POST("/items/:id/reserve", deps.Reservation.Reserve)
			scoped.POST("/items/:id/unreserve", deps.Reservation.Unreserve)
			scoped.POST("/items/:id/purchase", deps.Reservation.Purchase)

			scoped.GET("/ws", deps.WS.Feed)
		}
	}

	return r
}
