package api

import (
	"log"
	stdhttp "net/http"

	intconfig "nganya/internal/config"
	"nganya/internal/domain"
	h "nganya/internal/http/handlers"
	"nganya/internal/http/middleware"
	"nganya/internal/services"

	"github.com/gin-gonic/gin"
)

// Deps bundles what the router needs to serve every route.
type Deps struct {
	Env      intconfig.Env
	Tokens   services.TokenIssuer
	Handlers h.Handlers
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(deps.Env))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"success": false,
			"message": "route not found",
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	})

	hd := deps.Handlers
	if hd.Realtime != nil {
		r.GET("/ws", gin.WrapF(hd.Realtime.ServeWS))
	}

	api := r.Group("/api")
	api.Use(middleware.AuthOptional(deps.Tokens))
	{
		api.GET("/health", hd.Health)
		api.GET("/db-check", hd.DBCheck)
		api.GET("/me", middleware.RequireRoles(domain.RolePassenger, domain.RoleDriver), hd.Me)

		passengers := api.Group("/passengers")
		passengers.POST("/register", hd.RegisterPassenger)
		passengers.POST("/login", hd.LoginPassenger)
		passengers.POST("/bookings/request", hd.RequestBooking)

		drivers := api.Group("/drivers")
		drivers.POST("/register", hd.RegisterDriver)
		drivers.POST("/login", hd.LoginDriver)
		drivers.POST("/application", hd.SubmitApplication)
		drivers.POST("/toggleOnline", hd.ToggleOnline)
		drivers.POST("/bookings/accept", hd.AcceptBooking)

		// Admin
		drivers.GET("/all", hd.ListDrivers)
		drivers.POST("/approve", hd.ApproveDriver)
		drivers.POST("/reject", hd.RejectDriver)

		bookings := api.Group("/bookings")
		bookings.GET("/:id", hd.GetBooking)
		bookings.GET("/:id/ticket", hd.GetTripSlip)
	}

	return r
}
