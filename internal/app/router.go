// internal/app/router.go
package app

import (
	"mobility-service/internal/config"
	partnerHandler "mobility-service/internal/handlers/partner"
	sessionHandler "mobility-service/internal/handlers/session"
	signupHandler "mobility-service/internal/handlers/signup"
	uploadHandler "mobility-service/internal/handlers/upload"
	vehicleHandler "mobility-service/internal/handlers/vehicle"
	viesHandler "mobility-service/internal/handlers/vies"
	wsHandler "mobility-service/internal/handlers/websocket"
	"mobility-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Sessions    *sessionHandler.SessionHandler
	Vehicles    *vehicleHandler.VehicleHandler
	Signups     *signupHandler.SignupHandler
	Partners    *partnerHandler.PartnerHandler
	Uploads     *uploadHandler.UploadHandler
	VIES        *viesHandler.VIESHandler
	WS          *wsHandler.WebSocketHandler
	PartnerAuth *middleware.PartnerAuthMiddleware
}

func SetupRouter(r *gin.Engine, cfg config.AppConfig, h *Handlers) {
	// ==================== Health Check ====================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Stored uploads are served straight from disk.
	r.Static("/uploads", cfg.UploadDir)

	// ==================== SPA API (basic auth) ====================
	api := r.Group("/api")
	api.Use(middleware.BasicAuth(cfg.BasicAuthUser, cfg.BasicAuthPass))
	{
		// ----- Signup -----
		api.POST("/signup", h.Signups.Create)
		api.GET("/signup", h.Signups.GetByEmail)
		api.GET("/signup/:id", h.Signups.Get)

		// ----- User sessions -----
		sessions := api.Group("/user-sessions")
		{
			sessions.POST("", h.Sessions.Create)
			sessions.GET("", h.Sessions.GetByEmail)
			sessions.GET("/statistics", h.Sessions.Statistics)
			sessions.GET("/:id", h.Sessions.Get)
			sessions.PUT("/:id", h.Sessions.Update)
			sessions.DELETE("/:id", h.Sessions.Delete)
			sessions.PUT("/:id/step", h.Sessions.UpdateStep)
			sessions.POST("/:id/submit", h.Sessions.Submit)

			sessions.POST("/:id/car-categories", h.Sessions.AddCategory)
			sessions.PUT("/:id/car-categories/:categoryId", h.Sessions.UpdateCategory)
			sessions.DELETE("/:id/car-categories/:categoryId", h.Sessions.DeleteCategory)

			sessions.POST("/:id/save-document", h.Sessions.SaveDocument)
			sessions.GET("/:id/document-content", h.Sessions.GetDocumentContent)
			sessions.PUT("/:id/document-content", h.Sessions.UpdateDocumentContent)
			sessions.GET("/:id/document-languages", h.Sessions.DocumentLanguages)
		}

		// ----- Vehicle catalog -----
		cars := api.Group("/cars")
		{
			cars.GET("", h.Vehicles.List)
			cars.GET("/tco-range", h.Vehicles.TcoRange)
			cars.GET("/distribution", h.Vehicles.Distribution)
			cars.GET("/facets", h.Vehicles.Facets)
			cars.GET("/stats", h.Vehicles.Stats)
			cars.POST("/calculate-tco", h.Vehicles.CalculateTco)
			cars.GET("/:id", h.Vehicles.Get)
		}

		// ----- File uploads -----
		files := api.Group("/files")
		{
			files.POST("/upload", h.Uploads.Upload)
			files.GET("/session/:sessionId", h.Uploads.ListBySession)
			files.DELETE("/:id", h.Uploads.Delete)
			files.POST("/:id/analyze", h.Uploads.Analyze)
		}

		// ----- VAT validation -----
		api.GET("/vies/check/:countryCode/:vatNumber", h.VIES.Check)
	}

	// ==================== Partner API (JWT) ====================
	partners := r.Group("/api/social-secretaries")
	{
		partners.POST("", h.Partners.Create)
		partners.POST("/login", h.Partners.Login)

		authed := partners.Group("")
		authed.Use(h.PartnerAuth.Auth())
		{
			authed.POST("/logout", h.Partners.Logout)
			authed.GET("/me", h.Partners.Profile)
			authed.GET("/companies", h.Partners.Companies)
			authed.GET("/statistics", h.Partners.Statistics)
			authed.POST("/sessions/:id/review", h.Partners.ReviewSession)
		}
	}

	// ==================== WebSocket ====================
	ws := r.Group("/ws")
	ws.Use(h.PartnerAuth.Auth())
	{
		ws.GET("/partner", h.WS.HandleConnection)
	}
}
