package routes

import (
	"net/http"
	"time"

	"carhub/handlers"
	"carhub/middleware"
	"carhub/session"
	"carhub/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle gathers the per-view handlers the shell composes.
type HandlerBundle struct {
	Sessions     *session.Manager
	Auth         *handlers.AuthHandler
	Stations     *handlers.StationHandler
	Appointments *handlers.AppointmentHandler
	Jobs         *handlers.JobHandler
	Chat         *handlers.ChatHandler
	Dashboard    *handlers.DashboardHandler
}

// RegisterAuthRoutes registers signin/signup/logout endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/signin", hb.Auth.Signin)
		api.POST("/signup", hb.Auth.Signup)
		api.POST("/logout", hb.Auth.Logout)
		api.GET("/me", hb.Auth.Me)
	}
}

// RegisterStationRoutes registers the service-stations views.
func RegisterStationRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/service-stations")
	{
		api.Use(middleware.RequireAuth())
		api.GET("", hb.Stations.List)
		api.POST("", hb.Stations.Create)
		api.GET("/nearby", hb.Stations.Nearby)
		api.GET("/:id", hb.Stations.Detail)
		api.PUT("/:id", hb.Stations.Update)
		api.DELETE("/:id", hb.Stations.Delete)
	}
}

// RegisterAppointmentRoutes registers the appointments list and the booking
// dialog workflow.
func RegisterAppointmentRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.Use(middleware.RequireAuth())
		api.GET("", hb.Appointments.List)
		api.DELETE("/:id", hb.Appointments.Cancel)
		api.POST("/form", hb.Appointments.StartForm)
		api.POST("/:id/edit", hb.Appointments.StartEdit)
		api.GET("/form/:formID", hb.Appointments.GetForm)
		api.PATCH("/form/:formID", hb.Appointments.UpdateForm)
		api.POST("/form/:formID/slot", hb.Appointments.SelectSlot)
		api.POST("/form/:formID/submit", hb.Appointments.SubmitForm)
	}
}

// RegisterJobRoutes registers the job-card workflow.
func RegisterJobRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/jobs")
	{
		api.Use(middleware.RequireAuth())
		api.POST("/appointments/:id/job-card", hb.Jobs.Create)
		api.GET("/job-cards", hb.Jobs.List)
		api.GET("/job-cards/:id/assign-data", hb.Jobs.AssignData)
		api.POST("/assign-technician", hb.Jobs.AssignTechnician)
	}
}

// RegisterChatRoutes registers the chatbot widget proxy. The widget is part
// of the shell and works for anonymous visitors too.
func RegisterChatRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/chat")
	{
		api.POST("/session", hb.Chat.Start)
		api.GET("/session/:sessionID", hb.Chat.Get)
		api.POST("/session/:sessionID/messages", hb.Chat.Send)
	}
}

// RegisterDashboardRoute registers the aggregated page-load fetch.
func RegisterDashboardRoute(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/dashboard")
	{
		api.Use(middleware.RequireAuth())
		api.GET("", hb.Dashboard.Overview)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "health": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", middleware.SessionHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.SessionMiddleware(hb.Sessions))

	RegisterAuthRoutes(r, hb)
	RegisterStationRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
	RegisterJobRoutes(r, hb)
	RegisterChatRoutes(r, hb)
	RegisterDashboardRoute(r, hb)
	RegisterHealthRoute(r)

	// Unmatched paths land on the entry route, mirroring the wildcard
	// redirect of the browser client.
	r.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusTemporaryRedirect, "/")
	})
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "carhub gateway"})
	})
}
