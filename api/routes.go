package api

import (
	"net/http"

	"deskcontrol/driver"
	"deskcontrol/models"
	"deskcontrol/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires all HTTP and WebSocket endpoints onto the router.
func SetupRoutes(router *gin.Engine, queue *service.ActionQueue, sessions *service.SessionManager,
	macros *service.MacroStore, hub *service.MonitorHub, capture driver.ScreenCapture) {

	router.Use(CORSMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		v1.GET("/system/info", func(c *gin.Context) {
			SystemInfo(c, capture)
		})

		v1.POST("/session", func(c *gin.Context) {
			CreateSession(c, sessions)
		})

		protected := v1.Group("", SessionRequired(sessions))
		{
			protected.DELETE("/session", func(c *gin.Context) {
				EndSession(c, sessions)
			})
			protected.POST("/action", func(c *gin.Context) {
				ExecuteAction(c, queue)
			})
			protected.GET("/monitor", func(c *gin.Context) {
				HandleMonitor(c, hub)
			})

			ms := protected.Group("/macros")
			{
				ms.GET("", func(c *gin.Context) {
					ListMacros(c, macros)
				})
				ms.POST("", func(c *gin.Context) {
					CreateMacro(c, macros)
				})
				ms.DELETE("/:id", func(c *gin.Context) {
					DeleteMacro(c, macros)
				})
				ms.POST("/:id/run", func(c *gin.Context) {
					RunMacro(c, macros, queue)
				})
			}
		}
	}
}

// SessionRequired validates (and touches) the X-Session-ID header.
// WebSocket clients that cannot set headers may pass ?session_id instead.
func SessionRequired(sessions *service.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Session-ID")
		if id == "" {
			id = c.Query("session_id")
		}
		if id == "" || !sessions.ValidateAndTouch(id) {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				models.ErrorResponse("Invalid or missing session ID"))
			return
		}
		c.Next()
	}
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-Session-ID, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
