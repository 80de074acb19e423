package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"users-api/api"
	"users-api/internal/adapter/gin/handler"
	"users-api/internal/adapter/gin/middleware"
)

// SwaggerDocPath is where the embedded OpenAPI document is served
const SwaggerDocPath = "/openapi/users.swagger.json"

// Options toggles optional parts of the HTTP surface
type Options struct {
	ServiceName string
	EnableReset bool // register POST /api/reset
}

// SetupRouter configures and returns a Gin router with all routes and middleware.
// rateLimiter may be nil.
func SetupRouter(
	userHandler *handler.UserHandler,
	rateLimiter *middleware.RateLimiter,
	log *zap.Logger,
	opts Options,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": opts.ServiceName,
		})
	})

	router.GET(SwaggerDocPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", api.SwaggerJSON)
	})
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(SwaggerDocPath))))

	apiGroup := router.Group("/api")
	apiGroup.Use(rateLimiter.Handler())
	{
		users := apiGroup.Group("/users")
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.GET("/:id", userHandler.GetUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}

		if opts.EnableReset {
			apiGroup.POST("/reset", userHandler.ResetUsers)
		}
	}

	return router
}
