package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bulgareesoft/bulgaree/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares. The server
// binds to localhost for the desktop shell; it is not a public API.
func New(auth *handlers.AuthHandler, records *handlers.RecordsHandler, upd *handlers.UpdatesHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")
	{
		api.POST("/auth/login", auth.Login)
		api.POST("/auth/register", auth.Register)
		api.GET("/auth/session", auth.Status)

		api.GET("/:kind/records", records.List)
		api.PUT("/:kind/records", records.Replace)
		api.POST("/:kind/records", records.Add)
		api.DELETE("/:kind/records/:row", records.Remove)
		api.POST("/voice/:kind", records.Dictate)

		api.GET("/update", upd.Status)
		api.POST("/update/download", upd.Download)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
