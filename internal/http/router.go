package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxBodySize = 100 * 1024 // 100KB

// SetupRouter configures the Gin engine and routes.
// Gin's debug output and request logs go to stderr; stdout carries the stdio transport.
func SetupRouter(handler *Handler) *gin.Engine {
	gin.DefaultWriter = gin.DefaultErrorWriter

	r := gin.New()

	r.Use(gin.LoggerWithWriter(gin.DefaultErrorWriter))
	r.Use(gin.RecoveryWithWriter(gin.DefaultErrorWriter))
	r.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
		c.Next()
	})

	r.POST("/mcp/call", handler.CallTool)
	r.GET("/mcp/tools", handler.GetTools)
	r.GET("/health", handler.Health)

	return r
}
