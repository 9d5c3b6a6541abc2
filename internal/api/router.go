package api

import (
	"net/http"

	"github.com/ChaseRain/logomotion/internal/infra/logger"
	"github.com/ChaseRain/logomotion/internal/service/orchestrator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerRequestID = "X-Request-ID"
	ctxKeyRequestID = "request_id"
)

func NewRouter(orch *orchestrator.Orchestrator, gate SessionGate, keys KeyStager, downloader Downloader, log *logger.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(requestLogger(log))

	handler := NewHandler(orch, gate, keys, downloader, log)

	r.GET("/health", handler.Health)

	v1 := r.Group("/v1")
	{
		v1.GET("/session", handler.Session)
		v1.POST("/session/connect", handler.Connect)

		workspace := v1.Group("", requireCredential(gate))
		workspace.GET("/workspace", handler.Workspace)
		workspace.POST("/logo", handler.GenerateLogo)
		workspace.GET("/logo/download", handler.DownloadLogo)
		workspace.POST("/animation", handler.AnimateLogo)
		workspace.GET("/animation/download", handler.DownloadAnimation)
	}

	return r
}

// requireCredential keeps the workspace closed until the gate unlocks.
func requireCredential(gate SessionGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if gate.Unlocked() || gate.Verify(c.Request.Context()) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
			RequestID: requestID(c),
			Status:    StatusFailed,
			Error: &ErrorBody{
				Code:    ErrCodeCredentialRequired,
				Message: "connect an API key to continue",
			},
		})
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(ctxKeyRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(ctxKeyRequestID)
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		log.Info("request started",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", requestID(c),
		)
		c.Next()
		log.Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"request_id", requestID(c),
		)
	}
}
