package api

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jsfong/model-parser/internal/middleware"
	"github.com/jsfong/model-parser/internal/models"
	"github.com/jsfong/model-parser/internal/ws"
)

// wsHandler upgrades GET /api/v1/ws/models/:id and subscribes the connection
// to change events of that model.
func wsHandler(appCtx context.Context, log *logrus.Logger, hub *ws.Hub, corsOrigins []string, keys middleware.KeyLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		modelID := c.Param("id")
		if err := models.ValidateModelID(modelID); err != nil {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

			return
		}

		// CORS origins double as WebSocket origin patterns; config rejects wildcards.
		conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
			OriginPatterns:       corsOrigins,
			CompressionMode:      websocket.CompressionContextTakeover,
			CompressionThreshold: 128,
		})
		if err != nil {
			log.WithError(err).Warn("websocket accept failed")

			return
		}

		var validator ws.KeyValidator
		if keys != nil {
			validator = keys
		}

		client := ws.NewClient(hub, conn, modelID, validator, middleware.ExtractBearerToken(c))
		hub.Register(client)

		// Cancel when either the server shuts down or the request ends.
		wsCtx, wsCancel := context.WithCancel(appCtx)
		stop := context.AfterFunc(c.Request.Context(), wsCancel)

		defer func() {
			stop()
			wsCancel()
		}()

		go client.WritePump(wsCtx)
		client.ReadPump(wsCtx)
	}
}

func ginLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}

		if rid, exists := c.Get(middleware.RequestIDKey); exists {
			fields["request_id"] = rid
		}

		if cid := c.GetString(middleware.ClientIDKey); cid != "" {
			fields["client_id"] = cid
		}

		log.WithFields(fields).Info("request")
	}
}
