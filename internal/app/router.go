package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/knowledgegraph-backend/internal/logger"
	"github.com/yungbote/knowledgegraph-backend/internal/server"
)

func wireRouter(log *logger.Logger, cfg Config, handlerset Handlers) *gin.Engine {
	return server.NewRouter(log, server.RouterConfig{
		ServiceName:        cfg.ServiceName,
		HealthcheckHandler: handlerset.Healthcheck,
		TopologyHandler:    handlerset.Topology,
		QuizHandler:        handlerset.Quiz,
		ChatHandler:        handlerset.Chat,
	})
}
