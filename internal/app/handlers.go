package app

import (
	"github.com/yungbote/knowledgegraph-backend/internal/handlers"
	"github.com/yungbote/knowledgegraph-backend/internal/logger"
)

type Handlers struct {
	Healthcheck *handlers.HealthcheckHandler
	Topology    *handlers.TopologyHandler
	Quiz        *handlers.QuizHandler
	Chat        *handlers.ChatHandler
}

func wireHandlers(log *logger.Logger, cfg Config, serviceset Services) Handlers {
	return Handlers{
		Healthcheck: handlers.NewHealthcheckHandler(),
		Topology:    handlers.NewTopologyHandler(log, serviceset.Generation, serviceset.GraphQuery, serviceset.Statuses, cfg.BuildTimeout),
		Quiz:        handlers.NewQuizHandler(log, serviceset.Quiz),
		Chat:        handlers.NewChatHandler(log, serviceset.Chat),
	}
}
