package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/knowledgegraph-backend/internal/logger"
	"github.com/yungbote/knowledgegraph-backend/internal/platform/deepseek"
	"github.com/yungbote/knowledgegraph-backend/internal/platform/neo4jdb"
	"github.com/yungbote/knowledgegraph-backend/internal/services"
	"github.com/yungbote/knowledgegraph-backend/internal/status"
	"github.com/yungbote/knowledgegraph-backend/internal/utils"
)

type Services struct {
	Extraction services.ExtractionService
	Generation services.GenerationService
	GraphQuery services.GraphQueryService
	Quiz       services.QuizService
	Chat       services.ChatService
	Mirror     services.GraphMirror
	Statuses   status.Store
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, neo *neo4jdb.Client) (Services, error) {
	llm, err := deepseek.NewClient(log)
	if err != nil {
		return Services{}, err
	}

	statuses, err := wireStatusStore(log)
	if err != nil {
		return Services{}, err
	}

	extraction := services.NewExtractionService(log, llm, cfg.ExtractionMaxTokens)
	mirror := services.NewGraphMirror(log, neo)
	generation := services.NewGenerationService(
		db, log,
		services.GenerationConfig{
			MinDocumentLength:         cfg.MinDocumentLength,
			SeedMasteryFromExtraction: cfg.SeedMasteryFromExtraction,
		},
		extraction,
		reposet.Topology, reposet.Node, reposet.Edge, reposet.GenerationRun,
		statuses, mirror,
	)
	query := services.NewGraphQueryService(log, reposet.Topology, reposet.Node, reposet.Edge, reposet.GenerationRun)
	quiz := services.NewQuizService(log, llm, reposet.Node, reposet.QuizSession, reposet.Question, cfg.MasteryThreshold, cfg.QuizMaxTokens)
	chat := services.NewChatService(log, llm, reposet.Topology)

	return Services{
		Extraction: extraction,
		Generation: generation,
		GraphQuery: query,
		Quiz:       quiz,
		Chat:       chat,
		Mirror:     mirror,
		Statuses:   statuses,
	}, nil
}

// wireStatusStore picks Redis when STATUS_STORE=redis, otherwise the
// in-process map. Redis lets multiple replicas serve the same polling
// traffic.
func wireStatusStore(log *logger.Logger) (status.Store, error) {
	backend := utils.GetEnv("STATUS_STORE", "memory", log)
	if backend == "redis" {
		return status.NewRedisStore(log)
	}
	return status.NewMemoryStore(), nil
}
