package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/knowledgegraph-backend/internal/logger"
	"github.com/yungbote/knowledgegraph-backend/internal/repos"
)

type Repos struct {
	Topology      repos.TopologyRepo
	Node          repos.NodeRepo
	Edge          repos.EdgeRepo
	GenerationRun repos.GenerationRunRepo
	QuizSession   repos.QuizSessionRepo
	Question      repos.QuestionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Topology:      repos.NewTopologyRepo(db, log),
		Node:          repos.NewNodeRepo(db, log),
		Edge:          repos.NewEdgeRepo(db, log),
		GenerationRun: repos.NewGenerationRunRepo(db, log),
		QuizSession:   repos.NewQuizSessionRepo(db, log),
		Question:      repos.NewQuestionRepo(db, log),
	}
}
