package app

import (
	"time"

	"github.com/yungbote/knowledgegraph-backend/internal/logger"
	"github.com/yungbote/knowledgegraph-backend/internal/utils"
)

type Config struct {
	Addr                      string
	ServiceName               string
	Environment               string
	Version                   string
	MinDocumentLength         int
	SeedMasteryFromExtraction bool
	MasteryThreshold          int
	ExtractionMaxTokens       int
	QuizMaxTokens             int
	BuildTimeout              time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	buildTimeoutSeconds := utils.GetEnvAsInt("BUILD_TIMEOUT_SECONDS", 600, log)
	return Config{
		Addr:                      utils.GetEnv("ADDR", ":8080", log),
		ServiceName:               utils.GetEnv("SERVICE_NAME", "knowledgegraph-backend", log),
		Environment:               utils.GetEnv("ENVIRONMENT", "development", log),
		Version:                   utils.GetEnv("SERVICE_VERSION", "dev", log),
		MinDocumentLength:         utils.GetEnvAsInt("MIN_DOCUMENT_LENGTH", 100, log),
		SeedMasteryFromExtraction: utils.GetEnvAsBool("SEED_MASTERY_FROM_EXTRACTION", false, log),
		MasteryThreshold:          utils.GetEnvAsInt("MASTERY_THRESHOLD", 1, log),
		ExtractionMaxTokens:       utils.GetEnvAsInt("EXTRACTION_MAX_TOKENS", 1500, log),
		QuizMaxTokens:             utils.GetEnvAsInt("QUIZ_MAX_TOKENS", 500, log),
		BuildTimeout:              time.Duration(buildTimeoutSeconds) * time.Second,
	}
}
