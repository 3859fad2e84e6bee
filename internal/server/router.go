package server

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/knowledgegraph-backend/internal/handlers"
	"github.com/yungbote/knowledgegraph-backend/internal/logger"
)

type RouterConfig struct {
	ServiceName        string
	HealthcheckHandler *handlers.HealthcheckHandler
	TopologyHandler    *handlers.TopologyHandler
	QuizHandler        *handlers.QuizHandler
	ChatHandler        *handlers.ChatHandler
}

// corsFile is the optional YAML file pointed at by CORS_CONFIG_FILE.
type corsFile struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

func NewRouter(log *logger.Logger, cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(cfg.ServiceName))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins(log),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", cfg.HealthcheckHandler.Healthcheck)

	api := router.Group("/api")
	{
		api.POST("/generate", cfg.TopologyHandler.Generate)
		api.POST("/chat", cfg.ChatHandler.Ask)
		api.GET("/topologies", cfg.TopologyHandler.List)
		api.GET("/topology/status/:id", cfg.TopologyHandler.Status)

		topology := api.Group("/topology/:id")
		{
			topology.GET("", cfg.TopologyHandler.Get)
			topology.POST("/regenerate", cfg.TopologyHandler.Regenerate)
			topology.POST("/set_max_nodes", cfg.TopologyHandler.SetMaxNodes)
			topology.POST("/ignore", cfg.TopologyHandler.Ignore)
			topology.POST("/node/:nodeID/master", cfg.TopologyHandler.SetMastered)
			topology.GET("/node/:nodeID/question", cfg.QuizHandler.Question)
			topology.POST("/question/:questionID/answer", cfg.QuizHandler.Answer)
		}
	}

	return router
}

// corsOrigins loads allowed origins from the YAML file named by
// CORS_CONFIG_FILE, falling back to local development defaults.
func corsOrigins(log *logger.Logger) []string {
	defaults := []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}
	path := strings.TrimSpace(os.Getenv("CORS_CONFIG_FILE"))
	if path == "" {
		return defaults
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Failed to read CORS config file, using defaults", "path", path, "error", err)
		return defaults
	}
	var parsed corsFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		log.Warn("Failed to parse CORS config file, using defaults", "path", path, "error", err)
		return defaults
	}
	if len(parsed.AllowOrigins) == 0 {
		return defaults
	}
	return parsed.AllowOrigins
}
