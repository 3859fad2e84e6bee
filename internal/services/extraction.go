package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/yungbote/knowledgegraph-backend/internal/graph/jsonrepair"
	"github.com/yungbote/knowledgegraph-backend/internal/graph/relation"
	"github.com/yungbote/knowledgegraph-backend/internal/logger"
	"github.com/yungbote/knowledgegraph-backend/internal/platform/deepseek"
)

const extractionSystemPrompt = `You are a knowledge graph construction expert that extracts concepts and their hierarchical relations from text.
Analyze the text, identify the main knowledge points and their parent-child relations, and output a JSON array where each element has the form [parent concept, relation, child concept].
Relations should reflect hierarchy, such as "contains", "belongs to", or "is a kind of". Return only the JSON array with no other content.`

// ExtractionService turns source text into canonical relations via the LLM,
// the JSON repair ladder, and the normalizer.
type ExtractionService interface {
	ExtractRelations(ctx context.Context, text string, maxNodes int) ([]relation.Relation, error)
}

type extractionService struct {
	log       *logger.Logger
	llm       deepseek.Client
	maxTokens int
}

func NewExtractionService(log *logger.Logger, llm deepseek.Client, maxTokens int) ExtractionService {
	if maxTokens <= 0 {
		maxTokens = 1500
	}
	return &extractionService{
		log:       log.With("service", "ExtractionService"),
		llm:       llm,
		maxTokens: maxTokens,
	}
}

func (s *extractionService) ExtractRelations(ctx context.Context, text string, maxNodes int) ([]relation.Relation, error) {
	system := extractionSystemPrompt
	if maxNodes > 0 {
		system += fmt.Sprintf("\nKeep the total number of extracted concepts at or below %d.", maxNodes)
	}
	user := "Extract the knowledge points and their hierarchical relations from the text below as a JSON array of [parent, relation, child] elements:\n" + sanitizeText(text)

	// Transport failures are retried inside the client; a response that
	// cannot be repaired is terminal here since re-parsing the same text
	// would fail identically.
	raw, err := s.llm.GenerateText(ctx, system, user, s.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("knowledge extraction call: %w", err)
	}

	parsed, err := jsonrepair.Repair(raw, s.log)
	if err != nil {
		return nil, err
	}

	rels, err := relation.Normalize(parsed, s.log)
	if err != nil {
		return nil, err
	}
	s.log.Info("Extracted knowledge relations", "count", len(rels))
	return rels, nil
}

var controlCharRe = regexp.MustCompile(`[\x00-\x1F\x7F-\x9F]`)

// sanitizeText strips control characters and escapes quote/backslash so the
// document cannot break out of the prompt's JSON examples.
func sanitizeText(text string) string {
	text = controlCharRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, `"`, `\"`)
	return text
}
