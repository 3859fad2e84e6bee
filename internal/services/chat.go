package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/knowledgegraph-backend/internal/kgerrors"
	"github.com/yungbote/knowledgegraph-backend/internal/logger"
	"github.com/yungbote/knowledgegraph-backend/internal/platform/deepseek"
	"github.com/yungbote/knowledgegraph-backend/internal/repos"
)

const docSearchSystemPrompt = `You are a document retrieval assistant. Answer the user's question using only verbatim passages from the document provided, lightly reformatted as Markdown without changing the meaningful text.
If the document contains nothing relevant, reply with exactly NOT_FOUND and nothing else.`

const webAnswerSystemPrompt = `You are a knowledgeable assistant. Answer the question concisely from general knowledge, formatted as Markdown. Return only the answer with no preamble.`

const resourceSystemPrompt = `You are a learning resource curator. Given a question, recommend up to 5 high-quality, accessible learning resources.
Return only a JSON array where each element has the form {"title": ..., "url": ..., "snippet": ...}, with no other content.`

// notFoundMarker is what the doc-search prompt instructs the model to return
// when the document cannot answer the question.
const notFoundMarker = "NOT_FOUND"

// Answer sources.
const (
	SourceDocument = "document"
	SourceWeb      = "web"
)

const (
	docAnswerMaxTokens = 512
	webAnswerMaxTokens = 1024
	resourceMaxTokens  = 800
)

// Resource is one recommended learning resource.
type Resource struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// ChatResult is a grounded answer plus recommended resources. Source reports
// whether the answer came from the uploaded document or general knowledge.
type ChatResult struct {
	Answer    string     `json:"answer"`
	Source    string     `json:"source"`
	Resources []Resource `json:"resources"`
}

// ChatService answers free-form questions, preferring passages from the
// topology's document and falling back to general knowledge when the
// document has nothing relevant.
type ChatService interface {
	Ask(ctx context.Context, topologyID uuid.UUID, question string) (*ChatResult, error)
}

type chatService struct {
	log      *logger.Logger
	llm      deepseek.Client
	topoRepo repos.TopologyRepo
}

func NewChatService(baseLog *logger.Logger, llm deepseek.Client, topoRepo repos.TopologyRepo) ChatService {
	return &chatService{
		log:      baseLog.With("service", "ChatService"),
		llm:      llm,
		topoRepo: topoRepo,
	}
}

func (s *chatService) Ask(ctx context.Context, topologyID uuid.UUID, question string) (*ChatResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", kgerrors.ErrInvalidArgument)
	}
	topo, err := s.topoRepo.GetByID(ctx, nil, topologyID)
	if err != nil {
		return nil, err
	}

	answer, source := s.answer(ctx, topo.Content, question)
	result := &ChatResult{
		Answer:    answer,
		Source:    source,
		Resources: s.recommendResources(ctx, question),
	}
	s.log.Info("Chat answered", "topology_id", topologyID, "source", source, "resources", len(result.Resources))
	return result, nil
}

// answer tries the document first; an empty, errored, or NOT_FOUND response
// falls through to the general-knowledge path.
func (s *chatService) answer(ctx context.Context, document, question string) (string, string) {
	user := "Document:\n" + document + "\n\nQuestion: " + question + "\nAnswer using the document text:"
	docAnswer, err := s.llm.GenerateText(ctx, docSearchSystemPrompt, user, docAnswerMaxTokens)
	if err != nil {
		s.log.Warn("Document search call failed, falling back to general answer", "error", err)
		docAnswer = ""
	}
	docAnswer = strings.TrimSpace(docAnswer)
	if docAnswer != "" && !strings.Contains(docAnswer, notFoundMarker) {
		return docAnswer, SourceDocument
	}

	webAnswer, err := s.llm.GenerateText(ctx, webAnswerSystemPrompt, question, webAnswerMaxTokens)
	if err != nil {
		s.log.Warn("General answer call failed", "error", err)
		return "Sorry, the answering service is currently unavailable.", SourceWeb
	}
	return strings.TrimSpace(webAnswer), SourceWeb
}

// recommendResources is best-effort: any call or parse failure yields an
// empty list rather than failing the chat.
func (s *chatService) recommendResources(ctx context.Context, question string) []Resource {
	user := "Question: " + question + "\nRecommend up to 5 relevant learning resources."
	raw, err := s.llm.GenerateText(ctx, resourceSystemPrompt, user, resourceMaxTokens)
	if err != nil {
		s.log.Warn("Resource recommendation call failed", "error", err)
		return []Resource{}
	}
	var resources []Resource
	if err := json.Unmarshal([]byte(stripFences(raw)), &resources); err != nil {
		s.log.Warn("Resource recommendation returned unparseable list", "error", err, "raw", raw)
		return []Resource{}
	}
	return resources
}
