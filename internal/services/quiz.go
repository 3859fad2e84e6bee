package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/knowledgegraph-backend/internal/apierr"
	"github.com/yungbote/knowledgegraph-backend/internal/graph/builder"
	"github.com/yungbote/knowledgegraph-backend/internal/logger"
	"github.com/yungbote/knowledgegraph-backend/internal/platform/deepseek"
	"github.com/yungbote/knowledgegraph-backend/internal/repos"
	"github.com/yungbote/knowledgegraph-backend/internal/types"
)

const questionSystemPrompt = `You are a patient tutor generating quiz questions about a single concept from a study document.
Write exactly one clear question that checks the requested level of understanding. Return only the question text with no preamble.`

const evaluationSystemPrompt = `You are a strict but fair grader. Evaluate whether the user's answer demonstrates understanding of the concept.
Respond with only a JSON object of the form {"correct": true or false, "feedback": "one or two sentences"}.`

// AnswerResult is the outcome of grading one answer, including the node's
// updated mastery fields.
type AnswerResult struct {
	Correct            bool    `json:"correct"`
	Feedback           string  `json:"feedback"`
	Mastered           bool    `json:"mastered"`
	MasteryScore       float64 `json:"mastery_score"`
	ConsecutiveCorrect int     `json:"consecutive_correct"`
}

// QuizService generates per-node questions and grades answers, advancing the
// node's mastery state on each grade.
type QuizService interface {
	NextQuestion(ctx context.Context, topologyID uuid.UUID, nodeID string, sessionID *uuid.UUID) (*types.Question, *types.QuizSession, error)
	SubmitAnswer(ctx context.Context, topologyID, questionID, sessionID uuid.UUID, answer string) (*AnswerResult, error)
}

type quizService struct {
	log              *logger.Logger
	llm              deepseek.Client
	nodeRepo         repos.NodeRepo
	sessionRepo      repos.QuizSessionRepo
	questionRepo     repos.QuestionRepo
	masteryThreshold int
	maxTokens        int
}

func NewQuizService(
	baseLog *logger.Logger,
	llm deepseek.Client,
	nodeRepo repos.NodeRepo,
	sessionRepo repos.QuizSessionRepo,
	questionRepo repos.QuestionRepo,
	masteryThreshold int,
	maxTokens int,
) QuizService {
	if masteryThreshold <= 0 {
		masteryThreshold = 1
	}
	if maxTokens <= 0 {
		maxTokens = 500
	}
	return &quizService{
		log:              baseLog.With("service", "QuizService"),
		llm:              llm,
		nodeRepo:         nodeRepo,
		sessionRepo:      sessionRepo,
		questionRepo:     questionRepo,
		masteryThreshold: masteryThreshold,
		maxTokens:        maxTokens,
	}
}

// difficultyFor maps the session streak to the register the next question
// should probe. The ladder tops out at synthesis.
func difficultyFor(streak int) string {
	switch streak {
	case 0:
		return "basic recall of the concept's definition"
	case 1:
		return "applying the concept to a concrete situation"
	case 2:
		return "comparing the concept with related ideas"
	default:
		return "advanced synthesis combining the concept with its context"
	}
}

func (s *quizService) NextQuestion(ctx context.Context, topologyID uuid.UUID, nodeID string, sessionID *uuid.UUID) (*types.Question, *types.QuizSession, error) {
	node, err := s.nodeRepo.Get(ctx, nil, topologyID, nodeID)
	if err != nil {
		return nil, nil, err
	}

	var session *types.QuizSession
	if sessionID != nil {
		session, err = s.sessionRepo.Get(ctx, nil, *sessionID)
		if err != nil {
			return nil, nil, err
		}
		// A resumed session must belong to the node it is quizzing, or the
		// difficulty ladder and streak would leak across concepts.
		if session.TopologyID != topologyID || session.NodeID != nodeID {
			return nil, nil, apierr.New(http.StatusConflict, "session_mismatch",
				fmt.Errorf("session %s does not belong to node %q", session.ID, nodeID))
		}
	} else {
		now := time.Now().UTC()
		session = &types.QuizSession{
			ID:         uuid.New(),
			TopologyID: topologyID,
			NodeID:     nodeID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.sessionRepo.Create(ctx, nil, session); err != nil {
			return nil, nil, fmt.Errorf("create quiz session: %w", err)
		}
	}

	user := fmt.Sprintf("Concept: %s\nDifficulty: %s", node.Label, difficultyFor(session.ConsecutiveCorrect))
	if node.ContentSnippet != "" {
		user += "\nContext from the document: " + node.ContentSnippet
	}
	text, err := s.llm.GenerateText(ctx, questionSystemPrompt, user, s.maxTokens)
	if err != nil {
		return nil, nil, fmt.Errorf("generate question: %w", err)
	}

	question := &types.Question{
		ID:         uuid.New(),
		TopologyID: topologyID,
		NodeID:     nodeID,
		SessionID:  session.ID,
		Question:   strings.TrimSpace(text),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.questionRepo.Create(ctx, nil, question); err != nil {
		return nil, nil, fmt.Errorf("store question: %w", err)
	}
	return question, session, nil
}

func (s *quizService) SubmitAnswer(ctx context.Context, topologyID, questionID, sessionID uuid.UUID, answer string) (*AnswerResult, error) {
	question, err := s.questionRepo.Get(ctx, nil, questionID, topologyID)
	if err != nil {
		return nil, err
	}
	session, err := s.sessionRepo.Get(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	if question.SessionID != session.ID || session.TopologyID != topologyID {
		return nil, apierr.New(http.StatusConflict, "session_mismatch",
			fmt.Errorf("question %s does not belong to session %s", question.ID, session.ID))
	}
	node, err := s.nodeRepo.Get(ctx, nil, topologyID, question.NodeID)
	if err != nil {
		return nil, err
	}

	correct, feedback := s.grade(ctx, node.Label, question.Question, answer)

	bn := &builder.Node{
		Mastered:           node.Mastered,
		MasteryScore:       node.MasteryScore,
		ConsecutiveCorrect: node.ConsecutiveCorrect,
	}
	builder.ApplyAnswer(bn, correct, s.masteryThreshold)

	state := builder.MasteryState{
		Mastered:           bn.Mastered,
		MasteryScore:       bn.MasteryScore,
		ConsecutiveCorrect: bn.ConsecutiveCorrect,
	}
	if err := s.nodeRepo.UpdateMastery(ctx, nil, topologyID, node.ID, state); err != nil {
		return nil, fmt.Errorf("update node mastery: %w", err)
	}

	// The session streak mirrors the node streak so question difficulty
	// follows the same progression.
	sessionStreak := session.ConsecutiveCorrect
	if correct {
		sessionStreak++
	} else {
		sessionStreak = 0
	}
	if err := s.sessionRepo.UpdateStreak(ctx, nil, session.ID, sessionStreak, bn.Mastered); err != nil {
		return nil, fmt.Errorf("update session streak: %w", err)
	}
	if err := s.questionRepo.MarkAnswered(ctx, nil, question.ID, answer, feedback, correct); err != nil {
		return nil, fmt.Errorf("mark question answered: %w", err)
	}

	s.log.Info("Answer graded",
		"topology_id", topologyID,
		"node_id", node.ID,
		"correct", correct,
		"streak", sessionStreak,
		"mastered", bn.Mastered,
	)
	return &AnswerResult{
		Correct:            correct,
		Feedback:           feedback,
		Mastered:           bn.Mastered,
		MasteryScore:       bn.MasteryScore,
		ConsecutiveCorrect: bn.ConsecutiveCorrect,
	}, nil
}

// grade asks the LLM for a verdict. Any failure to get or parse one counts
// the answer as incorrect with an apologetic message rather than erroring the
// whole request.
func (s *quizService) grade(ctx context.Context, label, questionText, answer string) (bool, string) {
	user := fmt.Sprintf("Concept: %s\nQuestion: %s\nUser's answer: %s", label, questionText, answer)
	raw, err := s.llm.GenerateText(ctx, evaluationSystemPrompt, user, s.maxTokens)
	if err != nil {
		s.log.Warn("Answer evaluation call failed", "error", err)
		return false, "The answer could not be evaluated. Please try again."
	}

	var verdict struct {
		Correct  bool   `json:"correct"`
		Feedback string `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &verdict); err != nil {
		s.log.Warn("Answer evaluation returned unparseable verdict", "error", err, "raw", raw)
		return false, "The answer could not be evaluated. Please try again."
	}
	return verdict.Correct, verdict.Feedback
}

func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	return strings.TrimSpace(raw)
}
