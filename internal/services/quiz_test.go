package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/knowledgegraph-backend/internal/apierr"
	"github.com/yungbote/knowledgegraph-backend/internal/kgerrors"
	"github.com/yungbote/knowledgegraph-backend/internal/types"
)

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*types.QuizSession
}

func (f *fakeSessionRepo) Create(_ context.Context, _ *gorm.DB, s *types.QuizSession) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessionRepo) Get(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.QuizSession, error) {
	if s, ok := f.sessions[id]; ok {
		return s, nil
	}
	return nil, kgerrors.ErrNotFound
}

func (f *fakeSessionRepo) UpdateStreak(_ context.Context, _ *gorm.DB, id uuid.UUID, consecutiveCorrect int, mastered bool) error {
	if s, ok := f.sessions[id]; ok {
		s.ConsecutiveCorrect = consecutiveCorrect
		s.Mastered = mastered
	}
	return nil
}

type fakeQuestionRepo struct {
	questions map[uuid.UUID]*types.Question
}

func (f *fakeQuestionRepo) Create(_ context.Context, _ *gorm.DB, q *types.Question) error {
	f.questions[q.ID] = q
	return nil
}

func (f *fakeQuestionRepo) Get(_ context.Context, _ *gorm.DB, id uuid.UUID, topologyID uuid.UUID) (*types.Question, error) {
	if q, ok := f.questions[id]; ok && q.TopologyID == topologyID {
		return q, nil
	}
	return nil, kgerrors.ErrNotFound
}

func (f *fakeQuestionRepo) MarkAnswered(_ context.Context, _ *gorm.DB, id uuid.UUID, answer, feedback string, correct bool) error {
	if q, ok := f.questions[id]; ok {
		q.Answer = answer
		q.Feedback = feedback
		q.Correct = correct
		now := time.Now().UTC()
		q.AnsweredAt = &now
	}
	return nil
}

type quizFixture struct {
	svc       QuizService
	topology  uuid.UUID
	nodes     *fakeNodeRepo
	sessions  *fakeSessionRepo
	questions *fakeQuestionRepo
}

func newQuizFixture(t *testing.T, llm *scriptedLLM, threshold int) *quizFixture {
	t.Helper()
	id := uuid.New()
	nodes := &fakeNodeRepo{nodes: []*types.Node{
		{TopologyID: id, ID: "Photosynthesis", Label: "Photosynthesis", Level: 0},
	}}
	sessions := &fakeSessionRepo{sessions: map[uuid.UUID]*types.QuizSession{}}
	questions := &fakeQuestionRepo{questions: map[uuid.UUID]*types.Question{}}
	svc := NewQuizService(testLogger(t), llm, nodes, sessions, questions, threshold, 0)
	return &quizFixture{svc: svc, topology: id, nodes: nodes, sessions: sessions, questions: questions}
}

func TestNextQuestionRejectsForeignSession(t *testing.T) {
	fx := newQuizFixture(t, &scriptedLLM{}, 1)
	foreign := &types.QuizSession{
		ID:         uuid.New(),
		TopologyID: fx.topology,
		NodeID:     "SomeOtherConcept",
	}
	fx.sessions.sessions[foreign.ID] = foreign

	_, _, err := fx.svc.NextQuestion(context.Background(), fx.topology, "Photosynthesis", &foreign.ID)
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("NextQuestion: want *apierr.Error got=%v", err)
	}
	if apiErr.Status != http.StatusConflict || apiErr.Code != "session_mismatch" {
		t.Fatalf("NextQuestion: want 409 session_mismatch got status=%d code=%q", apiErr.Status, apiErr.Code)
	}
}

func TestSubmitAnswerRejectsSessionMismatch(t *testing.T) {
	fx := newQuizFixture(t, &scriptedLLM{}, 1)
	owner := &types.QuizSession{ID: uuid.New(), TopologyID: fx.topology, NodeID: "Photosynthesis"}
	other := &types.QuizSession{ID: uuid.New(), TopologyID: fx.topology, NodeID: "Photosynthesis"}
	fx.sessions.sessions[owner.ID] = owner
	fx.sessions.sessions[other.ID] = other

	question := &types.Question{
		ID:         uuid.New(),
		TopologyID: fx.topology,
		NodeID:     "Photosynthesis",
		SessionID:  owner.ID,
		Question:   "What is photosynthesis?",
	}
	fx.questions.questions[question.ID] = question

	_, err := fx.svc.SubmitAnswer(context.Background(), fx.topology, question.ID, other.ID, "an answer")
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("SubmitAnswer: want *apierr.Error got=%v", err)
	}
	if apiErr.Status != http.StatusConflict {
		t.Fatalf("SubmitAnswer: want 409 got=%d", apiErr.Status)
	}
}

func TestSubmitAnswerCorrectAdvancesMastery(t *testing.T) {
	llm := &scriptedLLM{replies: []string{`{"correct": true, "feedback": "Exactly right."}`}}
	fx := newQuizFixture(t, llm, 1)
	session := &types.QuizSession{ID: uuid.New(), TopologyID: fx.topology, NodeID: "Photosynthesis"}
	fx.sessions.sessions[session.ID] = session
	question := &types.Question{
		ID:         uuid.New(),
		TopologyID: fx.topology,
		NodeID:     "Photosynthesis",
		SessionID:  session.ID,
		Question:   "What is photosynthesis?",
	}
	fx.questions.questions[question.ID] = question

	result, err := fx.svc.SubmitAnswer(context.Background(), fx.topology, question.ID, session.ID, "Plants convert light to energy.")
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !result.Correct || !result.Mastered {
		t.Fatalf("result: want correct and mastered, got=%+v", result)
	}
	if result.MasteryScore != 1 || result.ConsecutiveCorrect != 1 {
		t.Fatalf("result: want score=1 streak=1 got=%+v", result)
	}

	node := fx.nodes.nodes[0]
	if !node.Mastered || node.MasteryScore != 1 || node.ConsecutiveCorrect != 1 {
		t.Fatalf("node persistence: got=%+v", node)
	}
	if session.ConsecutiveCorrect != 1 || !session.Mastered {
		t.Fatalf("session streak: got=%+v", session)
	}
	if question.AnsweredAt == nil || !question.Correct || question.Feedback != "Exactly right." {
		t.Fatalf("question record: got=%+v", question)
	}
}

func TestSubmitAnswerUnparseableVerdictCountsIncorrect(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"definitely not json"}}
	fx := newQuizFixture(t, llm, 1)
	session := &types.QuizSession{ID: uuid.New(), TopologyID: fx.topology, NodeID: "Photosynthesis", ConsecutiveCorrect: 2}
	fx.sessions.sessions[session.ID] = session
	question := &types.Question{
		ID:         uuid.New(),
		TopologyID: fx.topology,
		NodeID:     "Photosynthesis",
		SessionID:  session.ID,
		Question:   "What is photosynthesis?",
	}
	fx.questions.questions[question.ID] = question

	result, err := fx.svc.SubmitAnswer(context.Background(), fx.topology, question.ID, session.ID, "an answer")
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if result.Correct {
		t.Fatalf("result: unparseable verdict must count as incorrect")
	}
	if result.MasteryScore != -0.5 || result.ConsecutiveCorrect != 0 {
		t.Fatalf("result: want score=-0.5 streak=0 got=%+v", result)
	}
	if session.ConsecutiveCorrect != 0 {
		t.Fatalf("session streak: want reset got=%d", session.ConsecutiveCorrect)
	}
}
