package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/knowledgegraph-backend/internal/kgerrors"
	"github.com/yungbote/knowledgegraph-backend/internal/logger"
	"github.com/yungbote/knowledgegraph-backend/internal/types"
)

type QuestionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, question *types.Question) error
	Get(ctx context.Context, tx *gorm.DB, id uuid.UUID, topologyID uuid.UUID) (*types.Question, error)
	MarkAnswered(ctx context.Context, tx *gorm.DB, id uuid.UUID, answer, feedback string, correct bool) error
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return &questionRepo{db: db, log: baseLog.With("repo", "QuestionRepo")}
}

func (r *questionRepo) Create(ctx context.Context, tx *gorm.DB, question *types.Question) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(question).Error
}

func (r *questionRepo) Get(ctx context.Context, tx *gorm.DB, id uuid.UUID, topologyID uuid.UUID) (*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Question
	err := transaction.WithContext(ctx).
		Where("id = ? AND topology_id = ?", id, topologyID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, kgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *questionRepo) MarkAnswered(ctx context.Context, tx *gorm.DB, id uuid.UUID, answer, feedback string, correct bool) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	return transaction.WithContext(ctx).
		Model(&types.Question{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"answer":      answer,
			"feedback":    feedback,
			"correct":     correct,
			"answered_at": now,
		}).Error
}
