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

type QuizSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *types.QuizSession) error
	Get(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.QuizSession, error)
	UpdateStreak(ctx context.Context, tx *gorm.DB, id uuid.UUID, consecutiveCorrect int, mastered bool) error
}

type quizSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizSessionRepo(db *gorm.DB, baseLog *logger.Logger) QuizSessionRepo {
	return &quizSessionRepo{db: db, log: baseLog.With("repo", "QuizSessionRepo")}
}

func (r *quizSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.QuizSession) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(session).Error
}

func (r *quizSessionRepo) Get(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.QuizSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.QuizSession
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, kgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *quizSessionRepo) UpdateStreak(ctx context.Context, tx *gorm.DB, id uuid.UUID, consecutiveCorrect int, mastered bool) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.QuizSession{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"consecutive_correct": consecutiveCorrect,
			"mastered":            mastered,
			"updated_at":          time.Now().UTC(),
		}).Error
}
