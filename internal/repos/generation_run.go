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

type GenerationRunRepo interface {
	Create(ctx context.Context, tx *gorm.DB, run *types.GenerationRun) error
	UpdateProgress(ctx context.Context, tx *gorm.DB, runID uuid.UUID, stage string, progress int) error
	MarkSucceeded(ctx context.Context, tx *gorm.DB, runID uuid.UUID, metadata []byte) error
	MarkFailed(ctx context.Context, tx *gorm.DB, runID uuid.UUID, stage string, message string) error
	GetLatestByTopology(ctx context.Context, tx *gorm.DB, topologyID uuid.UUID) (*types.GenerationRun, error)
}

type generationRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenerationRunRepo(db *gorm.DB, baseLog *logger.Logger) GenerationRunRepo {
	return &generationRunRepo{db: db, log: baseLog.With("repo", "GenerationRunRepo")}
}

func (r *generationRunRepo) Create(ctx context.Context, tx *gorm.DB, run *types.GenerationRun) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(run).Error
}

func (r *generationRunRepo) UpdateProgress(ctx context.Context, tx *gorm.DB, runID uuid.UUID, stage string, progress int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.GenerationRun{}).
		Where("id = ?", runID).
		Updates(map[string]any{
			"status":     types.RunStatusRunning,
			"stage":      stage,
			"progress":   progress,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *generationRunRepo) MarkSucceeded(ctx context.Context, tx *gorm.DB, runID uuid.UUID, metadata []byte) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	return transaction.WithContext(ctx).
		Model(&types.GenerationRun{}).
		Where("id = ?", runID).
		Updates(map[string]any{
			"status":       types.RunStatusSucceeded,
			"stage":        "done",
			"progress":     100,
			"metadata":     metadata,
			"updated_at":   now,
			"completed_at": now,
		}).Error
}

func (r *generationRunRepo) MarkFailed(ctx context.Context, tx *gorm.DB, runID uuid.UUID, stage string, message string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	return transaction.WithContext(ctx).
		Model(&types.GenerationRun{}).
		Where("id = ?", runID).
		Updates(map[string]any{
			"status":       types.RunStatusFailed,
			"stage":        stage,
			"error":        message,
			"updated_at":   now,
			"completed_at": now,
		}).Error
}

func (r *generationRunRepo) GetLatestByTopology(ctx context.Context, tx *gorm.DB, topologyID uuid.UUID) (*types.GenerationRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.GenerationRun
	err := transaction.WithContext(ctx).
		Where("topology_id = ?", topologyID).
		Order("created_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, kgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
