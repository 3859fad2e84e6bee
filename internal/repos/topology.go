package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/knowledgegraph-backend/internal/kgerrors"
	"github.com/yungbote/knowledgegraph-backend/internal/logger"
	"github.com/yungbote/knowledgegraph-backend/internal/types"
)

type TopologyRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, topology *types.Topology) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Topology, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Topology, error)
	SetMaxNodes(ctx context.Context, tx *gorm.DB, id uuid.UUID, maxNodes int) error
}

type topologyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopologyRepo(db *gorm.DB, baseLog *logger.Logger) TopologyRepo {
	return &topologyRepo{db: db, log: baseLog.With("repo", "TopologyRepo")}
}

func (r *topologyRepo) Upsert(ctx context.Context, tx *gorm.DB, topology *types.Topology) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "max_nodes", "user_id", "updated_at"}),
		}).
		Create(topology).Error
}

func (r *topologyRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Topology, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Topology
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, kgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *topologyRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Topology, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.Topology
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *topologyRepo) SetMaxNodes(ctx context.Context, tx *gorm.DB, id uuid.UUID, maxNodes int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Topology{}).
		Where("id = ?", id).
		Update("max_nodes", maxNodes).Error
}
