package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/knowledgegraph-backend/internal/logger"
	"github.com/yungbote/knowledgegraph-backend/internal/types"
)

type EdgeRepo interface {
	ReplaceForTopology(ctx context.Context, tx *gorm.DB, topologyID uuid.UUID, edges []*types.Edge) error
	GetByTopology(ctx context.Context, tx *gorm.DB, topologyID uuid.UUID) ([]*types.Edge, error)
}

type edgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEdgeRepo(db *gorm.DB, baseLog *logger.Logger) EdgeRepo {
	return &edgeRepo{db: db, log: baseLog.With("repo", "EdgeRepo")}
}

func (r *edgeRepo) ReplaceForTopology(ctx context.Context, tx *gorm.DB, topologyID uuid.UUID, edges []*types.Edge) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).
		Where("topology_id = ?", topologyID).
		Delete(&types.Edge{}).Error; err != nil {
		return err
	}
	if len(edges) == 0 {
		return nil
	}
	// The builder can emit the same (from, to) pair more than once; the last
	// relation label wins, matching the composite-key replace semantics.
	deduped := make([]*types.Edge, 0, len(edges))
	seen := make(map[[2]string]int, len(edges))
	for _, e := range edges {
		key := [2]string{e.FromNode, e.ToNode}
		if idx, ok := seen[key]; ok {
			deduped[idx] = e
			continue
		}
		seen[key] = len(deduped)
		deduped = append(deduped, e)
	}
	return transaction.WithContext(ctx).Create(deduped).Error
}

func (r *edgeRepo) GetByTopology(ctx context.Context, tx *gorm.DB, topologyID uuid.UUID) ([]*types.Edge, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.Edge
	err := transaction.WithContext(ctx).
		Where("topology_id = ?", topologyID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
