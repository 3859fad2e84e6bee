package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/knowledgegraph-backend/internal/graph/builder"
	"github.com/yungbote/knowledgegraph-backend/internal/kgerrors"
	"github.com/yungbote/knowledgegraph-backend/internal/logger"
	"github.com/yungbote/knowledgegraph-backend/internal/types"
)

type NodeRepo interface {
	ReplaceForTopology(ctx context.Context, tx *gorm.DB, topologyID uuid.UUID, nodes []*types.Node) error
	GetByTopology(ctx context.Context, tx *gorm.DB, topologyID uuid.UUID) ([]*types.Node, error)
	Get(ctx context.Context, tx *gorm.DB, topologyID uuid.UUID, nodeID string) (*types.Node, error)
	GetMasteryStates(ctx context.Context, tx *gorm.DB, topologyID uuid.UUID) (map[string]builder.MasteryState, error)
	UpdateMastery(ctx context.Context, tx *gorm.DB, topologyID uuid.UUID, nodeID string, state builder.MasteryState) error
	SetMastered(ctx context.Context, tx *gorm.DB, topologyID uuid.UUID, nodeID string, mastered bool) error
}

type nodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNodeRepo(db *gorm.DB, baseLog *logger.Logger) NodeRepo {
	return &nodeRepo{db: db, log: baseLog.With("repo", "NodeRepo")}
}

// ReplaceForTopology swaps the topology's node set wholesale. Callers wrap
// this in a transaction together with the edge replacement so a failed build
// never leaves a half-written graph.
func (r *nodeRepo) ReplaceForTopology(ctx context.Context, tx *gorm.DB, topologyID uuid.UUID, nodes []*types.Node) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).
		Where("topology_id = ?", topologyID).
		Delete(&types.Node{}).Error; err != nil {
		return err
	}
	if len(nodes) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Create(nodes).Error
}

func (r *nodeRepo) GetByTopology(ctx context.Context, tx *gorm.DB, topologyID uuid.UUID) ([]*types.Node, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.Node
	err := transaction.WithContext(ctx).
		Where("topology_id = ?", topologyID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *nodeRepo) Get(ctx context.Context, tx *gorm.DB, topologyID uuid.UUID, nodeID string) (*types.Node, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Node
	err := transaction.WithContext(ctx).
		Where("topology_id = ? AND id = ?", topologyID, nodeID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, kgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// GetMasteryStates loads the prior mastery snapshot for a topology, keyed by
// node label, for merging into a fresh build.
func (r *nodeRepo) GetMasteryStates(ctx context.Context, tx *gorm.DB, topologyID uuid.UUID) (map[string]builder.MasteryState, error) {
	rows, err := r.GetByTopology(ctx, tx, topologyID)
	if err != nil {
		return nil, err
	}
	states := make(map[string]builder.MasteryState, len(rows))
	for _, n := range rows {
		states[n.Label] = builder.MasteryState{
			Mastered:           n.Mastered,
			MasteryScore:       n.MasteryScore,
			ConsecutiveCorrect: n.ConsecutiveCorrect,
		}
	}
	return states, nil
}

func (r *nodeRepo) UpdateMastery(ctx context.Context, tx *gorm.DB, topologyID uuid.UUID, nodeID string, state builder.MasteryState) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Node{}).
		Where("topology_id = ? AND id = ?", topologyID, nodeID).
		Updates(map[string]any{
			"mastered":            state.Mastered,
			"mastery_score":       state.MasteryScore,
			"consecutive_correct": state.ConsecutiveCorrect,
		}).Error
}

func (r *nodeRepo) SetMastered(ctx context.Context, tx *gorm.DB, topologyID uuid.UUID, nodeID string, mastered bool) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Node{}).
		Where("topology_id = ? AND id = ?", topologyID, nodeID).
		Update("mastered", mastered).Error
}
