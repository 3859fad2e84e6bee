package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/yungbote/knowledgegraph-backend/internal/graph/builder"
	"github.com/yungbote/knowledgegraph-backend/internal/kgerrors"
	"github.com/yungbote/knowledgegraph-backend/internal/logger"
	"github.com/yungbote/knowledgegraph-backend/internal/repos"
	"github.com/yungbote/knowledgegraph-backend/internal/status"
	"github.com/yungbote/knowledgegraph-backend/internal/types"
)

// GenerationConfig tunes graph builds.
type GenerationConfig struct {
	// MinDocumentLength is the minimum usable source text length in runes.
	MinDocumentLength int
	// SeedMasteryFromExtraction honors the extraction's highlighted flag as
	// initial mastery on first build.
	SeedMasteryFromExtraction bool
}

// GenerationService owns the document → graph unit of work. One build per
// topology id runs at a time; concurrent submissions for the same id are
// coalesced rather than racing each other.
type GenerationService interface {
	Generate(ctx context.Context, topologyID uuid.UUID, sourceText string, maxNodes int, userID string) (*builder.Graph, error)
	Regenerate(ctx context.Context, topologyID uuid.UUID, newMaxNodes int) (*builder.Graph, error)
}

type generationService struct {
	db         *gorm.DB
	log        *logger.Logger
	cfg        GenerationConfig
	extraction ExtractionService
	topoRepo   repos.TopologyRepo
	nodeRepo   repos.NodeRepo
	edgeRepo   repos.EdgeRepo
	runRepo    repos.GenerationRunRepo
	statuses   status.Store
	mirror     GraphMirror

	// single-flight per topology id: double submission of the same topology
	// must not interleave two builds.
	flight singleflight.Group
}

func NewGenerationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cfg GenerationConfig,
	extraction ExtractionService,
	topoRepo repos.TopologyRepo,
	nodeRepo repos.NodeRepo,
	edgeRepo repos.EdgeRepo,
	runRepo repos.GenerationRunRepo,
	statuses status.Store,
	mirror GraphMirror,
) GenerationService {
	if cfg.MinDocumentLength <= 0 {
		cfg.MinDocumentLength = 100
	}
	return &generationService{
		db:         db,
		log:        baseLog.With("service", "GenerationService"),
		cfg:        cfg,
		extraction: extraction,
		topoRepo:   topoRepo,
		nodeRepo:   nodeRepo,
		edgeRepo:   edgeRepo,
		runRepo:    runRepo,
		statuses:   statuses,
		mirror:     mirror,
	}
}

func (s *generationService) Generate(ctx context.Context, topologyID uuid.UUID, sourceText string, maxNodes int, userID string) (*builder.Graph, error) {
	if userID == "" {
		userID = "anonymous"
	}
	v, err, _ := s.flight.Do(topologyID.String(), func() (any, error) {
		return s.build(ctx, topologyID, sourceText, maxNodes, userID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*builder.Graph), nil
}

func (s *generationService) Regenerate(ctx context.Context, topologyID uuid.UUID, newMaxNodes int) (*builder.Graph, error) {
	topo, err := s.topoRepo.GetByID(ctx, nil, topologyID)
	if err != nil {
		return nil, err
	}
	v, err, _ := s.flight.Do(topologyID.String(), func() (any, error) {
		return s.build(ctx, topologyID, topo.Content, newMaxNodes, topo.UserID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*builder.Graph), nil
}

// build is the sequential unit of work: validate → extract → build → merge →
// persist. Graph writes happen in one transaction after a successful build,
// so a failure leaves any previously persisted graph untouched.
func (s *generationService) build(ctx context.Context, topologyID uuid.UUID, sourceText string, maxNodes int, userID string) (*builder.Graph, error) {
	log := s.log.With("topology_id", topologyID)
	started := time.Now()

	run := &types.GenerationRun{
		ID:         uuid.New(),
		TopologyID: topologyID,
		Status:     types.RunStatusRunning,
		Stage:      "validate",
		CreatedAt:  started.UTC(),
		UpdatedAt:  started.UTC(),
	}
	if err := s.runRepo.Create(ctx, nil, run); err != nil {
		return nil, fmt.Errorf("create generation run: %w", err)
	}

	_ = s.statuses.Set(ctx, topologyID, status.BuildStatus{
		Status:     status.StateProcessing,
		Progress:   0,
		Message:    "Starting document processing...",
		TextLength: len(sourceText),
		MaxNodes:   maxNodes,
	})

	graph, err := s.buildGraph(ctx, run, topologyID, sourceText, maxNodes, userID)
	if err != nil {
		log.Error("Graph build failed", "error", err)
		_ = s.runRepo.MarkFailed(ctx, nil, run.ID, run.Stage, err.Error())
		_ = s.statuses.Set(ctx, topologyID, status.BuildStatus{
			Status:   status.StateError,
			Message:  err.Error(),
			MaxNodes: maxNodes,
		})
		return nil, err
	}

	elapsed := time.Since(started)
	metadata, _ := json.Marshal(map[string]any{
		"node_count":         len(graph.Nodes),
		"edge_count":         len(graph.Edges),
		"processing_seconds": elapsed.Seconds(),
	})
	_ = s.runRepo.MarkSucceeded(ctx, nil, run.ID, metadata)
	_ = s.statuses.Set(ctx, topologyID, status.BuildStatus{
		Status:         status.StateCompleted,
		Progress:       100,
		Message:        "Graph generation complete",
		NodeCount:      len(graph.Nodes),
		EdgeCount:      len(graph.Edges),
		TextLength:     len(sourceText),
		MaxNodes:       maxNodes,
		ProcessingTime: elapsed.Seconds(),
	})
	log.Info("Knowledge graph generated",
		"nodes", len(graph.Nodes),
		"edges", len(graph.Edges),
		"elapsed", elapsed.String(),
	)
	return graph, nil
}

func (s *generationService) buildGraph(ctx context.Context, run *types.GenerationRun, topologyID uuid.UUID, sourceText string, maxNodes int, userID string) (*builder.Graph, error) {
	progress := func(stage string, pct int, msg string) {
		run.Stage = stage
		_ = s.runRepo.UpdateProgress(ctx, nil, run.ID, stage, pct)
		_ = s.statuses.Update(ctx, topologyID, pct, msg)
	}

	progress("validate", 10, "Validating document content...")
	if len([]rune(sourceText)) < s.cfg.MinDocumentLength {
		return nil, kgerrors.ErrEmptyDocument
	}

	progress("extract", 20, "Preparing knowledge extraction...")
	progress("extract", 60, "Extracting knowledge relations...")
	rels, err := s.extraction.ExtractRelations(ctx, sourceText, maxNodes)
	if err != nil {
		return nil, err
	}

	progress("build", 80, "Building knowledge graph and content snippets...")
	prior, err := s.nodeRepo.GetMasteryStates(ctx, nil, topologyID)
	if err != nil {
		return nil, fmt.Errorf("load prior mastery state: %w", err)
	}
	graph := builder.Build(rels, prior, sourceText, builder.Options{
		MaxNodes:                  maxNodes,
		SeedMasteryFromExtraction: s.cfg.SeedMasteryFromExtraction,
	})

	progress("persist", 90, "Saving knowledge graph...")
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if err := s.topoRepo.Upsert(ctx, tx, &types.Topology{
			ID:        topologyID,
			Content:   sourceText,
			MaxNodes:  maxNodes,
			UserID:    userID,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return err
		}
		if err := s.nodeRepo.ReplaceForTopology(ctx, tx, topologyID, nodeRows(topologyID, graph)); err != nil {
			return err
		}
		return s.edgeRepo.ReplaceForTopology(ctx, tx, topologyID, edgeRows(topologyID, graph))
	})
	if err != nil {
		return nil, fmt.Errorf("persist graph: %w", err)
	}

	if s.mirror != nil {
		// Mirroring is best-effort; the relational store is authoritative.
		if err := s.mirror.MirrorGraph(ctx, topologyID, graph); err != nil {
			s.log.Warn("Graph mirror failed", "topology_id", topologyID, "error", err)
		}
	}
	return graph, nil
}

func nodeRows(topologyID uuid.UUID, g *builder.Graph) []*types.Node {
	rows := make([]*types.Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		rows = append(rows, &types.Node{
			TopologyID:         topologyID,
			ID:                 n.ID,
			Label:              n.Label,
			Level:              n.Level,
			Value:              n.Value,
			Mastered:           n.Mastered,
			MasteryScore:       n.MasteryScore,
			ConsecutiveCorrect: n.ConsecutiveCorrect,
			ContentSnippet:     n.ContentSnippet,
		})
	}
	return rows
}

func edgeRows(topologyID uuid.UUID, g *builder.Graph) []*types.Edge {
	rows := make([]*types.Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		rows = append(rows, &types.Edge{
			TopologyID: topologyID,
			FromNode:   e.From,
			ToNode:     e.To,
			Label:      e.Label,
		})
	}
	return rows
}
