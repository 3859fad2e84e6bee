package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/knowledgegraph-backend/internal/logger"
	"github.com/yungbote/knowledgegraph-backend/internal/repos"
	"github.com/yungbote/knowledgegraph-backend/internal/types"
)

// GraphView is the persisted graph in the shape the frontend renders.
type GraphView struct {
	Nodes []*types.Node `json:"nodes"`
	Edges []*types.Edge `json:"edges"`
	Root  string        `json:"root,omitempty"`
}

// GraphQueryService serves read paths and the small node-level mutations that
// do not require a rebuild.
type GraphQueryService interface {
	GetGraph(ctx context.Context, topologyID uuid.UUID) (*GraphView, error)
	ListTopologies(ctx context.Context, userID string) ([]*types.Topology, error)
	LatestRun(ctx context.Context, topologyID uuid.UUID) (*types.GenerationRun, error)
	FilterIgnored(ctx context.Context, topologyID uuid.UUID, ignoredIDs []string) (*GraphView, error)
	SetNodeMastered(ctx context.Context, topologyID uuid.UUID, nodeID string, mastered bool) (*types.Node, error)
	SetMaxNodes(ctx context.Context, topologyID uuid.UUID, maxNodes int) error
}

type graphQueryService struct {
	log      *logger.Logger
	topoRepo repos.TopologyRepo
	nodeRepo repos.NodeRepo
	edgeRepo repos.EdgeRepo
	runRepo  repos.GenerationRunRepo
}

func NewGraphQueryService(baseLog *logger.Logger, topoRepo repos.TopologyRepo, nodeRepo repos.NodeRepo, edgeRepo repos.EdgeRepo, runRepo repos.GenerationRunRepo) GraphQueryService {
	return &graphQueryService{
		log:      baseLog.With("service", "GraphQueryService"),
		topoRepo: topoRepo,
		nodeRepo: nodeRepo,
		edgeRepo: edgeRepo,
		runRepo:  runRepo,
	}
}

func (s *graphQueryService) GetGraph(ctx context.Context, topologyID uuid.UUID) (*GraphView, error) {
	if _, err := s.topoRepo.GetByID(ctx, nil, topologyID); err != nil {
		return nil, err
	}
	nodes, err := s.nodeRepo.GetByTopology(ctx, nil, topologyID)
	if err != nil {
		return nil, err
	}
	edges, err := s.edgeRepo.GetByTopology(ctx, nil, topologyID)
	if err != nil {
		return nil, err
	}
	return &GraphView{Nodes: nodes, Edges: edges, Root: rootOf(nodes)}, nil
}

// LatestRun is the persisted fallback for status polls after the live status
// entry has aged out of the store.
func (s *graphQueryService) LatestRun(ctx context.Context, topologyID uuid.UUID) (*types.GenerationRun, error) {
	return s.runRepo.GetLatestByTopology(ctx, nil, topologyID)
}

func (s *graphQueryService) ListTopologies(ctx context.Context, userID string) ([]*types.Topology, error) {
	if userID == "" {
		userID = "anonymous"
	}
	return s.topoRepo.ListByUser(ctx, nil, userID)
}

// FilterIgnored returns the graph with the given nodes hidden and any edges
// touching them dropped. Nothing is persisted; the next GetGraph sees the
// full graph again.
func (s *graphQueryService) FilterIgnored(ctx context.Context, topologyID uuid.UUID, ignoredIDs []string) (*GraphView, error) {
	view, err := s.GetGraph(ctx, topologyID)
	if err != nil {
		return nil, err
	}
	if len(ignoredIDs) == 0 {
		return view, nil
	}
	ignored := make(map[string]bool, len(ignoredIDs))
	for _, id := range ignoredIDs {
		ignored[id] = true
	}

	nodes := view.Nodes[:0]
	for _, n := range view.Nodes {
		if !ignored[n.ID] {
			nodes = append(nodes, n)
		}
	}
	edges := view.Edges[:0]
	for _, e := range view.Edges {
		if !ignored[e.FromNode] && !ignored[e.ToNode] {
			edges = append(edges, e)
		}
	}
	return &GraphView{Nodes: nodes, Edges: edges, Root: rootOf(nodes)}, nil
}

func (s *graphQueryService) SetNodeMastered(ctx context.Context, topologyID uuid.UUID, nodeID string, mastered bool) (*types.Node, error) {
	if _, err := s.nodeRepo.Get(ctx, nil, topologyID, nodeID); err != nil {
		return nil, err
	}
	if err := s.nodeRepo.SetMastered(ctx, nil, topologyID, nodeID, mastered); err != nil {
		return nil, err
	}
	return s.nodeRepo.Get(ctx, nil, topologyID, nodeID)
}

// SetMaxNodes records the new cap without rebuilding; the next regeneration
// picks it up.
func (s *graphQueryService) SetMaxNodes(ctx context.Context, topologyID uuid.UUID, maxNodes int) error {
	if _, err := s.topoRepo.GetByID(ctx, nil, topologyID); err != nil {
		return err
	}
	return s.topoRepo.SetMaxNodes(ctx, nil, topologyID, maxNodes)
}

// rootOf mirrors the build-time rule: the first level-0 node, else the first
// node present.
func rootOf(nodes []*types.Node) string {
	for _, n := range nodes {
		if n.Level == 0 {
			return n.ID
		}
	}
	if len(nodes) > 0 {
		return nodes[0].ID
	}
	return ""
}
