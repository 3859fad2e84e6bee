package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/knowledgegraph-backend/internal/graph/builder"
	"github.com/yungbote/knowledgegraph-backend/internal/logger"
	"github.com/yungbote/knowledgegraph-backend/internal/platform/neo4jdb"
)

// GraphMirror copies a built graph into Neo4j for graph-native queries. The
// relational store stays authoritative; mirror errors are logged by the
// caller and never fail a build.
type GraphMirror interface {
	MirrorGraph(ctx context.Context, topologyID uuid.UUID, g *builder.Graph) error
}

type graphMirror struct {
	log    *logger.Logger
	client *neo4jdb.Client
}

// NewGraphMirror returns nil when the Neo4j client is unconfigured, which
// callers treat as "mirroring disabled".
func NewGraphMirror(baseLog *logger.Logger, client *neo4jdb.Client) GraphMirror {
	if client == nil {
		return nil
	}
	return &graphMirror{
		log:    baseLog.With("service", "GraphMirror"),
		client: client,
	}
}

func (m *graphMirror) MirrorGraph(ctx context.Context, topologyID uuid.UUID, g *builder.Graph) error {
	if g == nil {
		return nil
	}
	session := m.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: m.client.Database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		// A rebuild replaces the mirrored subgraph wholesale, same as the
		// relational node and edge tables.
		if _, err := tx.Run(ctx,
			`MATCH (c:Concept {topology_id: $topology_id}) DETACH DELETE c`,
			map[string]any{"topology_id": topologyID.String()},
		); err != nil {
			return nil, fmt.Errorf("clear mirrored graph: %w", err)
		}

		for _, n := range g.Nodes {
			if _, err := tx.Run(ctx,
				`MERGE (c:Concept {topology_id: $topology_id, id: $id})
				 SET c.label = $label, c.level = $level, c.value = $value, c.mastered = $mastered`,
				map[string]any{
					"topology_id": topologyID.String(),
					"id":          n.ID,
					"label":       n.Label,
					"level":       n.Level,
					"value":       n.Value,
					"mastered":    n.Mastered,
				},
			); err != nil {
				return nil, fmt.Errorf("mirror node %q: %w", n.ID, err)
			}
		}

		for _, e := range g.Edges {
			if _, err := tx.Run(ctx,
				`MATCH (a:Concept {topology_id: $topology_id, id: $from})
				 MATCH (b:Concept {topology_id: $topology_id, id: $to})
				 MERGE (a)-[r:RELATES_TO]->(b)
				 SET r.label = $label`,
				map[string]any{
					"topology_id": topologyID.String(),
					"from":        e.From,
					"to":          e.To,
					"label":       e.Label,
				},
			); err != nil {
				return nil, fmt.Errorf("mirror edge %q->%q: %w", e.From, e.To, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return err
	}
	m.log.Debug("Mirrored graph to Neo4j",
		"topology_id", topologyID,
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
	)
	return nil
}
