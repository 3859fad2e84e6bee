// Package builder turns canonical relations into a rooted tree-shaped
// knowledge graph: deduplicated nodes, max-over-paths levels, degree-based
// importance scores, an optional node budget, and mastery state carried over
// from prior builds.
package builder

import (
	"sort"

	"github.com/yungbote/knowledgegraph-backend/internal/graph/relation"
	"github.com/yungbote/knowledgegraph-backend/internal/graph/snippet"
)

// Node is one concept in the built graph. ID equals the raw label string;
// two relations naming the same string denote the same node.
type Node struct {
	ID                 string  `json:"id"`
	Label              string  `json:"label"`
	Level              int     `json:"level"`
	Value              int     `json:"value"`
	Mastered           bool    `json:"mastered"`
	MasteryScore       float64 `json:"mastery_score"`
	ConsecutiveCorrect int     `json:"consecutive_correct"`
	ContentSnippet     string  `json:"content_snippet"`
}

// Edge is a directed labeled relation between two nodes of the same graph.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// Graph is the built result. Root is "" for an empty graph.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []Edge  `json:"edges"`
	Root  string  `json:"root"`
}

// Options tunes a build.
type Options struct {
	// MaxNodes prunes the graph to the highest-value nodes when > 0.
	MaxNodes int
	// SeedMasteryFromExtraction honors the per-relation highlighted flag as
	// initial mastery. The source behavior was inconsistent; off by default.
	SeedMasteryFromExtraction bool
}

// Build materializes a graph from relations. prior carries mastery state
// from an earlier build of the same topology, keyed by exact label; it wins
// over any extraction-seeded mastery.
func Build(rels []relation.Relation, prior map[string]MasteryState, sourceText string, opts Options) *Graph {
	g := &Graph{Nodes: []*Node{}, Edges: []Edge{}}
	if len(rels) == 0 {
		return g
	}

	byID := make(map[string]*Node)
	order := make([]string, 0, len(rels)*2)

	materialize := func(label string, highlighted bool) {
		if _, ok := byID[label]; ok {
			return
		}
		n := &Node{
			ID:             label,
			Label:          label,
			Level:          0,
			Value:          1,
			ContentSnippet: snippet.Extract(sourceText, label),
		}
		if opts.SeedMasteryFromExtraction && highlighted {
			n.Mastered = true
		}
		byID[label] = n
		order = append(order, label)
	}

	hasParent := make(map[string]bool)
	for _, r := range rels {
		materialize(r.Source, r.Highlighted)
		materialize(r.Target, r.Highlighted)
		g.Edges = append(g.Edges, Edge{From: r.Source, To: r.Target, Label: r.Label})
		hasParent[r.Target] = true
	}

	// Root: first label (in encounter order) that never appears as a target,
	// falling back to the first node created.
	for _, id := range order {
		if !hasParent[id] {
			g.Root = id
			break
		}
	}
	if g.Root == "" {
		g.Root = order[0]
	}

	assignLevels(byID, g.Edges, g.Root)

	// Importance: total degree over the full edge list, floor 1.
	degree := make(map[string]int)
	for _, e := range g.Edges {
		degree[e.From]++
		degree[e.To]++
	}
	for id, n := range byID {
		if d := degree[id]; d > 1 {
			n.Value = d
		}
	}

	for _, id := range order {
		g.Nodes = append(g.Nodes, byID[id])
	}

	if opts.MaxNodes > 0 && len(g.Nodes) > opts.MaxNodes {
		prune(g, opts.MaxNodes)
	}

	for _, n := range g.Nodes {
		if state, ok := prior[n.Label]; ok {
			Merge(n, &state)
		}
	}
	return g
}

// assignLevels walks forward edges from root with an explicit stack. Level is
// the maximum depth over paths: an already-visited node reached again at a
// greater depth has its level raised once more but is not re-expanded, which
// bounds the traversal to O(V+E) even on cycles.
func assignLevels(byID map[string]*Node, edges []Edge, root string) {
	children := make(map[string][]string, len(byID))
	for _, e := range edges {
		children[e.From] = append(children[e.From], e.To)
	}

	type frame struct {
		id    string
		depth int
	}
	visited := map[string]bool{root: true}
	stack := []frame{{id: root, depth: 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := byID[f.id]
		if n != nil && f.depth > n.Level {
			n.Level = f.depth
		}
		for _, child := range children[f.id] {
			if c := byID[child]; c != nil && f.depth+1 > c.Level {
				c.Level = f.depth + 1
			}
			if !visited[child] {
				visited[child] = true
				stack = append(stack, frame{id: child, depth: f.depth + 1})
			}
		}
	}
}

// prune keeps the maxNodes highest-value nodes (stable on the original
// encounter order for ties) and drops edges with a pruned endpoint. The root
// is recomputed if it was pruned.
func prune(g *Graph, maxNodes int) {
	ranked := make([]*Node, len(g.Nodes))
	copy(ranked, g.Nodes)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Value > ranked[j].Value })
	ranked = ranked[:maxNodes]

	keep := make(map[string]bool, maxNodes)
	for _, n := range ranked {
		keep[n.ID] = true
	}

	nodes := g.Nodes[:0]
	for _, n := range g.Nodes {
		if keep[n.ID] {
			nodes = append(nodes, n)
		}
	}
	g.Nodes = nodes

	edges := g.Edges[:0]
	for _, e := range g.Edges {
		if keep[e.From] && keep[e.To] {
			edges = append(edges, e)
		}
	}
	g.Edges = edges

	if !keep[g.Root] {
		g.Root = ""
		if len(g.Nodes) > 0 {
			g.Root = g.Nodes[0].ID
		}
	}
}
