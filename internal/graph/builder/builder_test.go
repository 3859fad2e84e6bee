package builder

import (
	"testing"

	"github.com/yungbote/knowledgegraph-backend/internal/graph/relation"
)

func rel(src, label, tgt string) relation.Relation {
	return relation.Relation{Source: src, Label: label, Target: tgt}
}

func nodeByID(t *testing.T, g *Graph, id string) *Node {
	t.Helper()
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	t.Fatalf("node %q not in graph", id)
	return nil
}

func TestBuildEmptyEdgeList(t *testing.T) {
	g := Build(nil, nil, "", Options{})
	if len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Fatalf("Build empty: want empty graph got nodes=%d edges=%d", len(g.Nodes), len(g.Edges))
	}
	if g.Root != "" {
		t.Fatalf("Build empty root: want empty got=%q", g.Root)
	}
}

func TestBuildSimpleTree(t *testing.T) {
	rels := []relation.Relation{
		rel("A", "contains", "B"),
		rel("A", "contains", "C"),
	}

	g := Build(rels, nil, "", Options{})
	if g.Root != "A" {
		t.Fatalf("root: want=A got=%q", g.Root)
	}
	if got := nodeByID(t, g, "A").Level; got != 0 {
		t.Fatalf("level(A): want=0 got=%d", got)
	}
	if got := nodeByID(t, g, "B").Level; got != 1 {
		t.Fatalf("level(B): want=1 got=%d", got)
	}
	if got := nodeByID(t, g, "C").Level; got != 1 {
		t.Fatalf("level(C): want=1 got=%d", got)
	}
	if got := nodeByID(t, g, "A").Value; got != 2 {
		t.Fatalf("value(A): want=2 got=%d", got)
	}
	if got := nodeByID(t, g, "B").Value; got != 1 {
		t.Fatalf("value(B): want=1 got=%d", got)
	}
	if got := nodeByID(t, g, "C").Value; got != 1 {
		t.Fatalf("value(C): want=1 got=%d", got)
	}
}

func TestBuildEveryEndpointBecomesANode(t *testing.T) {
	rels := []relation.Relation{
		rel("A", "contains", "B"),
		rel("B", "contains", "C"),
		rel("D", "is part of", "B"),
	}

	g := Build(rels, nil, "", Options{})
	ids := make(map[string]bool)
	for _, n := range g.Nodes {
		ids[n.ID] = true
	}
	for _, e := range g.Edges {
		if !ids[e.From] || !ids[e.To] {
			t.Fatalf("orphan edge %v: endpoints missing from node set %v", e, ids)
		}
	}
	if len(g.Nodes) != 4 {
		t.Fatalf("node count: want=4 got=%d", len(g.Nodes))
	}
}

func TestBuildRootSelectionSingleIndegreeZero(t *testing.T) {
	rels := []relation.Relation{
		rel("B", "contains", "C"),
		rel("A", "contains", "B"),
		rel("C", "contains", "D"),
	}

	g := Build(rels, nil, "", Options{})
	if g.Root != "A" {
		t.Fatalf("root: want=A got=%q", g.Root)
	}
}

func TestBuildRootFallbackOnCycle(t *testing.T) {
	rels := []relation.Relation{
		rel("A", "leads to", "B"),
		rel("B", "leads to", "A"),
	}

	g := Build(rels, nil, "", Options{})
	// Every node has a parent; the first created wins.
	if g.Root != "A" {
		t.Fatalf("root: want=A got=%q", g.Root)
	}
	// The traversal must terminate and still assign a level to B.
	if got := nodeByID(t, g, "B").Level; got != 1 {
		t.Fatalf("level(B): want=1 got=%d", got)
	}
}

func TestBuildLevelIsMaxOverPaths(t *testing.T) {
	// B is reachable directly from A (depth 1) and via C (depth 2); the
	// deeper path wins.
	rels := []relation.Relation{
		rel("A", "contains", "C"),
		rel("C", "contains", "B"),
		rel("A", "contains", "B"),
	}

	g := Build(rels, nil, "", Options{})
	if got := nodeByID(t, g, "B").Level; got != 2 {
		t.Fatalf("level(B): want=2 got=%d", got)
	}
}

func TestBuildDisconnectedComponentKeepsLevelZero(t *testing.T) {
	rels := []relation.Relation{
		rel("A", "contains", "B"),
		rel("X", "contains", "Y"),
	}

	g := Build(rels, nil, "", Options{})
	if g.Root != "A" {
		t.Fatalf("root: want=A got=%q", g.Root)
	}
	// X/Y are unreachable from the chosen root; X keeps level 0, Y gets no
	// traversal either but Y has a parent so it stays at its default.
	if got := nodeByID(t, g, "X").Level; got != 0 {
		t.Fatalf("level(X): want=0 got=%d", got)
	}
}

func TestBuildSelfLoopIsTolerated(t *testing.T) {
	rels := []relation.Relation{
		rel("A", "contains", "A"),
		rel("A", "contains", "B"),
	}

	g := Build(rels, nil, "", Options{})
	if len(g.Nodes) != 2 {
		t.Fatalf("node count: want=2 got=%d", len(g.Nodes))
	}
	// Degenerate self-loop still counts toward degree.
	if got := nodeByID(t, g, "A").Value; got != 3 {
		t.Fatalf("value(A): want=3 got=%d", got)
	}
}

func TestBuildMaxNodesKeepsHighestValue(t *testing.T) {
	rels := []relation.Relation{
		rel("A", "contains", "B"),
		rel("A", "contains", "C"),
	}

	g := Build(rels, nil, "", Options{MaxNodes: 1})
	if len(g.Nodes) != 1 {
		t.Fatalf("node count: want=1 got=%d", len(g.Nodes))
	}
	if g.Nodes[0].ID != "A" {
		t.Fatalf("surviving node: want=A got=%q", g.Nodes[0].ID)
	}
	if len(g.Edges) != 0 {
		t.Fatalf("edge count: want=0 got=%d", len(g.Edges))
	}
	if g.Root != "A" {
		t.Fatalf("root: want=A got=%q", g.Root)
	}
}

func TestBuildSnippetsComeFromSourceText(t *testing.T) {
	source := "Photosynthesis is how plants make food. Chlorophyll absorbs light."
	rels := []relation.Relation{rel("Photosynthesis", "uses", "Chlorophyll")}

	g := Build(rels, nil, source, Options{})
	if got := nodeByID(t, g, "Photosynthesis").ContentSnippet; got == "" {
		t.Fatalf("snippet(Photosynthesis): want non-empty")
	}
	if got := nodeByID(t, g, "Chlorophyll").ContentSnippet; got == "" {
		t.Fatalf("snippet(Chlorophyll): want non-empty")
	}
}

func TestBuildMergesPriorMastery(t *testing.T) {
	rels := []relation.Relation{
		rel("A", "contains", "B"),
		rel("A", "contains", "C"),
	}
	prior := map[string]MasteryState{
		"B": {Mastered: true, MasteryScore: 7.5, ConsecutiveCorrect: 3},
	}

	g := Build(rels, prior, "", Options{})
	b := nodeByID(t, g, "B")
	if !b.Mastered {
		t.Fatalf("mastered(B): want=true")
	}
	if b.MasteryScore != 7.5 {
		t.Fatalf("mastery_score(B): want=7.5 got=%v", b.MasteryScore)
	}
	if b.ConsecutiveCorrect != 3 {
		t.Fatalf("consecutive_correct(B): want=3 got=%d", b.ConsecutiveCorrect)
	}
	a := nodeByID(t, g, "A")
	if a.Mastered || a.MasteryScore != 0 || a.ConsecutiveCorrect != 0 {
		t.Fatalf("mastery(A): want defaults got=%+v", a)
	}
}

func TestBuildSeedMasteryFromExtraction(t *testing.T) {
	rels := []relation.Relation{
		{Source: "A", Label: "contains", Target: "B", Highlighted: true},
	}

	off := Build(rels, nil, "", Options{})
	if nodeByID(t, off, "B").Mastered {
		t.Fatalf("mastered(B): want=false when seeding disabled")
	}

	on := Build(rels, nil, "", Options{SeedMasteryFromExtraction: true})
	if !nodeByID(t, on, "B").Mastered {
		t.Fatalf("mastered(B): want=true when seeding enabled")
	}
}

func TestApplyAnswerScoring(t *testing.T) {
	n := &Node{ID: "A", Label: "A", Value: 1}

	ApplyAnswer(n, true, 3)
	if n.ConsecutiveCorrect != 1 || n.MasteryScore != 1 || n.Mastered {
		t.Fatalf("after 1 correct: got=%+v", n)
	}

	ApplyAnswer(n, true, 3)
	ApplyAnswer(n, true, 3)
	if n.ConsecutiveCorrect != 3 || !n.Mastered {
		t.Fatalf("after 3 correct with threshold 3: got=%+v", n)
	}

	ApplyAnswer(n, false, 3)
	if n.ConsecutiveCorrect != 0 {
		t.Fatalf("streak after incorrect: want=0 got=%d", n.ConsecutiveCorrect)
	}
	if n.MasteryScore != 2.5 {
		t.Fatalf("score after incorrect: want=2.5 got=%v", n.MasteryScore)
	}
}

func TestApplyAnswerScoreClampsAtTen(t *testing.T) {
	n := &Node{MasteryScore: 9.8}
	ApplyAnswer(n, true, 1)
	if n.MasteryScore != MaxMasteryScore {
		t.Fatalf("score: want=%v got=%v", float64(MaxMasteryScore), n.MasteryScore)
	}
}

func TestApplyAnswerScoreUnclampedBelow(t *testing.T) {
	n := &Node{}
	for i := 0; i < 4; i++ {
		ApplyAnswer(n, false, 1)
	}
	if n.MasteryScore != -2 {
		t.Fatalf("score: want=-2 got=%v", n.MasteryScore)
	}
}
