package utils

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"ccchat/internal/models"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr(id uint) *uint { return &id }

func node(id uint, parent *uint, up, down int, at time.Duration) models.CommentNode {
	return models.CommentNode{
		ID:         id,
		ParentID:   parent,
		PostID:     1,
		AuthorID:   id * 10,
		AuthorName: "user",
		Body:       "body",
		CreatedAt:  base.Add(at),
		Upvotes:    up,
		Downvotes:  down,
	}
}

func ids(nodes []*models.CommentNode) []uint {
	out := make([]uint, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func equalIDs(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuildCommentTreeOrdering(t *testing.T) {
	// scores [5, 5, 3] created at [t2, t1, t3]
	flat := []models.CommentNode{
		node(1, nil, 5, 0, 2*time.Minute),
		node(2, nil, 6, 1, 1*time.Minute),
		node(3, nil, 3, 0, 3*time.Minute),
	}
	roots, orphans := BuildCommentTree(flat)
	if orphans != 0 {
		t.Fatalf("expected no orphans, got %d", orphans)
	}
	if got, want := ids(roots), []uint{2, 1, 3}; !equalIDs(got, want) {
		t.Fatalf("expected order %v, got %v", want, got)
	}
}

func TestBuildCommentTreeNestedOrdering(t *testing.T) {
	flat := []models.CommentNode{
		node(1, nil, 1, 0, 0),
		node(2, ptr(1), 0, 0, 3*time.Minute),
		node(3, ptr(1), 4, 0, 5*time.Minute),
		node(4, ptr(1), 0, 0, 1*time.Minute),
		node(5, ptr(3), 0, 2, 6*time.Minute),
		node(6, ptr(3), 1, 0, 7*time.Minute),
	}
	roots, _ := BuildCommentTree(flat)
	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}
	if got, want := ids(roots[0].Replies), []uint{3, 4, 2}; !equalIDs(got, want) {
		t.Fatalf("replies of 1: expected %v, got %v", want, got)
	}
	if got, want := ids(roots[0].Replies[0].Replies), []uint{6, 5}; !equalIDs(got, want) {
		t.Fatalf("replies of 3: expected %v, got %v", want, got)
	}
}

func TestBuildCommentTreeRoundTrip(t *testing.T) {
	flat := []models.CommentNode{
		node(1, nil, 0, 0, 0),
		node(2, ptr(1), 0, 0, time.Minute),
		node(3, ptr(2), 0, 0, 2*time.Minute),
		node(4, nil, 0, 0, 3*time.Minute),
		node(5, ptr(99), 0, 0, 4*time.Minute), // parent missing
		node(6, ptr(5), 0, 0, 5*time.Minute),  // child of an orphan
	}
	roots, orphans := BuildCommentTree(flat)
	if orphans != 2 {
		t.Fatalf("expected 2 orphans, got %d", orphans)
	}
	if total := CountNodes(roots); total != len(flat)-orphans {
		t.Fatalf("expected %d nodes, got %d", len(flat)-orphans, total)
	}

	var walk func(parent *models.CommentNode)
	walk = func(parent *models.CommentNode) {
		for _, r := range parent.Replies {
			if r.ParentID == nil || *r.ParentID != parent.ID {
				t.Fatalf("node %d listed under %d but has parent %v", r.ID, parent.ID, r.ParentID)
			}
			walk(r)
		}
	}
	for _, r := range roots {
		if r.ParentID != nil {
			t.Fatalf("root %d has a parent", r.ID)
		}
		walk(r)
	}
}

func TestBuildCommentTreeCycles(t *testing.T) {
	flat := []models.CommentNode{
		node(1, nil, 0, 0, 0),
		node(2, ptr(3), 0, 0, time.Minute),
		node(3, ptr(2), 0, 0, 2*time.Minute),
		node(4, ptr(4), 0, 0, 3*time.Minute),
	}
	roots, orphans := BuildCommentTree(flat)
	if orphans != 3 {
		t.Fatalf("expected 3 orphans, got %d", orphans)
	}
	if got := ids(roots); !equalIDs(got, []uint{1}) {
		t.Fatalf("expected only root 1, got %v", got)
	}
}

func TestBuildCommentTreeRedactsDeleted(t *testing.T) {
	parent := node(1, nil, 0, 0, 0)
	parent.Deleted = true
	parent.Body = "secret"
	flat := []models.CommentNode{parent, node(2, ptr(1), 0, 0, time.Minute)}

	roots, _ := BuildCommentTree(flat)
	if len(roots) != 1 || len(roots[0].Replies) != 1 {
		t.Fatalf("deleted parent should keep its reply")
	}
	r := roots[0]
	if r.Body != DeletedPlaceholder || r.AuthorName != DeletedPlaceholder || r.AuthorID != 0 {
		t.Fatalf("deleted node not redacted: %+v", r)
	}
	if roots[0].Replies[0].Body != "body" {
		t.Fatalf("reply should not be redacted")
	}
	if flat[0].Body != "secret" || flat[0].AuthorID != 10 {
		t.Fatalf("input must not be modified, got %+v", flat[0])
	}
}

func TestBuildCommentTreeCollapsesLowScores(t *testing.T) {
	flat := []models.CommentNode{
		node(1, nil, 0, 6, 0),
		node(2, nil, 0, 5, time.Minute),
	}
	roots, _ := BuildCommentTree(flat)
	byID := map[uint]*models.CommentNode{}
	for _, r := range roots {
		byID[r.ID] = r
	}
	if !byID[1].Collapsed {
		t.Errorf("score -6 should be collapsed")
	}
	if byID[2].Collapsed {
		t.Errorf("score -5 should not be collapsed")
	}
}

func TestBuildCommentTreeEmpty(t *testing.T) {
	roots, orphans := BuildCommentTree(nil)
	if len(roots) != 0 || orphans != 0 {
		t.Fatalf("expected empty result, got %d roots %d orphans", len(roots), orphans)
	}
}

func TestPruneDepth(t *testing.T) {
	flat := []models.CommentNode{
		node(1, nil, 0, 0, 0),
		node(2, ptr(1), 0, 0, time.Minute),
		node(3, ptr(2), 0, 0, 2*time.Minute),
	}
	roots, _ := BuildCommentTree(flat)

	pruned := PruneDepth(roots, 2)
	if CountNodes(pruned) != 2 {
		t.Fatalf("expected 2 nodes after pruning, got %d", CountNodes(pruned))
	}
	if CountNodes(roots) != 3 {
		t.Fatalf("pruning must not change the original tree")
	}
	if CountNodes(PruneDepth(roots, 0)) != 3 {
		t.Fatalf("depth 0 should not prune")
	}
}

func TestCommentTreeLeavesHaveEmptyReplies(t *testing.T) {
	roots, _ := BuildCommentTree([]models.CommentNode{
		node(1, nil, 0, 0, 0),
		node(2, ptr(1), 0, 0, time.Minute),
	})
	leaf := roots[0].Replies[0]
	if leaf.Replies == nil || len(leaf.Replies) != 0 {
		t.Fatalf("leaf replies should be an empty list, got %#v", leaf.Replies)
	}

	b, err := json.Marshal(leaf)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"replies":[]`) {
		t.Fatalf("leaf should serialize replies as [], got %s", b)
	}

	pruned := PruneDepth(roots, 1)
	if pruned[0].Replies == nil || len(pruned[0].Replies) != 0 {
		t.Fatalf("capped node should carry empty replies, got %#v", pruned[0].Replies)
	}
	if b, _ := json.Marshal(pruned[0]); !strings.Contains(string(b), `"replies":[]`) {
		t.Fatalf("capped node should serialize replies as [], got %s", b)
	}
}
