package utils

import (
	"slices"

	"ccchat/internal/models"
)

const (
	// DeletedPlaceholder 软删除评论在读路径上的内容和作者名
	DeletedPlaceholder = "[已删除]"
	// CollapseThreshold 分数低于该值的评论默认折叠
	CollapseThreshold = -5
)

// BuildCommentTree 将一篇帖子的扁平评论组装为有序的回复树。
//
// 父评论不在输入中的节点，以及处于父子环中的节点，不会出现在结果里，
// 以 orphans 返回其数量。已删除的节点保留在树中，但内容和作者被替换为占位符。
// 每一层按分数降序、创建时间升序排列。输入切片不会被修改。
func BuildCommentTree(flat []models.CommentNode) (roots []*models.CommentNode, orphans int) {
	index := make(map[uint]*models.CommentNode, len(flat))
	order := make([]*models.CommentNode, 0, len(flat))
	for i := range flat {
		if _, dup := index[flat[i].ID]; dup {
			orphans++
			continue
		}
		n := flat[i]
		n.Replies = []*models.CommentNode{}
		redact(&n)
		n.Collapsed = n.Score() < CollapseThreshold
		index[n.ID] = &n
		order = append(order, &n)
	}

	for _, n := range order {
		if n.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		parent, ok := index[*n.ParentID]
		if !ok || parent == n {
			continue
		}
		parent.Replies = append(parent.Replies, n)
	}

	// 只有从根可达的节点计入结果，环上的节点没有根祖先
	reachable := sortLevel(roots)
	orphans += len(order) - reachable
	return roots, orphans
}

func redact(n *models.CommentNode) {
	if !n.Deleted {
		return
	}
	n.Body = DeletedPlaceholder
	n.BodyHTML = ""
	n.AuthorName = DeletedPlaceholder
	n.AuthorID = 0
}

// sortLevel 递归排序，返回排序过的节点数
func sortLevel(nodes []*models.CommentNode) int {
	slices.SortStableFunc(nodes, compareNodes)
	count := len(nodes)
	for _, n := range nodes {
		count += sortLevel(n.Replies)
	}
	return count
}

func compareNodes(a, b *models.CommentNode) int {
	if sa, sb := a.Score(), b.Score(); sa != sb {
		if sa > sb {
			return -1
		}
		return 1
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// CountNodes 统计森林中的节点总数
func CountNodes(roots []*models.CommentNode) int {
	n := len(roots)
	for _, r := range roots {
		n += CountNodes(r.Replies)
	}
	return n
}

// PruneDepth 返回只保留 maxDepth 层的副本，根为第 1 层。maxDepth <= 0 不裁剪。
func PruneDepth(roots []*models.CommentNode, maxDepth int) []*models.CommentNode {
	if maxDepth <= 0 {
		return roots
	}
	return pruneLevel(roots, 1, maxDepth)
}

func pruneLevel(nodes []*models.CommentNode, depth, maxDepth int) []*models.CommentNode {
	if len(nodes) == 0 {
		return nodes
	}
	out := make([]*models.CommentNode, len(nodes))
	for i, n := range nodes {
		cp := *n
		if depth >= maxDepth {
			cp.Replies = []*models.CommentNode{}
		} else {
			cp.Replies = pruneLevel(n.Replies, depth+1, maxDepth)
		}
		out[i] = &cp
	}
	return out
}
