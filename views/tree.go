// Package views derives the read-side structures shown next to posts: the
// comment thread, the tag cloud, archive months and post summaries.
package views

import "presslog/models"

type CommentNode struct {
	Comment  models.Comment `json:"comment"`
	Depth    int            `json:"depth"`
	Children []*CommentNode `json:"children"`
}

// BuildTree nests a flat comment list under its parents. Roots and siblings keep
// their input order. Comments that cannot be reached from a root, because their
// parent is missing or their parent chain loops, are returned in dropped.
func BuildTree(comments []models.Comment) (roots []*CommentNode, dropped []uint) {
	nodes := make([]CommentNode, len(comments))
	children := make(map[uint][]int, len(comments))
	var rootIdx []int

	for i, c := range comments {
		nodes[i] = CommentNode{Comment: c, Children: []*CommentNode{}}
		if c.ParentID == nil {
			rootIdx = append(rootIdx, i)
		} else {
			children[*c.ParentID] = append(children[*c.ParentID], i)
		}
	}

	placed := make([]bool, len(nodes))
	seen := make(map[uint]bool, len(nodes))

	var attach func(i, depth int)
	attach = func(i, depth int) {
		n := &nodes[i]
		n.Depth = depth
		for _, ci := range children[n.Comment.ID] {
			if placed[ci] || seen[nodes[ci].Comment.ID] {
				continue
			}
			placed[ci] = true
			seen[nodes[ci].Comment.ID] = true
			n.Children = append(n.Children, &nodes[ci])
			attach(ci, depth+1)
		}
	}

	roots = make([]*CommentNode, 0, len(rootIdx))
	for _, i := range rootIdx {
		if seen[nodes[i].Comment.ID] {
			continue
		}
		placed[i] = true
		seen[nodes[i].Comment.ID] = true
		roots = append(roots, &nodes[i])
		attach(i, 0)
	}

	for i, ok := range placed {
		if !ok {
			dropped = append(dropped, nodes[i].Comment.ID)
		}
	}
	return roots, dropped
}

// Walk visits every node depth first, parents before children.
func Walk(roots []*CommentNode, fn func(n *CommentNode)) {
	for _, n := range roots {
		fn(n)
		Walk(n.Children, fn)
	}
}
