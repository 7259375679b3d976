package dag

import (
	"sort"

	"github.com/vesshelm/vesshelm/internal/config"
)

// TreeNode is a chart and the charts that depend on it.
type TreeNode struct {
	Chart    config.Chart
	Children []*TreeNode
}

// BuildTree returns one tree per chart without dependencies, roots sorted
// by name. A chart with several dependencies appears under each of them.
func BuildTree(charts []config.Chart) ([]*TreeNode, error) {
	g, err := build(charts)
	if err != nil {
		return nil, err
	}

	var roots []*TreeNode
	for _, ch := range charts {
		if len(ch.Depends) == 0 {
			roots = append(roots, g.subtree(ch))
		}
	}
	sort.SliceStable(roots, func(i, j int) bool { return roots[i].Chart.Name < roots[j].Chart.Name })
	return roots, nil
}

// subtree terminates because the graph is acyclic.
func (g *graph) subtree(ch config.Chart) *TreeNode {
	node := &TreeNode{Chart: ch}
	kids, _ := g.children(ch.Name)
	for _, k := range kids {
		node.Children = append(node.Children, g.subtree(k))
	}
	return node
}
