// Package dag orders charts by their depends relation.
//
// The graph is rebuilt for every call: one node per chart, indexed by its
// position in the input, and an edge from each dependency to its dependent.
// Edges are checked for cycles as they are added, so a cyclic configuration
// fails naming the chart whose edge closed the loop.
package dag

import (
	"sort"

	"github.com/vesshelm/vesshelm/internal/config"
)

type graph struct {
	charts []config.Chart
	byName map[string][]int
	out    [][]int
	in     []int
}

func build(charts []config.Chart) (*graph, error) {
	g := &graph{
		charts: charts,
		byName: make(map[string][]int, len(charts)),
		out:    make([][]int, len(charts)),
		in:     make([]int, len(charts)),
	}
	for i, ch := range charts {
		g.byName[ch.Name] = append(g.byName[ch.Name], i)
	}

	for child, ch := range charts {
		for _, dep := range ch.Depends {
			parents, ok := g.byName[dep]
			if !ok {
				return nil, &UnknownDependencyError{Chart: ch.Name, Dependency: dep}
			}
			for _, parent := range parents {
				if err := g.addEdge(parent, child); err != nil {
					return nil, err
				}
			}
		}
	}
	return g, nil
}

// addEdge adds parent -> child unless child already reaches parent.
func (g *graph) addEdge(parent, child int) error {
	if parent == child || g.reaches(child, parent) {
		return &CycleError{Chart: g.charts[child].Name}
	}
	g.out[parent] = append(g.out[parent], child)
	g.in[child]++
	return nil
}

func (g *graph) reaches(from, to int) bool {
	visited := make([]bool, len(g.charts))
	stack := []int{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == to {
			return true
		}
		if visited[n] {
			continue
		}
		visited[n] = true
		stack = append(stack, g.out[n]...)
	}
	return false
}

// Sort returns the charts in dependency order: every chart appears after all
// charts it depends on. Independent charts keep their input order where the
// constraints allow it.
func Sort(charts []config.Chart) ([]config.Chart, error) {
	g, err := build(charts)
	if err != nil {
		return nil, err
	}

	in := make([]int, len(g.in))
	copy(in, g.in)

	queue := make([]int, 0, len(charts))
	for i := range charts {
		if in[i] == 0 {
			queue = append(queue, i)
		}
	}

	sorted := make([]config.Chart, 0, len(charts))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		sorted = append(sorted, charts[n])
		for _, m := range g.out[n] {
			in[m]--
			if in[m] == 0 {
				queue = append(queue, m)
			}
		}
	}

	if len(sorted) != len(charts) {
		for i := range charts {
			if in[i] > 0 {
				return nil, &CycleError{Chart: charts[i].Name}
			}
		}
	}
	return sorted, nil
}

// DependentsOf returns the charts that list target in their depends,
// sorted by name. The whole graph is validated first.
func DependentsOf(charts []config.Chart, target string) ([]config.Chart, error) {
	g, err := build(charts)
	if err != nil {
		return nil, err
	}
	return g.children(target)
}

func (g *graph) children(name string) ([]config.Chart, error) {
	nodes, ok := g.byName[name]
	if !ok {
		return nil, &ChartNotFoundError{Chart: name}
	}

	seen := make(map[int]bool)
	var out []config.Chart
	for _, n := range nodes {
		for _, m := range g.out[n] {
			if !seen[m] {
				seen[m] = true
				out = append(out, g.charts[m])
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
