package dag

import "fmt"

// UnknownDependencyError reports a depends entry naming no chart.
type UnknownDependencyError struct {
	Chart      string
	Dependency string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("chart '%s' depends on unknown chart '%s'", e.Chart, e.Dependency)
}

// CycleError reports that the dependency relation is not acyclic. Chart is
// the dependent whose edge would have closed the cycle.
type CycleError struct {
	Chart string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("circular dependency detected involving chart '%s'", e.Chart)
}

// ChartNotFoundError reports a lookup of a chart that is not in the graph.
type ChartNotFoundError struct {
	Chart string
}

func (e *ChartNotFoundError) Error() string {
	return fmt.Sprintf("chart '%s' not found", e.Chart)
}
