package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/vesshelm/vesshelm/pkg/vesshelm"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Show the chart dependency tree",
	Long: `Prints one tree per chart without dependencies. Each chart is listed under
the charts it depends on, so a chart with several dependencies appears
more than once.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		roots, err := client.Graph()
		if err != nil {
			return err
		}
		if len(roots) == 0 {
			info("No charts configured.")
			return nil
		}
		for _, r := range roots {
			fmt.Println(renderTree(r))
		}
		return nil
	},
}

// renderTree draws node and its dependents.
func renderTree(node *vesshelm.TreeNode) string {
	return buildTree(node).Enumerator(tree.RoundedEnumerator).String()
}

func buildTree(node *vesshelm.TreeNode) *tree.Tree {
	t := tree.Root(nodeLabel(node.Chart))
	for _, child := range node.Children {
		if len(child.Children) == 0 {
			t.Child(nodeLabel(child.Chart))
			continue
		}
		t.Child(buildTree(child))
	}
	return t
}

func nodeLabel(c vesshelm.Chart) string {
	return nameStyle.Render(c.Name) + skipStyle.Render(" ("+c.Namespace+")")
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
