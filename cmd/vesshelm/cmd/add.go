package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/vesshelm/vesshelm/internal/config"
	"github.com/vesshelm/vesshelm/pkg/vesshelm"
)

var (
	addArtifactHub string
	addRepoName    string
	addRepoURL     string
	addRepoType    string
	addName        string
	addNamespace   string
	addVersion     string
	addChartPath   string
	addComment     string
	addYes         bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a chart to the configuration",
	Long: `Appends a chart to the configuration file without reformatting it. The
chart is described with flags, or looked up on Artifact Hub with
--artifacthub (a package URL or repo/package). A repository that is not
configured yet is added too. The result is validated before it is written.

Examples:
  vesshelm add --artifacthub bitnami/redis --namespace cache
  vesshelm add --name podinfo --repo-name podinfo --repo-url https://stefanprodan.github.io/podinfo --version 6.5.0 --namespace apps
  vesshelm add --name tools --chart-path ./local/tools --namespace tools`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		var req *vesshelm.AddRequest
		if addArtifactHub != "" {
			req, err = client.FromArtifactHub(cmd.Context(), addArtifactHub, addNamespace)
			if err != nil {
				return err
			}
			if addName != "" {
				req.Chart.Name = addName
			}
			if addVersion != "" {
				req.Chart.Version = addVersion
			}
			if addComment != "" {
				req.Chart.Comment = addComment
			}
		} else {
			req, err = addRequestFromFlags()
			if err != nil {
				return err
			}
		}
		if req.Chart.Namespace == "" {
			req.Chart.Namespace = req.Chart.Name
		}

		printAddRequest(req)
		if !addYes {
			ok, err := confirm("Add to " + client.ConfigPath() + "?")
			if err != nil {
				return err
			}
			if !ok {
				info("Aborted.")
				return nil
			}
		}

		if err := client.Add(*req); err != nil {
			return err
		}
		info("%s Added %s. Run 'vesshelm sync %s' to vendor it.", mark(okStyle, "OK"), nameStyle.Render(req.Chart.Name), req.Chart.Name)
		return nil
	},
}

// addRequestFromFlags builds the chart and repository from the add flags.
func addRequestFromFlags() (*vesshelm.AddRequest, error) {
	if addName == "" {
		return nil, errors.New("--name is required unless --artifacthub is given")
	}
	req := &vesshelm.AddRequest{Chart: config.Chart{
		Name:      addName,
		RepoName:  addRepoName,
		Namespace: addNamespace,
		Version:   addVersion,
		ChartPath: addChartPath,
		Comment:   addComment,
	}}

	if addRepoURL != "" {
		if addRepoName == "" {
			return nil, errors.New("--repo-name is required with --repo-url")
		}
		req.Repository = &config.Repository{
			Name: addRepoName,
			URL:  addRepoURL,
			Type: config.RepoType(addRepoType),
		}
	}
	return req, nil
}

func printAddRequest(req *vesshelm.AddRequest) {
	c := req.Chart
	info("Chart %s", nameStyle.Render(c.Name))
	info("  namespace:  %s", c.Namespace)
	if c.RepoName != "" {
		info("  repository: %s", c.RepoName)
	}
	if c.Version != "" {
		info("  version:    %s", c.Version)
	}
	if c.ChartPath != "" {
		info("  chart path: %s", c.ChartPath)
	}
	if r := req.Repository; r != nil {
		info("New repository %s (%s) %s", nameStyle.Render(r.Name), r.Kind().Label(), r.URL)
	}
}

func init() {
	f := addCmd.Flags()
	f.StringVar(&addArtifactHub, "artifacthub", "", "Artifact Hub package URL or repo/package")
	f.StringVar(&addRepoName, "repo-name", "", "repository the chart comes from")
	f.StringVar(&addRepoURL, "repo-url", "", "URL of a repository to add")
	f.StringVar(&addRepoType, "repo-type", "", "type of the new repository: helm, oci or git (default helm)")
	f.StringVar(&addName, "name", "", "chart name")
	f.StringVarP(&addNamespace, "namespace", "n", "", "namespace to deploy into (default: the chart name)")
	f.StringVar(&addVersion, "version", "", "chart version, or git ref for git repositories")
	f.StringVar(&addChartPath, "chart-path", "", "chart directory (local charts) or path inside a git repository")
	f.StringVar(&addComment, "comment", "", "comment stored with the chart")
	f.BoolVarP(&addYes, "yes", "y", false, "skip interactive confirmation")
	rootCmd.AddCommand(addCmd)
}
