package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lex00/wetwire-eks-go/internal/graph"
)

func newGraphCmd() *cobra.Command {
	var (
		configFile        string
		outputFormat      string
		includeParameters bool
		clusterByType     bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Generate DOT graph of resource dependencies",
		Long: `Generate a DOT or Mermaid format graph showing resource dependencies.

The output can be rendered with Graphviz:
    wetwire-eks graph | dot -Tpng -o deps.png

Or used in GitHub markdown (Mermaid format):
    wetwire-eks graph -f mermaid

Examples:
    wetwire-eks graph
    wetwire-eks graph -p              # include parameters
    wetwire-eks graph -C              # cluster by service
    wetwire-eks graph -f mermaid      # mermaid format`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd.OutOrStdout(), configFile, outputFormat, includeParameters, clusterByType)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", defaultConfigFile, "Component config file")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().BoolVarP(&includeParameters, "include-parameters", "p", false, "Include parameter nodes in the graph")
	cmd.Flags().BoolVarP(&clusterByType, "cluster", "C", false, "Cluster resources by AWS service")

	return cmd
}

func runGraph(w io.Writer, configFile, format string, includeParams, cluster bool) error {
	var graphFormat graph.Format
	switch format {
	case "dot":
		graphFormat = graph.FormatDOT
	case "mermaid":
		graphFormat = graph.FormatMermaid
	default:
		return fmt.Errorf("unknown format: %s (use 'dot' or 'mermaid')", format)
	}

	built, err := assembleFromFile(configFile)
	if err != nil {
		return fmt.Errorf("graph failed: %w", err)
	}

	gen := &graph.Generator{
		Format:            graphFormat,
		IncludeParameters: includeParams,
		ClusterByType:     cluster,
	}
	return gen.Generate(built.Template, w)
}
