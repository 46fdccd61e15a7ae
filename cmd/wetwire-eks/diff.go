package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/lex00/wetwire-eks-go/internal/differ"
)

func newDiffCmd() *cobra.Command {
	var (
		configFile   string
		outputFormat string
		ignoreOrder  bool
	)

	cmd := &cobra.Command{
		Use:   "diff <template> [template]",
		Short: "Compare templates semantically",
		Long: `Diff compares a deployed or previously generated template with the one the
current config produces. With two arguments the two files are compared.

Examples:
    wetwire-eks diff deployed.yaml
    wetwire-eks diff old.json new.json --format json
    wetwire-eks diff deployed.yaml --ignore-order`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.OutOrStdout(), args, configFile, outputFormat, ignoreOrder)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", defaultConfigFile, "Component config file used when one template is given")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&ignoreOrder, "ignore-order", false, "Ignore list element order")

	return cmd
}

func runDiff(w io.Writer, args []string, configFile, format string, ignoreOrder bool) error {
	opts := differ.Options{IgnoreOrder: ignoreOrder}

	var (
		result *differ.Result
		err    error
	)
	if len(args) == 2 {
		result, err = differ.CompareFiles(args[0], args[1], opts)
	} else {
		result, err = diffAgainstConfig(args[0], configFile, opts)
	}
	if err != nil {
		return err
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(struct {
			Diff    any `json:"diff"`
			Summary any `json:"summary"`
		}{result.Diff, result.Summary}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
	case "text":
		renderDiff(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}

func diffAgainstConfig(path, configFile string, opts differ.Options) (*differ.Result, error) {
	old, err := differ.LoadTemplate(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	built, err := assembleFromFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("diff failed: %w", err)
	}
	return differ.Compare(old, built.Template, opts)
}

func renderDiff(w io.Writer, result *differ.Result) {
	if result.Empty() {
		fmt.Fprintln(w, "No differences")
		return
	}

	var rows [][]string
	for _, e := range result.Diff.Added {
		rows = append(rows, []string{"added", e.Resource, e.Type, ""})
	}
	for _, e := range result.Diff.Removed {
		rows = append(rows, []string{"removed", e.Resource, e.Type, ""})
	}
	for _, e := range result.Diff.Modified {
		rows = append(rows, []string{"modified", e.Resource, e.Type, strings.Join(e.Changes, "\n")})
	}
	for _, change := range result.Diff.Params {
		rows = append(rows, []string{"parameter", change, "", ""})
	}
	for _, change := range result.Diff.Outputs {
		rows = append(rows, []string{"output", change, "", ""})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Change", "Name", "Type", "Details"})
	table.SetRowLine(true)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()

	fmt.Fprintf(w, "%d added, %d removed, %d modified\n",
		result.Summary.Added, result.Summary.Removed, result.Summary.Modified)
}
