package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/internal/optimizer"
)

// validCategories lists all valid optimization categories.
var validCategories = map[string]bool{
	"all":         true,
	"security":    true,
	"cost":        true,
	"performance": true,
	"reliability": true,
}

func isValidCategory(category string) bool {
	return validCategories[category]
}

// newOptimizeCmd creates the "optimize" subcommand for suggesting improvements.
func newOptimizeCmd() *cobra.Command {
	var (
		configFile   string
		outputFormat string
		category     string
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Suggest improvements to the generated template",
		Long: `Optimize inspects the generated template and suggests improvements
for security, cost, performance, and reliability.

Categories:
    security     - API endpoint exposure, wildcard IAM policies
    cost         - spot instances, log retention
    performance  - volume types
    reliability  - availability zones, update policies, scaling

Examples:
    wetwire-eks optimize
    wetwire-eks optimize --category security
    wetwire-eks optimize -f json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isValidCategory(category) {
				return fmt.Errorf("invalid category: %s (valid: all, security, cost, performance, reliability)", category)
			}
			return runOptimize(cmd.OutOrStdout(), configFile, outputFormat, category)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", defaultConfigFile, "Component config file")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringVar(&category, "category", "all", "Category: all, security, cost, performance, or reliability")

	return cmd
}

func runOptimize(w io.Writer, configFile, format, category string) error {
	built, err := assembleFromFile(configFile)
	if err != nil {
		return fmt.Errorf("optimize failed: %w", err)
	}

	optResult, err := optimizer.Optimize(built.Template, optimizer.Options{Category: category})
	if err != nil {
		return fmt.Errorf("optimize failed: %w", err)
	}

	return outputOptimizeResult(w, wetwire.OptimizeResult{
		Success:       true,
		Suggestions:   optResult.Suggestions,
		ResourceCount: len(built.Template.Resources),
		Summary:       optResult.Summary,
	}, format)
}

func outputOptimizeResult(w io.Writer, result wetwire.OptimizeResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		if len(result.Suggestions) == 0 {
			fmt.Fprintf(w, "Analyzed %d resources. No optimization suggestions.\n", result.ResourceCount)
			return nil
		}

		fmt.Fprintf(w, "Analyzed %d resources. Found %d suggestions:\n\n", result.ResourceCount, result.Summary.Total)

		byCat := map[string][]wetwire.OptimizeSuggestion{}
		for _, s := range result.Suggestions {
			byCat[s.Category] = append(byCat[s.Category], s)
		}

		for _, cat := range []string{"security", "cost", "performance", "reliability"} {
			suggestions := byCat[cat]
			if len(suggestions) == 0 {
				continue
			}

			fmt.Fprintf(w, "=== %s (%d) ===\n", strings.ToUpper(cat[:1])+cat[1:], len(suggestions))
			for _, s := range suggestions {
				fmt.Fprintf(w, "\n[%s] %s (%s)\n", s.Severity, s.Title, s.Rule)
				fmt.Fprintf(w, "  Resource: %s\n", s.Resource)
				fmt.Fprintf(w, "  %s\n", s.Description)
				fmt.Fprintf(w, "  Suggestion: %s\n", s.Suggestion)
			}
			fmt.Fprintln(w)
		}

		fmt.Fprintf(w, "Summary: %d security, %d cost, %d performance, %d reliability\n",
			result.Summary.Security, result.Summary.Cost,
			result.Summary.Performance, result.Summary.Reliability)

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}
