// Package optimizer provides CloudFormation optimization suggestions.
// It inspects the properties of a built template for security, cost,
// performance and reliability improvements.
package optimizer

import (
	"sort"

	wetwire "github.com/lex00/wetwire-eks-go"
)

// Options configures the optimizer.
type Options struct {
	// Category filters suggestions: "all", "security", "cost", "performance", "reliability"
	Category string
}

// Result contains optimization suggestions.
type Result struct {
	Suggestions []wetwire.OptimizeSuggestion
	Summary     wetwire.OptimizeSummary
}

// Rule represents an optimization rule. Rules with an empty Type apply to
// every resource.
type Rule struct {
	ID       string
	Category string
	Type     string
	Check    func(tmpl *wetwire.Template, name string, res wetwire.ResourceDef) *wetwire.OptimizeSuggestion
}

// Optimize analyzes every resource of tmpl and returns optimization suggestions
// ordered by resource and rule.
func Optimize(tmpl *wetwire.Template, opts Options) (*Result, error) {
	category := opts.Category
	if category == "" {
		category = "all"
	}

	names := make([]string, 0, len(tmpl.Resources))
	for name := range tmpl.Resources {
		names = append(names, name)
	}
	sort.Strings(names)

	result := &Result{}
	for _, name := range names {
		res := tmpl.Resources[name]
		for _, rule := range rules {
			if rule.Type != "" && rule.Type != res.Type {
				continue
			}
			if category != "all" && rule.Category != category {
				continue
			}
			if s := rule.Check(tmpl, name, res); s != nil {
				s.Rule = rule.ID
				s.Resource = name
				s.Category = rule.Category
				result.Suggestions = append(result.Suggestions, *s)
			}
		}
	}

	result.Summary = calculateSummary(result.Suggestions)
	return result, nil
}

// calculateSummary tallies suggestions by category.
func calculateSummary(suggestions []wetwire.OptimizeSuggestion) wetwire.OptimizeSummary {
	summary := wetwire.OptimizeSummary{}
	for _, s := range suggestions {
		switch s.Category {
		case "security":
			summary.Security++
		case "cost":
			summary.Cost++
		case "performance":
			summary.Performance++
		case "reliability":
			summary.Reliability++
		}
		summary.Total++
	}
	return summary
}
