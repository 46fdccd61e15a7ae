package linter

import (
	"fmt"
	"sort"

	wetwire "github.com/lex00/wetwire-eks-go"
)

// Severity levels for lint issues.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Issue is a single lint finding.
type Issue struct {
	Rule     string `json:"rule"`
	Message  string `json:"message"`
	Location string `json:"location"`
	Severity string `json:"severity"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s [%s] %s: %s", i.Location, i.Rule, i.Severity, i.Message)
}

// Result contains the outcome of linting.
type Result struct {
	Success bool    `json:"success"`
	Issues  []Issue `json:"issues"`
}

// Errors returns the issues with error severity.
func (r Result) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the issues with warning severity.
func (r Result) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r Result) filter(severity string) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

// Options configures the linter.
type Options struct {
	// Rules to enable. If empty, all rules are enabled.
	EnabledRules []string
}

// Lint runs the enabled rules over a template. Success is false only when an
// error-severity issue is found.
func Lint(tmpl *wetwire.Template, opts Options) Result {
	var issues []Issue
	for _, rule := range getRules(opts) {
		issues = append(issues, rule.Check(tmpl)...)
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Location != issues[j].Location {
			return issues[i].Location < issues[j].Location
		}
		return issues[i].Rule < issues[j].Rule
	})

	result := Result{Issues: issues}
	result.Success = len(result.Errors()) == 0
	return result
}

// getRules returns the rules to use based on options.
func getRules(opts Options) []Rule {
	all := AllRules()

	if len(opts.EnabledRules) == 0 {
		return all
	}

	enabled := make(map[string]bool)
	for _, id := range opts.EnabledRules {
		enabled[id] = true
	}

	var filtered []Rule
	for _, r := range all {
		if enabled[r.ID()] {
			filtered = append(filtered, r)
		}
	}

	return filtered
}
