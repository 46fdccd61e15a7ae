// Package validation checks rendered templates.
//
// Three passes are available:
//   - the reference linter (internal/linter) on the template model
//   - offline schema checks (internal/schema) on resource properties
//   - cfn-lint-go on the YAML rendering of the template, on request
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lex00/cfn-lint-go/pkg/lint"
	"github.com/rs/zerolog/log"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/internal/linter"
	"github.com/lex00/wetwire-eks-go/internal/schema"
	"github.com/lex00/wetwire-eks-go/internal/template"
)

// CfnLintResult contains the result of running cfn-lint.
type CfnLintResult struct {
	Passed        bool     `json:"passed"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	Informational []string `json:"informational"`
}

// TotalIssues returns the total number of issues found.
func (r CfnLintResult) TotalIssues() int {
	return len(r.Errors) + len(r.Warnings) + len(r.Informational)
}

// Options selects the validation passes.
type Options struct {
	// CfnLint also runs cfn-lint-go on the rendered template.
	CfnLint bool
	// Lint configures the reference linter.
	Lint linter.Options
	// Schema configures the offline schema pass.
	Schema schema.Options
}

// Result contains all validation results for a template.
type Result struct {
	Lint    linter.Result  `json:"lint"`
	Schema  *schema.Result `json:"schema,omitempty"`
	CfnLint *CfnLintResult `json:"cfn_lint,omitempty"`
}

// Passed reports whether every pass that ran found no errors.
func (r *Result) Passed() bool {
	if !r.Lint.Success {
		return false
	}
	if r.Schema != nil && !r.Schema.Valid {
		return false
	}
	return r.CfnLint == nil || r.CfnLint.Passed
}

// Errors returns the error messages of every pass.
func (r *Result) Errors() []string {
	var errs []string
	for _, issue := range r.Lint.Errors() {
		errs = append(errs, issue.String())
	}
	if r.Schema != nil {
		for _, e := range r.Schema.Errors {
			errs = append(errs, e.String())
		}
	}
	if r.CfnLint != nil {
		errs = append(errs, r.CfnLint.Errors...)
	}
	return errs
}

// Warnings returns the warning messages of every pass.
func (r *Result) Warnings() []string {
	var warnings []string
	for _, issue := range r.Lint.Warnings() {
		warnings = append(warnings, issue.String())
	}
	if r.Schema != nil {
		for _, w := range r.Schema.Warnings {
			warnings = append(warnings, w.String())
		}
	}
	if r.CfnLint != nil {
		warnings = append(warnings, r.CfnLint.Warnings...)
	}
	return warnings
}

// ValidateTemplate runs the reference linter, the schema pass and, when
// requested, cfn-lint.
func ValidateTemplate(tmpl *wetwire.Template, opts Options) (*Result, error) {
	result := &Result{
		Lint:   linter.Lint(tmpl, opts.Lint),
		Schema: schema.ValidateTemplate(tmpl, opts.Schema),
	}
	log.Debug().
		Int("issues", len(result.Lint.Issues)).
		Int("schema_errors", len(result.Schema.Errors)).
		Msg("offline validation finished")

	if opts.CfnLint {
		cfnResult, err := RunCfnLintTemplate(tmpl)
		if err != nil {
			return nil, fmt.Errorf("running cfn-lint: %w", err)
		}
		result.CfnLint = cfnResult
	}

	return result, nil
}

// RunCfnLintTemplate renders tmpl to a temporary YAML file and lints it.
func RunCfnLintTemplate(tmpl *wetwire.Template) (*CfnLintResult, error) {
	data, err := template.ToYAML(tmpl)
	if err != nil {
		return nil, fmt.Errorf("rendering template: %w", err)
	}

	dir, err := os.MkdirTemp("", "wetwire-eks-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "template.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing template: %w", err)
	}

	return RunCfnLint(path)
}

// RunCfnLint runs cfn-lint-go on the given template file.
func RunCfnLint(templatePath string) (*CfnLintResult, error) {
	if _, err := os.Stat(templatePath); err != nil {
		return &CfnLintResult{
			Passed: false,
			Errors: []string{fmt.Sprintf("Template file not found: %s", templatePath)},
		}, nil
	}

	linter := lint.New(lint.Options{})
	matches, err := linter.LintFile(templatePath)
	if err != nil {
		return &CfnLintResult{
			Passed: false,
			Errors: []string{fmt.Sprintf("Linter error: %v", err)},
		}, nil
	}

	result := &CfnLintResult{
		Errors:        []string{},
		Warnings:      []string{},
		Informational: []string{},
	}

	for _, match := range matches {
		formatted := formatMatch(match)

		switch match.Level {
		case "Error":
			result.Errors = append(result.Errors, formatted)
		case "Warning":
			result.Warnings = append(result.Warnings, formatted)
		default:
			result.Informational = append(result.Informational, formatted)
		}
	}

	// Warnings are acceptable.
	result.Passed = len(result.Errors) == 0
	log.Debug().Str("template", templatePath).Int("matches", len(matches)).Msg("cfn-lint finished")

	return result, nil
}

// formatMatch formats a cfn-lint-go match for display.
func formatMatch(match lint.Match) string {
	pathStr := ""
	if len(match.Location.Path) > 0 {
		parts := make([]string, len(match.Location.Path))
		for i, p := range match.Location.Path {
			parts[i] = fmt.Sprintf("%v", p)
		}
		pathStr = strings.Join(parts, "/")
	}

	if pathStr != "" {
		return fmt.Sprintf("%s: %s (at %s)", match.Rule.ID, match.Message, pathStr)
	}
	return fmt.Sprintf("%s: %s", match.Rule.ID, match.Message)
}
