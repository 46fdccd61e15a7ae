package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/internal/schema"
	"github.com/lex00/wetwire-eks-go/internal/stack"
	"github.com/lex00/wetwire-eks-go/internal/template"
	"github.com/lex00/wetwire-eks-go/internal/validation"
)

var errValidationFailed = errors.New("validation failed")

type validateOptions struct {
	configFile   string
	outputFormat string
	cfnLint      bool
	strict       bool
	remote       bool
	region       string
}

// remoteValidator is swapped out in tests.
var remoteValidator = func(region string) (templateValidator, error) {
	return stack.NewDefaultValidator(region)
}

type templateValidator interface {
	Validate(ctx context.Context, body []byte) (*stack.Report, error)
}

// newValidateCmd creates the "validate" subcommand for checking the rendered template.
func newValidateCmd() *cobra.Command {
	var opts validateOptions

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the generated template",
		Long: `Validate assembles the template and checks it.

Checks performed:
  - Reference validity: every Ref, Fn::GetAtt, Fn::Sub variable and condition is defined
  - Scaling consistency: alarms and scaling policies appear together
  - Resource schemas: required properties, property types and allowed values
    (--strict also reports unknown properties)
  - cfn-lint rules (--cfn-lint)
  - CloudFormation ValidateTemplate API (--remote, needs AWS credentials)

Examples:
    wetwire-eks validate
    wetwire-eks validate --cfn-lint --format json
    wetwire-eks validate --remote --region eu-west-1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configFile, "config", "c", defaultConfigFile, "Component config file")
	cmd.Flags().StringVarP(&opts.outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&opts.cfnLint, "cfn-lint", false, "Also run cfn-lint rules")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Warn about properties missing from the resource schemas")
	cmd.Flags().BoolVar(&opts.remote, "remote", false, "Also validate with the CloudFormation API")
	cmd.Flags().StringVar(&opts.region, "region", "", "AWS region for --remote")

	return cmd
}

func runValidate(ctx context.Context, w io.Writer, opts validateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	built, err := assembleFromFile(opts.configFile)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	tmpl := built.Template

	var (
		local  *validation.Result
		report *stack.Report
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		local, err = validation.ValidateTemplate(tmpl, validation.Options{
			CfnLint: opts.cfnLint,
			Schema:  schema.Options{Strict: opts.strict},
		})
		return err
	})
	if opts.remote {
		g.Go(func() error {
			validator, err := remoteValidator(opts.region)
			if err != nil {
				return err
			}
			body, err := template.ToJSON(tmpl)
			if err != nil {
				return err
			}
			report, err = validator.Validate(gctx, body)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	result := wetwire.ValidateResult{
		Success:   local.Passed(),
		Resources: len(tmpl.Resources),
		Errors:    local.Errors(),
		Warnings:  local.Warnings(),
	}
	if report != nil {
		log.Info().Strs("capabilities", report.Capabilities).Int("parameters", len(report.Parameters)).
			Msg("CloudFormation accepted the template")
		if report.RequiresIAM() {
			result.Warnings = append(result.Warnings, "stack requires "+report.Capabilities[0]+": "+report.CapabilitiesReason)
		}
	}

	return outputValidateResult(w, result, opts.outputFormat)
}

func outputValidateResult(w io.Writer, result wetwire.ValidateResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		if result.Success {
			fmt.Fprintf(w, "Validation passed: %d resources OK\n", result.Resources)
			for _, warnMsg := range result.Warnings {
				fmt.Fprintf(w, "  WARNING: %s\n", warnMsg)
			}
			return nil
		}

		fmt.Fprintln(w, "Validation FAILED:")
		for _, errMsg := range result.Errors {
			fmt.Fprintf(w, "  ERROR: %s\n", errMsg)
		}
		for _, warnMsg := range result.Warnings {
			fmt.Fprintf(w, "  WARNING: %s\n", warnMsg)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		return errValidationFailed
	}
	return nil
}

// validateBuilt runs the offline passes and fails on any error.
func validateBuilt(tmpl *wetwire.Template) error {
	result, err := validation.ValidateTemplate(tmpl, validation.Options{})
	if err != nil {
		return err
	}
	if !result.Passed() {
		return fmt.Errorf("%w: %s", errValidationFailed, strings.Join(result.Errors(), "; "))
	}
	return nil
}
