package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lex00/wetwire-eks-go/internal/resolve"
)

func newPreviewCmd() *cobra.Command {
	var (
		configFile   string
		outputFormat string
		params       []string
		substitute   bool
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the template as CloudFormation would deploy it",
		Long: `Preview evaluates the template conditions for a set of parameter values.

Resources whose condition is false are dropped, Fn::If picks its branch and
AWS::NoValue properties disappear. Parameters without a default must be given.

Examples:
    wetwire-eks preview --param EnvironmentName=dev --param Ami=ami-123 ...
    wetwire-eks preview --param EnableScaling=true --substitute -f json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseParams(params)
			if err != nil {
				return err
			}
			return runPreview(cmd.OutOrStdout(), configFile, outputFormat, values, substitute)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", defaultConfigFile, "Component config file")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "yaml", "Output format: json or yaml")
	cmd.Flags().StringArrayVar(&params, "param", nil, "Parameter value as Key=Value (repeatable)")
	cmd.Flags().BoolVar(&substitute, "substitute", false, "Replace parameter references with their values")

	return cmd
}

// parseParams turns Key=Value pairs into a map. A later value wins.
func parseParams(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected Key=Value", pair)
		}
		values[key] = value
	}
	return values, nil
}

func runPreview(w io.Writer, configFile, format string, params map[string]string, substitute bool) error {
	built, err := assembleFromFile(configFile)
	if err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}

	resolved, err := resolve.Resolve(built.Template, params, resolve.Options{SubstituteParameters: substitute})
	if err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}

	for _, name := range resolved.Skipped {
		log.Info().Str("resource", name).Msg("skipped by condition")
	}
	for _, warning := range resolved.Warnings {
		log.Warn().Msg(warning)
	}

	data, err := renderTemplate(resolved.Template, format)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}
