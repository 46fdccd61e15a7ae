package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/internal/component"
	"github.com/lex00/wetwire-eks-go/internal/config"
	"github.com/lex00/wetwire-eks-go/internal/template"
)

func newBuildCmd() *cobra.Command {
	var (
		configFile   string
		outputFormat string
		outputFile   string
		result       bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate CloudFormation template from a component config",
		Long: `Build loads a component configuration and generates the CloudFormation template.

Examples:
    wetwire-eks build
    wetwire-eks build -c eks.config.hcl -o template.json
    wetwire-eks build --format yaml
    wetwire-eks build --result`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.OutOrStdout(), configFile, outputFormat, outputFile, result)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", defaultConfigFile, "Component config file (YAML, JSON or HCL)")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&result, "result", false, "Print a JSON build result instead of the raw template")

	return cmd
}

// assembleFromFile loads, validates and assembles a component config.
func assembleFromFile(configFile string) (*component.Result, error) {
	cfg, err := config.NewLoader(log.Logger).Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return component.New(log.Logger).Build(cfg)
}

func runBuild(w io.Writer, configFile, format, outputFile string, asResult bool) error {
	built, err := assembleFromFile(configFile)

	if asResult {
		buildResult := wetwire.BuildResult{Success: err == nil}
		if err != nil {
			buildResult.Errors = []string{err.Error()}
		} else {
			buildResult.Template = *built.Template
			buildResult.Resources = built.Order
		}
		data, mErr := json.MarshalIndent(buildResult, "", "  ")
		if mErr != nil {
			return mErr
		}
		fmt.Fprintln(w, string(data))
		if err != nil {
			return fmt.Errorf("build failed")
		}
		return nil
	}

	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	data, err := renderTemplate(built.Template, format)
	if err != nil {
		return err
	}

	if outputFile == "" {
		fmt.Fprintln(w, string(data))
		return nil
	}

	log.Info().Str("file", outputFile).Int("resources", len(built.Order)).Msg("writing template")
	return os.WriteFile(outputFile, data, 0o644)
}

func renderTemplate(tmpl *wetwire.Template, format string) ([]byte, error) {
	switch format {
	case "json":
		return template.ToJSON(tmpl)
	case "yaml":
		return template.ToYAML(tmpl)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}
