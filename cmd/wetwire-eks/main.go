// Command wetwire-eks renders the EKS compute component as a CloudFormation template.
//
// Usage:
//
//	wetwire-eks build -c eks.config.yaml        Generate CloudFormation template
//	wetwire-eks validate -c eks.config.yaml     Check references and run cfn-lint
//	wetwire-eks preview --param EnableScaling=true
//	wetwire-eks version                         Show version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultConfigFile = "eks.config.yaml"

type globalOptions struct {
	verbose   bool
	logFormat string
}

func newRootCmd() *cobra.Command {
	var opts globalOptions

	rootCmd := &cobra.Command{
		Use:   "wetwire-eks",
		Short: "Generate the EKS compute CloudFormation template",
		Long: `wetwire-eks renders an auto-scaled EC2 worker fleet bound to an EKS cluster
as a CloudFormation template.

Describe the component in a YAML or HCL file:

    component_name: eks
    maximum_availability_zones: 3
    volume_size: 50

Then generate the template:

    wetwire-eks build -c eks.config.yaml -f yaml`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configureLogging(opts.verbose, opts.logFormat, cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "console", "Log format: console or json")

	rootCmd.AddCommand(
		newBuildCmd(),
		newValidateCmd(),
		newPreviewCmd(),
		newGraphCmd(),
		newOptimizeCmd(),
		newDiffCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wetwire-eks %s\n", getVersion())
		},
	}
}
