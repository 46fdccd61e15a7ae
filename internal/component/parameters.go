package component

import (
	"fmt"

	wetwire "github.com/lex00/wetwire-eks-go"
)

// Parameter names supplied by the parent stack.
const (
	EnvironmentName           = "EnvironmentName"
	EnvironmentType           = "EnvironmentType"
	VPCId                     = "VPCId"
	SecurityGroupLoadBalancer = "SecurityGroupLoadBalancer"
	SecurityGroupBastion      = "SecurityGroupBastion"
	Ami                       = "Ami"
	InstanceType              = "InstanceType"
	KeyName                   = "KeyName"
	AsgMin                    = "AsgMin"
	AsgMax                    = "AsgMax"
	SpotPrice                 = "SpotPrice"
	EnableScaling             = "EnableScaling"
	FileSystem                = "FileSystem"
)

func strPtr(s string) *string { return &s }

func (a *assembly) addParameters() {
	a.b.AddParameter(EnvironmentName, wetwire.Parameter{Description: "Name of the environment the component is deployed to"})
	a.b.AddParameter(EnvironmentType, wetwire.Parameter{Description: "Type of the environment, e.g. development or production"})
	a.b.AddParameter(VPCId, wetwire.Parameter{Type: "AWS::EC2::VPC::Id", Description: "VPC of the compute fleet"})

	for az := 0; az < a.cfg.MaximumAvailabilityZones; az++ {
		a.b.AddParameter(subnetParameter(az), wetwire.Parameter{
			Description: fmt.Sprintf("Compute subnet for availability zone %d, or false to skip it", az),
			Default:     strPtr("false"),
		})
	}

	a.b.AddParameter(SecurityGroupLoadBalancer, wetwire.Parameter{Description: "Security group of the load balancer"})
	a.b.AddParameter(SecurityGroupBastion, wetwire.Parameter{Description: "Security group of the bastion host"})
	a.b.AddParameter(Ami, wetwire.Parameter{Description: "AMI of the worker nodes"})
	a.b.AddParameter(InstanceType, wetwire.Parameter{Description: "EC2 instance type of the worker nodes"})
	a.b.AddParameter(KeyName, wetwire.Parameter{Description: "EC2 key pair for SSH access"})
	a.b.AddParameter(AsgMin, wetwire.Parameter{Description: "Minimum size of the auto scaling group"})
	a.b.AddParameter(AsgMax, wetwire.Parameter{Description: "Maximum size of the auto scaling group"})

	spotPrice := ""
	if a.cfg.SpotPrice != nil {
		spotPrice = *a.cfg.SpotPrice
	}
	a.b.AddParameter(SpotPrice, wetwire.Parameter{
		Description: "Maximum spot price; empty launches on-demand instances",
		Default:     strPtr(spotPrice),
	})

	enableScaling := "false"
	if a.cfg.EnableScaling != nil && *a.cfg.EnableScaling {
		enableScaling = "true"
	}
	a.b.AddParameter(EnableScaling, wetwire.Parameter{
		Description:   "Create the reservation alarms and scaling policies",
		Default:       strPtr(enableScaling),
		AllowedValues: []string{"true", "false"},
	})

	if a.cfg.EnableEFS {
		a.b.AddParameter(FileSystem, wetwire.Parameter{Description: "EFS file system mounted at /efs"})
	}
}

// applyParameterDefaults overlays parameter_defaults on the declared parameters.
func (a *assembly) applyParameterDefaults() error {
	defaults := a.cfg.ParameterDefaults
	for _, name := range defaults.Keys() {
		value, _ := defaults.Get(name)
		if !a.b.HasParameter(name) {
			return fmt.Errorf("parameter_defaults: %s is not a template parameter", name)
		}
		if err := a.b.SetParameterDefault(name, value); err != nil {
			return err
		}
	}
	return nil
}
