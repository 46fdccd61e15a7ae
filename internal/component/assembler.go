// Package component assembles the EKS compute CloudFormation template.
//
// The template describes an auto-scaled EC2 fleet joined to an EKS cluster:
// a security group with load balancer and bastion ingress, the instance role
// and profile, a launch configuration with its bootstrap script, the auto
// scaling group, a log group and, when eks_autoscale is configured, reservation
// alarms with their scaling policies.
//
// Optional configuration keys gate resources at generation time. The
// EnableScaling, SpotPrice and SubnetCompute<N> parameters gate them again at
// deploy time through template conditions.
package component

import (
	"fmt"

	"github.com/rs/zerolog"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/internal/config"
	"github.com/lex00/wetwire-eks-go/internal/template"
)

// Logical names of the resources the assembler emits.
const (
	EksCluster              = "EksCluster"
	EksClusterRole          = "EksClusterRole"
	SecurityGroupEks        = "SecurityGroupEks"
	LoadBalancerIngressRule = "LoadBalancerIngressRule"
	BastionIngressRule      = "BastionIngressRule"
	Role                    = "Role"
	InstanceProfile         = "InstanceProfile"
	LaunchConfig            = "LaunchConfig"
	AutoScaleGroup          = "AutoScaleGroup"
	LogGroup                = "LogGroup"

	MemoryReservationAlarmHigh = "MemoryReservationAlarmHigh"
	MemoryReservationAlarmLow  = "MemoryReservationAlarmLow"
	CPUReservationAlarmHigh    = "CPUReservationAlarmHigh"
	CPUReservationAlarmLow     = "CPUReservationAlarmLow"
	ScaleUpPolicy              = "ScaleUpPolicy"
	ScaleDownPolicy            = "ScaleDownPolicy"
)

// Template condition names.
const (
	IsScalingEnabled = "IsScalingEnabled"
	SpotPriceSet     = "SpotPriceSet"
)

// Result is an assembled template with its resources in dependency order.
type Result struct {
	Template *wetwire.Template
	Order    []string
}

// Assembler renders component configurations into templates.
type Assembler struct {
	log zerolog.Logger
}

// New returns an Assembler that logs gating decisions to logger at debug level.
func New(logger zerolog.Logger) *Assembler {
	return &Assembler{log: logger}
}

// Assemble renders cfg with a silent logger.
func Assemble(cfg config.Config) (*wetwire.Template, error) {
	result, err := New(zerolog.Nop()).Build(cfg)
	if err != nil {
		return nil, err
	}
	return result.Template, nil
}

// Assemble renders cfg into a template.
func (a *Assembler) Assemble(cfg config.Config) (*wetwire.Template, error) {
	result, err := a.Build(cfg)
	if err != nil {
		return nil, err
	}
	return result.Template, nil
}

// Build renders cfg and reports the dependency order of the resources.
// Assembly is deterministic: equal configurations give equal templates.
func (a *Assembler) Build(cfg config.Config) (*Result, error) {
	asm := &assembly{
		cfg: cfg,
		b:   template.NewBuilder(),
		log: a.log.With().Str("component", cfg.ComponentName).Logger(),
	}

	asm.b.SetDescription(fmt.Sprintf("%s - %s", cfg.ComponentName, cfg.ComponentVersion))

	asm.addParameters()
	asm.addConditions()
	asm.addCluster()
	asm.addSecurityGroups()
	asm.addInstanceRole()
	asm.addLaunchConfig()
	asm.addAutoScaleGroup()
	asm.addLogGroup()
	asm.addScaling()
	asm.addOutputs()

	if err := asm.applyParameterDefaults(); err != nil {
		return nil, err
	}

	tmpl, err := asm.b.Build()
	if err != nil {
		return nil, fmt.Errorf("assembling %s: %w", cfg.ComponentName, err)
	}
	order, err := asm.b.Order()
	if err != nil {
		return nil, err
	}

	asm.log.Debug().Int("resources", len(tmpl.Resources)).Msg("template assembled")
	return &Result{Template: tmpl, Order: order}, nil
}

// assembly holds the state of a single Build call.
type assembly struct {
	cfg config.Config
	b   *template.Builder
	log zerolog.Logger
}
