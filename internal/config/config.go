// Package config loads and validates EKS component configurations.
//
// A configuration is read from YAML (or JSON) or HCL and overlaid on Default.
// Optional keys are pointers or nil-able collections: presence of a key is the
// only signal the assembler uses to emit the matching resources or properties.
package config

import (
	"errors"
	"fmt"
	"regexp"
)

// Config is the component configuration.
type Config struct {
	ComponentName            string  `yaml:"component_name"`
	ComponentVersion         string  `yaml:"component_version"`
	MaximumAvailabilityZones int     `yaml:"maximum_availability_zones"`
	ClusterName              *string `yaml:"cluster_name"`
	VolumeSize               *int    `yaml:"volume_size"`
	EnableEFS                bool    `yaml:"enable_efs"`
	SpotPrice                *string `yaml:"spot_price"`
	EnableScaling            *bool   `yaml:"enable_scaling"`
	LogGroupRetention        int     `yaml:"log_group_retention"`

	IAMPolicies        Policies      `yaml:"iam_policies"`
	ExtraTags          *OrderedMap   `yaml:"eks_extra_tags"`
	AgentExtraConfig   *OrderedMap   `yaml:"eks_agent_extra_config"`
	AdditionalUserData []string      `yaml:"eks_additional_userdata"`
	Autoscale          *Autoscale    `yaml:"eks_autoscale"`
	UpdatePolicy       *UpdatePolicy `yaml:"asg_update_policy"`
	ParameterDefaults  *OrderedMap   `yaml:"parameter_defaults"`
}

// Policy is one named inline IAM policy. Action and Resource hold a string or
// a list of strings; a nil Resource means "*".
type Policy struct {
	Name     string
	Action   any
	Resource any
}

// Autoscale holds alarm thresholds and scaling adjustments. A memory_high or
// cpu_high key enables the matching alarm pair, even when its value is null.
type Autoscale struct {
	MemoryHigh          *float64
	MemoryLow           *float64
	CPUHigh             *float64
	CPULow              *float64
	ScaleUpAdjustment   *int
	ScaleDownAdjustment *int

	// memoryKey and cpuKey record a high-threshold key decoded with a null value.
	memoryKey bool
	cpuKey    bool
}

// HasMemoryAlarms reports whether memory reservation alarms are configured.
func (a *Autoscale) HasMemoryAlarms() bool {
	return a != nil && (a.MemoryHigh != nil || a.memoryKey)
}

// HasCPUAlarms reports whether CPU reservation alarms are configured.
func (a *Autoscale) HasCPUAlarms() bool {
	return a != nil && (a.CPUHigh != nil || a.cpuKey)
}

// UpdatePolicy is the auto scaling group UpdatePolicy attribute, written as a
// single-key mapping such as {AutoScalingRollingUpdate: {...}}.
type UpdatePolicy struct {
	Kind string
	Body any

	// extra records further keys, which are rejected by Validate.
	extra []string
}

// Default values for keys that are always rendered.
const (
	DefaultComponentName     = "eks"
	DefaultComponentVersion  = "latest"
	DefaultAvailabilityZones = 3
	DefaultLogRetention      = 7
)

// Default returns the configuration used when a key is not set.
func Default() Config {
	return Config{
		ComponentName:            DefaultComponentName,
		ComponentVersion:         DefaultComponentVersion,
		MaximumAvailabilityZones: DefaultAvailabilityZones,
		LogGroupRetention:        DefaultLogRetention,
	}
}

// retentionDays are the values AWS::Logs::LogGroup accepts for RetentionInDays.
var retentionDays = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 14: true, 30: true, 60: true, 90: true,
	120: true, 150: true, 180: true, 365: true, 400: true, 545: true, 731: true,
	1096: true, 1827: true, 2192: true, 2557: true, 2922: true, 3288: true, 3653: true,
}

var componentNamePattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// Validate rejects configurations that cannot be rendered coherently.
func (c Config) Validate() error {
	var errs []error

	if c.ComponentName == "" {
		errs = append(errs, errors.New("component_name must not be empty"))
	} else if !componentNamePattern.MatchString(c.ComponentName) {
		errs = append(errs, fmt.Errorf("component_name %q may only contain letters, digits and dashes", c.ComponentName))
	}
	if c.MaximumAvailabilityZones < 1 {
		errs = append(errs, fmt.Errorf("maximum_availability_zones must be at least 1, got %d", c.MaximumAvailabilityZones))
	}
	if c.VolumeSize != nil && *c.VolumeSize <= 0 {
		errs = append(errs, fmt.Errorf("volume_size must be positive, got %d", *c.VolumeSize))
	}
	if !retentionDays[c.LogGroupRetention] {
		errs = append(errs, fmt.Errorf("log_group_retention %d is not a supported retention period", c.LogGroupRetention))
	}
	if c.ClusterName != nil && *c.ClusterName == "" {
		errs = append(errs, errors.New("cluster_name must not be empty when set"))
	}

	seen := make(map[string]bool)
	for _, p := range c.IAMPolicies {
		if p.Name == "" {
			errs = append(errs, errors.New("iam policy without a name"))
			continue
		}
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("iam policy %s is defined twice", p.Name))
		}
		seen[p.Name] = true
		if p.Action == nil {
			errs = append(errs, fmt.Errorf("iam policy %s has no action", p.Name))
		}
	}

	if c.UpdatePolicy != nil {
		if c.UpdatePolicy.Kind == "" {
			errs = append(errs, errors.New("asg_update_policy must name a policy kind"))
		}
		if len(c.UpdatePolicy.extra) > 0 {
			errs = append(errs, fmt.Errorf("asg_update_policy must have exactly one kind, also found %v", c.UpdatePolicy.extra))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
