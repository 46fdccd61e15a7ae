package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// hclConfigFile is the top-level structure of an HCL configuration.
//
//	component_name = "eks"
//	eks_extra_tags = { Team = "platform" }
//
//	iam_policy "ecr-pull" {
//	  action = ["ecr:GetAuthorizationToken"]
//	}
//
//	eks_autoscale {
//	  memory_high = 70
//	}
//
//	asg_update_policy "AutoScalingRollingUpdate" {
//	  body = { MinInstancesInService = 1 }
//	}
type hclConfigFile struct {
	ComponentName            *string `hcl:"component_name,optional"`
	ComponentVersion         *string `hcl:"component_version,optional"`
	MaximumAvailabilityZones *int    `hcl:"maximum_availability_zones,optional"`
	ClusterName              *string `hcl:"cluster_name,optional"`
	VolumeSize               *int    `hcl:"volume_size,optional"`
	EnableEFS                *bool   `hcl:"enable_efs,optional"`
	SpotPrice                *string `hcl:"spot_price,optional"`
	EnableScaling            *bool   `hcl:"enable_scaling,optional"`
	LogGroupRetention        *int    `hcl:"log_group_retention,optional"`

	ExtraTags          map[string]string `hcl:"eks_extra_tags,optional"`
	AgentExtraConfig   map[string]string `hcl:"eks_agent_extra_config,optional"`
	AdditionalUserData []string          `hcl:"eks_additional_userdata,optional"`
	ParameterDefaults  map[string]string `hcl:"parameter_defaults,optional"`

	Policies     []hclPolicy      `hcl:"iam_policy,block"`
	Autoscale    *hclAutoscale    `hcl:"eks_autoscale,block"`
	UpdatePolicy *hclUpdatePolicy `hcl:"asg_update_policy,block"`
}

type hclPolicy struct {
	Name     string    `hcl:"name,label"`
	Action   cty.Value `hcl:"action"`
	Resource cty.Value `hcl:"resource,optional"`
}

type hclAutoscale struct {
	MemoryHigh          *float64 `hcl:"memory_high,optional"`
	MemoryLow           *float64 `hcl:"memory_low,optional"`
	CPUHigh             *float64 `hcl:"cpu_high,optional"`
	CPULow              *float64 `hcl:"cpu_low,optional"`
	ScaleUpAdjustment   *int     `hcl:"scale_up_adjustment,optional"`
	ScaleDownAdjustment *int     `hcl:"scale_down_adjustment,optional"`
}

type hclUpdatePolicy struct {
	Kind string    `hcl:"kind,label"`
	Body cty.Value `hcl:"body"`
}

func parseHCL(data []byte, filename string) (Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var parsed hclConfigFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	return parsed.toConfig()
}

func (f *hclConfigFile) toConfig() (Config, error) {
	cfg := Default()
	setString(&cfg.ComponentName, f.ComponentName)
	setString(&cfg.ComponentVersion, f.ComponentVersion)
	setInt(&cfg.MaximumAvailabilityZones, f.MaximumAvailabilityZones)
	setInt(&cfg.LogGroupRetention, f.LogGroupRetention)
	if f.EnableEFS != nil {
		cfg.EnableEFS = *f.EnableEFS
	}
	cfg.ClusterName = f.ClusterName
	cfg.VolumeSize = f.VolumeSize
	cfg.SpotPrice = f.SpotPrice
	cfg.EnableScaling = f.EnableScaling

	cfg.ExtraTags = sortedMap(f.ExtraTags)
	cfg.AgentExtraConfig = sortedMap(f.AgentExtraConfig)
	cfg.ParameterDefaults = sortedMap(f.ParameterDefaults)
	cfg.AdditionalUserData = f.AdditionalUserData

	for _, p := range f.Policies {
		action, err := hclValue(p.Action)
		if err != nil {
			return Config{}, fmt.Errorf("iam_policy %s action: %w", p.Name, err)
		}
		resource, err := hclValue(p.Resource)
		if err != nil {
			return Config{}, fmt.Errorf("iam_policy %s resource: %w", p.Name, err)
		}
		cfg.IAMPolicies = append(cfg.IAMPolicies, Policy{Name: p.Name, Action: action, Resource: resource})
	}

	if f.Autoscale != nil {
		cfg.Autoscale = &Autoscale{
			MemoryHigh:          f.Autoscale.MemoryHigh,
			MemoryLow:           f.Autoscale.MemoryLow,
			CPUHigh:             f.Autoscale.CPUHigh,
			CPULow:              f.Autoscale.CPULow,
			ScaleUpAdjustment:   f.Autoscale.ScaleUpAdjustment,
			ScaleDownAdjustment: f.Autoscale.ScaleDownAdjustment,
		}
	}

	if f.UpdatePolicy != nil {
		body, err := hclValue(f.UpdatePolicy.Body)
		if err != nil {
			return Config{}, fmt.Errorf("asg_update_policy %s: %w", f.UpdatePolicy.Kind, err)
		}
		cfg.UpdatePolicy = &UpdatePolicy{Kind: f.UpdatePolicy.Kind, Body: body}
	}

	return cfg, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

// sortedMap converts an HCL map into an OrderedMap. HCL maps carry no order,
// so keys are sorted.
func sortedMap(m map[string]string) *OrderedMap {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := &OrderedMap{}
	for _, k := range keys {
		out.Set(k, m[k])
	}
	return out
}

// hclValue turns a free-form HCL value into the plain values the template
// model carries: string, float64, bool, []any and map[string]any. Sets and
// tuples become lists; objects and maps become maps.
func hclValue(v cty.Value) (any, error) {
	if v == cty.NilVal || v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, errors.New("value depends on unknown expressions")
	}

	data, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", v.Type().FriendlyName(), err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
