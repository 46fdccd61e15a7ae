package config

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/lithammer/dedent"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestLoad_YAML(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "full.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "compute", cfg.ComponentName)
	assert.Equal(t, "1.4.0", cfg.ComponentVersion)
	assert.Equal(t, 2, cfg.MaximumAvailabilityZones)
	require.NotNil(t, cfg.ClusterName)
	assert.Equal(t, "main", *cfg.ClusterName)
	require.NotNil(t, cfg.VolumeSize)
	assert.Equal(t, 50, *cfg.VolumeSize)
	assert.True(t, cfg.EnableEFS)
	require.NotNil(t, cfg.SpotPrice)
	assert.Equal(t, "0.05", *cfg.SpotPrice)
	require.NotNil(t, cfg.EnableScaling)
	assert.True(t, *cfg.EnableScaling)
	assert.Equal(t, 14, cfg.LogGroupRetention)

	// Document order is preserved.
	assert.Equal(t, []string{"Team", "CostCentre", "Name"}, cfg.ExtraTags.Keys())
	cost, ok := cfg.ExtraTags.Get("CostCentre")
	assert.True(t, ok)
	assert.Equal(t, "1234", cost)
	assert.Equal(t, []string{"EKS_LOGLEVEL", "EKS_ENABLE_TASK_IAM_ROLE"}, cfg.AgentExtraConfig.Keys())
	assert.Equal(t, []string{"echo hello", "yum update -y"}, cfg.AdditionalUserData)

	require.Len(t, cfg.IAMPolicies, 2)
	assert.Equal(t, "ecr-pull", cfg.IAMPolicies[0].Name)
	assert.Equal(t, []any{"ecr:GetAuthorizationToken", "ecr:BatchGetImage"}, cfg.IAMPolicies[0].Action)
	assert.Nil(t, cfg.IAMPolicies[0].Resource)
	assert.Equal(t, "s3-artifacts", cfg.IAMPolicies[1].Name)
	assert.Equal(t, "s3:GetObject", cfg.IAMPolicies[1].Action)
	assert.Equal(t, "arn:aws:s3:::artifacts/*", cfg.IAMPolicies[1].Resource)

	require.NotNil(t, cfg.Autoscale)
	assert.True(t, cfg.Autoscale.HasMemoryAlarms())
	assert.True(t, cfg.Autoscale.HasCPUAlarms())
	assert.Equal(t, 70.0, *cfg.Autoscale.MemoryHigh)
	assert.Equal(t, -1, *cfg.Autoscale.ScaleDownAdjustment)

	require.NotNil(t, cfg.UpdatePolicy)
	assert.Equal(t, "AutoScalingRollingUpdate", cfg.UpdatePolicy.Kind)
	body := cfg.UpdatePolicy.Body.(map[string]any)
	assert.Equal(t, "PT5M", body["PauseTime"])

	assert.Equal(t, []string{"InstanceType", "AsgMin"}, cfg.ParameterDefaults.Keys())
}

func TestLoad_HCL(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "full.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "compute", cfg.ComponentName)
	assert.Equal(t, 2, cfg.MaximumAvailabilityZones)
	assert.Equal(t, 50, *cfg.VolumeSize)
	assert.True(t, cfg.EnableEFS)
	assert.Equal(t, "0.05", *cfg.SpotPrice)
	assert.Equal(t, 14, cfg.LogGroupRetention)

	// HCL maps are sorted by key.
	assert.Equal(t, []string{"CostCentre", "Team"}, cfg.ExtraTags.Keys())
	cost, _ := cfg.ExtraTags.Get("CostCentre")
	assert.Equal(t, "1234", cost)

	// Blocks keep file order.
	require.Len(t, cfg.IAMPolicies, 2)
	assert.Equal(t, "s3-artifacts", cfg.IAMPolicies[0].Name)
	assert.Equal(t, "arn:aws:s3:::artifacts/*", cfg.IAMPolicies[0].Resource)
	assert.Equal(t, "ecr-pull", cfg.IAMPolicies[1].Name)
	assert.Equal(t, []any{"ecr:GetAuthorizationToken", "ecr:BatchGetImage"}, cfg.IAMPolicies[1].Action)
	assert.Nil(t, cfg.IAMPolicies[1].Resource)

	require.NotNil(t, cfg.Autoscale)
	assert.True(t, cfg.Autoscale.HasMemoryAlarms())
	assert.False(t, cfg.Autoscale.HasCPUAlarms())
	assert.Equal(t, 2, *cfg.Autoscale.ScaleUpAdjustment)

	require.NotNil(t, cfg.UpdatePolicy)
	assert.Equal(t, "AutoScalingRollingUpdate", cfg.UpdatePolicy.Kind)
	assert.Equal(t, map[string]any{"MinInstancesInService": float64(1), "PauseTime": "PT5M"}, cfg.UpdatePolicy.Body)
}

func TestLoad_DefaultsApplied(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "minimal.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Nil(t, cfg.Autoscale)
	assert.Nil(t, cfg.ExtraTags)
	assert.Nil(t, cfg.VolumeSize)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "unsupported.toml"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = Load(filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_YAMLErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "unknown key",
			input:   "compnent_name: eks\n",
			wantErr: "compnent_name",
		},
		{
			name: "nested tag value",
			input: dedent.Dedent(`
				eks_extra_tags:
				  Team:
				    nested: true
			`),
			wantErr: "must be a scalar",
		},
		{
			name:    "unknown autoscale key",
			input:   "eks_autoscale:\n  memory_hgh: 70\n",
			wantErr: `unknown key "memory_hgh"`,
		},
		{
			name:    "threshold not a number",
			input:   "eks_autoscale:\n  cpu_high: eighty\n",
			wantErr: `eks_autoscale.cpu_high: line 2: threshold "eighty" is not a number`,
		},
		{
			name:    "threshold list",
			input:   "eks_autoscale:\n  cpu_high: [80]\n",
			wantErr: "threshold must be a number",
		},
		{
			name:    "policies not a mapping",
			input:   "iam_policies: [a, b]\n",
			wantErr: "iam_policies must be a mapping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input), "eks.config.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_EmptyAutoscale(t *testing.T) {
	cfg, err := Parse([]byte("eks_autoscale: {}\n"), "eks.config.yml")
	require.NoError(t, err)

	require.NotNil(t, cfg.Autoscale)
	assert.False(t, cfg.Autoscale.HasMemoryAlarms())
	assert.False(t, cfg.Autoscale.HasCPUAlarms())
}

func TestParse_AutoscaleThresholds(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		memory     bool
		cpu        bool
		memoryHigh *float64
		cpuHigh    *float64
		cpuLow     *float64
	}{
		{
			name:       "plain numbers",
			input:      "eks_autoscale:\n  memory_high: 75\n  cpu_high: 80.5\n",
			memory:     true,
			cpu:        true,
			memoryHigh: floatPtr(75),
			cpuHigh:    floatPtr(80.5),
		},
		{
			name:    "quoted numbers",
			input:   "eks_autoscale:\n  cpu_high: '80'\n  cpu_low: \" 20 \"\n",
			cpu:     true,
			cpuHigh: floatPtr(80),
			cpuLow:  floatPtr(20),
		},
		{
			name:   "null high threshold keeps the gate",
			input:  "eks_autoscale:\n  memory_high: ~\n",
			memory: true,
		},
		{
			name:   "low threshold alone",
			input:  "eks_autoscale:\n  cpu_low: 20\n",
			cpuLow: floatPtr(20),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.input), "eks.config.yaml")
			require.NoError(t, err)
			require.NotNil(t, cfg.Autoscale)

			assert.Equal(t, tt.memory, cfg.Autoscale.HasMemoryAlarms())
			assert.Equal(t, tt.cpu, cfg.Autoscale.HasCPUAlarms())
			assert.Equal(t, tt.memoryHigh, cfg.Autoscale.MemoryHigh)
			assert.Equal(t, tt.cpuHigh, cfg.Autoscale.CPUHigh)
			assert.Equal(t, tt.cpuLow, cfg.Autoscale.CPULow)
		})
	}
}

func TestHCLValue(t *testing.T) {
	tests := []struct {
		name     string
		value    cty.Value
		expected any
	}{
		{name: "null", value: cty.NullVal(cty.String), expected: nil},
		{name: "string", value: cty.StringVal("s3:GetObject"), expected: "s3:GetObject"},
		{name: "number", value: cty.NumberIntVal(1), expected: float64(1)},
		{name: "bool", value: cty.True, expected: true},
		{
			name:     "tuple",
			value:    cty.TupleVal([]cty.Value{cty.StringVal("ecr:BatchGetImage"), cty.NumberIntVal(2)}),
			expected: []any{"ecr:BatchGetImage", float64(2)},
		},
		{
			name: "object",
			value: cty.ObjectVal(map[string]cty.Value{
				"PauseTime":             cty.StringVal("PT5M"),
				"WaitOnResourceSignals": cty.True,
			}),
			expected: map[string]any{"PauseTime": "PT5M", "WaitOnResourceSignals": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := hclValue(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := hclValue(cty.UnknownVal(cty.String))
	assert.Error(t, err)
}

func TestLoader_LogsThroughInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	loader := NewLoader(zerolog.New(&buf).Level(zerolog.DebugLevel))

	_, err := loader.Parse([]byte("component_name: eks\n"), "eks.config.yaml")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"message":"parsing configuration"`)
	assert.Contains(t, buf.String(), `"format":".yaml"`)
}

func TestParse_HCLErrors(t *testing.T) {
	_, err := Parse([]byte("component_name = \n"), "eks.config.hcl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse HCL file")

	_, err = Parse([]byte("unknown_key = 1\n"), "eks.config.hcl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode HCL file")
}

func TestParse_JSON(t *testing.T) {
	cfg, err := Parse([]byte(`{"component_name": "nodes", "volume_size": 20}`), "eks.config.json")
	require.NoError(t, err)
	assert.Equal(t, "nodes", cfg.ComponentName)
	assert.Equal(t, 20, *cfg.VolumeSize)
}

func TestValidate(t *testing.T) {
	zero := 0
	empty := ""

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{
			name:    "no availability zones",
			mutate:  func(c *Config) { c.MaximumAvailabilityZones = 0 },
			wantErr: "maximum_availability_zones",
		},
		{
			name:    "bad component name",
			mutate:  func(c *Config) { c.ComponentName = "eks nodes" },
			wantErr: "component_name",
		},
		{
			name:    "zero volume",
			mutate:  func(c *Config) { c.VolumeSize = &zero },
			wantErr: "volume_size",
		},
		{
			name:    "unsupported retention",
			mutate:  func(c *Config) { c.LogGroupRetention = 8 },
			wantErr: "log_group_retention",
		},
		{
			name:    "empty cluster name",
			mutate:  func(c *Config) { c.ClusterName = &empty },
			wantErr: "cluster_name",
		},
		{
			name:    "policy without action",
			mutate:  func(c *Config) { c.IAMPolicies = Policies{{Name: "p"}} },
			wantErr: "iam policy p has no action",
		},
		{
			name: "duplicate policy",
			mutate: func(c *Config) {
				c.IAMPolicies = Policies{{Name: "p", Action: "s3:*"}, {Name: "p", Action: "s3:*"}}
			},
			wantErr: "defined twice",
		},
		{
			name:    "update policy without kind",
			mutate:  func(c *Config) { c.UpdatePolicy = &UpdatePolicy{} },
			wantErr: "must name a policy kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_UpdatePolicyWithSeveralKinds(t *testing.T) {
	cfg, err := Parse([]byte(dedent.Dedent(`
		asg_update_policy:
		  AutoScalingRollingUpdate: {}
		  AutoScalingScheduledAction: {}
	`)), "eks.config.yaml")
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AutoScalingScheduledAction")
}

func TestOrderedMap(t *testing.T) {
	m := NewOrderedMap("b", "1", "a", "2")
	m.Set("b", "3")

	assert.Equal(t, []string{"b", "a"}, m.Keys())
	v, ok := m.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
	assert.Equal(t, 2, m.Len())

	var nilMap *OrderedMap
	assert.Equal(t, 0, nilMap.Len())
	assert.Nil(t, nilMap.Keys())
	_, ok = nilMap.Get("x")
	assert.False(t, ok)
}

func floatPtr(f float64) *float64 { return &f }
