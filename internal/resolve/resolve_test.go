package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/internal/component"
	"github.com/lex00/wetwire-eks-go/internal/config"
)

func ref(name string) map[string]any { return map[string]any{"Ref": name} }

// deployParams supplies every parameter the assembled template leaves without a default.
func deployParams(overrides map[string]string) map[string]string {
	params := map[string]string{
		"EnvironmentName":           "prod",
		"EnvironmentType":           "production",
		"VPCId":                     "vpc-123",
		"SecurityGroupLoadBalancer": "sg-lb",
		"SecurityGroupBastion":      "sg-bastion",
		"Ami":                       "ami-123",
		"InstanceType":              "t3.large",
		"KeyName":                   "ops",
		"AsgMin":                    "1",
		"AsgMax":                    "3",
		"SubnetCompute0":            "subnet-a",
	}
	for k, v := range overrides {
		params[k] = v
	}
	return params
}

func assembled(t *testing.T, mutate func(c *config.Config)) *wetwire.Template {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	tmpl, err := component.Assemble(cfg)
	require.NoError(t, err)
	return tmpl
}

func TestResolve_Defaults(t *testing.T) {
	tmpl := assembled(t, func(c *config.Config) { c.Autoscale = &config.Autoscale{MemoryHigh: floatPtr(70)} })

	resolved, err := Resolve(tmpl, deployParams(nil), Options{})
	require.NoError(t, err)

	assert.True(t, resolved.Conditions["SubnetCompute0Set"])
	assert.False(t, resolved.Conditions["SubnetCompute1Set"])
	assert.False(t, resolved.Conditions[component.IsScalingEnabled])
	assert.False(t, resolved.Conditions[component.SpotPriceSet])
	assert.Equal(t, "", resolved.Parameters["SpotPrice"])

	assert.ElementsMatch(t, []string{
		component.MemoryReservationAlarmHigh,
		component.MemoryReservationAlarmLow,
		component.ScaleUpPolicy,
		component.ScaleDownPolicy,
	}, resolved.Skipped)
	assert.Empty(t, resolved.Warnings)

	out := resolved.Template
	assert.Nil(t, out.Conditions)
	assert.Len(t, out.Resources, 10)

	asg := out.Resources[component.AutoScaleGroup].Properties
	assert.Equal(t, []any{ref("SubnetCompute0")}, asg["VPCZoneIdentifier"])

	lc := out.Resources[component.LaunchConfig].Properties
	assert.NotContains(t, lc, "SpotPrice")
	assert.Equal(t, ref("Ami"), lc["ImageId"])
}

func TestResolve_ScalingEnabled(t *testing.T) {
	tmpl := assembled(t, func(c *config.Config) { c.Autoscale = &config.Autoscale{CPUHigh: floatPtr(80)} })

	resolved, err := Resolve(tmpl, deployParams(map[string]string{
		"EnableScaling":  "true",
		"SpotPrice":      "0.05",
		"SubnetCompute2": "subnet-c",
	}), Options{})
	require.NoError(t, err)

	assert.Empty(t, resolved.Skipped)
	for _, name := range []string{component.ScaleUpPolicy, component.CPUReservationAlarmHigh} {
		res, ok := resolved.Template.Resources[name]
		require.True(t, ok, name)
		assert.Empty(t, res.Condition)
	}

	asg := resolved.Template.Resources[component.AutoScaleGroup].Properties
	assert.Equal(t, []any{ref("SubnetCompute0"), ref("SubnetCompute2")}, asg["VPCZoneIdentifier"])

	lc := resolved.Template.Resources[component.LaunchConfig].Properties
	assert.Equal(t, ref("SpotPrice"), lc["SpotPrice"])
}

func TestResolve_SubstituteParameters(t *testing.T) {
	tmpl := assembled(t, nil)

	resolved, err := Resolve(tmpl, deployParams(nil), Options{SubstituteParameters: true})
	require.NoError(t, err)

	asg := resolved.Template.Resources[component.AutoScaleGroup].Properties
	assert.Equal(t, []any{"subnet-a"}, asg["VPCZoneIdentifier"])
	assert.Equal(t, "1", asg["MinSize"])

	export := resolved.Template.Outputs["EksClusterArn"].Export
	require.NotNil(t, export)
	assert.Equal(t, "prod-eks-EksClusterArn", export.Name)

	role := resolved.Template.Resources[component.EksClusterRole].Properties
	assert.Equal(t, []any{
		map[string]any{"Fn::Sub": "arn:${AWS::Partition}:iam::aws:policy/AmazonEKSClusterPolicy"},
	}, role["ManagedPolicyArns"])
}

func TestResolve_ParameterErrors(t *testing.T) {
	tmpl := assembled(t, nil)

	tests := []struct {
		name   string
		params map[string]string
		target error
		errMsg string
	}{
		{
			name:   "missing value",
			params: map[string]string{"Ami": "ami-123"},
			target: ErrMissingParameter,
			errMsg: "EnvironmentName",
		},
		{
			name:   "unknown parameter",
			params: deployParams(map[string]string{"Bogus": "x"}),
			target: ErrUnknownParameter,
			errMsg: "Bogus",
		},
		{
			name:   "value not allowed",
			params: deployParams(map[string]string{"EnableScaling": "yes"}),
			errMsg: "is not one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tmpl, tt.params, Options{})
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestResolve_ConditionFunctions(t *testing.T) {
	yes := "yes"
	tmpl := &wetwire.Template{
		Parameters: map[string]wetwire.Parameter{
			"Flag": {Type: "String", Default: &yes},
		},
		Conditions: map[string]any{
			"IsYes": map[string]any{"Fn::Equals": []any{ref("Flag"), "yes"}},
			"IsNo":  map[string]any{"Fn::Not": []any{map[string]any{"Condition": "IsYes"}}},
			"Both":  map[string]any{"Fn::And": []any{map[string]any{"Condition": "IsYes"}, map[string]any{"Condition": "IsNo"}}},
			"Any":   map[string]any{"Fn::Or": []any{map[string]any{"Condition": "IsNo"}, map[string]any{"Condition": "IsYes"}}},
		},
		Resources: map[string]wetwire.ResourceDef{
			"Kept":    {Type: "AWS::Logs::LogGroup", Condition: "Any"},
			"Dropped": {Type: "AWS::Logs::LogGroup", Condition: "Both"},
			"User": {
				Type:       "AWS::Logs::LogGroup",
				Properties: map[string]any{"LogGroupName": ref("Dropped")},
			},
		},
	}

	resolved, err := Resolve(tmpl, nil, Options{})
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{"IsYes": true, "IsNo": false, "Both": false, "Any": true}, resolved.Conditions)
	assert.Equal(t, []string{"Dropped"}, resolved.Skipped)
	assert.Contains(t, resolved.Template.Resources, "Kept")
	assert.Equal(t, []string{"resource User references skipped resource Dropped"}, resolved.Warnings)
}

func TestResolve_ConditionErrors(t *testing.T) {
	tests := []struct {
		name       string
		conditions map[string]any
		errMsg     string
	}{
		{
			name:       "self reference",
			conditions: map[string]any{"Loop": map[string]any{"Condition": "Loop"}},
			errMsg:     "refers to itself",
		},
		{
			name:       "undefined condition",
			conditions: map[string]any{"A": map[string]any{"Condition": "Missing"}},
			errMsg:     "undefined condition Missing",
		},
		{
			name:       "resource ref",
			conditions: map[string]any{"A": map[string]any{"Fn::Equals": []any{ref("Bucket"), "x"}}},
			errMsg:     "cannot compare Ref Bucket",
		},
		{
			name:       "unsupported function",
			conditions: map[string]any{"A": map[string]any{"Fn::Contains": []any{}}},
			errMsg:     "unsupported condition function",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := &wetwire.Template{
				Conditions: tt.conditions,
				Resources:  map[string]wetwire.ResourceDef{},
			}
			_, err := Resolve(tmpl, nil, Options{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func floatPtr(f float64) *float64 { return &f }
