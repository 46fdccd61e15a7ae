package template

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/intrinsics"
	"github.com/lex00/wetwire-eks-go/resources/autoscaling"
	"github.com/lex00/wetwire-eks-go/resources/ec2"
	"github.com/lex00/wetwire-eks-go/resources/iam"
	"github.com/lex00/wetwire-eks-go/resources/logs"
)

func TestBuilder_Build_SimpleResource(t *testing.T) {
	retention := 7
	builder := NewBuilder()
	builder.AddResource("LogGroup", &logs.LogGroup{
		LogGroupName:    intrinsics.AWS_STACK_NAME,
		RetentionInDays: &retention,
	})

	template, err := builder.Build()
	require.NoError(t, err)

	assert.Equal(t, "2010-09-09", template.AWSTemplateFormatVersion)
	assert.Len(t, template.Resources, 1)

	group := template.Resources["LogGroup"]
	assert.Equal(t, "AWS::Logs::LogGroup", group.Type)
	assert.Equal(t, map[string]any{"Ref": "AWS::StackName"}, group.Properties["LogGroupName"])
	assert.Equal(t, float64(7), group.Properties["RetentionInDays"])
}

func TestBuilder_Build_WithDependencies(t *testing.T) {
	builder := NewBuilder()
	builder.AddResource("Role", &iam.Role{
		AssumeRolePolicyDocument: intrinsics.ServiceAssumeRolePolicy("ec2"),
		Path:                     "/",
	})
	builder.AddResource("InstanceProfile", &iam.InstanceProfile{
		Path:  "/",
		Roles: []any{intrinsics.R("Role")},
	})
	builder.AddResource("LaunchConfig", &autoscaling.LaunchConfiguration{
		ImageId:            "ami-123",
		InstanceType:       "t3.medium",
		IamInstanceProfile: intrinsics.R("InstanceProfile"),
	})

	_, err := builder.Build()
	require.NoError(t, err)

	order, err := builder.Order()
	require.NoError(t, err)
	assert.Equal(t, []string{"Role", "InstanceProfile", "LaunchConfig"}, order)
}

func TestBuilder_Build_ResourceAttributes(t *testing.T) {
	builder := NewBuilder()
	builder.AddParameter("EnableScaling", wetwire.Parameter{})
	builder.AddCondition("IsScalingEnabled", intrinsics.Equals{Value1: intrinsics.R("EnableScaling"), Value2: "true"})
	builder.AddResource("AutoScaleGroup", &autoscaling.AutoScalingGroup{
		MinSize: "1",
		MaxSize: "2",
	}, WithUpdatePolicy(map[string]any{
		"AutoScalingRollingUpdate": map[string]any{"MinInstancesInService": 1},
	}))
	builder.AddResource("ScaleUpPolicy", &autoscaling.ScalingPolicy{
		AutoScalingGroupName: intrinsics.R("AutoScaleGroup"),
	}, WithCondition("IsScalingEnabled"), WithDependsOn("AutoScaleGroup"))

	template, err := builder.Build()
	require.NoError(t, err)

	assert.Equal(t, "String", template.Parameters["EnableScaling"].Type)
	assert.Equal(t, map[string]any{
		"Fn::Equals": []any{map[string]any{"Ref": "EnableScaling"}, "true"},
	}, template.Conditions["IsScalingEnabled"])

	group := template.Resources["AutoScaleGroup"]
	assert.Equal(t, map[string]any{
		"AutoScalingRollingUpdate": map[string]any{"MinInstancesInService": float64(1)},
	}, group.UpdatePolicy)

	policy := template.Resources["ScaleUpPolicy"]
	assert.Equal(t, "IsScalingEnabled", policy.Condition)
	assert.Equal(t, []string{"AutoScaleGroup"}, policy.DependsOn)
}

func TestBuilder_Build_Outputs(t *testing.T) {
	builder := NewBuilder()
	builder.AddParameter("EnvironmentName", wetwire.Parameter{})
	builder.AddResource("SecurityGroupEks", &ec2.SecurityGroup{GroupDescription: "eks"})
	builder.AddOutput("EksSecurityGroup", "", intrinsics.R("SecurityGroupEks"),
		intrinsics.Sub{String: "${EnvironmentName}-eks-EksSecurityGroup"})
	builder.AddOutput("Plain", "not exported", "value", nil)

	template, err := builder.Build()
	require.NoError(t, err)

	out := template.Outputs["EksSecurityGroup"]
	assert.Equal(t, map[string]any{"Ref": "SecurityGroupEks"}, out.Value)
	require.NotNil(t, out.Export)
	assert.Equal(t, map[string]any{"Fn::Sub": "${EnvironmentName}-eks-EksSecurityGroup"}, out.Export.Name)

	plain := template.Outputs["Plain"]
	assert.Nil(t, plain.Export)
	assert.Equal(t, "not exported", plain.Description)
}

func TestBuilder_Build_ReferenceErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(b *Builder)
		wantErr string
	}{
		{
			name: "undefined ref",
			setup: func(b *Builder) {
				b.AddResource("InstanceProfile", &iam.InstanceProfile{Roles: []any{intrinsics.R("MissingRole")}})
			},
			wantErr: "undefined reference MissingRole",
		},
		{
			name: "undefined getatt",
			setup: func(b *Builder) {
				b.AddResource("Ingress", &ec2.SecurityGroupIngress{
					IpProtocol: "tcp",
					GroupId:    intrinsics.Att("SecurityGroupEks", "GroupId"),
				})
			},
			wantErr: "Fn::GetAtt on undefined resource SecurityGroupEks",
		},
		{
			name: "undefined resource condition",
			setup: func(b *Builder) {
				b.AddResource("LogGroup", &logs.LogGroup{}, WithCondition("IsScalingEnabled"))
			},
			wantErr: "undefined condition IsScalingEnabled",
		},
		{
			name: "undefined if condition",
			setup: func(b *Builder) {
				b.AddResource("LaunchConfig", &autoscaling.LaunchConfiguration{
					SpotPrice: intrinsics.IfSet("SpotPriceSet", "0.1"),
				})
			},
			wantErr: "undefined condition SpotPriceSet",
		},
		{
			name: "undefined sub variable in output",
			setup: func(b *Builder) {
				b.AddOutput("Name", "", "x", intrinsics.Sub{String: "${EnvironmentName}-eks"})
			},
			wantErr: "undefined Fn::Sub variable EnvironmentName",
		},
		{
			name: "undefined depends on",
			setup: func(b *Builder) {
				b.AddResource("LogGroup", &logs.LogGroup{}, WithDependsOn("Nothing"))
			},
			wantErr: "DependsOn undefined resource Nothing",
		},
		{
			name: "duplicate logical name",
			setup: func(b *Builder) {
				b.AddParameter("Role", wetwire.Parameter{})
				b.AddResource("Role", &iam.Role{})
			},
			wantErr: "duplicate logical name: Role",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder := NewBuilder()
			tt.setup(builder)
			_, err := builder.Build()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuilder_Build_PseudoParametersAreDefined(t *testing.T) {
	builder := NewBuilder()
	builder.AddResource("LogGroup", &logs.LogGroup{LogGroupName: intrinsics.Sub{String: "${AWS::StackName}-logs"}})

	_, err := builder.Build()
	assert.NoError(t, err)
}

func TestBuilder_Build_CircularDependency(t *testing.T) {
	builder := NewBuilder()
	builder.AddResource("A", &iam.InstanceProfile{Roles: []any{intrinsics.R("B")}})
	builder.AddResource("B", &iam.InstanceProfile{Roles: []any{intrinsics.R("A")}})

	_, err := builder.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular dependency")
}

func TestBuilder_SetParameterDefault(t *testing.T) {
	builder := NewBuilder()
	builder.AddParameter("SpotPrice", wetwire.Parameter{})

	require.NoError(t, builder.SetParameterDefault("SpotPrice", "0.05"))
	assert.Error(t, builder.SetParameterDefault("Missing", "x"))

	template, err := builder.Build()
	require.NoError(t, err)
	require.NotNil(t, template.Parameters["SpotPrice"].Default)
	assert.Equal(t, "0.05", *template.Parameters["SpotPrice"].Default)
}

func TestCollectReferences(t *testing.T) {
	value := map[string]any{
		"A": map[string]any{"Ref": "Param"},
		"B": map[string]any{"Fn::GetAtt": []any{"Cluster", "Arn"}},
		"C": map[string]any{"Fn::If": []any{"Cond", map[string]any{"Ref": "X"}, map[string]any{"Ref": "AWS::NoValue"}}},
		"D": map[string]any{"Fn::Sub": "${EnvironmentName}-${Role.Arn}-${!Literal}-${AWS::Region}"},
		"E": map[string]any{"Fn::Sub": []any{"${Local}-${Other}", map[string]any{"Local": map[string]any{"Ref": "Y"}}}},
		"F": []any{map[string]any{"Ref": "Param"}},
	}

	refs := CollectReferences(value)
	assert.Equal(t, []string{"AWS::NoValue", "Param", "X", "Y"}, refs.Refs)
	assert.Equal(t, []string{"Cluster", "Role"}, refs.GetAtts)
	assert.Equal(t, []string{"Cond"}, refs.Conditions)
	assert.Equal(t, []string{"AWS::Region", "EnvironmentName", "Other"}, refs.SubVars)
}

func TestToJSON(t *testing.T) {
	template := &wetwire.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources: map[string]wetwire.ResourceDef{
			"LogGroup": {Type: "AWS::Logs::LogGroup"},
		},
	}

	data, err := ToJSON(template)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, "2010-09-09", parsed["AWSTemplateFormatVersion"])
	assert.Contains(t, string(data), "\n  ")
}

func TestToYAML(t *testing.T) {
	empty := ""
	builder := NewBuilder()
	builder.AddParameter("SpotPrice", wetwire.Parameter{Default: &empty})
	builder.AddCondition("SpotPriceSet", intrinsics.NotEquals(intrinsics.R("SpotPrice"), ""))
	builder.AddResource("LaunchConfig", &autoscaling.LaunchConfiguration{
		ImageId:      "ami-123",
		InstanceType: "t3.medium",
		SpotPrice:    intrinsics.IfSet("SpotPriceSet", intrinsics.R("SpotPrice")),
	})
	template, err := builder.Build()
	require.NoError(t, err)

	data, err := ToYAML(template)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal(data, &parsed))

	params := parsed["Parameters"].(map[string]any)
	assert.Equal(t, "", params["SpotPrice"].(map[string]any)["Default"])

	resources := parsed["Resources"].(map[string]any)
	props := resources["LaunchConfig"].(map[string]any)["Properties"].(map[string]any)
	assert.Contains(t, props["SpotPrice"], "Fn::If")
}
