package component

import (
	"fmt"

	"github.com/lex00/wetwire-eks-go/internal/template"
	"github.com/lex00/wetwire-eks-go/intrinsics"
	"github.com/lex00/wetwire-eks-go/resources/autoscaling"
	"github.com/lex00/wetwire-eks-go/resources/ec2"
	"github.com/lex00/wetwire-eks-go/resources/eks"
	"github.com/lex00/wetwire-eks-go/resources/iam"
	"github.com/lex00/wetwire-eks-go/resources/logs"
)

const healthCheckGracePeriod = 500

func intPtr(i int) *int { return &i }

func boolPtr(b bool) *bool { return &b }

func (a *assembly) addCluster() {
	cluster := &eks.Cluster{
		RoleArn: intrinsics.Att(EksClusterRole, "Arn"),
		ResourcesVpcConfig: &eks.Cluster_ResourcesVpcConfig{
			SubnetIds:        a.subnets(),
			SecurityGroupIds: []any{intrinsics.R(SecurityGroupEks)},
		},
	}
	if a.cfg.ClusterName != nil {
		cluster.Name = intrinsics.Sub{String: fmt.Sprintf("${%s}-%s", EnvironmentName, *a.cfg.ClusterName)}
	}
	a.b.AddResource(EksCluster, cluster)

	a.b.AddResource(EksClusterRole, &iam.Role{
		AssumeRolePolicyDocument: intrinsics.ServiceAssumeRolePolicy("eks"),
		Path:                     "/",
		ManagedPolicyArns: []any{
			intrinsics.Sub{String: "arn:${AWS::Partition}:iam::aws:policy/AmazonEKSClusterPolicy"},
		},
		Policies: []iam.Role_Policy{},
	})
}

func (a *assembly) addSecurityGroups() {
	a.b.AddResource(SecurityGroupEks, &ec2.SecurityGroup{
		GroupDescription: intrinsics.Join{Delimiter: " ", Values: []any{intrinsics.R(EnvironmentName), a.cfg.ComponentName}},
		VpcId:            intrinsics.R(VPCId),
	})

	a.b.AddResource(LoadBalancerIngressRule, &ec2.SecurityGroupIngress{
		Description:           "Ephemeral port range for EKS",
		IpProtocol:            "tcp",
		FromPort:              intPtr(32768),
		ToPort:                intPtr(65535),
		GroupId:               intrinsics.Att(SecurityGroupEks, "GroupId"),
		SourceSecurityGroupId: intrinsics.R(SecurityGroupLoadBalancer),
	})

	a.b.AddResource(BastionIngressRule, &ec2.SecurityGroupIngress{
		Description:           "SSH access from bastion",
		IpProtocol:            "tcp",
		FromPort:              intPtr(22),
		ToPort:                intPtr(22),
		GroupId:               intrinsics.Att(SecurityGroupEks, "GroupId"),
		SourceSecurityGroupId: intrinsics.R(SecurityGroupBastion),
	})
}

func (a *assembly) addInstanceRole() {
	a.b.AddResource(Role, &iam.Role{
		AssumeRolePolicyDocument: intrinsics.ServiceAssumeRolePolicy("ec2"),
		Path:                     "/",
		Policies:                 a.policies(),
	})

	a.b.AddResource(InstanceProfile, &iam.InstanceProfile{
		Path:  "/",
		Roles: []any{intrinsics.R(Role)},
	})
}

func (a *assembly) addLaunchConfig() {
	lc := &autoscaling.LaunchConfiguration{
		ImageId:                  intrinsics.R(Ami),
		InstanceType:             intrinsics.R(InstanceType),
		AssociatePublicIpAddress: boolPtr(false),
		IamInstanceProfile:       intrinsics.R(InstanceProfile),
		KeyName:                  intrinsics.R(KeyName),
		SecurityGroups:           []any{intrinsics.R(SecurityGroupEks)},
		SpotPrice:                intrinsics.IfSet(SpotPriceSet, intrinsics.R(SpotPrice)),
		UserData:                 intrinsics.Base64{Value: intrinsics.Concat(a.userData())},
	}

	if a.cfg.VolumeSize != nil {
		lc.BlockDeviceMappings = []autoscaling.LaunchConfiguration_BlockDeviceMapping{{
			DeviceName: "/dev/xvda",
			Ebs:        &autoscaling.LaunchConfiguration_BlockDevice{VolumeSize: intPtr(*a.cfg.VolumeSize)},
		}}
		a.log.Debug().Int("volume_size", *a.cfg.VolumeSize).Msg("adding root block device")
	}

	a.b.AddResource(LaunchConfig, lc)
}

func (a *assembly) addAutoScaleGroup() {
	var opts []template.ResourceOption
	if p := a.cfg.UpdatePolicy; p != nil {
		opts = append(opts, template.WithUpdatePolicy(map[string]any{p.Kind: p.Body}))
		a.log.Debug().Str("kind", p.Kind).Msg("adding update policy")
	}

	a.b.AddResource(AutoScaleGroup, &autoscaling.AutoScalingGroup{
		LaunchConfigurationName: intrinsics.R(LaunchConfig),
		HealthCheckGracePeriod:  intPtr(healthCheckGracePeriod),
		MinSize:                 intrinsics.R(AsgMin),
		MaxSize:                 intrinsics.R(AsgMax),
		VPCZoneIdentifier:       a.subnets(),
		Tags:                    a.tags(),
	}, opts...)
}

func (a *assembly) addLogGroup() {
	a.b.AddResource(LogGroup, &logs.LogGroup{
		LogGroupName:    intrinsics.AWS_STACK_NAME,
		RetentionInDays: intPtr(a.cfg.LogGroupRetention),
	})
}
