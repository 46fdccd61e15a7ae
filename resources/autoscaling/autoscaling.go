// Package autoscaling provides CloudFormation property types for AWS::AutoScaling resources.
package autoscaling

// LaunchConfiguration is AWS::AutoScaling::LaunchConfiguration.
type LaunchConfiguration struct {
	ImageId                  any                                      `json:"ImageId"`
	InstanceType             any                                      `json:"InstanceType"`
	BlockDeviceMappings      []LaunchConfiguration_BlockDeviceMapping `json:"BlockDeviceMappings,omitempty"`
	AssociatePublicIpAddress *bool                                    `json:"AssociatePublicIpAddress,omitempty"`
	IamInstanceProfile       any                                      `json:"IamInstanceProfile,omitempty"`
	KeyName                  any                                      `json:"KeyName,omitempty"`
	SecurityGroups           []any                                    `json:"SecurityGroups,omitempty"`
	SpotPrice                any                                      `json:"SpotPrice,omitempty"`
	UserData                 any                                      `json:"UserData,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (LaunchConfiguration) ResourceType() string { return "AWS::AutoScaling::LaunchConfiguration" }

// LaunchConfiguration_BlockDeviceMapping attaches a volume at launch.
type LaunchConfiguration_BlockDeviceMapping struct {
	DeviceName string                              `json:"DeviceName"`
	Ebs        *LaunchConfiguration_BlockDevice `json:"Ebs,omitempty"`
}

// LaunchConfiguration_BlockDevice describes an EBS volume.
type LaunchConfiguration_BlockDevice struct {
	VolumeSize *int   `json:"VolumeSize,omitempty"`
	VolumeType string `json:"VolumeType,omitempty"`
}

// AutoScalingGroup is AWS::AutoScaling::AutoScalingGroup.
type AutoScalingGroup struct {
	LaunchConfigurationName any                            `json:"LaunchConfigurationName,omitempty"`
	HealthCheckGracePeriod  *int                           `json:"HealthCheckGracePeriod,omitempty"`
	MinSize                 any                            `json:"MinSize"`
	MaxSize                 any                            `json:"MaxSize"`
	VPCZoneIdentifier       []any                          `json:"VPCZoneIdentifier,omitempty"`
	Tags                    []AutoScalingGroup_TagProperty `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (AutoScalingGroup) ResourceType() string { return "AWS::AutoScaling::AutoScalingGroup" }

// AutoScalingGroup_TagProperty is a group tag, optionally copied to instances.
type AutoScalingGroup_TagProperty struct {
	Key               string `json:"Key"`
	Value             any    `json:"Value"`
	PropagateAtLaunch bool   `json:"PropagateAtLaunch"`
}

// ScalingPolicy is AWS::AutoScaling::ScalingPolicy.
type ScalingPolicy struct {
	AdjustmentType       any  `json:"AdjustmentType,omitempty"`
	AutoScalingGroupName any  `json:"AutoScalingGroupName"`
	Cooldown             any  `json:"Cooldown,omitempty"`
	ScalingAdjustment    *int `json:"ScalingAdjustment,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (ScalingPolicy) ResourceType() string { return "AWS::AutoScaling::ScalingPolicy" }
