// Package ec2 provides CloudFormation property types for AWS::EC2 resources.
package ec2

// SecurityGroup is AWS::EC2::SecurityGroup.
type SecurityGroup struct {
	GroupDescription any   `json:"GroupDescription"`
	GroupName        any   `json:"GroupName,omitempty"`
	VpcId            any   `json:"VpcId,omitempty"`
	Tags             []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (SecurityGroup) ResourceType() string { return "AWS::EC2::SecurityGroup" }

// SecurityGroupIngress is AWS::EC2::SecurityGroupIngress.
type SecurityGroupIngress struct {
	Description           any  `json:"Description,omitempty"`
	IpProtocol            any  `json:"IpProtocol"`
	FromPort              *int `json:"FromPort,omitempty"`
	ToPort                *int `json:"ToPort,omitempty"`
	GroupId               any  `json:"GroupId,omitempty"`
	SourceSecurityGroupId any  `json:"SourceSecurityGroupId,omitempty"`
	CidrIp                any  `json:"CidrIp,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (SecurityGroupIngress) ResourceType() string { return "AWS::EC2::SecurityGroupIngress" }
